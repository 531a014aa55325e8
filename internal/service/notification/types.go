package notification

import "context"

type EmailService interface {
	SendText(ctx context.Context, to, subject, body string) error
	SendHTML(ctx context.Context, to, subject, body string) error
}

// SMSService 短信通道, 只承载高优先级告警的摘要
type SMSService interface {
	SendMessage(ctx context.Context, to, message string) error
}
