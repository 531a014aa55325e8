package notification

import (
	"context"
	"fmt"
)

// 未配置真实通道时的兜底实现, 方便本地调试

type consoleEmailService struct {
}

func NewConsoleEmailService() EmailService {
	return consoleEmailService{}
}

func (c consoleEmailService) SendText(ctx context.Context, to, subject, body string) error {
	fmt.Printf("email to %s\nsubject: %s\n%s\n", to, subject, body)
	return nil
}

func (c consoleEmailService) SendHTML(ctx context.Context, to, subject, body string) error {
	fmt.Printf("email (html) to %s\nsubject: %s\n%s\n", to, subject, body)
	return nil
}

type consoleSMSService struct {
}

func NewConsoleSMSService() SMSService {
	return consoleSMSService{}
}

func (c consoleSMSService) SendMessage(ctx context.Context, to, message string) error {
	fmt.Printf("sms to %s: %s\n", to, message)
	return nil
}
