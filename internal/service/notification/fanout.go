package notification

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/laimis/stock-analysis-sub000/internal/entity"
	"github.com/laimis/stock-analysis-sub000/internal/repo"
	"github.com/laimis/stock-analysis-sub000/internal/service/commentary"
	"github.com/laimis/stock-analysis-sub000/internal/service/monitoring"
	"github.com/samber/lo"
)

// Fanout 把一轮 pass 产出的告警变成每个 owner 一封邮件,
// 高优先级再补一条短信. 单个 owner 的失败不影响其他 owner,
// 发送成功后才登记抑制并落库.
type Fanout struct {
	registry *monitoring.Registry
	users    repo.UserRepo
	alerts   repo.AlertRepo

	email EmailService
	sms   SMSService

	commentator commentary.Commentator
}

type FanoutOption func(*Fanout)

func WithEmailService(email EmailService) FanoutOption {
	return func(f *Fanout) {
		f.email = email
	}
}

func WithSMSService(sms SMSService) FanoutOption {
	return func(f *Fanout) {
		f.sms = sms
	}
}

func WithCommentator(c commentary.Commentator) FanoutOption {
	return func(f *Fanout) {
		f.commentator = c
	}
}

func NewFanout(registry *monitoring.Registry, users repo.UserRepo, alerts repo.AlertRepo, opts ...FanoutOption) *Fanout {
	f := &Fanout{
		registry: registry,
		users:    users,
		alerts:   alerts,
		email:    NewConsoleEmailService(),
		sms:      NewConsoleSMSService(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

var _ monitoring.Dispatcher = (*Fanout)(nil)

func (f *Fanout) Dispatch(ctx context.Context, alerts []monitoring.TriggeredAlert) {
	fresh := lo.Filter(alerts, func(a monitoring.TriggeredAlert, _ int) bool {
		return !f.registry.HasRecentlyTriggered(a.Key())
	})
	if len(fresh) == 0 {
		return
	}

	delivered := 0
	byOwner := lo.GroupBy(fresh, func(a monitoring.TriggeredAlert) int64 {
		return a.OwnerId
	})
	for _, ownerId := range sortedOwners(byOwner) {
		ownerAlerts := byOwner[ownerId]
		if err := f.dispatchToOwner(ctx, ownerId, ownerAlerts); err != nil {
			slog.Error("failed to notify owner", "owner", ownerId, "alerts", len(ownerAlerts), "err", err)
			f.registry.AddNotice(fmt.Sprintf("notify owner %d failed: %v", ownerId, err))
			continue
		}
		delivered += len(ownerAlerts)
	}
	if delivered > 0 {
		f.registry.AddNotice(fmt.Sprintf("dispatched %d alerts to %d owners", delivered, len(byOwner)))
	}
}

func (f *Fanout) dispatchToOwner(ctx context.Context, ownerId int64, alerts []monitoring.TriggeredAlert) error {
	user, found, err := f.users.FindById(ctx, ownerId)
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}
	if !found {
		return fmt.Errorf("user %d not found", ownerId)
	}

	subject, body := buildEmail(alerts)
	if f.commentator != nil {
		if comment, err := f.commentator.Comment(ctx, alerts); err != nil {
			slog.Warn("commentary unavailable", "owner", ownerId, "err", err)
		} else if comment != "" {
			body += "\nCommentary\n----------\n" + comment + "\n"
		}
	}
	if err := f.email.SendText(ctx, user.Email, subject, body); err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	// 短信失败不回滚邮件, 只记日志
	if sms := buildSMS(alerts); sms != "" && user.Phone != "" {
		if err := f.sms.SendMessage(ctx, user.Phone, sms); err != nil {
			slog.Error("failed to send sms", "owner", ownerId, "err", err)
		}
	}

	for _, a := range alerts {
		f.registry.AddToRecent(a)
		if _, err := f.alerts.Create(ctx, toRecord(a)); err != nil {
			slog.Error("failed to persist alert", "alert", a.Id, "err", err)
		}
	}
	return nil
}

func buildEmail(alerts []monitoring.TriggeredAlert) (subject, body string) {
	bySource := lo.GroupBy(alerts, func(a monitoring.TriggeredAlert) monitoring.Source {
		return a.Source
	})

	sources := lo.Keys(bySource)
	sort.Slice(sources, func(i, j int) bool { return sources[i] < sources[j] })

	var sb strings.Builder
	for _, source := range sources {
		group := bySource[source]
		sort.Slice(group, func(i, j int) bool { return group[i].Ticker < group[j].Ticker })

		sb.WriteString(source.Title())
		sb.WriteString("\n")
		sb.WriteString(strings.Repeat("-", len(source.Title())))
		sb.WriteString("\n")
		for _, a := range group {
			sb.WriteString(fmt.Sprintf("%s: %s (value %s, watching %s)\n",
				a.Ticker, a.Description,
				monitoring.FormatValue(a.Format, a.TriggeredValue),
				monitoring.FormatValue(a.Format, a.WatchedValue)))
		}
		sb.WriteString("\n")
	}

	subject = fmt.Sprintf("%d alerts triggered", len(alerts))
	if len(alerts) == 1 {
		subject = fmt.Sprintf("%s alert: %s", alerts[0].Source.Title(), alerts[0].Ticker)
	}
	return subject, sb.String()
}

// buildSMS 高优先级告警的压缩摘要, 没有高优先级时返回空串
func buildSMS(alerts []monitoring.TriggeredAlert) string {
	urgent := lo.Filter(alerts, func(a monitoring.TriggeredAlert, _ int) bool {
		return a.Source.HighUrgency()
	})
	if len(urgent) == 0 {
		return ""
	}

	bySource := lo.GroupBy(urgent, func(a monitoring.TriggeredAlert) monitoring.Source {
		return a.Source
	})
	sources := lo.Keys(bySource)
	sort.Slice(sources, func(i, j int) bool { return sources[i] < sources[j] })

	parts := make([]string, 0, len(sources))
	for _, source := range sources {
		group := bySource[source]
		tickers := lo.Uniq(lo.Map(group, func(a monitoring.TriggeredAlert, _ int) string {
			return a.Ticker
		}))
		sort.Strings(tickers)
		parts = append(parts, fmt.Sprintf("Found %d %s alerts: %s",
			len(group), source, strings.Join(tickers, ", ")))
	}
	return strings.Join(parts, ". ")
}

func toRecord(a monitoring.TriggeredAlert) entity.AlertRecord {
	return entity.AlertRecord{
		AlertId:        a.Id,
		UserId:         a.OwnerId,
		Ticker:         a.Ticker,
		Source:         string(a.Source),
		TriggeredValue: a.TriggeredValue.String(),
		WatchedValue:   a.WatchedValue.String(),
		Description:    a.Description,
		ValueFormat:    string(a.Format),
		TriggeredAt:    a.When,
	}
}

func sortedOwners(byOwner map[int64][]monitoring.TriggeredAlert) []int64 {
	owners := lo.Keys(byOwner)
	sort.Slice(owners, func(i, j int) bool { return owners[i] < owners[j] })
	return owners
}
