package notification

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/laimis/stock-analysis-sub000/internal/entity"
	"github.com/laimis/stock-analysis-sub000/internal/service/monitoring"
	"github.com/samber/lo"
)

// SendWeeklyDigest 给每个用户发过去一周的告警汇总.
// 一周内没有任何告警的用户跳过.
func (f *Fanout) SendWeeklyDigest(ctx context.Context, now time.Time) error {
	users, err := f.users.FindAll(ctx)
	if err != nil {
		return fmt.Errorf("load users: %w", err)
	}

	since := now.AddDate(0, 0, -7)
	monitors := f.registry.Snapshot()
	sent := 0
	for _, user := range users {
		records, err := f.alerts.FindByUserSince(ctx, user.Id, since)
		if err != nil {
			slog.Error("failed to load alert history", "user", user.Id, "err", err)
			continue
		}
		if len(records) == 0 {
			continue
		}

		owned := lo.Filter(monitors, func(m monitoring.Monitor, _ int) bool {
			return m.OwnerId == user.Id
		})
		body := buildDigest(records, len(owned), since, now)
		subject := fmt.Sprintf("Weekly alert digest: %d alerts", len(records))
		if err := f.email.SendText(ctx, user.Email, subject, body); err != nil {
			slog.Error("failed to send digest", "user", user.Id, "err", err)
			continue
		}
		sent++
	}

	f.registry.AddNotice(fmt.Sprintf("weekly digest sent to %d users", sent))
	return nil
}

func buildDigest(records []entity.AlertRecord, monitorCount int, since, now time.Time) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Alerts from %s to %s\n\n",
		since.Format("2006-01-02"), now.Format("2006-01-02")))

	bySource := lo.GroupBy(records, func(r entity.AlertRecord) string {
		return r.Source
	})
	for _, source := range sortedStrings(lo.Keys(bySource)) {
		group := bySource[source]
		tickers := lo.Uniq(lo.Map(group, func(r entity.AlertRecord, _ int) string {
			return r.Ticker
		}))
		sb.WriteString(fmt.Sprintf("%s: %d alerts across %s\n",
			monitoring.Source(source).Title(), len(group), strings.Join(sortedStrings(tickers), ", ")))
	}

	sb.WriteString(fmt.Sprintf("\nCurrently watching %d conditions.\n", monitorCount))
	return sb.String()
}

func sortedStrings(values []string) []string {
	out := make([]string, len(values))
	copy(out, values)
	sort.Strings(out)
	return out
}
