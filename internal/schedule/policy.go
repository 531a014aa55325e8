package schedule

import (
	"time"

	"github.com/laimis/stock-analysis-sub000/internal/service/marketclock"
)

// NextRunFunc 给定当前时刻计算下一次执行时刻, 必须是纯函数
type NextRunFunc func(now time.Time) time.Time

// IntervalDuringSession 交易时段内每 interval 跑一次, 时段外睡到下一个开盘
func IntervalDuringSession(clock marketclock.Clock, interval time.Duration) NextRunFunc {
	return func(now time.Time) time.Time {
		mt := clock.ToMarketTime(now)
		if clock.IsTradingDay(mt) {
			start := clock.SessionStart(mt)
			if mt.Before(start) {
				return start.Add(interval)
			}
			next := mt.Add(interval)
			if !next.After(clock.SessionEnd(mt)) {
				return next
			}
		}
		return clock.SessionStart(clock.NextTradingDay(mt)).Add(interval)
	}
}

// AtSessionOpen 每个交易日开盘后 offset 跑一次
func AtSessionOpen(clock marketclock.Clock, offset time.Duration) NextRunFunc {
	return func(now time.Time) time.Time {
		mt := clock.ToMarketTime(now)
		if clock.IsTradingDay(mt) {
			target := clock.SessionStart(mt).Add(offset)
			if mt.Before(target) {
				return target
			}
		}
		return clock.SessionStart(clock.NextTradingDay(mt)).Add(offset)
	}
}

// BeforeSessionClose 每个交易日收盘前 lead 跑一次
func BeforeSessionClose(clock marketclock.Clock, lead time.Duration) NextRunFunc {
	return func(now time.Time) time.Time {
		mt := clock.ToMarketTime(now)
		if clock.IsTradingDay(mt) {
			target := clock.SessionEnd(mt).Add(-lead)
			if mt.Before(target) {
				return target
			}
		}
		return clock.SessionEnd(clock.NextTradingDay(mt)).Add(-lead)
	}
}

// WeeklyAt 每周 weekday 的 hour:minute (市场时区) 跑一次
func WeeklyAt(clock marketclock.Clock, weekday time.Weekday, hour, minute int) NextRunFunc {
	return func(now time.Time) time.Time {
		mt := clock.ToMarketTime(now)
		days := (int(weekday) - int(mt.Weekday()) + 7) % 7
		target := time.Date(mt.Year(), mt.Month(), mt.Day()+days, hour, minute, 0, 0, mt.Location())
		if !target.After(mt) {
			target = target.AddDate(0, 0, 7)
		}
		return target
	}
}
