package marketclock

import (
	"time"
)

// Clock 把 UTC 时刻映射到交易时段, 实现必须是纯函数
type Clock interface {
	IsOpen(t time.Time) bool
	ToMarketTime(t time.Time) time.Time
	// SessionStart returns the session open for the calendar date of d
	// (interpreted in market time), regardless of whether d is a trading day.
	SessionStart(d time.Time) time.Time
	SessionEnd(d time.Time) time.Time
	IsTradingDay(d time.Time) bool
	NextTradingDay(d time.Time) time.Time
}

type nyseClock struct {
	loc *time.Location
}

// NewNYSE 常规时段 9:30-16:00 America/New_York, 周末休市
func NewNYSE() Clock {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		panic(err)
	}
	return &nyseClock{loc: loc}
}

func (c *nyseClock) IsOpen(t time.Time) bool {
	if !c.IsTradingDay(t) {
		return false
	}
	start := c.SessionStart(t)
	end := c.SessionEnd(t)
	return !t.Before(start) && t.Before(end)
}

func (c *nyseClock) ToMarketTime(t time.Time) time.Time {
	return t.In(c.loc)
}

func (c *nyseClock) SessionStart(d time.Time) time.Time {
	local := d.In(c.loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 9, 30, 0, 0, c.loc)
}

func (c *nyseClock) SessionEnd(d time.Time) time.Time {
	local := d.In(c.loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 16, 0, 0, 0, c.loc)
}

func (c *nyseClock) IsTradingDay(d time.Time) bool {
	switch d.In(c.loc).Weekday() {
	case time.Saturday, time.Sunday:
		return false
	default:
		return true
	}
}

func (c *nyseClock) NextTradingDay(d time.Time) time.Time {
	next := d.In(c.loc).AddDate(0, 0, 1)
	for !c.IsTradingDay(next) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
