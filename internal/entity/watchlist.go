package entity

import (
	"time"
)

// WatchedStock 监控列表条目, Tag 决定参与哪种异动检测
type WatchedStock struct {
	Id          int64  `gorm:"primaryKey;autoIncrement"`
	UserId      int64  `gorm:"index:watch_owner_idx"`
	Ticker      string `gorm:"index:watch_owner_idx"`
	Tag         string `gorm:"index"`
	TargetPrice string
	Direction   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

const (
	WatchTagGapUp          = "gap-up"
	WatchTagUpsideReversal = "upside-reversal"
	WatchTagPriceAlert     = "price-alert"
)
