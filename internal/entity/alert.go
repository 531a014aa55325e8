package entity

import (
	"time"
)

// AlertRecord 已派发的告警历史, 仅用于展示, 不参与抑制判断
type AlertRecord struct {
	Id             int64  `gorm:"primaryKey;autoIncrement"`
	AlertId        string `gorm:"uniqueIndex"`
	UserId         int64  `gorm:"index:alert_owner_idx"`
	Ticker         string `gorm:"index:alert_owner_idx"`
	Source         string `gorm:"index"`
	TriggeredValue string
	WatchedValue   string
	Description    string
	ValueFormat    string
	TriggeredAt    time.Time `gorm:"index"`
	CreatedAt      time.Time
}
