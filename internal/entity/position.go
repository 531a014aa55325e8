package entity

import (
	"time"
)

// Position 持仓记录, StopPrice 为空表示没有设置止损
type Position struct {
	Id          int64  `gorm:"primaryKey;autoIncrement"`
	UserId      int64  `gorm:"index:position_owner_idx"`
	Ticker      string `gorm:"index:position_owner_idx"`
	Quantity    string
	AverageCost string
	StopPrice   string
	IsShort     bool
	OpenedAt    time.Time
	ClosedAt    *time.Time `gorm:"index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (p Position) IsOpen() bool {
	return p.ClosedAt == nil
}
