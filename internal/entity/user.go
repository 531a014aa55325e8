package entity

import (
	"time"
)

type User struct {
	Id        int64  `gorm:"primaryKey;autoIncrement"`
	Username  string `gorm:"uniqueIndex"`
	Email     string
	Phone     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
