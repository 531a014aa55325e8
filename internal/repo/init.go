package repo

import (
	"github.com/laimis/stock-analysis-sub000/internal/entity"
	"gorm.io/gorm"
)

func InitTables(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.User{},
		&entity.Position{},
		&entity.WatchedStock{},
		&entity.AlertRecord{},
	)
}
