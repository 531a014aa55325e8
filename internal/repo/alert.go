package repo

import (
	"context"
	"time"

	"github.com/laimis/stock-analysis-sub000/internal/entity"
	"gorm.io/gorm"
)

type AlertRepo interface {
	Create(ctx context.Context, record entity.AlertRecord) (int64, error)
	FindByUserSince(ctx context.Context, userId int64, since time.Time) ([]entity.AlertRecord, error)
	FindRecent(ctx context.Context, limit int) ([]entity.AlertRecord, error)
}

type alertRepo struct {
	db *gorm.DB
}

func NewAlertRepo(db *gorm.DB) AlertRepo {
	return &alertRepo{
		db: db,
	}
}

func (r *alertRepo) Create(ctx context.Context, record entity.AlertRecord) (int64, error) {
	err := r.db.WithContext(ctx).Create(&record).Error
	if err != nil {
		return 0, err
	}
	return record.Id, nil
}

func (r *alertRepo) FindByUserSince(ctx context.Context, userId int64, since time.Time) ([]entity.AlertRecord, error) {
	var records []entity.AlertRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND triggered_at >= ?", userId, since).
		Order("triggered_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *alertRepo) FindRecent(ctx context.Context, limit int) ([]entity.AlertRecord, error) {
	var records []entity.AlertRecord
	err := r.db.WithContext(ctx).Order("triggered_at DESC").Limit(limit).Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}
