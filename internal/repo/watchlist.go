package repo

import (
	"context"

	"github.com/laimis/stock-analysis-sub000/internal/entity"
	"gorm.io/gorm"
)

type WatchlistRepo interface {
	Create(ctx context.Context, watch entity.WatchedStock) (int64, error)
	FindByUser(ctx context.Context, userId int64) ([]entity.WatchedStock, error)
	FindByTag(ctx context.Context, tag string) ([]entity.WatchedStock, error)
	FindAll(ctx context.Context) ([]entity.WatchedStock, error)
	Delete(ctx context.Context, id int64) error
}

type watchlistRepo struct {
	db *gorm.DB
}

func NewWatchlistRepo(db *gorm.DB) WatchlistRepo {
	return &watchlistRepo{
		db: db,
	}
}

func (r *watchlistRepo) Create(ctx context.Context, watch entity.WatchedStock) (int64, error) {
	err := r.db.WithContext(ctx).Create(&watch).Error
	if err != nil {
		return 0, err
	}
	return watch.Id, nil
}

func (r *watchlistRepo) FindByUser(ctx context.Context, userId int64) ([]entity.WatchedStock, error) {
	var watches []entity.WatchedStock
	err := r.db.WithContext(ctx).Where("user_id = ?", userId).Find(&watches).Error
	if err != nil {
		return nil, err
	}
	return watches, nil
}

func (r *watchlistRepo) FindByTag(ctx context.Context, tag string) ([]entity.WatchedStock, error) {
	var watches []entity.WatchedStock
	err := r.db.WithContext(ctx).Where("tag = ?", tag).Find(&watches).Error
	if err != nil {
		return nil, err
	}
	return watches, nil
}

func (r *watchlistRepo) FindAll(ctx context.Context) ([]entity.WatchedStock, error) {
	var watches []entity.WatchedStock
	err := r.db.WithContext(ctx).Find(&watches).Error
	if err != nil {
		return nil, err
	}
	return watches, nil
}

func (r *watchlistRepo) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&entity.WatchedStock{}, id).Error
}
