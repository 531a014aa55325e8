package repo

import (
	"context"

	"github.com/laimis/stock-analysis-sub000/internal/entity"
	"gorm.io/gorm"
)

type PositionRepo interface {
	Create(ctx context.Context, position entity.Position) (int64, error)
	FindOpenByUser(ctx context.Context, userId int64) ([]entity.Position, error)
	FindAllOpen(ctx context.Context) ([]entity.Position, error)
	Close(ctx context.Context, id int64) error
}

type positionRepo struct {
	db *gorm.DB
}

func NewPositionRepo(db *gorm.DB) PositionRepo {
	return &positionRepo{
		db: db,
	}
}

func (r *positionRepo) Create(ctx context.Context, position entity.Position) (int64, error) {
	err := r.db.WithContext(ctx).Create(&position).Error
	if err != nil {
		return 0, err
	}
	return position.Id, nil
}

func (r *positionRepo) FindOpenByUser(ctx context.Context, userId int64) ([]entity.Position, error) {
	var positions []entity.Position
	err := r.db.WithContext(ctx).Where("user_id = ? AND closed_at IS NULL", userId).Find(&positions).Error
	if err != nil {
		return nil, err
	}
	return positions, nil
}

func (r *positionRepo) FindAllOpen(ctx context.Context) ([]entity.Position, error) {
	var positions []entity.Position
	err := r.db.WithContext(ctx).Where("closed_at IS NULL").Find(&positions).Error
	if err != nil {
		return nil, err
	}
	return positions, nil
}

func (r *positionRepo) Close(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Model(&entity.Position{}).
		Where("id = ?", id).
		Update("closed_at", gorm.Expr("CURRENT_TIMESTAMP")).Error
}
