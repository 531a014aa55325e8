package repo

import (
	"context"
	"errors"

	"github.com/laimis/stock-analysis-sub000/internal/entity"
	"gorm.io/gorm"
)

var ErrNotFound = gorm.ErrRecordNotFound

type UserRepo interface {
	Create(ctx context.Context, user entity.User) (int64, error)
	FindById(ctx context.Context, id int64) (entity.User, bool, error)
	FindAll(ctx context.Context) ([]entity.User, error)
}

type userRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) UserRepo {
	return &userRepo{
		db: db,
	}
}

func (r *userRepo) Create(ctx context.Context, user entity.User) (int64, error) {
	err := r.db.WithContext(ctx).Create(&user).Error
	if err != nil {
		return 0, err
	}
	return user.Id, nil
}

func (r *userRepo) FindById(ctx context.Context, id int64) (entity.User, bool, error) {
	var user entity.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return entity.User{}, false, nil
	}
	if err != nil {
		return entity.User{}, false, err
	}
	return user, true, nil
}

func (r *userRepo) FindAll(ctx context.Context) ([]entity.User, error) {
	var users []entity.User
	err := r.db.WithContext(ctx).Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}
