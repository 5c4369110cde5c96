package repository

import (
	"context"
	"errors"
	"strings"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
)

type CustomerGormRepository struct {
	db *gorm.DB
}

func NewCustomerGormRepository(db *gorm.DB) *CustomerGormRepository {
	return &CustomerGormRepository{db: db}
}

func (r *CustomerGormRepository) Create(ctx context.Context, c model.Customer) (model.Customer, error) {
	if err := r.db.WithContext(ctx).Create(&c).Error; err != nil {
		return model.Customer{}, err
	}
	return c, nil
}

func (r *CustomerGormRepository) FindByID(ctx context.Context, id int64) (model.Customer, error) {
	return r.first(r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *CustomerGormRepository) FindByUserID(ctx context.Context, userID int64) (model.Customer, error) {
	return r.first(r.db.WithContext(ctx).Where("user_id = ?", userID))
}

// email は一意ではないので最も古いゲスト顧客を返す
func (r *CustomerGormRepository) FindGuestByEmail(ctx context.Context, email string) (model.Customer, error) {
	return r.first(r.db.WithContext(ctx).
		Where("email = ? AND user_id IS NULL", strings.TrimSpace(email)).
		Order("id asc"))
}

func (r *CustomerGormRepository) UpdateName(ctx context.Context, id int64, name string) error {
	res := r.db.WithContext(ctx).
		Model(&model.Customer{}).
		Where("id = ?", id).
		Update("name", name)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *CustomerGormRepository) first(q *gorm.DB) (model.Customer, error) {
	var c model.Customer
	err := q.First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Customer{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Customer{}, err
	}
	return c, nil
}
