package repository

import (
	"context"
	"errors"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
)

type shippingAddressGormRepository struct {
	db *gorm.DB
}

// DI
func NewShippingAddressGormRepository(db *gorm.DB) repo.ShippingAddressRepository {
	return &shippingAddressGormRepository{db: db}
}

// 住所を作成
func (r *shippingAddressGormRepository) Create(ctx context.Context, address model.ShippingAddress) (model.ShippingAddress, error) {
	if address.Country == "" {
		address.Country = model.DefaultCountry
	}
	if err := r.db.WithContext(ctx).Create(&address).Error; err != nil {
		return model.ShippingAddress{}, err
	}
	return address, nil
}

// 注文IDで1件取得
func (r *shippingAddressGormRepository) FindByOrderID(ctx context.Context, orderID int64) (model.ShippingAddress, error) {
	var a model.ShippingAddress
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.ShippingAddress{}, repo.ErrNotFound
	}
	if err != nil {
		return model.ShippingAddress{}, err
	}
	return a, nil
}
