package repository

import (
	"context"
	"errors"
	"time"

	"storefront/internal/domain/model"
	"storefront/internal/infra/db"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
)

type OrderItemGormRepository struct {
	db *gorm.DB
}

func NewOrderItemGormRepository(db *gorm.DB) *OrderItemGormRepository {
	return &OrderItemGormRepository{db: db}
}

func (r *OrderItemGormRepository) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	var items []model.OrderItem
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Order("id asc").Find(&items).Error
	if err != nil {
		return []model.OrderItem{}, err
	}
	return items, nil
}

func (r *OrderItemGormRepository) FindByOrderAndProduct(ctx context.Context, orderID int64, productID int64) (model.OrderItem, error) {
	var item model.OrderItem

	err := r.db.WithContext(ctx).
		Where("order_id = ? AND product_id = ?", orderID, productID).
		First(&item).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.OrderItem{}, repo.ErrNotFound
	}
	if err != nil {
		return model.OrderItem{}, err
	}
	return item, nil
}

// 同一商品は数量加算（1文のUPDATEなので同時更新でも取りこぼさない）
// 0以下になった行は削除して0を返す
func (r *OrderItemGormRepository) AddQuantity(ctx context.Context, orderID int64, productID int64, delta int64) (int64, error) {
	updated, err := r.increment(ctx, orderID, productID, delta)
	if err != nil {
		return 0, err
	}

	if !updated {
		// 減らす対象が無いなら何もしない
		if delta <= 0 {
			return 0, nil
		}

		//無い場合は新規作成
		item := model.OrderItem{
			OrderID:   orderID,
			ProductID: &productID,
			Quantity:  delta,
			DateAdded: time.Now(),
		}
		createErr := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return tx.Create(&item).Error
		})
		if createErr == nil {
			return delta, nil
		}
		if !db.IsDuplicateKey(createErr) {
			return 0, createErr
		}

		// 先に作られていたら加算し直す
		if _, err := r.increment(ctx, orderID, productID, delta); err != nil {
			return 0, err
		}
	}

	item, err := r.FindByOrderAndProduct(ctx, orderID, productID)
	if err != nil {
		return 0, err
	}
	if item.Quantity <= 0 {
		if err := r.db.WithContext(ctx).Delete(&model.OrderItem{}, item.ID).Error; err != nil {
			return 0, err
		}
		return 0, nil
	}
	return item.Quantity, nil
}

func (r *OrderItemGormRepository) increment(ctx context.Context, orderID int64, productID int64, delta int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.OrderItem{}).
		Where("order_id = ? AND product_id = ?", orderID, productID).
		UpdateColumn("quantity", gorm.Expr("quantity + ?", delta))

	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// 明細の数量を更新
func (r *OrderItemGormRepository) SetQuantity(ctx context.Context, orderID int64, productID int64, qty int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.OrderItem{}).
		Where("order_id = ? AND product_id = ?", orderID, productID).
		UpdateColumn("quantity", qty)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 明細ごとのサイズ（商品マスタは触らない）
func (r *OrderItemGormRepository) SetSize(ctx context.Context, orderID int64, productID int64, size model.Size) error {
	res := r.db.WithContext(ctx).
		Model(&model.OrderItem{}).
		Where("order_id = ? AND product_id = ?", orderID, productID).
		UpdateColumn("size", size)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 明細を削除
func (r *OrderItemGormRepository) DeleteByOrderAndProduct(ctx context.Context, orderID int64, productID int64) error {
	res := r.db.WithContext(ctx).
		Where("order_id = ? AND product_id = ?", orderID, productID).
		Delete(&model.OrderItem{})

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *OrderItemGormRepository) DeleteEmpty(ctx context.Context, orderID int64) error {
	return r.db.WithContext(ctx).
		Where("order_id = ? AND quantity <= 0", orderID).
		Delete(&model.OrderItem{}).Error
}

// 指定注文の明細を全削除
func (r *OrderItemGormRepository) ClearByOrderID(ctx context.Context, orderID int64) error {
	return r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Delete(&model.OrderItem{}).Error
}

func (r *OrderItemGormRepository) CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	now := time.Now()
	for i := range items {
		items[i].OrderID = orderID
		if items[i].DateAdded.IsZero() {
			items[i].DateAdded = now
		}
	}
	if err := r.db.WithContext(ctx).Create(&items).Error; err != nil {
		return err
	}
	return nil
}
