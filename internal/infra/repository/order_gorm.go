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

type OrderGormRepository struct {
	db *gorm.DB
}

func NewOrderGormRepository(db *gorm.DB) *OrderGormRepository {
	return &OrderGormRepository{db: db}
}

func (r *OrderGormRepository) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).Where("id = ?", orderID).First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Order{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Order{}, err
	}
	return o, nil
}

// 顧客のOPEN注文を取得し、無ければ作成
// 同時に作成された場合は部分ユニークインデックスで片方が弾かれるので、勝った方を読み直す
func (r *OrderGormRepository) GetOrCreateOpenByCustomerID(ctx context.Context, customerID int64) (model.Order, error) {
	o, err := r.FindOpenByCustomerID(ctx, customerID)
	if err == nil {
		return o, nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return model.Order{}, err
	}

	// 無ければ作る
	now := time.Now()
	newOrder := model.Order{
		CustomerID:  &customerID,
		State:       model.OrderStateOpen,
		DateOrdered: now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	//失敗してもtx全体を壊さないようにsavepointで包む
	createErr := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&newOrder).Error
	})
	if createErr == nil {
		return newOrder, nil
	}
	if !db.IsDuplicateKey(createErr) {
		return model.Order{}, createErr
	}

	return r.FindOpenByCustomerID(ctx, customerID)
}

func (r *OrderGormRepository) FindOpenByCustomerID(ctx context.Context, customerID int64) (model.Order, error) {
	var o model.Order

	err := r.db.WithContext(ctx).
		Where("customer_id = ? AND state = ?", customerID, model.OrderStateOpen).
		Order("id desc").
		First(&o).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Order{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Order{}, err
	}
	return o, nil
}

// OPENの行だけを確定に書き換える
func (r *OrderGormRepository) Complete(ctx context.Context, order model.Order) error {
	if order.State != model.OrderStateComplete {
		return errors.New("order is not marked complete")
	}

	res := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("id = ? AND state = ?", order.ID, model.OrderStateOpen).
		Updates(map[string]interface{}{
			"state":          model.OrderStateComplete,
			"transaction_id": order.TransactionID,
			"completed_at":   order.CompletedAt,
		})

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 1 {
		return nil
	}

	//0件なら、存在しないか既に確定済み
	if _, err := r.FindByID(ctx, order.ID); err != nil {
		return err
	}
	return model.ErrOrderAlreadyComplete
}

func (r *OrderGormRepository) ListCompletedByCustomerID(ctx context.Context, customerID int64, page int, limit int) ([]model.Order, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("customer_id = ? AND state = ?", customerID, model.OrderStateComplete).
		Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return []model.Order{}, 0, err
	}

	var items []model.Order
	offset := (page - 1) * limit
	err := q.
		Order("date_ordered desc").
		Order("id desc").
		Limit(limit).
		Offset(offset).
		Find(&items).Error
	if err != nil {
		return []model.Order{}, 0, err
	}

	return items, total, nil
}
