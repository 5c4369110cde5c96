package repository

import (
	"context"

	"storefront/internal/domain/model"
)

type OrderItemRepository interface {
	ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error)
	FindByOrderAndProduct(ctx context.Context, orderID int64, productID int64) (model.OrderItem, error)
	// 同一商品は数量に delta を加算（無ければ delta で作成）。更新後の数量を返す
	AddQuantity(ctx context.Context, orderID int64, productID int64, delta int64) (int64, error)
	SetQuantity(ctx context.Context, orderID int64, productID int64, qty int64) error
	SetSize(ctx context.Context, orderID int64, productID int64, size model.Size) error
	DeleteByOrderAndProduct(ctx context.Context, orderID int64, productID int64) error
	//数量0以下の行を掃除
	DeleteEmpty(ctx context.Context, orderID int64) error
	ClearByOrderID(ctx context.Context, orderID int64) error
	CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error
}
