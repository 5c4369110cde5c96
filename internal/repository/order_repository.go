package repository

import (
	"context"

	"storefront/internal/domain/model"
)

type OrderRepository interface {
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	//顧客のOPEN注文（=カート）を取得し、無ければ作成
	GetOrCreateOpenByCustomerID(ctx context.Context, customerID int64) (model.Order, error)
	FindOpenByCustomerID(ctx context.Context, customerID int64) (model.Order, error)
	//OPENのときだけ確定する。既に確定済みなら model.ErrOrderAlreadyComplete
	Complete(ctx context.Context, order model.Order) error
	ListCompletedByCustomerID(ctx context.Context, customerID int64, page int, limit int) ([]model.Order, int64, error)
}
