package repository

import (
	"context"

	"storefront/internal/domain/model"
)

// 配送先住所を保存・取得する窓口
type ShippingAddressRepository interface {
	//作成後はaddress（IDなどが埋まったもの）を返す
	Create(ctx context.Context, address model.ShippingAddress) (model.ShippingAddress, error)
	FindByOrderID(ctx context.Context, orderID int64) (model.ShippingAddress, error)
}
