package repository

import (
	"context"

	"storefront/internal/domain/model"
)

type CustomerRepository interface {
	Create(ctx context.Context, c model.Customer) (model.Customer, error)
	FindByID(ctx context.Context, id int64) (model.Customer, error)
	//ログインユーザーの顧客プロフィール
	FindByUserID(ctx context.Context, userID int64) (model.Customer, error)
	//会員に紐づかない顧客だけを email完全一致で（複数あれば最も古いもの）
	FindGuestByEmail(ctx context.Context, email string) (model.Customer, error)
	UpdateName(ctx context.Context, id int64, name string) error
}
