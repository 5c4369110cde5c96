package repository

import (
	"context"
	"errors"

	"storefront/internal/domain/model"
)

var ErrNotFound = errors.New("not found")

// 一覧検索
type ProductListQuery struct {
	Page  int
	Limit int
	Q     string
	Sort  string
}

// 商品の永続化（保存・取得）だけを約束。
type ProductRepository interface {
	//公開中の商品のみ
	ListPublic(ctx context.Context, q ProductListQuery) ([]model.Product, int64, error)
	//削除済みは ErrNotFound（非公開は返す）
	FindByID(ctx context.Context, id int64) (model.Product, error)
	//削除済みも含めて取得（注文履歴の表示用）
	FindByIDUnscoped(ctx context.Context, id int64) (model.Product, error)
	Create(ctx context.Context, p model.Product) (model.Product, error)
}
