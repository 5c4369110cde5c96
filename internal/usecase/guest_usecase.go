package usecase

import (
	"context"
	"strings"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"go.uber.org/zap"
)

// GuestUsecase はゲスト購入の顧客をemailで引き当てる。
// 呼び出し側のトランザクション内で使う
type GuestUsecase struct {
	log *zap.Logger
}

func NewGuestUsecase(log *zap.Logger) *GuestUsecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &GuestUsecase{log: log}
}

// email完全一致でゲスト顧客を探し、無ければ作る。名前が違えば更新する。
// 会員の顧客プロフィールは対象外（会員のカートや履歴には触らない）。
// 返すOPEN注文は古い明細を消した空の状態
func (u *GuestUsecase) ResolveGuestCustomer(ctx context.Context, r repo.TxRepos, email string, name string) (model.Customer, model.Order, error) {
	email = strings.TrimSpace(email)
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Customer{}, model.Order{}, errMissingField("name")
	}
	if email == "" {
		return model.Customer{}, model.Order{}, errMissingField("email")
	}

	customer, err := r.Customers().FindGuestByEmail(ctx, email)
	switch {
	case err == repo.ErrNotFound:
		customer, err = r.Customers().Create(ctx, model.Customer{Name: name, Email: email})
		if err != nil {
			u.log.Error("create guest customer", zap.String("email", email), zap.Error(err))
			return model.Customer{}, model.Order{}, errServer()
		}
		u.log.Info("created guest customer", zap.Int64("customer_id", customer.ID))
	case err != nil:
		u.log.Error("find guest customer", zap.String("email", email), zap.Error(err))
		return model.Customer{}, model.Order{}, errServer()
	case customer.Name != name:
		if err := r.Customers().UpdateName(ctx, customer.ID, name); err != nil {
			u.log.Error("update guest customer name", zap.Int64("customer_id", customer.ID), zap.Error(err))
			return model.Customer{}, model.Order{}, errServer()
		}
		customer.Name = name
	}

	order, err := r.Orders().GetOrCreateOpenByCustomerID(ctx, customer.ID)
	if err != nil {
		u.log.Error("get or create guest order", zap.Int64("customer_id", customer.ID), zap.Error(err))
		return model.Customer{}, model.Order{}, errServer()
	}

	// 前回の未完了分は捨ててcookieの内容で作り直す
	if err := r.OrderItems().ClearByOrderID(ctx, order.ID); err != nil {
		u.log.Error("clear guest order items", zap.Int64("order_id", order.ID), zap.Error(err))
		return model.Customer{}, model.Order{}, errServer()
	}

	u.log.Info("processing guest order", zap.Int64("customer_id", customer.ID), zap.Int64("order_id", order.ID))
	return customer, order, nil
}
