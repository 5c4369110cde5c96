package model

import (
	"errors"
	"time"
)

type OrderState string

const (
	// カートとして編集中
	OrderStateOpen OrderState = "OPEN"
	// 確定済み。以後は変更しない
	OrderStateComplete OrderState = "COMPLETE"
)

var ErrOrderAlreadyComplete = errors.New("order already complete")

// OPEN の注文がそのままカートになる。
// 1顧客につき OPEN は1つ（部分ユニークインデックスで保証）。
type Order struct {
	ID            int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	CustomerID    *int64     `gorm:"uniqueIndex:idx_orders_open_customer,where:state = 'OPEN';index" json:"customer_id"`
	State         OrderState `gorm:"type:varchar(20);not null;default:'OPEN';index" json:"state"`
	TransactionID *string    `gorm:"type:varchar(200);index" json:"transaction_id"`
	DateOrdered   time.Time  `gorm:"not null;index" json:"date_ordered"`
	CompletedAt   *time.Time `json:"completed_at"`
	CreatedAt     time.Time  `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (o Order) IsOpen() bool {
	return o.State == OrderStateOpen
}

// OPEN -> COMPLETE の一方向のみ
func (o *Order) MarkComplete(transactionID string, now time.Time) error {
	if o.State != OrderStateOpen {
		return ErrOrderAlreadyComplete
	}
	o.State = OrderStateComplete
	o.TransactionID = &transactionID
	o.CompletedAt = &now
	return nil
}
