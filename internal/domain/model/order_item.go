package model

import "time"

// 注文明細。数量が0以下になったら行ごと削除する。
// 商品が削除されても product_id は NULL で残る。
type OrderItem struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID   int64     `gorm:"not null;uniqueIndex:idx_order_items_order_product,priority:1" json:"order_id"`
	ProductID *int64    `gorm:"uniqueIndex:idx_order_items_order_product,priority:2" json:"product_id"`
	Quantity  int64     `gorm:"not null;default:0" json:"quantity"`
	Size      *Size     `gorm:"type:varchar(3)" json:"size"`
	DateAdded time.Time `gorm:"not null;autoCreateTime" json:"date_added"`
}
