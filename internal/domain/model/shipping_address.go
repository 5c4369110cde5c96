package model

import (
	"fmt"
	"time"
)

const DefaultCountry = "USA"

// 配送先住所。物理商品を含む注文の確定時に1件だけ作る。
type ShippingAddress struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID    int64     `gorm:"not null;uniqueIndex" json:"order_id"`
	CustomerID *int64    `gorm:"index" json:"customer_id"`
	Address    string    `gorm:"type:varchar(200)" json:"address"`
	City       string    `gorm:"type:varchar(200)" json:"city"`
	State      string    `gorm:"type:varchar(200)" json:"state"`
	Zipcode    string    `gorm:"type:varchar(20)" json:"zipcode"`
	Country    string    `gorm:"type:varchar(100);not null;default:'USA'" json:"country"`
	DateAdded  time.Time `gorm:"not null;autoCreateTime" json:"date_added"`
}

func (a ShippingAddress) FullAddress() string {
	return fmt.Sprintf("%s, %s, %s %s, %s", a.Address, a.City, a.State, a.Zipcode, a.Country)
}
