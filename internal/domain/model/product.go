package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// 商品。非公開(is_active=false)でも過去の注文明細からは参照できる。
type Product struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string          `gorm:"type:varchar(200);not null;index:idx_products_name_active,priority:1" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(7,2);not null" json:"price"`
	Size        *Size           `gorm:"type:varchar(3)" json:"size"`
	Stock       int64           `gorm:"not null;default:0" json:"stock"`
	IsActive    bool            `gorm:"not null;default:true;index:idx_products_name_active,priority:2" json:"is_active"`
	Digital     bool            `gorm:"not null;default:false" json:"digital"`
	ImageURL    string          `gorm:"type:varchar(255)" json:"image_url"`
	CreatedAt   time.Time       `gorm:"not null;autoCreateTime;index" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (p Product) InStock() bool {
	return p.Stock > 0
}
