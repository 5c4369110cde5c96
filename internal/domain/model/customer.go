package model

import "time"

// 注文の持ち主。
// ゲスト購入では user_id を持たず、email で引き当てる（email は一意ではない）。
type Customer struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    *int64    `gorm:"uniqueIndex" json:"user_id"`
	Name      string    `gorm:"type:varchar(200)" json:"name"`
	Email     string    `gorm:"type:varchar(200);index" json:"email"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (c Customer) IsGuest() bool {
	return c.UserID == nil
}
