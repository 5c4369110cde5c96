package testutil

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"storefront/internal/domain/model"
	"storefront/internal/infra/db"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var seq int64

// テストごとに独立したインメモリsqliteを作ってマイグレーションする
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:storefront_test_%d?mode=memory&cache=shared", atomic.AddInt64(&seq, 1))
	gormDB, err := db.Open(sqlite.Open(dsn), false)
	require.NoError(t, err)

	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	//Tx中に別コネクションを掴まないように1本に絞る
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.Migrate(gormDB))
	return gormDB
}

type ProductSeed struct {
	Name     string
	Price    string
	Digital  bool
	Inactive bool
}

func CreateProduct(t *testing.T, gormDB *gorm.DB, s ProductSeed) model.Product {
	t.Helper()

	p := model.Product{
		Name:     s.Name,
		Price:    decimal.RequireFromString(s.Price),
		Digital:  s.Digital,
		IsActive: true,
		Stock:    10,
	}
	require.NoError(t, gormDB.WithContext(context.Background()).Create(&p).Error)

	// default:true のため false は作成後に更新する
	if s.Inactive {
		require.NoError(t, gormDB.Model(&p).Update("is_active", false).Error)
		p.IsActive = false
	}
	return p
}

func CreateCustomer(t *testing.T, gormDB *gorm.DB, name string, email string, userID *int64) model.Customer {
	t.Helper()

	c := model.Customer{Name: name, Email: email, UserID: userID}
	require.NoError(t, gormDB.Create(&c).Error)
	return c
}
