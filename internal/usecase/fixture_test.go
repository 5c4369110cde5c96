package usecase_test

import (
	"fmt"
	"testing"
	"time"

	"storefront/internal/domain/model"
	infraRepo "storefront/internal/infra/repository"
	repo "storefront/internal/repository"
	"storefront/internal/testutil"
	"storefront/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixedID struct{ id string }

func (f fixedID) NewID() string { return f.id }

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type fixture struct {
	db     *gorm.DB
	repos  repo.TxRepos
	tx     repo.TransactionManager
	cart   *usecase.CartUsecase
	orders *usecase.OrderUsecase

	shorts model.Product // 49.99 物理
	ebook  model.Product // 65.00 デジタル
}

func newFixture(t *testing.T, requireShipping bool) *fixture {
	t.Helper()

	gormDB := testutil.NewDB(t)
	repos := infraRepo.NewRepos(gormDB)
	tm := infraRepo.NewTxManagerGorm(gormDB)
	log := zap.NewNop()

	return &fixture{
		db:     gormDB,
		repos:  repos,
		tx:     tm,
		cart:   usecase.NewCartUsecase(tm, repos, log),
		orders: usecase.NewOrderUsecase(tm, repos, usecase.NewGuestUsecase(log), fixedID{id: "tx-fixed"}, fixedClock{now: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}, requireShipping, log),
		shorts: testutil.CreateProduct(t, gormDB, testutil.ProductSeed{Name: "Shorts", Price: "49.99"}),
		ebook:  testutil.CreateProduct(t, gormDB, testutil.ProductSeed{Name: "Ebook", Price: "65.00", Digital: true}),
	}
}

// ログインユーザーと顧客プロフィールを作る
func (f *fixture) member(t *testing.T, email string) (usecase.Identity, model.Customer) {
	t.Helper()

	u := model.User{Email: email, PasswordHash: "x", IsActive: true}
	require.NoError(t, f.db.Create(&u).Error)
	c := testutil.CreateCustomer(t, f.db, "Member", email, &u.ID)
	return usecase.Identity{UserID: u.ID}, c
}

func cookieOf(lines map[int64]int64) string {
	s := "{"
	first := true
	for id, qty := range lines {
		if !first {
			s += ","
		}
		first = false
		s += fmt.Sprintf(`"%d":{"quantity":%d}`, id, qty)
	}
	return s + "}"
}

func money(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}
