package repository_test

import (
	"context"
	"testing"
	"time"

	"storefront/internal/domain/model"
	infraRepo "storefront/internal/infra/repository"
	repo "storefront/internal/repository"
	"storefront/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderGorm_GetOrCreateOpen_ReusesSameOrder(t *testing.T) {
	ctx := context.Background()
	gormDB := testutil.NewDB(t)
	c := testutil.CreateCustomer(t, gormDB, "Alice", "alice@example.com", nil)

	orders := infraRepo.NewOrderGormRepository(gormDB)

	first, err := orders.GetOrCreateOpenByCustomerID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStateOpen, first.State)

	second, err := orders.GetOrCreateOpenByCustomerID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, gormDB.Model(&model.Order{}).Where("customer_id = ?", c.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestOrderGorm_OpenOrderUniquePerCustomer(t *testing.T) {
	gormDB := testutil.NewDB(t)
	c := testutil.CreateCustomer(t, gormDB, "Bob", "bob@example.com", nil)

	now := time.Now()
	require.NoError(t, gormDB.Create(&model.Order{CustomerID: &c.ID, State: model.OrderStateOpen, DateOrdered: now}).Error)

	//2つ目のOPENはストレージ側で弾かれる
	err := gormDB.Create(&model.Order{CustomerID: &c.ID, State: model.OrderStateOpen, DateOrdered: now}).Error
	assert.Error(t, err)

	//COMPLETEなら何件でも持てる
	require.NoError(t, gormDB.Create(&model.Order{CustomerID: &c.ID, State: model.OrderStateComplete, DateOrdered: now}).Error)
	require.NoError(t, gormDB.Create(&model.Order{CustomerID: &c.ID, State: model.OrderStateComplete, DateOrdered: now}).Error)
}

func TestOrderGorm_GetOrCreateOpen_AfterRaceReadsWinner(t *testing.T) {
	ctx := context.Background()
	gormDB := testutil.NewDB(t)
	c := testutil.CreateCustomer(t, gormDB, "Carol", "carol@example.com", nil)
	orders := infraRepo.NewOrderGormRepository(gormDB)

	tm := infraRepo.NewTxManagerGorm(gormDB)
	var got model.Order
	err := tm.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().GetOrCreateOpenByCustomerID(ctx, c.ID)
		if err != nil {
			return err
		}
		got = o
		//同じtx内で再度呼んでも同じ行
		again, err := r.Orders().GetOrCreateOpenByCustomerID(ctx, c.ID)
		if err != nil {
			return err
		}
		assert.Equal(t, o.ID, again.ID)
		return nil
	})
	require.NoError(t, err)

	open, err := orders.FindOpenByCustomerID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, got.ID, open.ID)
}

func TestOrderGorm_Complete_OnlyOnce(t *testing.T) {
	ctx := context.Background()
	gormDB := testutil.NewDB(t)
	c := testutil.CreateCustomer(t, gormDB, "Dan", "dan@example.com", nil)
	orders := infraRepo.NewOrderGormRepository(gormDB)

	o, err := orders.GetOrCreateOpenByCustomerID(ctx, c.ID)
	require.NoError(t, err)

	require.NoError(t, o.MarkComplete("tx-1", time.Now()))
	require.NoError(t, orders.Complete(ctx, o))

	stored, err := orders.FindByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStateComplete, stored.State)
	require.NotNil(t, stored.TransactionID)
	assert.Equal(t, "tx-1", *stored.TransactionID)

	//確定済みをもう一度確定しようとするとエラー
	assert.ErrorIs(t, orders.Complete(ctx, o), model.ErrOrderAlreadyComplete)

	//確定後は新しいOPENが作られる
	next, err := orders.GetOrCreateOpenByCustomerID(ctx, c.ID)
	require.NoError(t, err)
	assert.NotEqual(t, o.ID, next.ID)
}

func TestOrderGorm_Complete_NotFound(t *testing.T) {
	ctx := context.Background()
	orders := infraRepo.NewOrderGormRepository(testutil.NewDB(t))

	o := model.Order{ID: 999, State: model.OrderStateOpen}
	require.NoError(t, o.MarkComplete("tx", time.Now()))
	assert.ErrorIs(t, orders.Complete(ctx, o), repo.ErrNotFound)
}

func TestOrderGorm_ListCompletedByCustomerID(t *testing.T) {
	ctx := context.Background()
	gormDB := testutil.NewDB(t)
	c := testutil.CreateCustomer(t, gormDB, "Eve", "eve@example.com", nil)
	orders := infraRepo.NewOrderGormRepository(gormDB)

	for i := 0; i < 3; i++ {
		o, err := orders.GetOrCreateOpenByCustomerID(ctx, c.ID)
		require.NoError(t, err)
		require.NoError(t, o.MarkComplete("tx", time.Now()))
		require.NoError(t, orders.Complete(ctx, o))
	}
	_, err := orders.GetOrCreateOpenByCustomerID(ctx, c.ID)
	require.NoError(t, err)

	items, total, err := orders.ListCompletedByCustomerID(ctx, c.ID, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, items, 2)
	for _, o := range items {
		assert.Equal(t, model.OrderStateComplete, o.State)
	}
}
