package repository_test

import (
	"context"
	"testing"

	"storefront/internal/domain/model"
	infraRepo "storefront/internal/infra/repository"
	repo "storefront/internal/repository"
	"storefront/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupOpenOrder(t *testing.T) (*gorm.DB, model.Order, model.Product) {
	t.Helper()
	gormDB := testutil.NewDB(t)
	c := testutil.CreateCustomer(t, gormDB, "Alice", "alice@example.com", nil)
	p := testutil.CreateProduct(t, gormDB, testutil.ProductSeed{Name: "Shorts", Price: "49.99"})

	o, err := infraRepo.NewOrderGormRepository(gormDB).GetOrCreateOpenByCustomerID(context.Background(), c.ID)
	require.NoError(t, err)
	return gormDB, o, p
}

func TestOrderItemGorm_AddQuantity_SameProductIsOneLine(t *testing.T) {
	ctx := context.Background()
	gormDB, o, p := setupOpenOrder(t)
	items := infraRepo.NewOrderItemGormRepository(gormDB)

	q, err := items.AddQuantity(ctx, o.ID, p.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), q)

	q, err = items.AddQuantity(ctx, o.ID, p.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), q)

	list, err := items.ListByOrderID(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(2), list[0].Quantity)
}

func TestOrderItemGorm_AddQuantity_DecrementToZeroDeletes(t *testing.T) {
	ctx := context.Background()
	gormDB, o, p := setupOpenOrder(t)
	items := infraRepo.NewOrderItemGormRepository(gormDB)

	_, err := items.AddQuantity(ctx, o.ID, p.ID, 1)
	require.NoError(t, err)

	q, err := items.AddQuantity(ctx, o.ID, p.ID, -1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), q)

	_, err = items.FindByOrderAndProduct(ctx, o.ID, p.ID)
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestOrderItemGorm_AddQuantity_DecrementMissingLineIsNoop(t *testing.T) {
	ctx := context.Background()
	gormDB, o, p := setupOpenOrder(t)
	items := infraRepo.NewOrderItemGormRepository(gormDB)

	q, err := items.AddQuantity(ctx, o.ID, p.ID, -1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), q)

	list, err := items.ListByOrderID(ctx, o.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestOrderItemGorm_SetQuantityAndSize(t *testing.T) {
	ctx := context.Background()
	gormDB, o, p := setupOpenOrder(t)
	items := infraRepo.NewOrderItemGormRepository(gormDB)

	assert.ErrorIs(t, items.SetQuantity(ctx, o.ID, p.ID, 3), repo.ErrNotFound)
	assert.ErrorIs(t, items.SetSize(ctx, o.ID, p.ID, model.SizeM), repo.ErrNotFound)

	_, err := items.AddQuantity(ctx, o.ID, p.ID, 1)
	require.NoError(t, err)

	require.NoError(t, items.SetQuantity(ctx, o.ID, p.ID, 5))
	require.NoError(t, items.SetSize(ctx, o.ID, p.ID, model.SizeXL))

	it, err := items.FindByOrderAndProduct(ctx, o.ID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), it.Quantity)
	require.NotNil(t, it.Size)
	assert.Equal(t, model.SizeXL, *it.Size)

	//商品マスタのサイズは変わらない
	var stored model.Product
	require.NoError(t, gormDB.First(&stored, p.ID).Error)
	assert.Nil(t, stored.Size)
}

func TestOrderItemGorm_DeleteAndClear(t *testing.T) {
	ctx := context.Background()
	gormDB, o, p := setupOpenOrder(t)
	p2 := testutil.CreateProduct(t, gormDB, testutil.ProductSeed{Name: "Ebook", Price: "65.00", Digital: true})
	items := infraRepo.NewOrderItemGormRepository(gormDB)

	assert.ErrorIs(t, items.DeleteByOrderAndProduct(ctx, o.ID, p.ID), repo.ErrNotFound)

	require.NoError(t, items.CreateBulk(ctx, o.ID, []model.OrderItem{
		{ProductID: &p.ID, Quantity: 2},
		{ProductID: &p2.ID, Quantity: 0},
	}))

	require.NoError(t, items.DeleteEmpty(ctx, o.ID))
	list, err := items.ListByOrderID(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, p.ID, *list[0].ProductID)

	require.NoError(t, items.DeleteByOrderAndProduct(ctx, o.ID, p.ID))

	require.NoError(t, items.CreateBulk(ctx, o.ID, []model.OrderItem{{ProductID: &p2.ID, Quantity: 1}}))
	require.NoError(t, items.ClearByOrderID(ctx, o.ID))
	list, err = items.ListByOrderID(ctx, o.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}
