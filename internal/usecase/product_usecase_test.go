package usecase_test

import (
	"context"
	"net/http"
	"testing"

	infraRepo "storefront/internal/infra/repository"
	"storefront/internal/testutil"
	"storefront/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestProductUsecase_ListAndDetail(t *testing.T) {
	ctx := context.Background()
	gormDB := testutil.NewDB(t)
	uc := usecase.NewProductUsecase(infraRepo.NewProductGormRepository(gormDB), zap.NewNop())

	shorts := testutil.CreateProduct(t, gormDB, testutil.ProductSeed{Name: "Shorts", Price: "49.99"})
	hidden := testutil.CreateProduct(t, gormDB, testutil.ProductSeed{Name: "Hidden", Price: "1.50", Inactive: true})

	list, err := uc.ListProducts(ctx, usecase.ListProductsInput{Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(1), list.Total)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "49.99", list.Items[0].Price)
	assert.True(t, list.Items[0].InStock)

	got, err := uc.GetProduct(ctx, shorts.ID)
	require.NoError(t, err)
	assert.Equal(t, "Shorts", got.Name)

	_, err = uc.GetProduct(ctx, hidden.ID)
	requireHTTPError(t, err, http.StatusNotFound, usecase.CodeNotFound)

	_, err = uc.GetProduct(ctx, 0)
	requireHTTPError(t, err, http.StatusBadRequest, usecase.CodeValidation)
}

func TestProductUsecase_ListValidation(t *testing.T) {
	uc := usecase.NewProductUsecase(infraRepo.NewProductGormRepository(testutil.NewDB(t)), nil)

	for _, in := range []usecase.ListProductsInput{
		{Page: 0, Limit: 20},
		{Page: 1, Limit: 0},
		{Page: 1, Limit: 101},
		{Page: 1, Limit: 20, Sort: "random"},
	} {
		_, err := uc.ListProducts(context.Background(), in)
		requireHTTPError(t, err, http.StatusBadRequest, usecase.CodeValidation)
	}
}
