package usecase_test

import (
	"context"
	"net/http"
	"testing"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
	"storefront/internal/testutil"
	"storefront/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestResolveGuestCustomer_ClearsStaleLines(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, true)
	guest := usecase.NewGuestUsecase(zap.NewNop())
	existing := testutil.CreateCustomer(t, f.db, "Old Name", "g@example.com", nil)

	// 前回途中で終わった注文
	stale, err := f.repos.Orders().GetOrCreateOpenByCustomerID(ctx, existing.ID)
	require.NoError(t, err)
	_, err = f.repos.OrderItems().AddQuantity(ctx, stale.ID, f.shorts.ID, 4)
	require.NoError(t, err)

	var gotCustomer model.Customer
	var gotOrder model.Order
	err = f.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		gotCustomer, gotOrder, err = guest.ResolveGuestCustomer(ctx, r, "g@example.com", "New Name")
		return err
	})
	require.NoError(t, err)

	assert.Equal(t, existing.ID, gotCustomer.ID)
	assert.Equal(t, "New Name", gotCustomer.Name)
	assert.Equal(t, stale.ID, gotOrder.ID)

	items, err := f.repos.OrderItems().ListByOrderID(ctx, gotOrder.ID)
	require.NoError(t, err)
	assert.Empty(t, items)

	stored, err := f.repos.Customers().FindByID(ctx, existing.ID)
	require.NoError(t, err)
	assert.Equal(t, "New Name", stored.Name)
}

func TestResolveGuestCustomer_MissingFields(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, true)
	guest := usecase.NewGuestUsecase(nil)

	err := f.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		_, _, err := guest.ResolveGuestCustomer(ctx, r, "g@example.com", "  ")
		return err
	})
	he := requireHTTPError(t, err, http.StatusBadRequest, usecase.CodeMissingField)
	assert.Equal(t, "missing field: name", he.Message)

	err = f.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		_, _, err := guest.ResolveGuestCustomer(ctx, r, "", "G")
		return err
	})
	he = requireHTTPError(t, err, http.StatusBadRequest, usecase.CodeMissingField)
	assert.Equal(t, "missing field: email", he.Message)
}
