package storage

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/and161185/paytrack/internal/errs"
	"github.com/and161185/paytrack/internal/model"
	"github.com/and161185/paytrack/internal/reconcile"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// newTestStorage connects to DATABASE_URI; tests are skipped without it.
func newTestStorage(t *testing.T) *PostgresStorage {
	t.Helper()

	uri := os.Getenv("DATABASE_URI")
	if uri == "" {
		t.Skip("DATABASE_URI is not set")
	}

	store, err := NewPostgreStorage(context.Background(), uri)
	require.NoError(t, err)
	t.Cleanup(store.Close)

	return store
}

func uniqueName(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

func TestStorageCustomerNameIsCaseInsensitive(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	name := uniqueName("Ana")
	c, err := store.CreateCustomer(ctx, name)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.DeleteCustomer(ctx, c.ID) })

	_, err = store.CreateCustomer(ctx, "ana"+name[3:])
	require.ErrorIs(t, err, errs.ErrCustomerExists)

	found, err := store.FindCustomerByName(ctx, "ANA"+name[3:])
	require.NoError(t, err)
	require.Equal(t, c.ID, found.ID)
}

func TestStorageReconcilePayments(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()
	engine := reconcile.NewEngine(store, zaptest.NewLogger(t).Sugar())

	customer, err := store.CreateCustomer(ctx, uniqueName("customer"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.DeleteCustomer(ctx, customer.ID) })

	order, err := store.CreateOrder(ctx, customer.ID, decimal.NewFromInt(100))
	require.NoError(t, err)
	require.Equal(t, model.Pending, order.Status)

	for _, amount := range []int64{40, 60} {
		_, err := store.InsertPayment(ctx, order.ID, decimal.NewFromInt(amount), time.Now())
		require.NoError(t, err)
	}
	extra, err := store.InsertPayment(ctx, order.ID, decimal.NewFromInt(10), time.Now())
	require.NoError(t, err)

	res, err := engine.ReconcileOrder(ctx, order.ID)
	require.NoError(t, err)
	require.True(t, res.Order.Balance.Equal(decimal.NewFromInt(-10)))
	require.Equal(t, model.Credit, res.Order.Status)
	require.True(t, res.CreditBalance.Equal(decimal.NewFromInt(10)))

	orderID, err := store.DeletePayment(ctx, extra.ID)
	require.NoError(t, err)
	require.Equal(t, order.ID, orderID)

	res, err = engine.ReconcileOrder(ctx, order.ID)
	require.NoError(t, err)
	require.Equal(t, model.FullyPaid, res.Order.Status)
	require.True(t, res.CreditBalance.IsZero())

	payments, err := store.ListPaymentsByOrder(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, payments, 2)

	deleted, err := store.DeleteOrder(ctx, order.ID)
	require.NoError(t, err)
	require.Equal(t, customer.ID, deleted.CustomerID)

	_, err = store.GetOrder(ctx, order.ID)
	require.ErrorIs(t, err, errs.ErrOrderNotFound)
}

func TestStorageNotFound(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	_, err := store.InsertPayment(ctx, -1, decimal.NewFromInt(1), time.Now())
	require.ErrorIs(t, err, errs.ErrOrderNotFound)

	_, err = store.DeletePayment(ctx, -1)
	require.ErrorIs(t, err, errs.ErrPaymentNotFound)

	_, err = store.UpdateCustomerCredit(ctx, -1, func([]model.Order) decimal.Decimal { return decimal.Zero })
	require.ErrorIs(t, err, errs.ErrCustomerNotFound)
}

func TestStorageRejectsNonPositiveMoney(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	customer, err := store.CreateCustomer(ctx, uniqueName("zero"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.DeleteCustomer(ctx, customer.ID) })

	_, err = store.CreateOrder(ctx, customer.ID, decimal.Zero)
	require.ErrorIs(t, err, errs.ErrValidation)

	order, err := store.CreateOrder(ctx, customer.ID, decimal.NewFromInt(10))
	require.NoError(t, err)

	_, err = store.InsertPayment(ctx, order.ID, decimal.RequireFromString("0.004"), time.Now())
	require.ErrorIs(t, err, errs.ErrValidation)
}
