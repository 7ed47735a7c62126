package reconcile

import (
	"context"

	"github.com/and161185/paytrack/internal/errs"
	"github.com/and161185/paytrack/internal/metrics"
	"github.com/and161185/paytrack/internal/model"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ComputeTotals derives new order totals from the locked order row and the
// current sum of its payments.
type ComputeTotals func(order model.Order, totalPaid decimal.Decimal) model.Totals

// ComputeCredit derives a customer's credit balance from all their orders.
type ComputeCredit func(orders []model.Order) decimal.Decimal

// Store persists reconciliation results. Each method must read and write
// inside one transaction that locks the order (or customer) row, so
// concurrent calls for the same row serialize.
type Store interface {
	UpdateOrderTotals(ctx context.Context, orderID int, compute ComputeTotals) (model.Order, error)
	UpdateCustomerCredit(ctx context.Context, customerID int, compute ComputeCredit) (decimal.Decimal, error)
}

type Engine struct {
	store  Store
	logger *zap.SugaredLogger
}

func NewEngine(store Store, logger *zap.SugaredLogger) *Engine {
	return &Engine{store: store, logger: logger}
}

type Result struct {
	Order         model.Order
	CreditBalance decimal.Decimal
}

func computeTotals(order model.Order, totalPaid decimal.Decimal) model.Totals {
	return Totals(order.Total, totalPaid)
}

func computeCredit(orders []model.Order) decimal.Decimal {
	return CreditBalance(orderBalances(orders))
}

// ReconcileOrder recomputes total paid, balance and status of the order
// from its payments, then the credit balance of its customer. Failures are
// reported as *errs.ReconcileError naming the stage that failed.
func (e *Engine) ReconcileOrder(ctx context.Context, orderID int) (Result, error) {
	order, err := e.store.UpdateOrderTotals(ctx, orderID, computeTotals)
	if err != nil {
		metrics.Reconciliations.WithLabelValues(string(errs.StageOrder), metrics.ResultError).Inc()
		e.logger.Errorw("reconcile order", "order_id", orderID, "error", err)
		return Result{}, &errs.ReconcileError{Stage: errs.StageOrder, OrderID: orderID, Err: err}
	}
	metrics.Reconciliations.WithLabelValues(string(errs.StageOrder), metrics.ResultOK).Inc()

	credit, err := e.ReconcileCustomerCredit(ctx, order.CustomerID)
	if err != nil {
		return Result{Order: order}, &errs.ReconcileError{
			Stage:      errs.StageCustomer,
			OrderID:    orderID,
			CustomerID: order.CustomerID,
			Err:        err,
		}
	}

	return Result{Order: order, CreditBalance: credit}, nil
}

// ReconcileCustomerCredit recomputes the customer's credit balance over all
// of their orders.
func (e *Engine) ReconcileCustomerCredit(ctx context.Context, customerID int) (decimal.Decimal, error) {
	credit, err := e.store.UpdateCustomerCredit(ctx, customerID, computeCredit)
	if err != nil {
		metrics.Reconciliations.WithLabelValues(string(errs.StageCustomer), metrics.ResultError).Inc()
		e.logger.Errorw("reconcile customer credit", "customer_id", customerID, "error", err)
		return decimal.Zero, err
	}
	metrics.Reconciliations.WithLabelValues(string(errs.StageCustomer), metrics.ResultOK).Inc()
	return credit, nil
}
