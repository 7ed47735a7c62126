// Package reconcile derives order balances, statuses and customer credit
// from stored totals and payments.
package reconcile

import (
	"github.com/and161185/paytrack/internal/metrics"
	"github.com/and161185/paytrack/internal/model"
	"github.com/shopspring/decimal"
)

// Epsilon is the tolerance for treating an amount as zero. Money is kept
// with two decimal places, so anything below half a cent is residue.
var Epsilon = decimal.New(5, -3)

func isZero(d decimal.Decimal) bool {
	return d.Abs().LessThanOrEqual(Epsilon)
}

func isPositive(d decimal.Decimal) bool {
	return d.GreaterThan(Epsilon)
}

func isNegative(d decimal.Decimal) bool {
	return d.LessThan(Epsilon.Neg())
}

// DeriveStatus classifies an order. The first matching rule wins:
// negative balance is credit, zero balance with everything paid is fully
// paid, a positive payment with a positive balance is partially paid, and
// anything else is pending.
func DeriveStatus(total, totalPaid, balance decimal.Decimal) model.OrderStatus {
	switch {
	case isNegative(balance):
		return model.Credit
	case isZero(balance) && isZero(totalPaid.Sub(total)):
		return model.FullyPaid
	case isPositive(totalPaid) && isPositive(balance):
		return model.PartiallyPaid
	default:
		return model.Pending
	}
}

// Totals computes the derived fields of an order with the given total and
// payment sum.
func Totals(total, totalPaid decimal.Decimal) model.Totals {
	balance := total.Sub(totalPaid)
	return model.Totals{
		TotalPaid: totalPaid,
		Balance:   balance,
		Status:    DeriveStatus(total, totalPaid, balance),
	}
}

// Recompute replaces the stored status of every order with the derived one.
func Recompute(orders []model.Order) []model.Order {
	for i := range orders {
		o := &orders[i]
		status := DeriveStatus(o.Total, o.TotalPaid, o.Balance)
		if o.Status != status {
			metrics.StatusDrift.Inc()
		}
		o.Status = status
	}
	return orders
}

// FilterByStatus keeps orders with the given status. An empty status keeps
// everything. Statuses must already be recomputed.
func FilterByStatus(orders []model.Order, status model.OrderStatus) []model.Order {
	if status == "" {
		return orders
	}
	filtered := make([]model.Order, 0, len(orders))
	for _, o := range orders {
		if o.Status == status {
			filtered = append(filtered, o)
		}
	}
	return filtered
}

// Summarize counts pending and partially paid orders and sums all balances.
func Summarize(orders []model.Order) model.Summary {
	summary := model.Summary{TotalDebt: decimal.Zero}
	for _, o := range orders {
		switch DeriveStatus(o.Total, o.TotalPaid, o.Balance) {
		case model.Pending:
			summary.Pending++
		case model.PartiallyPaid:
			summary.PartiallyPaid++
		}
		summary.TotalDebt = summary.TotalDebt.Add(o.Balance)
	}
	return summary
}
