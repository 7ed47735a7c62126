package reconcile

import (
	"github.com/and161185/paytrack/internal/model"
	"github.com/shopspring/decimal"
)

// CreditBalance sums the overpaid part of every negative balance.
func CreditBalance(balances []decimal.Decimal) decimal.Decimal {
	credit := decimal.Zero
	for _, b := range balances {
		if isNegative(b) {
			credit = credit.Add(b.Abs())
		}
	}
	return credit
}

func orderBalances(orders []model.Order) []decimal.Decimal {
	balances := make([]decimal.Decimal, 0, len(orders))
	for _, o := range orders {
		balances = append(balances, o.Balance)
	}
	return balances
}
