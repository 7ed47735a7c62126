package reconcile

import (
	"github.com/and161185/paytrack/internal/model"
	"github.com/shopspring/decimal"
)

// ReplayHistory walks payments in the given order (oldest first) and
// reports the remaining balance after each one. Remaining is clamped at
// zero; the overpayment a row introduces is reported as its credit.
func ReplayHistory(total decimal.Decimal, payments []model.Payment) []model.HistoryEntry {
	entries := make([]model.HistoryEntry, 0, len(payments))

	signed := total
	overpaid := decimal.Zero
	for _, p := range payments {
		signed = signed.Sub(p.Amount)

		entry := model.HistoryEntry{
			PaymentID: p.ID,
			PaidAt:    p.PaidAt,
			Amount:    p.Amount,
			Remaining: decimal.Zero,
			Status:    model.FullyPaid,
			Credit:    decimal.Zero,
		}

		if isPositive(signed) {
			entry.Remaining = signed
			entry.Status = model.Pending
		}

		if isNegative(signed) {
			nowOverpaid := signed.Neg()
			entry.Credit = nowOverpaid.Sub(overpaid)
			overpaid = nowOverpaid
		}

		entries = append(entries, entry)
	}

	return entries
}
