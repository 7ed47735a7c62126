package reconcile

import (
	"testing"
	"time"

	"github.com/and161185/paytrack/internal/model"
	"github.com/stretchr/testify/require"
)

func payments(amounts ...string) []model.Payment {
	start := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	list := make([]model.Payment, 0, len(amounts))
	for i, a := range amounts {
		list = append(list, model.Payment{
			ID:      i + 1,
			OrderID: 1,
			Amount:  dec(a),
			PaidAt:  start.Add(time.Duration(i) * time.Hour),
		})
	}
	return list
}

func TestReplayHistory(t *testing.T) {
	entries := ReplayHistory(dec("100"), payments("40", "60", "10", "5"))
	require.Len(t, entries, 4)

	requireDecimal(t, "60", entries[0].Remaining)
	require.Equal(t, model.Pending, entries[0].Status)
	requireDecimal(t, "0", entries[0].Credit)

	requireDecimal(t, "0", entries[1].Remaining)
	require.Equal(t, model.FullyPaid, entries[1].Status)
	requireDecimal(t, "0", entries[1].Credit)

	requireDecimal(t, "0", entries[2].Remaining)
	require.Equal(t, model.FullyPaid, entries[2].Status)
	requireDecimal(t, "10", entries[2].Credit)

	// a further payment after an overpayment is entirely credit
	requireDecimal(t, "0", entries[3].Remaining)
	requireDecimal(t, "5", entries[3].Credit)
}

func TestReplayHistoryOverpaysMidway(t *testing.T) {
	entries := ReplayHistory(dec("50"), payments("30", "35"))
	require.Len(t, entries, 2)

	requireDecimal(t, "20", entries[0].Remaining)
	requireDecimal(t, "0", entries[1].Remaining)
	require.Equal(t, model.FullyPaid, entries[1].Status)
	requireDecimal(t, "15", entries[1].Credit)
}

func TestReplayHistoryKeepsPaymentFields(t *testing.T) {
	list := payments("12.50")
	entries := ReplayHistory(dec("20"), list)

	require.Equal(t, list[0].ID, entries[0].PaymentID)
	require.Equal(t, list[0].PaidAt, entries[0].PaidAt)
	requireDecimal(t, "12.5", entries[0].Amount)
	requireDecimal(t, "7.5", entries[0].Remaining)
}

func TestReplayHistoryEmpty(t *testing.T) {
	entries := ReplayHistory(dec("100"), nil)
	require.NotNil(t, entries)
	require.Empty(t, entries)
}
