package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	Pending       OrderStatus = "PENDING"
	PartiallyPaid OrderStatus = "PARTIALLY_PAID"
	FullyPaid     OrderStatus = "FULLY_PAID"
	Credit        OrderStatus = "CREDIT"
)

func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch st := OrderStatus(s); st {
	case Pending, PartiallyPaid, FullyPaid, Credit:
		return st, true
	}
	return "", false
}

// Totals are the derived payment fields of an order.
type Totals struct {
	TotalPaid decimal.Decimal `json:"total_paid"`
	Balance   decimal.Decimal `json:"balance"`
	Status    OrderStatus     `json:"status"`
}

type Order struct {
	ID           int             `json:"id"`
	CustomerID   int             `json:"customer_id"`
	CustomerName string          `json:"customer,omitempty"`
	Total        decimal.Decimal `json:"total"`
	TotalPaid    decimal.Decimal `json:"total_paid"`
	Balance      decimal.Decimal `json:"balance"`
	Status       OrderStatus     `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
}

func (o Order) Totals() Totals {
	return Totals{TotalPaid: o.TotalPaid, Balance: o.Balance, Status: o.Status}
}

type OrderFilter struct {
	Customer string
	Date     *time.Time
	Status   OrderStatus
}

type Payment struct {
	ID      int             `json:"id"`
	OrderID int             `json:"order_id"`
	Amount  decimal.Decimal `json:"amount"`
	PaidAt  time.Time       `json:"paid_at"`
}

// HistoryEntry is one replayed payment row of an order's history.
type HistoryEntry struct {
	PaymentID int             `json:"payment_id"`
	PaidAt    time.Time       `json:"paid_at"`
	Amount    decimal.Decimal `json:"amount"`
	Remaining decimal.Decimal `json:"remaining"`
	Status    OrderStatus     `json:"status"`
	Credit    decimal.Decimal `json:"credit"`
}

type Customer struct {
	ID            int             `json:"id"`
	Name          string          `json:"name"`
	CreditBalance decimal.Decimal `json:"credit_balance"`
	OrderCount    int             `json:"orders"`
}

type Summary struct {
	Pending       int             `json:"pending"`
	PartiallyPaid int             `json:"partially_paid"`
	TotalDebt     decimal.Decimal `json:"total_debt"`
}

type User struct {
	ID    int
	Login string
}
