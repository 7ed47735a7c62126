package errs

import (
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("not found")
var ErrOrderNotFound = fmt.Errorf("order %w", ErrNotFound)
var ErrPaymentNotFound = fmt.Errorf("payment %w", ErrNotFound)
var ErrCustomerNotFound = fmt.Errorf("customer %w", ErrNotFound)
var ErrUserNotFound = fmt.Errorf("user %w", ErrNotFound)

var ErrValidation = errors.New("validation failed")
var ErrCustomerExists = errors.New("customer already exists")
var ErrInvalidToken = errors.New("invalid token")
var ErrLoginAlreadyExists = errors.New("login already exists")

// ErrTotalsStale means the payment event was stored but the order totals
// were not recomputed.
var ErrTotalsStale = errors.New("payment recorded, order totals stale")

// ErrPartialReconciliation means the order totals were updated but the
// customer's credit balance was not.
var ErrPartialReconciliation = errors.New("order reconciled, customer credit stale")

type ReconcileStage string

const (
	StageOrder    ReconcileStage = "order"
	StageCustomer ReconcileStage = "customer"
)

type ReconcileError struct {
	Stage      ReconcileStage
	OrderID    int
	CustomerID int
	Err        error
}

func (e *ReconcileError) Error() string {
	if e.Stage == StageCustomer {
		return fmt.Sprintf("reconcile customer %d credit: %v", e.CustomerID, e.Err)
	}
	return fmt.Sprintf("reconcile order %d: %v", e.OrderID, e.Err)
}

func (e *ReconcileError) Unwrap() []error {
	if e.Stage == StageCustomer {
		return []error{ErrPartialReconciliation, e.Err}
	}
	return []error{ErrTotalsStale, e.Err}
}

func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
