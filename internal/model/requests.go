package model

import (
	"errors"
	"reflect"
	"strings"

	"github.com/and161185/paytrack/internal/errs"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// decimals are validated as float64 so numeric tags like gt=0 apply
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks request struct tags and reports failures as errs.ErrValidation.
func Validate(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		msgs := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			msgs = append(msgs, fe.Field()+" failed "+fe.Tag())
		}
		return errs.Validation("%s", strings.Join(msgs, "; "))
	}
	return errs.Validation("%v", err)
}

type Credentials struct {
	Login    string `json:"login" validate:"required,max=64"`
	Password string `json:"password" validate:"required"`
}

type PaymentRequest struct {
	OrderID int             `json:"order_id" validate:"required,gt=0"`
	Amount  decimal.Decimal `json:"amount" validate:"gt=0"`
}

type OrderRequest struct {
	CustomerID   int             `json:"customer_id" validate:"omitempty,gt=0"`
	CustomerName string          `json:"customer_name" validate:"required_without=CustomerID,max=100"`
	Total        decimal.Decimal `json:"total" validate:"gt=0"`
}

type CustomerRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// PaymentResult is returned after a payment is recorded or removed.
type PaymentResult struct {
	PaymentID     int             `json:"payment_id"`
	OrderID       int             `json:"order_id"`
	TotalPaid     decimal.Decimal `json:"total_paid"`
	Balance       decimal.Decimal `json:"balance"`
	Status        OrderStatus     `json:"status"`
	CreditBalance decimal.Decimal `json:"credit_balance"`
}

type History struct {
	OrderID   int             `json:"order_id"`
	Total     decimal.Decimal `json:"total"`
	TotalPaid decimal.Decimal `json:"total_paid"`
	Balance   decimal.Decimal `json:"balance"`
	Status    OrderStatus     `json:"status"`
	Payments  []HistoryEntry  `json:"payments"`
}
