package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/and161185/paytrack/internal/errs"
)

type errorBody struct {
	Error string `json:"error"`
}

// reconcileErrorBody lets a client tell a rejected payment apart from one
// that was stored while the derived totals were not refreshed.
type reconcileErrorBody struct {
	Error           string `json:"error"`
	Stage           string `json:"stage"`
	OrderID         int    `json:"order_id"`
	CustomerID      int    `json:"customer_id,omitempty"`
	PaymentRecorded bool   `json:"payment_recorded"`
	OrderReconciled bool   `json:"order_reconciled"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errs.Validation("malformed body: %v", err)
	}
	return nil
}

func (srv *Server) writeError(w http.ResponseWriter, err error) {
	var rerr *errs.ReconcileError
	switch {
	case errors.As(err, &rerr):
		srv.writeReconcileError(w, rerr, true)
	case errors.Is(err, errs.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
	case errors.Is(err, errs.ErrValidation):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	case errors.Is(err, errs.ErrCustomerExists), errors.Is(err, errs.ErrLoginAlreadyExists):
		writeJSON(w, http.StatusConflict, errorBody{Error: err.Error()})
	default:
		srv.deps.Logger.Errorf("request failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}

// writeReconcileError reports a failed reconciliation. paymentRecorded tells
// whether the request stored or removed a payment before the failure.
func (srv *Server) writeReconcileError(w http.ResponseWriter, rerr *errs.ReconcileError, paymentRecorded bool) {
	writeJSON(w, http.StatusInternalServerError, reconcileErrorBody{
		Error:           rerr.Error(),
		Stage:           string(rerr.Stage),
		OrderID:         rerr.OrderID,
		CustomerID:      rerr.CustomerID,
		PaymentRecorded: paymentRecorded,
		OrderReconciled: rerr.Stage == errs.StageCustomer,
	})
}
