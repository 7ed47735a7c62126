package server

import (
	"net/http"

	"github.com/and161185/paytrack/internal/metrics"
	"github.com/and161185/paytrack/internal/middleware"
	"github.com/and161185/paytrack/internal/model"
	"github.com/and161185/paytrack/internal/reconcile"
	"github.com/and161185/paytrack/internal/utils"
	"github.com/go-chi/chi/v5"
)

func paymentResult(paymentID int, res reconcile.Result) model.PaymentResult {
	return model.PaymentResult{
		PaymentID:     paymentID,
		OrderID:       res.Order.ID,
		TotalPaid:     res.Order.TotalPaid,
		Balance:       res.Order.Balance,
		Status:        res.Order.Status,
		CreditBalance: res.CreditBalance,
	}
}

// CreatePaymentHandler stores the payment and then reconciles its order and
// customer. The payment stays recorded even when reconciliation fails.
func (srv *Server) CreatePaymentHandler(w http.ResponseWriter, r *http.Request) {
	var req model.PaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		srv.writeError(w, err)
		return
	}
	// round first so a sub-cent amount fails gt=0
	req.Amount = req.Amount.Round(2)
	if err := model.Validate(req); err != nil {
		srv.writeError(w, err)
		return
	}

	payment, err := srv.storage.InsertPayment(r.Context(), req.OrderID, req.Amount, srv.now())
	if err != nil {
		srv.writeError(w, err)
		return
	}
	metrics.PaymentEvents.WithLabelValues("recorded").Inc()
	user, _ := middleware.UserFromContext(r.Context())
	srv.deps.Logger.Infow("payment recorded",
		"payment_id", payment.ID, "order_id", payment.OrderID, "amount", payment.Amount.String(), "user", user.Login)

	res, err := srv.engine.ReconcileOrder(r.Context(), payment.OrderID)
	if err != nil {
		srv.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, paymentResult(payment.ID, res))
}

func (srv *Server) DeletePaymentHandler(w http.ResponseWriter, r *http.Request) {
	id, err := utils.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		srv.writeError(w, err)
		return
	}

	orderID, err := srv.storage.DeletePayment(r.Context(), id)
	if err != nil {
		srv.writeError(w, err)
		return
	}
	metrics.PaymentEvents.WithLabelValues("deleted").Inc()
	user, _ := middleware.UserFromContext(r.Context())
	srv.deps.Logger.Infow("payment deleted", "payment_id", id, "order_id", orderID, "user", user.Login)

	res, err := srv.engine.ReconcileOrder(r.Context(), orderID)
	if err != nil {
		srv.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, paymentResult(id, res))
}
