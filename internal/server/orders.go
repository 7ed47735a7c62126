package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/and161185/paytrack/internal/errs"
	"github.com/and161185/paytrack/internal/model"
	"github.com/and161185/paytrack/internal/reconcile"
	"github.com/and161185/paytrack/internal/utils"
	"github.com/go-chi/chi/v5"
)

func orderFilterFromQuery(r *http.Request) (model.OrderFilter, error) {
	q := r.URL.Query()

	filter := model.OrderFilter{Customer: strings.TrimSpace(q.Get("customer"))}

	date, err := utils.ParseDate(q.Get("date"))
	if err != nil {
		return model.OrderFilter{}, err
	}
	filter.Date = date

	if raw := strings.TrimSpace(q.Get("status")); raw != "" {
		status, ok := model.ParseOrderStatus(strings.ToUpper(raw))
		if !ok {
			return model.OrderFilter{}, errs.Validation("unknown status %q", raw)
		}
		filter.Status = status
	}

	return filter, nil
}

// ListOrdersHandler filters by customer name and creation date in the store
// and by status only after statuses are recomputed.
func (srv *Server) ListOrdersHandler(w http.ResponseWriter, r *http.Request) {
	filter, err := orderFilterFromQuery(r)
	if err != nil {
		srv.writeError(w, err)
		return
	}

	orders, err := srv.storage.ListOrders(r.Context(), filter)
	if err != nil {
		srv.writeError(w, err)
		return
	}

	orders = reconcile.FilterByStatus(reconcile.Recompute(orders), filter.Status)
	if orders == nil {
		orders = []model.Order{}
	}
	writeJSON(w, http.StatusOK, orders)
}

func (srv *Server) OrdersSummaryHandler(w http.ResponseWriter, r *http.Request) {
	orders, err := srv.storage.ListOrders(r.Context(), model.OrderFilter{})
	if err != nil {
		srv.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, reconcile.Summarize(orders))
}

func (srv *Server) resolveCustomer(r *http.Request, req model.OrderRequest) (model.Customer, error) {
	ctx := r.Context()
	if req.CustomerID > 0 {
		return srv.storage.GetCustomer(ctx, req.CustomerID)
	}

	name := strings.TrimSpace(req.CustomerName)
	customer, err := srv.storage.FindCustomerByName(ctx, name)
	if !errors.Is(err, errs.ErrCustomerNotFound) {
		return customer, err
	}

	customer, err = srv.storage.CreateCustomer(ctx, name)
	if errors.Is(err, errs.ErrCustomerExists) {
		// created concurrently by another request
		return srv.storage.FindCustomerByName(ctx, name)
	}
	return customer, err
}

func (srv *Server) CreateOrderHandler(w http.ResponseWriter, r *http.Request) {
	var req model.OrderRequest
	if err := decodeJSON(r, &req); err != nil {
		srv.writeError(w, err)
		return
	}
	req.CustomerName = strings.TrimSpace(req.CustomerName)
	req.Total = req.Total.Round(2)
	if err := model.Validate(req); err != nil {
		srv.writeError(w, err)
		return
	}

	customer, err := srv.resolveCustomer(r, req)
	if err != nil {
		srv.writeError(w, err)
		return
	}

	order, err := srv.storage.CreateOrder(r.Context(), customer.ID, req.Total)
	if err != nil {
		srv.writeError(w, err)
		return
	}
	order.CustomerName = customer.Name

	writeJSON(w, http.StatusCreated, order)
}

// DeleteOrderHandler removes the order with its payments and refreshes the
// customer's credit balance.
func (srv *Server) DeleteOrderHandler(w http.ResponseWriter, r *http.Request) {
	id, err := utils.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		srv.writeError(w, err)
		return
	}

	order, err := srv.storage.DeleteOrder(r.Context(), id)
	if err != nil {
		srv.writeError(w, err)
		return
	}

	if _, err := srv.engine.ReconcileCustomerCredit(r.Context(), order.CustomerID); err != nil {
		srv.writeReconcileError(w, &errs.ReconcileError{
			Stage:      errs.StageCustomer,
			OrderID:    order.ID,
			CustomerID: order.CustomerID,
			Err:        err,
		}, false)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (srv *Server) OrderHistoryHandler(w http.ResponseWriter, r *http.Request) {
	id, err := utils.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		srv.writeError(w, err)
		return
	}

	order, err := srv.storage.GetOrder(r.Context(), id)
	if err != nil {
		srv.writeError(w, err)
		return
	}

	payments, err := srv.storage.ListPaymentsByOrder(r.Context(), id)
	if err != nil {
		srv.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.History{
		OrderID:   order.ID,
		Total:     order.Total,
		TotalPaid: order.TotalPaid,
		Balance:   order.Balance,
		Status:    reconcile.DeriveStatus(order.Total, order.TotalPaid, order.Balance),
		Payments:  reconcile.ReplayHistory(order.Total, payments),
	})
}
