package server

import (
	"net/http"
	"strings"

	"github.com/and161185/paytrack/internal/model"
	"github.com/and161185/paytrack/internal/reconcile"
	"github.com/and161185/paytrack/internal/utils"
	"github.com/go-chi/chi/v5"
)

func (srv *Server) ListCustomersHandler(w http.ResponseWriter, r *http.Request) {
	customers, err := srv.storage.ListCustomers(r.Context())
	if err != nil {
		srv.writeError(w, err)
		return
	}
	if customers == nil {
		customers = []model.Customer{}
	}
	writeJSON(w, http.StatusOK, customers)
}

func decodeCustomerRequest(r *http.Request) (model.CustomerRequest, error) {
	var req model.CustomerRequest
	if err := decodeJSON(r, &req); err != nil {
		return req, err
	}
	req.Name = strings.TrimSpace(req.Name)
	return req, model.Validate(req)
}

func (srv *Server) CreateCustomerHandler(w http.ResponseWriter, r *http.Request) {
	req, err := decodeCustomerRequest(r)
	if err != nil {
		srv.writeError(w, err)
		return
	}

	customer, err := srv.storage.CreateCustomer(r.Context(), req.Name)
	if err != nil {
		srv.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, customer)
}

func (srv *Server) RenameCustomerHandler(w http.ResponseWriter, r *http.Request) {
	id, err := utils.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		srv.writeError(w, err)
		return
	}

	req, err := decodeCustomerRequest(r)
	if err != nil {
		srv.writeError(w, err)
		return
	}

	if err := srv.storage.RenameCustomer(r.Context(), id, req.Name); err != nil {
		srv.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteCustomerHandler removes the customer together with all orders and
// payments.
func (srv *Server) DeleteCustomerHandler(w http.ResponseWriter, r *http.Request) {
	id, err := utils.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		srv.writeError(w, err)
		return
	}

	if err := srv.storage.DeleteCustomer(r.Context(), id); err != nil {
		srv.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (srv *Server) CustomerOrdersHandler(w http.ResponseWriter, r *http.Request) {
	id, err := utils.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		srv.writeError(w, err)
		return
	}

	if _, err := srv.storage.GetCustomer(r.Context(), id); err != nil {
		srv.writeError(w, err)
		return
	}

	orders, err := srv.storage.ListOrdersByCustomer(r.Context(), id)
	if err != nil {
		srv.writeError(w, err)
		return
	}

	orders = reconcile.Recompute(orders)
	if orders == nil {
		orders = []model.Order{}
	}
	writeJSON(w, http.StatusOK, orders)
}
