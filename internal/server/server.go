package server

import (
	"context"
	"net/http"
	"time"

	"github.com/and161185/paytrack/internal/config"
	"github.com/and161185/paytrack/internal/deps"
	"github.com/and161185/paytrack/internal/metrics"
	"github.com/and161185/paytrack/internal/middleware"
	"github.com/and161185/paytrack/internal/model"
	"github.com/and161185/paytrack/internal/reconcile"
	chiMiddleware "github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -destination=../mocks/mock_storage.go -package=mocks github.com/and161185/paytrack/internal/server Storage

type Storage interface {
	reconcile.Store

	Ping(ctx context.Context) error

	CreateUser(ctx context.Context, login, passwordHash string) error
	GetUserByLogin(ctx context.Context, login string) (model.User, string, error)
	GetUserByID(ctx context.Context, id int) (model.User, error)

	CreateCustomer(ctx context.Context, name string) (model.Customer, error)
	GetCustomer(ctx context.Context, id int) (model.Customer, error)
	FindCustomerByName(ctx context.Context, name string) (model.Customer, error)
	ListCustomers(ctx context.Context) ([]model.Customer, error)
	RenameCustomer(ctx context.Context, id int, name string) error
	DeleteCustomer(ctx context.Context, id int) error

	CreateOrder(ctx context.Context, customerID int, total decimal.Decimal) (model.Order, error)
	GetOrder(ctx context.Context, id int) (model.Order, error)
	ListOrders(ctx context.Context, filter model.OrderFilter) ([]model.Order, error)
	ListOrdersByCustomer(ctx context.Context, customerID int) ([]model.Order, error)
	ListOrderIDs(ctx context.Context) ([]int, error)
	DeleteOrder(ctx context.Context, id int) (model.Order, error)

	InsertPayment(ctx context.Context, orderID int, amount decimal.Decimal, paidAt time.Time) (model.Payment, error)
	DeletePayment(ctx context.Context, id int) (int, error)
	ListPaymentsByOrder(ctx context.Context, orderID int) ([]model.Payment, error)
}

type Server struct {
	storage Storage
	engine  *reconcile.Engine
	config  *config.Config
	deps    *deps.Deps
	now     func() time.Time
}

func NewServer(storage Storage, config *config.Config, deps *deps.Deps) *Server {
	return &Server{
		storage: storage,
		engine:  reconcile.NewEngine(storage, deps.Logger),
		config:  config,
		deps:    deps,
		now:     time.Now,
	}
}

func (srv *Server) buildRouter() http.Handler {
	logger := srv.deps.Logger

	router := chi.NewRouter()
	router.Use(chiMiddleware.Recoverer)
	router.Use(chiMiddleware.StripSlashes)
	router.Use(middleware.DecompressMiddleware)
	router.Use(middleware.LogMiddleware(logger))
	router.Use(middleware.CompressMiddleware(logger))

	router.Get("/ping", srv.PingHandler)
	router.Method(http.MethodGet, "/metrics", metrics.Handler())

	router.Post("/api/user/register", srv.RegisterHandler)
	router.Post("/api/user/login", srv.LoginHandler)

	router.Group(func(r chi.Router) {
		r.Use(middleware.AuthMiddleware(srv.storage, srv.deps.TokenManager))

		r.Route("/api/customers", func(r chi.Router) {
			r.Get("/", srv.ListCustomersHandler)
			r.Post("/", srv.CreateCustomerHandler)
			r.Put("/{id}", srv.RenameCustomerHandler)
			r.Delete("/{id}", srv.DeleteCustomerHandler)
			r.Get("/{id}/orders", srv.CustomerOrdersHandler)
		})

		r.Route("/api/orders", func(r chi.Router) {
			r.Get("/", srv.ListOrdersHandler)
			r.Post("/", srv.CreateOrderHandler)
			r.Get("/summary", srv.OrdersSummaryHandler)
			r.Get("/{id}/history", srv.OrderHistoryHandler)
			r.Delete("/{id}", srv.DeleteOrderHandler)
		})

		r.Route("/api/payments", func(r chi.Router) {
			r.Post("/", srv.CreatePaymentHandler)
			r.Delete("/{id}", srv.DeletePaymentHandler)
		})
	})

	return router
}

func (srv *Server) Run(ctx context.Context) error {
	if srv.config.RepairOnStart {
		if err := srv.RepairOrders(ctx); err != nil {
			srv.deps.Logger.Warnf("start-up repair incomplete: %v", err)
		}
	}

	router := srv.buildRouter()

	server := &http.Server{
		Addr:              srv.config.RunAddress,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		srv.deps.Logger.Infof("listening on %s", srv.config.RunAddress)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			srv.deps.Logger.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func (srv *Server) PingHandler(w http.ResponseWriter, r *http.Request) {
	if err := srv.storage.Ping(r.Context()); err != nil {
		srv.deps.Logger.Errorf("ping: %v", err)
		http.Error(w, "db unavailable", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}
