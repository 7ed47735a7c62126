package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/and161185/paytrack/internal/errs"
	"github.com/and161185/paytrack/internal/model"
	"github.com/and161185/paytrack/internal/reconcile"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

type PostgresStorage struct {
	db *pgxpool.Pool
}

func (store *PostgresStorage) initSchema(ctx context.Context) error {
	const initSchemaQuery = `
	CREATE TABLE IF NOT EXISTS users (
		id SERIAL PRIMARY KEY,
		login TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT NOW()
	);
	CREATE TABLE IF NOT EXISTS customers (
		id SERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		credit_balance NUMERIC(12,2) NOT NULL DEFAULT 0,
		created_at TIMESTAMP DEFAULT NOW()
	);
	CREATE UNIQUE INDEX IF NOT EXISTS customers_name_lower_idx ON customers (LOWER(name));
	CREATE TABLE IF NOT EXISTS orders (
		id SERIAL PRIMARY KEY,
		customer_id INT NOT NULL REFERENCES customers(id) ON DELETE CASCADE,
		total NUMERIC(12,2) NOT NULL CHECK (total > 0),
		total_paid NUMERIC(12,2) NOT NULL DEFAULT 0,
		balance NUMERIC(12,2) NOT NULL,
		status TEXT NOT NULL DEFAULT 'PENDING',
		created_at TIMESTAMP DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS orders_customer_id_idx ON orders (customer_id);
	CREATE TABLE IF NOT EXISTS payments (
		id SERIAL PRIMARY KEY,
		order_id INT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		amount NUMERIC(12,2) NOT NULL CHECK (amount > 0),
		paid_at TIMESTAMP DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS payments_order_id_idx ON payments (order_id, paid_at);`

	_, err := store.db.Exec(ctx, initSchemaQuery)
	return err
}

func NewPostgreStorage(ctx context.Context, DatabaseURI string) (*PostgresStorage, error) {
	db, err := pgxpool.New(ctx, DatabaseURI)
	if err != nil {
		return nil, err
	}

	storage := &PostgresStorage{db: db}

	if err := storage.Ping(ctx); err != nil {
		return nil, err
	}

	if err := storage.initSchema(ctx); err != nil {
		return nil, err
	}

	return storage, nil
}

func (store *PostgresStorage) Ping(ctx context.Context) error {
	return store.db.Ping(ctx)
}

func (store *PostgresStorage) Close() {
	store.db.Close()
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// users

func (store *PostgresStorage) CreateUser(ctx context.Context, login string, passwordHash string) error {
	const insertUserQuery = `INSERT INTO users (login, password_hash) VALUES ($1, $2)`

	_, err := store.db.Exec(ctx, insertUserQuery, login, passwordHash)
	if err != nil {
		if pgCode(err) == pgUniqueViolation {
			return errs.ErrLoginAlreadyExists
		}
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

func (s *PostgresStorage) GetUserByLogin(ctx context.Context, login string) (model.User, string, error) {
	const query = `SELECT id, login, password_hash FROM users WHERE login = $1`

	var user model.User
	var hash string

	err := s.db.QueryRow(ctx, query, login).Scan(&user.ID, &user.Login, &hash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, "", errs.ErrUserNotFound
		}
		return model.User{}, "", fmt.Errorf("get user by login: %w", err)
	}

	return user, hash, nil
}

func (s *PostgresStorage) GetUserByID(ctx context.Context, id int) (model.User, error) {
	const query = `SELECT id, login FROM users WHERE id = $1`

	var user model.User

	err := s.db.QueryRow(ctx, query, id).Scan(&user.ID, &user.Login)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, errs.ErrUserNotFound
		}
		return model.User{}, fmt.Errorf("get user by id: %w", err)
	}

	return user, nil
}

// customers

func (s *PostgresStorage) CreateCustomer(ctx context.Context, name string) (model.Customer, error) {
	const query = `INSERT INTO customers (name, credit_balance) VALUES ($1, 0) RETURNING id`

	customer := model.Customer{Name: name, CreditBalance: decimal.Zero}
	err := s.db.QueryRow(ctx, query, name).Scan(&customer.ID)
	if err != nil {
		if pgCode(err) == pgUniqueViolation {
			return model.Customer{}, errs.ErrCustomerExists
		}
		return model.Customer{}, fmt.Errorf("insert customer: %w", err)
	}

	return customer, nil
}

const customerColumns = `
	c.id, c.name, c.credit_balance,
	(SELECT COUNT(*) FROM orders o WHERE o.customer_id = c.id) AS orders`

func scanCustomer(row pgx.Row) (model.Customer, error) {
	var c model.Customer
	err := row.Scan(&c.ID, &c.Name, &c.CreditBalance, &c.OrderCount)
	return c, err
}

func (s *PostgresStorage) GetCustomer(ctx context.Context, id int) (model.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers c WHERE c.id = $1`

	c, err := scanCustomer(s.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Customer{}, errs.ErrCustomerNotFound
		}
		return model.Customer{}, fmt.Errorf("get customer: %w", err)
	}
	return c, nil
}

func (s *PostgresStorage) FindCustomerByName(ctx context.Context, name string) (model.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers c WHERE LOWER(c.name) = LOWER($1)`

	c, err := scanCustomer(s.db.QueryRow(ctx, query, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Customer{}, errs.ErrCustomerNotFound
		}
		return model.Customer{}, fmt.Errorf("find customer: %w", err)
	}
	return c, nil
}

func (s *PostgresStorage) ListCustomers(ctx context.Context) ([]model.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers c ORDER BY c.name`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	var list []model.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		list = append(list, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return list, nil
}

func (s *PostgresStorage) RenameCustomer(ctx context.Context, id int, name string) error {
	const query = `UPDATE customers SET name = $1 WHERE id = $2`

	cmdTag, err := s.db.Exec(ctx, query, name, id)
	if err != nil {
		if pgCode(err) == pgUniqueViolation {
			return errs.ErrCustomerExists
		}
		return fmt.Errorf("rename customer: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return errs.ErrCustomerNotFound
	}

	return nil
}

// DeleteCustomer removes the customer with all orders and payments.
func (s *PostgresStorage) DeleteCustomer(ctx context.Context, id int) error {
	const query = `DELETE FROM customers WHERE id = $1`

	cmdTag, err := s.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return errs.ErrCustomerNotFound
	}

	return nil
}

// UpdateCustomerCredit locks the customer row, recomputes credit over all
// of the customer's orders and stores it.
func (s *PostgresStorage) UpdateCustomerCredit(ctx context.Context, customerID int, compute reconcile.ComputeCredit) (decimal.Decimal, error) {
	const lockQuery = `SELECT id FROM customers WHERE id = $1 FOR UPDATE`
	const updateQuery = `UPDATE customers SET credit_balance = $1 WHERE id = $2`

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var id int
	if err := tx.QueryRow(ctx, lockQuery, customerID).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, errs.ErrCustomerNotFound
		}
		return decimal.Zero, fmt.Errorf("lock customer: %w", err)
	}

	orders, err := listOrdersByCustomer(ctx, tx, customerID)
	if err != nil {
		return decimal.Zero, err
	}

	credit := compute(orders)
	if _, err := tx.Exec(ctx, updateQuery, credit, customerID); err != nil {
		return decimal.Zero, fmt.Errorf("update customer credit: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return decimal.Zero, fmt.Errorf("commit: %w", err)
	}

	return credit, nil
}

// orders

const orderColumns = `o.id, o.customer_id, c.name, o.total, o.total_paid, o.balance, o.status, o.created_at`

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func scanOrders(rows pgx.Rows) ([]model.Order, error) {
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		var o model.Order
		err := rows.Scan(&o.ID, &o.CustomerID, &o.CustomerName, &o.Total, &o.TotalPaid, &o.Balance, &o.Status, &o.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration: %w", err)
	}

	return orders, nil
}

func listOrdersByCustomer(ctx context.Context, q querier, customerID int) ([]model.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders o
		JOIN customers c ON c.id = o.customer_id
		WHERE o.customer_id = $1
		ORDER BY o.id DESC`

	rows, err := q.Query(ctx, query, customerID)
	if err != nil {
		return nil, fmt.Errorf("list customer orders: %w", err)
	}
	return scanOrders(rows)
}

func (s *PostgresStorage) CreateOrder(ctx context.Context, customerID int, total decimal.Decimal) (model.Order, error) {
	const query = `
		INSERT INTO orders (customer_id, total, total_paid, balance, status)
		VALUES ($1, $2, 0, $2, $3)
		RETURNING id, created_at`

	order := model.Order{
		CustomerID: customerID,
		Total:      total,
		TotalPaid:  decimal.Zero,
		Balance:    total,
		Status:     model.Pending,
	}

	err := s.db.QueryRow(ctx, query, customerID, total, model.Pending).Scan(&order.ID, &order.CreatedAt)
	if err != nil {
		switch pgCode(err) {
		case pgForeignKeyViolation:
			return model.Order{}, errs.ErrCustomerNotFound
		case pgCheckViolation:
			return model.Order{}, errs.Validation("order total must be positive")
		}
		return model.Order{}, fmt.Errorf("insert order: %w", err)
	}

	return order, nil
}

func (s *PostgresStorage) GetOrder(ctx context.Context, id int) (model.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders o
		JOIN customers c ON c.id = o.customer_id
		WHERE o.id = $1`

	orders, err := s.queryOrders(ctx, query, id)
	if err != nil {
		return model.Order{}, fmt.Errorf("get order: %w", err)
	}
	if len(orders) == 0 {
		return model.Order{}, errs.ErrOrderNotFound
	}
	return orders[0], nil
}

func (s *PostgresStorage) queryOrders(ctx context.Context, query string, args ...any) ([]model.Order, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return scanOrders(rows)
}

func (s *PostgresStorage) ListOrdersByCustomer(ctx context.Context, customerID int) ([]model.Order, error) {
	return listOrdersByCustomer(ctx, s.db, customerID)
}

// ListOrders applies the customer name and creation date filters. The
// status filter is left to the caller, which recomputes statuses first.
func (s *PostgresStorage) ListOrders(ctx context.Context, filter model.OrderFilter) ([]model.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders o
		JOIN customers c ON c.id = o.customer_id
		WHERE 1=1`

	var args []any
	if filter.Customer != "" {
		args = append(args, "%"+filter.Customer+"%")
		query += fmt.Sprintf(" AND c.name ILIKE $%d", len(args))
	}
	if filter.Date != nil {
		args = append(args, filter.Date.Format(time.DateOnly))
		query += fmt.Sprintf(" AND o.created_at::date = $%d::date", len(args))
	}
	query += " ORDER BY o.created_at DESC, o.id DESC"

	orders, err := s.queryOrders(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

func (s *PostgresStorage) ListOrderIDs(ctx context.Context) ([]int, error) {
	const query = `SELECT id FROM orders ORDER BY id`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list order ids: %w", err)
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan order id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return ids, nil
}

// DeleteOrder removes the order's payments and then the order itself in one
// transaction and returns the deleted order.
func (s *PostgresStorage) DeleteOrder(ctx context.Context, id int) (model.Order, error) {
	const deletePaymentsQuery = `DELETE FROM payments WHERE order_id = $1`
	const deleteOrderQuery = `
		DELETE FROM orders WHERE id = $1
		RETURNING id, customer_id, total, total_paid, balance, status, created_at`

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return model.Order{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, deletePaymentsQuery, id); err != nil {
		return model.Order{}, fmt.Errorf("delete order payments: %w", err)
	}

	var o model.Order
	err = tx.QueryRow(ctx, deleteOrderQuery, id).
		Scan(&o.ID, &o.CustomerID, &o.Total, &o.TotalPaid, &o.Balance, &o.Status, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Order{}, errs.ErrOrderNotFound
		}
		return model.Order{}, fmt.Errorf("delete order: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return model.Order{}, fmt.Errorf("commit: %w", err)
	}

	return o, nil
}

// UpdateOrderTotals locks the order row, sums its payments and stores the
// totals returned by compute, all in one transaction.
func (s *PostgresStorage) UpdateOrderTotals(ctx context.Context, orderID int, compute reconcile.ComputeTotals) (model.Order, error) {
	const lockQuery = `
		SELECT id, customer_id, total, total_paid, balance, status, created_at
		FROM orders
		WHERE id = $1
		FOR UPDATE`
	const sumQuery = `SELECT COALESCE(SUM(amount), 0) FROM payments WHERE order_id = $1`
	const updateQuery = `
		UPDATE orders
		SET total_paid = $1, balance = $2, status = $3
		WHERE id = $4`

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return model.Order{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var o model.Order
	err = tx.QueryRow(ctx, lockQuery, orderID).
		Scan(&o.ID, &o.CustomerID, &o.Total, &o.TotalPaid, &o.Balance, &o.Status, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Order{}, errs.ErrOrderNotFound
		}
		return model.Order{}, fmt.Errorf("lock order: %w", err)
	}

	var totalPaid decimal.Decimal
	if err := tx.QueryRow(ctx, sumQuery, orderID).Scan(&totalPaid); err != nil {
		return model.Order{}, fmt.Errorf("sum payments: %w", err)
	}

	totals := compute(o, totalPaid)
	_, err = tx.Exec(ctx, updateQuery, totals.TotalPaid, totals.Balance, totals.Status, orderID)
	if err != nil {
		return model.Order{}, fmt.Errorf("update order totals: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return model.Order{}, fmt.Errorf("commit: %w", err)
	}

	o.TotalPaid, o.Balance, o.Status = totals.TotalPaid, totals.Balance, totals.Status
	return o, nil
}

// payments

func (s *PostgresStorage) InsertPayment(ctx context.Context, orderID int, amount decimal.Decimal, paidAt time.Time) (model.Payment, error) {
	const query = `
		INSERT INTO payments (order_id, amount, paid_at)
		VALUES ($1, $2, $3)
		RETURNING id`

	p := model.Payment{OrderID: orderID, Amount: amount, PaidAt: paidAt}
	err := s.db.QueryRow(ctx, query, orderID, amount, paidAt).Scan(&p.ID)
	if err != nil {
		switch pgCode(err) {
		case pgForeignKeyViolation:
			return model.Payment{}, errs.ErrOrderNotFound
		case pgCheckViolation:
			return model.Payment{}, errs.Validation("payment amount must be positive")
		}
		return model.Payment{}, fmt.Errorf("insert payment: %w", err)
	}

	return p, nil
}

// DeletePayment removes the payment and returns the id of its order.
func (s *PostgresStorage) DeletePayment(ctx context.Context, id int) (int, error) {
	const query = `DELETE FROM payments WHERE id = $1 RETURNING order_id`

	var orderID int
	err := s.db.QueryRow(ctx, query, id).Scan(&orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, errs.ErrPaymentNotFound
		}
		return 0, fmt.Errorf("delete payment: %w", err)
	}

	return orderID, nil
}

func (s *PostgresStorage) ListPaymentsByOrder(ctx context.Context, orderID int) ([]model.Payment, error) {
	const query = `
		SELECT id, order_id, amount, paid_at
		FROM payments
		WHERE order_id = $1
		ORDER BY paid_at ASC, id ASC`

	rows, err := s.db.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	var list []model.Payment
	for rows.Next() {
		var p model.Payment
		if err := rows.Scan(&p.ID, &p.OrderID, &p.Amount, &p.PaidAt); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		list = append(list, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return list, nil
}
