package storage

import (
	"context"
	"errors"
	"time"

	"github.com/dsmirnov/gophershop/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

var (
	ErrUsernameExists     = errors.New("username already exists")
	ErrAccountNotFound    = errors.New("account not found")
	ErrInsufficientCredit = errors.New("insufficient credit")
	ErrNegativeAmount     = errors.New("negative amount")
)

// StartingCredit is granted to every account at registration.
const StartingCredit = 100

type PostgresStorage struct {
	pool *pgxpool.Pool
	log  *logrus.Logger
}

func NewPostgresStorage(ctx context.Context, dsn string, log *logrus.Logger) (*PostgresStorage, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, err
	}

	storage := &PostgresStorage{pool: pool, log: log}
	if err := storage.runMigrations(ctx); err != nil {
		return nil, err
	}

	return storage, nil
}

func (s *PostgresStorage) runMigrations(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS accounts (
			id UUID PRIMARY KEY,
			username VARCHAR(255) UNIQUE NOT NULL,
			password_hash VARCHAR(255) NOT NULL,
			credit NUMERIC NOT NULL CHECK (credit >= 0)
		);

		CREATE TABLE IF NOT EXISTS orders (
			id UUID PRIMARY KEY,
			account_id UUID REFERENCES accounts(id) NOT NULL,
			total_amount NUMERIC NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		);

		CREATE TABLE IF NOT EXISTS order_items (
			id UUID PRIMARY KEY,
			order_id UUID REFERENCES orders(id) NOT NULL,
			position INT NOT NULL,
			product_name VARCHAR(255) NOT NULL,
			price NUMERIC NOT NULL,
			image_url TEXT NOT NULL
		);
	`)
	return err
}

func (s *PostgresStorage) Close() {
	s.pool.Close()
}

func (s *PostgresStorage) CreateAccount(ctx context.Context, username, passwordHash string) (*models.Account, error) {
	account := &models.Account{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: passwordHash,
		Credit:       StartingCredit,
	}
	_, err := s.pool.Exec(ctx, "INSERT INTO accounts (id, username, password_hash, credit) VALUES ($1, $2, $3, $4)",
		account.ID, account.Username, account.PasswordHash, account.Credit)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return nil, ErrUsernameExists
		}
		return nil, err
	}
	return account, nil
}

func (s *PostgresStorage) GetAccountByUsername(ctx context.Context, username string) (*models.Account, error) {
	account := &models.Account{}
	err := s.pool.QueryRow(ctx, "SELECT id, username, password_hash, credit FROM accounts WHERE username = $1", username).
		Scan(&account.ID, &account.Username, &account.PasswordHash, &account.Credit)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // account not found
		}
		return nil, err
	}
	return account, nil
}

func (s *PostgresStorage) GetAccountByID(ctx context.Context, accountID string) (*models.Account, error) {
	account := &models.Account{}
	err := s.pool.QueryRow(ctx, "SELECT id, username, password_hash, credit FROM accounts WHERE id = $1", accountID).
		Scan(&account.ID, &account.Username, &account.PasswordHash, &account.Credit)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return account, nil
}

// CreateOrder runs the whole checkout mutation in one transaction. The debit
// is a conditional update, so two concurrent checkouts can never spend the
// same credit twice, and a failed order insert rolls the debit back.
func (s *PostgresStorage) CreateOrder(ctx context.Context, accountID string, items []models.OrderItem, totalAmount float64) (*models.Order, error) {
	// `credit >= $1` holds trivially for a negative total, so refuse it here
	if totalAmount < 0 {
		return nil, ErrNegativeAmount
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			s.log.Errorf("failed to rollback transaction: %v", err)
		}
	}()

	tag, err := tx.Exec(ctx, "UPDATE accounts SET credit = credit - $1 WHERE id = $2 AND credit >= $1",
		totalAmount, accountID)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := tx.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM accounts WHERE id = $1)", accountID).Scan(&exists); err != nil {
			return nil, err
		}
		if !exists {
			return nil, ErrAccountNotFound
		}
		return nil, ErrInsufficientCredit
	}

	order := &models.Order{
		ID:          uuid.NewString(),
		AccountID:   accountID,
		Items:       items,
		TotalAmount: totalAmount,
		CreatedAt:   time.Now(),
	}
	_, err = tx.Exec(ctx, "INSERT INTO orders (id, account_id, total_amount, created_at) VALUES ($1, $2, $3, $4)",
		order.ID, order.AccountID, order.TotalAmount, order.CreatedAt)
	if err != nil {
		return nil, err
	}

	for i, item := range items {
		_, err = tx.Exec(ctx, "INSERT INTO order_items (id, order_id, position, product_name, price, image_url) VALUES ($1, $2, $3, $4, $5, $6)",
			uuid.NewString(), order.ID, i, item.ProductName, item.Price, item.ImageURL)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *PostgresStorage) GetOrdersByAccount(ctx context.Context, accountID string) ([]models.Order, error) {
	rows, err := s.pool.Query(ctx, "SELECT id, total_amount, created_at FROM orders WHERE account_id = $1 ORDER BY created_at DESC", accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		order := models.Order{AccountID: accountID}
		if err := rows.Scan(&order.ID, &order.TotalAmount, &order.CreatedAt); err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range orders {
		items, err := s.getOrderItems(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}
	return orders, nil
}

func (s *PostgresStorage) getOrderItems(ctx context.Context, orderID string) ([]models.OrderItem, error) {
	rows, err := s.pool.Query(ctx, "SELECT product_name, price, image_url FROM order_items WHERE order_id = $1 ORDER BY position", orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.OrderItem
	for rows.Next() {
		var item models.OrderItem
		if err := rows.Scan(&item.ProductName, &item.Price, &item.ImageURL); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
