package storage

import (
	"context"
	"github.com/dsmirnov/gophershop/internal/models"
)

type Storage interface {
	CreateAccount(ctx context.Context, username, passwordHash string) (*models.Account, error)
	GetAccountByUsername(ctx context.Context, username string) (*models.Account, error)
	GetAccountByID(ctx context.Context, accountID string) (*models.Account, error)

	// CreateOrder debits the account and persists the order atomically.
	// The debit never commits without the order, and the account's credit
	// can never go negative.
	CreateOrder(ctx context.Context, accountID string, items []models.OrderItem, totalAmount float64) (*models.Order, error)
	GetOrdersByAccount(ctx context.Context, accountID string) ([]models.Order, error)

	Close()
}
