package storage

import (
	"context"
	"sync"
	"time"

	"github.com/dsmirnov/gophershop/internal/models"
	"github.com/google/uuid"
)

// MemoryStorage is an in-memory Storage used in tests. It holds the same
// contract as the Postgres backend: the check-debit-insert sequence runs
// under one lock, so credit can never be spent twice.
type MemoryStorage struct {
	mu       sync.Mutex
	accounts map[string]*models.Account // by id
	byName   map[string]string          // username -> id
	orders   map[string][]models.Order  // by account id

	// InsertFault, when set, makes CreateOrder fail after the balance
	// check, simulating a storage fault on the order insert.
	InsertFault error
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		accounts: make(map[string]*models.Account),
		byName:   make(map[string]string),
		orders:   make(map[string][]models.Order),
	}
}

func (s *MemoryStorage) Close() {}

func (s *MemoryStorage) CreateAccount(_ context.Context, username, passwordHash string) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byName[username]; ok {
		return nil, ErrUsernameExists
	}

	account := &models.Account{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: passwordHash,
		Credit:       StartingCredit,
	}
	s.accounts[account.ID] = account
	s.byName[username] = account.ID

	clone := *account
	return &clone, nil
}

func (s *MemoryStorage) GetAccountByUsername(_ context.Context, username string) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byName[username]
	if !ok {
		return nil, nil
	}
	clone := *s.accounts[id]
	return &clone, nil
}

func (s *MemoryStorage) GetAccountByID(_ context.Context, accountID string) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[accountID]
	if !ok {
		return nil, ErrAccountNotFound
	}
	clone := *account
	return &clone, nil
}

func (s *MemoryStorage) CreateOrder(_ context.Context, accountID string, items []models.OrderItem, totalAmount float64) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if totalAmount < 0 {
		return nil, ErrNegativeAmount
	}

	account, ok := s.accounts[accountID]
	if !ok {
		return nil, ErrAccountNotFound
	}
	if totalAmount > account.Credit {
		return nil, ErrInsufficientCredit
	}
	account.Credit -= totalAmount

	if s.InsertFault != nil {
		// debit and insert share one transaction, so the debit rolls back
		account.Credit += totalAmount
		return nil, s.InsertFault
	}

	order := models.Order{
		ID:          uuid.NewString(),
		AccountID:   accountID,
		Items:       append([]models.OrderItem(nil), items...),
		TotalAmount: totalAmount,
		CreatedAt:   time.Now(),
	}
	s.orders[accountID] = append(s.orders[accountID], order)
	return &order, nil
}

func (s *MemoryStorage) GetOrdersByAccount(_ context.Context, accountID string) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := s.orders[accountID]
	orders := make([]models.Order, 0, len(stored))
	// newest first, matching the Postgres query ordering
	for i := len(stored) - 1; i >= 0; i-- {
		order := stored[i]
		order.Items = append([]models.OrderItem(nil), order.Items...)
		orders = append(orders, order)
	}
	return orders, nil
}
