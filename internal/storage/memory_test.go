package storage

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsmirnov/gophershop/internal/models"
)

func TestCreateAccountStartingCredit(t *testing.T) {
	s := NewMemoryStorage()
	ctx := context.Background()

	account, err := s.CreateAccount(ctx, "alice", "hash")
	require.NoError(t, err)
	assert.Equal(t, "alice", account.Username)
	assert.Equal(t, float64(StartingCredit), account.Credit)
	assert.NotEmpty(t, account.ID)
}

func TestCreateAccountDuplicateUsername(t *testing.T) {
	s := NewMemoryStorage()
	ctx := context.Background()

	first, err := s.CreateAccount(ctx, "alice", "hash-1")
	require.NoError(t, err)

	_, err = s.CreateAccount(ctx, "alice", "hash-2")
	assert.ErrorIs(t, err, ErrUsernameExists)

	// first registration is untouched
	got, err := s.GetAccountByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "hash-1", got.PasswordHash)
	assert.Equal(t, float64(StartingCredit), got.Credit)
}

func TestGetAccountByUsernameMissing(t *testing.T) {
	s := NewMemoryStorage()

	account, err := s.GetAccountByUsername(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, account)
}

func TestCreateOrderDebitsCredit(t *testing.T) {
	s := NewMemoryStorage()
	ctx := context.Background()

	account, err := s.CreateAccount(ctx, "alice", "hash")
	require.NoError(t, err)

	items := []models.OrderItem{
		{ProductName: "Product 1", Price: 30, ImageURL: "http://img"},
		{ProductName: "Product 2", Price: 10, ImageURL: "http://img"},
	}
	order, err := s.CreateOrder(ctx, account.ID, items, 40)
	require.NoError(t, err)
	assert.Equal(t, account.ID, order.AccountID)
	assert.Equal(t, items, order.Items)

	got, err := s.GetAccountByID(ctx, account.ID)
	require.NoError(t, err)
	assert.InDelta(t, 60, got.Credit, 1e-9)

	orders, err := s.GetOrdersByAccount(ctx, account.ID)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, order.ID, orders[0].ID)
}

func TestCreateOrderInsufficientCredit(t *testing.T) {
	s := NewMemoryStorage()
	ctx := context.Background()

	account, err := s.CreateAccount(ctx, "alice", "hash")
	require.NoError(t, err)

	_, err = s.CreateOrder(ctx, account.ID, nil, 101)
	assert.ErrorIs(t, err, ErrInsufficientCredit)

	got, err := s.GetAccountByID(ctx, account.ID)
	require.NoError(t, err)
	assert.InDelta(t, StartingCredit, got.Credit, 1e-9)

	orders, err := s.GetOrdersByAccount(ctx, account.ID)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestCreateOrderNegativeAmountRejected(t *testing.T) {
	s := NewMemoryStorage()
	ctx := context.Background()

	account, err := s.CreateAccount(ctx, "alice", "hash")
	require.NoError(t, err)

	// a negative "debit" must not inflate the balance
	_, err = s.CreateOrder(ctx, account.ID, []models.OrderItem{{ProductName: "Product X", Price: -50}}, -50)
	assert.ErrorIs(t, err, ErrNegativeAmount)

	got, err := s.GetAccountByID(ctx, account.ID)
	require.NoError(t, err)
	assert.InDelta(t, StartingCredit, got.Credit, 1e-9)

	orders, err := s.GetOrdersByAccount(ctx, account.ID)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestCreateOrderInsertFaultRestoresCredit(t *testing.T) {
	s := NewMemoryStorage()
	ctx := context.Background()

	account, err := s.CreateAccount(ctx, "alice", "hash")
	require.NoError(t, err)

	s.InsertFault = errors.New("insert failed")
	_, err = s.CreateOrder(ctx, account.ID, nil, 40)
	require.Error(t, err)

	// the failed insert must take the debit down with it
	got, err := s.GetAccountByID(ctx, account.ID)
	require.NoError(t, err)
	assert.InDelta(t, StartingCredit, got.Credit, 1e-9)

	orders, err := s.GetOrdersByAccount(ctx, account.ID)
	require.NoError(t, err)
	assert.Empty(t, orders)

	s.InsertFault = nil
	_, err = s.CreateOrder(ctx, account.ID, nil, 40)
	require.NoError(t, err)

	got, err = s.GetAccountByID(ctx, account.ID)
	require.NoError(t, err)
	assert.InDelta(t, 60, got.Credit, 1e-9)
}

func TestGetOrdersByAccountReturnsCopies(t *testing.T) {
	s := NewMemoryStorage()
	ctx := context.Background()

	account, err := s.CreateAccount(ctx, "alice", "hash")
	require.NoError(t, err)

	items := []models.OrderItem{{ProductName: "Product 1", Price: 30, ImageURL: "http://img"}}
	_, err = s.CreateOrder(ctx, account.ID, items, 30)
	require.NoError(t, err)

	orders, err := s.GetOrdersByAccount(ctx, account.ID)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	orders[0].Items[0].Price = 999

	fresh, err := s.GetOrdersByAccount(ctx, account.ID)
	require.NoError(t, err)
	require.Len(t, fresh, 1)
	assert.InDelta(t, 30, fresh[0].Items[0].Price, 1e-9)
}

func TestCreateOrderUnknownAccount(t *testing.T) {
	s := NewMemoryStorage()

	_, err := s.CreateOrder(context.Background(), "no-such-id", nil, 10)
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestConcurrentOrdersNeverOverspend(t *testing.T) {
	s := NewMemoryStorage()
	ctx := context.Background()

	account, err := s.CreateAccount(ctx, "alice", "hash")
	require.NoError(t, err)

	const workers = 2
	const total = 60.0

	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.CreateOrder(ctx, account.ID, nil, total)
		}(i)
	}
	wg.Wait()

	var succeeded, rejected int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		default:
			assert.ErrorIs(t, err, ErrInsufficientCredit)
			rejected++
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, rejected)

	got, err := s.GetAccountByID(ctx, account.ID)
	require.NoError(t, err)
	assert.InDelta(t, 40, got.Credit, 1e-9)
}
