package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/quickbasket/marketplace-ledger/internal/domain/account"
	"github.com/quickbasket/marketplace-ledger/internal/domain/reward"
	"github.com/quickbasket/marketplace-ledger/internal/domain/transaction"
	"github.com/quickbasket/marketplace-ledger/internal/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Mocks shared across the package's service tests

type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) GetOrCreate(ctx context.Context, customerID uuid.UUID, kind account.Kind) (*account.Account, error) {
	args := m.Called(ctx, customerID, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockAccountRepository) GetByCustomerAndKind(ctx context.Context, customerID uuid.UUID, kind account.Kind) (*account.Account, error) {
	args := m.Called(ctx, customerID, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockAccountRepository) LockForUpdate(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockAccountRepository) UpdateBalance(ctx context.Context, acc *account.Account) error {
	args := m.Called(ctx, acc)
	return args.Error(0)
}

func (m *MockAccountRepository) WithTx(tx pgx.Tx) account.Repository {
	return m
}

type MockRewardRepository struct {
	mock.Mock
}

func (m *MockRewardRepository) GetByID(ctx context.Context, id uuid.UUID) (*reward.Reward, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reward.Reward), args.Error(1)
}

func (m *MockRewardRepository) ListActive(ctx context.Context) ([]*reward.Reward, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*reward.Reward), args.Error(1)
}

func (m *MockRewardRepository) CreateRedemption(ctx context.Context, red *reward.Redemption) error {
	args := m.Called(ctx, red)
	return args.Error(0)
}

func (m *MockRewardRepository) ListRedemptionsByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*reward.Redemption, error) {
	args := m.Called(ctx, accountID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*reward.Redemption), args.Error(1)
}

type MockBalanceMutator struct {
	mock.Mock
}

func (m *MockBalanceMutator) Apply(ctx context.Context, accountID uuid.UUID, signedAmount int64, description, correlationID string) (*ledger.Result, error) {
	args := m.Called(ctx, accountID, signedAmount, description, correlationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Result), args.Error(1)
}

type MockBalanceReader struct {
	mock.Mock
}

func (m *MockBalanceReader) Balance(ctx context.Context, accountID uuid.UUID) (int64, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBalanceReader) Statement(ctx context.Context, accountID uuid.UUID, filter transaction.Filter, page ledger.PageParams) ([]*transaction.Transaction, int64, error) {
	args := m.Called(ctx, accountID, filter, page)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*transaction.Transaction), args.Get(1).(int64), args.Error(2)
}

func serviceTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func serviceAccount(customerID uuid.UUID, kind account.Kind, balance int64) *account.Account {
	return &account.Account{
		ID:         uuid.New(),
		CustomerID: customerID,
		Kind:       kind,
		Balance:    balance,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
}

func TestWalletService_Overview(t *testing.T) {
	ctx := context.Background()

	t.Run("UnknownCustomerSeesEmptyWallet", func(t *testing.T) {
		accounts := new(MockAccountRepository)
		reader := new(MockBalanceReader)
		mutator := new(MockBalanceMutator)
		svc := NewWalletService(serviceTestLogger(), accounts, mutator, reader)

		customerID := uuid.New()
		acc := serviceAccount(customerID, account.KindWallet, 0)
		page := ledger.PageParams{Page: 1, Limit: 20}

		accounts.On("GetOrCreate", ctx, customerID, account.KindWallet).Return(acc, nil)
		reader.On("Statement", ctx, acc.ID, transaction.Filter{}, page).
			Return([]*transaction.Transaction(nil), int64(0), nil)

		ov, err := svc.Overview(ctx, customerID, transaction.Filter{}, page)

		require.NoError(t, err)
		assert.Equal(t, int64(0), ov.Balance)
		assert.Empty(t, ov.Transactions)
		assert.Equal(t, int64(0), ov.Total)
	})

	t.Run("ReturnsStatementPage", func(t *testing.T) {
		accounts := new(MockAccountRepository)
		reader := new(MockBalanceReader)
		mutator := new(MockBalanceMutator)
		svc := NewWalletService(serviceTestLogger(), accounts, mutator, reader)

		customerID := uuid.New()
		acc := serviceAccount(customerID, account.KindWallet, 5000)
		page := ledger.PageParams{Page: 2, Limit: 10}
		filter := transaction.Filter{Type: transaction.TypeCredit}
		txns := []*transaction.Transaction{
			{ID: uuid.New(), AccountID: acc.ID, Type: transaction.TypeCredit, Amount: 5000, CreatedAt: time.Now()},
		}

		accounts.On("GetOrCreate", ctx, customerID, account.KindWallet).Return(acc, nil)
		reader.On("Statement", ctx, acc.ID, filter, page).Return(txns, int64(11), nil)

		ov, err := svc.Overview(ctx, customerID, filter, page)

		require.NoError(t, err)
		assert.Equal(t, int64(5000), ov.Balance)
		assert.Len(t, ov.Transactions, 1)
		assert.Equal(t, int64(11), ov.Total)
	})

	t.Run("StatementErrorPropagates", func(t *testing.T) {
		accounts := new(MockAccountRepository)
		reader := new(MockBalanceReader)
		mutator := new(MockBalanceMutator)
		svc := NewWalletService(serviceTestLogger(), accounts, mutator, reader)

		customerID := uuid.New()
		acc := serviceAccount(customerID, account.KindWallet, 0)
		listErr := errors.New("db down")

		accounts.On("GetOrCreate", ctx, customerID, account.KindWallet).Return(acc, nil)
		reader.On("Statement", ctx, acc.ID, transaction.Filter{}, mock.Anything).
			Return(nil, int64(0), listErr)

		_, err := svc.Overview(ctx, customerID, transaction.Filter{}, ledger.PageParams{Page: 1, Limit: 20})

		assert.ErrorIs(t, err, listErr)
	})
}

func TestWalletService_Credit(t *testing.T) {
	ctx := context.Background()

	t.Run("AppliesPositiveDelta", func(t *testing.T) {
		accounts := new(MockAccountRepository)
		reader := new(MockBalanceReader)
		mutator := new(MockBalanceMutator)
		svc := NewWalletService(serviceTestLogger(), accounts, mutator, reader)

		customerID := uuid.New()
		acc := serviceAccount(customerID, account.KindWallet, 1000)
		result := &ledger.Result{NewBalance: 1500}

		accounts.On("GetOrCreate", ctx, customerID, account.KindWallet).Return(acc, nil)
		mutator.On("Apply", ctx, acc.ID, int64(500), "Goodwill credit", "corr-1").Return(result, nil)

		res, err := svc.Credit(ctx, customerID, 500, "Goodwill credit", "corr-1")

		require.NoError(t, err)
		assert.Equal(t, int64(1500), res.NewBalance)
		mutator.AssertExpectations(t)
	})

	t.Run("RejectsNonPositiveAmount", func(t *testing.T) {
		accounts := new(MockAccountRepository)
		reader := new(MockBalanceReader)
		mutator := new(MockBalanceMutator)
		svc := NewWalletService(serviceTestLogger(), accounts, mutator, reader)

		_, err := svc.Credit(ctx, uuid.New(), 0, "", "corr-2")

		assert.ErrorIs(t, err, account.ErrInvalidAmount)
		accounts.AssertNotCalled(t, "GetOrCreate", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestWalletService_Debit(t *testing.T) {
	ctx := context.Background()

	t.Run("AppliesNegativeDelta", func(t *testing.T) {
		accounts := new(MockAccountRepository)
		reader := new(MockBalanceReader)
		mutator := new(MockBalanceMutator)
		svc := NewWalletService(serviceTestLogger(), accounts, mutator, reader)

		customerID := uuid.New()
		acc := serviceAccount(customerID, account.KindWallet, 1000)
		result := &ledger.Result{NewBalance: 700}

		accounts.On("GetOrCreate", ctx, customerID, account.KindWallet).Return(acc, nil)
		mutator.On("Apply", ctx, acc.ID, int64(-300), "", "corr-3").Return(result, nil)

		res, err := svc.Debit(ctx, customerID, 300, "", "corr-3")

		require.NoError(t, err)
		assert.Equal(t, int64(700), res.NewBalance)
		mutator.AssertExpectations(t)
	})

	t.Run("InsufficientBalancePropagates", func(t *testing.T) {
		accounts := new(MockAccountRepository)
		reader := new(MockBalanceReader)
		mutator := new(MockBalanceMutator)
		svc := NewWalletService(serviceTestLogger(), accounts, mutator, reader)

		customerID := uuid.New()
		acc := serviceAccount(customerID, account.KindWallet, 100)

		accounts.On("GetOrCreate", ctx, customerID, account.KindWallet).Return(acc, nil)
		mutator.On("Apply", ctx, acc.ID, int64(-300), "", "corr-4").
			Return(nil, account.ErrInsufficientBalance)

		_, err := svc.Debit(ctx, customerID, 300, "", "corr-4")

		assert.ErrorIs(t, err, account.ErrInsufficientBalance)
	})

	t.Run("RejectsNonPositiveAmount", func(t *testing.T) {
		accounts := new(MockAccountRepository)
		reader := new(MockBalanceReader)
		mutator := new(MockBalanceMutator)
		svc := NewWalletService(serviceTestLogger(), accounts, mutator, reader)

		_, err := svc.Debit(ctx, uuid.New(), -5, "", "corr-5")

		assert.ErrorIs(t, err, account.ErrInvalidAmount)
	})
}
