package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/quickbasket/marketplace-ledger/internal/domain/account"
	"github.com/quickbasket/marketplace-ledger/internal/domain/transaction"
	"github.com/quickbasket/marketplace-ledger/internal/ledger"
)

// walletService implements WalletService on top of the ledger core
type walletService struct {
	logger   *slog.Logger
	accounts account.Repository
	mutator  BalanceMutator
	reader   BalanceReader
}

// NewWalletService creates the wallet application service
func NewWalletService(logger *slog.Logger, accounts account.Repository, mutator BalanceMutator, reader BalanceReader) WalletService {
	return &walletService{
		logger:   logger,
		accounts: accounts,
		mutator:  mutator,
		reader:   reader,
	}
}

func (s *walletService) GetOrCreate(ctx context.Context, customerID uuid.UUID) (*account.Account, error) {
	return s.accounts.GetOrCreate(ctx, customerID, account.KindWallet)
}

// Overview creates the wallet on first read so unknown customers see a zero
// balance rather than an error
func (s *walletService) Overview(ctx context.Context, customerID uuid.UUID, filter transaction.Filter, page ledger.PageParams) (*AccountOverview, error) {
	acc, err := s.accounts.GetOrCreate(ctx, customerID, account.KindWallet)
	if err != nil {
		return nil, err
	}

	txns, total, err := s.reader.Statement(ctx, acc.ID, filter, page)
	if err != nil {
		return nil, err
	}

	return &AccountOverview{
		Account:      acc,
		Balance:      acc.Balance,
		Transactions: txns,
		Total:        total,
	}, nil
}

func (s *walletService) Credit(ctx context.Context, customerID uuid.UUID, amount int64, description, correlationID string) (*ledger.Result, error) {
	if amount <= 0 {
		return nil, account.ErrInvalidAmount
	}

	acc, err := s.accounts.GetOrCreate(ctx, customerID, account.KindWallet)
	if err != nil {
		return nil, err
	}

	return s.mutator.Apply(ctx, acc.ID, amount, description, correlationID)
}

func (s *walletService) Debit(ctx context.Context, customerID uuid.UUID, amount int64, description, correlationID string) (*ledger.Result, error) {
	if amount <= 0 {
		return nil, account.ErrInvalidAmount
	}

	acc, err := s.accounts.GetOrCreate(ctx, customerID, account.KindWallet)
	if err != nil {
		return nil, err
	}

	return s.mutator.Apply(ctx, acc.ID, -amount, description, correlationID)
}
