// Package service contains the application services behind the HTTP
// handlers. Services orchestrate the ledger core and the repositories;
// handlers only translate between HTTP and these interfaces.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/quickbasket/marketplace-ledger/internal/domain/account"
	"github.com/quickbasket/marketplace-ledger/internal/domain/reward"
	"github.com/quickbasket/marketplace-ledger/internal/domain/shared"
	"github.com/quickbasket/marketplace-ledger/internal/domain/transaction"
	"github.com/quickbasket/marketplace-ledger/internal/ledger"
)

// BalanceMutator applies a signed delta to one account atomically.
// Implemented by the ledger mutator.
type BalanceMutator interface {
	Apply(ctx context.Context, accountID uuid.UUID, signedAmount int64, description, correlationID string) (*ledger.Result, error)
}

// BalanceReader is the read-only ledger surface. Implemented by the ledger
// query service.
type BalanceReader interface {
	Balance(ctx context.Context, accountID uuid.UUID) (int64, error)
	Statement(ctx context.Context, accountID uuid.UUID, filter transaction.Filter, page ledger.PageParams) ([]*transaction.Transaction, int64, error)
}

// AccountOverview bundles an account with one page of its transaction log
type AccountOverview struct {
	Account      *account.Account
	Balance      int64
	Transactions []*transaction.Transaction
	Total        int64
}

// RedeemOutcome is the result of redeeming a reward: the points debit and
// the redemption record linking it to the reward.
type RedeemOutcome struct {
	Reward     *reward.Reward
	Result     *ledger.Result
	Redemption *reward.Redemption
}

// WalletService exposes the customer wallet operations
type WalletService interface {
	// GetOrCreate returns the customer's wallet, creating an empty one on
	// first access
	GetOrCreate(ctx context.Context, customerID uuid.UUID) (*account.Account, error)

	// Overview returns the wallet balance with one page of transactions
	Overview(ctx context.Context, customerID uuid.UUID, filter transaction.Filter, page ledger.PageParams) (*AccountOverview, error)

	Credit(ctx context.Context, customerID uuid.UUID, amount int64, description, correlationID string) (*ledger.Result, error)
	Debit(ctx context.Context, customerID uuid.UUID, amount int64, description, correlationID string) (*ledger.Result, error)
}

// LoyaltyService exposes the loyalty account operations
type LoyaltyService interface {
	Overview(ctx context.Context, customerID uuid.UUID, filter transaction.Filter, page ledger.PageParams) (*AccountOverview, error)

	// Redeem debits the reward's point cost from the customer's loyalty
	// account and records the redemption
	Redeem(ctx context.Context, customerID, rewardID uuid.UUID, correlationID string) (*RedeemOutcome, error)
}

// RewardService exposes the reward catalog
type RewardService interface {
	ListActive(ctx context.Context) ([]*reward.Reward, error)
}

// TransactionService exposes the per-account transaction log
type TransactionService interface {
	Statement(ctx context.Context, accountID uuid.UUID, filter transaction.Filter, page ledger.PageParams) ([]*transaction.Transaction, int64, error)
}

// ArchiveService exposes the reporting read model fed by the outbox poller
type ArchiveService interface {
	GetByAccount(ctx context.Context, accountID uuid.UUID, page ledger.PageParams) ([]*shared.ArchiveEntry, int64, error)
	GetByTimeRange(ctx context.Context, from, to time.Time, page ledger.PageParams) ([]*shared.ArchiveEntry, error)
}
