// Package ledger implements the balance-mutation core shared by the wallet
// and loyalty accounts: an atomic check-and-apply over the account row plus
// an append to the transaction log, and the read-side query surface.
package ledger

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/quickbasket/marketplace-ledger/internal/domain/account"
	"github.com/quickbasket/marketplace-ledger/internal/domain/outbox"
	"github.com/quickbasket/marketplace-ledger/internal/domain/shared"
	"github.com/quickbasket/marketplace-ledger/internal/domain/transaction"
)

var (
	ErrInvalidAccountID = errors.New("account id cannot be empty")
)

// TxRunner runs a function inside one database transaction, rolling back on
// error or panic. Satisfied by persistence.PostgresDB.
type TxRunner interface {
	ExecuteTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}

// NotificationPublisher is the fire-and-forget side channel for committed
// mutations. Publishing errors are logged, never surfaced: notifications are
// outside the mutation's failure domain.
type NotificationPublisher interface {
	Publish(ctx context.Context, key string, value interface{}) error
}

// Result is what a successful Apply returns: the post-commit balance and the
// transaction that recorded the change. Replayed is set when the call was an
// idempotent no-op because the correlation id was already recorded.
type Result struct {
	Account     *account.Account
	Transaction *transaction.Transaction
	NewBalance  int64
	Replayed    bool
}

// Mutator applies signed deltas to exactly one account at a time with
// all-or-nothing semantics across the balance update, the transaction log
// append, and the archive outbox row. It holds no in-process locks and no
// cross-request state; per-account serialization comes from the row lock
// taken inside the database transaction.
type Mutator struct {
	db           TxRunner
	accounts     account.Repository
	transactions transaction.Repository
	outbox       outbox.Repository
	cache        BalanceCache          // optional
	notifier     NotificationPublisher // optional
	logger       *slog.Logger
}

// NewMutator creates the ledger mutator. cache and notifier may be nil;
// both are best-effort collaborators outside the atomic unit.
func NewMutator(
	logger *slog.Logger,
	db TxRunner,
	accounts account.Repository,
	transactions transaction.Repository,
	outboxRepo outbox.Repository,
	cache BalanceCache,
	notifier NotificationPublisher,
) *Mutator {
	return &Mutator{
		db:           db,
		accounts:     accounts,
		transactions: transactions,
		outbox:       outboxRepo,
		cache:        cache,
		notifier:     notifier,
		logger:       logger,
	}
}

// Apply executes the check-and-apply algorithm inside a single database
// transaction:
//
//  1. Lock the account row (FOR UPDATE). Concurrent Apply calls on the same
//     account serialize here; different accounts do not block each other.
//  2. If correlationID was already recorded for this account, return the
//     prior transaction unchanged (idempotent replay).
//  3. Reject debits that would take the balance below zero with
//     account.ErrInsufficientBalance; nothing is committed.
//  4. Adjust balance and lifetime accumulators, append the transaction row,
//     and stage the archive outbox row.
//  5. Commit. Cache invalidation and the notification publish happen after
//     commit and cannot fail the call.
//
// Any storage failure rolls the whole unit back: callers observe either the
// full mutation or no change at all.
func (m *Mutator) Apply(ctx context.Context, accountID uuid.UUID, signedAmount int64, description, correlationID string) (*Result, error) {
	if accountID == uuid.Nil {
		return nil, ErrInvalidAccountID
	}
	if signedAmount == 0 {
		return nil, account.ErrInvalidAmount
	}

	logger := m.logger
	if correlationID != "" {
		logger = m.logger.With("correlation_id", correlationID)
	}

	var res *Result
	err := m.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		accounts := m.accounts.WithTx(tx)
		transactions := m.transactions.WithTx(tx)
		outboxRepo := m.outbox.WithTx(tx)

		acc, err := accounts.LockForUpdate(ctx, accountID)
		if err != nil {
			return err
		}

		if correlationID != "" {
			prior, err := transactions.GetByCorrelationID(ctx, accountID, correlationID)
			if err != nil {
				return err
			}
			if prior != nil {
				logger.Info("Replaying prior transaction for correlation id",
					"account_id", accountID.String(),
					"transaction_id", prior.ID.String(),
				)
				res = &Result{
					Account:     acc,
					Transaction: prior,
					NewBalance:  acc.Balance,
					Replayed:    true,
				}
				return nil
			}
		}

		if err := acc.Apply(signedAmount); err != nil {
			logger.Warn("Ledger mutation rejected",
				"account_id", accountID.String(),
				"signed_amount", signedAmount,
				"balance", acc.Balance,
				"error", err,
			)
			return err
		}

		if err := accounts.UpdateBalance(ctx, acc); err != nil {
			return err
		}

		txn := transaction.New(acc.ID, acc.Kind, signedAmount, description, correlationID)
		if err := transactions.Create(ctx, txn); err != nil {
			return err
		}

		entry := &shared.ArchiveEntry{
			TransactionID: txn.ID,
			AccountID:     acc.ID,
			CustomerID:    acc.CustomerID,
			AccountKind:   string(acc.Kind),
			Type:          string(txn.Type),
			Amount:        txn.Amount,
			BalanceAfter:  acc.Balance,
			Description:   txn.Description,
			CorrelationID: txn.CorrelationID,
			CreatedAt:     txn.CreatedAt,
		}
		msg, err := outbox.NewMessage(entry)
		if err != nil {
			return err
		}
		if err := outboxRepo.Create(ctx, msg); err != nil {
			return err
		}

		res = &Result{
			Account:     acc,
			Transaction: txn,
			NewBalance:  acc.Balance,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !res.Replayed {
		logger.Info("Ledger mutation committed",
			"account_id", accountID.String(),
			"transaction_id", res.Transaction.ID.String(),
			"type", string(res.Transaction.Type),
			"amount", res.Transaction.Amount,
			"new_balance", res.NewBalance,
		)
		m.afterCommit(ctx, res)
	}

	return res, nil
}

// afterCommit runs the best-effort side effects of a committed mutation.
// Failures here are logged and swallowed: the mutation already committed.
func (m *Mutator) afterCommit(ctx context.Context, res *Result) {
	if m.cache != nil {
		if err := m.cache.Invalidate(ctx, res.Account.ID); err != nil {
			m.logger.Warn("Failed to invalidate balance cache",
				"account_id", res.Account.ID.String(),
				"error", err,
			)
		}
	}

	if m.notifier != nil {
		event := &shared.NotificationEvent{
			TransactionID: res.Transaction.ID,
			AccountID:     res.Account.ID,
			CustomerID:    res.Account.CustomerID,
			AccountKind:   string(res.Account.Kind),
			Type:          string(res.Transaction.Type),
			Amount:        res.Transaction.Amount,
			NewBalance:    res.NewBalance,
			Description:   res.Transaction.Description,
			OccurredAt:    time.Now().UTC(),
		}
		if err := m.notifier.Publish(ctx, res.Account.ID.String(), event); err != nil {
			m.logger.Warn("Failed to publish ledger notification",
				"transaction_id", res.Transaction.ID.String(),
				"error", err,
			)
		}
	}
}
