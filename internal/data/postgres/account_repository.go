// Package postgres provides PostgreSQL implementations of the domain
// repositories. It handles all database operations while maintaining
// transaction safety and proper error handling for the ledger service.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/quickbasket/marketplace-ledger/internal/domain/account"
	"github.com/quickbasket/marketplace-ledger/internal/platform/persistence"
)

// AccountRepository implements the account.Repository interface for PostgreSQL
type AccountRepository struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// NewAccountRepository creates a new PostgreSQL account repository.
// It expects db.Pool() to satisfy persistence.Querier.
func NewAccountRepository(logger *slog.Logger, db *persistence.PostgresDB) account.Repository {
	return &AccountRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction, allowing for atomic
// operations across multiple repository calls
func (r *AccountRepository) WithTx(tx pgx.Tx) account.Repository {
	return &AccountRepository{
		querier: tx,
		logger:  r.logger,
	}
}

const accountColumns = "id, customer_id, kind, balance, total_credited, total_spent, created_at, updated_at"

func scanAccount(row pgx.Row) (*account.Account, error) {
	var acc account.Account
	err := row.Scan(
		&acc.ID,
		&acc.CustomerID,
		&acc.Kind,
		&acc.Balance,
		&acc.TotalCredited,
		&acc.TotalSpent,
		&acc.CreatedAt,
		&acc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &acc, nil
}

// GetOrCreate returns the customer's account of the given kind, inserting a
// zero-balance row if absent. The insert uses ON CONFLICT DO NOTHING against
// the (customer_id, kind) uniqueness constraint, so concurrent first access
// cannot create duplicates; the follow-up read always observes the winner.
func (r *AccountRepository) GetOrCreate(ctx context.Context, customerID uuid.UUID, kind account.Kind) (*account.Account, error) {
	acc, err := account.NewAccount(customerID, kind)
	if err != nil {
		return nil, err
	}

	insert := `
		INSERT INTO accounts (id, customer_id, kind, balance, total_credited, total_spent, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (customer_id, kind) DO NOTHING
	`

	_, err = r.querier.Exec(ctx, insert,
		acc.ID,
		acc.CustomerID,
		acc.Kind,
		acc.Balance,
		acc.TotalCredited,
		acc.TotalSpent,
		acc.CreatedAt,
		acc.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to upsert account", "customer_id", customerID.String(), "kind", string(kind), "error", err)
		return nil, fmt.Errorf("failed to upsert account: %w", err)
	}

	existing, err := r.GetByCustomerAndKind(ctx, customerID, kind)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		// The row we just upserted vanished; treat as a storage fault
		return nil, fmt.Errorf("account missing after upsert for customer %s", customerID.String())
	}

	return existing, nil
}

// GetByID retrieves an account by its ID
func (r *AccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE id = $1
	`

	acc, err := scanAccount(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, account.ErrAccountNotFound{AccountID: id}
		}
		r.logger.Error("Failed to get account", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return acc, nil
}

// GetByCustomerAndKind retrieves the customer's account of the given kind.
// Returns nil, nil when the customer has no such account yet.
func (r *AccountRepository) GetByCustomerAndKind(ctx context.Context, customerID uuid.UUID, kind account.Kind) (*account.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE customer_id = $1 AND kind = $2
	`

	acc, err := scanAccount(r.querier.QueryRow(ctx, query, customerID, kind))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to get account by customer and kind", "customer_id", customerID.String(), "kind", string(kind), "error", err)
		return nil, fmt.Errorf("failed to get account by customer and kind: %w", err)
	}

	return acc, nil
}

// LockForUpdate obtains a pessimistic row lock on the account and returns its
// current state. Must be used within a transaction; the lock serializes
// concurrent mutations of the same account while leaving other accounts free.
func (r *AccountRepository) LockForUpdate(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE id = $1
		FOR UPDATE
	`

	acc, err := scanAccount(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, account.ErrAccountNotFound{AccountID: id}
		}
		r.logger.Error("Failed to lock account for update", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to lock account for update: %w", err)
	}

	return acc, nil
}

// UpdateBalance persists the balance and lifetime accumulators mutated in
// memory by Account.Apply. Only the ledger mutator calls this, inside the
// transaction that holds the row lock.
func (r *AccountRepository) UpdateBalance(ctx context.Context, acc *account.Account) error {
	query := `
		UPDATE accounts
		SET balance = $1, total_credited = $2, total_spent = $3, updated_at = $4
		WHERE id = $5
	`

	result, err := r.querier.Exec(ctx, query,
		acc.Balance,
		acc.TotalCredited,
		acc.TotalSpent,
		acc.UpdatedAt,
		acc.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update account balance", "id", acc.ID.String(), "error", err)
		return fmt.Errorf("failed to update account balance: %w", err)
	}

	if result.RowsAffected() == 0 {
		return account.ErrAccountNotFound{AccountID: acc.ID}
	}

	return nil
}
