package account

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository defines account persistence operations
type Repository interface {
	// GetOrCreate returns the customer's account of the given kind,
	// creating a zero-balance one if absent. Safe under concurrent
	// first access: relies on the (customer_id, kind) uniqueness
	// constraint rather than a read-then-insert race.
	GetOrCreate(ctx context.Context, customerID uuid.UUID, kind Kind) (*Account, error)

	GetByID(ctx context.Context, id uuid.UUID) (*Account, error)
	GetByCustomerAndKind(ctx context.Context, customerID uuid.UUID, kind Kind) (*Account, error)

	// LockForUpdate acquires a row lock on the account for the duration of
	// the surrounding transaction. Only the ledger mutator may follow this
	// with UpdateBalance.
	LockForUpdate(ctx context.Context, id uuid.UUID) (*Account, error)

	// UpdateBalance persists balance and lifetime accumulators as mutated
	// in memory by Account.Apply. Must run inside the transaction that
	// holds the row lock.
	UpdateBalance(ctx context.Context, acc *Account) error

	WithTx(tx pgx.Tx) Repository
}

// ErrAccountNotFound indicates missing account
type ErrAccountNotFound struct {
	AccountID uuid.UUID
}

func (e ErrAccountNotFound) Error() string {
	return "account not found: " + e.AccountID.String()
}

// Is implements the errors.Is interface for ErrAccountNotFound
func (e ErrAccountNotFound) Is(target error) bool {
	t, ok := target.(ErrAccountNotFound)
	if !ok {
		return false
	}
	if t.AccountID == uuid.Nil {
		return true
	}
	return e.AccountID == t.AccountID
}
