package transaction

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Filter narrows transaction listings to a single type. Empty means all.
type Filter struct {
	Type Type
}

// Repository manages transaction persistence with pagination support.
// Entries are append-only; there is no update or delete.
type Repository interface {
	Create(ctx context.Context, txn *Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*Transaction, error)

	// GetByCorrelationID returns the transaction recorded for the account
	// under the given correlation id, or nil if none exists. Used for
	// idempotent replay of mutator calls.
	GetByCorrelationID(ctx context.Context, accountID uuid.UUID, correlationID string) (*Transaction, error)

	// ListByAccount returns entries newest-first
	ListByAccount(ctx context.Context, accountID uuid.UUID, filter Filter, limit, offset int) ([]*Transaction, error)
	CountByAccount(ctx context.Context, accountID uuid.UUID, filter Filter) (int64, error)

	WithTx(tx pgx.Tx) Repository
}

// ErrDuplicateCorrelationID indicates the (account, correlation id)
// uniqueness constraint was violated by a concurrent writer.
type ErrDuplicateCorrelationID struct {
	AccountID     uuid.UUID
	CorrelationID string
}

func (e ErrDuplicateCorrelationID) Error() string {
	return "transaction already recorded for correlation id: " + e.CorrelationID
}

// Is implements the errors.Is interface for ErrDuplicateCorrelationID
func (e ErrDuplicateCorrelationID) Is(target error) bool {
	t, ok := target.(ErrDuplicateCorrelationID)
	if !ok {
		return false
	}
	if t.CorrelationID == "" {
		return true
	}
	return e.AccountID == t.AccountID && e.CorrelationID == t.CorrelationID
}
