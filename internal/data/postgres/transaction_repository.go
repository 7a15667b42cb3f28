package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/quickbasket/marketplace-ledger/internal/domain/transaction"
	"github.com/quickbasket/marketplace-ledger/internal/platform/persistence"
)

// uniqueViolation is the PostgreSQL error code for unique constraint violations
const uniqueViolation = "23505"

// TransactionRepository implements the transaction.Repository interface for PostgreSQL
type TransactionRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewTransactionRepository creates a new PostgreSQL transaction repository
func NewTransactionRepository(logger *slog.Logger, db *persistence.PostgresDB) transaction.Repository {
	return &TransactionRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction so the append is atomic
// with the balance update it records
func (r *TransactionRepository) WithTx(tx pgx.Tx) transaction.Repository {
	return &TransactionRepository{
		querier: tx,
		logger:  r.logger,
	}
}

const transactionColumns = "id, account_id, type, amount, description, correlation_id, created_at"

func scanTransaction(row pgx.Row) (*transaction.Transaction, error) {
	var txn transaction.Transaction
	var correlationID *string
	err := row.Scan(
		&txn.ID,
		&txn.AccountID,
		&txn.Type,
		&txn.Amount,
		&txn.Description,
		&correlationID,
		&txn.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if correlationID != nil {
		txn.CorrelationID = *correlationID
	}
	return &txn, nil
}

// nullableCorrelationID maps an empty correlation id to NULL so the partial
// uniqueness constraint only bites on real correlation ids
func nullableCorrelationID(correlationID string) *string {
	if correlationID == "" {
		return nil
	}
	return &correlationID
}

// Create appends a transaction to the log. Returns
// ErrDuplicateCorrelationID when the (account_id, correlation_id)
// uniqueness constraint rejects the row.
func (r *TransactionRepository) Create(ctx context.Context, txn *transaction.Transaction) error {
	query := `
		INSERT INTO transactions (id, account_id, type, amount, description, correlation_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.querier.Exec(ctx, query,
		txn.ID,
		txn.AccountID,
		txn.Type,
		txn.Amount,
		txn.Description,
		nullableCorrelationID(txn.CorrelationID),
		txn.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return transaction.ErrDuplicateCorrelationID{AccountID: txn.AccountID, CorrelationID: txn.CorrelationID}
		}
		r.logger.Error("Failed to create transaction", "id", txn.ID.String(), "error", err)
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	return nil
}

// GetByID retrieves a transaction by its ID. Returns nil, nil when absent.
func (r *TransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE id = $1
	`

	txn, err := scanTransaction(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to get transaction", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	return txn, nil
}

// GetByCorrelationID retrieves the transaction recorded for an account under
// the given correlation id. Returns nil, nil when no such transaction exists.
func (r *TransactionRepository) GetByCorrelationID(ctx context.Context, accountID uuid.UUID, correlationID string) (*transaction.Transaction, error) {
	if correlationID == "" {
		return nil, errors.New("correlation id cannot be empty")
	}

	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE account_id = $1 AND correlation_id = $2
	`

	txn, err := scanTransaction(r.querier.QueryRow(ctx, query, accountID, correlationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to get transaction by correlation id",
			"account_id", accountID.String(),
			"correlation_id", correlationID,
			"error", err)
		return nil, fmt.Errorf("failed to get transaction by correlation id: %w", err)
	}

	return txn, nil
}

// ListByAccount retrieves paginated transactions for an account, newest
// first, optionally narrowed to one type
func (r *TransactionRepository) ListByAccount(ctx context.Context, accountID uuid.UUID, filter transaction.Filter, limit, offset int) ([]*transaction.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE account_id = $1 AND ($2 = '' OR type = $2)
		ORDER BY created_at DESC, id DESC
		LIMIT $3 OFFSET $4
	`

	rows, err := r.querier.Query(ctx, query, accountID, string(filter.Type), limit, offset)
	if err != nil {
		r.logger.Error("Failed to list transactions", "account_id", accountID.String(), "error", err)
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var txns []*transaction.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			r.logger.Error("Failed to scan transaction", "error", err)
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txns = append(txns, txn)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over transactions", "error", err)
		return nil, fmt.Errorf("error iterating over transactions: %w", err)
	}

	return txns, nil
}

// CountByAccount counts the transactions for an account, honoring the filter
func (r *TransactionRepository) CountByAccount(ctx context.Context, accountID uuid.UUID, filter transaction.Filter) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM transactions
		WHERE account_id = $1 AND ($2 = '' OR type = $2)
	`

	var count int64
	err := r.querier.QueryRow(ctx, query, accountID, string(filter.Type)).Scan(&count)
	if err != nil {
		r.logger.Error("Failed to count transactions", "account_id", accountID.String(), "error", err)
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	return count, nil
}
