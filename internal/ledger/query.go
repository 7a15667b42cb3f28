package ledger

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/quickbasket/marketplace-ledger/internal/domain/account"
	"github.com/quickbasket/marketplace-ledger/internal/domain/transaction"
)

const (
	// MaxPageLimit caps the number of transactions returned per page
	MaxPageLimit = 100
	// DefaultPageLimit applies when the caller supplies no limit
	DefaultPageLimit = 20
)

// PageParams holds normalized pagination parameters
type PageParams struct {
	Page  int
	Limit int
}

// Offset converts the one-based page into a row offset
func (p PageParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Pages computes the total page count for the given item total
func (p PageParams) Pages(total int64) int64 {
	pages := total / int64(p.Limit)
	if total%int64(p.Limit) > 0 {
		pages++
	}
	return pages
}

// NormalizePage clamps page to >= 1 and limit to [1, MaxPageLimit].
// A non-positive limit falls back to DefaultPageLimit.
func NormalizePage(page, limit int) PageParams {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return PageParams{Page: page, Limit: limit}
}

// QueryService is the read-only surface over accounts and their transaction
// logs. It never mutates anything; balance reads go through the cache when
// one is configured.
type QueryService struct {
	accounts     account.Repository
	transactions transaction.Repository
	cache        BalanceCache // optional
	logger       *slog.Logger
}

// NewQueryService creates the ledger query surface. cache may be nil.
func NewQueryService(
	logger *slog.Logger,
	accounts account.Repository,
	transactions transaction.Repository,
	cache BalanceCache,
) *QueryService {
	return &QueryService{
		accounts:     accounts,
		transactions: transactions,
		cache:        cache,
		logger:       logger,
	}
}

// Balance returns the account's current balance, cache-aside. Cache errors
// degrade to a direct read; they never fail the call on their own.
func (s *QueryService) Balance(ctx context.Context, accountID uuid.UUID) (int64, error) {
	if s.cache != nil {
		balance, ok, err := s.cache.GetBalance(ctx, accountID)
		if err != nil {
			s.logger.Warn("Balance cache read failed, falling back to store",
				"account_id", accountID.String(),
				"error", err,
			)
		} else if ok {
			return balance, nil
		}
	}

	acc, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return 0, err
	}

	if s.cache != nil {
		if err := s.cache.SetBalance(ctx, accountID, acc.Balance); err != nil {
			s.logger.Warn("Failed to populate balance cache",
				"account_id", accountID.String(),
				"error", err,
			)
		}
	}

	return acc.Balance, nil
}

// Statement returns one page of the account's transactions, newest first,
// along with the total matching count
func (s *QueryService) Statement(ctx context.Context, accountID uuid.UUID, filter transaction.Filter, page PageParams) ([]*transaction.Transaction, int64, error) {
	txns, err := s.transactions.ListByAccount(ctx, accountID, filter, page.Limit, page.Offset())
	if err != nil {
		return nil, 0, err
	}

	total, err := s.transactions.CountByAccount(ctx, accountID, filter)
	if err != nil {
		return nil, 0, err
	}

	return txns, total, nil
}
