package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/quickbasket/marketplace-ledger/internal/domain/reward"
	"github.com/quickbasket/marketplace-ledger/internal/domain/transaction"
	"github.com/quickbasket/marketplace-ledger/internal/ledger"
)

// rewardService implements RewardService over the catalog repository
type rewardService struct {
	logger  *slog.Logger
	rewards reward.Repository
}

// NewRewardService creates the reward catalog service
func NewRewardService(logger *slog.Logger, rewards reward.Repository) RewardService {
	return &rewardService{
		logger:  logger,
		rewards: rewards,
	}
}

func (s *rewardService) ListActive(ctx context.Context) ([]*reward.Reward, error) {
	return s.rewards.ListActive(ctx)
}

// transactionService implements TransactionService over the ledger reader
type transactionService struct {
	logger *slog.Logger
	reader BalanceReader
}

// NewTransactionService creates the transaction log service
func NewTransactionService(logger *slog.Logger, reader BalanceReader) TransactionService {
	return &transactionService{
		logger: logger,
		reader: reader,
	}
}

func (s *transactionService) Statement(ctx context.Context, accountID uuid.UUID, filter transaction.Filter, page ledger.PageParams) ([]*transaction.Transaction, int64, error) {
	return s.reader.Statement(ctx, accountID, filter, page)
}
