package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/quickbasket/marketplace-ledger/internal/domain/account"
	"github.com/quickbasket/marketplace-ledger/internal/domain/reward"
	"github.com/quickbasket/marketplace-ledger/internal/domain/transaction"
	"github.com/quickbasket/marketplace-ledger/internal/ledger"
)

// loyaltyService implements LoyaltyService on top of the ledger core and the
// reward catalog
type loyaltyService struct {
	logger   *slog.Logger
	accounts account.Repository
	rewards  reward.Repository
	mutator  BalanceMutator
	reader   BalanceReader
}

// NewLoyaltyService creates the loyalty application service
func NewLoyaltyService(logger *slog.Logger, accounts account.Repository, rewards reward.Repository, mutator BalanceMutator, reader BalanceReader) LoyaltyService {
	return &loyaltyService{
		logger:   logger,
		accounts: accounts,
		rewards:  rewards,
		mutator:  mutator,
		reader:   reader,
	}
}

func (s *loyaltyService) Overview(ctx context.Context, customerID uuid.UUID, filter transaction.Filter, page ledger.PageParams) (*AccountOverview, error) {
	acc, err := s.accounts.GetOrCreate(ctx, customerID, account.KindLoyalty)
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

// Redeem checks the reward is redeemable, debits its point cost from the
// customer's loyalty account, and records the redemption. The redemption
// record is written after the points debit commits; if recording it fails
// the debit stands and the failure is logged for reconciliation.
func (s *loyaltyService) Redeem(ctx context.Context, customerID, rewardID uuid.UUID, correlationID string) (*RedeemOutcome, error) {
	rw, err := s.rewards.GetByID(ctx, rewardID)
	if err != nil {
		return nil, err
	}
	if err := rw.Redeemable(time.Now()); err != nil {
		return nil, err
	}

	acc, err := s.accounts.GetOrCreate(ctx, customerID, account.KindLoyalty)
	if err != nil {
		return nil, err
	}

	res, err := s.mutator.Apply(ctx, acc.ID, -rw.PointsCost, "Redeemed reward: "+rw.Name, correlationID)
	if err != nil {
		return nil, err
	}

	outcome := &RedeemOutcome{
		Reward: rw,
		Result: res,
	}

	if res.Replayed {
		// The debit was already recorded on a previous attempt, so the
		// redemption record exists too. Do not create a duplicate.
		return outcome, nil
	}

	red := reward.NewRedemption(rw.ID, acc.ID, res.Transaction.ID)
	if err := s.rewards.CreateRedemption(ctx, red); err != nil {
		s.logger.Error("Points debited but redemption record failed",
			"reward_id", rw.ID.String(),
			"account_id", acc.ID.String(),
			"transaction_id", res.Transaction.ID.String(),
			"error", err,
		)
		return outcome, nil
	}
	outcome.Redemption = red

	return outcome, nil
}
