package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/quickbasket/marketplace-ledger/internal/domain/account"
	"github.com/quickbasket/marketplace-ledger/internal/domain/reward"
	"github.com/quickbasket/marketplace-ledger/internal/domain/shared"
)

// ProcessingServiceImpl reacts to marketplace events by applying the
// corresponding ledger mutations. Business rejections (insufficient balance,
// missing reward) are terminal: they are logged and the offset is committed.
// Infrastructure errors propagate so the consumer retries the message.
type ProcessingServiceImpl struct {
	accounts    account.Repository
	rewards     reward.Repository
	mutator     BalanceMutator
	earnRateBps int64
	logger      *slog.Logger
}

func NewProcessingService(
	logger *slog.Logger,
	accounts account.Repository,
	rewards reward.Repository,
	mutator BalanceMutator,
	earnRateBps int64,
) ProcessingService {
	return &ProcessingServiceImpl{
		accounts:    accounts,
		rewards:     rewards,
		mutator:     mutator,
		earnRateBps: earnRateBps,
		logger:      logger,
	}
}

// ProcessEvent dispatches one marketplace event to its ledger flow. The
// event's order or reward ID doubles as the mutation's correlation ID, so
// Kafka redeliveries replay instead of double-applying.
func (s *ProcessingServiceImpl) ProcessEvent(ctx context.Context, event *shared.MarketplaceEvent) error {
	logger := s.logger.With("event_id", event.EventID.String(), "event_type", string(event.Type))

	if event.CustomerID == uuid.Nil {
		logger.Error("Event has no customer ID, dropping")
		return nil
	}

	switch event.Type {
	case shared.EventOrderPaid:
		return s.processOrderPaid(ctx, logger, event)
	case shared.EventOrderCompleted:
		return s.processOrderCompleted(ctx, logger, event)
	case shared.EventRewardRedeemed:
		return s.processRewardRedeemed(ctx, logger, event)
	default:
		return shared.ErrUnknownEventType
	}
}

// processOrderPaid debits the customer's wallet by the order amount
func (s *ProcessingServiceImpl) processOrderPaid(ctx context.Context, logger *slog.Logger, event *shared.MarketplaceEvent) error {
	if event.OrderID == "" || event.Amount <= 0 {
		logger.Error("Malformed order.paid event, dropping", "order_id", event.OrderID, "amount", event.Amount)
		return nil
	}

	acc, err := s.accounts.GetOrCreate(ctx, event.CustomerID, account.KindWallet)
	if err != nil {
		return err
	}

	res, err := s.mutator.Apply(ctx, acc.ID, -event.Amount, "Payment for order "+event.OrderID, event.OrderID)
	if err != nil {
		if errors.Is(err, account.ErrInsufficientBalance) {
			// Terminal: the order subsystem owns recovery, retrying here
			// cannot make the funds appear
			logger.Warn("Wallet balance insufficient for order payment",
				"order_id", event.OrderID,
				"account_id", acc.ID.String(),
				"amount", event.Amount,
			)
			return nil
		}
		return err
	}

	logger.Info("Wallet debited for order",
		"order_id", event.OrderID,
		"transaction_id", res.Transaction.ID.String(),
		"new_balance", res.NewBalance,
		"replayed", res.Replayed,
	)
	return nil
}

// processOrderCompleted credits loyalty points earned from the order total
func (s *ProcessingServiceImpl) processOrderCompleted(ctx context.Context, logger *slog.Logger, event *shared.MarketplaceEvent) error {
	if event.OrderID == "" || event.Total <= 0 {
		logger.Error("Malformed order.completed event, dropping", "order_id", event.OrderID, "total", event.Total)
		return nil
	}

	points := event.Total * s.earnRateBps / 10000
	if points <= 0 {
		logger.Debug("Order total too small to earn points", "order_id", event.OrderID, "total", event.Total)
		return nil
	}

	acc, err := s.accounts.GetOrCreate(ctx, event.CustomerID, account.KindLoyalty)
	if err != nil {
		return err
	}

	res, err := s.mutator.Apply(ctx, acc.ID, points, "Points earned from order "+event.OrderID, event.OrderID)
	if err != nil {
		return err
	}

	logger.Info("Loyalty points earned from order",
		"order_id", event.OrderID,
		"transaction_id", res.Transaction.ID.String(),
		"points", points,
		"new_balance", res.NewBalance,
		"replayed", res.Replayed,
	)
	return nil
}

// processRewardRedeemed debits the reward's point cost and records the
// redemption
func (s *ProcessingServiceImpl) processRewardRedeemed(ctx context.Context, logger *slog.Logger, event *shared.MarketplaceEvent) error {
	rewardID, err := uuid.Parse(event.RewardID)
	if err != nil {
		logger.Error("Malformed reward.redeemed event, dropping", "reward_id", event.RewardID, "error", err)
		return nil
	}

	rw, err := s.rewards.GetByID(ctx, rewardID)
	if err != nil {
		var notFound reward.ErrRewardNotFound
		if errors.As(err, &notFound) {
			logger.Error("Reward referenced by event does not exist, dropping", "reward_id", event.RewardID)
			return nil
		}
		return err
	}
	if err := rw.Redeemable(time.Now()); err != nil {
		logger.Warn("Reward no longer redeemable, dropping", "reward_id", event.RewardID, "error", err)
		return nil
	}

	acc, err := s.accounts.GetOrCreate(ctx, event.CustomerID, account.KindLoyalty)
	if err != nil {
		return err
	}

	res, err := s.mutator.Apply(ctx, acc.ID, -rw.PointsCost, "Redeemed reward: "+rw.Name, event.RewardID)
	if err != nil {
		if errors.Is(err, account.ErrInsufficientBalance) {
			logger.Warn("Loyalty balance insufficient for reward",
				"reward_id", event.RewardID,
				"account_id", acc.ID.String(),
				"points_cost", rw.PointsCost,
			)
			return nil
		}
		return err
	}

	if !res.Replayed {
		red := reward.NewRedemption(rw.ID, acc.ID, res.Transaction.ID)
		if err := s.rewards.CreateRedemption(ctx, red); err != nil {
			// Points are already debited; surface for reconciliation but
			// do not retry the whole event
			logger.Error("Points debited but redemption record failed",
				"reward_id", event.RewardID,
				"transaction_id", res.Transaction.ID.String(),
				"error", err,
			)
			return nil
		}
	}

	logger.Info("Reward redeemed",
		"reward_id", event.RewardID,
		"transaction_id", res.Transaction.ID.String(),
		"new_balance", res.NewBalance,
		"replayed", res.Replayed,
	)
	return nil
}
