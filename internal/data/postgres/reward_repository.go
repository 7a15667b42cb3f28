package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/quickbasket/marketplace-ledger/internal/domain/reward"
	"github.com/quickbasket/marketplace-ledger/internal/platform/persistence"
)

// RewardRepository implements the reward.Repository interface for PostgreSQL
type RewardRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewRewardRepository creates a new PostgreSQL reward repository
func NewRewardRepository(logger *slog.Logger, db *persistence.PostgresDB) reward.Repository {
	return &RewardRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// GetByID retrieves a reward by its ID
func (r *RewardRepository) GetByID(ctx context.Context, id uuid.UUID) (*reward.Reward, error) {
	query := `
		SELECT id, name, points_cost, active, expires_at, created_at
		FROM rewards
		WHERE id = $1
	`

	var rw reward.Reward
	err := r.querier.QueryRow(ctx, query, id).Scan(
		&rw.ID,
		&rw.Name,
		&rw.PointsCost,
		&rw.Active,
		&rw.ExpiresAt,
		&rw.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, reward.ErrRewardNotFound{RewardID: id}
		}
		r.logger.Error("Failed to get reward", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get reward: %w", err)
	}

	return &rw, nil
}

// ListActive retrieves the redeemable reward catalog
func (r *RewardRepository) ListActive(ctx context.Context) ([]*reward.Reward, error) {
	query := `
		SELECT id, name, points_cost, active, expires_at, created_at
		FROM rewards
		WHERE active = TRUE AND (expires_at IS NULL OR expires_at > NOW())
		ORDER BY points_cost ASC
	`

	rows, err := r.querier.Query(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list active rewards", "error", err)
		return nil, fmt.Errorf("failed to list active rewards: %w", err)
	}
	defer rows.Close()

	var rewards []*reward.Reward
	for rows.Next() {
		var rw reward.Reward
		err := rows.Scan(&rw.ID, &rw.Name, &rw.PointsCost, &rw.Active, &rw.ExpiresAt, &rw.CreatedAt)
		if err != nil {
			r.logger.Error("Failed to scan reward", "error", err)
			return nil, fmt.Errorf("failed to scan reward: %w", err)
		}
		rewards = append(rewards, &rw)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over rewards", "error", err)
		return nil, fmt.Errorf("error iterating over rewards: %w", err)
	}

	return rewards, nil
}

// CreateRedemption records a redemption after the points debit committed
func (r *RewardRepository) CreateRedemption(ctx context.Context, red *reward.Redemption) error {
	query := `
		INSERT INTO redemptions (id, reward_id, account_id, transaction_id, redeemed_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.querier.Exec(ctx, query,
		red.ID,
		red.RewardID,
		red.AccountID,
		red.TransactionID,
		red.RedeemedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create redemption", "reward_id", red.RewardID.String(), "error", err)
		return fmt.Errorf("failed to create redemption: %w", err)
	}

	return nil
}

// ListRedemptionsByAccount retrieves paginated redemptions for an account, newest first
func (r *RewardRepository) ListRedemptionsByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*reward.Redemption, error) {
	query := `
		SELECT id, reward_id, account_id, transaction_id, redeemed_at
		FROM redemptions
		WHERE account_id = $1
		ORDER BY redeemed_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.querier.Query(ctx, query, accountID, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list redemptions", "account_id", accountID.String(), "error", err)
		return nil, fmt.Errorf("failed to list redemptions: %w", err)
	}
	defer rows.Close()

	var redemptions []*reward.Redemption
	for rows.Next() {
		var red reward.Redemption
		err := rows.Scan(&red.ID, &red.RewardID, &red.AccountID, &red.TransactionID, &red.RedeemedAt)
		if err != nil {
			r.logger.Error("Failed to scan redemption", "error", err)
			return nil, fmt.Errorf("failed to scan redemption: %w", err)
		}
		redemptions = append(redemptions, &red)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over redemptions", "error", err)
		return nil, fmt.Errorf("error iterating over redemptions: %w", err)
	}

	return redemptions, nil
}
