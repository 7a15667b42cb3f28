package reward

import (
	"context"

	"github.com/google/uuid"
)

// Repository manages the reward catalog and redemption records
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Reward, error)
	ListActive(ctx context.Context) ([]*Reward, error)

	// CreateRedemption records a redemption after the points debit has
	// committed. Redemptions are append-only.
	CreateRedemption(ctx context.Context, red *Redemption) error
	ListRedemptionsByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*Redemption, error)
}

// ErrRewardNotFound indicates missing reward
type ErrRewardNotFound struct {
	RewardID uuid.UUID
}

func (e ErrRewardNotFound) Error() string {
	return "reward not found: " + e.RewardID.String()
}

// Is implements the errors.Is interface for ErrRewardNotFound
func (e ErrRewardNotFound) Is(target error) bool {
	t, ok := target.(ErrRewardNotFound)
	if !ok {
		return false
	}
	if t.RewardID == uuid.Nil {
		return true
	}
	return e.RewardID == t.RewardID
}
