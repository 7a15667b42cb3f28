package reward

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInactive = errors.New("reward is not active")
	ErrExpired  = errors.New("reward has expired")
)

// Reward is a loyalty catalog item redeemable for points
type Reward struct {
	ID         uuid.UUID  `json:"id"`
	Name       string     `json:"name"`
	PointsCost int64      `json:"points_cost"`
	Active     bool       `json:"active"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Redeemable checks whether the reward can be redeemed at the given instant
func (r *Reward) Redeemable(now time.Time) error {
	if !r.Active {
		return ErrInactive
	}
	if r.ExpiresAt != nil && now.After(*r.ExpiresAt) {
		return ErrExpired
	}
	return nil
}

// Redemption links a REDEEM transaction to the reward it paid for
type Redemption struct {
	ID            uuid.UUID `json:"id"`
	RewardID      uuid.UUID `json:"reward_id"`
	AccountID     uuid.UUID `json:"account_id"`
	TransactionID uuid.UUID `json:"transaction_id"`
	RedeemedAt    time.Time `json:"redeemed_at"`
}

// NewRedemption records a successful reward redemption
func NewRedemption(rewardID, accountID, transactionID uuid.UUID) *Redemption {
	return &Redemption{
		ID:            uuid.New(),
		RewardID:      rewardID,
		AccountID:     accountID,
		TransactionID: transactionID,
		RedeemedAt:    time.Now(),
	}
}
