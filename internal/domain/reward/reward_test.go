package reward

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestReward_Redeemable(t *testing.T) {
	now := time.Now()

	t.Run("ActiveWithoutExpiry", func(t *testing.T) {
		rw := &Reward{ID: uuid.New(), Name: "Free delivery", PointsCost: 500, Active: true}
		assert.NoError(t, rw.Redeemable(now))
	})

	t.Run("ActiveBeforeExpiry", func(t *testing.T) {
		expires := now.Add(time.Hour)
		rw := &Reward{ID: uuid.New(), Name: "10% off", PointsCost: 1000, Active: true, ExpiresAt: &expires}
		assert.NoError(t, rw.Redeemable(now))
	})

	t.Run("Inactive", func(t *testing.T) {
		rw := &Reward{ID: uuid.New(), Name: "Retired", PointsCost: 100, Active: false}
		assert.ErrorIs(t, rw.Redeemable(now), ErrInactive)
	})

	t.Run("Expired", func(t *testing.T) {
		expires := now.Add(-time.Minute)
		rw := &Reward{ID: uuid.New(), Name: "Flash deal", PointsCost: 200, Active: true, ExpiresAt: &expires}
		assert.ErrorIs(t, rw.Redeemable(now), ErrExpired)
	})
}

func TestNewRedemption(t *testing.T) {
	rewardID := uuid.New()
	accountID := uuid.New()
	transactionID := uuid.New()

	before := time.Now()
	red := NewRedemption(rewardID, accountID, transactionID)
	after := time.Now()

	assert.NotEqual(t, uuid.Nil, red.ID)
	assert.Equal(t, rewardID, red.RewardID)
	assert.Equal(t, accountID, red.AccountID)
	assert.Equal(t, transactionID, red.TransactionID)
	assert.WithinDuration(t, before, red.RedeemedAt, after.Sub(before)+time.Millisecond)
}
