package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// BalanceCache is the injected read-cache capability for account balances.
// It is strictly an accelerator for the query surface: the ledger never
// trusts it for mutation decisions, and every implementation must tolerate
// being unavailable.
type BalanceCache interface {
	// GetBalance returns the cached balance and whether it was present
	GetBalance(ctx context.Context, accountID uuid.UUID) (int64, bool, error)
	SetBalance(ctx context.Context, accountID uuid.UUID, balance int64) error
	Invalidate(ctx context.Context, accountID uuid.UUID) error
}

// RedisBalanceCache implements BalanceCache on Redis with a short TTL
type RedisBalanceCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedisBalanceCache creates a Redis-backed balance cache
func NewRedisBalanceCache(logger *slog.Logger, client *redis.Client, ttl time.Duration) *RedisBalanceCache {
	return &RedisBalanceCache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func balanceKey(accountID uuid.UUID) string {
	return "ledger:balance:" + accountID.String()
}

// GetBalance returns the cached balance for the account, if present
func (c *RedisBalanceCache) GetBalance(ctx context.Context, accountID uuid.UUID) (int64, bool, error) {
	val, err := c.client.Get(ctx, balanceKey(accountID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to read cached balance: %w", err)
	}

	balance, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		// Unparseable entry, drop it and treat as a miss
		c.logger.Warn("Dropping malformed cached balance", "account_id", accountID.String(), "value", val)
		_ = c.client.Del(ctx, balanceKey(accountID)).Err()
		return 0, false, nil
	}

	return balance, true, nil
}

// SetBalance caches the balance with the configured TTL
func (c *RedisBalanceCache) SetBalance(ctx context.Context, accountID uuid.UUID, balance int64) error {
	err := c.client.Set(ctx, balanceKey(accountID), strconv.FormatInt(balance, 10), c.ttl).Err()
	if err != nil {
		return fmt.Errorf("failed to cache balance: %w", err)
	}
	return nil
}

// Invalidate evicts the cached balance after a mutation commits
func (c *RedisBalanceCache) Invalidate(ctx context.Context, accountID uuid.UUID) error {
	err := c.client.Del(ctx, balanceKey(accountID)).Err()
	if err != nil {
		return fmt.Errorf("failed to invalidate cached balance: %w", err)
	}
	return nil
}
