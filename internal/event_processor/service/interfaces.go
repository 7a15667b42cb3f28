package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/quickbasket/marketplace-ledger/internal/domain/shared"
	"github.com/quickbasket/marketplace-ledger/internal/ledger"
)

// ProcessingService defines the interface for processing marketplace events.
type ProcessingService interface {
	ProcessEvent(ctx context.Context, event *shared.MarketplaceEvent) error
}

// BalanceMutator applies a signed delta to one account atomically.
// Implemented by the ledger mutator.
type BalanceMutator interface {
	Apply(ctx context.Context, accountID uuid.UUID, signedAmount int64, description, correlationID string) (*ledger.Result, error)
}
