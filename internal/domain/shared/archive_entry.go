package shared

import (
	"time"

	"github.com/google/uuid"
)

// ArchiveEntry is the reporting-store projection of a committed ledger
// transaction. It carries enough denormalized context (customer, account
// kind, resulting balance) to answer archive queries without touching the
// OLTP store.
type ArchiveEntry struct {
	TransactionID uuid.UUID `json:"transaction_id" bson:"transaction_id"`
	AccountID     uuid.UUID `json:"account_id" bson:"account_id"`
	CustomerID    uuid.UUID `json:"customer_id" bson:"customer_id"`
	AccountKind   string    `json:"account_kind" bson:"account_kind"`
	Type          string    `json:"type" bson:"type"`
	Amount        int64     `json:"amount" bson:"amount"`
	BalanceAfter  int64     `json:"balance_after" bson:"balance_after"`
	Description   string    `json:"description" bson:"description"`
	CorrelationID string    `json:"correlation_id,omitempty" bson:"correlation_id,omitempty"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at"`
}

// OutboxStatus defines message publishing states
type OutboxStatus string

const (
	OutboxStatusPending         OutboxStatus = "PENDING"
	OutboxStatusProcessed       OutboxStatus = "PROCESSED"
	OutboxStatusFailedToPublish OutboxStatus = "FAILED_TO_PUBLISH"
)
