package shared

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrUnknownEventType = errors.New("unknown marketplace event type")
)

// EventType identifies the marketplace events the ledger reacts to
type EventType string

const (
	// EventOrderPaid debits the customer's wallet by Amount
	EventOrderPaid EventType = "order.paid"
	// EventOrderCompleted credits loyalty points earned from Total
	EventOrderCompleted EventType = "order.completed"
	// EventRewardRedeemed debits loyalty points for the reward
	EventRewardRedeemed EventType = "reward.redeemed"
)

// MarketplaceEvent is the Kafka message the order and reward subsystems
// publish when something happened that must move money or points.
type MarketplaceEvent struct {
	EventID    uuid.UUID `json:"event_id"`
	Type       EventType `json:"type"`
	CustomerID uuid.UUID `json:"customer_id"`
	OrderID    string    `json:"order_id,omitempty"`
	RewardID   string    `json:"reward_id,omitempty"`
	// Amount is the wallet charge in minor units (order.paid)
	Amount int64 `json:"amount,omitempty"`
	// Total is the order total used to compute loyalty earn (order.completed)
	Total      int64     `json:"total,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NotificationEvent is the fire-and-forget message published after a
// successful ledger mutation. Delivery is best-effort and never part of
// the mutation's failure domain.
type NotificationEvent struct {
	TransactionID uuid.UUID `json:"transaction_id"`
	AccountID     uuid.UUID `json:"account_id"`
	CustomerID    uuid.UUID `json:"customer_id"`
	AccountKind   string    `json:"account_kind"`
	Type          string    `json:"type"`
	Amount        int64     `json:"amount"`
	NewBalance    int64     `json:"new_balance"`
	Description   string    `json:"description"`
	OccurredAt    time.Time `json:"occurred_at"`
}
