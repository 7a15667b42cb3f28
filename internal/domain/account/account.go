package account

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrInsufficientBalance = errors.New("insufficient balance for debit")
	ErrInvalidAmount       = errors.New("amount must be non-zero")
	ErrInvalidKind         = errors.New("unknown account kind")
	ErrEmptyCustomerID     = errors.New("customer id cannot be empty")
)

// Kind distinguishes the two ledger account flavours a customer owns.
type Kind string

const (
	KindWallet  Kind = "WALLET"
	KindLoyalty Kind = "LOYALTY"
)

// Valid reports whether the kind is one of the known account kinds
func (k Kind) Valid() bool {
	return k == KindWallet || k == KindLoyalty
}

// Account is a per-customer, per-kind balance record.
// Balance is stored in minor units (cents for wallet, points for loyalty).
type Account struct {
	ID            uuid.UUID `json:"id"`
	CustomerID    uuid.UUID `json:"customer_id"`
	Kind          Kind      `json:"kind"`
	Balance       int64     `json:"balance"`
	TotalCredited int64     `json:"total_credited"`
	TotalSpent    int64     `json:"total_spent"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewAccount creates a zero-balance account for the given customer and kind
func NewAccount(customerID uuid.UUID, kind Kind) (*Account, error) {
	if customerID == uuid.Nil {
		return nil, ErrEmptyCustomerID
	}
	if !kind.Valid() {
		return nil, ErrInvalidKind
	}

	now := time.Now()
	return &Account{
		ID:         uuid.New(),
		CustomerID: customerID,
		Kind:       kind,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// Apply adjusts the balance and lifetime accumulators by a signed amount.
// A negative amount is a debit and must not take the balance below zero.
func (a *Account) Apply(signedAmount int64) error {
	if signedAmount == 0 {
		return ErrInvalidAmount
	}

	if signedAmount < 0 && a.Balance+signedAmount < 0 {
		return ErrInsufficientBalance
	}

	a.Balance += signedAmount
	if signedAmount > 0 {
		a.TotalCredited += signedAmount
	} else {
		a.TotalSpent += -signedAmount
	}
	a.UpdatedAt = time.Now()
	return nil
}

// CanDebit checks whether the account can absorb a debit of the given magnitude
func (a *Account) CanDebit(amount int64) bool {
	return a.Balance >= amount
}
