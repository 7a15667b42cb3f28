package transaction

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/quickbasket/marketplace-ledger/internal/domain/account"
)

var (
	ErrInvalidType = errors.New("invalid transaction type")
)

// Type classifies a ledger transaction. Wallet accounts record
// CREDIT/DEBIT; loyalty accounts record EARN/REDEEM.
type Type string

const (
	TypeCredit Type = "CREDIT"
	TypeDebit  Type = "DEBIT"
	TypeEarn   Type = "EARN"
	TypeRedeem Type = "REDEEM"
)

// Valid reports whether the type is one of the four known transaction types
func (t Type) Valid() bool {
	switch t {
	case TypeCredit, TypeDebit, TypeEarn, TypeRedeem:
		return true
	}
	return false
}

// Signed returns the effect of the type on an account balance: +1 for
// CREDIT/EARN, -1 for DEBIT/REDEEM.
func (t Type) Signed(amount int64) int64 {
	if t == TypeDebit || t == TypeRedeem {
		return -amount
	}
	return amount
}

// TypeFor derives the transaction type from the sign of the applied amount
// and the kind of the account it was applied to.
func TypeFor(kind account.Kind, signedAmount int64) Type {
	if kind == account.KindLoyalty {
		if signedAmount < 0 {
			return TypeRedeem
		}
		return TypeEarn
	}
	if signedAmount < 0 {
		return TypeDebit
	}
	return TypeCredit
}

// Transaction is an immutable, append-only ledger entry recording one
// balance change. Amount is always positive; the sign lives in Type.
type Transaction struct {
	ID            uuid.UUID `json:"id"`
	AccountID     uuid.UUID `json:"account_id"`
	Type          Type      `json:"type"`
	Amount        int64     `json:"amount"`
	Description   string    `json:"description"`
	CorrelationID string    `json:"correlation_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// New builds a transaction for a signed amount applied to an account of the
// given kind. The stored amount is the magnitude.
func New(accountID uuid.UUID, kind account.Kind, signedAmount int64, description, correlationID string) *Transaction {
	amount := signedAmount
	if amount < 0 {
		amount = -amount
	}

	return &Transaction{
		ID:            uuid.New(),
		AccountID:     accountID,
		Type:          TypeFor(kind, signedAmount),
		Amount:        amount,
		Description:   description,
		CorrelationID: correlationID,
		CreatedAt:     time.Now(),
	}
}

// SignedAmount returns the transaction's signed effect on the balance
func (t *Transaction) SignedAmount() int64 {
	return t.Type.Signed(t.Amount)
}
