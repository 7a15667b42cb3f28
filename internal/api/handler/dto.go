package handler

import (
	"time"

	"github.com/quickbasket/marketplace-ledger/internal/api/service"
	"github.com/quickbasket/marketplace-ledger/internal/domain/account"
	"github.com/quickbasket/marketplace-ledger/internal/domain/reward"
	"github.com/quickbasket/marketplace-ledger/internal/domain/shared"
	"github.com/quickbasket/marketplace-ledger/internal/domain/transaction"
)

// PaginationParams represents pagination and filter query parameters for
// list endpoints. Out-of-range values are clamped, not rejected.
type PaginationParams struct {
	Page  int    `form:"page,default=1"`
	Limit int    `form:"limit,default=20"`
	Type  string `form:"type"`
}

// MutationRequest represents an admin credit or debit request. Amount is the
// magnitude; the endpoint determines the sign.
type MutationRequest struct {
	Amount      int64  `json:"amount" binding:"required,gt=0"`
	Description string `json:"description"`
}

// RedeemRequest represents a request to redeem a catalog reward
type RedeemRequest struct {
	RewardID string `json:"reward_id" binding:"required,uuid"`
}

// AccountResponse represents a ledger account in API responses
type AccountResponse struct {
	ID            string `json:"id"`
	CustomerID    string `json:"customer_id"`
	Kind          string `json:"kind"`
	Balance       int64  `json:"balance"`
	TotalCredited int64  `json:"total_credited"`
	TotalSpent    int64  `json:"total_spent"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

// TransactionResponse represents a ledger transaction in API responses
type TransactionResponse struct {
	ID            string `json:"id"`
	AccountID     string `json:"account_id"`
	Type          string `json:"type"`
	Amount        int64  `json:"amount"`
	Description   string `json:"description,omitempty"`
	CorrelationID string `json:"correlation_id,omitempty"`
	CreatedAt     string `json:"created_at"`
}

// AccountOverviewResponse bundles an account's balance with one page of its
// transactions
type AccountOverviewResponse struct {
	Account      AccountResponse       `json:"account"`
	Balance      int64                 `json:"balance"`
	Transactions []TransactionResponse `json:"transactions"`
}

// WalletOverviewData wraps the wallet overview under its envelope key
type WalletOverviewData struct {
	Wallet AccountOverviewResponse `json:"wallet"`
}

// LoyaltyOverviewData wraps the loyalty overview under its envelope key
type LoyaltyOverviewData struct {
	Loyalty AccountOverviewResponse `json:"loyalty"`
}

// MutationResponse represents the outcome of a committed balance mutation
type MutationResponse struct {
	Transaction TransactionResponse `json:"transaction"`
	NewBalance  int64               `json:"new_balance"`
	Replayed    bool                `json:"replayed,omitempty"`
}

// RewardResponse represents a catalog reward in API responses
type RewardResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	PointsCost int64  `json:"points_cost"`
	Active     bool   `json:"active"`
	ExpiresAt  string `json:"expires_at,omitempty"`
}

// RedeemResponse represents the outcome of a reward redemption
type RedeemResponse struct {
	Reward      RewardResponse      `json:"reward"`
	Transaction TransactionResponse `json:"transaction"`
	NewBalance  int64               `json:"new_balance"`
	Replayed    bool                `json:"replayed,omitempty"`
}

// ArchiveEntryResponse represents an archived transaction in API responses
type ArchiveEntryResponse struct {
	TransactionID string `json:"transaction_id"`
	AccountID     string `json:"account_id"`
	CustomerID    string `json:"customer_id"`
	AccountKind   string `json:"account_kind"`
	Type          string `json:"type"`
	Amount        int64  `json:"amount"`
	BalanceAfter  int64  `json:"balance_after"`
	Description   string `json:"description,omitempty"`
	CorrelationID string `json:"correlation_id,omitempty"`
	CreatedAt     string `json:"created_at"`
}

func mapAccountToResponse(acc *account.Account) AccountResponse {
	return AccountResponse{
		ID:            acc.ID.String(),
		CustomerID:    acc.CustomerID.String(),
		Kind:          string(acc.Kind),
		Balance:       acc.Balance,
		TotalCredited: acc.TotalCredited,
		TotalSpent:    acc.TotalSpent,
		CreatedAt:     acc.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     acc.UpdatedAt.Format(time.RFC3339),
	}
}

func mapTransactionToResponse(txn *transaction.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:            txn.ID.String(),
		AccountID:     txn.AccountID.String(),
		Type:          string(txn.Type),
		Amount:        txn.Amount,
		Description:   txn.Description,
		CorrelationID: txn.CorrelationID,
		CreatedAt:     txn.CreatedAt.Format(time.RFC3339),
	}
}

func mapTransactionsToResponses(txns []*transaction.Transaction) []TransactionResponse {
	responses := make([]TransactionResponse, 0, len(txns))
	for _, txn := range txns {
		responses = append(responses, mapTransactionToResponse(txn))
	}
	return responses
}

func mapOverviewToResponse(ov *service.AccountOverview) AccountOverviewResponse {
	return AccountOverviewResponse{
		Account:      mapAccountToResponse(ov.Account),
		Balance:      ov.Balance,
		Transactions: mapTransactionsToResponses(ov.Transactions),
	}
}

func mapRewardToResponse(rw *reward.Reward) RewardResponse {
	resp := RewardResponse{
		ID:         rw.ID.String(),
		Name:       rw.Name,
		PointsCost: rw.PointsCost,
		Active:     rw.Active,
	}
	if rw.ExpiresAt != nil {
		resp.ExpiresAt = rw.ExpiresAt.Format(time.RFC3339)
	}
	return resp
}

func mapArchiveEntryToResponse(entry *shared.ArchiveEntry) ArchiveEntryResponse {
	return ArchiveEntryResponse{
		TransactionID: entry.TransactionID.String(),
		AccountID:     entry.AccountID.String(),
		CustomerID:    entry.CustomerID.String(),
		AccountKind:   entry.AccountKind,
		Type:          entry.Type,
		Amount:        entry.Amount,
		BalanceAfter:  entry.BalanceAfter,
		Description:   entry.Description,
		CorrelationID: entry.CorrelationID,
		CreatedAt:     entry.CreatedAt.Format(time.RFC3339),
	}
}
