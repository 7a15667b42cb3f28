package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/quickbasket/marketplace-ledger/internal/api/middleware"
	"github.com/quickbasket/marketplace-ledger/internal/api/service"
	"github.com/quickbasket/marketplace-ledger/internal/domain/account"
	"github.com/quickbasket/marketplace-ledger/internal/ledger"
)

// WalletHandler handles HTTP requests for customer wallet operations
type WalletHandler struct {
	walletService service.WalletService
	logger        *slog.Logger
}

// NewWalletHandler creates a new wallet handler
func NewWalletHandler(logger *slog.Logger, walletService service.WalletService) *WalletHandler {
	return &WalletHandler{
		walletService: walletService,
		logger:        logger,
	}
}

// Create handles eager creation of a customer's wallet. Repeated calls
// return the same wallet.
func (h *WalletHandler) Create(c *gin.Context) {
	customerID, ok := parseCustomerID(c, h.logger)
	if !ok {
		return
	}

	acc, err := h.walletService.GetOrCreate(c.Request.Context(), customerID)
	if err != nil {
		h.logger.Error("Failed to get or create wallet", "customer_id", customerID.String(), "error", err)
		RespondInternalError(c)
		return
	}

	RespondCreated(c, mapAccountToResponse(acc))
}

// Get returns the wallet balance with one page of its transactions. An
// unknown customer sees an empty wallet, not an error.
func (h *WalletHandler) Get(c *gin.Context) {
	customerID, ok := parseCustomerID(c, h.logger)
	if !ok {
		return
	}

	page, filter, ok := parseListParams(c)
	if !ok {
		return
	}

	ov, err := h.walletService.Overview(c.Request.Context(), customerID, filter, page)
	if err != nil {
		h.logger.Error("Failed to load wallet overview", "customer_id", customerID.String(), "error", err)
		RespondInternalError(c)
		return
	}

	RespondWithPaginatedData(c, http.StatusOK, WalletOverviewData{Wallet: mapOverviewToResponse(ov)}, page, ov.Total)
}

// Credit applies an administrative credit to the customer's wallet
func (h *WalletHandler) Credit(c *gin.Context) {
	h.mutate(c, func(customerID uuid.UUID, req *MutationRequest, correlationID string) (*ledger.Result, error) {
		return h.walletService.Credit(c.Request.Context(), customerID, req.Amount, req.Description, correlationID)
	})
}

// Debit applies an administrative debit to the customer's wallet. A debit
// exceeding the balance is rejected without committing anything.
func (h *WalletHandler) Debit(c *gin.Context) {
	h.mutate(c, func(customerID uuid.UUID, req *MutationRequest, correlationID string) (*ledger.Result, error) {
		return h.walletService.Debit(c.Request.Context(), customerID, req.Amount, req.Description, correlationID)
	})
}

func (h *WalletHandler) mutate(c *gin.Context, apply func(uuid.UUID, *MutationRequest, string) (*ledger.Result, error)) {
	customerID, ok := parseCustomerID(c, h.logger)
	if !ok {
		return
	}

	var req MutationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	res, err := apply(customerID, &req, middleware.GetCorrelationID(c))
	if err != nil {
		switch {
		case errors.Is(err, account.ErrInsufficientBalance):
			RespondUnprocessable(c, "INSUFFICIENT_BALANCE", "Wallet balance is insufficient for this debit")
		case errors.Is(err, account.ErrInvalidAmount):
			RespondBadRequest(c, "Amount must be a positive number of minor units")
		default:
			h.logger.Error("Wallet mutation failed", "customer_id", customerID.String(), "error", err)
			RespondInternalError(c)
		}
		return
	}

	RespondOK(c, MutationResponse{
		Transaction: mapTransactionToResponse(res.Transaction),
		NewBalance:  res.NewBalance,
		Replayed:    res.Replayed,
	})
}

// parseCustomerID parses the customer_id path parameter, responding with
// 400 on malformed input
func parseCustomerID(c *gin.Context, logger *slog.Logger) (uuid.UUID, bool) {
	idParam := c.Param("customer_id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		logger.Error("Invalid customer ID", "customer_id", idParam, "error", err)
		RespondBadRequest(c, "Invalid customer ID")
		return uuid.Nil, false
	}
	return id, true
}
