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
	"github.com/quickbasket/marketplace-ledger/internal/domain/reward"
)

// LoyaltyHandler handles HTTP requests for loyalty account operations
type LoyaltyHandler struct {
	loyaltyService service.LoyaltyService
	logger         *slog.Logger
}

// NewLoyaltyHandler creates a new loyalty handler
func NewLoyaltyHandler(logger *slog.Logger, loyaltyService service.LoyaltyService) *LoyaltyHandler {
	return &LoyaltyHandler{
		loyaltyService: loyaltyService,
		logger:         logger,
	}
}

// Get returns the loyalty balance with one page of its transactions
func (h *LoyaltyHandler) Get(c *gin.Context) {
	customerID, ok := parseCustomerID(c, h.logger)
	if !ok {
		return
	}

	page, filter, ok := parseListParams(c)
	if !ok {
		return
	}

	ov, err := h.loyaltyService.Overview(c.Request.Context(), customerID, filter, page)
	if err != nil {
		h.logger.Error("Failed to load loyalty overview", "customer_id", customerID.String(), "error", err)
		RespondInternalError(c)
		return
	}

	RespondWithPaginatedData(c, http.StatusOK, LoyaltyOverviewData{Loyalty: mapOverviewToResponse(ov)}, page, ov.Total)
}

// Redeem exchanges loyalty points for a catalog reward
func (h *LoyaltyHandler) Redeem(c *gin.Context) {
	customerID, ok := parseCustomerID(c, h.logger)
	if !ok {
		return
	}

	var req RedeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	rewardID, err := uuid.Parse(req.RewardID)
	if err != nil {
		RespondBadRequest(c, "Invalid reward ID")
		return
	}

	outcome, err := h.loyaltyService.Redeem(c.Request.Context(), customerID, rewardID, middleware.GetCorrelationID(c))
	if err != nil {
		var rewardNotFound reward.ErrRewardNotFound
		switch {
		case errors.As(err, &rewardNotFound):
			RespondNotFound(c, "Reward not found")
		case errors.Is(err, reward.ErrInactive):
			RespondUnprocessable(c, "REWARD_INACTIVE", "Reward is not active")
		case errors.Is(err, reward.ErrExpired):
			RespondUnprocessable(c, "REWARD_EXPIRED", "Reward has expired")
		case errors.Is(err, account.ErrInsufficientBalance):
			RespondUnprocessable(c, "INSUFFICIENT_POINTS", "Loyalty balance is insufficient for this reward")
		default:
			h.logger.Error("Reward redemption failed",
				"customer_id", customerID.String(),
				"reward_id", rewardID.String(),
				"error", err,
			)
			RespondInternalError(c)
		}
		return
	}

	RespondOK(c, RedeemResponse{
		Reward:      mapRewardToResponse(outcome.Reward),
		Transaction: mapTransactionToResponse(outcome.Result.Transaction),
		NewBalance:  outcome.Result.NewBalance,
		Replayed:    outcome.Result.Replayed,
	})
}
