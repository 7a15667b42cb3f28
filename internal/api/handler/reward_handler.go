package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/quickbasket/marketplace-ledger/internal/api/service"
)

// RewardHandler handles HTTP requests for the reward catalog
type RewardHandler struct {
	rewardService service.RewardService
	logger        *slog.Logger
}

// NewRewardHandler creates a new reward handler
func NewRewardHandler(logger *slog.Logger, rewardService service.RewardService) *RewardHandler {
	return &RewardHandler{
		rewardService: rewardService,
		logger:        logger,
	}
}

// ListActive returns the currently redeemable reward catalog
func (h *RewardHandler) ListActive(c *gin.Context) {
	rewards, err := h.rewardService.ListActive(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list rewards", "error", err)
		RespondInternalError(c)
		return
	}

	responses := make([]RewardResponse, 0, len(rewards))
	for _, rw := range rewards {
		responses = append(responses, mapRewardToResponse(rw))
	}

	RespondOK(c, responses)
}
