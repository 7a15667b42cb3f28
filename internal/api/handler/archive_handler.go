package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/quickbasket/marketplace-ledger/internal/api/service"
)

// ArchiveHandler handles HTTP requests against the reporting archive
type ArchiveHandler struct {
	archiveService service.ArchiveService
	logger         *slog.Logger
}

// NewArchiveHandler creates a new archive handler
func NewArchiveHandler(logger *slog.Logger, archiveService service.ArchiveService) *ArchiveHandler {
	return &ArchiveHandler{
		archiveService: archiveService,
		logger:         logger,
	}
}

// GetByTimeRange returns archived transactions inside a time window.
// Both bounds are required RFC3339 timestamps.
func (h *ArchiveHandler) GetByTimeRange(c *gin.Context) {
	from, err := time.Parse(time.RFC3339, c.Query("from"))
	if err != nil {
		RespondBadRequest(c, "Invalid 'from' timestamp, expected RFC3339")
		return
	}
	to, err := time.Parse(time.RFC3339, c.Query("to"))
	if err != nil {
		RespondBadRequest(c, "Invalid 'to' timestamp, expected RFC3339")
		return
	}
	if !to.After(from) {
		RespondBadRequest(c, "'to' must be after 'from'")
		return
	}

	page, _, ok := parseListParams(c)
	if !ok {
		return
	}

	entries, err := h.archiveService.GetByTimeRange(c.Request.Context(), from, to, page)
	if err != nil {
		h.logger.Error("Failed to query archive by time range", "error", err)
		RespondInternalError(c)
		return
	}

	responses := make([]ArchiveEntryResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, mapArchiveEntryToResponse(entry))
	}

	RespondOK(c, responses)
}

// GetByAccountID returns one page of an account's archived transactions
func (h *ArchiveHandler) GetByAccountID(c *gin.Context) {
	idParam := c.Param("id")
	accountID, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Error("Invalid account ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid account ID")
		return
	}

	page, _, ok := parseListParams(c)
	if !ok {
		return
	}

	entries, total, err := h.archiveService.GetByAccount(c.Request.Context(), accountID, page)
	if err != nil {
		h.logger.Error("Failed to query archive by account", "account_id", accountID.String(), "error", err)
		RespondInternalError(c)
		return
	}

	responses := make([]ArchiveEntryResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, mapArchiveEntryToResponse(entry))
	}

	RespondWithPaginatedData(c, http.StatusOK, responses, page, total)
}
