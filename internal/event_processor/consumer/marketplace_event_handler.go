package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/quickbasket/marketplace-ledger/internal/domain/shared"
	"github.com/quickbasket/marketplace-ledger/internal/event_processor/service"
	"github.com/quickbasket/marketplace-ledger/internal/platform/messaging/producers"
)

// MarketplaceEventHandler handles incoming marketplace event messages from Kafka
type MarketplaceEventHandler struct {
	processingService service.ProcessingService
	producer          producers.DeadLetterPublisher
	logger            *slog.Logger
}

// NewMarketplaceEventHandler creates a new handler
func NewMarketplaceEventHandler(
	logger *slog.Logger,
	processingService service.ProcessingService,
	producer producers.DeadLetterPublisher,
) *MarketplaceEventHandler {
	return &MarketplaceEventHandler{
		processingService: processingService,
		producer:          producer,
		logger:            logger,
	}
}

// HandleMessage processes one Kafka message. Poison messages (unparseable or
// of unknown type) go to the DLQ so the partition keeps moving; transient
// failures return an error to leave the offset uncommitted for retry.
func (h *MarketplaceEventHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	var event shared.MarketplaceEvent
	if err := json.Unmarshal(value, &event); err != nil {
		reason := fmt.Sprintf("Failed to unmarshal marketplace event: %s", err.Error())
		h.logger.Error("Failed to unmarshal marketplace event from Kafka message",
			"error", err,
			"message_key", string(key),
		)
		return h.sendToDLQ(ctx, key, value, reason, err)
	}

	logger := h.logger.With("event_id", event.EventID.String(), "event_type", string(event.Type))
	logger.Info("Received marketplace event for processing",
		"customer_id", event.CustomerID.String(),
	)

	if err := h.processingService.ProcessEvent(ctx, &event); err != nil {
		if errors.Is(err, shared.ErrUnknownEventType) {
			reason := fmt.Sprintf("Unknown marketplace event type: %s", string(event.Type))
			logger.Error("Unknown marketplace event type", "message_key", string(key))
			return h.sendToDLQ(ctx, key, value, reason, err)
		}

		logger.Error("Failed to process marketplace event", "error", err)
		return fmt.Errorf("processing event %s failed: %w", event.EventID.String(), err)
	}

	logger.Info("Successfully processed marketplace event")
	return nil // Success, commit offset
}

// sendToDLQ parks a poison message on the DLQ, falling back to a consumer
// retry when no DLQ is configured or the publish fails
func (h *MarketplaceEventHandler) sendToDLQ(ctx context.Context, key, value []byte, reason string, cause error) error {
	if h.producer == nil {
		return fmt.Errorf("unprocessable message and no DLQ configured: %w", cause)
	}

	if dlqErr := h.producer.PublishToDLQ(ctx, string(key), value, reason); dlqErr != nil {
		h.logger.Error("Failed to publish message to DLQ",
			"dlq_error", dlqErr,
			"original_error", cause,
			"message_key", string(key),
		)
		return fmt.Errorf("unprocessable message and DLQ publish failed: %w", cause)
	}

	h.logger.Info("Published unprocessable message to DLQ", "message_key", string(key), "reason", reason)
	return nil // Message handled, commit offset
}
