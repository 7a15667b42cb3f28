// Package archive_poller drains the transactional outbox into the Mongo
// reporting archive.
package archive_poller

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/quickbasket/marketplace-ledger/internal/domain/outbox"
	"github.com/quickbasket/marketplace-ledger/internal/domain/shared"
)

// ArchiveWriter is the archive-store write capability the publisher needs.
// Implemented by the Mongo archive repository; its Create is idempotent on
// transaction ID.
type ArchiveWriter interface {
	Create(ctx context.Context, entry *shared.ArchiveEntry) error
}

// ArchivePublisher publishes outbox messages to the reporting archive
type ArchivePublisher interface {
	PublishToArchive(ctx context.Context, message *outbox.Message) error
}

// ArchivePublisherImpl implements ArchivePublisher
type ArchivePublisherImpl struct {
	outboxRepo outbox.Repository
	archive    ArchiveWriter
	logger     *slog.Logger
}

// NewArchivePublisher creates a new publisher
func NewArchivePublisher(
	logger *slog.Logger,
	outboxRepo outbox.Repository,
	archive ArchiveWriter,
) ArchivePublisher {
	return &ArchivePublisherImpl{
		outboxRepo: outboxRepo,
		archive:    archive,
		logger:     logger,
	}
}

// PublishToArchive writes one outbox message's archive entry and marks the
// message PROCESSED. A payload that cannot be decoded is marked
// FAILED_TO_PUBLISH immediately; retrying cannot fix it.
func (p *ArchivePublisherImpl) PublishToArchive(ctx context.Context, message *outbox.Message) error {
	entry, err := message.GetArchiveEntry()
	if err != nil {
		p.logger.Error("Failed to decode archive entry from outbox payload",
			"outbox_id", message.ID, "transaction_id", message.TransactionID, "error", err,
		)
		if updateErr := p.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusFailedToPublish); updateErr != nil {
			p.logger.Error("Also failed to mark outbox message FAILED_TO_PUBLISH after decode error",
				"outbox_id", message.ID, "update_error", updateErr,
			)
		}
		return fmt.Errorf("decode payload for outbox %d failed: %w", message.ID, err)
	}

	logger := p.logger
	if entry.CorrelationID != "" {
		logger = p.logger.With("correlation_id", entry.CorrelationID)
	}

	if err := p.archive.Create(ctx, entry); err != nil {
		logger.Error("Failed to write archive entry",
			"outbox_id", message.ID, "transaction_id", entry.TransactionID.String(), "error", err,
		)
		return fmt.Errorf("failed to write archive entry %s: %w", entry.TransactionID.String(), err)
	}

	if err := p.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusProcessed); err != nil {
		logger.Error("Archive write OK but failed to mark outbox message PROCESSED",
			"outbox_id", message.ID, "transaction_id", entry.TransactionID.String(), "error", err,
		)
		return fmt.Errorf("archive write for %s OK, but failed to mark outbox %d as PROCESSED: %w", entry.TransactionID.String(), message.ID, err)
	}

	logger.Info("Outbox message archived", "outbox_id", message.ID, "transaction_id", entry.TransactionID.String())
	return nil
}
