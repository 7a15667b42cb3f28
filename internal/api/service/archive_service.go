package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	mongodata "github.com/quickbasket/marketplace-ledger/internal/data/mongo"
	"github.com/quickbasket/marketplace-ledger/internal/domain/shared"
	"github.com/quickbasket/marketplace-ledger/internal/ledger"
)

// archiveService implements ArchiveService over the Mongo archive repository
type archiveService struct {
	logger  *slog.Logger
	archive *mongodata.ArchiveRepository
}

// NewArchiveService creates the reporting archive service
func NewArchiveService(logger *slog.Logger, archive *mongodata.ArchiveRepository) ArchiveService {
	return &archiveService{
		logger:  logger,
		archive: archive,
	}
}

func (s *archiveService) GetByAccount(ctx context.Context, accountID uuid.UUID, page ledger.PageParams) ([]*shared.ArchiveEntry, int64, error) {
	entries, err := s.archive.GetByAccountID(ctx, accountID, page.Limit, page.Offset())
	if err != nil {
		return nil, 0, err
	}

	total, err := s.archive.CountByAccountID(ctx, accountID)
	if err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}

func (s *archiveService) GetByTimeRange(ctx context.Context, from, to time.Time, page ledger.PageParams) ([]*shared.ArchiveEntry, error) {
	return s.archive.GetByTimeRange(ctx, from, to, page.Limit, page.Offset())
}
