package mongo

import (
	"context"
	"errors"
	"testing"
	"time"

	"log/slog"

	"github.com/google/uuid"
	"github.com/quickbasket/marketplace-ledger/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/mongo"
)

type MockArchiveRepository struct {
	mock.Mock
}

func (m *MockArchiveRepository) Create(ctx context.Context, entry *shared.ArchiveEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockArchiveRepository) GetByTransactionID(ctx context.Context, transactionID uuid.UUID) (*shared.ArchiveEntry, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.ArchiveEntry), args.Error(1)
}

func (m *MockArchiveRepository) GetByAccountID(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*shared.ArchiveEntry, error) {
	args := m.Called(ctx, accountID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*shared.ArchiveEntry), args.Error(1)
}

func (m *MockArchiveRepository) CountByAccountID(ctx context.Context, accountID uuid.UUID) (int64, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockArchiveRepository) GetByTimeRange(ctx context.Context, startTime, endTime time.Time, limit, offset int) ([]*shared.ArchiveEntry, error) {
	args := m.Called(ctx, startTime, endTime, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*shared.ArchiveEntry), args.Error(1)
}

func testArchiveEntry(txID, accountID uuid.UUID) *shared.ArchiveEntry {
	return &shared.ArchiveEntry{
		TransactionID: txID,
		AccountID:     accountID,
		CustomerID:    uuid.New(),
		AccountKind:   "WALLET",
		Type:          "DEBIT",
		Amount:        2500,
		BalanceAfter:  7500,
		Description:   "Payment for order ord-1",
		CorrelationID: "ord-1",
		CreatedAt:     time.Now(),
	}
}

func TestNewArchiveRepository(t *testing.T) {
	db := &mongo.Database{}
	logger := slog.Default()

	repo := NewArchiveRepository(logger, db)

	assert.NotNil(t, repo)
	assert.IsType(t, &ArchiveRepository{}, repo)
}

func TestArchiveRepository_Create(t *testing.T) {
	txID := uuid.New()
	accountID := uuid.New()
	entry := testArchiveEntry(txID, accountID)

	tests := []struct {
		name          string
		setupMocks    func(m *MockArchiveRepository)
		expectedError error
	}{
		{
			name: "successful creation",
			setupMocks: func(m *MockArchiveRepository) {
				m.On("Create", mock.Anything, entry).Return(nil)
			},
			expectedError: nil,
		},
		{
			name: "duplicate entry is not an error",
			setupMocks: func(m *MockArchiveRepository) {
				m.On("Create", mock.Anything, entry).Return(nil)
			},
			expectedError: nil,
		},
		{
			name: "database error",
			setupMocks: func(m *MockArchiveRepository) {
				m.On("Create", mock.Anything, entry).Return(errors.New("db error"))
			},
			expectedError: errors.New("db error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &MockArchiveRepository{}
			tt.setupMocks(mockRepo)

			ctx := context.Background()
			err := mockRepo.Create(ctx, entry)

			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError.Error())
			} else {
				assert.NoError(t, err)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestArchiveRepository_GetByTransactionID(t *testing.T) {
	txID := uuid.New()
	accountID := uuid.New()
	entry := testArchiveEntry(txID, accountID)

	tests := []struct {
		name          string
		setupMocks    func(m *MockArchiveRepository)
		expectedEntry *shared.ArchiveEntry
		expectedError error
	}{
		{
			name: "entry found",
			setupMocks: func(m *MockArchiveRepository) {
				m.On("GetByTransactionID", mock.Anything, txID).Return(entry, nil)
			},
			expectedEntry: entry,
			expectedError: nil,
		},
		{
			name: "entry not found",
			setupMocks: func(m *MockArchiveRepository) {
				m.On("GetByTransactionID", mock.Anything, txID).Return(nil, ErrEntryNotFound{TransactionID: txID})
			},
			expectedEntry: nil,
			expectedError: ErrEntryNotFound{TransactionID: txID},
		},
		{
			name: "database error",
			setupMocks: func(m *MockArchiveRepository) {
				m.On("GetByTransactionID", mock.Anything, txID).Return(nil, errors.New("db error"))
			},
			expectedEntry: nil,
			expectedError: errors.New("db error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &MockArchiveRepository{}
			tt.setupMocks(mockRepo)

			ctx := context.Background()
			result, err := mockRepo.GetByTransactionID(ctx, txID)

			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError.Error())
				assert.Nil(t, result)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedEntry, result)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestArchiveRepository_GetByAccountID(t *testing.T) {
	accountID := uuid.New()
	entries := []*shared.ArchiveEntry{
		testArchiveEntry(uuid.New(), accountID),
		testArchiveEntry(uuid.New(), accountID),
	}

	tests := []struct {
		name            string
		setupMocks      func(m *MockArchiveRepository)
		expectedEntries []*shared.ArchiveEntry
		expectedError   error
	}{
		{
			name: "entries found",
			setupMocks: func(m *MockArchiveRepository) {
				m.On("GetByAccountID", mock.Anything, accountID, 20, 0).Return(entries, nil)
			},
			expectedEntries: entries,
			expectedError:   nil,
		},
		{
			name: "no entries",
			setupMocks: func(m *MockArchiveRepository) {
				m.On("GetByAccountID", mock.Anything, accountID, 20, 0).Return([]*shared.ArchiveEntry{}, nil)
			},
			expectedEntries: []*shared.ArchiveEntry{},
			expectedError:   nil,
		},
		{
			name: "database error",
			setupMocks: func(m *MockArchiveRepository) {
				m.On("GetByAccountID", mock.Anything, accountID, 20, 0).Return(nil, errors.New("db error"))
			},
			expectedEntries: nil,
			expectedError:   errors.New("db error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &MockArchiveRepository{}
			tt.setupMocks(mockRepo)

			ctx := context.Background()
			result, err := mockRepo.GetByAccountID(ctx, accountID, 20, 0)

			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.Nil(t, result)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedEntries, result)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestArchiveRepository_GetByTimeRange(t *testing.T) {
	accountID := uuid.New()
	now := time.Now()
	from := now.Add(-24 * time.Hour)
	entries := []*shared.ArchiveEntry{testArchiveEntry(uuid.New(), accountID)}

	mockRepo := &MockArchiveRepository{}
	mockRepo.On("GetByTimeRange", mock.Anything, from, now, 50, 0).Return(entries, nil)

	result, err := mockRepo.GetByTimeRange(context.Background(), from, now, 50, 0)

	assert.NoError(t, err)
	assert.Equal(t, entries, result)
	mockRepo.AssertExpectations(t)
}

func TestErrEntryNotFound_Is(t *testing.T) {
	txID := uuid.New()
	err := ErrEntryNotFound{TransactionID: txID}

	assert.ErrorIs(t, err, ErrEntryNotFound{})
	assert.ErrorIs(t, err, ErrEntryNotFound{TransactionID: txID})
	assert.NotErrorIs(t, err, ErrEntryNotFound{TransactionID: uuid.New()})
}
