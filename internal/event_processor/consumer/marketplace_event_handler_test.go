package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/quickbasket/marketplace-ledger/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockProcessingService struct {
	mock.Mock
}

func (m *MockProcessingService) ProcessEvent(ctx context.Context, event *shared.MarketplaceEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

type MockDLQProducer struct {
	mock.Mock
}

func (m *MockDLQProducer) PublishToDLQ(ctx context.Context, key string, originalMessageValue []byte, reason string) error {
	args := m.Called(ctx, key, originalMessageValue, reason)
	return args.Error(0)
}

func (m *MockDLQProducer) Close() error {
	args := m.Called()
	return args.Error(0)
}

func newTestHandler(processing *MockProcessingService, dlq *MockDLQProducer) *MarketplaceEventHandler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if dlq == nil {
		return NewMarketplaceEventHandler(logger, processing, nil)
	}
	return NewMarketplaceEventHandler(logger, processing, dlq)
}

func validEventBytes(t *testing.T) ([]byte, *shared.MarketplaceEvent) {
	t.Helper()
	event := &shared.MarketplaceEvent{
		EventID:    uuid.New(),
		Type:       shared.EventOrderPaid,
		CustomerID: uuid.New(),
		OrderID:    "ord-1",
		Amount:     2500,
	}
	value, err := json.Marshal(event)
	require.NoError(t, err)
	return value, event
}

func TestMarketplaceEventHandler_HandleMessage(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		processing := new(MockProcessingService)
		dlq := new(MockDLQProducer)
		handler := newTestHandler(processing, dlq)

		value, event := validEventBytes(t)
		processing.On("ProcessEvent", ctx, mock.MatchedBy(func(e *shared.MarketplaceEvent) bool {
			return e.EventID == event.EventID
		})).Return(nil)

		err := handler.HandleMessage(ctx, []byte("key-1"), value)

		assert.NoError(t, err)
		processing.AssertExpectations(t)
		dlq.AssertNotCalled(t, "PublishToDLQ", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("PoisonMessageGoesToDLQ", func(t *testing.T) {
		processing := new(MockProcessingService)
		dlq := new(MockDLQProducer)
		handler := newTestHandler(processing, dlq)

		value := []byte(`{not json`)
		dlq.On("PublishToDLQ", ctx, "key-2", value, mock.AnythingOfType("string")).Return(nil)

		err := handler.HandleMessage(ctx, []byte("key-2"), value)

		assert.NoError(t, err, "DLQ-parked message must commit the offset")
		dlq.AssertExpectations(t)
		processing.AssertNotCalled(t, "ProcessEvent", mock.Anything, mock.Anything)
	})

	t.Run("UnknownEventTypeGoesToDLQ", func(t *testing.T) {
		processing := new(MockProcessingService)
		dlq := new(MockDLQProducer)
		handler := newTestHandler(processing, dlq)

		value, _ := validEventBytes(t)
		processing.On("ProcessEvent", ctx, mock.Anything).Return(shared.ErrUnknownEventType)
		dlq.On("PublishToDLQ", ctx, "key-3", value, mock.AnythingOfType("string")).Return(nil)

		err := handler.HandleMessage(ctx, []byte("key-3"), value)

		assert.NoError(t, err)
		dlq.AssertExpectations(t)
	})

	t.Run("DLQPublishFailureLeavesOffsetUncommitted", func(t *testing.T) {
		processing := new(MockProcessingService)
		dlq := new(MockDLQProducer)
		handler := newTestHandler(processing, dlq)

		value := []byte(`{not json`)
		dlq.On("PublishToDLQ", ctx, "key-4", value, mock.AnythingOfType("string")).
			Return(errors.New("broker unavailable"))

		err := handler.HandleMessage(ctx, []byte("key-4"), value)

		assert.Error(t, err)
		dlq.AssertExpectations(t)
	})

	t.Run("NoDLQConfigured", func(t *testing.T) {
		processing := new(MockProcessingService)
		handler := newTestHandler(processing, nil)

		err := handler.HandleMessage(ctx, []byte("key-5"), []byte(`{not json`))

		assert.Error(t, err, "Without a DLQ the consumer must retry the message")
	})

	t.Run("ProcessingErrorPropagates", func(t *testing.T) {
		processing := new(MockProcessingService)
		dlq := new(MockDLQProducer)
		handler := newTestHandler(processing, dlq)

		value, _ := validEventBytes(t)
		processingErr := errors.New("db timeout")
		processing.On("ProcessEvent", ctx, mock.Anything).Return(processingErr)

		err := handler.HandleMessage(ctx, []byte("key-6"), value)

		assert.ErrorIs(t, err, processingErr)
		dlq.AssertNotCalled(t, "PublishToDLQ", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}
