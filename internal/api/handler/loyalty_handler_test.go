package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/quickbasket/marketplace-ledger/internal/api/service"
	"github.com/quickbasket/marketplace-ledger/internal/domain/account"
	"github.com/quickbasket/marketplace-ledger/internal/domain/reward"
	"github.com/quickbasket/marketplace-ledger/internal/domain/transaction"
	"github.com/quickbasket/marketplace-ledger/internal/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockLoyaltyService struct {
	mock.Mock
}

func (m *MockLoyaltyService) Overview(ctx context.Context, customerID uuid.UUID, filter transaction.Filter, page ledger.PageParams) (*service.AccountOverview, error) {
	args := m.Called(ctx, customerID, filter, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AccountOverview), args.Error(1)
}

func (m *MockLoyaltyService) Redeem(ctx context.Context, customerID, rewardID uuid.UUID, correlationID string) (*service.RedeemOutcome, error) {
	args := m.Called(ctx, customerID, rewardID, correlationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.RedeemOutcome), args.Error(1)
}

func loyaltyFixture(customerID uuid.UUID, balance int64) *account.Account {
	now := time.Now()
	return &account.Account{
		ID:         uuid.New(),
		CustomerID: customerID,
		Kind:       account.KindLoyalty,
		Balance:    balance,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func rewardFixture(pointsCost int64) *reward.Reward {
	return &reward.Reward{
		ID:         uuid.New(),
		Name:       "Free delivery",
		PointsCost: pointsCost,
		Active:     true,
		CreatedAt:  time.Now(),
	}
}

func TestLoyaltyHandler_Get(t *testing.T) {
	logger := testHandlerLogger()

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockLoyaltyService)
		handler := NewLoyaltyHandler(logger, mockService)
		customerID := uuid.New()
		acc := loyaltyFixture(customerID, 850)
		overview := &service.AccountOverview{
			Account: acc,
			Balance: acc.Balance,
			Total:   0,
		}

		mockService.On("Overview", mock.Anything, customerID, transaction.Filter{}, ledger.PageParams{Page: 1, Limit: 20}).
			Return(overview, nil)

		router := setupTestRouter()
		router.GET("/customers/:customer_id/loyalty", handler.Get)

		req, _ := http.NewRequest(http.MethodGet, "/customers/"+customerID.String()+"/loyalty", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var body LoyaltyOverviewData
		decodeData(t, rr.Body.Bytes(), &body)
		assert.Equal(t, int64(850), body.Loyalty.Balance)
		assert.Equal(t, string(account.KindLoyalty), body.Loyalty.Account.Kind)
		mockService.AssertExpectations(t)
	})

	t.Run("InvalidCustomerID", func(t *testing.T) {
		mockService := new(MockLoyaltyService)
		handler := NewLoyaltyHandler(logger, mockService)

		router := setupTestRouter()
		router.GET("/customers/:customer_id/loyalty", handler.Get)

		req, _ := http.NewRequest(http.MethodGet, "/customers/nope/loyalty", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertExpectations(t)
	})
}

func TestLoyaltyHandler_Redeem(t *testing.T) {
	logger := testHandlerLogger()

	postRedeem := func(handler *LoyaltyHandler, customerID uuid.UUID, body []byte) *httptest.ResponseRecorder {
		router := setupTestRouter()
		router.POST("/customers/:customer_id/loyalty/redeem", handler.Redeem)

		req, _ := http.NewRequest(http.MethodPost, "/customers/"+customerID.String()+"/loyalty/redeem", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		return rr
	}

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockLoyaltyService)
		handler := NewLoyaltyHandler(logger, mockService)
		customerID := uuid.New()
		rw := rewardFixture(200)
		acc := loyaltyFixture(customerID, 300)
		txn := &transaction.Transaction{
			ID:            uuid.New(),
			AccountID:     acc.ID,
			Type:          transaction.TypeRedeem,
			Amount:        200,
			Description:   "Redeemed reward: " + rw.Name,
			CorrelationID: "corr-1",
			CreatedAt:     time.Now(),
		}
		outcome := &service.RedeemOutcome{
			Reward: rw,
			Result: &ledger.Result{Account: acc, Transaction: txn, NewBalance: 300},
			Redemption: &reward.Redemption{
				ID:            uuid.New(),
				RewardID:      rw.ID,
				AccountID:     acc.ID,
				TransactionID: txn.ID,
				RedeemedAt:    time.Now(),
			},
		}

		mockService.On("Redeem", mock.Anything, customerID, rw.ID, mock.AnythingOfType("string")).
			Return(outcome, nil)

		jsonBody, _ := json.Marshal(RedeemRequest{RewardID: rw.ID.String()})
		rr := postRedeem(handler, customerID, jsonBody)

		assert.Equal(t, http.StatusOK, rr.Code)

		var body RedeemResponse
		decodeData(t, rr.Body.Bytes(), &body)
		assert.Equal(t, rw.ID.String(), body.Reward.ID)
		assert.Equal(t, int64(300), body.NewBalance)
		assert.Equal(t, string(transaction.TypeRedeem), body.Transaction.Type)
		mockService.AssertExpectations(t)
	})

	t.Run("RewardNotFound", func(t *testing.T) {
		mockService := new(MockLoyaltyService)
		handler := NewLoyaltyHandler(logger, mockService)
		customerID := uuid.New()
		rewardID := uuid.New()

		mockService.On("Redeem", mock.Anything, customerID, rewardID, mock.AnythingOfType("string")).
			Return(nil, reward.ErrRewardNotFound{RewardID: rewardID})

		jsonBody, _ := json.Marshal(RedeemRequest{RewardID: rewardID.String()})
		rr := postRedeem(handler, customerID, jsonBody)

		assert.Equal(t, http.StatusNotFound, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("RewardInactive", func(t *testing.T) {
		mockService := new(MockLoyaltyService)
		handler := NewLoyaltyHandler(logger, mockService)
		customerID := uuid.New()
		rewardID := uuid.New()

		mockService.On("Redeem", mock.Anything, customerID, rewardID, mock.AnythingOfType("string")).
			Return(nil, reward.ErrInactive)

		jsonBody, _ := json.Marshal(RedeemRequest{RewardID: rewardID.String()})
		rr := postRedeem(handler, customerID, jsonBody)

		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		envelope := decodeData(t, rr.Body.Bytes(), nil)
		require.NotNil(t, envelope.Error)
		assert.Equal(t, "REWARD_INACTIVE", envelope.Error.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("RewardExpired", func(t *testing.T) {
		mockService := new(MockLoyaltyService)
		handler := NewLoyaltyHandler(logger, mockService)
		customerID := uuid.New()
		rewardID := uuid.New()

		mockService.On("Redeem", mock.Anything, customerID, rewardID, mock.AnythingOfType("string")).
			Return(nil, reward.ErrExpired)

		jsonBody, _ := json.Marshal(RedeemRequest{RewardID: rewardID.String()})
		rr := postRedeem(handler, customerID, jsonBody)

		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		envelope := decodeData(t, rr.Body.Bytes(), nil)
		require.NotNil(t, envelope.Error)
		assert.Equal(t, "REWARD_EXPIRED", envelope.Error.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("InsufficientPoints", func(t *testing.T) {
		mockService := new(MockLoyaltyService)
		handler := NewLoyaltyHandler(logger, mockService)
		customerID := uuid.New()
		rewardID := uuid.New()

		mockService.On("Redeem", mock.Anything, customerID, rewardID, mock.AnythingOfType("string")).
			Return(nil, account.ErrInsufficientBalance)

		jsonBody, _ := json.Marshal(RedeemRequest{RewardID: rewardID.String()})
		rr := postRedeem(handler, customerID, jsonBody)

		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		envelope := decodeData(t, rr.Body.Bytes(), nil)
		require.NotNil(t, envelope.Error)
		assert.Equal(t, "INSUFFICIENT_POINTS", envelope.Error.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("MalformedRewardID", func(t *testing.T) {
		mockService := new(MockLoyaltyService)
		handler := NewLoyaltyHandler(logger, mockService)
		customerID := uuid.New()

		rr := postRedeem(handler, customerID, []byte(`{"reward_id":"not-a-uuid"}`))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertExpectations(t)
	})
}
