package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/flash-sale-tickets/internal/model"
	"github.com/iliyamo/flash-sale-tickets/internal/service"
)

// stubPurchases lets each test script the service responses.
type stubPurchases struct {
	purchase func(ctx context.Context, userID string, quantity int) (int64, error)
	history  func(ctx context.Context, userID string) ([]model.Purchase, error)
	count    func(ctx context.Context, userID string) (int64, error)
}

func (s stubPurchases) Purchase(ctx context.Context, userID string, quantity int) (int64, error) {
	return s.purchase(ctx, userID, quantity)
}

func (s stubPurchases) History(ctx context.Context, userID string) ([]model.Purchase, error) {
	return s.history(ctx, userID)
}

func (s stubPurchases) CountByUser(ctx context.Context, userID string) (int64, error) {
	return s.count(ctx, userID)
}

func postPurchase(t *testing.T, h *PurchaseHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/purchases", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	require.NoError(t, h.Purchase(e.NewContext(req, rec)))
	return rec
}

func TestPurchaseHandlerSuccess(t *testing.T) {
	h := NewPurchaseHandler(stubPurchases{
		purchase: func(_ context.Context, userID string, quantity int) (int64, error) {
			assert.Equal(t, "alice", userID)
			assert.Equal(t, 2, quantity)
			return 8, nil
		},
	})

	rec := postPurchase(t, h, `{"user_id":"alice","quantity":2}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "alice", body["user_id"])
	assert.EqualValues(t, 2, body["quantity_purchased"])
	assert.EqualValues(t, 8, body["remaining_stock"])
}

func TestPurchaseHandlerValidation(t *testing.T) {
	called := 0
	h := NewPurchaseHandler(stubPurchases{
		purchase: func(context.Context, string, int) (int64, error) {
			called++
			return 0, nil
		},
	})

	cases := []struct {
		name string
		body string
	}{
		{"missing user", `{"quantity":1}`},
		{"zero quantity", `{"user_id":"alice","quantity":0}`},
		{"negative quantity", `{"user_id":"alice","quantity":-5}`},
		{"malformed json", `{"user_id":`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := postPurchase(t, h, tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
	assert.Zero(t, called, "service must not be called on invalid input")
}

func TestPurchaseHandlerFailureMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantReason string
	}{
		{"buyer not found", service.ErrBuyerNotFound, http.StatusNotFound, "buyer not found"},
		{"lock contention", service.ErrLockContention, http.StatusConflict, "another purchase is in progress for this buyer"},
		{"sold out", service.ErrInsufficientStock, http.StatusConflict, "not enough tickets available"},
		{"inconsistency", service.ErrDataInconsistency, http.StatusInternalServerError, "inventory inconsistency detected"},
		{"transient", assert.AnError, http.StatusInternalServerError, "purchase failed, please try again later"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewPurchaseHandler(stubPurchases{
				purchase: func(context.Context, string, int) (int64, error) {
					return 3, tc.err
				},
			})

			rec := postPurchase(t, h, `{"user_id":"alice","quantity":1}`)
			assert.Equal(t, tc.wantStatus, rec.Code)

			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tc.wantReason, body["reason"])
			assert.EqualValues(t, 3, body["remaining_stock"])
		})
	}
}

func TestHistoryHandler(t *testing.T) {
	h := NewPurchaseHandler(stubPurchases{
		history: func(_ context.Context, userID string) ([]model.Purchase, error) {
			if userID != "alice" {
				return nil, service.ErrBuyerNotFound
			}
			return []model.Purchase{{ID: 1, TransactionID: "txn-1"}}, nil
		},
	})
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/purchases/user/:id")
	c.SetParamNames("id")
	c.SetParamValues("alice")
	require.NoError(t, h.History(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "txn-1")

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	c.SetPath("/v1/purchases/user/:id")
	c.SetParamNames("id")
	c.SetParamValues("nobody")
	require.NoError(t, h.History(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCountHandler(t *testing.T) {
	h := NewPurchaseHandler(stubPurchases{
		count: func(_ context.Context, userID string) (int64, error) {
			return 4, nil
		},
	})
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/purchases/user/:id/count")
	c.SetParamNames("id")
	c.SetParamValues("alice")
	require.NoError(t, h.Count(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.EqualValues(t, 4, body["purchase_count"])
	assert.Equal(t, "alice", body["user_id"])
}
