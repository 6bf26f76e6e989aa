package httpapi_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/crestline-media/fulfillment-service/internal/delivery/httpapi"
	"github.com/crestline-media/fulfillment-service/internal/domain"
	"github.com/crestline-media/fulfillment-service/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type stubFulfillment struct {
	sku string
	err error
}

func (s *stubFulfillment) FulfillOnce(context.Context, string) (*usecase.FulfillmentResult, error) {
	return nil, nil
}

func (s *stubFulfillment) Redeem(context.Context, string) (string, error) {
	return s.sku, s.err
}

func (s *stubFulfillment) Revoke(context.Context, string, string) error { return nil }

func unlockRouter(stub *stubFulfillment) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/unlock", httpapi.NewUnlockHandler(stub).Redeem)
	return router
}

func postUnlock(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/unlock", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestUnlockRedeem(t *testing.T) {
	rec := postUnlock(unlockRouter(&stubFulfillment{sku: "sku-pro"}), `{"unlock_token":"tok_1"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "sku-pro")
}

func TestUnlockRevokedStaysGeneric(t *testing.T) {
	rec := postUnlock(unlockRouter(&stubFulfillment{err: domain.ErrUnlockTokenRevoked}), `{"unlock_token":"tok_1"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	// The bearer must not learn that a refund or dispute happened.
	assert.NotContains(t, rec.Body.String(), "refund")
	assert.NotContains(t, rec.Body.String(), "dispute")
	assert.Contains(t, rec.Body.String(), "access no longer valid")
}

func TestUnlockUnknownToken(t *testing.T) {
	rec := postUnlock(unlockRouter(&stubFulfillment{err: domain.ErrUnlockTokenUnknown}), `{"unlock_token":"tok_x"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUnlockMissingToken(t *testing.T) {
	rec := postUnlock(unlockRouter(&stubFulfillment{sku: "sku-pro"}), `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
