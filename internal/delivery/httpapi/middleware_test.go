package httpapi_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/crestline-media/fulfillment-service/internal/delivery/httpapi"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func authProbe(middleware gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/probe", middleware, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return router
}

func TestOperatorAuth(t *testing.T) {
	router := authProbe(httpapi.OperatorAuth("op-secret"))

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set(httpapi.OperatorTokenHeader, "op-secret")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set(httpapi.OperatorTokenHeader, "guess")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/probe", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthWithNoConfiguredSecret(t *testing.T) {
	// An unset secret must fail closed, not open.
	router := authProbe(httpapi.CronAuth(""))

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set(httpapi.CronSecretHeader, "")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCronAuth(t *testing.T) {
	router := authProbe(httpapi.CronAuth("cron-secret"))

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set(httpapi.CronSecretHeader, "cron-secret")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
