package httpapi

import (
	"net/http"

	"github.com/crestline-media/fulfillment-service/internal/domain"
	"github.com/crestline-media/fulfillment-service/internal/usecase"
	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	Orders usecase.OrderUsecase
}

func NewOrderHandler(orders usecase.OrderUsecase) *OrderHandler {
	return &OrderHandler{Orders: orders}
}

type createIntentRequest struct {
	Provider      string `json:"provider" binding:"required"`
	AmountMinor   int64  `json:"amount_minor" binding:"required"`
	Currency      string `json:"currency" binding:"required"`
	ProductSKU    string `json:"product_sku" binding:"required"`
	CustomerEmail string `json:"customer_email"`
	Attribution   string `json:"attribution"`
}

// POST /orders
func (h *OrderHandler) CreateIntent(c *gin.Context) {
	var req createIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	output, err := h.Orders.CreateIntent(c.Request.Context(), &usecase.CreateIntentInput{
		Provider:      domain.Provider(req.Provider),
		AmountMinor:   req.AmountMinor,
		Currency:      req.Currency,
		ProductSKU:    req.ProductSKU,
		CustomerEmail: req.CustomerEmail,
		Attribution:   req.Attribution,
	})
	if err != nil {
		status, msg := statusFor(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	c.JSON(http.StatusCreated, output)
}
