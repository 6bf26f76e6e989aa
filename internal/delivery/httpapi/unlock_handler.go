package httpapi

import (
	"net/http"

	"github.com/crestline-media/fulfillment-service/internal/usecase"
	"github.com/gin-gonic/gin"
)

type UnlockHandler struct {
	Fulfillment usecase.FulfillmentUsecase
}

func NewUnlockHandler(fulfillment usecase.FulfillmentUsecase) *UnlockHandler {
	return &UnlockHandler{Fulfillment: fulfillment}
}

type unlockRequest struct {
	UnlockToken string `json:"unlock_token" binding:"required"`
}

// POST /unlock. The content-delivery surface redeems bearer tokens here.
func (h *UnlockHandler) Redeem(c *gin.Context) {
	var req unlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	productSKU, err := h.Fulfillment.Redeem(c.Request.Context(), req.UnlockToken)
	if err != nil {
		status, msg := statusFor(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	c.JSON(http.StatusOK, gin.H{"product_sku": productSKU})
}
