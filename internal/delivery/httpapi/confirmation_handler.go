package httpapi

import (
	"net/http"

	"github.com/crestline-media/fulfillment-service/internal/usecase"
	"github.com/gin-gonic/gin"
)

type ConfirmationHandler struct {
	Confirmations usecase.ConfirmationUsecase
}

func NewConfirmationHandler(confirmations usecase.ConfirmationUsecase) *ConfirmationHandler {
	return &ConfirmationHandler{Confirmations: confirmations}
}

// POST /orders/:id/confirmation
func (h *ConfirmationHandler) RequestConfirmation(c *gin.Context) {
	orderID := c.Param("id")
	confirmation, err := h.Confirmations.RequestConfirmation(c.Request.Context(), orderID, false)
	if err != nil {
		status, msg := statusFor(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"order_id":         confirmation.OrderID,
		"confirmation_url": h.Confirmations.ConfirmationURL(confirmation),
		"expires_at":       confirmation.ExpiresAt,
	})
}

// GET|POST /confirm?token=..&order=..
// Consume-and-fulfill: the only non-manual path out of a
// confirmation-held order.
func (h *ConfirmationHandler) Confirm(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		token = c.PostForm("token")
	}
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token is required"})
		return
	}

	result, err := h.Confirmations.Confirm(c.Request.Context(), token)
	if err != nil {
		status, msg := statusFor(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order_id":          result.OrderID,
		"unlock_token":      result.UnlockToken,
		"product_sku":       result.ProductSKU,
		"already_fulfilled": result.AlreadyFulfilled,
	})
}
