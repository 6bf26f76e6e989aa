package httpapi

import (
	"net/http"

	"github.com/crestline-media/fulfillment-service/internal/usecase"
	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	Orders usecase.OrderUsecase
	Ingest usecase.IngestUsecase
}

func NewAdminHandler(orders usecase.OrderUsecase, ingest usecase.IngestUsecase) *AdminHandler {
	return &AdminHandler{Orders: orders, Ingest: ingest}
}

func operatorID(c *gin.Context) string {
	// The operator token is shared; the optional name header attributes
	// actions in the audit trail.
	if name := c.GetHeader("X-Operator-Name"); name != "" {
		return name
	}
	return "operator"
}

// GET /admin/holds
func (h *AdminHandler) ListHeldOrders(c *gin.Context) {
	orders, err := h.Orders.ListHeldOrders(c.Request.Context())
	if err != nil {
		status, msg := statusFor(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// GET /admin/orders/:id/evidence
func (h *AdminHandler) GetEvidencePacket(c *gin.Context) {
	packet, err := h.Orders.GetEvidencePacket(c.Request.Context(), c.Param("id"))
	if err != nil {
		status, msg := statusFor(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}
	c.JSON(http.StatusOK, packet)
}

// POST /admin/orders/:id/release
func (h *AdminHandler) ReleaseHold(c *gin.Context) {
	result, err := h.Orders.ReleaseHoldManually(c.Request.Context(), c.Param("id"), operatorID(c))
	if err != nil {
		status, msg := statusFor(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}
	c.JSON(http.StatusOK, result)
}

// POST /admin/orders/:id/refund
func (h *AdminHandler) Refund(c *gin.Context) {
	if err := h.Orders.RefundManually(c.Request.Context(), c.Param("id"), operatorID(c)); err != nil {
		status, msg := statusFor(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "refunded"})
}

// POST /admin/orders/:id/resend-confirmation
func (h *AdminHandler) ResendConfirmation(c *gin.Context) {
	if err := h.Ingest.ResendConfirmation(c.Request.Context(), c.Param("id")); err != nil {
		status, msg := statusFor(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "sent"})
}
