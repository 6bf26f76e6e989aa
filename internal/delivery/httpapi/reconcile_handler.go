package httpapi

import (
	"net/http"

	"github.com/crestline-media/fulfillment-service/internal/usecase"
	"github.com/gin-gonic/gin"
)

type ReconcileHandler struct {
	Reconciliation usecase.ReconciliationUsecase
}

func NewReconcileHandler(reconciliation usecase.ReconciliationUsecase) *ReconcileHandler {
	return &ReconcileHandler{Reconciliation: reconciliation}
}

// POST /internal/reconcile runs one sweep on demand, triggered by
// external cron. Overlap with the ticker-driven sweep is safe.
func (h *ReconcileHandler) TriggerSweep(c *gin.Context) {
	report, err := h.Reconciliation.RunSweep(c.Request.Context())
	if err != nil {
		status, msg := statusFor(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}
	c.JSON(http.StatusOK, report)
}
