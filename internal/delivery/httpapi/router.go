package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterDeps struct {
	Webhooks      *WebhookHandler
	Orders        *OrderHandler
	Confirmations *ConfirmationHandler
	Unlock        *UnlockHandler
	Admin         *AdminHandler
	Reconcile     *ReconcileHandler
	OperatorToken string
	CronSecret    string
}

func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	webhooks := router.Group("/webhooks")
	webhooks.POST("/card", deps.Webhooks.HandleCard)
	webhooks.POST("/wallet", deps.Webhooks.HandleWallet)
	webhooks.POST("/crypto", deps.Webhooks.HandleCrypto)

	router.POST("/orders", deps.Orders.CreateIntent)
	router.POST("/orders/:id/confirmation", deps.Confirmations.RequestConfirmation)
	router.GET("/confirm", deps.Confirmations.Confirm)
	router.POST("/confirm", deps.Confirmations.Confirm)
	router.POST("/unlock", deps.Unlock.Redeem)

	admin := router.Group("/admin", OperatorAuth(deps.OperatorToken))
	admin.GET("/holds", deps.Admin.ListHeldOrders)
	admin.GET("/orders/:id/evidence", deps.Admin.GetEvidencePacket)
	admin.POST("/orders/:id/release", deps.Admin.ReleaseHold)
	admin.POST("/orders/:id/refund", deps.Admin.Refund)
	admin.POST("/orders/:id/resend-confirmation", deps.Admin.ResendConfirmation)

	internal := router.Group("/internal", CronAuth(deps.CronSecret))
	internal.POST("/reconcile", deps.Reconcile.TriggerSweep)

	return router
}
