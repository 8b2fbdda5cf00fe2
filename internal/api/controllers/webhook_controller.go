package controllers

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"mibe/internal/services"
	"mibe/pkg/utils"
)

// maxWebhookBody caps what is read from a gateway callback.
const maxWebhookBody = 1 << 20

type WebhookController struct {
	reconcileService services.ReconcileService
}

func NewWebhookController(reconcileService services.ReconcileService) *WebhookController {
	return &WebhookController{
		reconcileService: reconcileService,
	}
}

// HandleAsaasWebhook godoc
// @Summary Receive Asaas payment events
// @Description Reconciles PAYMENT_RECEIVED, PAYMENT_CONFIRMED and PAYMENT_OVERDUE events against subscriptions. Other events are acknowledged and ignored.
// @Tags Webhooks
// @Accept json
// @Produce json
// @Param asaas-access-token header string false "Webhook access token"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /asaas/webhook [post]
func (w *WebhookController) HandleAsaasWebhook(c *gin.Context) {
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		err = fmt.Errorf("%w: read body: %v", utils.ErrInvalidPayload, err)
		_ = c.Error(err)
		c.JSON(http.StatusBadRequest, utils.WebhookBody(err))
		return
	}

	err = w.reconcileService.HandlePayload(c.Request.Context(), raw)
	if err != nil {
		_ = c.Error(err)
	}
	c.JSON(utils.WebhookStatus(err), utils.WebhookBody(err))
}
