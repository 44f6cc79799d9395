package handler

import (
	"io"
	"net/http"

	"paybridge/internal/adapter/http/dto"
	"paybridge/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// WebhookHandler handles inbound provider webhooks.
type WebhookHandler struct {
	orchestrator ports.PaymentOrchestrator
	registry     ports.GatewayRegistry
	log          zerolog.Logger
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(orchestrator ports.PaymentOrchestrator, registry ports.GatewayRegistry, log zerolog.Logger) *WebhookHandler {
	return &WebhookHandler{orchestrator: orchestrator, registry: registry, log: log}
}

// HandleWebhook handles POST /api/v1/webhooks/:provider.
//
// The provider is always acknowledged with 200 so it stops redelivering:
// a non-2xx response here only causes retry storms for events we have
// already classified. The internal outcome drives logging only. The raw
// body bytes are passed through untouched because the signature is
// computed over them exactly as received.
func (h *WebhookHandler) HandleWebhook(c *gin.Context) {
	provider := c.Param("provider")

	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.log.Warn().Err(err).Str("provider", provider).Msg("failed to read webhook body")
		c.JSON(http.StatusOK, dto.WebhookAck{Status: "received"})
		return
	}

	var signature string
	if gateway, ok := h.registry.Resolve(provider); ok {
		signature = c.GetHeader(gateway.SignatureHeader())
	}

	outcome := h.orchestrator.HandleWebhook(c.Request.Context(), provider, payload, signature)

	h.log.Info().
		Str("provider", provider).
		Str("outcome", string(outcome.Status)).
		Str("reason", outcome.Reason).
		Msg("webhook handled")

	c.JSON(http.StatusOK, dto.WebhookAck{Status: "received"})
}
