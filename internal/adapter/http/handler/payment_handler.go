package handler

import (
	"paybridge/internal/adapter/http/dto"
	"paybridge/internal/core/ports"
	"paybridge/pkg/apperror"
	"paybridge/pkg/response"

	"github.com/gin-gonic/gin"
)

// PaymentHandler handles payment initialization endpoints.
type PaymentHandler struct {
	orchestrator ports.PaymentOrchestrator
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(orchestrator ports.PaymentOrchestrator) *PaymentHandler {
	return &PaymentHandler{orchestrator: orchestrator}
}

// InitializePayment handles POST /api/v1/payments/initialize.
func (h *PaymentHandler) InitializePayment(c *gin.Context) {
	var req dto.InitializePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	session, err := h.orchestrator.InitializePayment(c.Request.Context(), ports.InitializePaymentRequest{
		ExternalUserID:    req.ExternalUserID,
		Amount:            req.Amount,
		Currency:          req.Currency,
		Purpose:           req.Purpose,
		Provider:          req.Provider,
		AppName:           req.AppName,
		ExternalReference: req.ExternalReference,
		RedirectURL:       req.RedirectURL,
		NotificationURL:   req.NotificationURL,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.InitializePaymentResponse{
		Reference:   session.Reference.String(),
		CheckoutURL: session.CheckoutURL,
	})
}
