package ports

import (
	"context"

	"paybridge/internal/core/domain"
)

// CheckoutSession is the result of initializing a payment with a
// provider: where to send the payer, correlated by our reference.
type CheckoutSession struct {
	Reference   domain.PaymentReference
	CheckoutURL string
}

// WebhookCharge is a provider webhook normalized to what reconciliation
// needs: which payment, and how much the provider says was paid.
type WebhookCharge struct {
	Reference domain.PaymentReference
	Amount    domain.Money
}

// PaymentGateway abstracts one payment provider's API and webhook
// contract. Implementations are stateless aside from configuration
// bound at construction and are safe for concurrent use.
type PaymentGateway interface {
	// Provider identifies which provider this gateway serves.
	Provider() domain.Provider

	// SignatureHeader names the HTTP header carrying the provider's
	// webhook signature.
	SignatureHeader() string

	// Initialize creates a provider checkout session for the payment.
	// The provider receives the amount in its minor unit and our
	// reference and payment id as metadata for webhook correlation.
	Initialize(ctx context.Context, payment *domain.Payment) (*CheckoutSession, error)

	// VerifySignature recomputes the provider's keyed hash over the
	// exact raw payload bytes and compares in constant time. A mismatch
	// is (false, nil); an error means verification itself failed (e.g.
	// missing key), never a mismatch.
	VerifySignature(payload []byte, signature string) (bool, error)

	// ParseWebhook deserializes the provider's event envelope. Event
	// types other than the provider's successful-charge event fail with
	// apperror UNSUPPORTED_EVENT; structural errors fail with
	// PARSE_ERROR.
	ParseWebhook(payload []byte) (*WebhookCharge, error)
}

// GatewayRegistry resolves a gateway by provider name,
// case-insensitively.
type GatewayRegistry interface {
	Resolve(provider string) (PaymentGateway, bool)
}

// NotificationSink posts a settlement notification to the originating
// app's notification URL. Best-effort from the orchestrator's
// perspective: errors are logged by the caller, never escalated.
type NotificationSink interface {
	Notify(ctx context.Context, payment *domain.Payment) error
}

// --- Orchestrator (use-case layer) ---

// InitializePaymentRequest holds raw, untrusted input for payment
// initialization. Value-object validation happens inside the
// orchestrator.
type InitializePaymentRequest struct {
	ExternalUserID    string
	Amount            float64
	Currency          string
	Purpose           string
	Provider          string
	AppName           string
	ExternalReference string
	RedirectURL       string
	NotificationURL   string
}

// WebhookStatus classifies the outcome of handling a provider webhook.
type WebhookStatus string

const (
	WebhookProcessed WebhookStatus = "PROCESSED"
	WebhookIgnored   WebhookStatus = "IGNORED"
	WebhookFailed    WebhookStatus = "FAILED"
)

// WebhookOutcome is the internal result of webhook handling. The
// HTTP layer acknowledges the provider regardless; this drives logging
// and metrics only.
type WebhookOutcome struct {
	Status WebhookStatus
	Reason string
}

// PaymentOrchestrator is the use-case layer brokering between caller
// apps and payment providers.
type PaymentOrchestrator interface {
	InitializePayment(ctx context.Context, req InitializePaymentRequest) (*CheckoutSession, error)
	HandleWebhook(ctx context.Context, provider string, payload []byte, signature string) WebhookOutcome
}
