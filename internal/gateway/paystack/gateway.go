package paystack

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"paybridge/config"
	"paybridge/internal/core/domain"
	"paybridge/internal/core/ports"
	"paybridge/pkg/apperror"

	"github.com/rs/zerolog"
)

const (
	// Paystack signs webhook bodies with HMAC-SHA512 of the raw bytes,
	// hex-encoded in this header.
	signatureHeader = "x-paystack-signature"

	// The only event type reconciliation handles.
	chargeSuccessEvent = "charge.success"

	initializePath = "/transaction/initialize"

	maxResponseBytes = 1 << 20
)

// HTTPClient is the outbound transport, narrowed for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Gateway implements ports.PaymentGateway for Paystack. Stateless aside
// from configuration; safe for concurrent use.
type Gateway struct {
	secretKey string
	baseURL   string
	client    HTTPClient
	log       zerolog.Logger
}

// New creates a Paystack gateway with a default HTTP client honoring
// the configured timeout.
func New(cfg config.PaystackConfig, log zerolog.Logger) *Gateway {
	return NewWithClient(cfg, &http.Client{Timeout: cfg.Timeout}, log)
}

// NewWithClient creates a Paystack gateway with a custom transport.
func NewWithClient(cfg config.PaystackConfig, client HTTPClient, log zerolog.Logger) *Gateway {
	return &Gateway{
		secretKey: cfg.SecretKey,
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		client:    client,
		log:       log,
	}
}

// Provider identifies this gateway for registry dispatch.
func (g *Gateway) Provider() domain.Provider { return domain.ProviderPaystack }

// SignatureHeader names the webhook signature header.
func (g *Gateway) SignatureHeader() string { return signatureHeader }

// --- wire types ---

type initializeRequest struct {
	Email       string             `json:"email"`
	Amount      int64              `json:"amount"` // minor units (kobo/pesewas/cents)
	Currency    string             `json:"currency"`
	Reference   string             `json:"reference"`
	CallbackURL string             `json:"callback_url"`
	Metadata    initializeMetadata `json:"metadata"`
}

// initializeMetadata rides along to Paystack and comes back on the
// webhook, so an event can always be correlated to our record.
type initializeMetadata struct {
	PaymentID         string `json:"payment_id"`
	Reference         string `json:"reference"`
	AppName           string `json:"app_name"`
	ExternalReference string `json:"external_reference"`
	Purpose           string `json:"purpose"`
}

type initializeResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		AuthorizationURL string `json:"authorization_url"`
		AccessCode       string `json:"access_code"`
		Reference        string `json:"reference"`
	} `json:"data"`
}

type webhookEnvelope struct {
	Event string `json:"event"`
	Data  struct {
		Reference string `json:"reference"`
		Amount    int64  `json:"amount"` // minor units
		Currency  string `json:"currency"`
		Status    string `json:"status"`
	} `json:"data"`
}

// Initialize creates a Paystack checkout session for the payment.
func (g *Gateway) Initialize(ctx context.Context, payment *domain.Payment) (*ports.CheckoutSession, error) {
	reqBody := initializeRequest{
		Email:       payment.Payer().String(),
		Amount:      payment.Amount().MinorUnits(),
		Currency:    string(payment.Amount().Currency()),
		Reference:   payment.Reference().String(),
		CallbackURL: payment.RedirectURL().String(),
		Metadata: initializeMetadata{
			PaymentID:         payment.ID().String(),
			Reference:         payment.Reference().String(),
			AppName:           payment.AppName(),
			ExternalReference: payment.ExternalReference(),
			Purpose:           string(payment.Purpose()),
		},
	}

	raw, err := json.Marshal(reqBody)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("marshal initialize request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+initializePath, bytes.NewReader(raw))
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("build initialize request: %w", err))
	}
	req.Header.Set("Authorization", "Bearer "+g.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, apperror.ErrNetwork(fmt.Errorf("read initialize response: %w", err))
	}

	var parsed initializeResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, apperror.ErrMalformedProviderResponse(fmt.Errorf("decode initialize response: %w", err))
	}

	if resp.StatusCode >= http.StatusBadRequest || !parsed.Status {
		reason := parsed.Message
		if reason == "" {
			reason = fmt.Sprintf("HTTP %d", resp.StatusCode)
		}
		g.log.Warn().
			Str("payment_reference", payment.Reference().String()).
			Int("http_status", resp.StatusCode).
			Str("provider_message", parsed.Message).
			Msg("paystack rejected initialization")
		return nil, apperror.ErrProviderRejected(reason)
	}

	if parsed.Data.AuthorizationURL == "" {
		return nil, apperror.ErrMalformedProviderResponse(errors.New("missing authorization_url"))
	}

	g.log.Info().
		Str("payment_reference", payment.Reference().String()).
		Str("access_code", parsed.Data.AccessCode).
		Msg("paystack checkout session created")

	return &ports.CheckoutSession{
		Reference:   payment.Reference(),
		CheckoutURL: parsed.Data.AuthorizationURL,
	}, nil
}

// VerifySignature recomputes HMAC-SHA512 over the exact raw payload
// bytes and compares in constant time. The payload must never be
// re-serialized before this check.
func (g *Gateway) VerifySignature(payload []byte, signature string) (bool, error) {
	if g.secretKey == "" {
		return false, apperror.ErrSignatureVerification(errors.New("paystack secret key not configured"))
	}
	if signature == "" {
		return false, nil
	}

	mac := hmac.New(sha512.New, []byte(g.secretKey))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(strings.ToLower(signature))), nil
}

// ParseWebhook deserializes a Paystack event envelope into a normalized
// charge. Events other than charge.success are rejected with
// UNSUPPORTED_EVENT so the orchestrator can ignore rather than fail.
func (g *Gateway) ParseWebhook(payload []byte) (*ports.WebhookCharge, error) {
	var env webhookEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, apperror.ErrParse(fmt.Errorf("decode webhook envelope: %w", err))
	}

	if env.Event != chargeSuccessEvent {
		return nil, apperror.ErrUnsupportedEvent(env.Event)
	}

	reference, err := domain.ParsePaymentReference(env.Data.Reference)
	if err != nil {
		return nil, apperror.ErrParse(fmt.Errorf("webhook reference: %w", err))
	}

	amount, err := domain.NewMoneyFromMinorUnits(env.Data.Amount, env.Data.Currency)
	if err != nil {
		return nil, apperror.ErrParse(fmt.Errorf("webhook amount: %w", err))
	}

	return &ports.WebhookCharge{Reference: reference, Amount: amount}, nil
}

// classifyTransportError distinguishes timeouts from other network
// failures for the caller-facing error code.
func classifyTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperror.ErrTimeout(err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return apperror.ErrTimeout(err)
	}
	return apperror.ErrNetwork(err)
}
