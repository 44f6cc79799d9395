package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"paybridge/internal/core/domain"

	"github.com/rs/zerolog"
)

// HTTPClient is the outbound transport, narrowed for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// settlementPayload is the JSON body posted to the caller app's
// notification URL once a payment settles.
type settlementPayload struct {
	PaymentReference  string  `json:"paymentReference"`
	AppName           string  `json:"appName"`
	ExternalReference string  `json:"externalReference"`
	Status            string  `json:"status"`
	Amount            float64 `json:"amount"`
	Currency          string  `json:"currency"`
	VerifiedAt        *int64  `json:"verifiedAt,omitempty"`
}

// HTTPSink implements ports.NotificationSink by POSTing the settlement
// to the payment's notification URL. Delivery is single-shot; the
// orchestrator treats failures as best-effort.
type HTTPSink struct {
	client HTTPClient
	log    zerolog.Logger
}

// NewHTTPSink creates a sink with a default client bound to timeout.
func NewHTTPSink(timeout time.Duration, log zerolog.Logger) *HTTPSink {
	return NewHTTPSinkWithClient(&http.Client{Timeout: timeout}, log)
}

// NewHTTPSinkWithClient creates a sink with a custom transport.
func NewHTTPSinkWithClient(client HTTPClient, log zerolog.Logger) *HTTPSink {
	return &HTTPSink{client: client, log: log}
}

// Notify posts the payment's settled state to its notification URL.
func (s *HTTPSink) Notify(ctx context.Context, payment *domain.Payment) error {
	payload := settlementPayload{
		PaymentReference:  payment.Reference().String(),
		AppName:           payment.AppName(),
		ExternalReference: payment.ExternalReference(),
		Status:            string(payment.Status()),
		Amount:            payment.Amount().Amount().InexactFloat64(),
		Currency:          string(payment.Amount().Currency()),
	}
	if at := payment.VerifiedAt(); at != nil {
		unix := at.Unix()
		payload.VerifiedAt = &unix
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal settlement payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, payment.NotificationURL().String(), bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("build settlement request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("deliver settlement notification: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("settlement notification rejected with HTTP %d", resp.StatusCode)
	}

	s.log.Info().
		Str("payment_reference", payment.Reference().String()).
		Str("app_name", payment.AppName()).
		Int("status", resp.StatusCode).
		Msg("settlement notification delivered")

	return nil
}
