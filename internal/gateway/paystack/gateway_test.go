package paystack

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"paybridge/config"
	"paybridge/internal/core/domain"
	"paybridge/pkg/apperror"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "sk_test_0123456789abcdef"

func testConfig(baseURL string) config.PaystackConfig {
	return config.PaystackConfig{
		SecretKey: testSecret,
		BaseURL:   baseURL,
		Timeout:   2 * time.Second,
	}
}

func newTestPayment(t *testing.T) *domain.Payment {
	t.Helper()

	amount, err := domain.NewMoney(5000, "NGN")
	require.NoError(t, err)
	payer, err := domain.NewEmailAddress("buyer@example.com")
	require.NoError(t, err)
	redirect, err := domain.NewCallbackURL("https://shop.example.com/done")
	require.NoError(t, err)
	notify, err := domain.NewCallbackURL("https://shop.example.com/hooks")
	require.NoError(t, err)

	p, err := domain.NewPayment(domain.ProviderPaystack, domain.PurposeCheckout, amount, payer, "Shop", "ORDER-1", redirect, notify)
	require.NoError(t, err)
	return p
}

func assertAppCode(t *testing.T, err error, code string) {
	t.Helper()
	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr), "expected *apperror.AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}

func sign(payload []byte) string {
	mac := hmac.New(sha512.New, []byte(testSecret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// mockHTTPClient implements HTTPClient for transport-failure cases.
type mockHTTPClient struct {
	doFunc func(req *http.Request) (*http.Response, error)
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	return m.doFunc(req)
}

// ==================== Initialize ====================

func TestInitialize_Success(t *testing.T) {
	payment := newTestPayment(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/transaction/initialize", r.URL.Path)
		assert.Equal(t, "Bearer "+testSecret, r.Header.Get("Authorization"))

		var req initializeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "buyer@example.com", req.Email)
		assert.Equal(t, int64(500000), req.Amount, "amount must be sent in kobo")
		assert.Equal(t, "NGN", req.Currency)
		assert.Equal(t, payment.Reference().String(), req.Reference)
		assert.Equal(t, payment.ID().String(), req.Metadata.PaymentID)
		assert.Equal(t, payment.Reference().String(), req.Metadata.Reference)

		fmt.Fprintf(w, `{"status":true,"message":"Authorization URL created","data":{
			"authorization_url":"https://checkout.paystack.com/abc123",
			"access_code":"abc123",
			"reference":%q}}`, req.Reference)
	}))
	defer srv.Close()

	g := New(testConfig(srv.URL), zerolog.Nop())

	session, err := g.Initialize(context.Background(), payment)
	require.NoError(t, err)

	assert.Equal(t, payment.Reference(), session.Reference)
	assert.Equal(t, "https://checkout.paystack.com/abc123", session.CheckoutURL)
}

func TestInitialize_ProviderRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"status":false,"message":"Invalid key"}`)
	}))
	defer srv.Close()

	g := New(testConfig(srv.URL), zerolog.Nop())

	_, err := g.Initialize(context.Background(), newTestPayment(t))
	require.Error(t, err)
	assertAppCode(t, err, "PROVIDER_REJECTED")
	assert.Contains(t, err.Error(), "Invalid key")
}

func TestInitialize_MissingCheckoutURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":true,"message":"ok","data":{"access_code":"abc"}}`)
	}))
	defer srv.Close()

	g := New(testConfig(srv.URL), zerolog.Nop())

	_, err := g.Initialize(context.Background(), newTestPayment(t))
	require.Error(t, err)
	assertAppCode(t, err, "MALFORMED_PROVIDER_RESPONSE")
}

func TestInitialize_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `not json at all`)
	}))
	defer srv.Close()

	g := New(testConfig(srv.URL), zerolog.Nop())

	_, err := g.Initialize(context.Background(), newTestPayment(t))
	require.Error(t, err)
	assertAppCode(t, err, "MALFORMED_PROVIDER_RESPONSE")
}

func TestInitialize_NetworkError(t *testing.T) {
	client := &mockHTTPClient{doFunc: func(req *http.Request) (*http.Response, error) {
		return nil, &url.Error{Op: "Post", URL: req.URL.String(), Err: errors.New("connection refused")}
	}}
	g := NewWithClient(testConfig("https://api.paystack.co"), client, zerolog.Nop())

	_, err := g.Initialize(context.Background(), newTestPayment(t))
	require.Error(t, err)
	assertAppCode(t, err, "NETWORK_ERROR")
}

func TestInitialize_Timeout(t *testing.T) {
	client := &mockHTTPClient{doFunc: func(req *http.Request) (*http.Response, error) {
		return nil, &url.Error{Op: "Post", URL: req.URL.String(), Err: context.DeadlineExceeded}
	}}
	g := NewWithClient(testConfig("https://api.paystack.co"), client, zerolog.Nop())

	_, err := g.Initialize(context.Background(), newTestPayment(t))
	require.Error(t, err)
	assertAppCode(t, err, "TIMEOUT_ERROR")
}

// ==================== VerifySignature ====================

func TestVerifySignature_Valid(t *testing.T) {
	g := New(testConfig("https://api.paystack.co"), zerolog.Nop())
	payload := []byte(`{"event":"charge.success","data":{"reference":"PB_x"}}`)

	ok, err := g.VerifySignature(payload, sign(payload))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerifySignature_UppercaseHexAccepted(t *testing.T) {
	g := New(testConfig("https://api.paystack.co"), zerolog.Nop())
	payload := []byte(`{"event":"charge.success"}`)

	upper := make([]byte, 0, 128)
	for _, c := range []byte(sign(payload)) {
		if c >= 'a' && c <= 'f' {
			c -= 32
		}
		upper = append(upper, c)
	}

	ok, err := g.VerifySignature(payload, string(upper))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerifySignature_TamperedPayload(t *testing.T) {
	g := New(testConfig("https://api.paystack.co"), zerolog.Nop())
	payload := []byte(`{"event":"charge.success","data":{"amount":500000}}`)
	sig := sign(payload)

	tampered := []byte(`{"event":"charge.success","data":{"amount":1}}`)

	ok, err := g.VerifySignature(tampered, sig)
	require.NoError(t, err, "mismatch is a result, not an error")
	assert.False(t, ok)
}

func TestVerifySignature_MissingSignature(t *testing.T) {
	g := New(testConfig("https://api.paystack.co"), zerolog.Nop())

	ok, err := g.VerifySignature([]byte(`{}`), "")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifySignature_MissingKeyIsError(t *testing.T) {
	cfg := testConfig("https://api.paystack.co")
	cfg.SecretKey = ""
	g := New(cfg, zerolog.Nop())

	_, err := g.VerifySignature([]byte(`{}`), "deadbeef")
	require.Error(t, err)
	assertAppCode(t, err, "SIGNATURE_ERROR")
}

// ==================== ParseWebhook ====================

func TestParseWebhook_ChargeSuccess(t *testing.T) {
	g := New(testConfig("https://api.paystack.co"), zerolog.Nop())
	ref := domain.NewPaymentReference()

	payload := fmt.Sprintf(`{"event":"charge.success","data":{
		"reference":%q,"amount":500000,"currency":"NGN","status":"success"}}`, ref)

	charge, err := g.ParseWebhook([]byte(payload))
	require.NoError(t, err)

	assert.Equal(t, ref, charge.Reference)
	assert.Equal(t, "5000.00 NGN", charge.Amount.String(), "kobo must convert back to major units")
}

func TestParseWebhook_UnsupportedEvent(t *testing.T) {
	g := New(testConfig("https://api.paystack.co"), zerolog.Nop())

	_, err := g.ParseWebhook([]byte(`{"event":"transfer.success","data":{}}`))
	require.Error(t, err)
	assertAppCode(t, err, "UNSUPPORTED_EVENT")
}

func TestParseWebhook_MalformedJSON(t *testing.T) {
	g := New(testConfig("https://api.paystack.co"), zerolog.Nop())

	_, err := g.ParseWebhook([]byte(`{"event":`))
	require.Error(t, err)
	assertAppCode(t, err, "PARSE_ERROR")
}

func TestParseWebhook_BadReference(t *testing.T) {
	g := New(testConfig("https://api.paystack.co"), zerolog.Nop())

	_, err := g.ParseWebhook([]byte(`{"event":"charge.success","data":{
		"reference":"not-ours","amount":500000,"currency":"NGN"}}`))
	require.Error(t, err)
	assertAppCode(t, err, "PARSE_ERROR")
}

func TestParseWebhook_BadAmount(t *testing.T) {
	g := New(testConfig("https://api.paystack.co"), zerolog.Nop())
	ref := domain.NewPaymentReference()

	_, err := g.ParseWebhook([]byte(fmt.Sprintf(`{"event":"charge.success","data":{
		"reference":%q,"amount":0,"currency":"NGN"}}`, ref)))
	require.Error(t, err)
	assertAppCode(t, err, "PARSE_ERROR")
}

func TestGatewayMetadata(t *testing.T) {
	g := New(testConfig("https://api.paystack.co"), zerolog.Nop())

	assert.Equal(t, domain.ProviderPaystack, g.Provider())
	assert.Equal(t, "x-paystack-signature", g.SignatureHeader())
}

// Guard against accidentally buffering the body through a reader that
// re-serializes: the signature must be computed over exact bytes.
func TestVerifySignature_ExactBytes(t *testing.T) {
	g := New(testConfig("https://api.paystack.co"), zerolog.Nop())

	// Semantically identical JSON, different bytes.
	a := []byte(`{"event":"charge.success","data":{"amount":500000}}`)
	b := []byte(`{"event": "charge.success", "data": {"amount": 500000}}`)

	ok, err := g.VerifySignature(b, sign(a))
	require.NoError(t, err)
	assert.False(t, ok)
}
