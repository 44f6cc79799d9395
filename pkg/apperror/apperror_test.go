package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name:     "without wrapped error",
			appErr:   New("AMOUNT_NOT_POSITIVE", "Amount must be greater than zero", http.StatusBadRequest),
			expected: "[AMOUNT_NOT_POSITIVE] Amount must be greater than zero",
		},
		{
			name:     "with wrapped error",
			appErr:   Wrap("DATABASE_ERROR", "Internal database error", http.StatusInternalServerError, fmt.Errorf("connection refused")),
			expected: "[DATABASE_ERROR] Internal database error: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.appErr.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	inner := fmt.Errorf("inner error")
	appErr := ErrDatabase(inner)

	assert.True(t, errors.Is(appErr, inner))
}

func TestAppError_NilUnwrap(t *testing.T) {
	appErr := ErrAmountNotPositive()
	assert.Nil(t, appErr.Unwrap())
}

func TestDomainValidationErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		code       string
		httpStatus int
	}{
		{"AmountNotPositive", ErrAmountNotPositive(), "AMOUNT_NOT_POSITIVE", 400},
		{"AmountTooLarge", ErrAmountTooLarge("10000000"), "AMOUNT_TOO_LARGE", 400},
		{"UnsupportedCurrency", ErrUnsupportedCurrency("XXX"), "UNSUPPORTED_CURRENCY", 400},
		{"CurrencyMismatch", ErrCurrencyMismatch(), "CURRENCY_MISMATCH", 400},
		{"InvalidEmail", ErrInvalidEmail(), "INVALID_EMAIL_FORMAT", 400},
		{"InvalidCallbackURL", ErrInvalidCallbackURL("relative URL"), "INVALID_CALLBACK_URL", 400},
		{"InvalidPaymentReference", ErrInvalidPaymentReference("nope"), "INVALID_PAYMENT_REFERENCE", 400},
		{"FieldRequired", ErrFieldRequired("app_name"), "FIELD_REQUIRED", 400},
		{"AlreadyProcessed", ErrAlreadyProcessed("SUCCESS"), "ALREADY_PROCESSED", 409},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.httpStatus, tt.err.HTTPStatus)
		})
	}
}

func TestBrokeringErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		code       string
		httpStatus int
	}{
		{"UnsupportedProvider", ErrUnsupportedProvider("stripe"), "UNSUPPORTED_PROVIDER", 400},
		{"DuplicatePayment", ErrDuplicatePayment(), "DUPLICATE_PAYMENT", 409},
		{"ProviderRejected", ErrProviderRejected("invalid key"), "PROVIDER_REJECTED", 502},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.httpStatus, tt.err.HTTPStatus)
		})
	}
}

func TestInfrastructureErrors(t *testing.T) {
	inner := fmt.Errorf("dial tcp: i/o timeout")

	netErr := ErrNetwork(inner)
	assert.Equal(t, "NETWORK_ERROR", netErr.Code)
	assert.Equal(t, 502, netErr.HTTPStatus)
	assert.True(t, errors.Is(netErr, inner))

	toErr := ErrTimeout(inner)
	assert.Equal(t, "TIMEOUT_ERROR", toErr.Code)
	assert.Equal(t, 504, toErr.HTTPStatus)

	dbErr := ErrDatabase(inner)
	assert.Equal(t, "DATABASE_ERROR", dbErr.Code)
	assert.Equal(t, 500, dbErr.HTTPStatus)

	parseErr := ErrParse(inner)
	assert.Equal(t, "PARSE_ERROR", parseErr.Code)

	sigErr := ErrSignatureVerification(inner)
	assert.Equal(t, "SIGNATURE_ERROR", sigErr.Code)
	assert.Equal(t, 401, sigErr.HTTPStatus)
}

func TestErrMessagesCarryContext(t *testing.T) {
	assert.Contains(t, ErrUnsupportedProvider("flutterwave").Message, "flutterwave")
	assert.Contains(t, ErrInvalidPaymentReference("PB_short").Message, "PB_short")
	assert.Contains(t, ErrAlreadyProcessed("FAILED").Message, "FAILED")
	assert.Contains(t, ErrFieldRequired("external_reference").Message, "external_reference")
}
