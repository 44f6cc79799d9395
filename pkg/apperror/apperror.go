package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Domain validation (value objects & entity construction) ----

func ErrAmountNotPositive() *AppError {
	return New("AMOUNT_NOT_POSITIVE", "Amount must be greater than zero", http.StatusBadRequest)
}

func ErrAmountTooLarge(max string) *AppError {
	return New("AMOUNT_TOO_LARGE", fmt.Sprintf("Amount exceeds the maximum of %s", max), http.StatusBadRequest)
}

func ErrUnsupportedCurrency(code string) *AppError {
	return New("UNSUPPORTED_CURRENCY", fmt.Sprintf("Currency %q is not supported", code), http.StatusBadRequest)
}

func ErrCurrencyMismatch() *AppError {
	return New("CURRENCY_MISMATCH", "Operands have different currencies", http.StatusBadRequest)
}

func ErrInvalidEmail() *AppError {
	return New("INVALID_EMAIL_FORMAT", "Invalid email address", http.StatusBadRequest)
}

func ErrInvalidCallbackURL(reason string) *AppError {
	return New("INVALID_CALLBACK_URL", reason, http.StatusBadRequest)
}

func ErrInvalidPaymentReference(raw string) *AppError {
	return New("INVALID_PAYMENT_REFERENCE", fmt.Sprintf("%q is not a valid payment reference", raw), http.StatusBadRequest)
}

func ErrUnsupportedPurpose(purpose string) *AppError {
	return New("UNSUPPORTED_PURPOSE", fmt.Sprintf("Purpose %q is not supported", purpose), http.StatusBadRequest)
}

func ErrFieldRequired(field string) *AppError {
	return New("FIELD_REQUIRED", fmt.Sprintf("%s must not be blank", field), http.StatusBadRequest)
}

func ErrAlreadyProcessed(status string) *AppError {
	return New("ALREADY_PROCESSED", fmt.Sprintf("Payment has already been processed (status %s)", status), http.StatusConflict)
}

// ---- Payment brokering (provider & idempotency) ----

func ErrUnsupportedProvider(name string) *AppError {
	return New("UNSUPPORTED_PROVIDER", fmt.Sprintf("No gateway registered for provider %q", name), http.StatusBadRequest)
}

func ErrDuplicatePayment() *AppError {
	return New("DUPLICATE_PAYMENT", "A payment already exists for this app and external reference", http.StatusConflict)
}

func ErrProviderRejected(reason string) *AppError {
	return New("PROVIDER_REJECTED", fmt.Sprintf("Provider rejected the request: %s", reason), http.StatusBadGateway)
}

func ErrMalformedProviderResponse(err error) *AppError {
	return Wrap("MALFORMED_PROVIDER_RESPONSE", "Provider returned an unusable response", http.StatusBadGateway, err)
}

func ErrUnsupportedEvent(event string) *AppError {
	return New("UNSUPPORTED_EVENT", fmt.Sprintf("Webhook event %q is not handled", event), http.StatusOK)
}

// ---- Infrastructure ----

func ErrNetwork(err error) *AppError {
	return Wrap("NETWORK_ERROR", "Could not reach the payment provider", http.StatusBadGateway, err)
}

func ErrTimeout(err error) *AppError {
	return Wrap("TIMEOUT_ERROR", "Payment provider timed out", http.StatusGatewayTimeout, err)
}

func ErrDatabase(err error) *AppError {
	return Wrap("DATABASE_ERROR", "Internal database error", http.StatusInternalServerError, err)
}

func ErrParse(err error) *AppError {
	return Wrap("PARSE_ERROR", "Malformed payload", http.StatusBadRequest, err)
}

func ErrSignatureVerification(err error) *AppError {
	return Wrap("SIGNATURE_ERROR", "Webhook signature could not be verified", http.StatusUnauthorized, err)
}

// InternalError wraps an unexpected internal error.
func InternalError(err error) *AppError {
	return Wrap("INTERNAL_ERROR", "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a generic request-validation error.
func Validation(message string) *AppError {
	return New("VALIDATION_ERROR", message, http.StatusBadRequest)
}
