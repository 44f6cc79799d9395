package domain

import (
	"regexp"
	"strings"

	"paybridge/pkg/apperror"

	"github.com/google/uuid"
)

// referencePrefix brands every internal payment reference.
const referencePrefix = "PB_"

var referencePattern = regexp.MustCompile(`(?i)^PB_[a-f0-9]{32}$`)

// PaymentReference is the internal, provider-facing correlation key for
// a payment: "PB_" followed by 32 lowercase hex characters. Generated
// once per Payment and never reused.
type PaymentReference struct {
	value string
}

// NewPaymentReference generates a fresh reference.
func NewPaymentReference() PaymentReference {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return PaymentReference{value: referencePrefix + hex}
}

// ParsePaymentReference validates an externally-supplied reference.
// Matching is case-insensitive; the canonical form is lowercase hex.
func ParsePaymentReference(raw string) (PaymentReference, error) {
	v := strings.TrimSpace(raw)
	if !referencePattern.MatchString(v) {
		return PaymentReference{}, apperror.ErrInvalidPaymentReference(raw)
	}
	return PaymentReference{value: referencePrefix + strings.ToLower(v[len(referencePrefix):])}, nil
}

func (r PaymentReference) String() string { return r.value }

// IsZero reports whether the reference is the zero value.
func (r PaymentReference) IsZero() bool { return r.value == "" }
