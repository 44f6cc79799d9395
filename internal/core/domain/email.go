package domain

import (
	"regexp"
	"strings"

	"paybridge/pkg/apperror"
)

const maxEmailLength = 254

// Deliberately loose: local@domain.tld with no whitespace. Anything
// stricter belongs to the mail provider.
var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// EmailAddress is a normalized (trimmed, lower-cased) email address.
type EmailAddress struct {
	value string
}

// NewEmailAddress validates and normalizes a raw email address.
func NewEmailAddress(raw string) (EmailAddress, error) {
	v := strings.ToLower(strings.TrimSpace(raw))
	if v == "" || len(v) > maxEmailLength || !emailPattern.MatchString(v) {
		return EmailAddress{}, apperror.ErrInvalidEmail()
	}
	return EmailAddress{value: v}, nil
}

func (e EmailAddress) String() string { return e.value }

// IsZero reports whether the address is the zero value.
func (e EmailAddress) IsZero() bool { return e.value == "" }
