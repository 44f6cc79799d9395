package domain

import (
	"net/url"
	"strings"

	"paybridge/pkg/apperror"
)

const maxCallbackURLLength = 2048

// CallbackURL is an absolute http(s) URL a caller app can be redirected
// or notified at.
type CallbackURL struct {
	value string
}

// NewCallbackURL validates a raw URL.
func NewCallbackURL(raw string) (CallbackURL, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return CallbackURL{}, apperror.ErrInvalidCallbackURL("URL must not be blank")
	}
	if len(v) > maxCallbackURLLength {
		return CallbackURL{}, apperror.ErrInvalidCallbackURL("URL is too long")
	}

	u, err := url.Parse(v)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return CallbackURL{}, apperror.ErrInvalidCallbackURL("URL must be absolute")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return CallbackURL{}, apperror.ErrInvalidCallbackURL("URL scheme must be http or https")
	}

	return CallbackURL{value: v}, nil
}

func (u CallbackURL) String() string { return u.value }

// IsZero reports whether the URL is the zero value.
func (u CallbackURL) IsZero() bool { return u.value == "" }
