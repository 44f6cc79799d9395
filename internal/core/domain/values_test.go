package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEmailAddress_Normalizes(t *testing.T) {
	e, err := NewEmailAddress("  Buyer@Example.COM ")
	require.NoError(t, err)
	assert.Equal(t, "buyer@example.com", e.String())
}

func TestNewEmailAddress_Rejects(t *testing.T) {
	cases := []string{
		"",
		"   ",
		"no-at-sign",
		"missing@tld",
		"two@@example.com",
		"spaces in@example.com",
		"a@" + strings.Repeat("b", 250) + ".com", // over 254 chars
	}
	for _, raw := range cases {
		_, err := NewEmailAddress(raw)
		require.Error(t, err, "input %q should be rejected", raw)
		assertAppCode(t, err, "INVALID_EMAIL_FORMAT")
	}
}

func TestNewCallbackURL_Valid(t *testing.T) {
	for _, raw := range []string{
		"https://shop.example.com/checkout/done",
		"http://localhost:3000/callback?order=1",
	} {
		u, err := NewCallbackURL(raw)
		require.NoError(t, err)
		assert.Equal(t, raw, u.String())
	}
}

func TestNewCallbackURL_Rejects(t *testing.T) {
	cases := []string{
		"",
		"/relative/path",
		"ftp://example.com/file",
		"javascript:alert(1)",
		"https://" + strings.Repeat("a", 2050) + ".com",
	}
	for _, raw := range cases {
		_, err := NewCallbackURL(raw)
		require.Error(t, err, "input %q should be rejected", raw)
		assertAppCode(t, err, "INVALID_CALLBACK_URL")
	}
}

func TestNewPaymentReference_Format(t *testing.T) {
	ref := NewPaymentReference()

	assert.Regexp(t, `^PB_[a-f0-9]{32}$`, ref.String())
}

func TestNewPaymentReference_Unique(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		ref := NewPaymentReference()
		_, dup := seen[ref.String()]
		require.False(t, dup, "reference %s generated twice", ref)
		seen[ref.String()] = struct{}{}
	}
}

func TestParsePaymentReference_Valid(t *testing.T) {
	raw := "PB_" + strings.Repeat("ab12", 8)

	ref, err := ParsePaymentReference(raw)
	require.NoError(t, err)
	assert.Equal(t, raw, ref.String())
}

func TestParsePaymentReference_CaseInsensitive(t *testing.T) {
	upper := "pb_" + strings.Repeat("AB12", 8)

	ref, err := ParsePaymentReference(upper)
	require.NoError(t, err)
	assert.Equal(t, "PB_"+strings.Repeat("ab12", 8), ref.String(), "canonical form is lowercase hex")
}

func TestParsePaymentReference_Rejects(t *testing.T) {
	cases := []string{
		"",
		"PB_",
		"PB_short",
		"XX_" + strings.Repeat("ab12", 8),
		"PB_" + strings.Repeat("zz12", 8),            // non-hex
		"PB_" + strings.Repeat("ab12", 8) + "0",      // too long
		" PB" + strings.Repeat("ab12", 8),            // missing underscore
	}
	for _, raw := range cases {
		_, err := ParsePaymentReference(raw)
		require.Error(t, err, "input %q should be rejected", raw)
		assertAppCode(t, err, "INVALID_PAYMENT_REFERENCE")
	}
}

func TestParseProvider(t *testing.T) {
	p, err := ParseProvider("paystack")
	require.NoError(t, err)
	assert.Equal(t, ProviderPaystack, p)

	_, err = ParseProvider("stripe")
	require.Error(t, err)
	assertAppCode(t, err, "UNSUPPORTED_PROVIDER")
}

func TestParsePurpose(t *testing.T) {
	p, err := ParsePurpose("checkout")
	require.NoError(t, err)
	assert.Equal(t, PurposeCheckout, p)

	_, err = ParsePurpose("gambling")
	require.Error(t, err)
	assertAppCode(t, err, "UNSUPPORTED_PURPOSE")
}
