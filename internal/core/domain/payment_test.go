package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPayment(t *testing.T) *Payment {
	t.Helper()

	amount, err := NewMoney(5000, "NGN")
	require.NoError(t, err)
	payer, err := NewEmailAddress("buyer@example.com")
	require.NoError(t, err)
	redirect, err := NewCallbackURL("https://shop.example.com/done")
	require.NoError(t, err)
	notify, err := NewCallbackURL("https://shop.example.com/hooks/payments")
	require.NoError(t, err)

	p, err := NewPayment(ProviderPaystack, PurposeCheckout, amount, payer, "Shop", "ORDER-1", redirect, notify)
	require.NoError(t, err)
	return p
}

func TestNewPayment_StartsPending(t *testing.T) {
	p := newTestPayment(t)

	assert.Equal(t, PaymentStatusPending, p.Status())
	assert.Nil(t, p.VerifiedAt())
	assert.False(t, p.IsTerminal())
	assert.NotEqual(t, uuid.Nil, p.ID())
	assert.Regexp(t, `^PB_[a-f0-9]{32}$`, p.Reference().String())
	assert.Equal(t, "Shop", p.AppName())
	assert.Equal(t, "ORDER-1", p.ExternalReference())
	assert.WithinDuration(t, time.Now().UTC(), p.CreatedAt(), time.Second)
}

func TestNewPayment_RequiresAppNameAndExternalReference(t *testing.T) {
	amount, _ := NewMoney(5000, "NGN")
	payer, _ := NewEmailAddress("buyer@example.com")
	redirect, _ := NewCallbackURL("https://shop.example.com/done")
	notify, _ := NewCallbackURL("https://shop.example.com/hooks")

	_, err := NewPayment(ProviderPaystack, PurposeCheckout, amount, payer, "   ", "ORDER-1", redirect, notify)
	require.Error(t, err)
	assertAppCode(t, err, "FIELD_REQUIRED")

	_, err = NewPayment(ProviderPaystack, PurposeCheckout, amount, payer, "Shop", "", redirect, notify)
	require.Error(t, err)
	assertAppCode(t, err, "FIELD_REQUIRED")
}

func TestProcessSuccessfulPayment_MatchingAmount(t *testing.T) {
	p := newTestPayment(t)
	received, _ := NewMoney(5000, "NGN")

	result, err := p.ProcessSuccessfulPayment(received)
	require.NoError(t, err)

	assert.Equal(t, VerificationSuccess, result)
	assert.Equal(t, PaymentStatusSuccess, p.Status())
	require.NotNil(t, p.VerifiedAt())
	assert.True(t, p.IsTerminal())
}

func TestProcessSuccessfulPayment_AmountMismatch(t *testing.T) {
	p := newTestPayment(t)
	received, _ := NewMoney(4999.99, "NGN")

	result, err := p.ProcessSuccessfulPayment(received)
	require.NoError(t, err)

	assert.Equal(t, VerificationAmountMismatch, result)
	assert.Equal(t, PaymentStatusFailed, p.Status())
	assert.NotNil(t, p.VerifiedAt())
}

func TestProcessSuccessfulPayment_CurrencyMismatchIsAmountMismatch(t *testing.T) {
	p := newTestPayment(t)
	received, _ := NewMoney(5000, "USD")

	result, err := p.ProcessSuccessfulPayment(received)
	require.NoError(t, err)

	assert.Equal(t, VerificationAmountMismatch, result)
	assert.Equal(t, PaymentStatusFailed, p.Status())
}

func TestProcessSuccessfulPayment_OnlyOnce(t *testing.T) {
	p := newTestPayment(t)
	received, _ := NewMoney(5000, "NGN")

	_, err := p.ProcessSuccessfulPayment(received)
	require.NoError(t, err)

	// Second delivery, any amount: rejected, state unchanged.
	_, err = p.ProcessSuccessfulPayment(received)
	require.Error(t, err)
	assertAppCode(t, err, "ALREADY_PROCESSED")
	assert.Equal(t, PaymentStatusSuccess, p.Status())
}

func TestProcessSuccessfulPayment_RejectedAfterFailure(t *testing.T) {
	p := newTestPayment(t)
	wrong, _ := NewMoney(1, "NGN")
	right, _ := NewMoney(5000, "NGN")

	_, err := p.ProcessSuccessfulPayment(wrong)
	require.NoError(t, err)
	assert.Equal(t, PaymentStatusFailed, p.Status())

	// Terminal states are sticky: a correct redelivery cannot resurrect.
	_, err = p.ProcessSuccessfulPayment(right)
	require.Error(t, err)
	assertAppCode(t, err, "ALREADY_PROCESSED")
	assert.Equal(t, PaymentStatusFailed, p.Status())
}

func TestMarkInitializationFailed(t *testing.T) {
	p := newTestPayment(t)

	p.MarkInitializationFailed()

	assert.Equal(t, PaymentStatusFailed, p.Status())
	assert.NotNil(t, p.VerifiedAt())
}

func TestMarkInitializationFailed_NoOpWhenTerminal(t *testing.T) {
	p := newTestPayment(t)
	received, _ := NewMoney(5000, "NGN")
	_, err := p.ProcessSuccessfulPayment(received)
	require.NoError(t, err)
	settledAt := p.VerifiedAt()

	p.MarkInitializationFailed()

	assert.Equal(t, PaymentStatusSuccess, p.Status())
	assert.Equal(t, settledAt, p.VerifiedAt())
}

func TestRehydratePayment_RoundTrip(t *testing.T) {
	p := newTestPayment(t)
	now := time.Now().UTC()

	r := RehydratePayment(
		p.ID(), p.Reference(), p.Provider(), p.Purpose(), p.Amount(), p.Payer(),
		p.AppName(), p.ExternalReference(), p.RedirectURL(), p.NotificationURL(),
		PaymentStatusSuccess, p.CreatedAt(), &now,
	)

	assert.Equal(t, p.ID(), r.ID())
	assert.Equal(t, p.Reference(), r.Reference())
	assert.Equal(t, PaymentStatusSuccess, r.Status())
	require.NotNil(t, r.VerifiedAt())
	assert.True(t, r.VerifiedAt().Equal(now))
	assert.True(t, r.IsTerminal())
}
