package domain

import (
	"strings"
	"time"

	"paybridge/pkg/apperror"

	"github.com/google/uuid"
)

// Provider identifies an external payment provider.
type Provider string

const (
	ProviderPaystack Provider = "PAYSTACK"
)

var supportedProviders = map[Provider]struct{}{
	ProviderPaystack: {},
}

// ParseProvider validates a provider name (case-insensitive).
func ParseProvider(name string) (Provider, error) {
	p := Provider(strings.ToUpper(strings.TrimSpace(name)))
	if _, ok := supportedProviders[p]; !ok {
		return "", apperror.ErrUnsupportedProvider(name)
	}
	return p, nil
}

// Purpose tags what a payment is for.
type Purpose string

const (
	PurposeCheckout    Purpose = "CHECKOUT"
	PurposeWalletTopup Purpose = "WALLET_TOPUP"
	PurposeDonation    Purpose = "DONATION"
	PurposeInvoice     Purpose = "INVOICE"
)

var supportedPurposes = map[Purpose]struct{}{
	PurposeCheckout:    {},
	PurposeWalletTopup: {},
	PurposeDonation:    {},
	PurposeInvoice:     {},
}

// ParsePurpose validates a purpose tag (case-insensitive).
func ParsePurpose(name string) (Purpose, error) {
	p := Purpose(strings.ToUpper(strings.TrimSpace(name)))
	if _, ok := supportedPurposes[p]; !ok {
		return "", apperror.ErrUnsupportedPurpose(name)
	}
	return p, nil
}

// PaymentStatus represents the lifecycle state of a payment.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusSuccess PaymentStatus = "SUCCESS"
	PaymentStatusFailed  PaymentStatus = "FAILED"
)

// VerificationResult is the outcome of reconciling a provider webhook
// against the stored payment.
type VerificationResult string

const (
	VerificationSuccess        VerificationResult = "SUCCESS"
	VerificationAmountMismatch VerificationResult = "AMOUNT_MISMATCH"
)

// Payment is the aggregate root for one brokered payment. It is an
// append-only audit record: state moves Pending -> Success|Failed and
// never leaves a terminal state. All mutation goes through methods.
type Payment struct {
	id                uuid.UUID
	reference         PaymentReference
	provider          Provider
	purpose           Purpose
	amount            Money
	payer             EmailAddress
	appName           string
	externalReference string
	redirectURL       CallbackURL
	notificationURL   CallbackURL
	status            PaymentStatus
	createdAt         time.Time
	verifiedAt        *time.Time
}

// NewPayment constructs a Pending payment with a fresh reference.
func NewPayment(
	provider Provider,
	purpose Purpose,
	amount Money,
	payer EmailAddress,
	appName string,
	externalReference string,
	redirectURL CallbackURL,
	notificationURL CallbackURL,
) (*Payment, error) {
	if strings.TrimSpace(appName) == "" {
		return nil, apperror.ErrFieldRequired("app_name")
	}
	if strings.TrimSpace(externalReference) == "" {
		return nil, apperror.ErrFieldRequired("external_reference")
	}

	return &Payment{
		id:                uuid.New(),
		reference:         NewPaymentReference(),
		provider:          provider,
		purpose:           purpose,
		amount:            amount,
		payer:             payer,
		appName:           strings.TrimSpace(appName),
		externalReference: strings.TrimSpace(externalReference),
		redirectURL:       redirectURL,
		notificationURL:   notificationURL,
		status:            PaymentStatusPending,
		createdAt:         time.Now().UTC(),
	}, nil
}

// RehydratePayment rebuilds an aggregate from persisted state. For use
// by the storage adapter only; it performs no validation.
func RehydratePayment(
	id uuid.UUID,
	reference PaymentReference,
	provider Provider,
	purpose Purpose,
	amount Money,
	payer EmailAddress,
	appName string,
	externalReference string,
	redirectURL CallbackURL,
	notificationURL CallbackURL,
	status PaymentStatus,
	createdAt time.Time,
	verifiedAt *time.Time,
) *Payment {
	return &Payment{
		id:                id,
		reference:         reference,
		provider:          provider,
		purpose:           purpose,
		amount:            amount,
		payer:             payer,
		appName:           appName,
		externalReference: externalReference,
		redirectURL:       redirectURL,
		notificationURL:   notificationURL,
		status:            status,
		createdAt:         createdAt,
		verifiedAt:        verifiedAt,
	}
}

func (p *Payment) ID() uuid.UUID                { return p.id }
func (p *Payment) Reference() PaymentReference  { return p.reference }
func (p *Payment) Provider() Provider           { return p.provider }
func (p *Payment) Purpose() Purpose             { return p.purpose }
func (p *Payment) Amount() Money                { return p.amount }
func (p *Payment) Payer() EmailAddress          { return p.payer }
func (p *Payment) AppName() string              { return p.appName }
func (p *Payment) ExternalReference() string    { return p.externalReference }
func (p *Payment) RedirectURL() CallbackURL     { return p.redirectURL }
func (p *Payment) NotificationURL() CallbackURL { return p.notificationURL }
func (p *Payment) Status() PaymentStatus        { return p.status }
func (p *Payment) CreatedAt() time.Time         { return p.createdAt }

// VerifiedAt returns when the payment reached a terminal state, or nil
// while it is still Pending.
func (p *Payment) VerifiedAt() *time.Time {
	if p.verifiedAt == nil {
		return nil
	}
	t := *p.verifiedAt
	return &t
}

// IsTerminal returns true once the payment is Success or Failed.
func (p *Payment) IsTerminal() bool {
	return p.status == PaymentStatusSuccess || p.status == PaymentStatusFailed
}

// ProcessSuccessfulPayment reconciles the amount reported by a provider
// webhook against the stored amount. This is the security-critical
// check: an under-paid or forged webhook transitions the payment to
// Failed instead of Success. Only valid from Pending.
func (p *Payment) ProcessSuccessfulPayment(received Money) (VerificationResult, error) {
	if p.status != PaymentStatusPending {
		return "", apperror.ErrAlreadyProcessed(string(p.status))
	}

	now := time.Now().UTC()
	p.verifiedAt = &now

	if !p.amount.Equals(received) {
		p.status = PaymentStatusFailed
		return VerificationAmountMismatch, nil
	}

	p.status = PaymentStatusSuccess
	return VerificationSuccess, nil
}

// MarkInitializationFailed settles a payment whose provider
// initialization failed, so the record does not linger as Pending.
// No-op unless Pending.
func (p *Payment) MarkInitializationFailed() {
	if p.status != PaymentStatusPending {
		return
	}
	now := time.Now().UTC()
	p.status = PaymentStatusFailed
	p.verifiedAt = &now
}
