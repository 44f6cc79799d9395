package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"paybridge/internal/core/domain"
	"paybridge/internal/core/ports"
	"paybridge/pkg/apperror"

	"github.com/rs/zerolog"
)

// Orchestrator implements ports.PaymentOrchestrator. It is
// request-scoped: no mutable state is shared between invocations other
// than the durable store and the best-effort cache.
type Orchestrator struct {
	repo      ports.PaymentRepository
	registry  ports.GatewayRegistry
	notifier  ports.NotificationSink
	initCache ports.InitializationCache
	log       zerolog.Logger
}

// NewOrchestrator creates the payment orchestrator. initCache may be
// nil to disable the fast-path idempotency cache.
func NewOrchestrator(
	repo ports.PaymentRepository,
	registry ports.GatewayRegistry,
	notifier ports.NotificationSink,
	initCache ports.InitializationCache,
	log zerolog.Logger,
) *Orchestrator {
	return &Orchestrator{
		repo:      repo,
		registry:  registry,
		notifier:  notifier,
		initCache: initCache,
		log:       log,
	}
}

// cachedSession is the JSON shape stored in the initialization cache.
type cachedSession struct {
	Reference   string `json:"reference"`
	CheckoutURL string `json:"checkout_url"`
}

// InitializePayment brokers a payment-initialization request:
// idempotency check on (appName, externalReference), durable record
// first, then the provider call. The provider is never called for a
// record that does not exist durably.
func (s *Orchestrator) InitializePayment(ctx context.Context, req ports.InitializePaymentRequest) (*ports.CheckoutSession, error) {
	cacheKey := buildInitCacheKey(req.AppName, req.ExternalReference)

	// Layer 1: cache fast path (best-effort).
	if session := s.cachedCheckout(ctx, cacheKey); session != nil {
		return session, nil
	}

	// Layer 2: authoritative store lookup.
	existing, err := s.repo.GetByExternalReference(ctx, req.AppName, req.ExternalReference)
	if err != nil {
		return nil, apperror.ErrDatabase(fmt.Errorf("idempotency lookup: %w", err))
	}
	if existing != nil {
		return s.retryInitialization(ctx, cacheKey, existing)
	}

	payment, err := buildPayment(req)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, payment); err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			return nil, err // e.g. DUPLICATE_PAYMENT from the unique index
		}
		return nil, apperror.ErrDatabase(fmt.Errorf("create payment: %w", err))
	}

	gateway, ok := s.registry.Resolve(req.Provider)
	if !ok {
		return nil, apperror.ErrUnsupportedProvider(req.Provider)
	}

	session, err := gateway.Initialize(ctx, payment)
	if err != nil {
		// Settle the record so it does not linger as Pending. The
		// original gateway error is what the caller sees; a persistence
		// failure here is logged, not propagated.
		payment.MarkInitializationFailed()
		if uerr := s.repo.UpdateState(ctx, payment); uerr != nil {
			s.log.Error().Err(uerr).
				Str("payment_reference", payment.Reference().String()).
				Msg("failed to persist initialization failure")
		}
		return nil, err
	}

	s.cacheCheckout(ctx, cacheKey, session)

	s.log.Info().
		Str("payment_reference", payment.Reference().String()).
		Str("app_name", payment.AppName()).
		Str("external_reference", payment.ExternalReference()).
		Str("amount", payment.Amount().String()).
		Msg("payment initialized")

	return session, nil
}

// retryInitialization serves a repeated initialize call for an existing
// record: Pending payments get a fresh provider session, terminal ones
// are reported as settled without mutation.
func (s *Orchestrator) retryInitialization(ctx context.Context, cacheKey string, payment *domain.Payment) (*ports.CheckoutSession, error) {
	if payment.IsTerminal() {
		return nil, apperror.ErrAlreadyProcessed(string(payment.Status()))
	}

	gateway, ok := s.registry.Resolve(string(payment.Provider()))
	if !ok {
		return nil, apperror.ErrUnsupportedProvider(string(payment.Provider()))
	}

	session, err := gateway.Initialize(ctx, payment)
	if err != nil {
		// The existing record stays Pending: the original checkout may
		// still settle via webhook.
		return nil, err
	}

	s.cacheCheckout(ctx, cacheKey, session)

	s.log.Info().
		Str("payment_reference", payment.Reference().String()).
		Str("app_name", payment.AppName()).
		Msg("pending payment re-initialized")

	return session, nil
}

// HandleWebhook reconciles a provider webhook against the stored
// payment. Nothing past signature verification runs on unverified
// input.
func (s *Orchestrator) HandleWebhook(ctx context.Context, provider string, payload []byte, signature string) ports.WebhookOutcome {
	log := s.log.With().Str("provider", provider).Logger()

	gateway, ok := s.registry.Resolve(provider)
	if !ok {
		log.Warn().Msg("webhook for unknown provider")
		return failed("unknown provider")
	}

	verified, err := gateway.VerifySignature(payload, signature)
	if err != nil {
		log.Error().Err(err).Msg("webhook signature verification errored")
		return failed("signature verification error")
	}
	if !verified {
		log.Warn().Msg("webhook signature mismatch")
		return failed("signature mismatch")
	}

	charge, err := gateway.ParseWebhook(payload)
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) && appErr.Code == "UNSUPPORTED_EVENT" {
			log.Debug().Str("reason", appErr.Message).Msg("webhook event ignored")
			return ignored(appErr.Message)
		}
		log.Warn().Err(err).Msg("webhook payload malformed")
		return failed("malformed payload")
	}

	log = log.With().Str("payment_reference", charge.Reference.String()).Logger()

	payment, err := s.repo.GetByReference(ctx, charge.Reference)
	if err != nil {
		log.Error().Err(err).Msg("webhook payment lookup failed")
		return failed("database error")
	}
	if payment == nil {
		// Stale or foreign traffic; legitimately not ours to process.
		log.Info().Msg("webhook for unknown payment reference")
		return ignored("unknown payment reference")
	}

	result, err := payment.ProcessSuccessfulPayment(charge.Amount)
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) && appErr.Code == "ALREADY_PROCESSED" {
			// Redelivery for a settled payment: idempotent by
			// construction of the state machine.
			log.Info().Str("status", string(payment.Status())).Msg("webhook redelivery ignored")
			return ignored("already processed")
		}
		log.Error().Err(err).Msg("webhook reconciliation failed")
		return failed("reconciliation error")
	}

	if err := s.repo.UpdateState(ctx, payment); err != nil {
		log.Error().Err(err).Msg("failed to persist webhook reconciliation")
		return failed("database error")
	}

	switch result {
	case domain.VerificationSuccess:
		s.notifySettled(ctx, payment, log)
		log.Info().Msg("webhook processed")
		return ports.WebhookOutcome{Status: ports.WebhookProcessed}
	case domain.VerificationAmountMismatch:
		log.Error().
			Str("expected", payment.Amount().String()).
			Str("received", charge.Amount.String()).
			Msg("webhook amount mismatch")
		return failed("amount mismatch")
	default:
		return ignored(string(result))
	}
}

// notifySettled posts the settlement to the caller app. Best-effort:
// the payment state is already durable, so failures only get logged.
func (s *Orchestrator) notifySettled(ctx context.Context, payment *domain.Payment, log zerolog.Logger) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, payment); err != nil {
		log.Warn().Err(err).
			Str("notification_url", payment.NotificationURL().String()).
			Msg("settlement notification failed")
	}
}

// cachedCheckout returns a previously cached checkout session, or nil.
// Cache trouble is logged and treated as a miss.
func (s *Orchestrator) cachedCheckout(ctx context.Context, key string) *ports.CheckoutSession {
	if s.initCache == nil {
		return nil
	}
	raw, err := s.initCache.Get(ctx, key)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("initialization cache read failed, falling through to DB")
		return nil
	}
	if raw == nil {
		return nil
	}

	var cached cachedSession
	if err := json.Unmarshal(raw, &cached); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("initialization cache entry unreadable")
		return nil
	}
	reference, err := domain.ParsePaymentReference(cached.Reference)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("initialization cache entry has bad reference")
		return nil
	}

	return &ports.CheckoutSession{Reference: reference, CheckoutURL: cached.CheckoutURL}
}

func (s *Orchestrator) cacheCheckout(ctx context.Context, key string, session *ports.CheckoutSession) {
	if s.initCache == nil {
		return
	}
	raw, err := json.Marshal(cachedSession{
		Reference:   session.Reference.String(),
		CheckoutURL: session.CheckoutURL,
	})
	if err != nil {
		return
	}
	if err := s.initCache.Set(ctx, key, raw); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("failed to cache initialization result")
	}
}

// buildPayment validates raw request input into a new Pending aggregate.
func buildPayment(req ports.InitializePaymentRequest) (*domain.Payment, error) {
	provider, err := domain.ParseProvider(req.Provider)
	if err != nil {
		return nil, err
	}
	purpose, err := domain.ParsePurpose(req.Purpose)
	if err != nil {
		return nil, err
	}
	amount, err := domain.NewMoney(req.Amount, req.Currency)
	if err != nil {
		return nil, err
	}
	payer, err := domain.NewEmailAddress(req.ExternalUserID)
	if err != nil {
		return nil, err
	}
	redirectURL, err := domain.NewCallbackURL(req.RedirectURL)
	if err != nil {
		return nil, err
	}
	notificationURL, err := domain.NewCallbackURL(req.NotificationURL)
	if err != nil {
		return nil, err
	}

	return domain.NewPayment(provider, purpose, amount, payer, req.AppName, req.ExternalReference, redirectURL, notificationURL)
}

func buildInitCacheKey(appName, externalReference string) string {
	return fmt.Sprintf("%s:%s", appName, externalReference)
}

func failed(reason string) ports.WebhookOutcome {
	return ports.WebhookOutcome{Status: ports.WebhookFailed, Reason: reason}
}

func ignored(reason string) ports.WebhookOutcome {
	return ports.WebhookOutcome{Status: ports.WebhookIgnored, Reason: reason}
}
