package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"paybridge/internal/core/domain"
	"paybridge/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// Expected schema:
//
//	CREATE TABLE payments (
//	    id                 UUID PRIMARY KEY,
//	    reference          TEXT NOT NULL UNIQUE,
//	    provider           TEXT NOT NULL,
//	    purpose            TEXT NOT NULL,
//	    amount_minor       BIGINT NOT NULL,
//	    currency           TEXT NOT NULL,
//	    payer_email        TEXT NOT NULL,
//	    app_name           TEXT NOT NULL,
//	    external_reference TEXT NOT NULL,
//	    redirect_url       TEXT NOT NULL,
//	    notification_url   TEXT NOT NULL,
//	    status             TEXT NOT NULL,
//	    created_at         TIMESTAMPTZ NOT NULL,
//	    verified_at        TIMESTAMPTZ,
//	    UNIQUE (app_name, external_reference)
//	);
//
// The (app_name, external_reference) unique constraint is what makes
// initialization idempotent under concurrent retries: the database, not
// the application, arbitrates which insert wins.

const uniqueViolationCode = "23505"

const paymentColumns = `id, reference, provider, purpose, amount_minor, currency, payer_email,
	app_name, external_reference, redirect_url, notification_url, status, created_at, verified_at`

// PaymentRepo implements ports.PaymentRepository.
type PaymentRepo struct {
	pool Pool
}

// NewPaymentRepo creates a new PaymentRepo.
func NewPaymentRepo(pool Pool) *PaymentRepo {
	return &PaymentRepo{pool: pool}
}

// Create inserts a new payment. A unique-constraint violation surfaces
// as DUPLICATE_PAYMENT so the caller can treat it as a lost idempotency
// race rather than a storage fault.
func (r *PaymentRepo) Create(ctx context.Context, p *domain.Payment) error {
	query := `INSERT INTO payments (` + paymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err := r.pool.Exec(ctx, query,
		p.ID(), p.Reference().String(), string(p.Provider()), string(p.Purpose()),
		p.Amount().MinorUnits(), string(p.Amount().Currency()), p.Payer().String(),
		p.AppName(), p.ExternalReference(), p.RedirectURL().String(), p.NotificationURL().String(),
		string(p.Status()), p.CreatedAt(), p.VerifiedAt(),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return apperror.ErrDuplicatePayment()
		}
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

// GetByReference fetches a payment by its gateway reference.
func (r *PaymentRepo) GetByReference(ctx context.Context, reference domain.PaymentReference) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE reference = $1`

	return scanPayment(r.pool.QueryRow(ctx, query, reference.String()))
}

// GetByExternalReference fetches a payment by the caller app's
// idempotency pair.
func (r *PaymentRepo) GetByExternalReference(ctx context.Context, appName, externalReference string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE app_name = $1 AND external_reference = $2`

	return scanPayment(r.pool.QueryRow(ctx, query, appName, externalReference))
}

// UpdateState persists a status transition. All other columns are
// immutable after Create.
func (r *PaymentRepo) UpdateState(ctx context.Context, p *domain.Payment) error {
	query := `UPDATE payments SET status = $1, verified_at = $2 WHERE id = $3`

	tag, err := r.pool.Exec(ctx, query, string(p.Status()), p.VerifiedAt(), p.ID())
	if err != nil {
		return fmt.Errorf("update payment state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("payment not found: %s", p.ID())
	}
	return nil
}

// scanPayment rebuilds the aggregate from one row.
func scanPayment(row pgx.Row) (*domain.Payment, error) {
	var (
		id                uuid.UUID
		reference         string
		provider          string
		purpose           string
		amountMinor       int64
		currency          string
		payerEmail        string
		appName           string
		externalReference string
		redirectURL       string
		notificationURL   string
		status            string
		createdAt         time.Time
		verifiedAt        *time.Time
	)

	err := row.Scan(
		&id, &reference, &provider, &purpose, &amountMinor, &currency, &payerEmail,
		&appName, &externalReference, &redirectURL, &notificationURL, &status, &createdAt, &verifiedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan payment: %w", err)
	}

	ref, err := domain.ParsePaymentReference(reference)
	if err != nil {
		return nil, fmt.Errorf("stored reference %q: %w", reference, err)
	}
	payer, err := domain.NewEmailAddress(payerEmail)
	if err != nil {
		return nil, fmt.Errorf("stored payer email: %w", err)
	}
	redirect, err := domain.NewCallbackURL(redirectURL)
	if err != nil {
		return nil, fmt.Errorf("stored redirect url: %w", err)
	}
	notification, err := domain.NewCallbackURL(notificationURL)
	if err != nil {
		return nil, fmt.Errorf("stored notification url: %w", err)
	}

	amount := domain.RehydrateMoney(
		decimal.NewFromInt(amountMinor).Div(decimal.NewFromInt(100)),
		domain.Currency(currency),
	)

	return domain.RehydratePayment(
		id, ref, domain.Provider(provider), domain.Purpose(purpose), amount, payer,
		appName, externalReference, redirect, notification,
		domain.PaymentStatus(status), createdAt, verifiedAt,
	), nil
}
