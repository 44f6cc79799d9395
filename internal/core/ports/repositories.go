package ports

import (
	"context"

	"paybridge/internal/core/domain"
)

// PaymentRepository defines persistence operations for payment
// aggregates. Lookup methods return (nil, nil) when no row matches.
type PaymentRepository interface {
	// Create inserts a new payment. A violation of the
	// (app_name, external_reference) uniqueness constraint surfaces as
	// apperror DUPLICATE_PAYMENT.
	Create(ctx context.Context, payment *domain.Payment) error
	GetByReference(ctx context.Context, reference domain.PaymentReference) (*domain.Payment, error)
	GetByExternalReference(ctx context.Context, appName, externalReference string) (*domain.Payment, error)
	// UpdateState persists a status transition (status + verified_at).
	// All other columns are immutable after Create.
	UpdateState(ctx context.Context, payment *domain.Payment) error
}

// InitializationCache is the best-effort fast path for idempotent
// initialization retries. Get returns (nil, nil) on a miss.
type InitializationCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}
