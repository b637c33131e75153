package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the subset of pgxpool.Pool the repository needs.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository persists payment records and lifecycle transitions.
type Repository struct {
	db Querier
}

// NewRepository creates a repository backed by pgx.
func NewRepository(db Querier) *Repository {
	if db == nil {
		panic("payments: pgx pool required")
	}
	return &Repository{db: db}
}

// Create persists a new PENDING payment row for an intent.
func (r *Repository) Create(ctx context.Context, p *Payment) error {
	if err := r.db.QueryRow(ctx, `
		INSERT INTO payments (id, appointment_id, amount_cents, method, status, provider_intent_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`, p.ID, p.AppointmentID, p.AmountCents, p.Method, p.Status, p.ProviderIntentID).Scan(&p.CreatedAt); err != nil {
		return fmt.Errorf("payments: insert: %w", err)
	}
	return nil
}

const paymentColumns = `id, appointment_id, amount_cents, method, status, provider_intent_id, paid_at, created_at`

// GetByIntentID fetches a payment by its provider intent reference.
func (r *Repository) GetByIntentID(ctx context.Context, intentID string) (*Payment, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+paymentColumns+` FROM payments WHERE provider_intent_id = $1
	`, intentID)
	return scanPayment(row)
}

// GetByAppointmentID fetches the most recent payment for an appointment.
func (r *Repository) GetByAppointmentID(ctx context.Context, appointmentID uuid.UUID) (*Payment, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+paymentColumns+` FROM payments
		WHERE appointment_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`, appointmentID)
	return scanPayment(row)
}

// MarkCompleted marks the payment COMPLETED and stamps paid_at.
func (r *Repository) MarkCompleted(ctx context.Context, id uuid.UUID, paidAt time.Time) error {
	return r.updateStatus(ctx, id, StatusCompleted, &paidAt)
}

// MarkFailed marks the payment FAILED.
func (r *Repository) MarkFailed(ctx context.Context, id uuid.UUID) error {
	return r.updateStatus(ctx, id, StatusFailed, nil)
}

// MarkRefunded marks the payment REFUNDED.
func (r *Repository) MarkRefunded(ctx context.Context, id uuid.UUID) error {
	return r.updateStatus(ctx, id, StatusRefunded, nil)
}

func (r *Repository) updateStatus(ctx context.Context, id uuid.UUID, status Status, paidAt *time.Time) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE payments SET status = $2, paid_at = COALESCE($3, paid_at) WHERE id = $1
	`, id, status, paidAt)
	if err != nil {
		return fmt.Errorf("payments: update status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPaymentNotFound
	}
	return nil
}

func scanPayment(row pgx.Row) (*Payment, error) {
	var p Payment
	if err := row.Scan(&p.ID, &p.AppointmentID, &p.AmountCents, &p.Method, &p.Status,
		&p.ProviderIntentID, &p.PaidAt, &p.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("payments: scan: %w", err)
	}
	return &p, nil
}
