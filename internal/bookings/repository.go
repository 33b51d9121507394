package bookings

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Booking is a durable record of a confirmed appointment. The conversation
// log alone can reconstruct state, but reporting wants a queryable table.
type Booking struct {
	ID              uuid.UUID `json:"id"`
	UserEmail       string    `json:"user_email"`
	ServiceID       string    `json:"service_id"`
	ServiceName     string    `json:"service_name"`
	StartsAt        time.Time `json:"starts_at"`
	EndsAt          time.Time `json:"ends_at"`
	CalendarEventID string    `json:"calendar_event_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository provides persistence helpers for bookings.
type Repository struct {
	db querier
}

// NewRepository creates a repository backed by a pgx pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	if pool == nil {
		panic("bookings: pgx pool required")
	}
	return &Repository{db: pool}
}

// NewRepositoryWithQuerier allows injecting mocks for tests.
func NewRepositoryWithQuerier(q querier) *Repository {
	return &Repository{db: q}
}

// CreateConfirmed inserts a confirmed booking row.
func (r *Repository) CreateConfirmed(ctx context.Context, b Booking) (*Booking, error) {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO bookings (
			id, user_email, service_id, service_name,
			starts_at, ends_at, calendar_event_id, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, b.ID, b.UserEmail, b.ServiceID, b.ServiceName, b.StartsAt, b.EndsAt, b.CalendarEventID, b.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("bookings: insert confirmed: %w", err)
	}
	return &b, nil
}

// ListForUser returns a user's bookings, most recent first.
func (r *Repository) ListForUser(ctx context.Context, userEmail string, limit int) ([]Booking, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.Query(ctx, `
		SELECT id, user_email, service_id, service_name,
		       starts_at, ends_at, calendar_event_id, created_at
		FROM bookings WHERE user_email = $1
		ORDER BY starts_at DESC LIMIT $2
	`, userEmail, limit)
	if err != nil {
		return nil, fmt.Errorf("bookings: list for user: %w", err)
	}
	defer rows.Close()

	var out []Booking
	for rows.Next() {
		var b Booking
		if err := rows.Scan(&b.ID, &b.UserEmail, &b.ServiceID, &b.ServiceName,
			&b.StartsAt, &b.EndsAt, &b.CalendarEventID, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("bookings: scan row: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("bookings: iterate rows: %w", err)
	}
	return out, nil
}
