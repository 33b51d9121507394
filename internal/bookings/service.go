package bookings

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/smartcleanhq/cleaning-ai-platform/pkg/logging"
)

var bookingsTracer = otel.Tracer("smartclean.internal.bookings")

// Service records confirmed appointments.
type Service struct {
	repo   *Repository
	logger *logging.Logger
}

// NewService constructs a bookings service.
func NewService(repo *Repository, logger *logging.Logger) *Service {
	if repo == nil {
		panic("bookings: repository required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// RecordConfirmed persists a booking after the calendar write succeeds.
func (s *Service) RecordConfirmed(ctx context.Context, b Booking) (*Booking, error) {
	ctx, span := bookingsTracer.Start(ctx, "bookings.record_confirmed")
	defer span.End()
	span.SetAttributes(
		attribute.String("smartclean.user_email", b.UserEmail),
		attribute.String("smartclean.service_id", b.ServiceID),
	)

	row, err := s.repo.CreateConfirmed(ctx, b)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	s.logger.Info("booking recorded",
		"booking_id", row.ID,
		"user_email", row.UserEmail,
		"service", row.ServiceName,
		"starts_at", row.StartsAt,
	)
	return row, nil
}

// ListForUser returns a user's bookings, most recent first.
func (s *Service) ListForUser(ctx context.Context, userEmail string, limit int) ([]Booking, error) {
	ctx, span := bookingsTracer.Start(ctx, "bookings.list_for_user")
	defer span.End()
	span.SetAttributes(attribute.String("smartclean.user_email", userEmail))

	rows, err := s.repo.ListForUser(ctx, userEmail, limit)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return rows, nil
}
