package bookings

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
)

func TestCreateConfirmedAssignsIDAndCreatedAt(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	starts := time.Date(2026, 9, 15, 10, 0, 0, 0, time.UTC)
	mock.ExpectExec("INSERT INTO bookings").
		WithArgs(pgxmock.AnyArg(), "alice@example.com", "2", "Deep Cleaning",
			starts, starts.Add(4*time.Hour), "evt_123", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	repo := NewRepositoryWithQuerier(mock)
	row, err := repo.CreateConfirmed(context.Background(), Booking{
		UserEmail:       "alice@example.com",
		ServiceID:       "2",
		ServiceName:     "Deep Cleaning",
		StartsAt:        starts,
		EndsAt:          starts.Add(4 * time.Hour),
		CalendarEventID: "evt_123",
	})
	if err != nil {
		t.Fatalf("CreateConfirmed returned error: %v", err)
	}
	if row.ID == uuid.Nil {
		t.Fatalf("expected a generated ID")
	}
	if row.CreatedAt.IsZero() {
		t.Fatalf("expected created_at to be set")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateConfirmedKeepsProvidedID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	id := uuid.New()
	mock.ExpectExec("INSERT INTO bookings").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	repo := NewRepositoryWithQuerier(mock)
	row, err := repo.CreateConfirmed(context.Background(), Booking{ID: id, UserEmail: "a@b.c"})
	if err != nil {
		t.Fatalf("CreateConfirmed returned error: %v", err)
	}
	if row.ID != id {
		t.Fatalf("expected provided ID to be kept, got %s", row.ID)
	}
}

func TestCreateConfirmedInsertError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	mock.ExpectExec("INSERT INTO bookings").
		WillReturnError(errors.New("duplicate key"))

	repo := NewRepositoryWithQuerier(mock)
	if _, err := repo.CreateConfirmed(context.Background(), Booking{UserEmail: "a@b.c"}); err == nil {
		t.Fatalf("expected insert error to surface")
	}
}

func TestListForUser(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	starts := time.Date(2026, 9, 15, 10, 0, 0, 0, time.UTC)
	rows := pgxmock.NewRows([]string{
		"id", "user_email", "service_id", "service_name",
		"starts_at", "ends_at", "calendar_event_id", "created_at",
	}).AddRow(uuid.New(), "alice@example.com", "2", "Deep Cleaning",
		starts, starts.Add(4*time.Hour), "evt_123", starts.Add(-time.Hour))

	mock.ExpectQuery("SELECT id, user_email, service_id, service_name").
		WithArgs("alice@example.com", 10).
		WillReturnRows(rows)

	repo := NewRepositoryWithQuerier(mock)
	out, err := repo.ListForUser(context.Background(), "alice@example.com", 10)
	if err != nil {
		t.Fatalf("ListForUser returned error: %v", err)
	}
	if len(out) != 1 || out[0].ServiceName != "Deep Cleaning" {
		t.Fatalf("unexpected rows: %+v", out)
	}
}

func TestListForUserDefaultLimit(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery("SELECT id, user_email, service_id, service_name").
		WithArgs("alice@example.com", 50).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "user_email", "service_id", "service_name",
			"starts_at", "ends_at", "calendar_event_id", "created_at",
		}))

	repo := NewRepositoryWithQuerier(mock)
	out, err := repo.ListForUser(context.Background(), "alice@example.com", 0)
	if err != nil {
		t.Fatalf("ListForUser returned error: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("expected no rows, got %+v", out)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
