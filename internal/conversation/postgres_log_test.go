package conversation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresLogAppend(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	log := NewPostgresLog(db)

	mock.ExpectExec("INSERT INTO conversation_log").
		WithArgs("alice@example.com", "User: hi", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = log.Append(context.Background(), "alice@example.com", "User: hi")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresLogAppendError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	log := NewPostgresLog(db)

	mock.ExpectExec("INSERT INTO conversation_log").
		WillReturnError(errors.New("connection reset"))

	err = log.Append(context.Background(), "alice@example.com", "User: hi")
	assert.ErrorContains(t, err, "append log entry")
}

func TestPostgresLogRecentUnlimited(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	log := NewPostgresLog(db)

	base := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"message", "created_at"}).
		AddRow("User: hi", base).
		AddRow("Bot: hello", base.Add(time.Second))

	mock.ExpectQuery("SELECT message, created_at FROM conversation_log").
		WithArgs("alice@example.com").
		WillReturnRows(rows)

	entries, err := log.Recent(context.Background(), "alice@example.com", 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "User: hi", entries[0].Text)
	assert.Equal(t, "Bot: hello", entries[1].Text)
	assert.Equal(t, "alice@example.com", entries[0].UserKey)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresLogRecentLimitedReversesToChronological(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	log := NewPostgresLog(db)

	base := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	// The limited query returns newest-first.
	rows := sqlmock.NewRows([]string{"message", "created_at"}).
		AddRow("Bot: hello", base.Add(time.Second)).
		AddRow("User: hi", base)

	mock.ExpectQuery("SELECT message, created_at FROM conversation_log").
		WithArgs("alice@example.com", 2).
		WillReturnRows(rows)

	entries, err := log.Recent(context.Background(), "alice@example.com", 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "User: hi", entries[0].Text)
	assert.Equal(t, "Bot: hello", entries[1].Text)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresLogCurrentSessionFiltersMarkers(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	log := NewPostgresLog(db)

	base := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"message", "created_at"}).
		AddRow("User: old", base).
		AddRow("BOOKING_CONFIRMED", base.Add(1*time.Second)).
		AddRow("User: new", base.Add(2*time.Second)).
		AddRow("SELECTED_SERVICE: 2|Deep Cleaning|4", base.Add(3*time.Second)).
		AddRow("Bot: when?", base.Add(4*time.Second))

	mock.ExpectQuery("SELECT message, created_at FROM conversation_log").
		WithArgs("alice@example.com").
		WillReturnRows(rows)

	entries, err := log.CurrentSession(context.Background(), "alice@example.com", 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "User: new", entries[0].Text)
	assert.Equal(t, "Bot: when?", entries[1].Text)
}

func TestPostgresLogClear(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	log := NewPostgresLog(db)

	mock.ExpectExec("DELETE FROM conversation_log").
		WithArgs("alice@example.com").
		WillReturnResult(sqlmock.NewResult(0, 5))

	err = log.Clear(context.Background(), "alice@example.com")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
