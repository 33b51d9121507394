package conversation

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// PostgresLog persists conversation lines to PostgreSQL. Rows are ordered by
// (created_at, id) so same-timestamp appends keep their insertion order.
type PostgresLog struct {
	db     *sql.DB
	tracer trace.Tracer
}

// NewPostgresLog creates a Postgres-backed conversation log.
func NewPostgresLog(db *sql.DB) *PostgresLog {
	if db == nil {
		panic("conversation: db cannot be nil")
	}
	return &PostgresLog{
		db:     db,
		tracer: otel.Tracer("smartclean.internal.conversation.log"),
	}
}

// Append durably writes one log line for the user.
func (l *PostgresLog) Append(ctx context.Context, userKey, text string) error {
	ctx, span := l.tracer.Start(ctx, "conversation.log.append")
	defer span.End()

	_, err := l.db.ExecContext(ctx,
		`INSERT INTO conversation_log (user_key, message, created_at) VALUES ($1, $2, $3)`,
		userKey, text, time.Now().UTC(),
	)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("conversation: append log entry: %w", err)
	}
	return nil
}

// Recent returns the user's entries in chronological order, keeping only the
// most recent limit entries when limit > 0.
func (l *PostgresLog) Recent(ctx context.Context, userKey string, limit int) ([]Entry, error) {
	ctx, span := l.tracer.Start(ctx, "conversation.log.recent")
	defer span.End()

	var (
		rows *sql.Rows
		err  error
	)
	if limit > 0 {
		rows, err = l.db.QueryContext(ctx,
			`SELECT message, created_at FROM conversation_log
			 WHERE user_key = $1 ORDER BY created_at DESC, id DESC LIMIT $2`,
			userKey, limit,
		)
	} else {
		rows, err = l.db.QueryContext(ctx,
			`SELECT message, created_at FROM conversation_log
			 WHERE user_key = $1 ORDER BY created_at, id`,
			userKey,
		)
	}
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("conversation: query log entries: %w", err)
	}
	defer rows.Close()

	entries, err := scanEntries(rows, userKey)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	// The limited query reads newest-first; flip back to chronological order.
	if limit > 0 {
		for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
			entries[i], entries[j] = entries[j], entries[i]
		}
	}
	return entries, nil
}

// CurrentSession returns the entries of the ongoing booking attempt.
func (l *PostgresLog) CurrentSession(ctx context.Context, userKey string, limit int) ([]Entry, error) {
	ctx, span := l.tracer.Start(ctx, "conversation.log.current_session")
	defer span.End()

	entries, err := l.Recent(ctx, userKey, 0)
	if err != nil {
		return nil, err
	}
	return filterCurrentSession(entries, limit), nil
}

// Clear deletes all entries for a user.
func (l *PostgresLog) Clear(ctx context.Context, userKey string) error {
	ctx, span := l.tracer.Start(ctx, "conversation.log.clear")
	defer span.End()

	if _, err := l.db.ExecContext(ctx, `DELETE FROM conversation_log WHERE user_key = $1`, userKey); err != nil {
		span.RecordError(err)
		return fmt.Errorf("conversation: clear log: %w", err)
	}
	return nil
}

func scanEntries(rows *sql.Rows, userKey string) ([]Entry, error) {
	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Text, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("conversation: scan log entry: %w", err)
		}
		e.UserKey = userKey
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("conversation: iterate log entries: %w", err)
	}
	return entries, nil
}
