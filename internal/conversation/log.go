package conversation

import (
	"context"
	"strings"
	"time"
)

// Entry is a single line in a user's conversation log. The text is either a
// human-readable chat line ("User: ...", "Bot: ...") or a control marker
// encoding machine state. Ordering by timestamp, ties broken by insertion
// order, is the sole source of truth for conversation state.
type Entry struct {
	UserKey   string    `json:"user_key,omitempty"`
	Text      string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Log is the append-only durable store of per-user chat lines.
type Log interface {
	// Append durably writes one line. The text format is not validated.
	Append(ctx context.Context, userKey, text string) error
	// Recent returns entries in chronological order. If limit > 0, the most
	// recent limit entries are returned, still in chronological order.
	Recent(ctx context.Context, userKey string, limit int) ([]Entry, error)
	// CurrentSession returns the entries of the ongoing booking attempt:
	// everything after the previous resolution marker, with control markers
	// filtered out. If limit > 0 only the last limit entries are kept.
	CurrentSession(ctx context.Context, userKey string, limit int) ([]Entry, error)
	// Clear deletes all entries for a user.
	Clear(ctx context.Context, userKey string) error
}

const (
	userLinePrefix = "User: "
	botLinePrefix  = "Bot: "
)

// filterCurrentSession reduces a chronological history to the current session.
// It scans backward, stops at the first resolution marker (keeping it only
// when it carries a bot reply rather than being a bare marker), drops control
// markers, and re-reverses into chronological order.
func filterCurrentSession(entries []Entry, limit int) []Entry {
	var session []Entry
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if isResolutionMarker(e.Text) {
			if strings.Contains(e.Text, botLinePrefix) {
				session = append(session, e)
			}
			break
		}
		if isControlMarker(e.Text) {
			continue
		}
		session = append(session, e)
	}

	// session is newest-first; flip back to chronological order.
	for i, j := 0, len(session)-1; i < j; i, j = i+1, j-1 {
		session[i], session[j] = session[j], session[i]
	}

	if limit > 0 && len(session) > limit {
		session = session[len(session)-limit:]
	}
	return session
}

// tailEntries keeps the most recent limit entries of a chronological history.
func tailEntries(entries []Entry, limit int) []Entry {
	if limit > 0 && len(entries) > limit {
		return entries[len(entries)-limit:]
	}
	return entries
}
