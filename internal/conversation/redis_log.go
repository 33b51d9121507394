package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const (
	redisLogKeyPrefix = "conversation_log:"
	redisLogTTL       = 7 * 24 * time.Hour
)

// RedisLog keeps conversation lines in a Redis list. Entries expire after a
// week and the list is capped, so it trades durability for a zero-migration
// deployment; the Postgres log is the default backend.
type RedisLog struct {
	redis       *redis.Client
	tracer      trace.Tracer
	maxMessages int64
}

// NewRedisLog creates a Redis-backed conversation log.
func NewRedisLog(client *redis.Client) *RedisLog {
	if client == nil {
		panic("conversation: redis client cannot be nil")
	}
	return &RedisLog{
		redis:       client,
		tracer:      otel.Tracer("smartclean.internal.conversation.redislog"),
		maxMessages: 500,
	}
}

func redisLogKey(userKey string) string {
	return redisLogKeyPrefix + userKey
}

// Append pushes one line onto the user's list and refreshes the TTL.
func (l *RedisLog) Append(ctx context.Context, userKey, text string) error {
	if userKey == "" {
		return errors.New("conversation: userKey required")
	}

	ctx, span := l.tracer.Start(ctx, "conversation.redislog.append")
	defer span.End()

	data, err := json.Marshal(Entry{Text: text, Timestamp: time.Now().UTC()})
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("conversation: marshal log entry: %w", err)
	}

	key := redisLogKey(userKey)
	pipe := l.redis.TxPipeline()
	pipe.RPush(ctx, key, data)
	pipe.Expire(ctx, key, redisLogTTL)
	if l.maxMessages > 0 {
		pipe.LTrim(ctx, key, -l.maxMessages, -1)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		span.RecordError(err)
		return fmt.Errorf("conversation: append log entry: %w", err)
	}
	return nil
}

// Recent returns entries in chronological order, keeping the most recent
// limit entries when limit > 0. List push order is the insertion order, so
// no re-sorting is needed.
func (l *RedisLog) Recent(ctx context.Context, userKey string, limit int) ([]Entry, error) {
	ctx, span := l.tracer.Start(ctx, "conversation.redislog.recent")
	defer span.End()

	raw, err := l.redis.LRange(ctx, redisLogKey(userKey), 0, -1).Result()
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("conversation: read log entries: %w", err)
	}

	entries := make([]Entry, 0, len(raw))
	for _, item := range raw {
		var e Entry
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("conversation: decode log entry: %w", err)
		}
		e.UserKey = userKey
		entries = append(entries, e)
	}
	return tailEntries(entries, limit), nil
}

// CurrentSession returns the entries of the ongoing booking attempt.
func (l *RedisLog) CurrentSession(ctx context.Context, userKey string, limit int) ([]Entry, error) {
	entries, err := l.Recent(ctx, userKey, 0)
	if err != nil {
		return nil, err
	}
	return filterCurrentSession(entries, limit), nil
}

// Clear deletes the user's list.
func (l *RedisLog) Clear(ctx context.Context, userKey string) error {
	ctx, span := l.tracer.Start(ctx, "conversation.redislog.clear")
	defer span.End()

	if err := l.redis.Del(ctx, redisLogKey(userKey)).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("conversation: clear log: %w", err)
	}
	return nil
}
