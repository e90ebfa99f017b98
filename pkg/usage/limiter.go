package usage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// LimitExceededError is a custom error that carries usage details
type LimitExceededError struct {
	Limit      int       `json:"limit"`
	Used       int       `json:"used"`
	ResetAfter time.Time `json:"reset_after"`
}

func (e *LimitExceededError) Error() string {
	return "daily AI usage limit exceeded"
}

// Limiter counts model dispatches per user per day in Redis. Counters expire
// at the next UTC midnight so a stuck key never blocks a user forever.
type Limiter struct {
	rdb        *redis.Client
	dailyLimit int
}

// NewLimiter creates a limiter. dailyLimit <= 0 means unlimited.
func NewLimiter(rdb *redis.Client, dailyLimit int) *Limiter {
	return &Limiter{rdb: rdb, dailyLimit: dailyLimit}
}

func (l *Limiter) key(userId uuid.UUID, now time.Time) string {
	return fmt.Sprintf("usage:dispatch:%s:%s", userId, now.UTC().Format("2006-01-02"))
}

func nextMidnight(now time.Time) time.Time {
	t := now.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC).Add(24 * time.Hour)
}

// Consume records one dispatch for the user. Returns *LimitExceededError when
// the day's budget is already spent; the counter is not incremented past the
// limit. Redis being down fails open: the dispatch proceeds.
func (l *Limiter) Consume(ctx context.Context, userId uuid.UUID) error {
	if l.dailyLimit <= 0 || l.rdb == nil {
		return nil
	}

	now := time.Now()
	key := l.key(userId, now)

	used, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		return nil
	}
	if used == 1 {
		l.rdb.ExpireAt(ctx, key, nextMidnight(now))
	}

	if int(used) > l.dailyLimit {
		l.rdb.Decr(ctx, key)
		return &LimitExceededError{
			Limit:      l.dailyLimit,
			Used:       l.dailyLimit,
			ResetAfter: nextMidnight(now),
		}
	}
	return nil
}

// Used reports the number of dispatches the user has made today.
func (l *Limiter) Used(ctx context.Context, userId uuid.UUID) (int, error) {
	if l.rdb == nil {
		return 0, nil
	}
	n, err := l.rdb.Get(ctx, l.key(userId, time.Now())).Int()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return n, nil
}

// Reset clears the user's counter for today.
func (l *Limiter) Reset(ctx context.Context, userId uuid.UUID) error {
	if l.rdb == nil {
		return nil
	}
	return l.rdb.Del(ctx, l.key(userId, time.Now())).Err()
}
