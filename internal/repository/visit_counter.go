package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// VisitCounter maintains the simple visit and session counters backed by
// Redis atomic operations.
type VisitCounter interface {
	// IncrementVisit bumps the page visit counter and returns the new
	// total.
	IncrementVisit(ctx context.Context, accountID, companyID, page string) (int64, error)

	// TrackSession records a session id in the daily set and reports
	// whether it was seen for the first time today.
	TrackSession(ctx context.Context, accountID, companyID, sessionID string, now time.Time) (bool, error)
}

type visitCounter struct {
	client *redis.Client
}

// NewVisitCounter builds a Redis-backed counter.
func NewVisitCounter(client *redis.Client) VisitCounter {
	return &visitCounter{client: client}
}

func (c *visitCounter) IncrementVisit(ctx context.Context, accountID, companyID, page string) (int64, error) {
	key := fmt.Sprintf("visits:%s:%s:%s", accountID, companyID, page)
	return c.client.Incr(ctx, key).Result()
}

func (c *visitCounter) TrackSession(ctx context.Context, accountID, companyID, sessionID string, now time.Time) (bool, error) {
	key := fmt.Sprintf("sessions:%s:%s:%s", accountID, companyID, now.Format("2006-01-02"))
	added, err := c.client.SAdd(ctx, key, sessionID).Result()
	if err != nil {
		return false, err
	}
	// Daily set; expire after two days so stale sets do not accumulate.
	if err := c.client.Expire(ctx, key, 48*time.Hour).Err(); err != nil {
		return false, err
	}
	return added > 0, nil
}
