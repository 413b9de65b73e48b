package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker/v2"
	"github.com/studyflowhq/studyflow/internal/planner/domain"
)

const (
	latestKeyPrefix = "studyflow:plan:latest:"
	latestTTL       = 5 * time.Minute
)

// RedisPlanCache decorates a PlanRepository with a read-through cache for the
// latest plan. Redis is strictly an accelerator: every cache failure degrades
// to the underlying store, guarded by a circuit breaker so a dead Redis does
// not add latency to every request.
type RedisPlanCache struct {
	inner   domain.PlanRepository
	client  *redis.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
	logger  *slog.Logger
}

// NewRedisPlanCache wraps inner with the cache.
func NewRedisPlanCache(inner domain.PlanRepository, client *redis.Client, logger *slog.Logger) *RedisPlanCache {
	if logger == nil {
		logger = slog.Default()
	}
	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:    "redis-plan-cache",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})
	return &RedisPlanCache{inner: inner, client: client, breaker: breaker, logger: logger}
}

// GetLatest serves from cache when possible, otherwise reads through and
// fills the cache.
func (c *RedisPlanCache) GetLatest(ctx context.Context, owner uuid.UUID) (*domain.PlanRecord, error) {
	key := latestKeyPrefix + owner.String()

	cached, err := c.breaker.Execute(func() ([]byte, error) {
		return c.client.Get(ctx, key).Bytes()
	})
	if err == nil {
		var plan domain.PlanRecord
		if jsonErr := json.Unmarshal(cached, &plan); jsonErr == nil {
			plan.OwnerID = owner
			return &plan, nil
		}
		// Corrupt entry; fall through and overwrite below.
	}

	plan, err := c.inner.GetLatest(ctx, owner)
	if err != nil {
		return nil, err
	}

	if payload, jsonErr := json.Marshal(plan); jsonErr == nil {
		if _, cbErr := c.breaker.Execute(func() ([]byte, error) {
			return nil, c.client.Set(ctx, key, payload, latestTTL).Err()
		}); cbErr != nil {
			c.logger.Debug("plan cache fill skipped", "error", cbErr)
		}
	}
	return plan, nil
}

// ListPlans is not cached; history reads are rare.
func (c *RedisPlanCache) ListPlans(ctx context.Context, owner uuid.UUID, limit int) ([]*domain.PlanRecord, error) {
	return c.inner.ListPlans(ctx, owner, limit)
}

// Save writes through and invalidates the owner's cached latest plan.
func (c *RedisPlanCache) Save(ctx context.Context, plan *domain.PlanRecord) error {
	if err := c.inner.Save(ctx, plan); err != nil {
		return err
	}
	c.invalidate(ctx, plan.OwnerID)
	return nil
}

// UpdateSessionStatus writes through and invalidates.
func (c *RedisPlanCache) UpdateSessionStatus(ctx context.Context, owner uuid.UUID, sessionID string, status domain.SessionStatus) error {
	if err := c.inner.UpdateSessionStatus(ctx, owner, sessionID, status); err != nil {
		return err
	}
	c.invalidate(ctx, owner)
	return nil
}

// RemoveTaskFromPlans writes through and invalidates.
func (c *RedisPlanCache) RemoveTaskFromPlans(ctx context.Context, owner uuid.UUID, taskID string) error {
	if err := c.inner.RemoveTaskFromPlans(ctx, owner, taskID); err != nil {
		return err
	}
	c.invalidate(ctx, owner)
	return nil
}

// RemoveHabitFromPlans writes through and invalidates.
func (c *RedisPlanCache) RemoveHabitFromPlans(ctx context.Context, owner uuid.UUID, habitID string) error {
	if err := c.inner.RemoveHabitFromPlans(ctx, owner, habitID); err != nil {
		return err
	}
	c.invalidate(ctx, owner)
	return nil
}

func (c *RedisPlanCache) invalidate(ctx context.Context, owner uuid.UUID) {
	key := latestKeyPrefix + owner.String()
	if _, err := c.breaker.Execute(func() ([]byte, error) {
		return nil, c.client.Del(ctx, key).Err()
	}); err != nil {
		c.logger.Warn("plan cache invalidation failed", "owner_id", owner, "error", err)
	}
}
