// Package cache wraps the Redis client used to avoid recomputing an
// identical plan-routes request, following the teacher's
// internal/cache/redis.go singleton-client + GetRoute/SetRoute +
// Acquire/Release/WaitForLock "compute once under lock" pattern
// (grounded on internal/api/handlers.go's computeRoute).
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/passbi/routecore/internal/apperr"
	"github.com/passbi/routecore/internal/config"
	"github.com/passbi/routecore/internal/models"
)

var (
	client     *redis.Client
	clientOnce sync.Once
	clientErr  error
)

// DefaultTTL is how long a cached plan-routes response stays valid.
const DefaultTTL = 10 * time.Minute

// LockTTL bounds how long a "compute in progress" lock is held.
const LockTTL = 5 * time.Second

// Get returns the process-wide Redis client, initializing it from cfg
// on first call.
func Get(cfg *config.Config) (*redis.Client, error) {
	clientOnce.Do(func() {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			clientErr = fmt.Errorf("cache: parse redis url: %w", err)
			return
		}
		opts.DialTimeout = 5 * time.Second
		opts.ReadTimeout = 3 * time.Second
		opts.WriteTimeout = 3 * time.Second

		client = redis.NewClient(opts)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := client.Ping(ctx).Err(); err != nil {
			clientErr = fmt.Errorf("cache: connect to redis: %w", err)
		}
	})

	return client, clientErr
}

// Close releases the process-wide Redis client, if initialized.
func Close() {
	if client != nil {
		client.Close()
	}
}

// PlanKey builds a deterministic cache key for a plan-routes request,
// grounded on the teacher's RouteKey (sha256 of the coordinate tuple).
func PlanKey(originLat, originLon, destLat, destLon float64, month string, prefs models.Preferences) string {
	data := fmt.Sprintf("%.6f,%.6f,%.6f,%.6f,%s,%.3f,%.3f",
		originLat, originLon, destLat, destLon, month, prefs.WTime, prefs.WGreen)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("plan:%x", hash[:16])
}

// LockKey derives the mutex key guarding computation of planKey.
func LockKey(planKey string) string {
	return fmt.Sprintf("lock:%s", planKey)
}

// GetPlans retrieves a cached RoutePlan slice, returning (nil, nil) on
// a cache miss.
func GetPlans(ctx context.Context, cfg *config.Config, key string) ([]models.RoutePlan, error) {
	c, err := Get(cfg)
	if err != nil {
		return nil, err
	}

	data, err := c.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.TransientUpstream, "redis get failed", err)
	}

	var plans []models.RoutePlan
	if err := json.Unmarshal(data, &plans); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "unmarshal cached plans", err)
	}

	return plans, nil
}

// SetPlans caches a RoutePlan slice under key for ttl.
func SetPlans(ctx context.Context, cfg *config.Config, key string, plans []models.RoutePlan, ttl time.Duration) error {
	c, err := Get(cfg)
	if err != nil {
		return err
	}

	data, err := json.Marshal(plans)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "marshal plans", err)
	}

	if err := c.Set(ctx, key, data, ttl).Err(); err != nil {
		return apperr.Wrap(apperr.TransientUpstream, "redis set failed", err)
	}
	return nil
}

// AcquireLock attempts the distributed "I will compute this" lock.
func AcquireLock(ctx context.Context, cfg *config.Config, key string, ttl time.Duration) (bool, error) {
	c, err := Get(cfg)
	if err != nil {
		return false, err
	}
	return c.SetNX(ctx, key, "1", ttl).Result()
}

// ReleaseLock releases the distributed lock.
func ReleaseLock(ctx context.Context, cfg *config.Config, key string) error {
	c, err := Get(cfg)
	if err != nil {
		return err
	}
	return c.Del(ctx, key).Err()
}

// WaitForPlans polls for lock release and then returns the cached
// result, implementing the teacher's thundering-herd-avoidance pattern
// (WaitForLock in internal/cache/redis.go).
func WaitForPlans(ctx context.Context, cfg *config.Config, planKey string, maxWait time.Duration) ([]models.RoutePlan, error) {
	c, err := Get(cfg)
	if err != nil {
		return nil, err
	}

	lockKey := LockKey(planKey)
	deadline := time.Now().Add(maxWait)

	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		exists, err := c.Exists(ctx, lockKey).Result()
		if err != nil {
			return nil, apperr.Wrap(apperr.TransientUpstream, "redis exists failed", err)
		}

		if exists == 0 {
			return GetPlans(ctx, cfg, planKey)
		}

		time.Sleep(100 * time.Millisecond)
	}

	return nil, apperr.New(apperr.ResourceExhausted, "timeout waiting for in-flight computation")
}

// HealthCheck verifies the Redis connection is reachable.
func HealthCheck(ctx context.Context, cfg *config.Config) error {
	c, err := Get(cfg)
	if err != nil {
		return apperr.Wrap(apperr.ResourceExhausted, "redis client not initialized", err)
	}
	if err := c.Ping(ctx).Err(); err != nil {
		return apperr.Wrap(apperr.TransientUpstream, "redis ping failed", err)
	}
	return nil
}
