package security

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	lmemory "github.com/ulule/limiter/v3/drivers/store/memory"
	lredis "github.com/ulule/limiter/v3/drivers/store/redis"

	"github.com/berrym/lair-chat/internal/errs"
	"github.com/berrym/lair-chat/internal/logging"
)

// Bucket names the two rate-limit buckets spec.md §4.3 names.
type Bucket string

const (
	BucketAuth    Bucket = "auth"
	BucketCommand Bucket = "command"
)

// Default sliding-window rates. The auth bucket is deliberately tighter:
// authentication attempts are expensive (Argon2id) and a prime brute-force
// target; the command bucket only needs to keep a single connection from
// flooding the dispatcher.
const (
	authRateFormatted    = "20-M" // 20 per minute per ip
	commandRateFormatted = "120-M" // 120 per minute per ip
)

// RateLimiter enforces the per-(ip,bucket) sliding-window limits of
// spec.md §4.3, grounded on RoseWrightdev-Video-Conferencing's
// internal/v1/ratelimit (ulule/limiter with a pluggable store).
type RateLimiter struct {
	auth    *limiter.Limiter
	command *limiter.Limiter
}

// NewRateLimiter builds a RateLimiter. If redisClient is non-nil the limiter
// state is kept in Redis (shared across process restarts and, eventually,
// multiple engine instances); otherwise an in-memory store is used, matching
// the dev-mode fallback in the grounding example.
func NewRateLimiter(redisClient *redis.Client) (*RateLimiter, error) {
	authRate, err := limiter.NewRateFromFormatted(authRateFormatted)
	if err != nil {
		return nil, err
	}
	commandRate, err := limiter.NewRateFromFormatted(commandRateFormatted)
	if err != nil {
		return nil, err
	}

	var store limiter.Store
	if redisClient != nil {
		store, err = lredis.NewStoreWithOptions(redisClient, limiter.StoreOptions{Prefix: "lair:ratelimit:"})
		if err != nil {
			return nil, err
		}
		logging.L().Info("rate limiter using Redis store")
	} else {
		store = lmemory.NewStore()
		logging.L().Info("rate limiter using in-memory store")
	}

	return &RateLimiter{
		auth:    limiter.New(store, authRate),
		command: limiter.New(store, commandRate),
	}, nil
}

// Allow checks whether ip may proceed in bucket. On exhaustion it returns an
// errs.RateLimitedError; the caller must not consume further resources for
// the offending request (spec.md §4.3).
func (r *RateLimiter) Allow(ctx context.Context, bucket Bucket, ip string) error {
	var l *limiter.Limiter
	switch bucket {
	case BucketAuth:
		l = r.auth
	case BucketCommand:
		l = r.command
	default:
		l = r.command
	}

	result, err := l.Get(ctx, string(bucket)+":"+ip)
	if err != nil {
		return errs.Storage("ratelimit", err)
	}
	if result.Reached {
		return errs.RateLimited(string(bucket))
	}
	return nil
}
