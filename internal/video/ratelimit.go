package video

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"homedesign/internal/infra"
	"homedesign/internal/kv"
)

// DefaultCooldown is the minimum time between successful video generations.
const DefaultCooldown = time.Hour

// Decision is the outcome of a rate gate check. Remaining is set only when
// the request is not allowed.
type Decision struct {
	Allowed   bool
	Remaining time.Duration
}

// RateLimiter guards video generation. Record is called once a video has
// been produced.
type RateLimiter interface {
	TryAcquire(ctx context.Context) (Decision, error)
	Record(ctx context.Context) error
}

type LimiterOptions struct {
	Cooldown time.Duration
	Now      func() time.Time
	Logger   *infra.Logger
}

// CooldownLimiter keeps the last success time in a kv.Store as unix
// milliseconds. Concurrent runs race on the stored value and the last
// writer wins.
type CooldownLimiter struct {
	store    kv.Store
	cooldown time.Duration
	now      func() time.Time
	logger   *infra.Logger
}

func NewCooldownLimiter(store kv.Store, opts LimiterOptions) *CooldownLimiter {
	cooldown := opts.Cooldown
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &CooldownLimiter{store: store, cooldown: cooldown, now: now, logger: infra.OrNop(opts.Logger)}
}

func (l *CooldownLimiter) TryAcquire(ctx context.Context) (Decision, error) {
	raw, ok, err := l.store.Get(ctx, kv.KeyLastVideoGeneration)
	if err != nil {
		return Decision{}, fmt.Errorf("read video timestamp: %w", err)
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return Decision{Allowed: true}, nil
	}
	millis, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		l.logger.Warn().Str("value", raw).Msg("video: ignoring unreadable rate limit timestamp")
		return Decision{Allowed: true}, nil
	}
	elapsed := l.now().Sub(time.UnixMilli(millis))
	if elapsed >= l.cooldown {
		return Decision{Allowed: true}, nil
	}
	return Decision{Remaining: l.cooldown - elapsed}, nil
}

func (l *CooldownLimiter) Record(ctx context.Context) error {
	stamp := strconv.FormatInt(l.now().UnixMilli(), 10)
	if err := l.store.Set(ctx, kv.KeyLastVideoGeneration, stamp); err != nil {
		return fmt.Errorf("write video timestamp: %w", err)
	}
	return nil
}

// SkipMessage is the status shown when the gate withholds a video.
func SkipMessage(remaining time.Duration) string {
	mins := int(math.Ceil(remaining.Minutes()))
	if mins < 1 {
		mins = 1
	}
	return fmt.Sprintf("Skipped: Hourly limit active. Try again in %d mins.", mins)
}

var _ RateLimiter = (*CooldownLimiter)(nil)
