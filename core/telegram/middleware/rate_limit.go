package middleware

import (
	"log/slog"
	"sync"
	"time"

	coreconfig "github.com/gamersarena/arenabot/core/config"
	"github.com/gamersarena/arenabot/core/logger"
	tghelpers "github.com/gamersarena/arenabot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// sweepAt is the table size above which stale users are dropped.
const sweepAt = 1024

// RateLimitOptions configures the per-user rate limit.
type RateLimitOptions struct {
	Interval time.Duration
	// Exclude lists further update kinds (see Kind) that are never limited.
	Exclude map[string]struct{}
	// Exempt passes an update through without counting it.
	Exempt    func(tele.Context) bool
	OnLimited tele.HandlerFunc
}

// RateLimitMiddleware drops updates arriving less than Interval after the
// previous counted update of the same user. Commands and payment updates
// always pass, as do updates matched by Exclude or Exempt; none of them
// count towards the limit.
func RateLimitMiddleware(opts RateLimitOptions) tele.MiddlewareFunc {
	l := &limiter{interval: opts.Interval, last: make(map[int64]time.Time)}
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			user := c.Sender()
			if user == nil || opts.Interval <= 0 || exempt(c, opts) {
				return next(c)
			}
			if l.allow(user.ID, time.Now()) {
				return next(c)
			}
			logger.Warn(tghelpers.BuildContext(c), "tg", "tg.rate_limit",
				slog.String("status", "rate_limited"),
				slog.String("kind", Kind(c)),
			)
			if opts.OnLimited != nil {
				_ = opts.OnLimited(c)
			}
			return nil
		}
	}
}

func exempt(c tele.Context, opts RateLimitOptions) bool {
	kind := Kind(c)
	switch kind {
	case coreconfig.UpdateCommand, coreconfig.UpdateCheckout:
		return true
	}
	if _, ok := opts.Exclude[kind]; ok {
		return true
	}
	return opts.Exempt != nil && opts.Exempt(c)
}

type limiter struct {
	interval time.Duration

	mu   sync.Mutex
	last map[int64]time.Time
}

func (l *limiter) allow(userID int64, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if seen, ok := l.last[userID]; ok && now.Sub(seen) < l.interval {
		return false
	}
	if len(l.last) >= sweepAt {
		for id, seen := range l.last {
			if now.Sub(seen) >= l.interval {
				delete(l.last, id)
			}
		}
	}
	l.last[userID] = now
	return true
}
