package telegram

import (
	"time"

	coreconfig "github.com/gamersarena/arenabot/core/config"
	"github.com/gamersarena/arenabot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// MiddlewareOptions carries bot-specific hooks for DefaultMiddlewares.
type MiddlewareOptions struct {
	// Exempt keeps matching updates out of the rate limit, e.g. replies
	// inside an active conversation.
	Exempt    func(tele.Context) bool
	OnLimited tele.HandlerFunc
}

// DefaultMiddlewares builds the global chain: recover, rate limit (when
// configured) and send counters. Routes add their own logging.
func DefaultMiddlewares(cfg *coreconfig.Config, opts MiddlewareOptions) []Middleware {
	mws := []Middleware{{Name: "recover", Use: middleware.RecoverMiddleware}}

	if cfg != nil && cfg.RateLimit.IntervalMS > 0 {
		exclude := make(map[string]struct{}, len(cfg.RateLimit.ExcludeUpdates))
		for _, kind := range cfg.RateLimit.ExcludeUpdates {
			exclude[kind] = struct{}{}
		}
		mws = append(mws, Middleware{
			Name: "rate_limit",
			Use: middleware.RateLimitMiddleware(middleware.RateLimitOptions{
				Interval:  time.Duration(cfg.RateLimit.IntervalMS) * time.Millisecond,
				Exclude:   exclude,
				Exempt:    opts.Exempt,
				OnLimited: opts.OnLimited,
			}),
		})
	}

	return append(mws, Middleware{Name: "metrics", Use: middleware.MessageMetricsMiddleware})
}
