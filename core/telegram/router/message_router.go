package router

import (
	tg "github.com/gamersarena/arenabot/core/telegram"
	"github.com/gamersarena/arenabot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// FSM defines the minimal interface for an FSM state router.
type FSM interface {
	InProgress(userID int64) bool
	ManagerHandler(c tele.Context) error
}

// TextOptions controls fallback behaviour for text updates.
type TextOptions struct {
	UnknownText tele.HandlerFunc
}

// TextRoute builds the handler for plain text: active conversations first,
// then command aliases, then fallbacks.
func TextRoute(fsm FSM, reg *tg.Registry, opts TextOptions) tg.Route {
	handler := func(c tele.Context) error {
		if fsm != nil && c.Sender() != nil && fsm.InProgress(c.Sender().ID) {
			return handleWithSummary(c, "fsm", "", func() error {
				return fsm.ManagerHandler(c)
			})
		}

		if reg != nil {
			if key, cmd, ok := reg.LookupCommand(c.Text()); ok && cmd.Handler != nil {
				return handleWithSummary(c, normalizeHandlerName(key), "", func() error {
					return cmd.Handler(c)
				})
			}
			if fb := reg.TextFallback(); fb != nil {
				return handleWithSummary(c, "fallback", "", func() error { return fb(c) })
			}
		}

		if opts.UnknownText != nil {
			return handleWithSummary(c, "unknown_text", "", func() error {
				return opts.UnknownText(c)
			})
		}
		return handleWithSummary(c, "unknown_text", "skip", func() error { return nil })
	}

	return tg.Route{
		Endpoint: tele.OnText,
		Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(handler)),
	}
}

// EventRoute wraps an arbitrary endpoint (payments, membership changes) with the
// shared recover/logging middleware and a handler summary line.
func EventRoute(endpoint string, name string, h tele.HandlerFunc) tg.Route {
	handler := func(c tele.Context) error {
		return handleWithSummary(c, name, "", func() error { return h(c) })
	}
	return tg.Route{
		Endpoint: endpoint,
		Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(handler)),
	}
}
