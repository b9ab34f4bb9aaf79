package router

import (
	"log/slog"

	tg "github.com/gamersarena/arenabot/core/telegram"
	"github.com/gamersarena/arenabot/core/telegram/callbacks"
	"github.com/gamersarena/arenabot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// CallbackOptions customises fallback behaviour for callbacks.
type CallbackOptions struct {
	NotFound tele.HandlerFunc
}

// CallbackRoute returns a handler that routes callbacks through the registry by their unique key.
func CallbackRoute(reg *tg.Registry, opts CallbackOptions) tg.Route {
	handler := func(c tele.Context) error {
		if c.Callback() == nil {
			return nil
		}
		key, _ := callbacks.ParseCallbackData(c.Callback())
		name := "callback." + normalizeHandlerName(key)

		// Stop the client spinner; handlers never answer with an alert.
		_ = c.Respond()

		h, ok := reg.GetCallback(key)
		if !ok || h == nil {
			h = reg.CallbackNotFound()
			if h == nil {
				h = opts.NotFound
			}
			return handleWithSummary(c, name, "skip", func() error {
				if h != nil {
					return h(c)
				}
				return nil
			}, slog.String("cb_key", key), slog.String("reason", "not_found"))
		}
		return handleWithSummary(c, name, "", func() error { return h(c) }, slog.String("cb_key", key))
	}
	return tg.Route{
		Endpoint: tele.OnCallback,
		Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(handler)),
	}
}
