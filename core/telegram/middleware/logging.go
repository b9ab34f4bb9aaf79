package middleware

import (
	"log/slog"

	"github.com/gamersarena/arenabot/core/logger"
	"github.com/gamersarena/arenabot/core/telegram/callbacks"
	tghelpers "github.com/gamersarena/arenabot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// LoggerMiddleware attaches the update's log context and writes a debug
// receipt line for it.
func LoggerMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		ctx := tghelpers.BuildContext(c)
		logger.Debug(ctx, "tg", "update.received", receiptAttrs(c)...)
		return next(c)
	}
}

func receiptAttrs(c tele.Context) []slog.Attr {
	attrs := []slog.Attr{
		slog.String("status", "ok"),
		slog.String("kind", Kind(c)),
	}
	if chat := c.Chat(); chat != nil {
		attrs = append(attrs, slog.String("chat_type", string(chat.Type)))
	}
	if u := c.Sender(); u != nil && u.Username != "" {
		attrs = append(attrs, slog.String("username", logger.SanitizeLimit(u.Username, 64)))
	}

	upd := c.Update()
	switch {
	case upd.Callback != nil:
		key, payload := callbacks.ParseCallbackData(upd.Callback)
		attrs = append(attrs,
			slog.String("cb_key", logger.SanitizeLimit(key, 64)),
			slog.String("payload", logger.SanitizeLimit(payload, 128)),
		)
	case upd.PreCheckoutQuery != nil:
		q := upd.PreCheckoutQuery
		attrs = append(attrs,
			slog.String("payload", logger.SanitizeLimit(q.Payload, 128)),
			slog.Int("amount", q.Total),
			slog.String("currency", q.Currency),
		)
	case upd.Message != nil && upd.Message.Payment != nil:
		p := upd.Message.Payment
		attrs = append(attrs, slog.Int("amount", p.Total), slog.String("currency", p.Currency))
	case upd.Message != nil && upd.Message.Text != "":
		attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(upd.Message.Text, 128)))
	}
	return attrs
}
