package router

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/gamersarena/arenabot/core/logger"
	tghelpers "github.com/gamersarena/arenabot/core/telegram/helpers"
	"github.com/gamersarena/arenabot/core/telegram/middleware"
	"github.com/gamersarena/arenabot/core/telegram/netutil"

	tele "gopkg.in/telebot.v4"
)

// handleWithSummary runs fn and writes one handler.handled line for it.
// An empty status is derived from the error.
func handleWithSummary(c tele.Context, name string, status string, fn func() error, extras ...slog.Attr) error {
	start := time.Now()
	ctx := tghelpers.WithHandler(c, name)
	err := fn()

	if status == "" {
		status = logger.Status(err)
	}
	msgs, kb := middleware.GetCounters(c)
	attrs := []slog.Attr{
		slog.String("status", status),
		slog.Int("messages", msgs),
		slog.Bool("kb", kb),
		slog.Duration("duration", logger.Took(start)),
	}
	if err != nil {
		attrs = append(attrs,
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
			slog.String("err_code", errorCode(err)),
		)
	}
	logger.Info(ctx, "tg", "handler.handled", append(attrs, extras...)...)
	return err
}

func normalizeHandlerName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "unknown"
	}
	name = strings.TrimPrefix(name, "/")
	name = strings.ReplaceAll(name, " ", "_")
	return strings.ToLower(name)
}

// errorCode classifies a handler error for log filtering.
func errorCode(err error) string {
	var tgErr *tele.Error
	switch {
	case netutil.IsTransient(err):
		return "NETWORK"
	case errors.As(err, &tgErr):
		return "TELEGRAM_API"
	case strings.HasPrefix(err.Error(), "handler panic"):
		return "PANIC"
	}
	return "INTERNAL"
}
