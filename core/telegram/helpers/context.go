package helpers

import (
	"context"

	"github.com/gamersarena/arenabot/core/logger"

	tele "gopkg.in/telebot.v4"
)

const contextKey = "log_ctx"

// BuildContext returns the request context for the update in c, creating it
// on first use. Log lines written with it carry the update's rid and ids.
func BuildContext(c tele.Context) context.Context {
	if ctx, ok := c.Get(contextKey).(context.Context); ok {
		return ctx
	}
	m := logger.Meta{UpdateID: c.Update().ID}
	if u := c.Sender(); u != nil {
		m.UserID = u.ID
	}
	if ch := c.Chat(); ch != nil {
		m.ChatID = ch.ID
	}
	ctx := logger.WithMeta(context.Background(), m)
	c.Set(contextKey, ctx)
	return ctx
}

// WithHandler tags the update context with the handler serving it.
func WithHandler(c tele.Context, handler string) context.Context {
	ctx := logger.WithHandler(BuildContext(c), handler)
	c.Set(contextKey, ctx)
	return ctx
}
