package logger

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
)

type metaKey struct{}

// Meta identifies the Telegram update a log line belongs to.
type Meta struct {
	RID      string
	UpdateID int
	UserID   int64
	ChatID   int64
	Handler  string
}

// BuildRID returns a compact correlation id: update, chat and user in base36.
func BuildRID(updateID int, chatID, userID int64) string {
	parts := []string{
		strconv.FormatInt(int64(updateID), 36),
		strconv.FormatInt(chatID, 36),
		strconv.FormatInt(userID, 36),
	}
	return strings.Join(parts, ".")
}

// WithMeta stores m in ctx. Every line logged with the returned context carries it.
func WithMeta(ctx context.Context, m Meta) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if m.RID == "" && (m.UpdateID != 0 || m.UserID != 0 || m.ChatID != 0) {
		m.RID = BuildRID(m.UpdateID, m.ChatID, m.UserID)
	}
	return context.WithValue(ctx, metaKey{}, m)
}

// MetaFrom returns the update metadata stored in ctx.
func MetaFrom(ctx context.Context) (Meta, bool) {
	if ctx == nil {
		return Meta{}, false
	}
	m, ok := ctx.Value(metaKey{}).(Meta)
	return m, ok
}

// WithHandler records the handler name on the metadata already in ctx.
func WithHandler(ctx context.Context, handler string) context.Context {
	m, _ := MetaFrom(ctx)
	m.Handler = handler
	return WithMeta(ctx, m)
}

func (m Meta) attrs() []slog.Attr {
	out := make([]slog.Attr, 0, 5)
	if m.RID != "" {
		out = append(out, slog.String("rid", m.RID))
	}
	if m.UpdateID != 0 {
		out = append(out, slog.Int("update_id", m.UpdateID))
	}
	if m.UserID != 0 {
		out = append(out, slog.Int64("user_id", m.UserID))
	}
	if m.ChatID != 0 {
		out = append(out, slog.Int64("chat_id", m.ChatID))
	}
	if m.Handler != "" {
		out = append(out, slog.String("handler", m.Handler))
	}
	return out
}
