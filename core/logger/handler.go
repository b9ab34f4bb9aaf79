package logger

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"
)

const (
	formatJSON = "json"
	formatKV   = "kv"

	timeFormatMillis = "2006-01-02T15:04:05.000Z07:00"
)

// newHandler builds the slog handler for the given format, wrapped so that
// update metadata from the context lands on every record.
func newHandler(w io.Writer, format string, lvl slog.Leveler) slog.Handler {
	opts := &slog.HandlerOptions{Level: lvl, ReplaceAttr: replaceAttr}
	if format == formatJSON {
		return metaHandler{next: slog.NewJSONHandler(w, opts)}
	}
	return metaHandler{next: slog.NewTextHandler(w, opts)}
}

type metaHandler struct {
	next slog.Handler
}

func (h metaHandler) Enabled(ctx context.Context, lvl slog.Level) bool {
	return h.next.Enabled(ctx, lvl)
}

func (h metaHandler) Handle(ctx context.Context, r slog.Record) error {
	m, ok := MetaFrom(ctx)
	if !ok {
		return h.next.Handle(ctx, r)
	}
	present := make(map[string]bool, r.NumAttrs())
	r.Attrs(func(a slog.Attr) bool {
		present[a.Key] = true
		return true
	})
	for _, a := range m.attrs() {
		if !present[a.Key] {
			r.AddAttrs(a)
		}
	}
	return h.next.Handle(ctx, r)
}

func (h metaHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return metaHandler{next: h.next.WithAttrs(attrs)}
}

func (h metaHandler) WithGroup(name string) slog.Handler {
	return metaHandler{next: h.next.WithGroup(name)}
}

// replaceAttr renames the time key, drops empty messages and renders
// durations as whole milliseconds under a key ending in _ms.
func replaceAttr(groups []string, a slog.Attr) slog.Attr {
	if len(groups) == 0 {
		switch a.Key {
		case slog.TimeKey:
			return slog.String("ts", a.Value.Time().UTC().Format(timeFormatMillis))
		case slog.MessageKey:
			if a.Value.String() == "" {
				return slog.Attr{}
			}
		}
	}
	switch a.Value.Kind() {
	case slog.KindDuration:
		return slog.Int64(durationKey(a.Key), RoundMS(a.Value.Duration()).Milliseconds())
	case slog.KindString:
		return slog.String(a.Key, strings.TrimSpace(a.Value.String()))
	case slog.KindAny:
		if err, ok := a.Value.Any().(error); ok {
			return slog.String(a.Key, err.Error())
		}
	}
	return a
}

func durationKey(key string) string {
	switch {
	case key == "duration":
		return "duration_ms"
	case strings.HasSuffix(key, "_ms"):
		return key
	}
	return key + "_ms"
}

// Status maps an error to the status value used in log lines.
func Status(err error) string {
	if err != nil {
		return "fail"
	}
	return "ok"
}

// Took returns the rounded duration since start.
func Took(start time.Time) time.Duration {
	return RoundMS(time.Since(start))
}

// RoundMS rounds d to the nearest millisecond.
func RoundMS(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	return d.Round(time.Millisecond)
}
