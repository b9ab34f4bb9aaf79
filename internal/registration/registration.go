// Package registration submits tournament sign-ups to an external record sink.
package registration

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gamersarena/arenabot/core/logger"
)

// ErrRejected marks a sink that answered but did not accept the record.
var ErrRejected = errors.New("registration rejected")

// Record is the write-once row sent to the sink.
type Record struct {
	// Name is the player's display name on the chat platform.
	Name string
	// Game is the display name of the selected game.
	Game string
	// UserID is the in-game identifier the player typed.
	UserID string
}

// Store is an append-only registration sink.
type Store interface {
	Submit(ctx context.Context, rec Record) error
	Name() string
}

// Outcome is the observed result of one submission. A failed submission never
// stops the conversation; callers inspect Err instead.
type Outcome struct {
	Record  Record
	Backend string
	Err     error
	Took    time.Duration
}

// OK reports whether the record was accepted.
func (o Outcome) OK() bool { return o.Err == nil }

// Submit sends rec to store and logs the result under "registration.submit".
func Submit(ctx context.Context, store Store, rec Record) Outcome {
	out := Outcome{Record: rec}
	if store == nil {
		out.Err = errors.New("registration: no store configured")
		return out
	}
	out.Backend = store.Name()

	start := time.Now()
	out.Err = store.Submit(ctx, rec)
	out.Took = time.Since(start)

	attrs := []slog.Attr{
		slog.String("status", logger.Status(out.Err)),
		slog.String("backend", out.Backend),
		slog.String("game", rec.Game),
		slog.Duration("took", logger.RoundMS(out.Took)),
	}
	if out.Err != nil {
		attrs = append(attrs, slog.String("err", out.Err.Error()))
		if errors.Is(out.Err, ErrRejected) {
			attrs = append(attrs, slog.String("err_code", "REJECTED"))
		}
		logger.Error(ctx, "registration", "registration.submit", attrs...)
		return out
	}
	logger.Info(ctx, "registration", "registration.submit", attrs...)
	return out
}
