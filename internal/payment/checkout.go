package payment

import (
	"context"
	"log/slog"

	"github.com/gamersarena/arenabot/core/logger"
)

// DenyMessage is shown to the buyer when pre-checkout fails.
const DenyMessage = "Something went wrong..."

// CompletedMessage acknowledges a successful payment.
const CompletedMessage = "Thank you for your payment! Your registration is complete."

// Decision is the answer to a pre-checkout query.
type Decision struct {
	Approved bool
	// Reason is the user-facing message for a denial.
	Reason string
	Err    error
}

// Checkout answers pre-checkout queries and records completed payments.
type Checkout struct {
	verifier *Verifier
}

// NewCheckout uses v to validate payloads.
func NewCheckout(v *Verifier) *Checkout {
	return &Checkout{verifier: v}
}

// PreCheckout approves exactly the payloads issued by the verifier.
func (c *Checkout) PreCheckout(ctx context.Context, payload string, total int, currency string) Decision {
	d := Decision{Approved: true}
	if err := c.verifier.Check(payload); err != nil {
		d = Decision{Reason: DenyMessage, Err: err}
	}

	outcome := "approved"
	level := slog.LevelInfo
	if !d.Approved {
		outcome = "denied"
		level = slog.LevelWarn
	}
	logger.Event(ctx, "payment", level, "payment.precheckout",
		slog.String("status", "ok"),
		slog.String("outcome", outcome),
		slog.Bool("approved", d.Approved),
		slog.Int("amount", total),
		slog.String("currency", currency),
		slog.String("payload", logger.SanitizeLimit(payload, 64)),
	)
	return d
}

// Completed retires the payload of a finished payment and returns the acknowledgement.
func (c *Checkout) Completed(ctx context.Context, payload string, total int, currency string) string {
	known := c.verifier.Check(payload) == nil
	c.verifier.Retire(payload)

	attrs := []slog.Attr{
		slog.String("status", "ok"),
		slog.Int("amount", total),
		slog.String("currency", currency),
	}
	if !known {
		attrs = append(attrs, slog.String("reason", "unknown_payload"))
	}
	logger.Info(ctx, "payment", "payment.completed", attrs...)
	return CompletedMessage
}
