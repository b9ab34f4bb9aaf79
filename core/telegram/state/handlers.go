package state

import (
	"log/slog"

	"github.com/gamersarena/arenabot/core/logger"
	tghelpers "github.com/gamersarena/arenabot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// StateGetter is the minimal view of a Manager needed to route updates.
type StateGetter interface {
	GetState(userID int64) State
}

// Handlers routes updates to the handler registered for the sender's current state.
type Handlers struct {
	states StateGetter
	byName map[State]tele.HandlerFunc
}

// NewHandlers builds an empty state->handler table backed by the given states.
func NewHandlers(states StateGetter) *Handlers {
	return &Handlers{
		states: states,
		byName: make(map[State]tele.HandlerFunc),
	}
}

// Register associates a state with its handler.
func (h *Handlers) Register(st State, fn tele.HandlerFunc) {
	if fn == nil {
		return
	}
	h.byName[st] = fn
}

// InProgress reports whether the user has a non-idle state.
func (h *Handlers) InProgress(userID int64) bool {
	return h.states.GetState(userID) != StateIdle
}

// ManagerHandler executes the handler registered for the user's current state, if any.
func (h *Handlers) ManagerHandler(c tele.Context) error {
	if c.Sender() == nil {
		return nil
	}
	userID := c.Sender().ID
	current := h.states.GetState(userID)
	ctx := tghelpers.BuildContext(c)
	logger.Debug(ctx, "tg", "fsm.manager",
		slog.String("status", "ok"),
		slog.Int64("user_id", userID),
		slog.String("state", string(current)),
	)

	if fn, ok := h.byName[current]; ok {
		return fn(c)
	}
	return nil
}
