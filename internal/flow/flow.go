// Package flow implements the per-user registration conversation:
// game id, then game, then tournament type, then invoice.
package flow

import (
	"errors"
	"fmt"

	"github.com/gamersarena/arenabot/core/telegram/state"
	"github.com/gamersarena/arenabot/internal/catalog"
	"github.com/gamersarena/arenabot/internal/payment"
	"github.com/gamersarena/arenabot/internal/registration"
)

// Conversation states. Terminal is the idle state: sessions reaching it are discarded.
const (
	StateAwaitingGameID         state.State = "awaiting_game_id"
	StateAwaitingGameSelection  state.State = "awaiting_game_selection"
	StateAwaitingTournamentType state.State = "awaiting_tournament_type"
	StateTerminal                           = state.StateIdle
)

// ErrNoSession is returned when a user has no conversation in progress.
var ErrNoSession = errors.New("flow: no active session")

// Session holds the fields collected so far, set strictly in declaration order.
type Session struct {
	GameID     string
	Game       catalog.Game
	Tournament catalog.Tournament
}

// User identifies who an event came from.
type User struct {
	ID       int64
	FullName string
	// Mention is an HTML link to the user, used in the greeting.
	Mention string
}

// OptionSet tells the transport which callback family a keyboard belongs to.
type OptionSet string

const (
	OptionsGame       OptionSet = "game"
	OptionsTournament OptionSet = "tournament"
)

// Option is one selectable button; Value is the raw code sent back on tap.
type Option struct {
	Label string
	Value string
}

// Prompt is an outbound message with optional selectable options.
type Prompt struct {
	Text    string
	HTML    bool
	Set     OptionSet
	Options []Option
	// Cancel adds a button that cancels the conversation.
	Cancel bool
}

// Replier is the outbound side of the chat transport for the current event.
type Replier interface {
	Send(p Prompt) error
	// Edit replaces the message the current selection came from.
	Edit(p Prompt) error
	SendInvoice(inv payment.Invoice) error
}

// Transition describes what one event did to a session.
type Transition struct {
	From    state.State
	To      state.State
	Ignored bool
	Reason  string

	Registration *registration.Outcome
	Invoice      *payment.Invoice
}

func (t Transition) String() string {
	if t.Ignored {
		return fmt.Sprintf("%s (ignored: %s)", t.From, t.Reason)
	}
	return fmt.Sprintf("%s -> %s", t.From, t.To)
}

// Reasons attached to ignored transitions.
const (
	ReasonStateMismatch = "state_mismatch"
	ReasonUnknownCode   = "unknown_code"
	ReasonEmptyText     = "empty_text"
	ReasonCommand       = "command"
	ReasonNoSession     = "no_session"
)
