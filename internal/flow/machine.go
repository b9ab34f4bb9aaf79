package flow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/gamersarena/arenabot/core/logger"
	"github.com/gamersarena/arenabot/core/telegram/state"
	"github.com/gamersarena/arenabot/internal/catalog"
	"github.com/gamersarena/arenabot/internal/payment"
	"github.com/gamersarena/arenabot/internal/registration"
)

// Options wires a Machine.
type Options struct {
	ArenaName string
	Catalog   *catalog.Catalog
	Store     registration.Store
	Gateway   *payment.Gateway
	// Sessions defaults to an in-memory manager.
	Sessions state.Manager[Session]
}

// Stats are process-lifetime counters.
type Stats struct {
	ActiveSessions      int
	Started             uint64
	Cancelled           uint64
	RegistrationsOK     uint64
	RegistrationsFailed uint64
	InvoicesIssued      uint64
}

// Machine drives every user's conversation. Events for one user run one at a
// time in arrival order; different users never share a session.
type Machine struct {
	arena    string
	catalog  *catalog.Catalog
	store    registration.Store
	gateway  *payment.Gateway
	sessions state.Manager[Session]

	started   atomic.Uint64
	cancelled atomic.Uint64
	regOK     atomic.Uint64
	regFailed atomic.Uint64
	invoices  atomic.Uint64
}

// New validates opts and returns a Machine.
func New(opts Options) (*Machine, error) {
	if opts.Catalog == nil {
		return nil, errors.New("flow: catalog is required")
	}
	if opts.Gateway == nil {
		return nil, errors.New("flow: payment gateway is required")
	}
	if opts.Store == nil {
		return nil, errors.New("flow: registration store is required")
	}
	sessions := opts.Sessions
	if sessions == nil {
		sessions = state.NewMemoryManager[Session]()
	}
	arena := strings.TrimSpace(opts.ArenaName)
	if arena == "" {
		arena = "The Gamers Arena"
	}
	return &Machine{
		arena:    arena,
		catalog:  opts.Catalog,
		store:    opts.Store,
		gateway:  opts.Gateway,
		sessions: sessions,
	}, nil
}

// Sessions exposes the session manager for routing by state.
func (m *Machine) Sessions() state.Manager[Session] { return m.sessions }

// Current returns a copy of the user's session.
func (m *Machine) Current(userID int64) (state.State, Session, error) {
	snap, ok := m.sessions.Snapshot(userID)
	if !ok {
		return StateTerminal, Session{}, ErrNoSession
	}
	return snap.State, snap.Data, nil
}

// Stats returns a snapshot of the counters.
func (m *Machine) Stats() Stats {
	return Stats{
		ActiveSessions:      m.sessions.Len(),
		Started:             m.started.Load(),
		Cancelled:           m.cancelled.Load(),
		RegistrationsOK:     m.regOK.Load(),
		RegistrationsFailed: m.regFailed.Load(),
		InvoicesIssued:      m.invoices.Load(),
	}
}

// Start greets the user and waits for a game id. A conversation already in
// progress is replaced by a fresh one.
func (m *Machine) Start(ctx context.Context, u User, r Replier) (Transition, error) {
	var tr Transition
	err := m.sessions.Do(u.ID, func(s *state.Session[Session]) error {
		tr.From = s.State
		s.Reset()

		if err := r.Send(Prompt{Text: greetingText(m.arena, u.Mention), HTML: true}); err != nil {
			tr.To = s.State
			return fmt.Errorf("send greeting: %w", err)
		}
		s.State = StateAwaitingGameID
		tr.To = s.State
		return nil
	})
	if err == nil {
		m.started.Add(1)
	}
	m.logTransition(ctx, u, tr, err)
	return tr, err
}

// ReceiveGameID stores free text as the game id and offers the game catalog.
func (m *Machine) ReceiveGameID(ctx context.Context, u User, text string, r Replier) (Transition, error) {
	var tr Transition
	err := m.sessions.Do(u.ID, func(s *state.Session[Session]) error {
		tr.From, tr.To = s.State, s.State
		if s.State != StateAwaitingGameID {
			tr.Ignored, tr.Reason = true, ReasonStateMismatch
			return nil
		}
		switch {
		case strings.TrimSpace(text) == "":
			tr.Ignored, tr.Reason = true, ReasonEmptyText
			return nil
		case strings.HasPrefix(text, "/"):
			tr.Ignored, tr.Reason = true, ReasonCommand
			return nil
		}

		err := r.Send(Prompt{
			Text:    gameIDRecordedText(text),
			Set:     OptionsGame,
			Options: gameOptions(m.catalog),
			Cancel:  true,
		})
		if err != nil {
			return fmt.Errorf("send game options: %w", err)
		}
		s.Data.GameID = text
		s.State = StateAwaitingGameSelection
		tr.To = s.State
		return nil
	})
	m.logTransition(ctx, u, tr, err)
	return tr, err
}

// SelectGame resolves a game code and offers the tournament types.
func (m *Machine) SelectGame(ctx context.Context, u User, code string, r Replier) (Transition, error) {
	var tr Transition
	err := m.sessions.Do(u.ID, func(s *state.Session[Session]) error {
		tr.From, tr.To = s.State, s.State
		if s.State != StateAwaitingGameSelection {
			tr.Ignored, tr.Reason = true, ReasonStateMismatch
			return nil
		}
		game, err := m.catalog.ParseGame(code)
		if err != nil {
			tr.Ignored, tr.Reason = true, ReasonUnknownCode
			return nil
		}

		err = r.Edit(Prompt{
			Text:    gameSelectedText(game),
			Set:     OptionsTournament,
			Options: tournamentOptions(m.catalog),
			Cancel:  true,
		})
		if err != nil {
			return fmt.Errorf("edit tournament options: %w", err)
		}
		s.Data.Game = game
		s.State = StateAwaitingTournamentType
		tr.To = s.State
		return nil
	})
	m.logTransition(ctx, u, tr, err)
	return tr, err
}

// SelectTournament records the registration, shows the prize table and sends
// the entry-fee invoice. The session ends here whether or not sending succeeds;
// a failed registration write is reported on the transition and does not stop
// the invoice.
func (m *Machine) SelectTournament(ctx context.Context, u User, code string, r Replier) (Transition, error) {
	var tr Transition
	err := m.sessions.Do(u.ID, func(s *state.Session[Session]) error {
		tr.From, tr.To = s.State, s.State
		if s.State != StateAwaitingTournamentType {
			tr.Ignored, tr.Reason = true, ReasonStateMismatch
			return nil
		}
		tour, err := m.catalog.ParseTournament(code)
		if err != nil {
			tr.Ignored, tr.Reason = true, ReasonUnknownCode
			return nil
		}
		s.Data.Tournament = tour
		data := s.Data
		s.Reset()
		tr.To = s.State

		out := registration.Submit(ctx, m.store, registration.Record{
			Name:   u.FullName,
			Game:   data.Game.Name,
			UserID: data.GameID,
		})
		tr.Registration = &out
		if out.OK() {
			m.regOK.Add(1)
		} else {
			m.regFailed.Add(1)
		}

		inv := m.gateway.EntryInvoice(tour)
		if err := r.Edit(Prompt{Text: detailsText(tour, inv.Currency)}); err != nil {
			m.gateway.Withdraw(inv)
			return fmt.Errorf("edit tournament details: %w", err)
		}
		if err := r.SendInvoice(inv); err != nil {
			m.gateway.Withdraw(inv)
			return fmt.Errorf("send invoice: %w", err)
		}
		tr.Invoice = &inv
		m.invoices.Add(1)
		logger.Info(ctx, "payment", "payment.invoice",
			slog.String("status", "ok"),
			slog.String("tournament", string(tour.Type)),
			slog.Int64("amount", inv.Total()),
			slog.String("currency", inv.Currency),
		)
		return nil
	})
	m.logTransition(ctx, u, tr, err)
	return tr, err
}

// Cancel acknowledges and discards the user's conversation. Without an active
// conversation it does nothing.
func (m *Machine) Cancel(ctx context.Context, u User, r Replier) (Transition, error) {
	var tr Transition
	err := m.sessions.Do(u.ID, func(s *state.Session[Session]) error {
		tr.From = s.State
		if s.State == StateTerminal {
			tr.To = s.State
			tr.Ignored, tr.Reason = true, ReasonNoSession
			return nil
		}
		s.Reset()
		tr.To = s.State
		m.cancelled.Add(1)
		if err := r.Send(Prompt{Text: CancelledText}); err != nil {
			return fmt.Errorf("send cancel ack: %w", err)
		}
		return nil
	})
	m.logTransition(ctx, u, tr, err)
	return tr, err
}

func (m *Machine) logTransition(ctx context.Context, u User, tr Transition, err error) {
	attrs := []slog.Attr{
		slog.String("status", logger.Status(err)),
		slog.Int64("user_id", u.ID),
		slog.String("from", string(tr.From)),
		slog.String("to", string(tr.To)),
	}
	if tr.Ignored {
		attrs = append(attrs, slog.String("reason", tr.Reason))
		logger.Debug(ctx, "flow", "flow.ignored", attrs...)
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("err", err.Error()))
		logger.Warn(ctx, "flow", "flow.transition", attrs...)
		return
	}
	logger.Info(ctx, "flow", "flow.transition", attrs...)
}
