// Package bot routes Telegram updates to the registration flow, the payment
// checkout and the group welcome.
package bot

import (
	"errors"
	"sync/atomic"

	tg "github.com/gamersarena/arenabot/core/telegram"
	"github.com/gamersarena/arenabot/core/telegram/commands"
	"github.com/gamersarena/arenabot/core/telegram/router"
	"github.com/gamersarena/arenabot/core/telegram/state"
	"github.com/gamersarena/arenabot/core/telegram/ui"
	"github.com/gamersarena/arenabot/internal/flow"
	"github.com/gamersarena/arenabot/internal/payment"

	tele "gopkg.in/telebot.v4"
)

// Callback keys. Game and tournament keys match the flow option sets.
const (
	CallbackGame       = string(flow.OptionsGame)
	CallbackTournament = string(flow.OptionsTournament)
	CallbackCancel     = "cancel"
)

// Options wires a Dispatcher.
type Options struct {
	Machine       *flow.Machine
	Checkout      *payment.Checkout
	ProviderToken string
	AdminID       int64
	// Fallbacks handles text outside a conversation; nil uses the default hint.
	Fallbacks ui.FallbackProvider
}

// Dispatcher owns the command/callback registry and the state routing table.
type Dispatcher struct {
	machine   *flow.Machine
	checkout  *payment.Checkout
	token     string
	adminID   int64
	fallbacks ui.FallbackProvider

	registry *tg.Registry
	states   *state.Handlers

	payments atomic.Uint64
	welcomes atomic.Uint64
}

// New registers all commands, callbacks and state handlers.
func New(opts Options) (*Dispatcher, error) {
	if opts.Machine == nil {
		return nil, errors.New("bot: flow machine is required")
	}
	if opts.Checkout == nil {
		return nil, errors.New("bot: checkout is required")
	}
	d := &Dispatcher{
		machine:   opts.Machine,
		checkout:  opts.Checkout,
		token:     opts.ProviderToken,
		adminID:   opts.AdminID,
		fallbacks: opts.Fallbacks,
		registry:  tg.NewRegistry(),
		states:    state.NewHandlers(opts.Machine.Sessions()),
	}
	if d.fallbacks == nil {
		d.fallbacks = defaultFallbacks{}
	}

	cmds := map[string]commands.Command{
		"/start":  {Handler: d.onStart, Description: "Register for a tournament"},
		"/cancel": {Handler: d.onCancel, Description: "Cancel the current registration"},
		"/stats":  {Handler: d.onStats, Description: "Bot statistics", AdminOnly: true, Hidden: true},
	}
	for name, cmd := range cmds {
		if err := d.registry.RegisterCommand(name, cmd); err != nil {
			return nil, err
		}
	}

	cbs := map[string]tele.HandlerFunc{
		CallbackGame:       d.onGameSelected,
		CallbackTournament: d.onTournamentSelected,
		CallbackCancel:     d.onCancel,
	}
	for key, h := range cbs {
		if err := d.registry.RegisterCallback(key, h); err != nil {
			return nil, err
		}
	}
	d.registry.SetCallbackNotFound(d.fallbacks.UnknownCallback())

	d.states.Register(flow.StateAwaitingGameID, d.onGameID)
	return d, nil
}

// Registry exposes registered commands and callbacks.
func (d *Dispatcher) Registry() *tg.Registry { return d.registry }

// InConversation reports whether the sender of c is inside a registration
// conversation. Such updates are never rate limited.
func (d *Dispatcher) InConversation(c tele.Context) bool {
	return c.Sender() != nil && d.states.InProgress(c.Sender().ID)
}

// Routes returns every handler the bot serves.
func (d *Dispatcher) Routes() []tg.Route {
	routes := router.CommandRoutes(d.registry, router.CommandRouteOptions{AdminID: d.adminID})
	routes = append(routes,
		router.CallbackRoute(d.registry, router.CallbackOptions{}),
		router.TextRoute(d.states, d.registry, router.TextOptions{UnknownText: d.fallbacks.UnknownText()}),
		router.EventRoute(tele.OnCheckout, "payment.precheckout", d.onPreCheckout),
		router.EventRoute(tele.OnPayment, "payment.completed", d.onPayment),
		router.EventRoute(tele.OnUserJoined, "welcome.joined", d.onUserJoined),
		router.EventRoute(tele.OnChatMember, "welcome.chat_member", d.onChatMember),
	)
	return routes
}
