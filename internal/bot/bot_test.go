package bot

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamersarena/arenabot/internal/catalog"
	"github.com/gamersarena/arenabot/internal/flow"
	"github.com/gamersarena/arenabot/internal/payment"
	"github.com/gamersarena/arenabot/internal/registration"

	tele "gopkg.in/telebot.v4"
)

// fakeContext implements the parts of tele.Context the handlers touch.
type fakeContext struct {
	tele.Context

	update tele.Update
	sender *tele.User
	chat   *tele.Chat
	text   string
	cb     *tele.Callback

	sendErr  error
	store    map[string]interface{}
	sent     []interface{}
	sendOpts [][]interface{}
	edited   []string
	accepted [][]string
}

func newFakeContext(u *tele.User) *fakeContext {
	return &fakeContext{
		sender: u,
		chat:   &tele.Chat{ID: u.ID, Type: tele.ChatPrivate},
		store:  map[string]interface{}{},
	}
}

func (f *fakeContext) Update() tele.Update      { return f.update }
func (f *fakeContext) Sender() *tele.User       { return f.sender }
func (f *fakeContext) Chat() *tele.Chat         { return f.chat }
func (f *fakeContext) Text() string             { return f.text }
func (f *fakeContext) Callback() *tele.Callback { return f.cb }
func (f *fakeContext) Message() *tele.Message   { return f.update.Message }
func (f *fakeContext) PreCheckoutQuery() *tele.PreCheckoutQuery {
	return f.update.PreCheckoutQuery
}
func (f *fakeContext) ChatMember() *tele.ChatMemberUpdate { return f.update.ChatMember }
func (f *fakeContext) Get(key string) interface{}         { return f.store[key] }
func (f *fakeContext) Set(key string, v interface{})      { f.store[key] = v }

func (f *fakeContext) Send(what interface{}, opts ...interface{}) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, what)
	f.sendOpts = append(f.sendOpts, opts)
	return nil
}

func (f *fakeContext) Edit(what interface{}, _ ...interface{}) error {
	if s, ok := what.(string); ok {
		f.edited = append(f.edited, s)
	}
	return nil
}

func (f *fakeContext) Accept(msg ...string) error {
	f.accepted = append(f.accepted, msg)
	return nil
}

type memStore struct {
	mu   sync.Mutex
	recs []registration.Record
}

func (s *memStore) Submit(_ context.Context, rec registration.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs = append(s.recs, rec)
	return nil
}

func (s *memStore) Name() string { return "mem" }

func newDispatcher(t *testing.T, store registration.Store) *Dispatcher {
	t.Helper()
	cfg := payment.Config{ProviderToken: "provider:TEST"}
	require.NoError(t, cfg.Normalize())
	gw := payment.NewGateway(cfg)
	m, err := flow.New(flow.Options{Catalog: catalog.Default(), Store: store, Gateway: gw})
	require.NoError(t, err)
	d, err := New(Options{
		Machine:       m,
		Checkout:      payment.NewCheckout(gw.Verifier()),
		ProviderToken: gw.ProviderToken(),
		AdminID:       1,
	})
	require.NoError(t, err)
	return d
}

var player = &tele.User{ID: 42, FirstName: "Asha", LastName: "Rao"}

func TestRegistryContents(t *testing.T) {
	d := newDispatcher(t, &memStore{})
	visible := d.Registry().ListCommands(true)
	assert.Equal(t, []tele.Command{
		{Text: "cancel", Description: "Cancel the current registration"},
		{Text: "start", Description: "Register for a tournament"},
	}, visible)
	assert.Equal(t, []string{"cancel", "game", "tournament"}, d.Registry().ListCallbacks())

	endpoints := map[interface{}]bool{}
	for _, r := range d.Routes() {
		endpoints[r.Endpoint] = true
	}
	for _, ep := range []string{"/start", "/cancel", "/stats", tele.OnCallback, tele.OnText, tele.OnCheckout, tele.OnPayment, tele.OnUserJoined, tele.OnChatMember} {
		assert.True(t, endpoints[ep], "missing route %s", ep)
	}
}

func TestConversationThroughHandlers(t *testing.T) {
	store := &memStore{}
	d := newDispatcher(t, store)

	c := newFakeContext(player)
	require.NoError(t, d.onStart(c))
	require.Len(t, c.sent, 1)
	assert.Contains(t, c.sent[0], `<a href="tg://user?id=42">Asha Rao</a>`)

	c = newFakeContext(player)
	c.text = "PUBG123"
	assert.True(t, d.states.InProgress(player.ID))
	require.NoError(t, d.states.ManagerHandler(c))
	require.Len(t, c.sent, 1)
	require.Len(t, c.sendOpts[0], 1)
	opts := c.sendOpts[0][0].(*tele.SendOptions)
	kb := opts.ReplyMarkup.InlineKeyboard
	require.Len(t, kb, 4)
	assert.Equal(t, "BGMI", kb[0][0].Text)
	assert.Equal(t, "Call of Duty", kb[2][0].Text)
	assert.Equal(t, CallbackCancel, kb[3][0].Unique)

	c = newFakeContext(player)
	c.cb = &tele.Callback{Unique: CallbackGame, Data: "BGMI"}
	require.NoError(t, d.onGameSelected(c))
	require.Len(t, c.edited, 1)

	c = newFakeContext(player)
	c.cb = &tele.Callback{Unique: CallbackTournament, Data: "Squad"}
	require.NoError(t, d.onTournamentSelected(c))
	require.Len(t, c.sent, 1)
	inv, ok := c.sent[0].(*tele.Invoice)
	require.True(t, ok)
	assert.Equal(t, "provider:TEST", inv.Token)
	assert.Equal(t, "Custom-Payload", inv.Payload)
	assert.Equal(t, "INR", inv.Currency)
	assert.Equal(t, []tele.Price{{Label: "Entry Fee", Amount: 80000}}, inv.Prices)
	assert.True(t, inv.NeedName)

	assert.Equal(t, []registration.Record{{Name: "Asha Rao", Game: "BGMI", UserID: "PUBG123"}}, store.recs)
	assert.False(t, d.states.InProgress(player.ID))
}

func TestCancelButtonEndsConversation(t *testing.T) {
	d := newDispatcher(t, &memStore{})
	require.NoError(t, d.onStart(newFakeContext(player)))

	c := newFakeContext(player)
	c.cb = &tele.Callback{Unique: CallbackCancel, Data: "cancel"}
	require.NoError(t, d.onCancel(c))
	assert.Equal(t, []interface{}{flow.CancelledText}, c.sent)
	assert.False(t, d.states.InProgress(player.ID))
}

func TestPreCheckoutAnswers(t *testing.T) {
	d := newDispatcher(t, &memStore{})

	c := newFakeContext(player)
	c.update.PreCheckoutQuery = &tele.PreCheckoutQuery{Payload: "Custom-Payload", Total: 80000, Currency: "INR"}
	require.NoError(t, d.onPreCheckout(c))
	assert.Equal(t, [][]string{nil}, c.accepted)

	c = newFakeContext(player)
	c.update.PreCheckoutQuery = &tele.PreCheckoutQuery{Payload: "forged", Total: 80000, Currency: "INR"}
	require.NoError(t, d.onPreCheckout(c))
	assert.Equal(t, [][]string{{payment.DenyMessage}}, c.accepted)
}

func TestPaymentAcknowledged(t *testing.T) {
	d := newDispatcher(t, &memStore{})
	c := newFakeContext(player)
	c.update.Message = &tele.Message{Payment: &tele.Payment{Payload: "Custom-Payload", Total: 80000, Currency: "INR"}}
	require.NoError(t, d.onPayment(c))
	assert.Equal(t, []interface{}{payment.CompletedMessage}, c.sent)
	assert.Equal(t, uint64(1), d.payments.Load())
}

func TestPaymentAckFailureIsReturned(t *testing.T) {
	d := newDispatcher(t, &memStore{})
	c := newFakeContext(player)
	c.sendErr = errors.New("telegram: Bad Gateway (502)")
	c.update.Message = &tele.Message{Payment: &tele.Payment{Payload: "Custom-Payload", Total: 80000, Currency: "INR"}}

	err := d.onPayment(c)
	require.Error(t, err)
	assert.ErrorIs(t, err, c.sendErr)
	assert.Equal(t, uint64(0), d.payments.Load())
}

func TestWelcomeFailureIsReturned(t *testing.T) {
	d := newDispatcher(t, &memStore{})
	c := newFakeContext(player)
	c.sendErr = errors.New("telegram: Forbidden: bot was kicked (403)")
	c.update.Message = &tele.Message{UsersJoined: []tele.User{{ID: 7, FirstName: "Bo"}, {ID: 9, FirstName: "Ines"}}}

	err := d.onUserJoined(c)
	assert.ErrorIs(t, err, c.sendErr)
	assert.Equal(t, uint64(0), d.welcomes.Load())
}

func TestInConversation(t *testing.T) {
	d := newDispatcher(t, &memStore{})
	c := newFakeContext(player)
	assert.False(t, d.InConversation(c))

	require.NoError(t, d.onStart(newFakeContext(player)))
	assert.True(t, d.InConversation(c))
	assert.False(t, d.InConversation(newFakeContext(&tele.User{ID: 43})))

	c.sender = nil
	assert.False(t, d.InConversation(c))
}

func TestWelcomeOnServiceMessage(t *testing.T) {
	d := newDispatcher(t, &memStore{})
	c := newFakeContext(player)
	c.chat = &tele.Chat{ID: -100, Type: tele.ChatSuperGroup}
	c.update.Message = &tele.Message{UsersJoined: []tele.User{
		{ID: 7, FirstName: "Bo", LastName: "Chen"},
		{ID: 8, FirstName: "helper", IsBot: true},
		{ID: 9, FirstName: "Ines"},
	}}
	require.NoError(t, d.onUserJoined(c))
	assert.Equal(t, []interface{}{
		"Hello Bo Chen! Welcome to the group!",
		"Hello Ines! Welcome to the group!",
	}, c.sent)
}

func TestWelcomeOnChatMemberUpdate(t *testing.T) {
	d := newDispatcher(t, &memStore{})
	bo := &tele.User{ID: 7, FirstName: "Bo"}

	cases := []struct {
		name    string
		old     tele.MemberStatus
		new     tele.MemberStatus
		welcome bool
	}{
		{"joined", tele.Left, tele.Member, true},
		{"unbanned and added", tele.Kicked, tele.Member, true},
		{"promoted", tele.Member, tele.Administrator, false},
		{"left", tele.Member, tele.Left, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newFakeContext(player)
			c.update.ChatMember = &tele.ChatMemberUpdate{
				OldChatMember: &tele.ChatMember{User: bo, Role: tc.old},
				NewChatMember: &tele.ChatMember{User: bo, Role: tc.new},
			}
			require.NoError(t, d.onChatMember(c))
			if tc.welcome {
				assert.Equal(t, []interface{}{"Hello Bo! Welcome to the group!"}, c.sent)
			} else {
				assert.Empty(t, c.sent)
			}
		})
	}
}

func TestStatsReportsCounters(t *testing.T) {
	d := newDispatcher(t, &memStore{})
	require.NoError(t, d.onStart(newFakeContext(player)))
	c := newFakeContext(&tele.User{ID: 1})
	require.NoError(t, d.onStats(c))
	require.Len(t, c.sent, 1)
	assert.Contains(t, c.sent[0], "Active sessions: 1")
	assert.Contains(t, c.sent[0], "Started: 1")
}

func TestUnknownTextHintOnlyInPrivate(t *testing.T) {
	h := defaultFallbacks{}.UnknownText()

	c := newFakeContext(player)
	require.NoError(t, h(c))
	assert.Equal(t, []interface{}{StartHint}, c.sent)

	c = newFakeContext(player)
	c.chat = &tele.Chat{ID: -100, Type: tele.ChatGroup}
	require.NoError(t, h(c))
	assert.Empty(t, c.sent)
}
