package router

import (
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tg "github.com/gamersarena/arenabot/core/telegram"
	"github.com/gamersarena/arenabot/core/telegram/commands"

	tele "gopkg.in/telebot.v4"
)

type fakeContext struct {
	tele.Context

	update    tele.Update
	sender    *tele.User
	store     map[string]interface{}
	responded int
}

func newContext(userID int64, upd tele.Update) *fakeContext {
	return &fakeContext{
		update: upd,
		sender: &tele.User{ID: userID},
		store:  map[string]interface{}{},
	}
}

func (f *fakeContext) Update() tele.Update           { return f.update }
func (f *fakeContext) Sender() *tele.User            { return f.sender }
func (f *fakeContext) Chat() *tele.Chat              { return &tele.Chat{ID: f.sender.ID} }
func (f *fakeContext) Callback() *tele.Callback      { return f.update.Callback }
func (f *fakeContext) Get(key string) interface{}    { return f.store[key] }
func (f *fakeContext) Set(key string, v interface{}) { f.store[key] = v }
func (f *fakeContext) Respond(...*tele.CallbackResponse) error {
	f.responded++
	return nil
}

func (f *fakeContext) Text() string {
	if f.update.Message == nil {
		return ""
	}
	return f.update.Message.Text
}

func textContext(userID int64, s string) *fakeContext {
	return newContext(userID, tele.Update{Message: &tele.Message{Text: s}})
}

type fakeFSM struct {
	active  map[int64]bool
	handled []string
}

func (f *fakeFSM) InProgress(userID int64) bool { return f.active[userID] }

func (f *fakeFSM) ManagerHandler(c tele.Context) error {
	f.handled = append(f.handled, c.Text())
	return nil
}

func TestTextRoutePrefersActiveConversation(t *testing.T) {
	fsm := &fakeFSM{active: map[int64]bool{1: true}}
	var unknown []string
	route := TextRoute(fsm, tg.NewRegistry(), TextOptions{
		UnknownText: func(c tele.Context) error {
			unknown = append(unknown, c.Text())
			return nil
		},
	})
	assert.Equal(t, tele.OnText, route.Endpoint)

	require.NoError(t, route.Handler(textContext(1, "PUBG123")))
	require.NoError(t, route.Handler(textContext(2, "PUBG123")))

	assert.Equal(t, []string{"PUBG123"}, fsm.handled)
	assert.Equal(t, []string{"PUBG123"}, unknown)
}

func TestTextRouteFallbackOrder(t *testing.T) {
	reg := tg.NewRegistry()
	var got []string
	record := func(name string) tele.HandlerFunc {
		return func(tele.Context) error {
			got = append(got, name)
			return nil
		}
	}
	require.NoError(t, reg.RegisterCommand("/start", commands.Command{
		Handler:     record("start"),
		Description: "Register",
		Aliases:     []string{"register"},
	}))

	route := TextRoute(&fakeFSM{}, reg, TextOptions{UnknownText: record("unknown")})
	require.NoError(t, route.Handler(textContext(1, "register")))
	require.NoError(t, route.Handler(textContext(1, "hello")))

	reg.SetTextFallback(record("fallback"))
	require.NoError(t, route.Handler(textContext(1, "hello")))

	assert.Equal(t, []string{"start", "unknown", "fallback"}, got)
}

func TestTextRouteWithoutHandlersIsQuiet(t *testing.T) {
	route := TextRoute(nil, nil, TextOptions{})
	assert.NoError(t, route.Handler(textContext(1, "hello")))
}

func TestTextRouteRecoversPanics(t *testing.T) {
	route := TextRoute(nil, nil, TextOptions{
		UnknownText: func(tele.Context) error { panic("boom") },
	})
	err := route.Handler(textContext(1, "hello"))
	require.Error(t, err)
	assert.Equal(t, "PANIC", errorCode(err))
}

func statsRoute(t *testing.T, reg *tg.Registry, opts CommandRouteOptions) tg.Route {
	t.Helper()
	for _, r := range CommandRoutes(reg, opts) {
		if r.Endpoint == "/stats" {
			return r
		}
	}
	t.Fatal("no /stats route")
	return tg.Route{}
}

func TestCommandRoutesGateAdminCommands(t *testing.T) {
	reg := tg.NewRegistry()
	var stats, starts, rejected int
	require.NoError(t, reg.RegisterCommand("/stats", commands.Command{
		Handler:     func(tele.Context) error { stats++; return nil },
		Description: "Counters",
		AdminOnly:   true,
	}))
	require.NoError(t, reg.RegisterCommand("/start", commands.Command{
		Handler:     func(tele.Context) error { starts++; return nil },
		Description: "Register",
	}))

	opts := CommandRouteOptions{
		AdminID:       9,
		OnAdminReject: func(tele.Context) error { rejected++; return nil },
	}
	routes := CommandRoutes(reg, opts)
	require.Len(t, routes, 2)

	route := statsRoute(t, reg, opts)
	require.NoError(t, route.Handler(textContext(42, "/stats")))
	assert.Equal(t, 0, stats)
	assert.Equal(t, 1, rejected)

	require.NoError(t, route.Handler(textContext(9, "/stats")))
	assert.Equal(t, 1, stats)

	for _, r := range routes {
		if r.Endpoint == "/start" {
			require.NoError(t, r.Handler(textContext(42, "/start")))
		}
	}
	assert.Equal(t, 1, starts)
}

func TestCommandRoutesWithoutAdminRejectEveryone(t *testing.T) {
	reg := tg.NewRegistry()
	var stats int
	require.NoError(t, reg.RegisterCommand("/stats", commands.Command{
		Handler:     func(tele.Context) error { stats++; return nil },
		Description: "Counters",
		AdminOnly:   true,
	}))
	route := statsRoute(t, reg, CommandRouteOptions{})
	require.NoError(t, route.Handler(textContext(9, "/stats")))
	assert.Zero(t, stats)
}

func TestCallbackRoute(t *testing.T) {
	reg := tg.NewRegistry()
	var payloads []string
	require.NoError(t, reg.RegisterCallback("game", func(c tele.Context) error {
		payloads = append(payloads, c.Callback().Data)
		return nil
	}))
	var missing int
	route := CallbackRoute(reg, CallbackOptions{NotFound: func(tele.Context) error { missing++; return nil }})
	assert.Equal(t, tele.OnCallback, route.Endpoint)

	c := newContext(1, tele.Update{Callback: &tele.Callback{Unique: "game", Data: "BGMI"}})
	require.NoError(t, route.Handler(c))
	assert.Equal(t, []string{"BGMI"}, payloads)
	assert.Equal(t, 1, c.responded)

	c = newContext(1, tele.Update{Callback: &tele.Callback{Data: "\fstale|x"}})
	require.NoError(t, route.Handler(c))
	assert.Equal(t, 1, missing)
	assert.Equal(t, 1, c.responded)

	reg.SetCallbackNotFound(func(tele.Context) error { return errors.New("expired") })
	assert.EqualError(t, route.Handler(c), "expired")
}

func TestCallbackRouteIgnoresOtherUpdates(t *testing.T) {
	route := CallbackRoute(tg.NewRegistry(), CallbackOptions{})
	c := textContext(1, "hi")
	assert.NoError(t, route.Handler(c))
	assert.Zero(t, c.responded)
}

func TestEventRoutePropagatesErrors(t *testing.T) {
	boom := errors.New("send failed")
	route := EventRoute(tele.OnPayment, "payment", func(tele.Context) error { return boom })
	assert.Equal(t, tele.OnPayment, route.Endpoint)
	assert.ErrorIs(t, route.Handler(textContext(1, "")), boom)
}

func TestErrorCode(t *testing.T) {
	dial := &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("no route to host")}
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"dial failure", fmt.Errorf("send: %w", dial), "NETWORK"},
		{"api error", fmt.Errorf("send: %w", tele.ErrBlockedByUser), "TELEGRAM_API"},
		{"panic", errors.New("handler panic: nil map"), "PANIC"},
		{"other", errors.New("sheetdb: 500"), "INTERNAL"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, errorCode(tc.err))
		})
	}
}

func TestNormalizeHandlerName(t *testing.T) {
	assert.Equal(t, "start", normalizeHandlerName("/start"))
	assert.Equal(t, "my_cmd", normalizeHandlerName(" My Cmd "))
	assert.Equal(t, "unknown", normalizeHandlerName(""))
}
