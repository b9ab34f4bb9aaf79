package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	coreconfig "github.com/gamersarena/arenabot/core/config"
	"github.com/gamersarena/arenabot/core/logger"
	tghelpers "github.com/gamersarena/arenabot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// Middleware is a named global middleware; the first in a list runs outermost.
type Middleware struct {
	Name string
	Use  func(next tele.HandlerFunc) tele.HandlerFunc
}

// Route binds a handler to a tele.Bot.Handle endpoint (a command, tele.OnText,
// a *tele.Btn...).
type Route struct {
	Endpoint any
	Handler  tele.HandlerFunc
}

// RunOptions configures RunTelegram and NewBot.
type RunOptions struct {
	Config   *coreconfig.Config
	Registry *Registry

	HTTPClient HTTPClientOptions
	// AllowedUpdates overrides DefaultAllowedUpdates when set.
	AllowedUpdates []string

	Middlewares []Middleware
	Routes      []Route

	// OnError receives handler errors; defaults to a structured log line.
	OnError func(error, tele.Context)

	DisableWebhookCleanup bool

	OnStart func(ctx context.Context, rt Runtime) error
	OnStop  func(ctx context.Context, rt Runtime) error
}

// Runtime exposes the running bot to lifecycle hooks.
type Runtime struct {
	Bot      *tele.Bot
	Registry *Registry
}

// RunTelegram builds the bot and serves updates until ctx is done.
func RunTelegram(ctx context.Context, opts RunOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	bot, err := NewBot(opts)
	if err != nil {
		return err
	}
	rt := Runtime{Bot: bot, Registry: opts.Registry}

	if opts.OnStart != nil {
		if err := opts.OnStart(ctx, rt); err != nil {
			return err
		}
	}

	done := make(chan struct{})
	go func() {
		bot.Start()
		close(done)
	}()
	select {
	case <-ctx.Done():
		bot.Stop()
		<-done
	case <-done:
	}

	if opts.OnStop != nil {
		return opts.OnStop(context.WithoutCancel(ctx), rt)
	}
	return nil
}

// NewBot creates the telebot instance with poller, middlewares, routes and
// the command menu in place. It does not start polling.
func NewBot(opts RunOptions) (*tele.Bot, error) {
	cfg := opts.Config
	if cfg == nil {
		return nil, fmt.Errorf("telegram: nil config provided")
	}
	if opts.Registry == nil {
		opts.Registry = NewRegistry()
	}

	longPoll := time.Duration(cfg.Telegram.LongPollTimeoutSeconds) * time.Second
	if longPoll <= 0 {
		longPoll = 10 * time.Second
	}
	poller := BuildPoller(PollerOptions{
		RunMode:                cfg.Telegram.RunMode,
		LongPollTimeoutSeconds: int(longPoll / time.Second),
		AllowedUpdates:         opts.AllowedUpdates,
		Webhook: WebhookOptions{
			Listen: cfg.Webhook.Listen,
			Port:   cfg.Webhook.Port,
			URL:    cfg.Webhook.URL,
		},
	})
	onError := opts.OnError
	if onError == nil {
		onError = logUpdateError
	}

	start := time.Now()
	bot, err := tele.NewBot(tele.Settings{
		Token:   cfg.Telegram.Token,
		Poller:  poller,
		Client:  BuildHTTPClient(opts.HTTPClient, longPoll),
		OnError: onError,
	})
	if err != nil {
		return nil, fmt.Errorf("telegram: bot initialization failed: %w", err)
	}
	logMode(poller, logger.Took(start))

	if _, polling := poller.(*tele.LongPoller); polling && !opts.DisableWebhookCleanup {
		// A leftover webhook makes getUpdates fail.
		if err := bot.RemoveWebhook(false); err != nil {
			logger.TG.Warn("failed to delete webhook",
				slog.String("event", "delete_webhook"),
				slog.String("err", err.Error()),
			)
		}
	}

	for _, mw := range opts.Middlewares {
		if mw.Use != nil {
			bot.Use(mw.Use)
		}
	}
	for _, route := range opts.Routes {
		if route.Endpoint != nil && route.Handler != nil {
			bot.Handle(route.Endpoint, route.Handler)
		}
	}
	InitBotCommands(bot, opts.Registry)
	return bot, nil
}

func logMode(p tele.Poller, took time.Duration) {
	switch p := p.(type) {
	case *tele.Webhook:
		logger.TG.Info("webhook mode",
			slog.String("event", "mode"),
			slog.String("mode", "webhook"),
			slog.String("listen", p.Listen),
			slog.String("public_url", p.Endpoint.PublicURL),
			slog.Duration("duration", took),
		)
	case *tele.LongPoller:
		logger.TG.Info("polling mode",
			slog.String("event", "mode"),
			slog.String("mode", "polling"),
			slog.Duration("timeout", p.Timeout),
			slog.Duration("duration", took),
		)
	}
}

// logUpdateError reports an update whose handler failed. Other updates keep flowing.
func logUpdateError(err error, c tele.Context) {
	if err == nil {
		return
	}
	ctx := context.Background()
	if c != nil {
		ctx = tghelpers.BuildContext(c)
	}
	logger.Error(ctx, "tg", "update.failed",
		slog.String("status", "fail"),
		slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
	)
}
