// Package app assembles the arena bot from configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gamersarena/arenabot/core/bootstrap"
	"github.com/gamersarena/arenabot/core/logger"
	tg "github.com/gamersarena/arenabot/core/telegram"
	"github.com/gamersarena/arenabot/internal/bot"
	"github.com/gamersarena/arenabot/internal/config"
	"github.com/gamersarena/arenabot/internal/flow"
	"github.com/gamersarena/arenabot/internal/payment"
	"github.com/gamersarena/arenabot/internal/registration"
)

// App holds the wired bot and the infrastructure it owns.
type App struct {
	cfg        *config.Config
	infra      *bootstrap.Result
	redis      *redis.Client
	store      registration.Store
	machine    *flow.Machine
	dispatcher *bot.Dispatcher
}

// Hooks override infrastructure steps, mainly for tests.
type Hooks struct {
	Bootstrap func(bootstrap.Options) (*bootstrap.Result, error)
	Redis     func(config.RedisConfig) (*redis.Client, error)
}

// Bootstrap initialises logging, the registration backend and the dispatcher.
func Bootstrap(cfg *config.Config) (*App, error) {
	return BootstrapWith(cfg, Hooks{})
}

// BootstrapWith is Bootstrap with overridable infrastructure hooks.
func BootstrapWith(cfg *config.Config, hooks Hooks) (*App, error) {
	if cfg == nil {
		return nil, errors.New("app: nil config")
	}
	runBootstrap := hooks.Bootstrap
	if runBootstrap == nil {
		runBootstrap = bootstrap.Run
	}
	openRedis := hooks.Redis
	if openRedis == nil {
		openRedis = connectRedis
	}

	opts := bootstrap.Options{Config: cfg.CoreConfig()}
	if cfg.Registration.Backend == registration.BackendPostgres {
		db := cfg.Database
		opts.Database = &db
	}
	infra, err := runBootstrap(opts)
	if err != nil {
		return nil, err
	}

	a := &App{cfg: cfg, infra: infra}
	if cfg.Registration.Backend == registration.BackendRedis {
		if a.redis, err = openRedis(cfg.Redis); err != nil {
			_ = a.Close()
			return nil, err
		}
	}

	if err := a.wire(); err != nil {
		_ = a.Close()
		return nil, err
	}

	logger.Info(context.Background(), "app", "app.wired",
		slog.String("status", "ok"),
		slog.String("backend", a.store.Name()),
		slog.Bool("bind_session_token", cfg.Payment.BindSessionToken),
	)
	return a, nil
}

func (a *App) wire() error {
	cat, err := a.cfg.BuildCatalog()
	if err != nil {
		return err
	}

	var deps registration.Backends
	if a.infra != nil {
		deps.DB = a.infra.DB
	}
	deps.Redis = a.redis
	if a.store, err = registration.Open(a.cfg.Registration, deps); err != nil {
		return err
	}

	gw := payment.NewGateway(a.cfg.Payment)
	if a.machine, err = flow.New(flow.Options{
		ArenaName: a.cfg.Arena.Name,
		Catalog:   cat,
		Store:     a.store,
		Gateway:   gw,
	}); err != nil {
		return err
	}

	a.dispatcher, err = bot.New(bot.Options{
		Machine:       a.machine,
		Checkout:      payment.NewCheckout(gw.Verifier()),
		ProviderToken: gw.ProviderToken(),
		AdminID:       a.cfg.Telegram.AdminID,
	})
	return err
}

// Machine exposes the conversation machine.
func (a *App) Machine() *flow.Machine { return a.machine }

// TelegramRunOptions builds the options consumed by the core runner.
func (a *App) TelegramRunOptions() (tg.RunOptions, error) {
	if a.dispatcher == nil {
		return tg.RunOptions{}, errors.New("app: dispatcher not wired")
	}
	core := a.cfg.CoreConfig()
	return tg.RunOptions{
		Config:   core,
		Registry: a.dispatcher.Registry(),
		Middlewares: tg.DefaultMiddlewares(core, tg.MiddlewareOptions{
			Exempt: a.dispatcher.InConversation,
		}),
		Routes: a.dispatcher.Routes(),
		OnStart: func(ctx context.Context, rt tg.Runtime) error {
			logger.Info(ctx, "app", "app.online",
				slog.String("status", "ok"),
				slog.String("username", rt.Bot.Me.Username),
			)
			return nil
		},
		OnStop: func(ctx context.Context, _ tg.Runtime) error {
			s := a.machine.Stats()
			logger.Info(ctx, "app", "app.stats",
				slog.String("status", "ok"),
				slog.Int("sessions", s.ActiveSessions),
				slog.Uint64("registrations_ok", s.RegistrationsOK),
				slog.Uint64("registrations_failed", s.RegistrationsFailed),
				slog.Uint64("invoices", s.InvoicesIssued),
			)
			return nil
		},
	}, nil
}

// Close releases the database pool and the Redis client.
func (a *App) Close() error {
	var errs []error
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if a.infra != nil {
		errs = append(errs, a.infra.Close())
	}
	return errors.Join(errs...)
}

func connectRedis(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	start := time.Now()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		logger.Error(ctx, "db", "redis.connect",
			slog.String("status", "fail"),
			slog.String("addr", cfg.Addr),
			slog.String("err", err.Error()),
		)
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	logger.Info(ctx, "db", "redis.connect",
		slog.String("status", "ok"),
		slog.String("addr", cfg.Addr),
		slog.Duration("duration", logger.Took(start)),
	)
	return client, nil
}
