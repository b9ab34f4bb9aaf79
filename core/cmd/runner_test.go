package cmd

import (
	"context"
	"errors"
	"testing"

	coreconfig "github.com/gamersarena/arenabot/core/config"
	coretelegram "github.com/gamersarena/arenabot/core/telegram"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type carrier struct{ cfg *coreconfig.Config }

func (c carrier) CoreConfig() *coreconfig.Config { return c.cfg }

type fakeApp struct {
	closed bool
}

func (a *fakeApp) TelegramRunOptions() (coretelegram.RunOptions, error) {
	return coretelegram.RunOptions{}, nil
}

func (a *fakeApp) Close() error {
	a.closed = true
	return nil
}

func TestResolveConfigPathPrecedence(t *testing.T) {
	t.Setenv("ARENA_CONFIG", "/from/env.yaml")
	p, err := ResolveConfigPath(Options{ConfigPath: "/from/flag.yaml", ConfigEnvVar: "ARENA_CONFIG"})
	require.NoError(t, err)
	assert.Equal(t, "/from/flag.yaml", p)

	p, err = ResolveConfigPath(Options{ConfigEnvVar: "ARENA_CONFIG", DefaultConfigPath: "config.yaml"})
	require.NoError(t, err)
	assert.Equal(t, "/from/env.yaml", p)

	t.Setenv("ARENA_CONFIG", "")
	p, err = ResolveConfigPath(Options{ConfigEnvVar: "ARENA_CONFIG", DefaultConfigPath: "config.yaml"})
	require.NoError(t, err)
	assert.Equal(t, "config.yaml", p)

	_, err = ResolveConfigPath(Options{ConfigEnvVar: "ARENA_CONFIG"})
	assert.Error(t, err)
}

func TestRunWiresHooksAndClosesApp(t *testing.T) {
	app := &fakeApp{}
	var started, stopped bool
	err := Run(Options{
		ConfigPath: "unused.yaml",
		LoadConfig: func(string) (ConfigCarrier, error) {
			return carrier{cfg: &coreconfig.Config{}}, nil
		},
		Bootstrap:      func(ConfigCarrier) (TelegramApp, error) { return app, nil },
		ShutdownLogger: func() error { return nil },
		RunTelegram: func(ctx context.Context, opts coretelegram.RunOptions) error {
			require.NoError(t, opts.OnStart(ctx, coretelegram.Runtime{}))
			started = true
			require.NoError(t, opts.OnStop(ctx, coretelegram.Runtime{}))
			stopped = true
			return nil
		},
	})
	require.NoError(t, err)
	assert.True(t, started)
	assert.True(t, stopped)
	assert.True(t, app.closed)
}

func TestRunSurfacesBootstrapError(t *testing.T) {
	boom := errors.New("no database")
	err := Run(Options{
		ConfigPath: "unused.yaml",
		LoadConfig: func(string) (ConfigCarrier, error) {
			return carrier{cfg: &coreconfig.Config{}}, nil
		},
		Bootstrap: func(ConfigCarrier) (TelegramApp, error) { return nil, boom },
	})
	assert.ErrorIs(t, err, boom)
}
