package bootstrap

import (
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreconfig "github.com/gamersarena/arenabot/core/config"
	coredatabase "github.com/gamersarena/arenabot/core/database"
)

func noLogger(*coreconfig.Config) error { return nil }

func TestRunWithoutDatabaseSkipsStorage(t *testing.T) {
	res, err := Run(Options{
		Config:     &coreconfig.Config{},
		LoggerInit: noLogger,
		Connect: func(coredatabase.Config) (*sqlx.DB, error) {
			t.Fatal("connect must not be called")
			return nil, nil
		},
	})
	require.NoError(t, err)
	assert.Nil(t, res.DB)
	assert.NoError(t, res.Close())
}

func TestRunMigratesBeforeConnecting(t *testing.T) {
	var order []string
	boom := errors.New("refused")
	_, err := Run(Options{
		Config:     &coreconfig.Config{},
		Database:   &coredatabase.Config{Host: "db"},
		LoggerInit: noLogger,
		Migrate: func(cfg coredatabase.Config) error {
			assert.Equal(t, "db", cfg.Host)
			order = append(order, "migrate")
			return nil
		},
		Connect: func(coredatabase.Config) (*sqlx.DB, error) {
			order = append(order, "connect")
			return nil, boom
		},
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"migrate", "connect"}, order)
}

func TestRunRequiresConfig(t *testing.T) {
	_, err := Run(Options{})
	assert.Error(t, err)
}
