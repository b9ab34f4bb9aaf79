package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckConfigPrintsSummary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "telegram:\n  token: t\npayment:\n  provider_token: p\nregistration:\n  endpoint: http://sheet\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cmd := rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--config", path, "check-config"})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "arena:        The Gamers Arena")
	assert.Contains(t, out.String(), "backend:      sheetdb")
	assert.Contains(t, out.String(), "games:        3")
}

func TestMigrateRefusesNonPostgres(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "telegram:\n  token: t\npayment:\n  provider_token: p\nregistration:\n  endpoint: http://sheet\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cmd := rootCmd()
	cmd.SetArgs([]string{"-c", path, "migrate"})
	assert.Error(t, cmd.Execute())
}
