package telegram

import (
	"testing"

	"github.com/gamersarena/arenabot/core/telegram/commands"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"
)

func noop(tele.Context) error { return nil }

func TestRegisterCommandValidation(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.RegisterCommand("/start", commands.Command{Handler: noop, Description: "Register"}))
	assert.Error(t, reg.RegisterCommand("/start", commands.Command{Handler: noop, Description: "dup"}))
	assert.Error(t, reg.RegisterCommand("cancel", commands.Command{Handler: noop, Description: "no slash"}))
	assert.Error(t, reg.RegisterCommand("/stats", commands.Command{Description: "no handler"}))
}

func TestListCommandsHidesAdminAndHidden(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.RegisterCommand("/start", commands.Command{Handler: noop, Description: "Register"}))
	require.NoError(t, reg.RegisterCommand("/cancel", commands.Command{Handler: noop, Description: "Cancel"}))
	require.NoError(t, reg.RegisterCommand("/stats", commands.Command{Handler: noop, Description: "Stats", AdminOnly: true, Hidden: true}))

	visible := reg.ListCommands(true)
	assert.Equal(t, []tele.Command{
		{Text: "cancel", Description: "Cancel"},
		{Text: "start", Description: "Register"},
	}, visible)
	assert.Len(t, reg.ListCommands(false), 3)
}

func TestLookupCommandByAlias(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.RegisterCommand("/cancel", commands.Command{Handler: noop, Description: "Cancel", Aliases: []string{"stop"}}))

	key, _, ok := reg.LookupCommand("stop")
	require.True(t, ok)
	assert.Equal(t, "/cancel", key)

	_, _, ok = reg.LookupCommand("/unknown")
	assert.False(t, ok)
}

func TestRegisterCallbackDuplicate(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.RegisterCallback("game", noop))
	assert.Error(t, reg.RegisterCallback("game", noop))
	assert.Error(t, reg.RegisterCallback("", noop))
	assert.Equal(t, []string{"game"}, reg.ListCallbacks())
}
