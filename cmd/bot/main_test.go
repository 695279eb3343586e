package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wolfbot/internal/bot"
	"wolfbot/internal/config"
	"wolfbot/pkg/logx"
)

func TestBadConfigPathFailsBeforeStartup(t *testing.T) {
	t.Chdir(t.TempDir())

	cmd := newRootCmd(&logx.Mode{})
	cmd.SetArgs([]string{"--config", "missing.yml"})
	err := cmd.Execute()

	require.ErrorIs(t, err, config.ErrNotFile)
	assert.Equal(t, "file specified by --config does not exist or is not a file", err.Error())
	assert.NoFileExists(t, "errors.log", "sinks are not created before the config is validated")
}

func TestNoTransportsExitsWithoutConnecting(t *testing.T) {
	t.Setenv("DEBUG", "")
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.BaseFile), []byte("logging:\n  level: info\n"), 0o644))

	// Each run owns its debug mode, so repeated runs in one process behave the same.
	for range 2 {
		cmd := newRootCmd(&logx.Mode{})
		cmd.SetArgs([]string{})
		err := cmd.Execute()

		require.ErrorIs(t, err, bot.ErrNotConfigured)
		var logged loggedError
		assert.False(t, errors.As(err, &logged), "reported on stderr by main, not the error sink")
		assert.FileExists(t, filepath.Join(dir, "errors.log"))
	}
}

func TestDebugFlagInitialisesMode(t *testing.T) {
	t.Setenv("DEBUG", "")
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.BaseFile), []byte("logging:\n  level: info\n"), 0o644))

	mode := &logx.Mode{}
	cmd := newRootCmd(mode)
	cmd.SetArgs([]string{"--debug"})
	require.ErrorIs(t, cmd.Execute(), bot.ErrNotConfigured)
	assert.True(t, mode.Enabled())

	sealed := logx.NewMode(false)
	err := run(context.Background(), sealed, false, "")
	require.ErrorIs(t, err, logx.ErrModeSealed)
}

func TestGuardRecoversPanics(t *testing.T) {
	err := guard(func() error { panic("boom") })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panic: boom")
	assert.Contains(t, err.Error(), "goroutine")

	sentinel := errors.New("plain")
	assert.Equal(t, sentinel, guard(func() error { return sentinel }))
}
