package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/spf13/cobra"

	"wolfbot/internal/bot"
	"wolfbot/internal/config"
	"wolfbot/pkg/logx"
)

func main() {
	if err := newRootCmd(logx.DebugMode).Execute(); err != nil {
		var logged loggedError
		if !errors.As(err, &logged) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

// loggedError has already been written through the error sink.
type loggedError struct{ err error }

func (e loggedError) Error() string { return e.err.Error() }
func (e loggedError) Unwrap() error { return e.err }

func newRootCmd(mode *logx.Mode) *cobra.Command {
	var (
		debugFlag bool
		cfgPath   string
	)
	cmd := &cobra.Command{
		Use:           "wolfbot",
		Short:         "Werewolf IRC bot",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			debugOn := debugFlag || os.Getenv("DEBUG") != ""
			return run(cmd.Context(), mode, debugOn, cfgPath)
		},
	}
	cmd.Flags().BoolVar(&debugFlag, "debug", false, "run in debug mode (also loads "+config.DebugFile+")")
	cmd.Flags().StringVar(&cfgPath, "config", "", "path to a file loaded on top of "+config.BaseFile)
	return cmd
}

// run starts the bot. mode is initialised here, once, from the flags and
// the loaded configuration.
func run(parent context.Context, mode *logx.Mode, debugOn bool, cfgPath string) error {
	files, err := config.Files(config.BaseFile, cfgPath, debugOn)
	if errors.Is(err, config.ErrNotFile) {
		return fmt.Errorf("file specified by --config %w", config.ErrNotFile)
	}
	if err != nil {
		return err
	}
	store, err := config.Load(files...)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := mode.Init(debugOn || config.DebugEnabled(store)); err != nil {
		return err
	}

	ls := config.ResolveLogging(store)
	sinks, err := logx.Open(logx.SinksConfig{
		DebugFile: ls.DebugFile,
		ErrorFile: ls.ErrorFile,
		Timestamp: logx.Timestamp{Local: !ls.UTC, Template: ls.Format},
		Mode:      mode,
	})
	if err != nil {
		return err
	}
	log := logx.New(sinks, ls.Level)

	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	err = guard(func() error {
		return bot.Run(ctx, bot.Options{
			Store:  store,
			Sinks:  sinks,
			Log:    log,
			Notify: bot.SystemdNotifier,
			Watch:  true,
		})
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bot.ErrNotConfigured):
		return err
	default:
		if lerr := sinks.Error.Log(err); lerr != nil {
			fmt.Fprintf(os.Stderr, "error log failed: %v\n", lerr)
			return err
		}
		return loggedError{err: err}
	}
}

// guard turns a panic in fn into an error carrying the stack.
func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v\n%s", r, debug.Stack())
		}
	}()
	return fn()
}
