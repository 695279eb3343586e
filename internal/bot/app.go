package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/coreos/go-systemd/v22/daemon"

	"wolfbot/internal/config"
	"wolfbot/internal/irc"
	"wolfbot/internal/runtime/supervisor"
	"wolfbot/pkg/logx"
)

// ErrNotConfigured means no transport is defined in the configuration.
var ErrNotConfigured = errors.New(
	"botconfig.yml is not configured: define at least one entry under \"transports\" " +
		"(see the comments in botconfig.example.yml)")

// Options are the startup dependencies of Run.
type Options struct {
	Store *config.Store
	Sinks *logx.Sinks
	Log   logx.Logger

	Dialer irc.Dialer // nil: plain net.Dialer
	Notify Notifier   // nil: no init system notifications
	Watch  bool       // report on-disk config edits

	// Stderr receives logging failures that cannot go anywhere else.
	Stderr io.Writer
}

// Run checks that a transport is configured, builds the connection descriptor
// and drives the client until ctx is done or the server goes away.
func Run(ctx context.Context, o Options) error {
	if !config.HasTransports(o.Store) {
		return ErrNotConfigured
	}
	if o.Stderr == nil {
		o.Stderr = os.Stderr
	}
	r := o.Sinks.Router

	o.logFailure(r.Plog("Loading Werewolf IRC bot"))

	settings, err := config.ResolveSettings(o.Store)
	if err != nil {
		return fmt.Errorf("resolve settings: %w", err)
	}
	h := &Handlers{Sinks: o.Sinks, Log: o.Log.With(logx.String("comp", "bot")), Notify: o.Notify}

	desc, err := BuildDescriptor(settings, config.ResolveSecrets(o.Store), h.Callbacks(), h.Connect, r)
	o.logFailure(err)

	tasks := supervisor.New(ctx, o.Log)
	if o.Watch {
		files := o.Store.Files()
		tasks.Start(supervisor.Task{
			Name:     "config-watch",
			Restarts: 5,
			Run: func(ctx context.Context) error {
				return config.Watch(ctx, files, o.Log, func(path string) {
					o.Log.Warn("configuration changed on disk; restart to apply", logx.String("path", path))
				})
			},
		})
	}

	cli := irc.New(desc, o.Sinks, irc.WithLogger(o.Log), irc.WithDialer(o.Dialer))
	tasks.Start(supervisor.Task{Name: "irc", Critical: true, Run: cli.Run})
	err = tasks.Wait()

	if o.Notify != nil {
		if nerr := o.Notify(daemon.SdNotifyStopping); nerr != nil {
			o.Log.Warn("service notify failed", logx.Err(nerr))
		}
	}
	return err
}

func (o Options) logFailure(err error) {
	if err != nil {
		fmt.Fprintf(o.Stderr, "logging failed: %v\n", err)
	}
}
