package logx

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// Toggle is a per-call override of a sink's write or display default.
type Toggle int8

const (
	Default Toggle = iota
	On
	Off
)

func (t Toggle) resolve(def bool) bool {
	switch t {
	case On:
		return true
	case Off:
		return false
	default:
		return def
	}
}

// stripBold removes IRC bold markers: the raw control byte first, then its
// escaped text form, so an escape split by a control byte is caught too.
func stripBold(s string) string {
	s = strings.ReplaceAll(s, "\x02", "")
	return strings.ReplaceAll(s, `\x02`, "")
}

// Sink is one logging channel: an optional append-only file plus the console.
// A Sink is immutable after NewSink and safe for concurrent use.
type Sink struct {
	target  string
	write   bool
	display bool

	mode    *Mode
	console *Console
	ts      Timestamp
	now     func() time.Time
}

type SinkOption func(*Sink)

// WithMode sets the debug switch the sink consults. Defaults to DebugMode.
func WithMode(m *Mode) SinkOption { return func(s *Sink) { s.mode = m } }

// WithConsole sets the display stream. Defaults to Stdout().
func WithConsole(c *Console) SinkOption { return func(s *Sink) { s.console = c } }

func WithTimestamp(ts Timestamp) SinkOption { return func(s *Sink) { s.ts = ts } }

func WithClock(now func() time.Time) SinkOption { return func(s *Sink) { s.now = now } }

// NewSink creates a sink. An empty target means console-only; otherwise the
// file is created if missing and closed again right away.
func NewSink(target string, write, display bool, opts ...SinkOption) (*Sink, error) {
	s := &Sink{
		target:  strings.TrimSpace(target),
		write:   write,
		display: display,
		mode:    DebugMode,
		now:     time.Now,
	}
	for _, o := range opts {
		if o != nil {
			o(s)
		}
	}
	if s.console == nil {
		s.console = Stdout()
	}
	if s.target != "" {
		f, err := os.OpenFile(s.target, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("logx: create %s: %w", s.target, err)
		}
		if err := f.Close(); err != nil {
			return nil, fmt.Errorf("logx: create %s: %w", s.target, err)
		}
	}
	return s, nil
}

// Target returns the backing file path, or "" for a console-only sink.
func (s *Sink) Target() string { return s.target }

// Log emits parts with the sink's defaults.
func (s *Sink) Log(parts ...any) error { return s.Emit(Default, Default, parts...) }

// Emit joins parts with single spaces, strips IRC bold markers and writes the
// timestamped line to the console and/or the target file. In debug mode both
// outputs are forced on, whatever the overrides say.
//
// Console and file failures are both returned.
func (s *Sink) Emit(write, display Toggle, parts ...any) error {
	doWrite, doDisplay := effective(s.write, s.display, write, display, s.mode.Enabled())
	if !doDisplay && (!doWrite || s.target == "") {
		return nil
	}

	line := s.ts.Format(s.now()) + joinMessage(parts)

	var errs []error
	if doDisplay {
		if err := s.console.WriteLine(line); err != nil {
			errs = append(errs, fmt.Errorf("logx: console: %w", err))
		}
	}
	if doWrite && s.target != "" {
		if err := appendLine(s.target, line); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func effective(writeDef, displayDef bool, write, display Toggle, debug bool) (bool, bool) {
	if debug {
		return true, true
	}
	return write.resolve(writeDef), display.resolve(displayDef)
}

func joinMessage(parts []any) string {
	ss := make([]string, len(parts))
	for i, p := range parts {
		ss[i] = fmt.Sprint(p)
	}
	return stripBold(strings.Join(ss, " "))
}

// appendLine does one open-append-close with a single contiguous write.
func appendLine(path, line string) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("logx: open %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("logx: close %s: %w", path, cerr)
		}
	}()
	if _, err := f.WriteString(strings.ToValidUTF8(line, Placeholder) + "\n"); err != nil {
		return fmt.Errorf("logx: append %s: %w", path, err)
	}
	return nil
}
