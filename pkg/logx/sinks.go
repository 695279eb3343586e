package logx

import "fmt"

const (
	DefaultDebugFile = "debug.log"
	DefaultErrorFile = "errors.log"
)

// SinksConfig selects targets and shared options for the well-known sinks.
type SinksConfig struct {
	DebugFile string
	ErrorFile string
	Timestamp Timestamp

	Console *Console // nil: Stdout()
	Mode    *Mode    // nil: DebugMode
}

// Sinks are the well-known channels:
//   - Stream: console only, always displays
//   - Debug: file only, silent unless debug mode is on
//   - Error: file and console
type Sinks struct {
	Stream *Sink
	Debug  *Sink
	Error  *Sink
	Router *Router
	Mode   *Mode
}

// Open creates the well-known sinks, touching their files.
func Open(cfg SinksConfig) (*Sinks, error) {
	if cfg.DebugFile == "" {
		cfg.DebugFile = DefaultDebugFile
	}
	if cfg.ErrorFile == "" {
		cfg.ErrorFile = DefaultErrorFile
	}
	if cfg.Mode == nil {
		cfg.Mode = DebugMode
	}
	opts := []SinkOption{WithMode(cfg.Mode), WithTimestamp(cfg.Timestamp)}
	if cfg.Console != nil {
		opts = append(opts, WithConsole(cfg.Console))
	}

	stream, err := NewSink("", true, true, opts...)
	if err != nil {
		return nil, err
	}
	debug, err := NewSink(cfg.DebugFile, false, false, opts...)
	if err != nil {
		return nil, fmt.Errorf("debug sink: %w", err)
	}
	errs, err := NewSink(cfg.ErrorFile, true, true, opts...)
	if err != nil {
		return nil, fmt.Errorf("error sink: %w", err)
	}
	return &Sinks{
		Stream: stream,
		Debug:  debug,
		Error:  errs,
		Router: NewRouter(stream, cfg.Mode),
		Mode:   cfg.Mode,
	}, nil
}
