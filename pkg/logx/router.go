package logx

import "strings"

// Level classifies a routed message.
type Level int8

const (
	LevelNormal Level = iota
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "normal"
	}
}

// ParseLevel maps "warning"/"warn" and "error" to their levels; anything else
// is LevelNormal.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "warning", "warn":
		return LevelWarning
	case "error":
		return LevelError
	default:
		return LevelNormal
	}
}

// Router echoes status messages to the console-only stream sink. Normal
// messages are dropped unless debug mode is on.
type Router struct {
	stream *Sink
	mode   *Mode
}

func NewRouter(stream *Sink, mode *Mode) *Router {
	if mode == nil {
		mode = DebugMode
	}
	return &Router{stream: stream, mode: mode}
}

func (r *Router) Route(msg any, level Level) error {
	if r == nil || r.stream == nil {
		return nil
	}
	if r.mode.Enabled() || level == LevelWarning || level == LevelError {
		return r.stream.Log(msg)
	}
	return nil
}

// Plog prints unconditionally through the stream sink.
func (r *Router) Plog(parts ...any) error {
	if r == nil || r.stream == nil {
		return nil
	}
	return r.stream.Log(parts...)
}
