package logx

import (
	"errors"
	"sync/atomic"
)

// ErrModeSealed is returned by Mode.Init once the mode has been set or read.
var ErrModeSealed = errors.New("logx: debug mode already sealed")

const (
	modeUnset int32 = iota
	modeOff
	modeOn
)

// Mode is a write-once debug switch. It can be initialised exactly once and
// only before its first read; the first read of an uninitialised Mode seals it
// as disabled.
//
// Sinks read it on every call, so sinks created before Init observe the same
// value as sinks created after.
type Mode struct {
	state atomic.Int32
}

// DebugMode is the process-wide debug switch.
var DebugMode = &Mode{}

// NewMode returns a Mode that is already sealed to on.
func NewMode(on bool) *Mode {
	m := &Mode{}
	_ = m.Init(on)
	return m
}

func (m *Mode) Init(on bool) error {
	v := modeOff
	if on {
		v = modeOn
	}
	if !m.state.CompareAndSwap(modeUnset, v) {
		return ErrModeSealed
	}
	return nil
}

func (m *Mode) Enabled() bool {
	if m == nil {
		return false
	}
	if m.state.CompareAndSwap(modeUnset, modeOff) {
		return false
	}
	return m.state.Load() == modeOn
}
