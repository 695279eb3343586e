// Package logx holds wolfbot's logging facilities.
//
// There are two layers:
//   - Sinks: plain-text channels (console and/or an append-only file) with a
//     write/display policy and a process-wide debug override (Mode).
//   - Logger: a small structured wrapper on top of zerolog whose output is
//     rendered as text and routed through the Stream Router, so diagnostics
//     follow the same "quiet unless warning/error or debug" rule.
//
// Well-known sinks are created once at startup by Open and passed by
// reference to whoever needs them.
package logx
