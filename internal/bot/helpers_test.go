package bot

import (
	"bufio"
	"bytes"
	"context"
	"net"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"wolfbot/pkg/logx"
)

type pipeDialer struct {
	calls atomic.Int32
	conns chan net.Conn
}

func newPipeDialer() *pipeDialer { return &pipeDialer{conns: make(chan net.Conn, 1)} }

func (p *pipeDialer) DialContext(context.Context, string, string) (net.Conn, error) {
	p.calls.Add(1)
	cli, srv := net.Pipe()
	p.conns <- srv
	return cli, nil
}

type syncBuffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.String()
}

func testSinks(t *testing.T, debug bool) (*logx.Sinks, *syncBuffer) {
	t.Helper()
	dir := t.TempDir()
	console := &syncBuffer{}
	s, err := logx.Open(logx.SinksConfig{
		DebugFile: filepath.Join(dir, "debug.log"),
		ErrorFile: filepath.Join(dir, "errors.log"),
		Console:   logx.NewConsole(console, ""),
		Mode:      logx.NewMode(debug),
	})
	require.NoError(t, err)
	return s, console
}

type lineReader struct {
	t *testing.T
	r *bufio.Reader
}

func (l lineReader) next() string {
	l.t.Helper()
	line, err := l.r.ReadString('\n')
	require.NoError(l.t, err)
	return strings.TrimRight(line, "\r\n")
}

type notifications struct {
	mu     sync.Mutex
	states []string
}

func (n *notifications) notify(state string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.states = append(n.states, state)
	return nil
}

func (n *notifications) get() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.states...)
}
