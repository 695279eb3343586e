package irc

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"net"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wolfbot/pkg/logx"
)

type pipeDialer struct {
	mu    sync.Mutex
	addrs []string
	conns chan net.Conn
}

func newPipeDialer() *pipeDialer { return &pipeDialer{conns: make(chan net.Conn, 1)} }

func (p *pipeDialer) DialContext(_ context.Context, _, addr string) (net.Conn, error) {
	p.mu.Lock()
	p.addrs = append(p.addrs, addr)
	p.mu.Unlock()
	cli, srv := net.Pipe()
	p.conns <- srv
	return cli, nil
}

type failDialer struct{}

func (failDialer) DialContext(context.Context, string, string) (net.Conn, error) {
	return nil, errors.New("refused")
}

func testSinks(t *testing.T, debug bool) *logx.Sinks {
	t.Helper()
	dir := t.TempDir()
	s, err := logx.Open(logx.SinksConfig{
		DebugFile: filepath.Join(dir, "debug.log"),
		ErrorFile: filepath.Join(dir, "errors.log"),
		Console:   logx.NewConsole(&bytes.Buffer{}, ""),
		Mode:      logx.NewMode(debug),
	})
	require.NoError(t, err)
	return s
}

func readLine(t *testing.T, r *bufio.Reader) string {
	t.Helper()
	line, err := r.ReadString('\n')
	require.NoError(t, err)
	return strings.TrimRight(line, "\r\n")
}

func TestClientRunDispatches(t *testing.T) {
	t.Parallel()
	var (
		mu       sync.Mutex
		fallback []string
	)
	desc := Descriptor{
		Host:        "irc.example.net",
		Port:        6667,
		Nick:        "wolf",
		TokenBucket: TokenBucket{Burst: 10, Delay: time.Millisecond, Init: 10},
		Callbacks: Callbacks{
			Handlers: map[string]Handler{
				"ping": func(ctx context.Context, c *Client, m Message) { _ = c.Send(ctx, "PONG", m.Trailing()) },
				"kick": func(context.Context, *Client, Message) { panic("boom") },
			},
			Fallback: func(_ context.Context, _ *Client, m Message) {
				mu.Lock()
				fallback = append(fallback, m.Command)
				mu.Unlock()
			},
		},
		OnConnect: func(ctx context.Context, c *Client) error {
			return c.Send(ctx, "NICK", c.Descriptor().Nick)
		},
	}
	dialer := newPipeDialer()
	cli := New(desc, testSinks(t, true), WithDialer(dialer))

	done := make(chan error, 1)
	go func() { done <- cli.Run(context.Background()) }()

	srv := <-dialer.conns
	r := bufio.NewReader(srv)
	assert.Equal(t, "NICK wolf", readLine(t, r))

	_, err := srv.Write([]byte(":srv KICK #c wolf\r\nPING :token\r\n"))
	require.NoError(t, err)
	assert.Equal(t, "PONG token", readLine(t, r))

	_, err = srv.Write([]byte(":srv 372 wolf :motd\r\n\r\n"))
	require.NoError(t, err)
	require.NoError(t, srv.Close())

	require.ErrorIs(t, <-done, ErrDisconnected)
	mu.Lock()
	assert.Equal(t, []string{"372"}, fallback)
	mu.Unlock()
	assert.Equal(t, []string{"irc.example.net:6667"}, dialer.addrs)
}

func TestClientCopiesCallbacks(t *testing.T) {
	t.Parallel()
	handlers := map[string]Handler{}
	cli := New(Descriptor{Callbacks: Callbacks{Handlers: handlers}}, nil)
	handlers["ping"] = func(context.Context, *Client, Message) {}

	assert.Nil(t, cli.Descriptor().Callbacks.Lookup("ping"))
}

func TestClientRunStopsOnCancel(t *testing.T) {
	t.Parallel()
	dialer := newPipeDialer()
	cli := New(Descriptor{Host: "h", Port: 1}, nil, WithDialer(dialer))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- cli.Run(ctx) }()
	<-dialer.conns
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestClientConnectHookError(t *testing.T) {
	t.Parallel()
	dialer := newPipeDialer()
	hookErr := errors.New("nope")
	cli := New(Descriptor{OnConnect: func(context.Context, *Client) error { return hookErr }}, nil, WithDialer(dialer))

	err := cli.Run(context.Background())
	require.ErrorIs(t, err, hookErr)
}

func TestClientDialFailure(t *testing.T) {
	t.Parallel()
	cli := New(Descriptor{Host: "h", Port: 1}, nil, WithDialer(failDialer{}))
	require.Error(t, cli.Run(context.Background()))
}

func TestSendWithoutConnection(t *testing.T) {
	t.Parallel()
	cli := New(Descriptor{}, nil)
	require.ErrorIs(t, cli.Send(context.Background(), "NICK", "x"), ErrNotConnected)
	require.NoError(t, cli.Close())
}

func TestRedact(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "PASS <redacted>", redact("PASS hunter2"))
	assert.Equal(t, "AUTHENTICATE <redacted>", redact("AUTHENTICATE d29sZgB3b2xmAGh1bnRlcjI="))
	assert.Equal(t, "NICK wolf", redact("NICK wolf"))
}

func TestNewLimiter(t *testing.T) {
	t.Parallel()
	now := time.Now()

	lim := newLimiter(TokenBucket{Burst: 5, Delay: time.Hour, Init: 2}, now)
	assert.True(t, lim.AllowN(now, 2))
	assert.False(t, lim.AllowN(now, 1))
	assert.Equal(t, 5, lim.Burst())

	lim = newLimiter(TokenBucket{Burst: 3, Delay: time.Hour, Init: 10}, now)
	assert.True(t, lim.AllowN(now, 3))

	lim = newLimiter(TokenBucket{}, now)
	for i := 0; i < 100; i++ {
		require.True(t, lim.Allow())
	}
}

func nopLogger() logx.Logger { return logx.Nop() }
