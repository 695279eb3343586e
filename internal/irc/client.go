package irc

import (
	"bufio"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"os"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"wolfbot/pkg/logx"
)

var (
	ErrDisconnected = errors.New("irc: connection closed by server")
	ErrNotConnected = errors.New("irc: not connected")
)

const (
	dialTimeout = 30 * time.Second
	maxLineLen  = 8191 + 512
)

// Dialer opens the raw transport. *net.Dialer satisfies it.
type Dialer interface {
	DialContext(ctx context.Context, network, addr string) (net.Conn, error)
}

// Client is a single IRC connection.
type Client struct {
	desc    Descriptor
	sinks   *logx.Sinks
	log     logx.Logger
	dialer  Dialer
	limiter *rate.Limiter

	mu   sync.Mutex
	conn net.Conn
}

type Option func(*Client)

func WithDialer(d Dialer) Option { return func(c *Client) { c.dialer = d } }

func WithLogger(l logx.Logger) Option { return func(c *Client) { c.log = l } }

// New takes its own copy of d; later changes to the caller's callback map
// have no effect.
func New(d Descriptor, sinks *logx.Sinks, opts ...Option) *Client {
	d.Callbacks = d.Callbacks.clone()
	c := &Client{
		desc:    d,
		sinks:   sinks,
		limiter: newLimiter(d.TokenBucket, time.Now()),
	}
	for _, o := range opts {
		if o != nil {
			o(c)
		}
	}
	c.log = c.log.With(logx.String("comp", "irc"))
	return c
}

// Descriptor returns the connection parameters the client was built with.
func (c *Client) Descriptor() Descriptor { return c.desc }

// Run connects, calls the connect hook and dispatches inbound lines until the
// server closes the connection or ctx is done. Cancellation returns nil.
func (c *Client) Run(ctx context.Context) error {
	conn, err := c.dial(ctx)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
	defer c.Close()

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	c.log.Info("connected", logx.String("addr", c.desc.Addr()), logx.Bool("tls", c.desc.UseTLS))

	if c.desc.OnConnect != nil {
		if err := c.desc.OnConnect(ctx, c); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("irc: connect hook: %w", err)
		}
	}

	sc := bufio.NewScanner(conn)
	sc.Buffer(make([]byte, 0, 4096), maxLineLen)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if line == "" {
			continue
		}
		c.dispatch(ctx, line)
	}
	if ctx.Err() != nil {
		return nil
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("irc: read: %w", err)
	}
	return ErrDisconnected
}

func (c *Client) dial(ctx context.Context) (net.Conn, error) {
	d := c.dialer
	if d == nil {
		nd := &net.Dialer{Timeout: dialTimeout}
		if c.desc.BindHost != "" {
			la, err := net.ResolveTCPAddr("tcp", net.JoinHostPort(c.desc.BindHost, "0"))
			if err != nil {
				return nil, fmt.Errorf("irc: bind address: %w", err)
			}
			nd.LocalAddr = la
		}
		d = nd
	}

	raw, err := d.DialContext(ctx, "tcp", c.desc.Addr())
	if err != nil {
		return nil, fmt.Errorf("irc: dial %s: %w", c.desc.Addr(), err)
	}
	if !c.desc.UseTLS {
		return raw, nil
	}

	cfg, err := tlsConfig(c.desc, c.log)
	if err != nil {
		_ = raw.Close()
		return nil, err
	}
	tc := tls.Client(raw, cfg)
	if err := tc.HandshakeContext(ctx); err != nil {
		_ = raw.Close()
		return nil, fmt.Errorf("irc: tls handshake: %w", err)
	}
	return tc, nil
}

func (c *Client) dispatch(ctx context.Context, line string) {
	c.trace("<<<", line)
	m, err := ParseMessage(line)
	if err != nil {
		c.log.Warn("unparsable line", logx.String("line", line), logx.Err(err))
		return
	}
	h := c.desc.Callbacks.Lookup(m.Category())
	if h == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			c.log.Error("handler panic",
				logx.String("command", m.Command),
				logx.Any("panic", r),
				logx.Stack(string(debug.Stack())),
			)
		}
	}()
	h(ctx, c, m)
}

// Send writes one line, waiting for a token from the bucket first.
func (c *Client) Send(ctx context.Context, command string, params ...string) error {
	line, err := FormatLine(command, params...)
	if err != nil {
		return err
	}
	return c.SendRaw(ctx, line)
}

func (c *Client) SendRaw(ctx context.Context, line string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return ErrNotConnected
	}
	if _, err := c.conn.Write([]byte(line + "\r\n")); err != nil {
		return fmt.Errorf("irc: write: %w", err)
	}
	c.trace(">>>", redact(line))
	return nil
}

// Close closes the connection; it is safe to call more than once.
func (c *Client) Close() error {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()
	if conn == nil {
		return nil
	}
	return conn.Close()
}

// trace copies raw traffic to the debug sink.
func (c *Client) trace(dir, line string) {
	if c.sinks == nil || c.sinks.Debug == nil {
		return
	}
	if err := c.sinks.Debug.Log(dir, line); err != nil {
		fmt.Fprintf(os.Stderr, "irc: debug log: %v\n", err)
	}
}

func redact(line string) string {
	cmd, _, _ := strings.Cut(line, " ")
	switch strings.ToUpper(cmd) {
	case "PASS", "AUTHENTICATE":
		return cmd + " <redacted>"
	}
	return line
}
