package irc

import (
	"context"
	"maps"
	"net"
	"strconv"
	"strings"
	"time"
)

// Handler handles one inbound message.
type Handler func(ctx context.Context, c *Client, m Message)

// ConnectFunc runs once the transport (TCP, and TLS when enabled) is up.
type ConnectFunc func(ctx context.Context, c *Client) error

// Callbacks map lower-case message categories (command names and numerics)
// to handlers. Categories without an entry go to Fallback.
type Callbacks struct {
	Handlers map[string]Handler
	Fallback Handler
}

// Lookup returns the handler for category, or Fallback.
func (cb Callbacks) Lookup(category string) Handler {
	if h, ok := cb.Handlers[strings.ToLower(category)]; ok {
		return h
	}
	return cb.Fallback
}

func (cb Callbacks) clone() Callbacks {
	return Callbacks{Handlers: maps.Clone(cb.Handlers), Fallback: cb.Fallback}
}

// CertVerify selects how the server certificate chain is checked.
type CertVerify string

const (
	CertRequired CertVerify = "required"
	CertOptional CertVerify = "optional"
	CertNone     CertVerify = "none"
)

// TokenBucket limits outgoing lines: Burst tokens at most, one token back
// every Delay, Init tokens available at start.
type TokenBucket struct {
	Burst int
	Delay time.Duration
	Init  int
}

// Descriptor is everything New needs to open and drive a connection.
type Descriptor struct {
	Host     string
	Port     int
	BindHost string

	AuthName       string
	Password       string
	Nick           string
	Ident          string
	RealName       string
	SASL           bool
	ServerPassword string

	UseTLS          bool
	CertVerify      CertVerify
	CertFingerprint string
	ClientCertFile  string
	ClientKeyFile   string
	Ciphers         string

	TokenBucket TokenBucket
	Callbacks   Callbacks
	OnConnect   ConnectFunc
}

// Addr returns host:port.
func (d Descriptor) Addr() string {
	return net.JoinHostPort(d.Host, strconv.Itoa(d.Port))
}
