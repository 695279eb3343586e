package bot

import (
	"context"
	"strings"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/ergochat/irc-go/ircutils"

	"wolfbot/internal/irc"
	"wolfbot/pkg/logx"
)

// Notifier reports service state to the init system.
type Notifier func(state string) error

// SystemdNotifier sends sd_notify states; it is a no-op outside systemd.
func SystemdNotifier(state string) error {
	_, err := daemon.SdNotify(false, state)
	return err
}

// Handlers holds what the protocol callbacks need.
type Handlers struct {
	Sinks  *logx.Sinks
	Log    logx.Logger
	Notify Notifier
}

// Callbacks returns the category table. Anything without an entry is written
// to the debug sink by the catch-all.
func (h *Handlers) Callbacks() irc.Callbacks {
	noop := func(context.Context, *irc.Client, irc.Message) {}
	return irc.Callbacks{
		Handlers: map[string]irc.Handler{
			"privmsg":      noop,
			"notice":       noop,
			"ping":         h.ping,
			"cap":          h.capability,
			"authenticate": h.authenticate,
			"903":          h.saslDone,
			"904":          h.saslFailed,
			"905":          h.saslFailed,
			"906":          h.saslFailed,
			"001":          h.welcome,
			"433":          h.nickInUse,
			"error":        h.serverError,
		},
		Fallback: h.unhandled,
	}
}

// Connect registers with the server once the transport is up.
func (h *Handlers) Connect(ctx context.Context, c *irc.Client) error {
	d := c.Descriptor()
	if d.ServerPassword != "" {
		if err := c.Send(ctx, "PASS", d.ServerPassword); err != nil {
			return err
		}
	}
	if d.SASL {
		if err := c.Send(ctx, "CAP", "REQ", "sasl"); err != nil {
			return err
		}
	}
	if err := c.Send(ctx, "NICK", d.Nick); err != nil {
		return err
	}
	return c.Send(ctx, "USER", d.Ident, "0", "*", d.RealName)
}

func (h *Handlers) ping(ctx context.Context, c *irc.Client, m irc.Message) {
	if err := c.Send(ctx, "PONG", m.Trailing()); err != nil {
		h.Log.Warn("pong failed", logx.Err(err))
	}
}

func (h *Handlers) capability(ctx context.Context, c *irc.Client, m irc.Message) {
	sub := strings.ToUpper(m.Param(1))
	caps := strings.Fields(m.Trailing())
	hasSASL := false
	for _, cp := range caps {
		if strings.EqualFold(cp, "sasl") {
			hasSASL = true
		}
	}
	switch {
	case sub == "ACK" && hasSASL:
		h.send(ctx, c, "AUTHENTICATE", "PLAIN")
	case sub == "NAK" && hasSASL:
		h.Log.Warn("server refused SASL")
		h.send(ctx, c, "CAP", "END")
	}
}

func (h *Handlers) authenticate(ctx context.Context, c *irc.Client, m irc.Message) {
	if m.Param(0) != "+" {
		return
	}
	d := c.Descriptor()
	for _, chunk := range SASLPlain(d.AuthName, d.Password) {
		h.send(ctx, c, "AUTHENTICATE", chunk)
	}
}

// SASLPlain encodes authzid\0authcid\0password as AUTHENTICATE payloads of at
// most 400 bytes each. No credentials at all is the empty response "+".
func SASLPlain(account, password string) []string {
	var raw []byte
	if account != "" || password != "" {
		raw = []byte(account + "\x00" + account + "\x00" + password)
	}
	return ircutils.EncodeSASLResponse(raw)
}

func (h *Handlers) saslDone(ctx context.Context, c *irc.Client, _ irc.Message) {
	h.Log.Info("SASL authentication succeeded")
	h.send(ctx, c, "CAP", "END")
}

func (h *Handlers) saslFailed(ctx context.Context, c *irc.Client, m irc.Message) {
	h.Log.Error("SASL authentication failed", logx.String("reply", m.Command), logx.String("reason", m.Trailing()))
	h.send(ctx, c, "CAP", "END")
}

func (h *Handlers) welcome(_ context.Context, c *irc.Client, m irc.Message) {
	h.Log.Info("registered", logx.String("nick", m.Param(0)), logx.String("server", m.Prefix))
	if h.Notify != nil {
		if err := h.Notify(daemon.SdNotifyReady); err != nil {
			h.Log.Warn("service notify failed", logx.Err(err))
		}
	}
}

func (h *Handlers) nickInUse(ctx context.Context, c *irc.Client, m irc.Message) {
	nick := m.Param(1)
	if nick == "" {
		nick = c.Descriptor().Nick
	}
	h.Log.Warn("nickname in use", logx.String("nick", nick))
	h.send(ctx, c, "NICK", nick+"_")
}

func (h *Handlers) serverError(_ context.Context, _ *irc.Client, m irc.Message) {
	h.Log.Error("server error", logx.String("reason", m.Trailing()))
}

func (h *Handlers) unhandled(_ context.Context, _ *irc.Client, m irc.Message) {
	if h.Sinks == nil || h.Sinks.Debug == nil {
		return
	}
	if err := h.Sinks.Debug.Log("unhandled:", m.Raw); err != nil {
		h.Log.Warn("debug log failed", logx.Err(err))
	}
}

func (h *Handlers) send(ctx context.Context, c *irc.Client, command string, params ...string) {
	if err := c.Send(ctx, command, params...); err != nil {
		h.Log.Warn("send failed", logx.String("command", command), logx.Err(err))
	}
}
