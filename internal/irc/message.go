package irc

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ergochat/irc-go/ircmsg"
)

var ErrEmptyMessage = errors.New("irc: empty message")

// Message is one parsed protocol line.
type Message struct {
	Tags    map[string]string
	Prefix  string
	Command string
	Params  []string
	Raw     string
}

// ParseMessage parses "[@tags] [:prefix] COMMAND [params] [:trailing]".
// Tag values come back unescaped.
func ParseMessage(line string) (Message, error) {
	pm, err := ircmsg.ParseLine(strings.TrimRight(line, "\r\n"))
	switch {
	case errors.Is(err, ircmsg.ErrorLineIsEmpty), errors.Is(err, ircmsg.ErrorCommandMissing):
		return Message{}, ErrEmptyMessage
	case err != nil:
		return Message{}, fmt.Errorf("irc: parse: %w", err)
	}

	m := Message{
		Prefix:  pm.Source,
		Command: strings.ToUpper(pm.Command),
		Params:  pm.Params,
		Raw:     line,
	}
	if tags := pm.AllTags(); len(tags) > 0 {
		m.Tags = tags
	}
	return m, nil
}

// Category is the callback table key for m.
func (m Message) Category() string { return strings.ToLower(m.Command) }

// Nick returns the nickname part of the prefix.
func (m Message) Nick() string {
	nick, _, _ := strings.Cut(m.Prefix, "!")
	return nick
}

// Param returns the i-th parameter or "".
func (m Message) Param(i int) string {
	if i < 0 || i >= len(m.Params) {
		return ""
	}
	return m.Params[i]
}

// Trailing returns the last parameter or "".
func (m Message) Trailing() string { return m.Param(len(m.Params) - 1) }

var lineBreaks = strings.NewReplacer("\r", "", "\n", "", "\x00", "")

// FormatLine builds a protocol line without the CRLF terminator. CR, LF and
// NUL are dropped from every field; the last param goes out as trailing when
// it needs to.
func FormatLine(command string, params ...string) (string, error) {
	clean := make([]string, len(params))
	for i, p := range params {
		clean[i] = lineBreaks.Replace(p)
	}
	msg := ircmsg.MakeMessage(nil, "", lineBreaks.Replace(command), clean...)
	line, err := msg.Line()
	if err != nil {
		return "", fmt.Errorf("irc: format %s: %w", command, err)
	}
	return strings.TrimSuffix(line, "\r\n"), nil
}
