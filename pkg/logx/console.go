package logx

import (
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// Placeholder replaces characters the console charset cannot represent.
const Placeholder = "?"

// Console is a line-oriented text stream. Characters that cannot be encoded in
// its charset are replaced with Placeholder; encoding never fails a write.
type Console struct {
	mu  sync.Mutex
	w   io.Writer
	enc encoding.Encoding // nil means UTF-8
}

var (
	stdoutOnce    sync.Once
	stdoutConsole *Console
)

// Stdout returns the process console, using the charset from the locale
// environment.
func Stdout() *Console {
	stdoutOnce.Do(func() {
		stdoutConsole = NewConsole(os.Stdout, CharsetFromEnv())
	})
	return stdoutConsole
}

// NewConsole wraps w. An empty or unknown charset means UTF-8.
func NewConsole(w io.Writer, charset string) *Console {
	c := &Console{w: w}
	charset = strings.TrimSpace(charset)
	if charset == "" {
		return c
	}
	e, err := htmlindex.Get(charset)
	if err != nil {
		return c
	}
	if name, _ := htmlindex.Name(e); name == "utf-8" {
		return c
	}
	c.enc = e
	return c
}

// CharsetFromEnv extracts the codeset of the effective locale
// (LC_ALL, then LC_CTYPE, then LANG), e.g. "UTF-8" from "en_US.UTF-8".
func CharsetFromEnv() string {
	for _, k := range []string{"LC_ALL", "LC_CTYPE", "LANG"} {
		v := strings.TrimSpace(os.Getenv(k))
		if v == "" {
			continue
		}
		if i := strings.IndexByte(v, '@'); i >= 0 {
			v = v[:i]
		}
		if i := strings.IndexByte(v, '.'); i >= 0 {
			return v[i+1:]
		}
		return ""
	}
	return ""
}

// WriteLine writes s followed by a newline as one write.
func (c *Console) WriteLine(s string) error {
	b := c.encode(s + "\n")
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := c.w.Write(b)
	return err
}

func (c *Console) encode(s string) []byte {
	if c.enc == nil {
		return []byte(strings.ToValidUTF8(s, Placeholder))
	}
	enc := c.enc.NewEncoder()
	if out, err := enc.String(s); err == nil {
		return []byte(out)
	}
	var b strings.Builder
	for _, r := range strings.ToValidUTF8(s, Placeholder) {
		out, err := enc.String(string(r))
		if err != nil {
			b.WriteString(Placeholder)
			continue
		}
		b.WriteString(out)
	}
	return []byte(b.String())
}
