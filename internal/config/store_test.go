package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

const baseYAML = `
transports:
  - name: libera
    type: irc
    connection:
      host: irc.libera.chat
      port: 6697
      use_ssl: true
      nick: wolfbot
logging:
  timestamp:
    utc: true
debug:
  enabled: false
`

func TestLoadMergesInOrder(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	base := writeFile(t, dir, "botconfig.yml", baseYAML)
	over := writeFile(t, dir, "botconfig.debug.yml", `
debug:
  enabled: true
logging:
  debug_file: dbg.log
`)

	s, err := Load(base, over)
	require.NoError(t, err)

	assert.True(t, DebugEnabled(s))
	assert.Equal(t, "dbg.log", s.String("logging.debug_file", ""))
	assert.True(t, s.Bool("logging.timestamp.utc", false), "sibling keys survive a merge")
	assert.Equal(t, "irc.libera.chat", s.String("transports.0.connection.host", ""))
	assert.Equal(t, []string{base, over}, s.Files())
}

func TestLoadAcceptsJSON(t *testing.T) {
	t.Parallel()
	p := writeFile(t, t.TempDir(), "alt.json", `{"transports":[{"connection":{"host":"h","port":"7000"}}]}`)

	s, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, 7000, s.Int("transports.0.connection.port", 0))
}

func TestLoadRejectsBadFiles(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	_, err := Load(writeFile(t, dir, "list.yml", "- a\n- b\n"))
	require.Error(t, err)

	_, err = Load(writeFile(t, dir, "broken.yml", "a: [\n"))
	require.Error(t, err)

	_, err = Load(filepath.Join(dir, "missing.yml"))
	require.Error(t, err)
}

func TestLoadEmptyFile(t *testing.T) {
	t.Parallel()
	s, err := Load(writeFile(t, t.TempDir(), "empty.yml", ""))
	require.NoError(t, err)
	assert.False(t, HasTransports(s))
}

func TestStoreGet(t *testing.T) {
	t.Parallel()
	s := FromMap(map[string]any{
		"a": map[string]any{"b": []any{"x", map[string]any{"c": 3}}},
		"n": nil,
	})

	v, ok := s.Get("a.b.1.c")
	require.True(t, ok)
	assert.Equal(t, 3, v)

	_, ok = s.Get("a.b.9")
	assert.False(t, ok)
	_, ok = s.Get("a.b.x")
	assert.False(t, ok)
	_, ok = s.Get("a.b.0.deeper")
	assert.False(t, ok)

	assert.Equal(t, "fallback", s.GetOr("n", "fallback"))
	assert.Equal(t, "fallback", s.GetOr("missing", "fallback"))
	assert.Equal(t, "x", s.GetOr("a.b.0", "fallback"))

	var nilStore *Store
	_, ok = nilStore.Get("a")
	assert.False(t, ok)
}

func TestStoreTypedGetters(t *testing.T) {
	t.Parallel()
	s := FromMap(map[string]any{
		"i": 5, "f": 1.5, "si": "12", "b": "true", "bi": 1,
		"d1": "2s", "d2": 1.73, "d3": "", "dneg": -1, "dbad": "soon",
	})

	assert.Equal(t, 5, s.Int("i", 0))
	assert.Equal(t, 12, s.Int("si", 0))
	assert.Equal(t, 1, s.Int("f", 0))
	assert.Equal(t, 9, s.Int("missing", 9))
	assert.Equal(t, 1.5, s.Float("f", 0))
	assert.Equal(t, 5.0, s.Float("i", 0))
	assert.True(t, s.Bool("b", false))
	assert.True(t, s.Bool("bi", false))
	assert.Equal(t, "5", s.String("i", ""))

	d, err := s.Duration("d1", time.Second)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, d)

	d, err = s.Duration("d2", time.Second)
	require.NoError(t, err)
	assert.Equal(t, 1730*time.Millisecond, d)

	d, err = s.Duration("d3", time.Second)
	require.NoError(t, err)
	assert.Equal(t, time.Second, d)

	_, err = s.Duration("dneg", time.Second)
	require.Error(t, err)
	_, err = s.Duration("dbad", time.Second)
	require.Error(t, err)
}

func TestHasTransports(t *testing.T) {
	t.Parallel()
	assert.False(t, HasTransports(FromMap(nil)))
	assert.False(t, HasTransports(FromMap(map[string]any{"transports": []any{}})))
	assert.False(t, HasTransports(FromMap(map[string]any{"transports": "irc"})))
	assert.False(t, HasTransports(FromMap(map[string]any{
		"transports": map[string]any{"libera": map[string]any{"connection": map[string]any{"host": "irc.libera.chat"}}},
	})), "a mapping has no transports.0 entry")
	assert.True(t, HasTransports(FromMap(map[string]any{"transports": []any{map[string]any{}}})))
}
