package config

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Store is a read-only view over the merged configuration tree.
// Keys are dotted paths; numeric segments index lists ("transports.0.name").
type Store struct {
	root  map[string]any
	files []string
}

// Load reads and merges paths in order; later files win.
func Load(paths ...string) (*Store, error) {
	root := map[string]any{}
	for _, p := range paths {
		tree, err := readTree(p)
		if err != nil {
			return nil, err
		}
		root = merge(root, tree)
	}
	return &Store{root: root, files: append([]string(nil), paths...)}, nil
}

// FromMap wraps an in-memory tree.
func FromMap(m map[string]any) *Store {
	if m == nil {
		m = map[string]any{}
	}
	return &Store{root: normalizeYAML(m).(map[string]any)}
}

// Files returns the files the store was loaded from, lowest precedence first.
func (s *Store) Files() []string { return append([]string(nil), s.files...) }

func (s *Store) Get(key string) (any, bool) {
	if s == nil {
		return nil, false
	}
	var cur any = s.root
	for _, seg := range strings.Split(key, ".") {
		switch node := cur.(type) {
		case map[string]any:
			v, ok := node[seg]
			if !ok {
				return nil, false
			}
			cur = v
		case []any:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(node) {
				return nil, false
			}
			cur = node[i]
		default:
			return nil, false
		}
	}
	return cur, true
}

// GetOr returns def when key is absent or null.
func (s *Store) GetOr(key string, def any) any {
	v, ok := s.Get(key)
	if !ok || v == nil {
		return def
	}
	return v
}

func (s *Store) String(key, def string) string {
	v, ok := s.Get(key)
	if !ok || v == nil {
		return def
	}
	if str, ok := v.(string); ok {
		return str
	}
	return fmt.Sprint(v)
}

func (s *Store) Int(key string, def int) int {
	v, ok := s.Get(key)
	if !ok {
		return def
	}
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case uint64:
		return int(n)
	case float64:
		return int(n)
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return i
		}
	}
	return def
}

func (s *Store) Float(key string, def float64) float64 {
	v, ok := s.Get(key)
	if !ok {
		return def
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
			return f
		}
	}
	return def
}

func (s *Store) Bool(key string, def bool) bool {
	v, ok := s.Get(key)
	if !ok {
		return def
	}
	switch b := v.(type) {
	case bool:
		return b
	case string:
		if p, err := strconv.ParseBool(strings.TrimSpace(b)); err == nil {
			return p
		}
	case int:
		return b != 0
	}
	return def
}

// Duration accepts Go duration strings ("1.5s") or plain numbers of seconds.
func (s *Store) Duration(key string, def time.Duration) (time.Duration, error) {
	v, ok := s.Get(key)
	if !ok || v == nil {
		return def, nil
	}
	switch n := v.(type) {
	case string:
		return ParseDurationOrDefault(key, n, def)
	case int:
		return secondsToDuration(key, float64(n), def)
	case int64:
		return secondsToDuration(key, float64(n), def)
	case float64:
		return secondsToDuration(key, n, def)
	}
	return 0, fmt.Errorf("%s: invalid duration %v", key, v)
}

func secondsToDuration(key string, sec float64, def time.Duration) (time.Duration, error) {
	if sec < 0 {
		return 0, fmt.Errorf("%s: duration must be >= 0", key)
	}
	if sec == 0 {
		return def, nil
	}
	return time.Duration(math.Round(sec * float64(time.Second))), nil
}

// HasTransports reports whether at least one transport is configured.
// Transports are a list; settings are read from its first entry.
func HasTransports(s *Store) bool {
	v, ok := s.Get("transports")
	if !ok {
		return false
	}
	t, ok := v.([]any)
	return ok && len(t) > 0
}
