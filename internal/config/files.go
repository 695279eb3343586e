package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	BaseFile  = "botconfig.yml"
	DebugFile = "botconfig.debug.yml"
)

// ErrNotFile is returned when an explicitly named config path is missing or
// not a regular file.
var ErrNotFile = errors.New("does not exist or is not a file")

// CheckFile verifies that path names an existing regular file.
func CheckFile(path string) error {
	fi, err := os.Stat(path)
	if err != nil || !fi.Mode().IsRegular() {
		return fmt.Errorf("%s: %w", path, ErrNotFile)
	}
	return nil
}

// Files lists the config files to load, lowest precedence first:
// base, then alt (required if set), then the debug file next to base when
// debug is on. Missing base and debug files are skipped.
func Files(base, alt string, debug bool) ([]string, error) {
	if base == "" {
		base = BaseFile
	}
	var out []string
	if exists(base) {
		out = append(out, base)
	}
	if alt != "" {
		if err := CheckFile(alt); err != nil {
			return nil, err
		}
		abs, err := filepath.Abs(alt)
		if err != nil {
			return nil, err
		}
		out = append(out, abs)
	}
	if debug {
		dbg := filepath.Join(filepath.Dir(base), DebugFile)
		if exists(dbg) {
			out = append(out, dbg)
		}
	}
	return out, nil
}

func exists(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.Mode().IsRegular()
}
