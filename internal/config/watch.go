package config

import (
	"context"
	"math/rand"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"wolfbot/pkg/logx"
)

const (
	watchDebounce      = 250 * time.Millisecond
	restartBackoffBase = 250 * time.Millisecond
	restartBackoffMax  = 5 * time.Second
)

// Watch reports on-disk changes of the given config files until ctx is done.
// onChange runs once per burst of events for a file, after a short debounce.
//
// The loaded configuration is never reloaded here: connection parameters are
// fixed at startup, so callers only tell the operator a restart is needed.
func Watch(ctx context.Context, paths []string, log logx.Logger, onChange func(path string)) error {
	if len(paths) == 0 || onChange == nil {
		return nil
	}

	targets := make(map[string]string, len(paths)) // abs path -> as given
	dirs := map[string]struct{}{}
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return err
		}
		targets[abs] = p
		dirs[filepath.Dir(abs)] = struct{}{}
	}

	var (
		timerMu sync.Mutex
		timers  = map[string]*time.Timer{}
	)
	debounce := func(abs string) {
		timerMu.Lock()
		defer timerMu.Unlock()
		if t := timers[abs]; t != nil {
			t.Stop()
		}
		timers[abs] = time.AfterFunc(watchDebounce, func() {
			if ctx.Err() != nil {
				return
			}
			onChange(targets[abs])
		})
	}
	defer func() {
		timerMu.Lock()
		for _, t := range timers {
			t.Stop()
		}
		timerMu.Unlock()
	}()

	backoff := restartBackoffBase
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	nextWait := func() time.Duration {
		wait := backoff + time.Duration(rng.Int63n(int64(backoff/2)+1))
		if backoff < restartBackoffMax {
			backoff *= 2
			if backoff > restartBackoffMax {
				backoff = restartBackoffMax
			}
		}
		return wait
	}
	sleep := func(d time.Duration) bool {
		select {
		case <-ctx.Done():
			return false
		case <-time.After(d):
			return true
		}
	}

	for {
		if ctx.Err() != nil {
			return nil
		}

		w, err := fsnotify.NewWatcher()
		if err != nil {
			log.Warn("config watch init failed", logx.Err(err))
			if !sleep(nextWait()) {
				return nil
			}
			continue
		}
		added := true
		for dir := range dirs {
			if err := w.Add(dir); err != nil {
				log.Warn("config watch add failed", logx.Err(err), logx.String("dir", dir))
				added = false
				break
			}
		}
		if !added {
			_ = w.Close()
			if !sleep(nextWait()) {
				return nil
			}
			continue
		}

		backoff = restartBackoffBase
		log.Debug("config watcher started", logx.Int("files", len(targets)))

		broken := false
		for !broken {
			select {
			case <-ctx.Done():
				_ = w.Close()
				return nil
			case ev, ok := <-w.Events:
				if !ok {
					broken = true
					break
				}
				abs, err := filepath.Abs(ev.Name)
				if err != nil {
					continue
				}
				if _, ok := targets[abs]; !ok {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0 {
					debounce(abs)
				}
			case err, ok := <-w.Errors:
				if !ok {
					broken = true
					break
				}
				if err == nil {
					continue
				}
				log.Warn("config watch error", logx.Err(err))
				if strings.Contains(strings.ToLower(err.Error()), "closed") {
					broken = true
				}
			}
		}

		_ = w.Close()
		wait := nextWait()
		log.Warn("config watcher stopped; restarting", logx.Duration("backoff", wait))
		if !sleep(wait) {
			return nil
		}
	}
}
