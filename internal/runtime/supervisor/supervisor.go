// Package supervisor runs the bot's long-lived tasks on a shared context.
package supervisor

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"wolfbot/pkg/logx"
)

// Backoff bounds the wait between two runs of a restarting task.
type Backoff struct {
	Min time.Duration
	Max time.Duration
}

var defaultBackoff = Backoff{Min: 250 * time.Millisecond, Max: 30 * time.Second}

// Task is one unit of work started by a Group.
type Task struct {
	Name string
	Run  func(ctx context.Context) error

	// Critical tasks end the group when they return. Their error, if any,
	// becomes the group error.
	Critical bool

	// Restarts reruns a task that failed or panicked, up to this many times.
	Restarts int
	Backoff  Backoff
}

// Group tracks started tasks. The zero value is not usable; use New.
type Group struct {
	ctx    context.Context
	cancel context.CancelFunc
	log    logx.Logger

	wg      sync.WaitGroup
	running atomic.Int64

	mu  sync.Mutex
	err error
}

func New(parent context.Context, log logx.Logger) *Group {
	ctx, cancel := context.WithCancel(parent)
	return &Group{ctx: ctx, cancel: cancel, log: log}
}

func (g *Group) Context() context.Context { return g.ctx }

// Running reports how many tasks have not returned yet.
func (g *Group) Running() int64 { return g.running.Load() }

// Start launches t in its own goroutine.
func (g *Group) Start(t Task) {
	if t.Run == nil {
		return
	}
	if t.Backoff.Min <= 0 {
		t.Backoff.Min = defaultBackoff.Min
	}
	if t.Backoff.Max < t.Backoff.Min {
		t.Backoff.Max = max(defaultBackoff.Max, t.Backoff.Min)
	}

	g.running.Add(1)
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		defer g.running.Add(-1)

		log := g.log.With(logx.String("task", t.Name))
		log.Debug("task started")
		err := g.loop(log, t)

		switch {
		case t.Critical:
			if err != nil {
				g.setErr(fmt.Errorf("%s: %w", t.Name, err))
			}
			g.cancel()
		case err != nil:
			log.Warn("task gave up", logx.Err(err))
		}
		log.Debug("task stopped")
	}()
}

func (g *Group) loop(log logx.Logger, t Task) error {
	wait := t.Backoff.Min
	for attempt := 0; ; attempt++ {
		err := call(g.ctx, t.Run)
		if err == nil || g.ctx.Err() != nil || errors.Is(err, context.Canceled) {
			return nil
		}
		if attempt >= t.Restarts {
			return err
		}

		d := wait + time.Duration(rand.Int63n(int64(wait)/5+1))
		log.Warn("task failed; restarting", logx.Err(err), logx.Duration("backoff", d))
		select {
		case <-g.ctx.Done():
			return nil
		case <-time.After(d):
		}
		wait = min(wait*2, t.Backoff.Max)
	}
}

// call runs fn and turns a panic into an error carrying the stack.
func call(ctx context.Context, fn func(context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v\n%s", r, debug.Stack())
		}
	}()
	return fn(ctx)
}

func (g *Group) setErr(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err == nil {
		g.err = err
	}
}

// Stop cancels every task without waiting for them.
func (g *Group) Stop() { g.cancel() }

// Wait blocks until all tasks returned and reports the first critical error.
func (g *Group) Wait() error {
	g.wg.Wait()
	g.cancel()
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.err
}
