package app

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type syncRequest struct {
	fn   func(*App)
	done chan error
}

// Start runs the load phase, then the start phase, then enters the running
// state. Each phase runs all of its callbacks concurrently, at most
// StartupConcurrency at a time, and waits for every one of them before
// finishing. If any callback fails the App stays in that phase and Start
// returns every failure combined; multierr.Errors splits them again.
//
// Start serves Sync requests on the calling goroutine while callbacks run,
// so it must be called from the goroutine that owns the World.
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	if a.state != StateCreated {
		a.mu.Unlock()
		return ErrAlreadyStarted
	}
	var cancel context.CancelFunc
	if a.cfg.StartupTimeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, a.cfg.StartupTimeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	defer cancel()
	a.cancel = cancel
	a.state = StateLoading
	a.busy++
	a.mu.Unlock()
	defer a.leave()

	begin := time.Now()
	a.logger.Info("app loading", zap.Int("callbacks", len(a.onLoad)))
	if err := a.runStartup(ctx, a.onLoad); err != nil {
		a.logger.Error("load phase failed", zap.Error(err))
		return fmt.Errorf("load phase: %w", err)
	}
	if !a.advance(StateLoading, StateStarting) {
		return ErrStopped
	}

	starts := append(slices.Clone(a.onStart), a.takeSystemStarts()...)
	a.logger.Info("app starting", zap.Int("callbacks", len(starts)))
	for len(starts) > 0 {
		if err := a.runStartup(ctx, starts); err != nil {
			a.logger.Error("start phase failed", zap.Error(err))
			return fmt.Errorf("start phase: %w", err)
		}
		// Systems added by start callbacks are started before running.
		starts = a.takeSystemStarts()
	}
	if !a.advance(StateStarting, StateRunning) {
		return ErrStopped
	}

	a.logger.Info("app running", zap.Duration("startup", time.Since(begin)))
	return nil
}

func (a *App) takeSystemStarts() []StartupFunc {
	a.mu.Lock()
	defer a.mu.Unlock()
	starts := a.systemStart
	a.systemStart = nil
	return starts
}

func (a *App) advance(from, to State) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state != from {
		return false
	}
	a.state = to
	return true
}

// runStartup fans fns out over an errgroup and serves Sync requests until all
// of them returned. A failure does not cancel its siblings.
func (a *App) runStartup(ctx context.Context, fns []StartupFunc) error {
	if len(fns) == 0 {
		return nil
	}

	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs error
	)
	if a.cfg.StartupConcurrency > 0 {
		g.SetLimit(a.cfg.StartupConcurrency)
	}

	a.setExecuting(true)
	defer a.setExecuting(false)

	finished := make(chan struct{})
	go func() {
		defer close(finished)
		for _, fn := range fns {
			g.Go(func() error {
				if err := fn(ctx, a); err != nil {
					mu.Lock()
					errs = multierr.Append(errs, err)
					mu.Unlock()
				}
				return nil
			})
		}
		_ = g.Wait()
	}()

	for {
		select {
		case req := <-a.requests:
			a.serve(req)
		case <-finished:
			return errs
		}
	}
}

func (a *App) serve(req syncRequest) {
	select {
	case <-a.stopped:
		req.done <- ErrStopped
		return
	default:
	}
	req.fn(a)
	req.done <- nil
}

func (a *App) setExecuting(v bool) {
	a.mu.Lock()
	a.executing = v
	a.mu.Unlock()
}

// Sync runs fn with exclusive access to the App and its World and returns once
// fn has finished. During startup fn runs on the goroutine that called Start;
// at any other time it runs directly on the caller, which must then own the
// World. fn must not call Sync itself. After Stop, Sync returns ErrStopped
// without running fn.
func (a *App) Sync(fn func(*App)) error {
	a.mu.Lock()
	state, executing := a.state, a.executing
	a.mu.Unlock()

	if state == StateStopped {
		return ErrStopped
	}
	if !executing {
		fn(a)
		return nil
	}

	req := syncRequest{fn: fn, done: make(chan error, 1)}
	select {
	case a.requests <- req:
		return <-req.done
	case <-a.stopped:
		return ErrStopped
	}
}

// Stop moves the App to the stopped state, cancels the startup context and
// runs the stop callbacks in registration order. When called while startup
// callbacks or a frame phase are running, the stop callbacks run on the
// owning goroutine as soon as that work returns. Stop may be called from any
// goroutine; calling it again does nothing.
func (a *App) Stop() error {
	a.mu.Lock()
	switch a.state {
	case StateCreated:
		a.mu.Unlock()
		return ErrNotStarted
	case StateStopped:
		a.mu.Unlock()
		return nil
	}

	from := a.state
	a.state = StateStopped
	close(a.stopped)
	if a.cancel != nil {
		a.cancel()
	}
	deferred := a.busy > 0
	a.pendingStop = deferred
	a.mu.Unlock()

	a.logger.Info("app stopping", zap.Stringer("from", from), zap.Bool("deferred", deferred))
	if !deferred {
		a.runStopHooks()
	}
	return nil
}

// Done is closed once Stop has been called.
func (a *App) Done() <-chan struct{} {
	return a.stopped
}

func (a *App) runStopHooks() {
	for _, fn := range a.onStop {
		fn(a)
	}
	a.logger.Info("app stopped")
}

// enter marks the start of work that owns the World, if the App is in want.
func (a *App) enter(want State) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state != want {
		return false
	}
	a.busy++
	return true
}

func (a *App) leave() {
	a.mu.Lock()
	a.busy--
	run := a.busy == 0 && a.pendingStop
	if run {
		a.pendingStop = false
	}
	a.mu.Unlock()

	if run {
		a.runStopHooks()
	}
}
