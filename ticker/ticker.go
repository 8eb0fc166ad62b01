// Package ticker supplies frame timing to an App: a fixed-timestep
// accumulator that splits elapsed time into fixed updates, and a headless
// loop that ticks it in real time.
package ticker

import (
	"context"
	"time"

	"github.com/plus3/bigby/config"
)

// Driver is the per-frame surface of an App.
type Driver interface {
	EarlyUpdate(dt float64)
	FixedUpdate(dt float64)
	Update(dt float64)
	LateUpdate(dt float64)
	Render(dt float64)
	EndFrame()
}

// Ticker turns variable frame times into the App's phase sequence. Each Tick
// runs EarlyUpdate, as many FixedUpdates of exactly one step as the
// accumulated time allows, then Update, LateUpdate, Render and EndFrame.
// When more than MaxSteps fixed updates are due in one frame the backlog is
// dropped so a slow frame cannot snowball.
type Ticker struct {
	driver   Driver
	step     float64
	maxSteps int

	accumulator float64
	frames      uint64
	fixedSteps  uint64
	dropped     uint64
}

// New creates a Ticker for driver with the step and step cap of cfg.
func New(driver Driver, cfg config.TickerConfig) *Ticker {
	maxSteps := cfg.MaxSteps
	if maxSteps < 1 {
		maxSteps = 1
	}
	step := cfg.FixedStep.Seconds()
	if step <= 0 {
		step = config.Defaults().Ticker.FixedStep.Seconds()
	}
	return &Ticker{
		driver:   driver,
		step:     step,
		maxSteps: maxSteps,
	}
}

// Tick advances one frame by dt seconds. Negative values count as zero.
func (t *Ticker) Tick(dt float64) {
	if dt < 0 {
		dt = 0
	}
	t.Advance(dt)
	t.driver.Render(dt)
	t.driver.EndFrame()
}

// Advance runs the simulation half of a frame, EarlyUpdate through
// LateUpdate, for hosts that render on their own schedule.
func (t *Ticker) Advance(dt float64) {
	if dt < 0 {
		dt = 0
	}
	t.frames++

	t.driver.EarlyUpdate(dt)

	t.accumulator += dt
	steps := 0
	for t.accumulator >= t.step && steps < t.maxSteps {
		t.driver.FixedUpdate(t.step)
		t.accumulator -= t.step
		steps++
	}
	if t.accumulator >= t.step {
		t.dropped += uint64(t.accumulator / t.step)
		t.accumulator = 0
	}
	t.fixedSteps += uint64(steps)

	t.driver.Update(dt)
	t.driver.LateUpdate(dt)
}

// Alpha returns how far the accumulator is into the next fixed step, in
// [0, 1), for interpolating rendered state.
func (t *Ticker) Alpha() float64 {
	return t.accumulator / t.step
}

// Step returns the fixed timestep in seconds.
func (t *Ticker) Step() float64 {
	return t.step
}

// Counters reports frames ticked, fixed updates run and fixed updates dropped.
func (t *Ticker) Counters() (frames, fixedSteps, dropped uint64) {
	return t.frames, t.fixedSteps, t.dropped
}

// Run ticks at the given interval until ctx is cancelled or done is closed,
// passing the measured time between ticks. A nil done never fires.
func (t *Ticker) Run(ctx context.Context, interval time.Duration, done <-chan struct{}) {
	clock := time.NewTicker(interval)
	defer clock.Stop()

	lastTime := time.Now()

	for {
		select {
		case <-ctx.Done():
			return
		case <-done:
			return
		case now := <-clock.C:
			dt := now.Sub(lastTime).Seconds()
			lastTime = now
			t.Tick(dt)
		}
	}
}
