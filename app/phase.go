package app

import (
	"time"

	"github.com/plus3/bigby/event"
	"go.uber.org/zap"
)

// Phase is one of the fixed per-frame dispatch stages, in frame order.
type Phase int

const (
	PhaseEarlyUpdate Phase = iota
	PhaseFixedUpdate
	PhaseUpdate
	PhaseLateUpdate
	PhaseRender
	PhaseEndFrame

	phaseCount
)

var phaseNames = [phaseCount]string{
	"EarlyUpdate",
	"FixedUpdate",
	"Update",
	"LateUpdate",
	"Render",
	"EndFrame",
}

func (p Phase) String() string {
	if p < 0 || p >= phaseCount {
		return "Unknown"
	}
	return phaseNames[p]
}

// Phases lists every phase in frame order.
func Phases() []Phase {
	phases := make([]Phase, phaseCount)
	for p := range phaseCount {
		phases[p] = p
	}
	return phases
}

// Dispatcher returns the dispatcher behind a phase, to subscribe with a
// cancellable handle. EndFrame listeners run after the command buffer has
// been flushed.
func (a *App) Dispatcher(p Phase) *event.Dispatcher[float64] {
	return a.phases[p]
}

func (a *App) OnEarlyUpdate(fn func(dt float64)) *App { return a.on(PhaseEarlyUpdate, fn) }
func (a *App) OnFixedUpdate(fn func(dt float64)) *App { return a.on(PhaseFixedUpdate, fn) }
func (a *App) OnUpdate(fn func(dt float64)) *App      { return a.on(PhaseUpdate, fn) }
func (a *App) OnLateUpdate(fn func(dt float64)) *App  { return a.on(PhaseLateUpdate, fn) }
func (a *App) OnRender(fn func(dt float64)) *App      { return a.on(PhaseRender, fn) }
func (a *App) OnEndFrame(fn func(dt float64)) *App    { return a.on(PhaseEndFrame, fn) }

func (a *App) on(p Phase, fn func(dt float64)) *App {
	a.phases[p].Add(fn)
	return a
}

// The per-frame entry points are called by a ticker with the elapsed time in
// seconds. They do nothing unless the App is running.

func (a *App) EarlyUpdate(dt float64) { a.dispatch(PhaseEarlyUpdate, dt) }
func (a *App) FixedUpdate(dt float64) { a.dispatch(PhaseFixedUpdate, dt) }
func (a *App) Update(dt float64)      { a.dispatch(PhaseUpdate, dt) }
func (a *App) LateUpdate(dt float64)  { a.dispatch(PhaseLateUpdate, dt) }
func (a *App) Render(dt float64)      { a.dispatch(PhaseRender, dt) }

// EndFrame applies the buffered commands and then notifies EndFrame
// listeners. Command failures are logged, not returned.
func (a *App) EndFrame() {
	if !a.enter(StateRunning) {
		return
	}
	defer a.leave()

	start := time.Now()
	if err := a.commands.Flush(a.World); err != nil {
		a.logger.Warn("command flush failed", zap.Error(err))
	}
	a.phases[PhaseEndFrame].Emit(0)
	a.stats[PhaseEndFrame].record(time.Since(start))
}

// Frame runs every phase once, passing dt to each. Tickers with a fixed
// timestep call the phases individually instead.
func (a *App) Frame(dt float64) {
	a.EarlyUpdate(dt)
	a.FixedUpdate(dt)
	a.Update(dt)
	a.LateUpdate(dt)
	a.Render(dt)
	a.EndFrame()
}

func (a *App) dispatch(p Phase, dt float64) {
	if !a.enter(StateRunning) {
		return
	}
	defer a.leave()

	start := time.Now()
	a.phases[p].Emit(dt)
	a.stats[p].record(time.Since(start))
}

// Stats describes per-phase execution times.
type Stats struct {
	SystemCount     int
	TotalExecutions int64
	Phases          []PhaseStats
}

// PhaseStats provides execution statistics for a single phase.
type PhaseStats struct {
	Name           string
	Listeners      int
	ExecutionCount int64
	MinDuration    time.Duration
	MaxDuration    time.Duration
	AvgDuration    time.Duration
	LastDuration   time.Duration
	TotalDuration  time.Duration
}

type phaseStats struct {
	name           string
	executionCount int64
	minDuration    time.Duration
	maxDuration    time.Duration
	totalDuration  time.Duration
	lastDuration   time.Duration
}

func newPhaseStats(p Phase) *phaseStats {
	return &phaseStats{
		name:        p.String(),
		minDuration: time.Duration(1<<63 - 1),
	}
}

func (s *phaseStats) record(d time.Duration) {
	s.executionCount++
	s.lastDuration = d
	s.totalDuration += d
	if d < s.minDuration {
		s.minDuration = d
	}
	if d > s.maxDuration {
		s.maxDuration = d
	}
}

// Stats returns statistics about phase execution.
func (a *App) Stats() *Stats {
	stats := &Stats{
		SystemCount: len(a.systems),
		Phases:      make([]PhaseStats, phaseCount),
	}

	var totalExecs int64
	for i, internal := range a.stats {
		avgDuration := time.Duration(0)
		minDuration := internal.minDuration
		if internal.executionCount > 0 {
			avgDuration = internal.totalDuration / time.Duration(internal.executionCount)
		} else {
			minDuration = 0
		}

		stats.Phases[i] = PhaseStats{
			Name:           internal.name,
			Listeners:      a.phases[i].Len(),
			ExecutionCount: internal.executionCount,
			MinDuration:    minDuration,
			MaxDuration:    internal.maxDuration,
			AvgDuration:    avgDuration,
			LastDuration:   internal.lastDuration,
			TotalDuration:  internal.totalDuration,
		}
		totalExecs += internal.executionCount
	}

	stats.TotalExecutions = totalExecs
	return stats
}
