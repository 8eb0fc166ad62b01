// Package app stages the life of an ECS application: plugins configure a
// World, load and start callbacks run concurrently during startup, and an
// external ticker drives the per-frame phases until the App is stopped.
package app

import (
	"context"
	"sync"

	"github.com/plus3/bigby/config"
	"github.com/plus3/bigby/ecs"
	"github.com/plus3/bigby/event"
	"go.uber.org/zap"
)

// State is a step of the App lifecycle. An App only ever moves forward.
type State int32

const (
	StateCreated State = iota
	StateLoading
	StateStarting
	StateRunning
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateLoading:
		return "loading"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// StartupFunc is a load or start callback. It runs on its own goroutine and
// must reach the World through App.Sync.
type StartupFunc func(ctx context.Context, a *App) error

// App is a World plus lifecycle. Everything but Stop, Sync and State must be
// called from the goroutine that owns the World, usually the one running the
// ticker.
type App struct {
	*ecs.World

	logger *zap.Logger
	cfg    config.AppConfig

	mu          sync.Mutex
	state       State
	cancel      context.CancelFunc
	busy        int
	executing   bool
	pendingStop bool
	stopped     chan struct{}
	requests    chan syncRequest

	plugins     map[string]struct{}
	onLoad      []StartupFunc
	onStart     []StartupFunc
	onStop      []func(*App)
	systemStart []StartupFunc

	phases   [phaseCount]*event.Dispatcher[float64]
	stats    [phaseCount]*phaseStats
	commands *ecs.Commands

	systems map[ecs.EntityID][]*event.Subscription
}

// Option configures an App.
type Option func(*App)

// WithLogger sets the logger; the default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(a *App) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithConfig sets the name and startup settings.
func WithConfig(cfg config.AppConfig) Option {
	return func(a *App) {
		a.cfg = cfg
	}
}

// WithWorld runs the App on an existing World instead of a fresh one.
func WithWorld(w *ecs.World) Option {
	return func(a *App) {
		if w != nil {
			a.World = w
		}
	}
}

// New creates an App in the created state with the systems plugin applied.
func New(opts ...Option) *App {
	a := &App{
		World:    ecs.NewWorld(),
		logger:   zap.NewNop(),
		cfg:      config.Defaults().App,
		stopped:  make(chan struct{}),
		requests: make(chan syncRequest),
		plugins:  make(map[string]struct{}),
		commands: ecs.NewCommands(),
		systems:  make(map[ecs.EntityID][]*event.Subscription),
	}
	for p := range phaseCount {
		a.phases[p] = event.New[float64]()
		a.stats[p] = newPhaseStats(p)
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = a.logger.With(zap.String("app", a.cfg.Name))

	a.Use(systemsPlugin)
	return a
}

// Logger returns the App logger, for plugins to derive their own from.
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Config returns the settings the App was created with.
func (a *App) Config() config.AppConfig {
	return a.cfg
}

// State returns the current lifecycle state. Safe for concurrent use.
func (a *App) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Commands returns the buffer flushed by EndFrame.
func (a *App) Commands() *ecs.Commands {
	return a.commands
}

// OnLoad registers a load callback. Callbacks added once loading has begun
// are never run.
func (a *App) OnLoad(fn StartupFunc) *App {
	a.onLoad = append(a.onLoad, fn)
	return a
}

// OnStart registers a start callback. Load callbacks may add start callbacks
// through Sync; callbacks added once starting has begun are never run.
func (a *App) OnStart(fn StartupFunc) *App {
	a.onStart = append(a.onStart, fn)
	return a
}

// OnStop registers a callback run once, in registration order, by Stop.
func (a *App) OnStop(fn func(*App)) *App {
	a.onStop = append(a.onStop, fn)
	return a
}
