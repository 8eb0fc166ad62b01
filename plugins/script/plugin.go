package script

import (
	"context"
	"fmt"

	"github.com/plus3/bigby/app"
	"github.com/plus3/bigby/config"
	"github.com/plus3/bigby/ecs"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// PluginKey identifies the script plugin.
const PluginKey = "bigby/script"

type source struct {
	name string
	code string
}

type options struct {
	exposed map[string]ecs.ComponentType
	sources []source
	loaded  func(*Engine)
}

type Option func(*options)

// Expose makes component type T, which the plugin registers, reachable from
// Lua under name.
func Expose[T any](name string) Option {
	return func(o *options) {
		o.exposed[name] = ecs.TypeFor[T]()
	}
}

// WithSource adds an inline script loaded after the configured paths.
func WithSource(name, code string) Option {
	return func(o *options) {
		o.sources = append(o.sources, source{name: name, code: code})
	}
}

// OnLoaded is called with the engine once every script was loaded.
func OnLoaded(fn func(*Engine)) Option {
	return func(o *options) {
		o.loaded = fn
	}
}

// Plugin loads the scripts named by cfg during the load phase and adds one
// system per script. Files are read concurrently with other load callbacks;
// compiling and running them happens on the World goroutine. The VM is closed
// after the scripts' on_stop hooks ran.
func Plugin(cfg config.ScriptConfig, opts ...Option) app.Plugin {
	o := &options{exposed: make(map[string]ecs.ComponentType)}
	for _, opt := range opts {
		opt(o)
	}

	return app.NewPlugin(PluginKey, func(a *app.App) {
		log := a.Logger().Named("script")
		for _, t := range o.exposed {
			a.RegisterComponent(t)
		}

		a.OnLoad(func(ctx context.Context, a *app.App) error {
			sources, err := readPaths(cfg.Paths)
			if err != nil {
				return fmt.Errorf("script: %w", err)
			}
			sources = append(sources, o.sources...)

			var loadErr error
			syncErr := a.Sync(func(a *app.App) {
				engine := newEngine(a, log)
				engine.exposed = o.exposed
				engine.vm.SetContext(ctx)

				for _, src := range sources {
					sys, err := engine.load(src)
					if err != nil {
						loadErr = multierr.Append(loadErr, err)
						continue
					}
					if _, err := a.AddSystem(sys); err != nil {
						loadErr = multierr.Append(loadErr, err)
						continue
					}
					engine.systems = append(engine.systems, sys)
				}
				if loadErr != nil {
					engine.Close()
					return
				}

				engine.vm.RemoveContext()
				a.OnStop(func(*app.App) { engine.Close() })
				log.Info("scripts loaded", zap.Int("count", len(engine.systems)))
				if o.loaded != nil {
					o.loaded(engine)
				}
			})
			return multierr.Combine(syncErr, loadErr)
		})
	})
}

// System is one loaded script.
type System struct {
	engine *Engine
	name   string
	hooks  *lua.LTable
}

// Name returns the file or source name of the script.
func (s *System) Name() string {
	return s.name
}

// Has reports whether the script defines the named hook.
func (s *System) Has(hook string) bool {
	return s.hooks.RawGetString(hook).Type() == lua.LTFunction
}

func (s *System) call(hook string, args ...lua.LValue) error {
	if s.engine.closed {
		return nil
	}
	fn := s.hooks.RawGetString(hook)
	if fn.Type() != lua.LTFunction {
		return nil
	}
	return s.engine.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    0,
		Protect: true,
	}, args...)
}

func (s *System) OnStart(ctx context.Context, a *app.App) error {
	var err error
	if syncErr := a.Sync(func(*app.App) { err = s.call("on_start") }); syncErr != nil {
		return syncErr
	}
	if err != nil {
		return fmt.Errorf("%s on_start: %w", s.name, err)
	}
	return nil
}

func (s *System) OnStop(*app.App) {
	s.report("on_stop", s.call("on_stop"))
}

func (s *System) Update(dt float64) {
	s.report("on_update", s.call("on_update", lua.LNumber(dt)))
}

func (s *System) FixedUpdate(dt float64) {
	s.report("on_fixed_update", s.call("on_fixed_update", lua.LNumber(dt)))
}

// report logs hook failures; a failing frame hook does not stop the App.
func (s *System) report(hook string, err error) {
	if err != nil {
		s.engine.log.Error("lua hook failed",
			zap.String("script", s.name),
			zap.String("hook", hook),
			zap.Error(err),
		)
	}
}
