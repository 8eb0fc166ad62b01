package app

import "go.uber.org/zap"

// Plugin is a unit of composition. Apply receives the App and returns the App
// to continue with; returning nil keeps the current one. Plugins are
// identified by Key: using a plugin whose key was already applied does nothing,
// so plugins may freely Use their dependencies.
type Plugin struct {
	Key   string
	Apply func(*App) *App
}

// NewPlugin builds a Plugin from a function that only configures the App.
func NewPlugin(key string, fn func(*App)) Plugin {
	return Plugin{
		Key: key,
		Apply: func(a *App) *App {
			fn(a)
			return a
		},
	}
}

// Use applies p unless a plugin with the same key was applied before.
func (a *App) Use(p Plugin) *App {
	if _, ok := a.plugins[p.Key]; ok {
		return a
	}
	a.plugins[p.Key] = struct{}{}
	a.logger.Debug("applying plugin", zap.String("plugin", p.Key))

	if p.Apply == nil {
		return a
	}
	if next := p.Apply(a); next != nil {
		return next
	}
	return a
}

// HasPlugin reports whether a plugin with the given key was applied.
func (a *App) HasPlugin(key string) bool {
	_, ok := a.plugins[key]
	return ok
}
