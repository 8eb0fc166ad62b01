package app

import (
	"context"
	"fmt"
	"reflect"

	"github.com/plus3/bigby/ecs"
	"github.com/plus3/bigby/event"
	"go.uber.org/zap"
)

// System is a pointer to a value implementing one or more of the hook
// interfaces below. AddSystem spawns it as the only component of its own
// entity; destroying that entity unhooks it.
type System any

// StartHook runs with the start callbacks.
type StartHook interface {
	OnStart(ctx context.Context, a *App) error
}

// StopHook runs with the stop callbacks.
type StopHook interface {
	OnStop(a *App)
}

type EarlyUpdateHook interface {
	EarlyUpdate(dt float64)
}

type FixedUpdateHook interface {
	FixedUpdate(dt float64)
}

type UpdateHook interface {
	Update(dt float64)
}

type LateUpdateHook interface {
	LateUpdate(dt float64)
}

type RenderHook interface {
	Render(dt float64)
}

const systemsPluginKey = "bigby/systems"

// systemsPlugin unhooks systems whose entity leaves the World.
var systemsPlugin = NewPlugin(systemsPluginKey, func(a *App) {
	a.OnEntityRemoved.Add(func(e *ecs.Entity) {
		subs, ok := a.systems[e.ID()]
		if !ok {
			return
		}
		for _, sub := range subs {
			sub.Cancel()
		}
		delete(a.systems, e.ID())
	})
})

// AddSystem registers the system's type, spawns it and connects every hook it
// implements. A StartHook added after startup finished runs immediately with
// a background context and its error is returned; one added while the start
// phase is running is started in a follow-up round before the App runs.
func (a *App) AddSystem(sys System) (*ecs.Entity, error) {
	if sys == nil || reflect.TypeOf(sys).Kind() != reflect.Pointer {
		return nil, fmt.Errorf("%w: systems must be non-nil pointers, got %T", ecs.ErrInvalidComponent, sys)
	}

	var subs []*event.Subscription
	hook := func(p Phase, fn func(float64)) {
		subs = append(subs, a.phases[p].Add(fn))
	}
	if h, ok := sys.(EarlyUpdateHook); ok {
		hook(PhaseEarlyUpdate, h.EarlyUpdate)
	}
	if h, ok := sys.(FixedUpdateHook); ok {
		hook(PhaseFixedUpdate, h.FixedUpdate)
	}
	if h, ok := sys.(UpdateHook); ok {
		hook(PhaseUpdate, h.Update)
	}
	if h, ok := sys.(LateUpdateHook); ok {
		hook(PhaseLateUpdate, h.LateUpdate)
	}
	if h, ok := sys.(RenderHook); ok {
		hook(PhaseRender, h.Render)
	}
	starter, hasStart := sys.(StartHook)
	stopper, hasStop := sys.(StopHook)

	if len(subs) == 0 && !hasStart && !hasStop {
		return nil, fmt.Errorf("%w: %T", ErrNoHooks, sys)
	}

	a.RegisterComponent(ecs.TypeOf(sys))
	entity, err := a.Spawn(sys)
	if err != nil {
		for _, sub := range subs {
			sub.Cancel()
		}
		return nil, err
	}
	a.systems[entity.ID()] = subs

	if hasStop {
		a.OnStop(func(a *App) {
			if a.Contains(entity) {
				stopper.OnStop(a)
			}
		})
	}

	a.logger.Debug("system added",
		zap.String("system", ecs.TypeOf(sys).String()),
		zap.Uint64("entity", uint64(entity.ID())),
		zap.Int("hooks", len(subs)),
	)

	if hasStart {
		switch a.State() {
		case StateCreated, StateLoading, StateStarting:
			a.mu.Lock()
			a.systemStart = append(a.systemStart, func(ctx context.Context, a *App) error {
				return starter.OnStart(ctx, a)
			})
			a.mu.Unlock()
		case StateRunning:
			if err := starter.OnStart(context.Background(), a); err != nil {
				return entity, fmt.Errorf("start %T: %w", sys, err)
			}
		}
	}

	return entity, nil
}

// Systems returns the entities of every live system, in spawn order.
func (a *App) Systems() []*ecs.Entity {
	systems := make([]*ecs.Entity, 0, len(a.systems))
	for _, e := range a.Entities() {
		if _, ok := a.systems[e.ID()]; ok {
			systems = append(systems, e)
		}
	}
	return systems
}
