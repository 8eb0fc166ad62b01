// Package input maps keyboard state onto Input components once per frame.
package input

import (
	"github.com/plus3/bigby/app"
	"github.com/plus3/bigby/ecs"
)

// PluginKey identifies the input plugin.
const PluginKey = "bigby/input"

// Key is a physical key code, named like the DOM KeyboardEvent.code values.
type Key string

const (
	KeyW       Key = "KeyW"
	KeyA       Key = "KeyA"
	KeyS       Key = "KeyS"
	KeyD       Key = "KeyD"
	ArrowUp    Key = "ArrowUp"
	ArrowDown  Key = "ArrowDown"
	ArrowLeft  Key = "ArrowLeft"
	ArrowRight Key = "ArrowRight"
	Space      Key = "Space"
	Escape     Key = "Escape"
)

// KeySource reports whether a key is currently held.
type KeySource interface {
	Pressed(key Key) bool
}

// Axis is a direction with components in [-1, 1].
type Axis struct {
	X, Y float64
}

// Input is the component the plugin writes every early update.
type Input struct {
	Move Axis
	Aim  Axis
}

// Bindings assigns keys to the two axes.
type Bindings struct {
	MoveUp, MoveDown, MoveLeft, MoveRight Key
	AimUp, AimDown, AimLeft, AimRight     Key
}

// DefaultBindings moves with WASD and aims with the arrow keys.
func DefaultBindings() Bindings {
	return Bindings{
		MoveUp: KeyW, MoveDown: KeyS, MoveLeft: KeyA, MoveRight: KeyD,
		AimUp: ArrowUp, AimDown: ArrowDown, AimLeft: ArrowLeft, AimRight: ArrowRight,
	}
}

// Keys lists every bound key.
func (b Bindings) Keys() []Key {
	return []Key{
		b.MoveUp, b.MoveDown, b.MoveLeft, b.MoveRight,
		b.AimUp, b.AimDown, b.AimLeft, b.AimRight,
	}
}

// Read evaluates both axes against src.
func (b Bindings) Read(src KeySource) Input {
	axis := func(pos, neg Key) float64 {
		return pressed(src, pos) - pressed(src, neg)
	}
	return Input{
		Move: Axis{X: axis(b.MoveRight, b.MoveLeft), Y: axis(b.MoveUp, b.MoveDown)},
		Aim:  Axis{X: axis(b.AimRight, b.AimLeft), Y: axis(b.AimUp, b.AimDown)},
	}
}

func pressed(src KeySource, key Key) float64 {
	if src.Pressed(key) {
		return 1
	}
	return 0
}

// Plugin registers Input and refreshes every Input component from src at the
// start of each frame.
func Plugin(src KeySource, bindings Bindings) app.Plugin {
	return app.NewPlugin(PluginKey, func(a *app.App) {
		ecs.Register[Input](a.World)
		inputs := a.MustQuery(ecs.TypeFor[Input]())

		a.OnEarlyUpdate(func(float64) {
			state := bindings.Read(src)
			ecs.Each1(inputs, func(_ *ecs.Entity, in *Input) {
				*in = state
			})
		})
	})
}
