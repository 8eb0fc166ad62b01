package input_test

import (
	"context"
	"testing"

	"github.com/plus3/bigby/app"
	"github.com/plus3/bigby/ecs"
	"github.com/plus3/bigby/plugins/input"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeySet(t *testing.T) {
	var keys input.KeySet
	assert.False(t, keys.Pressed(input.KeyW))

	keys.Press(input.KeyW)
	keys.Press(input.KeyA)
	assert.True(t, keys.Pressed(input.KeyW))

	keys.Release(input.KeyW)
	assert.False(t, keys.Pressed(input.KeyW))
	assert.True(t, keys.Pressed(input.KeyA))

	keys.Reset()
	assert.False(t, keys.Pressed(input.KeyA))
}

func TestBindingsRead(t *testing.T) {
	var keys input.KeySet
	b := input.DefaultBindings()

	assert.Equal(t, input.Input{}, b.Read(&keys))

	keys.Press(input.KeyD)
	keys.Press(input.KeyW)
	keys.Press(input.ArrowLeft)
	assert.Equal(t, input.Input{
		Move: input.Axis{X: 1, Y: 1},
		Aim:  input.Axis{X: -1, Y: 0},
	}, b.Read(&keys))

	// Opposite keys cancel out.
	keys.Press(input.KeyA)
	assert.Equal(t, 0.0, b.Read(&keys).Move.X)
}

func TestPlugin(t *testing.T) {
	var keys input.KeySet
	a := app.New()
	plugin := input.Plugin(&keys, input.DefaultBindings())
	a.Use(plugin).Use(plugin)

	player := a.MustSpawn(input.Input{})
	require.NoError(t, a.Start(context.Background()))

	keys.Press(input.KeyS)
	keys.Press(input.ArrowUp)

	var seen input.Input
	a.OnUpdate(func(float64) { seen = *ecs.Get[input.Input](player) })
	a.Frame(1.0 / 60)

	want := input.Input{Move: input.Axis{Y: -1}, Aim: input.Axis{Y: 1}}
	assert.Equal(t, want, seen, "updated before the update phase")
	assert.Equal(t, 1, a.Dispatcher(app.PhaseEarlyUpdate).Len())

	keys.Reset()
	a.Frame(1.0 / 60)
	assert.Equal(t, input.Input{}, *ecs.Get[input.Input](player))
}
