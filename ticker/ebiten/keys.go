package ebiten

import (
	eb "github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/bigby/plugins/input"
)

var keyMap = map[input.Key]eb.Key{
	input.KeyW:       eb.KeyW,
	input.KeyA:       eb.KeyA,
	input.KeyS:       eb.KeyS,
	input.KeyD:       eb.KeyD,
	input.ArrowUp:    eb.KeyArrowUp,
	input.ArrowDown:  eb.KeyArrowDown,
	input.ArrowLeft:  eb.KeyArrowLeft,
	input.ArrowRight: eb.KeyArrowRight,
	input.Space:      eb.KeySpace,
	input.Escape:     eb.KeyEscape,
}

// Keyboard is an input.KeySource reading Ebiten's keyboard state. Keys
// without an Ebiten equivalent are never pressed.
type Keyboard struct{}

func (Keyboard) Pressed(key input.Key) bool {
	k, ok := keyMap[key]
	return ok && eb.IsKeyPressed(k)
}

// Lookup returns the Ebiten key for key.
func Lookup(key input.Key) (eb.Key, bool) {
	k, ok := keyMap[key]
	return k, ok
}
