package ecs_test

import (
	"fmt"

	"github.com/plus3/bigby/ecs"
)

// ExampleCommands demonstrates using command buffers to defer entity mutations
// while a query is being iterated. The buffer is applied with Flush, usually at
// the end of the frame.
func ExampleCommands() {
	w := ecs.NewWorld()
	ecs.Register[Position](w)
	ecs.Register[Health](w)

	w.MustSpawn(Position{X: 0, Y: 0}, Health{Current: 0, Max: 100})
	w.MustSpawn(Position{X: 10, Y: 10}, Health{Current: 50, Max: 100})
	w.MustSpawn(Position{X: 20, Y: 20}, Health{Current: 100, Max: 100})

	cmds := ecs.NewCommands()
	deadCount := 0
	ecs.Each1(w.MustQuery(ecs.TypeFor[Health]()), func(e *ecs.Entity, h *Health) {
		if h.Current <= 0 {
			cmds.Destroy(e)
			deadCount++
		}
	})
	fmt.Printf("Queued %d dead entities for deletion\n", deadCount)

	if err := cmds.Flush(w); err != nil {
		fmt.Println(err)
	}
	fmt.Printf("Remaining entities: %d\n", w.Len())

	// Output:
	// Queued 1 dead entities for deletion
	// Remaining entities: 2
}
