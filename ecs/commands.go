package ecs

import (
	"fmt"

	"go.uber.org/multierr"
)

// Commands buffers structural changes so they can be issued while a query is
// being iterated and applied later, usually at the end of a frame.
//
// Flush applies the buffer in a fixed order: destroys, removals, additions,
// spawns and finally deferred functions. Operations targeting an entity
// destroyed in the same flush are dropped.
type Commands struct {
	spawns   []spawnCommand
	destroys []*Entity
	adds     []addComponentCommand
	removes  []removeComponentCommand
	defers   []func()
}

// NewCommands returns an empty buffer.
func NewCommands() *Commands {
	return &Commands{}
}

type spawnCommand struct {
	components []any
	then       func(*Entity)
}

type addComponentCommand struct {
	entity    *Entity
	component any
}

type removeComponentCommand struct {
	entity          *Entity
	componentOrType any
}

// Defer queues a function to run after every other buffered operation.
func (c *Commands) Defer(fn func()) {
	c.defers = append(c.defers, fn)
}

// Spawn queues an entity spawn.
func (c *Commands) Spawn(components ...any) {
	c.spawns = append(c.spawns, spawnCommand{components: components})
}

// SpawnThen queues an entity spawn and calls then with the new entity once it
// exists. then is not called when the spawn fails.
func (c *Commands) SpawnThen(then func(*Entity), components ...any) {
	c.spawns = append(c.spawns, spawnCommand{components: components, then: then})
}

// Destroy queues an entity removal.
func (c *Commands) Destroy(entity *Entity) {
	c.destroys = append(c.destroys, entity)
}

// AddComponent queues a component addition.
func (c *Commands) AddComponent(entity *Entity, component any) {
	c.adds = append(c.adds, addComponentCommand{entity: entity, component: component})
}

// RemoveComponent queues a component removal by identity or ComponentType.
func (c *Commands) RemoveComponent(entity *Entity, componentOrType any) {
	c.removes = append(c.removes, removeComponentCommand{entity: entity, componentOrType: componentOrType})
}

// Len returns the number of buffered operations.
func (c *Commands) Len() int {
	return len(c.spawns) + len(c.destroys) + len(c.adds) + len(c.removes) + len(c.defers)
}

// Flush applies every buffered operation to w and resets the buffer. Failed
// operations do not stop the flush; their errors are combined and returned.
// Operations queued while the flush runs, from SpawnThen or Defer callbacks or
// from listeners, stay buffered for the next flush.
func (c *Commands) Flush(w *World) error {
	spawns, destroys, adds, removes, defers := c.spawns, c.destroys, c.adds, c.removes, c.defers
	c.spawns, c.destroys, c.adds, c.removes, c.defers = nil, nil, nil, nil, nil

	var errs error
	destroyed := make(map[*Entity]struct{}, len(destroys))

	for _, entity := range destroys {
		w.Destroy(entity)
		destroyed[entity] = struct{}{}
	}

	for _, cmd := range removes {
		if _, gone := destroyed[cmd.entity]; gone {
			continue
		}
		w.RemoveComponent(cmd.entity, cmd.componentOrType)
	}

	for _, cmd := range adds {
		if _, gone := destroyed[cmd.entity]; gone {
			continue
		}
		if _, err := w.AddComponent(cmd.entity, cmd.component); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("add %s: %w", TypeOf(cmd.component), err))
		}
	}

	for _, cmd := range spawns {
		entity, err := w.Spawn(cmd.components...)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("spawn: %w", err))
			continue
		}
		if cmd.then != nil {
			cmd.then(entity)
		}
	}

	for _, fn := range defers {
		fn()
	}

	c.recycle(spawns, destroys, adds, removes, defers)
	return errs
}

// recycle hands the flushed slices back for reuse when nothing was queued
// during the flush. Entries are cleared so flushed components, entities and
// funcs can be collected.
func (c *Commands) recycle(spawns []spawnCommand, destroys []*Entity, adds []addComponentCommand, removes []removeComponentCommand, defers []func()) {
	clear(spawns)
	clear(destroys)
	clear(adds)
	clear(removes)
	clear(defers)
	if c.spawns == nil {
		c.spawns = spawns[:0]
	}
	if c.destroys == nil {
		c.destroys = destroys[:0]
	}
	if c.adds == nil {
		c.adds = adds[:0]
	}
	if c.removes == nil {
		c.removes = removes[:0]
	}
	if c.defers == nil {
		c.defers = defers[:0]
	}
}
