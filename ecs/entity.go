package ecs

import "slices"

// EntityID is the World-unique, never reused identifier of an entity.
type EntityID uint64

// Entity is an ordered bag of components owned by a World. At most one
// component per concrete type is present at a time. Components may be read
// freely; additions and removals must go through the World so that queries
// and listeners observe them.
type Entity struct {
	id         EntityID
	world      *World
	components []any
	types      []*typeInfo
}

// ID returns the entity identifier.
func (e *Entity) ID() EntityID {
	return e.id
}

// World returns the World that created the entity.
func (e *Entity) World() *World {
	return e.world
}

// Len returns the number of components.
func (e *Entity) Len() int {
	return len(e.components)
}

// Components returns a copy of the component list in storage order.
func (e *Entity) Components() []any {
	return slices.Clone(e.components)
}

// Component returns the first component whose type is t or a subtype of t,
// or nil when there is none.
func (e *Entity) Component(t ComponentType) any {
	if t.t == nil {
		return nil
	}
	info, ok := e.world.types.lookup(t.t)
	if !ok {
		return nil
	}
	return e.find(info.id)
}

// Has reports whether the entity holds a component of type t or a subtype.
func (e *Entity) Has(t ComponentType) bool {
	return e.Component(t) != nil
}

func (e *Entity) find(id TypeID) any {
	for i, info := range e.types {
		if e.world.types.is(info, id) {
			return e.components[i]
		}
	}
	return nil
}

func (e *Entity) indexOfType(info *typeInfo) int {
	return slices.Index(e.types, info)
}

// Get returns the component of concrete type T, or nil when absent. Subtype
// instances are not considered; use Entity.Component or As for those.
func Get[T any](e *Entity) *T {
	info, ok := e.world.types.lookup(TypeFor[T]().t)
	if !ok {
		return nil
	}
	idx := e.indexOfType(info)
	if idx == -1 {
		return nil
	}
	c, _ := e.components[idx].(*T)
	return c
}

// As returns the first component that satisfies T, where T is usually an
// interface type registered as a supertype.
func As[T any](e *Entity) (T, bool) {
	c, ok := e.Component(TypeFor[T]()).(T)
	return c, ok
}
