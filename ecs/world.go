package ecs

import (
	"fmt"
	"slices"

	"github.com/kamstrup/intmap"
	"github.com/plus3/bigby/event"
)

// World owns entities, the registry of legal component types and the memoized
// queries. It is the only authority allowed to mutate entities; every change is
// announced on OnEntityAdded, OnEntityUpdated or OnEntityRemoved after the World
// already reflects it.
//
// A World is not safe for concurrent use.
type World struct {
	types      *typeTable
	registered *intmap.Map[TypeID, struct{}]

	entities []*Entity
	index    *intmap.Map[EntityID, int]
	lastID   EntityID

	queries map[uint64][]*Query

	OnEntityAdded   *event.Dispatcher[*Entity]
	OnEntityUpdated *event.Dispatcher[*Entity]
	OnEntityRemoved *event.Dispatcher[*Entity]
}

// NewWorld creates an empty World.
func NewWorld() *World {
	return &World{
		types:           newTypeTable(),
		registered:      intmap.New[TypeID, struct{}](64),
		index:           intmap.New[EntityID, int](256),
		queries:         make(map[uint64][]*Query),
		OnEntityAdded:   event.New[*Entity](),
		OnEntityUpdated: event.New[*Entity](),
		OnEntityRemoved: event.New[*Entity](),
	}
}

// RegisterComponent marks the given types, and implicitly all of their
// subtypes, as legal. Registering an interface type makes every type whose
// pointer implements it legal and lets queries ask for it. Registering twice
// is harmless.
func (w *World) RegisterComponent(types ...ComponentType) *World {
	for _, t := range types {
		if t.t == nil {
			continue
		}
		info := w.types.info(t.t)
		w.registered.Put(info.id, struct{}{})
		if t.IsInterface() {
			w.types.addInterface(info)
		}
	}
	return w
}

// Register is the generic form of World.RegisterComponent.
func Register[T any](w *World) *World {
	return w.RegisterComponent(TypeFor[T]())
}

// Extend declares child a subtype of parent: components of type child satisfy
// queries for parent, and child is legal whenever parent is registered. A type
// has at most one explicit parent; declaring another replaces it. Declare the
// hierarchy before spawning, existing query memberships are not re-evaluated.
func (w *World) Extend(child, parent ComponentType) *World {
	if child.t == nil || parent.t == nil {
		return w
	}
	w.types.setParent(w.types.info(child.t), w.types.info(parent.t))
	return w
}

// Extends is the generic form of World.Extend.
func Extends[Child, Parent any](w *World) *World {
	return w.Extend(TypeFor[Child](), TypeFor[Parent]())
}

// RequireComponent fails with a *ComponentNotRegisteredError when any of the
// types is not legal. It registers nothing; plugins use it to declare that
// another plugin must have been installed first.
func (w *World) RequireComponent(types ...ComponentType) error {
	for _, t := range types {
		if err := w.checkType(t); err != nil {
			return err
		}
	}
	return nil
}

// IsRegistered reports whether t or one of its supertypes is registered.
func (w *World) IsRegistered(t ComponentType) bool {
	return w.checkType(t) == nil
}

func (w *World) checkType(t ComponentType) error {
	if t.t == nil {
		return fmt.Errorf("%w: zero component type", ErrInvalidComponent)
	}
	if !w.legal(w.types.info(t.t)) {
		return &ComponentNotRegisteredError{Type: t}
	}
	return nil
}

func (w *World) legal(info *typeInfo) bool {
	for _, id := range w.types.ancestorsOf(info) {
		if _, ok := w.registered.Get(id); ok {
			return true
		}
	}
	return false
}

// Spawn creates an entity holding the given components, in order. Each
// argument is either a component (value or pointer) or a ComponentType, which
// is instantiated with its zero value. All components are validated before
// anything changes, so a failed Spawn leaves the World untouched.
func (w *World) Spawn(components ...any) (*Entity, error) {
	stored := make([]any, 0, len(components))
	infos := make([]*typeInfo, 0, len(components))

	for _, c := range components {
		ptr, typ, err := normalizeComponent(c)
		if err != nil {
			return nil, err
		}
		info := w.types.info(typ)
		if !w.legal(info) {
			return nil, &ComponentNotRegisteredError{Type: ComponentType{t: typ}}
		}
		if slices.Contains(infos, info) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateComponent, typ)
		}
		stored = append(stored, ptr)
		infos = append(infos, info)
	}

	w.lastID++
	entity := &Entity{
		id:         w.lastID,
		world:      w,
		components: stored,
		types:      infos,
	}

	w.index.Put(entity.id, len(w.entities))
	w.entities = append(w.entities, entity)
	w.OnEntityAdded.Emit(entity)

	return entity, nil
}

// MustSpawn is like Spawn but panics on error.
func (w *World) MustSpawn(components ...any) *Entity {
	entity, err := w.Spawn(components...)
	if err != nil {
		panic(err)
	}
	return entity
}

// Destroy removes the entity from the World and emits OnEntityRemoved. It
// returns false, without emitting, when the entity is not part of the World.
func (w *World) Destroy(entity *Entity) bool {
	if entity == nil {
		return false
	}
	pos, ok := w.index.Get(entity.id)
	if !ok || w.entities[pos] != entity {
		return false
	}

	w.entities = slices.Delete(w.entities, pos, pos+1)
	w.index.Del(entity.id)
	for i := pos; i < len(w.entities); i++ {
		w.index.Put(w.entities[i].id, i)
	}

	w.OnEntityRemoved.Emit(entity)
	return true
}

// Contains reports whether the entity is alive in this World.
func (w *World) Contains(entity *Entity) bool {
	if entity == nil {
		return false
	}
	pos, ok := w.index.Get(entity.id)
	return ok && w.entities[pos] == entity
}

// AddComponent appends a component to the entity and emits OnEntityUpdated.
// It fails with a *ComponentNotRegisteredError for illegal types and returns
// false, without error, when the entity already holds a component of the
// same concrete type.
func (w *World) AddComponent(entity *Entity, component any) (bool, error) {
	ptr, typ, err := normalizeComponent(component)
	if err != nil {
		return false, err
	}
	info := w.types.info(typ)
	if !w.legal(info) {
		return false, &ComponentNotRegisteredError{Type: ComponentType{t: typ}}
	}
	if !w.Contains(entity) {
		return false, ErrEntityNotFound
	}
	if entity.indexOfType(info) != -1 {
		return false, nil
	}

	entity.components = append(entity.components, ptr)
	entity.types = append(entity.types, info)
	w.OnEntityUpdated.Emit(entity)
	return true, nil
}

// RemoveComponent removes a component, located either by identity or, when
// given a ComponentType, by exact concrete type. It returns false when there
// is nothing to remove.
func (w *World) RemoveComponent(entity *Entity, componentOrType any) bool {
	if !w.Contains(entity) {
		return false
	}

	idx := -1
	if t, ok := componentOrType.(ComponentType); ok {
		if info, known := w.types.lookup(t.t); known {
			idx = entity.indexOfType(info)
		}
	} else {
		for i, c := range entity.components {
			if c == componentOrType {
				idx = i
				break
			}
		}
	}
	if idx == -1 {
		return false
	}

	entity.components = slices.Delete(entity.components, idx, idx+1)
	entity.types = slices.Delete(entity.types, idx, idx+1)
	w.OnEntityUpdated.Emit(entity)
	return true
}

// Query returns the live query over the given ordered types. Requests with an
// identical ordered type list share one Query instance.
func (w *World) Query(types ...ComponentType) (*Query, error) {
	ids := make([]TypeID, len(types))
	for i, t := range types {
		if err := w.checkType(t); err != nil {
			return nil, err
		}
		ids[i] = w.types.info(t.t).id
	}

	key := queryKey(ids)
	for _, q := range w.queries[key] {
		if slices.Equal(q.ids, ids) {
			return q, nil
		}
	}

	q := newQuery(w, slices.Clone(types), ids, key)
	w.queries[key] = append(w.queries[key], q)
	return q, nil
}

// MustQuery is like Query but panics on error.
func (w *World) MustQuery(types ...ComponentType) *Query {
	q, err := w.Query(types...)
	if err != nil {
		panic(err)
	}
	return q
}

func (w *World) forgetQuery(q *Query) {
	bucket := w.queries[q.key]
	bucket = slices.DeleteFunc(bucket, func(other *Query) bool { return other == q })
	if len(bucket) == 0 {
		delete(w.queries, q.key)
		return
	}
	w.queries[q.key] = bucket
}

// SingletonComponent returns the first component matching t on the first
// entity of Query(t), or nil when there is none. It never panics; an
// unregistered type simply yields nil.
func (w *World) SingletonComponent(t ComponentType) any {
	q, err := w.Query(t)
	if err != nil {
		return nil
	}
	first := q.First()
	if first == nil {
		return nil
	}
	return q.Row(first)[0]
}

// Entity returns the live entity with the given id, or nil.
func (w *World) Entity(id EntityID) *Entity {
	pos, ok := w.index.Get(id)
	if !ok {
		return nil
	}
	return w.entities[pos]
}

// Entities returns a snapshot of all entities in spawn order.
func (w *World) Entities() []*Entity {
	return slices.Clone(w.entities)
}

// Len returns the number of live entities.
func (w *World) Len() int {
	return len(w.entities)
}
