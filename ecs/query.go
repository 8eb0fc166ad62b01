package ecs

import (
	"encoding/binary"
	"iter"
	"slices"

	"github.com/cespare/xxhash/v2"
	"github.com/kamstrup/intmap"
	"github.com/plus3/bigby/event"
)

// Query is a live view of the entities that hold a component for every
// requested type. Matching is unordered AND over the types; the order of the
// types only shapes the row returned for each entity.
//
// The Query keeps itself in sync through the World's events: entities are
// appended to the index when they start matching and removed, preserving the
// order of the rest, when they stop matching or leave the World. Iteration
// follows index insertion order. OnEntityAdded and OnEntityRemoved fire after
// the index already reflects the change.
type Query struct {
	world *World
	types []ComponentType
	ids   []TypeID
	key   uint64

	entities []*Entity
	rows     [][]any
	index    *intmap.Map[EntityID, int]

	subs   []*event.Subscription
	closed bool

	OnEntityAdded   *event.Dispatcher[*Entity]
	OnEntityRemoved *event.Dispatcher[*Entity]
}

func newQuery(w *World, types []ComponentType, ids []TypeID, key uint64) *Query {
	q := &Query{
		world:           w,
		types:           types,
		ids:             ids,
		key:             key,
		index:           intmap.New[EntityID, int](64),
		OnEntityAdded:   event.New[*Entity](),
		OnEntityRemoved: event.New[*Entity](),
	}

	for _, entity := range w.entities {
		q.evaluate(entity)
	}

	q.subs = []*event.Subscription{
		w.OnEntityAdded.Add(q.evaluate),
		w.OnEntityUpdated.Add(q.evaluate),
		w.OnEntityRemoved.Add(q.evict),
	}
	return q
}

// queryKey hashes an ordered TypeID list; equal lists always share a key.
func queryKey(ids []TypeID) uint64 {
	d := xxhash.New()
	var buf [4]byte
	for _, id := range ids {
		binary.LittleEndian.PutUint32(buf[:], uint32(id))
		_, _ = d.Write(buf[:])
	}
	return d.Sum64()
}

// resolve picks, for every requested type, the first component in storage
// order whose type is that type or a subtype of it.
func (q *Query) resolve(entity *Entity) ([]any, bool) {
	row := make([]any, len(q.ids))
	for i, id := range q.ids {
		c := entity.find(id)
		if c == nil {
			return nil, false
		}
		row[i] = c
	}
	return row, true
}

// evaluate brings the entity's membership in line with its components. An
// entity that already left the World, because an earlier listener destroyed
// it, is evicted instead.
func (q *Query) evaluate(entity *Entity) {
	if !q.world.Contains(entity) {
		q.evict(entity)
		return
	}
	row, wants := q.resolve(entity)
	pos, has := q.index.Get(entity.id)

	switch {
	case wants && !has:
		q.index.Put(entity.id, len(q.entities))
		q.entities = append(q.entities, entity)
		q.rows = append(q.rows, row)
		q.OnEntityAdded.Emit(entity)
	case wants && has:
		q.rows[pos] = row
	case !wants && has:
		q.evict(entity)
	}
}

func (q *Query) evict(entity *Entity) {
	pos, ok := q.index.Get(entity.id)
	if !ok {
		return
	}

	q.entities = slices.Delete(q.entities, pos, pos+1)
	q.rows = slices.Delete(q.rows, pos, pos+1)
	q.index.Del(entity.id)
	for i := pos; i < len(q.entities); i++ {
		q.index.Put(q.entities[i].id, i)
	}

	q.OnEntityRemoved.Emit(entity)
}

// Types returns the requested component types in order.
func (q *Query) Types() []ComponentType {
	return slices.Clone(q.types)
}

// Len returns the number of matching entities.
func (q *Query) Len() int {
	return len(q.entities)
}

// Entities returns a snapshot of the matching entities in index order.
func (q *Query) Entities() []*Entity {
	return slices.Clone(q.entities)
}

// First returns the earliest indexed entity, or nil.
func (q *Query) First() *Entity {
	if len(q.entities) == 0 {
		return nil
	}
	return q.entities[0]
}

// Has reports whether the entity is currently indexed.
func (q *Query) Has(entity *Entity) bool {
	if entity == nil {
		return false
	}
	_, ok := q.index.Get(entity.id)
	return ok
}

// Row returns the resolved components of an indexed entity, one per
// requested type, or nil. The slice belongs to the Query and must not be
// modified.
func (q *Query) Row(entity *Entity) []any {
	if entity == nil {
		return nil
	}
	pos, ok := q.index.Get(entity.id)
	if !ok {
		return nil
	}
	return q.rows[pos]
}

// Iter yields every indexed entity with its row.
//
// Iteration runs over a snapshot of the index taken when it starts, so the
// World may be mutated from inside the loop: an entity evicted before the loop
// reaches it is skipped, entities that join the index during the loop are not
// visited, and every other entity is visited exactly once with its current row.
func (q *Query) Iter() iter.Seq2[*Entity, []any] {
	return func(yield func(*Entity, []any) bool) {
		snapshot := slices.Clone(q.entities)
		for _, entity := range snapshot {
			pos, ok := q.index.Get(entity.id)
			if !ok {
				continue
			}
			if !yield(entity, q.rows[pos]) {
				return
			}
		}
	}
}

// Close detaches the Query from its World and drops it from the World's memo.
// Its listeners are cleared and its index is left frozen.
func (q *Query) Close() {
	if q.closed {
		return
	}
	q.closed = true
	for _, sub := range q.subs {
		sub.Cancel()
	}
	q.subs = nil
	q.OnEntityAdded.Clear()
	q.OnEntityRemoved.Clear()
	q.world.forgetQuery(q)
}

// Each1 calls fn for every entity of a one-type query. A must be the
// component's pointer type or an interface it implements; a mismatch panics.
func Each1[A any](q *Query, fn func(*Entity, A)) {
	for entity, row := range q.Iter() {
		fn(entity, row[0].(A))
	}
}

// Each2 is Each1 for two-type queries.
func Each2[A, B any](q *Query, fn func(*Entity, A, B)) {
	for entity, row := range q.Iter() {
		fn(entity, row[0].(A), row[1].(B))
	}
}

// Each3 is Each1 for three-type queries.
func Each3[A, B, C any](q *Query, fn func(*Entity, A, B, C)) {
	for entity, row := range q.Iter() {
		fn(entity, row[0].(A), row[1].(B), row[2].(C))
	}
}
