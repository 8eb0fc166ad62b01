// Package event provides the synchronous multicast primitive used by the ECS
// kernel and the application scheduler.
package event

import (
	"slices"

	"github.com/google/uuid"
)

// Listener receives the payload of an emitted event.
type Listener[P any] func(payload P)

// Subscription is the handle returned by Dispatcher.Add. It is the only way to
// remove a listener, since Go funcs cannot be compared.
type Subscription struct {
	id     string
	remove func(id string)
}

// ID returns the unique identifier of the subscription.
func (s *Subscription) ID() string {
	return s.id
}

// Active reports whether the listener is still registered.
func (s *Subscription) Active() bool {
	return s.remove != nil
}

// Cancel removes the listener from its dispatcher. Multiple calls are safe.
func (s *Subscription) Cancel() {
	if s == nil || s.remove == nil {
		return
	}
	remove := s.remove
	s.remove = nil
	remove(s.id)
}

type entry[P any] struct {
	sub *Subscription
	fn  Listener[P]
}

// Dispatcher is a set of listeners over payload type P.
//
// Emit invokes every listener registered when the call starts, exactly once and
// in registration order. The listener slice is copy-on-write, so listeners added
// or removed while an emit is running only take part from the next Emit on.
// Emit does not guard against re-entrant emits; a listener that emits on the
// same dispatcher recurses depth-first.
//
// A Dispatcher is not safe for concurrent use.
type Dispatcher[P any] struct {
	listeners []entry[P]
}

// New creates an empty dispatcher. The zero value is ready to use as well.
func New[P any]() *Dispatcher[P] {
	return &Dispatcher[P]{}
}

// Add registers a listener and returns its subscription.
func (d *Dispatcher[P]) Add(fn Listener[P]) *Subscription {
	sub := &Subscription{id: uuid.NewString()}
	sub.remove = d.removeID

	next := make([]entry[P], len(d.listeners), len(d.listeners)+1)
	copy(next, d.listeners)
	d.listeners = append(next, entry[P]{sub: sub, fn: fn})
	return sub
}

// Remove unregisters the listener behind sub. Removing an unknown or already
// removed subscription, or one owned by another dispatcher, does nothing.
func (d *Dispatcher[P]) Remove(sub *Subscription) {
	if sub == nil || !slices.ContainsFunc(d.listeners, func(e entry[P]) bool { return e.sub == sub }) {
		return
	}
	sub.Cancel()
}

func (d *Dispatcher[P]) removeID(id string) {
	idx := slices.IndexFunc(d.listeners, func(e entry[P]) bool { return e.sub.id == id })
	if idx == -1 {
		return
	}
	next := make([]entry[P], 0, len(d.listeners)-1)
	next = append(next, d.listeners[:idx]...)
	d.listeners = append(next, d.listeners[idx+1:]...)
}

// Emit synchronously delivers payload to the current listeners.
func (d *Dispatcher[P]) Emit(payload P) {
	for _, e := range d.listeners {
		e.fn(payload)
	}
}

// Clear removes every listener and deactivates their subscriptions.
func (d *Dispatcher[P]) Clear() {
	for _, e := range d.listeners {
		e.sub.remove = nil
	}
	d.listeners = nil
}

// Len returns the number of registered listeners.
func (d *Dispatcher[P]) Len() int {
	return len(d.listeners)
}
