package event_test

import (
	"testing"

	"github.com/plus3/bigby/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherAddRemove(t *testing.T) {
	d := event.New[string]()

	sub := d.Add(func(string) {})
	require.NotNil(t, sub)
	assert.NotEmpty(t, sub.ID())
	assert.True(t, sub.Active())
	assert.Equal(t, 1, d.Len())

	d.Remove(sub)
	assert.Equal(t, 0, d.Len())
	assert.False(t, sub.Active())

	// idempotent
	d.Remove(sub)
	sub.Cancel()
	assert.Equal(t, 0, d.Len())
}

func TestDispatcherRemoveForeignSubscription(t *testing.T) {
	d := event.New[string]()
	other := event.New[int]()

	called := 0
	sub := d.Add(func(string) { called++ })
	other.Add(func(int) {})

	other.Remove(sub)
	other.Remove(nil)
	assert.True(t, sub.Active())
	assert.Equal(t, 1, d.Len())
	assert.Equal(t, 1, other.Len())

	d.Emit("still here")
	assert.Equal(t, 1, called)
}

func TestDispatcherEmit(t *testing.T) {
	d := event.New[string]()

	var got []string
	d.Add(func(p string) { got = append(got, "a:"+p) })
	d.Add(func(p string) { got = append(got, "b:"+p) })

	d.Emit("test")
	assert.Equal(t, []string{"a:test", "b:test"}, got)
}

func TestDispatcherZeroPayload(t *testing.T) {
	var d event.Dispatcher[struct{}]

	calls := 0
	d.Add(func(struct{}) { calls++ })
	d.Emit(struct{}{})
	d.Emit(struct{}{})

	assert.Equal(t, 2, calls)
}

func TestDispatcherClear(t *testing.T) {
	d := event.New[int]()
	sub := d.Add(func(int) {})
	d.Add(func(int) {})
	require.Equal(t, 2, d.Len())

	d.Clear()
	assert.Equal(t, 0, d.Len())
	assert.False(t, sub.Active())

	d.Emit(1)
}

func TestDispatcherMutationDuringEmit(t *testing.T) {
	t.Run("listener added during emit runs from the next emit", func(t *testing.T) {
		d := event.New[int]()
		lateCalls := 0
		added := false
		d.Add(func(int) {
			if !added {
				added = true
				d.Add(func(int) { lateCalls++ })
			}
		})

		d.Emit(1)
		assert.Equal(t, 0, lateCalls)
		assert.Equal(t, 2, d.Len())

		d.Emit(2)
		assert.Equal(t, 1, lateCalls)
	})

	t.Run("listener removed during emit still runs in the current pass", func(t *testing.T) {
		d := event.New[int]()
		var second *event.Subscription
		secondCalls := 0
		d.Add(func(int) { second.Cancel() })
		second = d.Add(func(int) { secondCalls++ })

		d.Emit(1)
		assert.Equal(t, 1, secondCalls)
		assert.Equal(t, 1, d.Len())

		d.Emit(2)
		assert.Equal(t, 1, secondCalls)
	})

	t.Run("clear during emit finishes the current pass", func(t *testing.T) {
		d := event.New[int]()
		calls := 0
		d.Add(func(int) { calls++; d.Clear() })
		d.Add(func(int) { calls++ })

		d.Emit(1)
		assert.Equal(t, 2, calls)
		assert.Equal(t, 0, d.Len())
	})
}

func TestDispatcherReentrantEmit(t *testing.T) {
	d := event.New[int]()
	var order []int
	d.Add(func(n int) {
		order = append(order, n)
		if n < 3 {
			d.Emit(n + 1)
		}
	})

	d.Emit(1)
	assert.Equal(t, []int{1, 2, 3}, order)
}
