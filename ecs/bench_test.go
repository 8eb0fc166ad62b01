package ecs_test

import (
	"testing"

	"github.com/plus3/bigby/ecs"
)

func BenchmarkSpawn(b *testing.B) {
	w := newTestWorld()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w.MustSpawn(Position{X: 1.0, Y: 2.0}, Velocity{DX: 0.5, DY: 0.5})
	}
}

func BenchmarkSpawnWithQueries(b *testing.B) {
	w := newTestWorld()
	w.MustQuery(positionType)
	w.MustQuery(positionType, velocityType)
	w.MustQuery(velocityType, healthType)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w.MustSpawn(
			Position{X: 1.0, Y: 2.0},
			Velocity{DX: 0.5, DY: 0.5},
			Health{Current: 100, Max: 100},
			Name{Value: "Entity"},
		)
	}
}

func BenchmarkDestroy(b *testing.B) {
	w := newTestWorld()
	w.MustQuery(positionType)

	entities := make([]*ecs.Entity, b.N)
	for i := 0; i < b.N; i++ {
		entities[i] = w.MustSpawn(Position{X: 1.0, Y: 2.0}, Velocity{DX: 0.5, DY: 0.5})
	}

	b.ResetTimer()
	// Newest first keeps reindexing cheap, which is the common pattern for
	// short-lived entities.
	for i := b.N - 1; i >= 0; i-- {
		w.Destroy(entities[i])
	}
}

func BenchmarkAddRemoveComponent(b *testing.B) {
	w := newTestWorld()
	q := w.MustQuery(positionType, velocityType)
	e := w.MustSpawn(Position{X: 1.0, Y: 2.0})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w.AddComponent(e, Velocity{DX: 0.5, DY: 0.5})
		w.RemoveComponent(e, velocityType)
	}
	_ = q
}

func BenchmarkGet(b *testing.B) {
	w := newTestWorld()
	e := w.MustSpawn(Name{}, Health{}, Position{X: 1.0, Y: 2.0}, Velocity{DX: 0.5, DY: 0.5})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = ecs.Get[Velocity](e)
	}
}

func BenchmarkQueryMemo(b *testing.B) {
	w := newTestWorld()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = w.MustQuery(positionType, velocityType)
	}
}

func BenchmarkQueryIter(b *testing.B) {
	w := newTestWorld()
	for i := 0; i < 1000; i++ {
		w.MustSpawn(Position{X: float32(i), Y: float32(i)}, Velocity{DX: 0.5, DY: 0.5})
	}
	q := w.MustQuery(positionType, velocityType)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ecs.Each2(q, func(_ *ecs.Entity, p *Position, v *Velocity) {
			p.X += v.DX
			p.Y += v.DY
		})
	}
}

func BenchmarkQueryIterLarge(b *testing.B) {
	w := newTestWorld()
	for i := 0; i < 10000; i++ {
		w.MustSpawn(Position{X: float32(i), Y: float32(i)}, Velocity{DX: 0.5, DY: 0.5})
	}
	q := w.MustQuery(positionType, velocityType)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, row := range q.Iter() {
			_ = row
		}
	}
}

func BenchmarkCommandsFlush(b *testing.B) {
	w := newTestWorld()
	cmds := ecs.NewCommands()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		cmds.Spawn(Position{}, Velocity{})
		if i%64 == 63 {
			_ = cmds.Flush(w)
		}
	}
	_ = cmds.Flush(w)
}
