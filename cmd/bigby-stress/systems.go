package main

import (
	"math/rand/v2"

	"github.com/plus3/bigby/app"
	"github.com/plus3/bigby/ecs"
)

type Position struct {
	X, Y float64
}

type Velocity struct {
	X, Y float64
}

type Health struct {
	HP int
}

type Lifetime struct {
	Remaining float64
}

// Tag components only widen the spread of query shapes.
type (
	Red   struct{}
	Green struct{}
	Blue  struct{}
)

func registerComponents(w *ecs.World) {
	ecs.Register[Position](w)
	ecs.Register[Velocity](w)
	ecs.Register[Health](w)
	ecs.Register[Lifetime](w)
	ecs.Register[Red](w)
	ecs.Register[Green](w)
	ecs.Register[Blue](w)
}

// randomComponents returns between 1 and 5 distinct components.
func randomComponents(r *rand.Rand) []any {
	pool := []func() any{
		func() any { return Position{X: r.Float64() * 100, Y: r.Float64() * 100} },
		func() any { return Velocity{X: r.Float64() - 0.5, Y: r.Float64() - 0.5} },
		func() any { return Health{HP: 100} },
		func() any { return Red{} },
		func() any { return Green{} },
		func() any { return Blue{} },
	}
	r.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

	n := r.IntN(5) + 1
	components := make([]any, n)
	for i := range n {
		components[i] = pool[i]()
	}
	return components
}

type movementSystem struct {
	moving *ecs.Query
}

func (s *movementSystem) FixedUpdate(dt float64) {
	ecs.Each2(s.moving, func(_ *ecs.Entity, p *Position, v *Velocity) {
		p.X += v.X * dt
		p.Y += v.Y * dt
	})
}

type damageSystem struct {
	living *ecs.Query
}

func (s *damageSystem) LateUpdate(float64) {
	ecs.Each1(s.living, func(_ *ecs.Entity, h *Health) {
		if h.HP > 0 {
			h.HP--
		}
	})
}

// churnSystem spawns short-lived entities every frame and expires the old
// ones through the command buffer.
type churnSystem struct {
	commands *ecs.Commands
	expiring *ecs.Query
	rand     *rand.Rand
	perFrame int
	spawned  int
}

func (s *churnSystem) Update(dt float64) {
	ecs.Each1(s.expiring, func(e *ecs.Entity, l *Lifetime) {
		l.Remaining -= dt
		if l.Remaining <= 0 {
			s.commands.Destroy(e)
		}
	})

	for range s.perFrame {
		components := append(randomComponents(s.rand), Lifetime{Remaining: s.rand.Float64()})
		s.commands.Spawn(components...)
		s.spawned++
	}
}

func addSystems(a *app.App, r *rand.Rand, churn int) error {
	systems := []app.System{
		&movementSystem{moving: a.MustQuery(ecs.TypeFor[Position](), ecs.TypeFor[Velocity]())},
		&damageSystem{living: a.MustQuery(ecs.TypeFor[Health]())},
	}
	if churn > 0 {
		systems = append(systems, &churnSystem{
			commands: a.Commands(),
			expiring: a.MustQuery(ecs.TypeFor[Lifetime]()),
			rand:     r,
			perFrame: churn,
		})
	}

	for _, sys := range systems {
		if _, err := a.AddSystem(sys); err != nil {
			return err
		}
	}
	return nil
}
