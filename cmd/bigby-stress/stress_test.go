package main

import (
	"bytes"
	"context"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/plus3/bigby/app"
	"github.com/plus3/bigby/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsFinalize(t *testing.T) {
	s := Stats{Samples: []time.Duration{3 * time.Millisecond, time.Millisecond, 5 * time.Millisecond}}
	s.Finalize()
	assert.Equal(t, time.Millisecond, s.Min)
	assert.Equal(t, 5*time.Millisecond, s.Max)
	assert.Equal(t, 3*time.Millisecond, s.Avg)

	var empty Stats
	empty.Finalize()
	assert.Zero(t, empty.Avg)
}

func TestRandomComponentsAreSpawnable(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 7))
	w := ecs.NewWorld()
	registerComponents(w)

	for range 200 {
		components := randomComponents(r)
		require.NotEmpty(t, components)
		require.LessOrEqual(t, len(components), 5)
		_, err := w.Spawn(components...)
		require.NoError(t, err)
	}
}

func TestSimulationAndReport(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 1))
	a := app.New()
	registerComponents(a.World)
	require.NoError(t, addSystems(a, r, 10))
	for range 50 {
		a.MustSpawn(randomComponents(r)...)
	}

	require.NoError(t, a.Start(context.Background()))
	for range 5 {
		a.Frame(0.1)
	}
	churned := a.MustQuery(ecs.TypeFor[Lifetime]()).Len()
	assert.Positive(t, churned)
	assert.LessOrEqual(t, churned, 50)
	assert.Len(t, a.Systems(), 3)

	report := &Report{
		Duration:       time.Second,
		Entities:       50,
		Churn:          10,
		Frames:         5,
		GCPauseMetrics: true,
		FrameTime:      Stats{Samples: []time.Duration{time.Millisecond}},
		World:          a.CollectStats(),
		Phases:         a.Stats(),
	}
	report.FrameTime.Finalize()
	require.NoError(t, a.Stop())

	var buf bytes.Buffer
	require.NoError(t, report.Generate(&buf))
	out := buf.String()
	assert.Contains(t, out, "**Frames:** 5")
	assert.Contains(t, out, "**Churn per Frame:** 10")
	assert.Contains(t, out, "[main.Position, main.Velocity]")
	assert.Contains(t, out, "- FixedUpdate: 5 runs")
	assert.Contains(t, out, "## GC Pause Durations")
}
