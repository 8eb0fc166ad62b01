package debugui_test

import (
	"context"
	"reflect"
	"testing"

	"github.com/plus3/bigby/app"
	"github.com/plus3/bigby/config"
	"github.com/plus3/bigby/debugui"
	"github.com/plus3/bigby/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Position struct {
	X, Y float64
}

type Velocity struct {
	X, Y float64
}

type Player struct {
	Name   string
	Target *Position
	hidden int
}

func newWorld() *ecs.World {
	w := ecs.NewWorld()
	ecs.Register[Position](w)
	ecs.Register[Velocity](w)
	ecs.Register[Player](w)
	return w
}

func TestPluginSpawnsPanels(t *testing.T) {
	a := app.New()
	a.Use(debugui.Plugin(config.DebugUIConfig{Enabled: true, HistoryFrames: 4}, nil))

	require.True(t, a.HasPlugin(debugui.PluginKey))
	assert.NotNil(t, ecs.Singleton[debugui.InputState](a.World))
	assert.NotNil(t, ecs.Singleton[debugui.Selection](a.World))
	assert.Equal(t, 5, a.MustQuery(ecs.TypeFor[debugui.Panel]()).Len())

	require.NoError(t, a.Start(context.Background()))
	for range 6 {
		a.Frame(0.010)
	}

	stats := ecs.Singleton[debugui.PerformanceStats](a.World)
	require.NotNil(t, stats)
	assert.Len(t, stats.History.Values(), 4)
	assert.InDelta(t, 10.0, stats.History.Average(), 0.001)
	require.NoError(t, a.Stop())
}

func TestPluginDisabled(t *testing.T) {
	a := app.New()
	a.Use(debugui.Plugin(config.DebugUIConfig{}, nil))

	panels := a.MustQuery(ecs.TypeFor[debugui.Panel]())
	assert.Equal(t, 0, panels.Len())

	drawn := 0
	a.MustSpawn(&debugui.Item{Draw: func() { drawn++ }})
	assert.Equal(t, 1, panels.Len())

	require.NoError(t, a.Start(context.Background()))
	a.Frame(0.016)
	assert.Zero(t, drawn, "nothing renders without an open ImGui frame")
}

func TestItemRender(t *testing.T) {
	called := false
	item := &debugui.Item{Draw: func() { called = true }}
	item.Render(nil)
	assert.True(t, called)

	assert.NotPanics(t, func() { (&debugui.Item{}).Render(nil) })
}

func TestBackendInactive(t *testing.T) {
	var b *debugui.Backend
	assert.False(t, b.Active())
}

func TestFrameHistory(t *testing.T) {
	h := debugui.NewFrameHistory(3)
	assert.Empty(t, h.Values())
	assert.Zero(t, h.Average())

	h.Push(1)
	h.Push(2)
	assert.Equal(t, []float32{1, 2}, h.Values())
	assert.InDelta(t, 1.5, h.Average(), 0.0001)

	h.Push(3)
	h.Push(4)
	assert.Equal(t, []float32{2, 3, 4}, h.Values())
	assert.InDelta(t, 3.0, h.Average(), 0.0001)
}

func TestEntityRows(t *testing.T) {
	w := newWorld()
	a := w.MustSpawn(Position{}, Velocity{})
	b := w.MustSpawn(Player{Name: "ada"})
	c := w.MustSpawn(Position{})

	rows := debugui.EntityRows(w)
	require.Len(t, rows, 3)
	assert.Equal(t, debugui.EntityInfo{ID: a.ID(), ComponentTypes: []string{"debugui_test.Position", "debugui_test.Velocity"}}, rows[0])
	assert.Equal(t, b.ID(), rows[1].ID)

	filtered := debugui.FilterEntities(rows, "VELO")
	require.Len(t, filtered, 1)
	assert.Equal(t, a.ID(), filtered[0].ID)
	assert.Len(t, rows, 3, "filtering leaves the input alone")

	debugui.SortEntities(rows, debugui.ColumnCount, false)
	assert.Equal(t, a.ID(), rows[0].ID)
	assert.Equal(t, []ecs.EntityID{c.ID(), b.ID()}, []ecs.EntityID{rows[1].ID, rows[2].ID})

	debugui.SortEntities(rows, debugui.ColumnComponents, true)
	assert.Equal(t, []ecs.EntityID{b.ID(), c.ID(), a.ID()}, []ecs.EntityID{rows[0].ID, rows[1].ID, rows[2].ID})

	debugui.SortEntities(rows, debugui.ColumnID, true)
	assert.Equal(t, []ecs.EntityID{a.ID(), b.ID(), c.ID()}, []ecs.EntityID{rows[0].ID, rows[1].ID, rows[2].ID})
}

func TestEntityBrowserRowsFollowWorldChanges(t *testing.T) {
	w := newWorld()
	a := w.MustSpawn(Position{})
	b := w.MustSpawn(Player{Name: "ada"})

	browser := debugui.NewEntityBrowser(10)
	rows := browser.Rows(w)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"debugui_test.Position"}, rows[0].ComponentTypes)

	_, err := w.AddComponent(a, Velocity{})
	require.NoError(t, err)
	rows = browser.Rows(w)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"debugui_test.Position", "debugui_test.Velocity"}, rows[0].ComponentTypes)

	w.Destroy(b)
	c := w.MustSpawn(Velocity{})
	rows = browser.Rows(w)
	require.Len(t, rows, 2)
	assert.Equal(t, []ecs.EntityID{a.ID(), c.ID()}, []ecs.EntityID{rows[0].ID, rows[1].ID})

	assert.Same(t, &rows[0], &browser.Rows(w)[0], "rows are reused while nothing changes")

	other := newWorld()
	other.MustSpawn(Player{})
	rows = browser.Rows(other)
	require.Len(t, rows, 1)
	assert.Equal(t, 0, w.OnEntityAdded.Len(), "the previous world is released")
}

func TestMatchingEntities(t *testing.T) {
	w := newWorld()
	moving := w.MustSpawn(Position{}, Velocity{})
	w.MustSpawn(Position{})
	w.MustSpawn(Player{})

	assert.Nil(t, debugui.MatchingEntities(w, nil))
	assert.Len(t, debugui.MatchingEntities(w, []string{"debugui_test.Position"}), 2)
	assert.Equal(t, []*ecs.Entity{moving},
		debugui.MatchingEntities(w, []string{"debugui_test.Velocity", "debugui_test.Position"}))
	assert.Equal(t, 0, w.CollectStats().QueryCount)
}

func TestSortComponents(t *testing.T) {
	counts := []ecs.ComponentCount{
		{Type: "b", Count: 2},
		{Type: "a", Count: 5},
		{Type: "c", Count: 2},
	}

	debugui.SortComponents(counts, debugui.ColumnInstances, false)
	assert.Equal(t, []string{"a", "c", "b"}, []string{counts[0].Type, counts[1].Type, counts[2].Type})

	debugui.SortComponents(counts, debugui.ColumnType, true)
	assert.Equal(t, []string{"a", "b", "c"}, []string{counts[0].Type, counts[1].Type, counts[2].Type})
}

func TestFieldCache(t *testing.T) {
	cache := debugui.NewFieldCache()

	fields := cache.Fields(reflect.TypeFor[Player]())
	require.Len(t, fields, 2)
	assert.Equal(t, "Name", fields[0].Name)
	assert.Equal(t, "Target", fields[1].Name)
	assert.True(t, fields[1].IsPointer)
	assert.True(t, fields[1].IsStruct)
	assert.Equal(t, reflect.TypeFor[Position](), fields[1].Type)

	assert.Nil(t, cache.Fields(reflect.TypeFor[int]()))
	again := cache.Fields(reflect.TypeFor[Player]())
	assert.Same(t, &fields[0], &again[0])
}
