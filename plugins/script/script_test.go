package script_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/plus3/bigby/app"
	"github.com/plus3/bigby/config"
	"github.com/plus3/bigby/ecs"
	"github.com/plus3/bigby/plugins/script"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type Counter struct {
	N     int
	Label string
}

type Score int32

const counterScript = `
local s = {}

function s.on_start()
  bigby.spawn("Counter", { N = 1, Label = "first" })
end

function s.on_update(dt)
  bigby.each("Counter", function(id)
    local c = bigby.get(id, "Counter")
    c.N = c.N + 1
    bigby.set(id, "Counter", c)
  end)
end

function s.on_stop()
  bigby.log("bye " .. bigby.count("Counter"))
end

return s
`

func newObservedApp(t *testing.T) (*app.App, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	return app.New(app.WithLogger(zap.New(core))), logs
}

func TestScriptLifecycle(t *testing.T) {
	a, logs := newObservedApp(t)

	var engine *script.Engine
	a.Use(script.Plugin(config.ScriptConfig{},
		script.Expose[Counter]("Counter"),
		script.WithSource("counter.lua", counterScript),
		script.OnLoaded(func(e *script.Engine) { engine = e }),
	))

	require.NoError(t, a.Start(context.Background()))
	require.NotNil(t, engine)
	require.Len(t, engine.Systems(), 1)
	sys := engine.Systems()[0]
	assert.Equal(t, "counter.lua", sys.Name())
	assert.True(t, sys.Has("on_update"))
	assert.False(t, sys.Has("on_fixed_update"))

	counter := ecs.Singleton[Counter](a.World)
	require.NotNil(t, counter)
	assert.Equal(t, Counter{N: 1, Label: "first"}, *counter)

	a.Frame(1.0 / 60)
	a.Frame(1.0 / 60)
	assert.Equal(t, 3, counter.N)

	require.NoError(t, a.Stop())
	assert.Equal(t, 1, logs.FilterMessage("bye 1").Len())
}

func TestScriptsFromPaths(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.lua"), []byte(`
return { on_start = function() bigby.spawn("Score", { value = 2 }) end }
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.lua"), []byte(`
return { on_start = function() bigby.spawn("Score", { value = 1 }) end }
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	a, _ := newObservedApp(t)
	a.Use(script.Plugin(
		config.ScriptConfig{Paths: []string{dir, filepath.Join(dir, "missing")}},
		script.Expose[Score]("Score"),
	))
	require.NoError(t, a.Start(context.Background()))

	var scores []Score
	ecs.Each1(a.MustQuery(ecs.TypeFor[Score]()), func(_ *ecs.Entity, s *Score) {
		scores = append(scores, *s)
	})
	assert.ElementsMatch(t, []Score{1, 2}, scores)
	assert.Len(t, a.Systems(), 2)
}

func TestScriptLoadErrors(t *testing.T) {
	cases := map[string]string{
		"syntax":    `return {`,
		"not table": `return 42`,
		"runtime":   `error("kaboom")`,
	}
	for name, code := range cases {
		t.Run(name, func(t *testing.T) {
			a, _ := newObservedApp(t)
			a.Use(script.Plugin(config.ScriptConfig{}, script.WithSource(name+".lua", code)))

			err := a.Start(context.Background())
			require.Error(t, err)
			assert.ErrorContains(t, err, name+".lua")
			assert.Equal(t, app.StateLoading, a.State())
			require.NoError(t, a.Stop())
		})
	}
}

func TestScriptStartError(t *testing.T) {
	a, _ := newObservedApp(t)
	a.Use(script.Plugin(config.ScriptConfig{},
		script.WithSource("bad.lua", `return { on_start = function() bigby.spawn("Nope") end }`),
	))

	err := a.Start(context.Background())
	assert.ErrorContains(t, err, "start phase")
	assert.ErrorContains(t, err, "unknown component")
}

func TestScriptUpdateErrorIsLogged(t *testing.T) {
	a, logs := newObservedApp(t)
	a.Use(script.Plugin(config.ScriptConfig{},
		script.Expose[Counter]("Counter"),
		script.WithSource("oops.lua", `
return {
  on_update = function(dt) bigby.set(1, "Counter", { Missing = true }) end,
  on_fixed_update = function(dt) error("fixed " .. dt) end,
}`),
	))
	a.MustSpawn(Counter{})

	require.NoError(t, a.Start(context.Background()))
	a.Frame(0.5)

	failed := logs.FilterMessage("lua hook failed")
	assert.Equal(t, 2, failed.Len())
	assert.Equal(t, app.StateRunning, a.State())
}

func TestScriptDestroyAndStop(t *testing.T) {
	a, _ := newObservedApp(t)
	a.Use(script.Plugin(config.ScriptConfig{},
		script.Expose[Counter]("Counter"),
		script.WithSource("reaper.lua", `
return {
  on_update = function(dt)
    bigby.each("Counter", function(id) bigby.destroy(id) end)
    bigby.stop()
  end,
}`),
	))
	a.MustSpawn(Counter{})
	a.MustSpawn(Counter{})

	require.NoError(t, a.Start(context.Background()))
	a.Frame(0.1)

	assert.Equal(t, 0, a.MustQuery(ecs.TypeFor[Counter]()).Len())
	assert.Equal(t, app.StateStopped, a.State())
}
