// Package debugui provides Dear ImGui inspector windows for bigby Apps.
// Windows are components implementing Panel; the plugin renders every Panel
// in the World once per frame while the Backend has an ImGui frame open.
package debugui

import (
	ebitenbackend "github.com/AllenDang/cimgui-go/backend/ebiten-backend"
	"github.com/AllenDang/cimgui-go/imgui"
	eb "github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/bigby/app"
	"github.com/plus3/bigby/config"
	"github.com/plus3/bigby/ecs"
	"go.uber.org/zap"
)

// PluginKey identifies the debug UI plugin.
const PluginKey = "bigby/debugui"

// Panel is a component that draws ImGui widgets. Render is only called while
// an ImGui frame is open.
type Panel interface {
	Render(a *app.App)
}

// Item adapts a plain render function to a Panel.
type Item struct {
	Draw func()
}

func (i *Item) Render(*app.App) {
	if i.Draw != nil {
		i.Draw()
	}
}

// InputState tracks whether ImGui is consuming mouse or keyboard input. It is
// a singleton refreshed every rendered frame.
type InputState struct {
	WantCaptureMouse    bool
	WantCaptureKeyboard bool
}

// Selection is the singleton holding the entity picked in the entity browser.
// Zero means nothing is selected.
type Selection struct {
	Entity ecs.EntityID
}

// Backend wraps the cimgui-go Ebiten backend and satisfies the overlay
// interface of the ebiten ticker. Panels render only between BeginFrame and
// EndFrame.
type Backend struct {
	imgui  *ebitenbackend.EbitenBackend
	active bool
}

// NewBackend creates the ImGui backend and its window. ImGui's ini file is
// disabled.
func NewBackend(title string, width, height int) *Backend {
	b := ebitenbackend.NewEbitenBackend()
	b.CreateWindow(title, width, height)
	imgui.CurrentIO().SetIniFilename("")
	return &Backend{imgui: b}
}

func (b *Backend) BeginFrame() {
	b.imgui.BeginFrame()
	b.active = true
}

func (b *Backend) EndFrame() {
	b.active = false
	b.imgui.EndFrame()
}

func (b *Backend) Draw(screen *eb.Image) {
	b.imgui.Draw(screen)
}

func (b *Backend) Layout(width, height int) {
	b.imgui.Layout(width, height)
}

// Active reports whether an ImGui frame is open.
func (b *Backend) Active() bool {
	return b != nil && b.active
}

// Plugin registers the debug UI components and renders every Panel during
// LateUpdate. When cfg.Enabled is set it spawns the built-in inspector
// windows. A nil backend keeps the components and bookkeeping but draws
// nothing.
func Plugin(cfg config.DebugUIConfig, backend *Backend) app.Plugin {
	return app.NewPlugin(PluginKey, func(a *app.App) {
		log := a.Logger().Named("debugui")
		a.RegisterComponent(ecs.TypeFor[Panel]())
		ecs.Register[InputState](a.World)
		ecs.Register[Selection](a.World)

		if _, err := ecs.EnsureSingleton(a.World, InputState{}); err != nil {
			log.Error("input state singleton", zap.Error(err))
		}
		if _, err := ecs.EnsureSingleton(a.World, Selection{}); err != nil {
			log.Error("selection singleton", zap.Error(err))
		}

		if cfg.Enabled {
			a.MustSpawn(NewEntityBrowser(100))
			a.MustSpawn(NewComponentInspector())
			a.MustSpawn(NewComponentViewer())
			a.MustSpawn(NewPerformanceStats(cfg.HistoryFrames))
			a.MustSpawn(NewQueryDebugger())
			log.Debug("inspector windows spawned")
		}

		a.OnUpdate(func(dt float64) {
			ecs.Each1(a.MustQuery(ecs.TypeFor[PerformanceStats]()), func(_ *ecs.Entity, ps *PerformanceStats) {
				ps.History.Push(float32(dt * 1000))
			})
		})

		a.OnLateUpdate(func(float64) {
			if !backend.Active() {
				return
			}
			if state := ecs.Singleton[InputState](a.World); state != nil {
				io := imgui.CurrentIO()
				state.WantCaptureMouse = io.WantCaptureMouse()
				state.WantCaptureKeyboard = io.WantCaptureKeyboard()
			}
			ecs.Each1(a.MustQuery(ecs.TypeFor[Panel]()), func(_ *ecs.Entity, p Panel) {
				p.Render(a)
			})
		})
	})
}
