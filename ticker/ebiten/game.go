// Package ebiten drives an App from the Ebiten game loop and feeds the input
// plugin from Ebiten's keyboard state.
package ebiten

import (
	"context"

	eb "github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/bigby/app"
	"github.com/plus3/bigby/config"
	"github.com/plus3/bigby/ecs"
	"github.com/plus3/bigby/ticker"
)

// Overlay is drawn on top of the App, typically a Dear ImGui backend. The
// cimgui-go Ebiten backend satisfies it.
type Overlay interface {
	BeginFrame()
	EndFrame()
	Draw(screen *eb.Image)
	Layout(width, height int)
}

// Screen is the singleton render systems draw to. Image is only valid during
// the Render phase.
type Screen struct {
	Image         *eb.Image
	Width, Height int
}

// Game implements ebiten.Game. Update advances the App from EarlyUpdate to
// LateUpdate and flushes its commands; Draw runs the Render phase against the
// screen. The game terminates once the App is stopped.
type Game struct {
	app     *app.App
	ticker  *ticker.Ticker
	overlay Overlay
	screen  *Screen
	dt      float64
}

type GameOption func(*Game)

// WithOverlay draws o over the App every frame.
func WithOverlay(o Overlay) GameOption {
	return func(g *Game) {
		g.overlay = o
	}
}

// NewGame registers Screen on the App and spawns its singleton.
func NewGame(a *app.App, cfg config.TickerConfig, opts ...GameOption) (*Game, error) {
	ecs.Register[Screen](a.World)
	screen, err := ecs.EnsureSingleton(a.World, Screen{})
	if err != nil {
		return nil, err
	}

	g := &Game{
		app:    a,
		ticker: ticker.New(a, cfg),
		screen: screen,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Ticker exposes the fixed-step accumulator, for interpolation.
func (g *Game) Ticker() *ticker.Ticker {
	return g.ticker
}

func (g *Game) Update() error {
	if g.app.State() == app.StateStopped {
		return eb.Termination
	}

	g.dt = 1.0 / float64(eb.TPS())

	if g.overlay != nil {
		g.overlay.BeginFrame()
	}
	g.ticker.Advance(g.dt)
	g.app.EndFrame()
	if g.overlay != nil {
		g.overlay.EndFrame()
	}
	return nil
}

func (g *Game) Draw(screen *eb.Image) {
	g.screen.Image = screen
	g.app.Render(g.dt)
	g.screen.Image = nil

	if g.overlay != nil {
		g.overlay.Draw(screen)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if g.overlay != nil {
		g.overlay.Layout(outsideWidth, outsideHeight)
	}
	g.screen.Width = outsideWidth
	g.screen.Height = outsideHeight
	return outsideWidth, outsideHeight
}

// Run starts a, runs the Ebiten loop until the window closes or a is
// stopped, then stops a.
func Run(ctx context.Context, a *app.App, cfg config.TickerConfig, title string, width, height int, opts ...GameOption) error {
	g, err := NewGame(a, cfg, opts...)
	if err != nil {
		return err
	}

	if err := a.Start(ctx); err != nil {
		_ = a.Stop()
		return err
	}
	defer a.Stop()

	eb.SetWindowTitle(title)
	eb.SetWindowSize(width, height)
	return eb.RunGame(g)
}
