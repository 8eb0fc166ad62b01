// Command bigby-demo opens an Ebiten window with a player square steered by
// WASD and a field of bouncing balls. The inspector windows are shown when
// debug_ui.enabled is set in the config named by $BIGBY_CONFIG; Lua scripts
// listed under script.paths run as systems.
package main

import (
	"context"
	"fmt"
	"image/color"
	"math/rand/v2"
	"os"

	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/plus3/bigby/app"
	"github.com/plus3/bigby/config"
	"github.com/plus3/bigby/debugui"
	"github.com/plus3/bigby/ecs"
	"github.com/plus3/bigby/plugins/input"
	"github.com/plus3/bigby/plugins/script"
	ebitenticker "github.com/plus3/bigby/ticker/ebiten"
	"go.uber.org/zap"
)

const (
	width  = 960
	height = 640
)

type Position struct {
	X, Y float64
}

type Velocity struct {
	X, Y float64
}

type Ball struct {
	Radius float64
	Color  color.RGBA
}

type Player struct {
	Speed float64
	Size  float64
}

func main() {
	cfg, err := config.LoadEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	a := app.New(app.WithLogger(logger), app.WithConfig(cfg.App))
	ecs.Register[Position](a.World)
	ecs.Register[Velocity](a.World)
	ecs.Register[Ball](a.World)
	ecs.Register[Player](a.World)

	keyboard := ebitenticker.Keyboard{}
	a.Use(input.Plugin(keyboard, input.DefaultBindings()))
	a.Use(script.Plugin(cfg.Script,
		script.Expose[Position]("Position"),
		script.Expose[Velocity]("Velocity"),
	))

	var opts []ebitenticker.GameOption
	if cfg.DebugUI.Enabled {
		backend := debugui.NewBackend(cfg.App.Name, width, height)
		a.Use(debugui.Plugin(cfg.DebugUI, backend))
		opts = append(opts, ebitenticker.WithOverlay(backend))
	}

	a.OnLoad(func(ctx context.Context, a *app.App) error {
		return a.Sync(func(a *app.App) {
			r := rand.New(rand.NewPCG(42, 42))
			for range 64 {
				a.MustSpawn(
					Position{X: r.Float64() * width, Y: r.Float64() * height},
					Velocity{X: r.Float64()*240 - 120, Y: r.Float64()*240 - 120},
					Ball{
						Radius: 4 + r.Float64()*8,
						Color:  color.RGBA{R: uint8(r.IntN(256)), G: uint8(r.IntN(256)), B: 255, A: 255},
					},
				)
			}
			a.MustSpawn(Position{X: width / 2, Y: height / 2}, Player{Speed: 300, Size: 24}, input.Input{})
		})
	})

	a.OnEarlyUpdate(func(float64) {
		if keyboard.Pressed(input.Escape) {
			_ = a.Stop()
		}
	})

	balls := a.MustQuery(ecs.TypeFor[Position](), ecs.TypeFor[Velocity](), ecs.TypeFor[Ball]())
	a.OnFixedUpdate(func(dt float64) {
		ecs.Each3(balls, func(_ *ecs.Entity, p *Position, v *Velocity, b *Ball) {
			p.X += v.X * dt
			p.Y += v.Y * dt
			if p.X < b.Radius || p.X > width-b.Radius {
				v.X = -v.X
				p.X = min(max(p.X, b.Radius), width-b.Radius)
			}
			if p.Y < b.Radius || p.Y > height-b.Radius {
				v.Y = -v.Y
				p.Y = min(max(p.Y, b.Radius), height-b.Radius)
			}
		})
	})

	players := a.MustQuery(ecs.TypeFor[Position](), ecs.TypeFor[Player](), ecs.TypeFor[input.Input]())
	a.OnUpdate(func(dt float64) {
		if ui := ecs.Singleton[debugui.InputState](a.World); ui != nil && ui.WantCaptureKeyboard {
			return
		}
		ecs.Each3(players, func(_ *ecs.Entity, p *Position, pl *Player, in *input.Input) {
			p.X = min(max(p.X+in.Move.X*pl.Speed*dt, 0), width-pl.Size)
			p.Y = min(max(p.Y-in.Move.Y*pl.Speed*dt, 0), height-pl.Size)
		})
	})

	a.OnRender(func(float64) {
		screen := ecs.Singleton[ebitenticker.Screen](a.World)
		if screen == nil || screen.Image == nil {
			return
		}
		screen.Image.Fill(color.RGBA{R: 16, G: 16, B: 24, A: 255})
		ecs.Each3(balls, func(_ *ecs.Entity, p *Position, _ *Velocity, b *Ball) {
			vector.DrawFilledCircle(screen.Image, float32(p.X), float32(p.Y), float32(b.Radius), b.Color, true)
		})
		ecs.Each3(players, func(_ *ecs.Entity, p *Position, pl *Player, _ *input.Input) {
			vector.DrawFilledRect(screen.Image, float32(p.X), float32(p.Y), float32(pl.Size), float32(pl.Size), color.White, false)
		})
	})

	if err := ebitenticker.Run(context.Background(), a, cfg.Ticker, cfg.App.Name, width, height, opts...); err != nil {
		logger.Fatal("demo exited", zap.Error(err))
	}
}
