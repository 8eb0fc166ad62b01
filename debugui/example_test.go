package debugui_test

import (
	"context"
	"log"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/bigby/app"
	"github.com/plus3/bigby/config"
	"github.com/plus3/bigby/debugui"
	ebitenticker "github.com/plus3/bigby/ticker/ebiten"
)

// Example wires the inspector windows into an Ebiten-driven App. The backend
// doubles as the game's overlay so ImGui frames wrap every update.
func Example() {
	cfg := config.Defaults()
	cfg.DebugUI.Enabled = true

	backend := debugui.NewBackend("bigby inspector", 1280, 720)

	a := app.New(app.WithConfig(cfg.App))
	a.Use(debugui.Plugin(cfg.DebugUI, backend))
	a.MustSpawn(&debugui.Item{
		Draw: func() {
			imgui.Begin("Debug Window")
			imgui.Text("Hello from bigby!")
			imgui.End()
		},
	})

	err := ebitenticker.Run(context.Background(), a, cfg.Ticker, "bigby", 1280, 720,
		ebitenticker.WithOverlay(backend))
	if err != nil {
		log.Fatal(err)
	}
}
