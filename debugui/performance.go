package debugui

import (
	"fmt"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/bigby/app"
)

// FrameHistory is a ring buffer of frame times in milliseconds.
type FrameHistory struct {
	samples []float32
	next    int
	filled  int
}

func NewFrameHistory(size int) *FrameHistory {
	if size <= 0 {
		size = 1
	}
	return &FrameHistory{samples: make([]float32, size)}
}

func (h *FrameHistory) Push(ms float32) {
	h.samples[h.next] = ms
	h.next = (h.next + 1) % len(h.samples)
	if h.filled < len(h.samples) {
		h.filled++
	}
}

// Average returns the mean of the recorded samples, or 0 before the first.
func (h *FrameHistory) Average() float32 {
	if h.filled == 0 {
		return 0
	}
	var sum float32
	for _, s := range h.Values() {
		sum += s
	}
	return sum / float32(h.filled)
}

// Values returns the recorded samples, oldest first.
func (h *FrameHistory) Values() []float32 {
	out := make([]float32, 0, h.filled)
	start := (h.next - h.filled + len(h.samples)) % len(h.samples)
	for i := range h.filled {
		out = append(out, h.samples[(start+i)%len(h.samples)])
	}
	return out
}

// PerformanceStats shows World counters, per-phase timings and a frame time
// graph.
type PerformanceStats struct {
	History *FrameHistory
}

func NewPerformanceStats(historyFrames int) *PerformanceStats {
	return &PerformanceStats{History: NewFrameHistory(historyFrames)}
}

func (ps *PerformanceStats) Render(a *app.App) {
	if !imgui.BeginV("Performance Stats", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	stats := a.CollectStats()
	imgui.Text(fmt.Sprintf("Total Entities: %d", stats.EntityCount))
	imgui.Text(fmt.Sprintf("Registered Types: %d", stats.RegisteredCount))
	imgui.Text(fmt.Sprintf("Live Queries: %d", stats.QueryCount))

	avg := ps.History.Average()
	if avg > 0 {
		imgui.Text(fmt.Sprintf("Avg Frame Time: %.2f ms (%.0f FPS)", avg, 1000.0/avg))
	}

	imgui.Separator()
	imgui.Text("Frame Time Graph (ms)")
	if values := ps.History.Values(); len(values) > 0 {
		imgui.PlotLinesFloatPtr("##frametime", &values[0], int32(len(values)))
	}

	if imgui.TreeNodeStr("Phases") {
		phases := a.Stats()
		imgui.Text(fmt.Sprintf("Systems: %d", phases.SystemCount))
		const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg
		if imgui.BeginTableV("PhaseStatsTable", 5, tableFlags, imgui.NewVec2(0, 0), 0) {
			imgui.TableSetupColumn("Phase")
			imgui.TableSetupColumn("Listeners")
			imgui.TableSetupColumn("Runs")
			imgui.TableSetupColumn("Avg")
			imgui.TableSetupColumn("Max")
			imgui.TableHeadersRow()

			for _, p := range phases.Phases {
				imgui.TableNextRow()
				imgui.TableNextColumn()
				imgui.Text(p.Name)
				imgui.TableNextColumn()
				imgui.Text(fmt.Sprintf("%d", p.Listeners))
				imgui.TableNextColumn()
				imgui.Text(fmt.Sprintf("%d", p.ExecutionCount))
				imgui.TableNextColumn()
				imgui.Text(p.AvgDuration.String())
				imgui.TableNextColumn()
				imgui.Text(p.MaxDuration.String())
			}
			imgui.EndTable()
		}
		imgui.TreePop()
	}

	imgui.End()
}
