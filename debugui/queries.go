package debugui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/bigby/app"
	"github.com/plus3/bigby/ecs"
)

// MatchingEntities returns the entities holding a component of every named
// concrete type. It scans the World instead of creating a query, so previewing
// leaves the query memo untouched.
func MatchingEntities(w *ecs.World, typeNames []string) []*ecs.Entity {
	if len(typeNames) == 0 {
		return nil
	}
	var matches []*ecs.Entity
	for _, e := range w.Entities() {
		names := make([]string, 0, e.Len())
		for _, c := range e.Components() {
			names = append(names, ecs.TypeOf(c).String())
		}
		if !slices.ContainsFunc(typeNames, func(n string) bool { return !slices.Contains(names, n) }) {
			matches = append(matches, e)
		}
	}
	return matches
}

// QueryDebugger lists the World's live queries and previews which entities a
// combination of component types would match.
type QueryDebugger struct {
	selected map[string]bool
}

func NewQueryDebugger() *QueryDebugger {
	return &QueryDebugger{selected: make(map[string]bool)}
}

func (qd *QueryDebugger) Render(a *app.App) {
	if !imgui.BeginV("Query Debugger", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	stats := a.CollectStats()

	if imgui.TreeNodeStr(fmt.Sprintf("Live Queries (%d)", stats.QueryCount)) {
		const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg
		if imgui.BeginTableV("LiveQueryTable", 2, tableFlags, imgui.NewVec2(0, 0), 0) {
			imgui.TableSetupColumn("Types")
			imgui.TableSetupColumn("Entities")
			imgui.TableHeadersRow()
			for _, q := range stats.Queries {
				imgui.TableNextRow()
				imgui.TableSetColumnIndex(0)
				imgui.Text(strings.Join(q.Types, ", "))
				imgui.TableSetColumnIndex(1)
				imgui.Text(fmt.Sprintf("%d", q.EntityCount))
			}
			imgui.EndTable()
		}
		imgui.TreePop()
	}

	imgui.Separator()
	imgui.Text("Select Component Types:")
	if imgui.Button("Clear All") {
		clear(qd.selected)
	}
	for _, c := range stats.Components {
		on := qd.selected[c.Type]
		if imgui.Checkbox(c.Type, &on) {
			if on {
				qd.selected[c.Type] = true
			} else {
				delete(qd.selected, c.Type)
			}
		}
	}

	imgui.Separator()
	names := make([]string, 0, len(qd.selected))
	for name := range qd.selected {
		names = append(names, name)
	}
	slices.Sort(names)
	if len(names) == 0 {
		imgui.Text("No component types selected")
		imgui.End()
		return
	}

	matches := MatchingEntities(a.World, names)
	imgui.Text(fmt.Sprintf("Matching Entities: %d", len(matches)))
	selection := ecs.Singleton[Selection](a.World)
	for _, e := range matches {
		if imgui.SelectableBool(fmt.Sprintf("%d", e.ID())) && selection != nil {
			selection.Entity = e.ID()
		}
	}

	imgui.End()
}
