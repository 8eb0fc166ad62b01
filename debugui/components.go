package debugui

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/bigby/app"
	"github.com/plus3/bigby/ecs"
)

// Component viewer columns.
const (
	ColumnType = iota
	ColumnInstances
)

// SortComponents sorts component counts in place.
func SortComponents(counts []ecs.ComponentCount, column int, ascending bool) {
	slices.SortStableFunc(counts, func(a, b ecs.ComponentCount) int {
		var c int
		if column == ColumnInstances {
			c = cmp.Compare(a.Count, b.Count)
		}
		if c == 0 {
			c = cmp.Compare(a.Type, b.Type)
		}
		if !ascending {
			return -c
		}
		return c
	})
}

// ComponentViewer lists how many instances of each component type are alive,
// and the live queries mentioning the selected one.
type ComponentViewer struct {
	selected      string
	sortColumn    int
	sortAscending bool
}

func NewComponentViewer() *ComponentViewer {
	return &ComponentViewer{sortColumn: ColumnInstances}
}

func (cv *ComponentViewer) Render(a *app.App) {
	if !imgui.BeginV("Component Viewer", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	stats := a.CollectStats()
	maxCount := 0
	for _, c := range stats.Components {
		maxCount = max(maxCount, c.Count)
	}

	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg | imgui.TableFlagsSortable | imgui.TableFlagsScrollY
	if imgui.BeginTableV("ComponentTable", 3, tableFlags, imgui.NewVec2(0, 300), 0) {
		imgui.TableSetupColumn("Type")
		imgui.TableSetupColumn("Instances")
		imgui.TableSetupColumn("Share")
		imgui.TableHeadersRow()

		sortSpecs := imgui.TableGetSortSpecs()
		if sortSpecs.SpecsDirty() && sortSpecs.SpecsCount() > 0 {
			spec := sortSpecs.Specs()
			cv.sortColumn = int(spec.ColumnIndex())
			cv.sortAscending = spec.SortDirection() == imgui.SortDirectionAscending
			sortSpecs.SetSpecsDirty(false)
		}
		SortComponents(stats.Components, cv.sortColumn, cv.sortAscending)

		for _, c := range stats.Components {
			imgui.TableNextRow()

			imgui.TableNextColumn()
			if imgui.SelectableBoolV(c.Type, cv.selected == c.Type, imgui.SelectableFlagsSpanAllColumns, imgui.NewVec2(0, 0)) {
				cv.selected = c.Type
			}

			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%d", c.Count))

			imgui.TableNextColumn()
			var fraction float32
			if maxCount > 0 {
				fraction = float32(c.Count) / float32(maxCount)
			}
			imgui.ProgressBarV(fraction, imgui.NewVec2(-1, 0), "")
		}

		imgui.EndTable()
	}

	if cv.selected != "" {
		imgui.Separator()
		imgui.Text(fmt.Sprintf("Queries using %s:", cv.selected))
		for _, q := range stats.Queries {
			if slices.Contains(q.Types, cv.selected) {
				imgui.BulletText(fmt.Sprintf("[%s] %d entities", strings.Join(q.Types, ", "), q.EntityCount))
			}
		}
	}

	imgui.End()
}
