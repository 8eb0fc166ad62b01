package debugui

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/bigby/app"
	"github.com/plus3/bigby/ecs"
	"github.com/plus3/bigby/event"
)

type EntityInfo struct {
	ID             ecs.EntityID
	ComponentTypes []string
}

// Entity browser columns.
const (
	ColumnID = iota
	ColumnComponents
	ColumnCount
)

// EntityRows describes every live entity in spawn order.
func EntityRows(w *ecs.World) []EntityInfo {
	entities := w.Entities()
	rows := make([]EntityInfo, 0, len(entities))
	for _, e := range entities {
		names := make([]string, 0, e.Len())
		for _, c := range e.Components() {
			names = append(names, ecs.TypeOf(c).String())
		}
		rows = append(rows, EntityInfo{ID: e.ID(), ComponentTypes: names})
	}
	return rows
}

// FilterEntities keeps the rows whose id or component names contain text,
// ignoring case.
func FilterEntities(rows []EntityInfo, text string) []EntityInfo {
	if text == "" {
		return rows
	}
	needle := strings.ToLower(text)
	return slices.DeleteFunc(slices.Clone(rows), func(row EntityInfo) bool {
		if strings.Contains(fmt.Sprintf("%d", row.ID), needle) {
			return false
		}
		return !strings.Contains(strings.ToLower(strings.Join(row.ComponentTypes, " ")), needle)
	})
}

// SortEntities sorts rows in place by one of the browser columns.
func SortEntities(rows []EntityInfo, column int, ascending bool) {
	slices.SortStableFunc(rows, func(a, b EntityInfo) int {
		var c int
		switch column {
		case ColumnComponents:
			c = cmp.Compare(strings.Join(a.ComponentTypes, ","), strings.Join(b.ComponentTypes, ","))
		case ColumnCount:
			c = cmp.Compare(len(a.ComponentTypes), len(b.ComponentTypes))
		}
		if c == 0 {
			c = cmp.Compare(a.ID, b.ID)
		}
		if !ascending {
			return -c
		}
		return c
	})
}

// EntityBrowser lists entities with filtering, sorting and paging. Clicking a
// row updates the Selection singleton.
type EntityBrowser struct {
	world         *ecs.World
	subs          []*event.Subscription
	changes       uint64
	built         uint64
	rows          []EntityInfo
	filterText    string
	sortColumn    int
	sortAscending bool
	perPage       int
	page          int
}

func NewEntityBrowser(perPage int) *EntityBrowser {
	return &EntityBrowser{
		sortAscending: true,
		perPage:       perPage,
	}
}

// Rows returns the sorted rows for w, rebuilding them only after an entity was
// spawned, changed or destroyed since the last call.
func (eb *EntityBrowser) Rows(w *ecs.World) []EntityInfo {
	if eb.world != w {
		eb.watch(w)
	}
	if eb.rows == nil || eb.built != eb.changes {
		eb.rows = EntityRows(w)
		eb.built = eb.changes
		SortEntities(eb.rows, eb.sortColumn, eb.sortAscending)
	}
	return eb.rows
}

// Refresh forces the next Rows call to rebuild.
func (eb *EntityBrowser) Refresh() {
	eb.changes++
}

func (eb *EntityBrowser) watch(w *ecs.World) {
	for _, sub := range eb.subs {
		sub.Cancel()
	}
	changed := func(*ecs.Entity) { eb.changes++ }
	eb.world = w
	eb.subs = []*event.Subscription{
		w.OnEntityAdded.Add(changed),
		w.OnEntityUpdated.Add(changed),
		w.OnEntityRemoved.Add(changed),
	}
	eb.rows = nil
}

func (eb *EntityBrowser) Render(a *app.App) {
	if !imgui.BeginV("Entity Browser", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	eb.Rows(a.World)

	imgui.InputTextWithHint("##search", "Search...", &eb.filterText, imgui.InputTextFlagsNone, nil)
	imgui.SameLine()
	if imgui.Button("Clear Filter") {
		eb.filterText = ""
	}
	imgui.SameLine()
	if imgui.Button("Refresh") {
		eb.Refresh()
	}

	selection := ecs.Singleton[Selection](a.World)
	filtered := FilterEntities(eb.rows, eb.filterText)
	if start := eb.page * eb.perPage; start >= len(filtered) {
		eb.page = 0
	}

	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg | imgui.TableFlagsSortable | imgui.TableFlagsScrollY
	if imgui.BeginTableV("EntityTable", 3, tableFlags, imgui.NewVec2(0, 0), 0) {
		imgui.TableSetupColumn("Entity ID")
		imgui.TableSetupColumn("Components")
		imgui.TableSetupColumn("Count")
		imgui.TableHeadersRow()

		sortSpecs := imgui.TableGetSortSpecs()
		if sortSpecs.SpecsDirty() && sortSpecs.SpecsCount() > 0 {
			spec := sortSpecs.Specs()
			eb.sortColumn = int(spec.ColumnIndex())
			eb.sortAscending = spec.SortDirection() == imgui.SortDirectionAscending
			SortEntities(eb.rows, eb.sortColumn, eb.sortAscending)
			filtered = FilterEntities(eb.rows, eb.filterText)
			sortSpecs.SetSpecsDirty(false)
		}

		start := eb.page * eb.perPage
		end := min(start+eb.perPage, len(filtered))
		for _, row := range filtered[start:end] {
			imgui.TableNextRow()

			imgui.TableNextColumn()
			selected := selection != nil && selection.Entity == row.ID
			if imgui.SelectableBoolV(fmt.Sprintf("%d", row.ID), selected, imgui.SelectableFlagsSpanAllColumns, imgui.NewVec2(0, 0)) && selection != nil {
				selection.Entity = row.ID
			}

			imgui.TableNextColumn()
			imgui.Text(strings.Join(row.ComponentTypes, ", "))

			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%d", len(row.ComponentTypes)))
		}

		imgui.EndTable()
	}

	if len(filtered) > eb.perPage {
		pages := (len(filtered) + eb.perPage - 1) / eb.perPage
		imgui.Text(fmt.Sprintf("Page %d / %d (%d entities)", eb.page+1, pages, len(filtered)))
		imgui.SameLine()
		if imgui.Button("Prev") && eb.page > 0 {
			eb.page--
		}
		imgui.SameLine()
		if imgui.Button("Next") && eb.page < pages-1 {
			eb.page++
		}
	} else {
		imgui.Text(fmt.Sprintf("Total: %d entities", len(filtered)))
	}

	imgui.End()
}
