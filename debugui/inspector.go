package debugui

import (
	"fmt"
	"reflect"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/bigby/app"
	"github.com/plus3/bigby/ecs"
)

// ComponentInspector shows and edits the components of the selected entity.
// Numeric, boolean and string fields are editable in place.
type ComponentInspector struct{}

func NewComponentInspector() *ComponentInspector {
	return &ComponentInspector{}
}

func (ci *ComponentInspector) Render(a *app.App) {
	if !imgui.BeginV("Component Inspector", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}
	defer imgui.End()

	selection := ecs.Singleton[Selection](a.World)
	if selection == nil || selection.Entity == 0 {
		imgui.Text("No entity selected")
		return
	}
	entity := a.Entity(selection.Entity)
	if entity == nil {
		imgui.Text(fmt.Sprintf("Entity %d no longer exists", selection.Entity))
		return
	}

	imgui.Text(fmt.Sprintf("Entity ID: %d", entity.ID()))
	imgui.SameLine()
	if imgui.Button("Destroy") {
		a.Commands().Destroy(entity)
	}
	imgui.Separator()

	for _, c := range entity.Components() {
		name := ecs.TypeOf(c).String()
		if imgui.TreeNodeStr(name) {
			renderValue(reflect.ValueOf(c).Elem())
			imgui.TreePop()
		}
	}
}

func renderValue(v reflect.Value) {
	if v.Kind() != reflect.Struct {
		renderField("value", v)
		return
	}
	for _, field := range fieldCache.Fields(v.Type()) {
		fv := v.Field(field.Index)
		if field.IsPointer {
			if fv.IsNil() {
				imgui.Text(fmt.Sprintf("%s: nil", field.Name))
				continue
			}
			fv = fv.Elem()
		}
		renderField(field.Name, fv)
	}
}

// renderField draws one field; edits are written straight into the
// component, which the World stores by pointer.
func renderField(name string, v reflect.Value) {
	label := fmt.Sprintf("##%s", name)

	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n := int32(v.Int())
		imgui.Text(fmt.Sprintf("%s:", name))
		imgui.SameLine()
		imgui.SetNextItemWidth(150)
		if imgui.InputInt(label, &n) && v.CanSet() {
			v.SetInt(int64(n))
		}

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n := int32(v.Uint())
		imgui.Text(fmt.Sprintf("%s:", name))
		imgui.SameLine()
		imgui.SetNextItemWidth(150)
		if imgui.InputInt(label, &n) && n >= 0 && v.CanSet() {
			v.SetUint(uint64(n))
		}

	case reflect.Float32, reflect.Float64:
		f := float32(v.Float())
		imgui.Text(fmt.Sprintf("%s:", name))
		imgui.SameLine()
		imgui.SetNextItemWidth(150)
		if imgui.InputFloat(label, &f) && v.CanSet() {
			v.SetFloat(float64(f))
		}

	case reflect.Bool:
		b := v.Bool()
		if imgui.Checkbox(name, &b) && v.CanSet() {
			v.SetBool(b)
		}

	case reflect.String:
		s := v.String()
		imgui.Text(fmt.Sprintf("%s:", name))
		imgui.SameLine()
		imgui.SetNextItemWidth(200)
		if imgui.InputTextWithHint(label, "", &s, imgui.InputTextFlagsNone, nil) && v.CanSet() {
			v.SetString(s)
		}

	case reflect.Struct:
		if imgui.TreeNodeStr(name) {
			renderValue(v)
			imgui.TreePop()
		}

	case reflect.Slice:
		imgui.Text(fmt.Sprintf("%s: [%d items]", name, v.Len()))

	case reflect.Map:
		imgui.Text(fmt.Sprintf("%s: map[%d items]", name, v.Len()))

	case reflect.Func, reflect.Chan, reflect.Interface:
		imgui.Text(fmt.Sprintf("%s: %s", name, v.Type()))

	default:
		imgui.Text(fmt.Sprintf("%s: %v", name, v.Interface()))
	}
}
