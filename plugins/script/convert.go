package script

import (
	"fmt"
	"reflect"

	lua "github.com/yuin/gopher-lua"
)

// valueField is the table key used for components that are not structs.
const valueField = "value"

// toTable copies the exported fields of a component into a new table.
// Fields of kinds Lua cannot represent are left out.
func toTable(L *lua.LState, v reflect.Value) *lua.LTable {
	tbl := L.NewTable()
	if v.Kind() != reflect.Struct {
		if lv, ok := toLua(v); ok {
			tbl.RawSetString(valueField, lv)
		}
		return tbl
	}

	typ := v.Type()
	for i := range typ.NumField() {
		f := typ.Field(i)
		if !f.IsExported() {
			continue
		}
		if lv, ok := toLua(v.Field(i)); ok {
			tbl.RawSetString(f.Name, lv)
		}
	}
	return tbl
}

func toLua(v reflect.Value) (lua.LValue, bool) {
	switch v.Kind() {
	case reflect.Bool:
		return lua.LBool(v.Bool()), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return lua.LNumber(v.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return lua.LNumber(v.Uint()), true
	case reflect.Float32, reflect.Float64:
		return lua.LNumber(v.Float()), true
	case reflect.String:
		return lua.LString(v.String()), true
	}
	return nil, false
}

// fromTable writes the table's entries into the matching fields of v, which
// must be addressable.
func fromTable(tbl *lua.LTable, v reflect.Value) error {
	if v.Kind() != reflect.Struct {
		lv := tbl.RawGetString(valueField)
		if lv == lua.LNil {
			return nil
		}
		return setField(v, lv)
	}

	var err error
	tbl.ForEach(func(k, lv lua.LValue) {
		if err != nil {
			return
		}
		name, ok := k.(lua.LString)
		if !ok {
			return
		}
		f := v.FieldByName(string(name))
		if !f.IsValid() || !f.CanSet() {
			err = fmt.Errorf("%s has no field %s", v.Type(), name)
			return
		}
		if setErr := setField(f, lv); setErr != nil {
			err = fmt.Errorf("%s.%s: %w", v.Type(), name, setErr)
		}
	})
	return err
}

func setField(f reflect.Value, lv lua.LValue) error {
	switch f.Kind() {
	case reflect.Bool:
		b, ok := lv.(lua.LBool)
		if !ok {
			return mismatch(f, lv)
		}
		f.SetBool(bool(b))
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, ok := lv.(lua.LNumber)
		if !ok {
			return mismatch(f, lv)
		}
		f.SetInt(int64(n))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, ok := lv.(lua.LNumber)
		if !ok || n < 0 {
			return mismatch(f, lv)
		}
		f.SetUint(uint64(n))
	case reflect.Float32, reflect.Float64:
		n, ok := lv.(lua.LNumber)
		if !ok {
			return mismatch(f, lv)
		}
		f.SetFloat(float64(n))
	case reflect.String:
		s, ok := lv.(lua.LString)
		if !ok {
			return mismatch(f, lv)
		}
		f.SetString(string(s))
	default:
		return fmt.Errorf("unsupported kind %s", f.Kind())
	}
	return nil
}

func mismatch(f reflect.Value, lv lua.LValue) error {
	return fmt.Errorf("cannot assign lua %s to %s", lv.Type(), f.Type())
}
