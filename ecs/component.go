package ecs

import (
	"fmt"
	"reflect"
)

// ComponentType identifies a kind of component. For struct and primitive
// types it names the concrete type; for interface types it names every
// component whose pointer implements the interface.
type ComponentType struct {
	t reflect.Type
}

// TypeFor returns the ComponentType for T. Pointer types are reduced to their
// element type, since components are always stored as pointers.
func TypeFor[T any]() ComponentType {
	return typeFromReflect(reflect.TypeFor[T]())
}

// TypeOf returns the concrete ComponentType of a component value or pointer.
func TypeOf(component any) ComponentType {
	if component == nil {
		return ComponentType{}
	}
	return typeFromReflect(reflect.TypeOf(component))
}

func typeFromReflect(t reflect.Type) ComponentType {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return ComponentType{t: t}
}

// String returns the Go type name.
func (c ComponentType) String() string {
	if c.t == nil {
		return "<nil>"
	}
	return c.t.String()
}

// IsZero reports whether c is the zero ComponentType.
func (c ComponentType) IsZero() bool {
	return c.t == nil
}

// IsInterface reports whether c names an interface type.
func (c ComponentType) IsInterface() bool {
	return c.t != nil && c.t.Kind() == reflect.Interface
}

// New allocates a zero component of type c and returns a pointer to it.
func (c ComponentType) New() (any, error) {
	if c.t == nil || c.IsInterface() {
		return nil, fmt.Errorf("%w: cannot instantiate %s", ErrInvalidComponent, c)
	}
	return reflect.New(c.t).Interface(), nil
}

// normalizeComponent turns a spawn/add argument into the stored pointer and
// its concrete type. A ComponentType argument is instantiated with its zero
// value; plain values are copied into a fresh pointer.
func normalizeComponent(component any) (any, reflect.Type, error) {
	switch v := component.(type) {
	case nil:
		return nil, nil, fmt.Errorf("%w: nil component", ErrInvalidComponent)
	case ComponentType:
		ptr, err := v.New()
		if err != nil {
			return nil, nil, err
		}
		return ptr, v.t, nil
	}

	rv := reflect.ValueOf(component)
	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			return nil, nil, fmt.Errorf("%w: nil %s", ErrInvalidComponent, rv.Type())
		}
		return component, rv.Type().Elem(), nil
	case reflect.Map, reflect.Chan, reflect.Func:
		return nil, nil, fmt.Errorf("%w: components cannot be maps, channels, or functions", ErrInvalidComponent)
	}

	ptr := reflect.New(rv.Type())
	ptr.Elem().Set(rv)
	return ptr.Interface(), rv.Type(), nil
}
