package ecs

// Singleton returns the component of type T held by the first entity that has
// one, for global state such as configuration or an input snapshot. It returns
// nil when no entity holds a T or when T was never registered.
//
// T is the component's struct type; for interface supertypes use
// World.SingletonComponent.
func Singleton[T any](w *World) *T {
	c, _ := w.SingletonComponent(TypeFor[T]()).(*T)
	return c
}

// EnsureSingleton returns the existing T singleton or spawns an entity holding
// initial, which must be of a registered type.
func EnsureSingleton[T any](w *World, initial T) (*T, error) {
	if c := Singleton[T](w); c != nil {
		return c, nil
	}
	ptr := &initial
	if _, err := w.Spawn(ptr); err != nil {
		return nil, err
	}
	return ptr, nil
}
