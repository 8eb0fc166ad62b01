package ecs

import (
	"errors"
	"fmt"
)

var (
	// ErrComponentNotRegistered is returned when a component type, and every
	// one of its supertypes, is unknown to the World.
	ErrComponentNotRegistered = errors.New("ecs: component not registered")

	// ErrDuplicateComponent is returned by Spawn when two components share a
	// concrete type.
	ErrDuplicateComponent = errors.New("ecs: duplicate component type")

	// ErrInvalidComponent is returned for nil components and for values that
	// cannot be stored as components.
	ErrInvalidComponent = errors.New("ecs: invalid component")

	// ErrEntityNotFound is returned when an entity does not belong to the World.
	ErrEntityNotFound = errors.New("ecs: entity not found")
)

// ComponentNotRegisteredError names the offending type. It matches
// ErrComponentNotRegistered with errors.Is.
type ComponentNotRegisteredError struct {
	Type ComponentType
}

func (e *ComponentNotRegisteredError) Error() string {
	return fmt.Sprintf("ecs: component %q unknown, register it first or add a plugin that does", e.Type)
}

func (e *ComponentNotRegisteredError) Unwrap() error {
	return ErrComponentNotRegistered
}
