package ecs_test

import "github.com/plus3/bigby/ecs"

// Common test component types
type Position struct {
	X, Y float32
}

type Velocity struct {
	DX, DY float32
}

type Name struct {
	Value string
}

type Health struct {
	Current int
	Max     int
}

type PlayerController struct{}

// Custom primitive types for testing non-struct components
type Score int32
type Tag string

// Shape hierarchy built with explicit subtype edges.
type Shape struct {
	Sides int
}

type Polygon struct {
	Sides int
}

type Square struct {
	Size float32
}

// Drawable is satisfied through the pointer receiver.
type Drawable interface {
	Draw() string
}

type Sprite struct {
	Image string
}

func (s *Sprite) Draw() string { return "sprite:" + s.Image }

type Label struct {
	Text string
}

func (l *Label) Draw() string { return "label:" + l.Text }

func newTestWorld() *ecs.World {
	w := ecs.NewWorld()
	ecs.Register[Position](w)
	ecs.Register[Velocity](w)
	ecs.Register[Name](w)
	ecs.Register[Health](w)
	ecs.Register[PlayerController](w)
	ecs.Register[Score](w)
	ecs.Register[Tag](w)
	return w
}
