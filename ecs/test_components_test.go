package ecs_test

import "github.com/plus3/flappy/ecs"

type Position struct {
	X, Y float64
}

type Velocity struct {
	DY float64
}

type Health struct {
	Current int
	Max     int
}

type Name string

type Score int32

type Counter struct {
	Ticks int
}

func newTestRegistry() *ecs.ComponentRegistry {
	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[Position](registry)
	ecs.RegisterComponent[Velocity](registry)
	ecs.RegisterComponent[Health](registry)
	ecs.RegisterComponent[Name](registry)
	ecs.RegisterComponent[Score](registry)
	return registry
}
