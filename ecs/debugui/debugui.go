// Package debugui draws Dear ImGui windows from ECS entities: every ImguiItem
// renders once per frame and ImguiInputState tells the game when ImGui owns input.
package debugui

import (
	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/flappy/ecs"
)

// ImguiItem holds a render callback, run once per frame after the systems.
type ImguiItem struct {
	Render func()
}

// ImguiInputState is a singleton refreshed every frame by ImguiSystem.
type ImguiInputState struct {
	WantCaptureMouse    bool
	WantCaptureKeyboard bool
}

// ImguiSystem queries all ImguiItem components and defers their render functions.
// It also updates the ImguiInputState singleton with current input capture state.
type ImguiSystem struct {
	Items      ecs.Query[struct{ *ImguiItem }]
	InputState ecs.Singleton[ImguiInputState]
}

// Execute updates input state and queues all ImGui render functions for execution.
func (i *ImguiSystem) Execute(frame *ecs.UpdateFrame) {
	state := i.InputState.Get()
	state.WantCaptureMouse = imgui.CurrentIO().WantCaptureMouse()
	state.WantCaptureKeyboard = imgui.CurrentIO().WantCaptureKeyboard()

	for item := range i.Items.Values() {
		frame.Commands.Defer(item.Render)
	}
}

// RegisterComponents registers the component types this package spawns.
func RegisterComponents(registry *ecs.ComponentRegistry) {
	ecs.RegisterComponent[ImguiItem](registry)
	ecs.RegisterComponent[ImguiInputState](registry)
}
