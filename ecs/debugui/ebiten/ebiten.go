// Package ebiten provides Dear ImGui backend integration for the Ebiten game engine.
package ebiten

import (
	ebitenbackend "github.com/AllenDang/cimgui-go/backend/ebiten-backend"
	"github.com/AllenDang/cimgui-go/imgui"
)

// ImguiBackend wraps the Ebiten-specific Dear ImGui backend implementation.
// Store it as a singleton so systems and the game loop share one instance.
type ImguiBackend struct {
	*ebitenbackend.EbitenBackend
}

// NewImguiBackend opens the game window through the backend. ImGui layout
// persistence is disabled.
func NewImguiBackend(title string, width, height int) ImguiBackend {
	backend := ebitenbackend.NewEbitenBackend()
	backend.CreateWindow(title, width, height)
	imgui.CurrentIO().SetIniFilename("")
	return ImguiBackend{EbitenBackend: backend}
}
