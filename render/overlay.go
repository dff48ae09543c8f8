package render

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/flappy/ecs"
	"github.com/plus3/flappy/ecs/debugui"
	debugui_ebiten "github.com/plus3/flappy/ecs/debugui/ebiten"
	"github.com/plus3/flappy/train"
)

// Overlay is the F1 ImGui debug window. It keeps its own ECS storage so
// that world resets never touch the UI entities.
type Overlay struct {
	Visible bool

	scheduler *ecs.Scheduler
	backend   *ecs.Singleton[debugui_ebiten.ImguiBackend]
	input     *ecs.Singleton[debugui.ImguiInputState]
}

// NewOverlay creates the game window through the ImGui backend and spawns
// the training panel for pilot.
func NewOverlay(title string, width, height int, pilot train.Pilot) *Overlay {
	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[debugui_ebiten.ImguiBackend](registry)
	debugui.RegisterComponents(registry)
	storage := ecs.NewStorage(registry)

	ecs.NewSingleton(storage, debugui_ebiten.NewImguiBackend(title, width, height))
	input := ecs.NewSingleton[debugui.ImguiInputState](storage)

	panel := debugui.NewTrainingPanel(120, 300)
	timer := debugui.NewFrameTimer()
	world := pilot.World()
	storage.Spawn(debugui.ImguiItem{
		Render: func() {
			p := pilot.Live()
			panel.Render(debugui.PanelStats{
				Mode:    p.Mode,
				Episode: p.Episode,
				Score:   p.Score,
				Best:    p.Best,
				Alive:   world.Session().Alive,
				Epsilon: p.Epsilon,
				Loss:    p.Loss,
			}, world.Storage(), world.Scheduler(), timer.GetDeltaTime())
		},
	})

	scheduler := ecs.NewScheduler(storage)
	scheduler.Register(&debugui.ImguiSystem{})

	return &Overlay{
		Visible:   true,
		scheduler: scheduler,
		backend:   ecs.NewSingleton[debugui_ebiten.ImguiBackend](storage),
		input:     input,
	}
}

// Update runs one ImGui frame.
func (o *Overlay) Update() {
	o.backend.Get().BeginFrame()
	if o.Visible {
		o.scheduler.Once(1.0 / float64(ebiten.TPS()))
	}
	o.backend.Get().EndFrame()
}

// WantsKeyboard reports whether ImGui consumed keyboard input last frame.
func (o *Overlay) WantsKeyboard() bool {
	return o.Visible && o.input.Get().WantCaptureKeyboard
}

func (o *Overlay) Draw(screen *ebiten.Image) {
	o.backend.Get().Draw(screen)
}

func (o *Overlay) Layout(outsideWidth, outsideHeight int) {
	o.backend.Get().Layout(outsideWidth, outsideHeight)
}
