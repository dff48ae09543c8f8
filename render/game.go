// Package render shows a flappy world in an Ebitengine window and feeds it
// player input.
package render

import (
	"fmt"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/plus3/flappy/assets"
	"github.com/plus3/flappy/config"
	"github.com/plus3/flappy/flappy"
	"github.com/plus3/flappy/train"
)

type State int

const (
	StateMenu State = iota
	StatePlaying
	StateOver
)

const maxSpeed = 64

// Game implements ebiten.Game around a train.Pilot.
type Game struct {
	cfg     config.GameConfig
	pilot   train.Pilot
	images  map[assets.Key]*ebiten.Image
	overlay *Overlay

	state State
	// speed is how many world ticks run per frame; learners only.
	speed int
	last  train.Progress

	// OnEpisode, if set, sees every finished episode.
	OnEpisode func(train.Progress)
}

// NewGame wraps pilot. overlay may be nil.
func NewGame(cfg config.GameConfig, sprites *assets.Sprites, pilot train.Pilot, overlay *Overlay) *Game {
	images := make(map[assets.Key]*ebiten.Image)
	for _, k := range assets.Keys() {
		images[k] = ebiten.NewImageFromImage(sprites.Image(k))
	}
	return &Game{
		cfg:     cfg,
		pilot:   pilot,
		images:  images,
		overlay: overlay,
		speed:   1,
	}
}

func (g *Game) State() State { return g.state }

func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	if g.overlay != nil {
		if inpututil.IsKeyJustPressed(ebiten.KeyF1) {
			g.overlay.Visible = !g.overlay.Visible
		}
		g.overlay.Update()
	}
	keyboard := g.overlay == nil || !g.overlay.WantsKeyboard()

	if !g.pilot.Human() && keyboard {
		if inpututil.IsKeyJustPressed(ebiten.KeyUp) {
			g.speed = min(g.speed*2, maxSpeed)
		}
		if inpututil.IsKeyJustPressed(ebiten.KeyDown) {
			g.speed = max(g.speed/2, 1)
		}
	}

	switch g.state {
	case StateMenu:
		if !g.pilot.Human() || (keyboard && inpututil.IsKeyJustPressed(ebiten.KeySpace)) {
			g.state = StatePlaying
		}

	case StatePlaying:
		flap := keyboard && (ebiten.IsKeyPressed(ebiten.KeySpace) || ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft))
		for i := 0; i < g.speed; i++ {
			if !g.pilot.Tick(flap).GameOver {
				continue
			}
			if err := g.endEpisode(); err != nil {
				return err
			}
			break
		}

	case StateOver:
		if keyboard && inpututil.IsKeyJustPressed(ebiten.KeyR) {
			g.pilot.Reset()
			g.state = StatePlaying
		}
	}
	return nil
}

func (g *Game) endEpisode() error {
	p, err := g.pilot.EndEpisode()
	if err != nil {
		return fmt.Errorf("failed to end episode: %w", err)
	}
	g.last = p
	if g.OnEpisode != nil {
		g.OnEpisode(p)
	}

	if g.pilot.Human() {
		g.state = StateOver
		return nil
	}
	g.pilot.Reset()
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	snap := g.pilot.World().Snapshot()

	g.drawAt(screen, assets.Background, 0, 0)
	for _, pipe := range snap.Pipes {
		g.drawAt(screen, pipe.Key, pipe.X, pipe.Y)
	}
	for _, ground := range snap.Grounds {
		g.drawAt(screen, ground.Key, ground.X, ground.Y)
	}
	for _, bird := range snap.Birds {
		if bird.Alive || g.pilot.Human() {
			g.drawBird(screen, bird)
		}
	}

	for i, line := range hudLines(g.pilot, snap, g.last, g.speed) {
		ebitenutil.DebugPrintAt(screen, line, 10, 10+16*i)
	}

	switch g.state {
	case StateMenu:
		g.drawCentered(screen, assets.Start)
		ebitenutil.DebugPrintAt(screen, "Press Space to start", g.cfg.ScreenWidth/2-60, g.cfg.ScreenHeight/2+50)
	case StateOver:
		g.drawCentered(screen, assets.GameOver)
		ebitenutil.DebugPrintAt(screen, "Press R to restart", g.cfg.ScreenWidth/2-54, g.cfg.ScreenHeight/2+40)
	}

	if g.overlay != nil && g.overlay.Visible {
		g.overlay.Draw(screen)
	}
}

func (g *Game) drawAt(screen *ebiten.Image, key assets.Key, x, y float64) {
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(x, y)
	screen.DrawImage(g.images[key], op)
}

func (g *Game) drawCentered(screen *ebiten.Image, key assets.Key) {
	img := g.images[key]
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	g.drawAt(screen, key, float64(g.cfg.ScreenWidth-w)/2, float64(g.cfg.ScreenHeight-h)/2)
}

// drawBird rotates the sprite about its center; positive tilt is nose up.
func (g *Game) drawBird(screen *ebiten.Image, bird flappy.BirdState) {
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(-bird.W/2, -bird.H/2)
	op.GeoM.Rotate(-bird.Tilt * math.Pi / 180)
	op.GeoM.Translate(bird.X+bird.W/2, bird.Y+bird.H/2)
	screen.DrawImage(g.images[bird.Key], op)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if g.overlay != nil {
		g.overlay.Layout(outsideWidth, outsideHeight)
	}
	return g.cfg.ScreenWidth, g.cfg.ScreenHeight
}

// Run opens the window and blocks until it is closed or Escape is pressed.
func Run(g *Game, title string) error {
	if g.overlay == nil {
		ebiten.SetWindowSize(g.cfg.ScreenWidth, g.cfg.ScreenHeight)
		ebiten.SetWindowTitle(title)
	}
	ebiten.SetTPS(g.cfg.TicksPerSecond)
	return ebiten.RunGame(g)
}
