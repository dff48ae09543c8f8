package assets

import (
	"image"
	"image/color"
	"image/draw"
)

// Placeholder sprite sizes, matching the classic art.
const (
	BirdWidth    = 34
	BirdHeight   = 24
	PipeWidth    = 52
	PipeHeight   = 700
	GroundWidth  = 551
	GroundHeight = 200
	ScreenWidth  = 551
	ScreenHeight = 720
)

var (
	sky        = color.NRGBA{0x4e, 0xc0, 0xca, 0xff}
	pipeGreen  = color.NRGBA{0x73, 0xbf, 0x2e, 0xff}
	pipeDark   = color.NRGBA{0x55, 0x80, 0x22, 0xff}
	dirt       = color.NRGBA{0xde, 0xd8, 0x95, 0xff}
	grass      = color.NRGBA{0x5e, 0xe2, 0x70, 0xff}
	birdYellow = color.NRGBA{0xf8, 0xd8, 0x30, 0xff}
	birdWing   = color.NRGBA{0xfa, 0xf0, 0xd0, 0xff}
	red        = color.NRGBA{0xd0, 0x40, 0x30, 0xff}
	white      = color.NRGBA{0xff, 0xff, 0xff, 0xff}
)

// Fallback generates placeholder sprites so the game runs without art.
func Fallback() *Sprites {
	s := &Sprites{Source: "fallback"}

	for frame := 0; frame < 3; frame++ {
		s.set(BirdFrame(frame), birdImage(frame))
	}
	s.set(Background, filled(ScreenWidth, ScreenHeight, sky))
	s.set(Ground, groundImage())
	s.set(PipeTop, pipeImage(true))
	s.set(PipeBottom, pipeImage(false))
	s.set(GameOver, banner(192, 42, red))
	s.set(Start, banner(184, 60, white))

	return s
}

func filled(w, h int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return img
}

// birdImage is an ellipse with transparent corners; the wing row moves with the frame.
func birdImage(frame int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, BirdWidth, BirdHeight))
	cx, cy := float64(BirdWidth)/2, float64(BirdHeight)/2
	for y := 0; y < BirdHeight; y++ {
		for x := 0; x < BirdWidth; x++ {
			dx := (float64(x) + 0.5 - cx) / cx
			dy := (float64(y) + 0.5 - cy) / cy
			if dx*dx+dy*dy <= 1 {
				img.Set(x, y, birdYellow)
			}
		}
	}

	wingY := 8 + frame*4
	for x := 4; x < 14; x++ {
		img.Set(x, wingY, birdWing)
		img.Set(x, wingY+1, birdWing)
	}
	return img
}

func pipeImage(top bool) *image.NRGBA {
	img := filled(PipeWidth, PipeHeight, pipeGreen)
	lip := image.Rect(0, 0, PipeWidth, 24)
	if top {
		lip = image.Rect(0, PipeHeight-24, PipeWidth, PipeHeight)
	}
	draw.Draw(img, lip, image.NewUniform(pipeDark), image.Point{}, draw.Src)
	return img
}

func groundImage() *image.NRGBA {
	img := filled(GroundWidth, GroundHeight, dirt)
	draw.Draw(img, image.Rect(0, 0, GroundWidth, 12), image.NewUniform(grass), image.Point{}, draw.Src)
	return img
}

func banner(w, h int, c color.Color) *image.NRGBA {
	return filled(w, h, c)
}
