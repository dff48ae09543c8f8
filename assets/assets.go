// Package assets loads the game's PNG sprites and their collision masks.
package assets

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"github.com/plus3/flappy/mask"
)

var ErrMissing = errors.New("sprite missing")

// Key names one sprite.
type Key int

const (
	BirdDown Key = iota
	BirdMid
	BirdUp
	Background
	Ground
	PipeTop
	PipeBottom
	GameOver
	Start
	numKeys
)

var fileNames = [numKeys]string{
	BirdDown:   "bird_down.png",
	BirdMid:    "bird_mid.png",
	BirdUp:     "bird_up.png",
	Background: "background.png",
	Ground:     "ground.png",
	PipeTop:    "pipe_top.png",
	PipeBottom: "pipe_bottom.png",
	GameOver:   "game_over.png",
	Start:      "start.png",
}

func (k Key) String() string {
	if k < 0 || k >= numKeys {
		return fmt.Sprintf("Key(%d)", int(k))
	}
	return fileNames[k]
}

// Keys returns every sprite key.
func Keys() []Key {
	keys := make([]Key, numKeys)
	for i := range keys {
		keys[i] = Key(i)
	}
	return keys
}

// BirdFrame maps an animation frame index (0..2) to its sprite.
func BirdFrame(frame int) Key {
	switch frame {
	case 0:
		return BirdDown
	case 2:
		return BirdUp
	default:
		return BirdMid
	}
}

// Sprites is an immutable set of decoded images with precomputed masks.
type Sprites struct {
	images [numKeys]image.Image
	masks  [numKeys]*mask.Mask
	// Source is the directory the sprites came from, or "fallback".
	Source string
}

func (s *Sprites) set(k Key, img image.Image) {
	s.images[k] = img
	s.masks[k] = mask.FromImage(img)
}

func (s *Sprites) Image(k Key) image.Image { return s.images[k] }

func (s *Sprites) Mask(k Key) *mask.Mask { return s.masks[k] }

// Size returns the sprite's width and height in pixels.
func (s *Sprites) Size(k Key) (int, int) {
	b := s.images[k].Bounds()
	return b.Dx(), b.Dy()
}

// Load decodes every sprite from dir. All files must be present.
func Load(dir string) (*Sprites, error) {
	s := &Sprites{Source: dir}
	for _, k := range Keys() {
		img, err := decodeFile(filepath.Join(dir, fileNames[k]))
		if err != nil {
			return nil, err
		}
		s.set(k, img)
	}
	return s, nil
}

// LoadOrFallback loads sprites from dir, substituting generated placeholders
// for missing files. A missing directory, or one holding none of the sprite
// files, yields the placeholder set. Undecodable files are an error.
func LoadOrFallback(dir string) (*Sprites, error) {
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		log.Printf("assets: %s not found, using placeholder sprites", dir)
		return Fallback(), nil
	}

	fallback := Fallback()
	s := &Sprites{Source: dir}
	var missing []Key
	for _, k := range Keys() {
		img, err := decodeFile(filepath.Join(dir, fileNames[k]))
		if errors.Is(err, ErrMissing) {
			missing = append(missing, k)
			img = fallback.images[k]
		} else if err != nil {
			return nil, err
		}
		s.set(k, img)
	}

	if len(missing) == len(Keys()) {
		log.Printf("assets: no sprites in %s, using placeholder sprites", dir)
		return fallback, nil
	}
	for _, k := range missing {
		log.Printf("assets: %s not found, using placeholder", k)
	}
	return s, nil
}

func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrMissing, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open sprite: %w", err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return img, nil
}
