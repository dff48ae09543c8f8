package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/plus3/flappy/agent/neuro"
	"github.com/plus3/flappy/assets"
	"github.com/plus3/flappy/config"
	"github.com/plus3/flappy/render"
	"github.com/plus3/flappy/train"
)

func main() {
	configPath := flag.String("config", "", "TOML config file.")
	preset := flag.String("preset", "", "Game preset: sprite, neat, classic or hover.")
	mode := flag.String("mode", "play", "play, dqn, tabular or neat.")
	assetsDir := flag.String("assets", "", "Sprite directory (defaults to the config's assets.dir).")
	weights := flag.String("weights", "", "Fly saved weights (or a NEAT champion) instead of learning live.")
	save := flag.String("save", "", "Save the learner here when the window closes.")
	debugUI := flag.Bool("debug-ui", false, "Show the ImGui training overlay (toggle with F1).")
	seed := flag.Uint64("seed", 0, "Random seed (0 keeps the config's seed).")
	flag.Parse()

	cfg, err := config.Resolve(*configPath, *preset)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *assetsDir != "" {
		cfg.Assets.Dir = *assetsDir
	}
	if *seed != 0 {
		cfg.Train.Seed = *seed
	}

	sprites, err := assets.LoadOrFallback(cfg.Assets.Dir)
	if err != nil {
		log.Fatalf("Failed to load sprites: %v", err)
	}

	pilot, trainer, err := newPilot(cfg, sprites, *mode, *weights)
	if err != nil {
		log.Fatalf("Failed to set up %s: %v", *mode, err)
	}

	title := fmt.Sprintf("Flappy (%s, %s)", *mode, cfg.Preset)
	var overlay *render.Overlay
	if *debugUI {
		overlay = render.NewOverlay(title, cfg.Game.ScreenWidth, cfg.Game.ScreenHeight, pilot)
	}

	game := render.NewGame(cfg.Game, sprites, pilot, overlay)
	if !pilot.Human() {
		game.OnEpisode = func(p train.Progress) {
			log.Printf("episode %d: score=%d steps=%d epsilon=%.3f fitness=%.1f", p.Episode, p.Score, p.Steps, p.Epsilon, p.Reward)
		}
	}

	if err := render.Run(game, title); err != nil {
		log.Fatalf("Game stopped: %v", err)
	}

	if *save != "" && trainer != nil {
		if err := trainer.Save(*save); err != nil {
			log.Fatalf("Failed to save %s: %v", *mode, err)
		}
		log.Printf("Saved %s learner to %s", *mode, *save)
	}
}

// newPilot returns the pilot for mode and, when it learns, its trainer.
func newPilot(cfg config.Config, sprites *assets.Sprites, mode, weights string) (train.Pilot, train.Trainer, error) {
	switch mode {
	case "play":
		return train.NewHumanPilot(cfg, sprites), nil, nil

	case "dqn":
		t := train.NewDQN(cfg, sprites)
		if weights != "" {
			return t.Pilot(), nil, t.Play(weights)
		}
		return t.Pilot(), t, nil

	case "tabular":
		t := train.NewTabular(cfg, sprites)
		if weights != "" {
			return t.Pilot(), nil, t.Play(weights)
		}
		return t.Pilot(), t, nil

	case "neat":
		if weights != "" {
			champion, err := neuro.LoadChampion(weights)
			if err != nil {
				return nil, nil, err
			}
			policy, err := neuro.NewPhenotype(1, champion.Weights, cfg.NEAT.FlapThreshold)
			if err != nil {
				return nil, nil, err
			}
			return train.NewChampionPilot(cfg, sprites, policy), nil, nil
		}
		t, err := train.NewNeat(cfg, sprites)
		if err != nil {
			return nil, nil, err
		}
		return t.Pilot(), t, nil
	}
	return nil, nil, fmt.Errorf("%w: %q", train.ErrUnknownMode, mode)
}
