package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/plus3/flappy/assets"
	"github.com/plus3/flappy/config"
	"github.com/plus3/flappy/train"
	"github.com/plus3/flappy/train/episodelog"
)

func main() {
	configPath := flag.String("config", "", "TOML config file.")
	preset := flag.String("preset", "", "Game preset: sprite, neat, classic or hover.")
	mode := flag.String("mode", "", "dqn, tabular or neat (defaults to the config's train.mode).")
	episodes := flag.Int("episodes", 0, "Episodes (or NEAT generations) to run; 0 keeps the config value.")
	maxSteps := flag.Int("max-steps", 0, "Step cap per episode; 0 keeps the config value.")
	seed := flag.Uint64("seed", 0, "Random seed (0 keeps the config's seed).")
	assetsDir := flag.String("assets", "", "Sprite directory for mask collision (placeholders if absent).")
	logPath := flag.String("log", "", "Parquet episode log (defaults to train.log_path; \"-\" disables).")
	out := flag.String("out", "", "Where to save the learner (defaults to train.weights_path).")
	tui := flag.Bool("tui", true, "Show a live terminal view instead of log lines.")
	logEvery := flag.Int("log-every", 10, "Without the TUI, log every n-th episode.")
	gcPauseMetrics := flag.Bool("gc-pause-metrics", false, "Include GC pause totals in the report.")
	flag.Parse()

	cfg, err := config.Resolve(*configPath, *preset)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	applyFlags(&cfg, *mode, *episodes, *maxSteps, *seed, *assetsDir, *logPath, *out)

	sprites, err := assets.LoadOrFallback(cfg.Assets.Dir)
	if err != nil {
		log.Fatalf("Failed to load sprites: %v", err)
	}

	trainer, err := train.New(cfg, sprites)
	if err != nil {
		log.Fatalf("Failed to create trainer: %v", err)
	}

	var episodeLog *episodelog.Writer
	if cfg.Train.LogPath != "-" {
		episodeLog, err = episodelog.Create(cfg.Train.LogPath)
		if err != nil {
			log.Fatalf("Failed to create episode log: %v", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	updates := make(chan train.Progress, 64)
	runner := &train.Runner{
		Trainer:  trainer,
		Episodes: cfg.Train.Episodes,
		Preset:   cfg.Preset,
		Log:      episodeLog,
		Updates:  updates,
	}

	report := &Report{
		Mode:           cfg.Train.Mode,
		Preset:         cfg.Preset,
		Episodes:       cfg.Train.Episodes,
		MaxSteps:       cfg.Train.MaxSteps,
		Seed:           cfg.Train.Seed,
		Sprites:        sprites.Source,
		GCPauseMetrics: *gcPauseMetrics,
	}
	runtime.ReadMemStats(&report.MemStatsStart)

	log.Printf("Training %s on preset %s for %d episodes...", cfg.Train.Mode, cfg.Preset, cfg.Train.Episodes)

	type result struct {
		summary train.Summary
		err     error
	}
	done := make(chan result, 1)
	go func() {
		summary, err := runner.Run(ctx)
		done <- result{summary, err}
	}()

	if *tui {
		program := tea.NewProgram(newModel(cfg.Train.Mode, cfg.Train.Episodes, updates))
		if _, err := program.Run(); err != nil {
			log.Printf("TUI failed, training without it: %v", err)
			for range updates {
			}
		}
		// q in the TUI stops training early.
		cancel()
	} else {
		for p := range updates {
			if *logEvery > 0 && p.Episode%*logEvery == 0 {
				log.Printf("episode %d: score=%d best=%d steps=%d reward=%.1f epsilon=%.3f loss=%.4f",
					p.Episode, p.Score, p.Best, p.Steps, p.Reward, p.Epsilon, p.Loss)
			}
		}
	}

	res := <-done
	if res.err != nil {
		log.Printf("Training stopped: %v", res.err)
	}
	report.Summary = res.summary
	runtime.ReadMemStats(&report.MemStatsEnd)

	if episodeLog != nil {
		if err := episodeLog.Close(); err != nil {
			log.Fatalf("Failed to finish episode log: %v", err)
		}
		report.LogPath = episodeLog.Path()
		report.LogRows = episodeLog.Rows()
	}

	if res.summary.Episodes > 0 && cfg.Train.WeightsPath != "" {
		if err := trainer.Save(cfg.Train.WeightsPath); err != nil {
			log.Fatalf("Failed to save learner: %v", err)
		}
		report.WeightsPath = cfg.Train.WeightsPath
	}

	fmt.Println("\n\n--- Training Report ---")
	if err := report.Generate(os.Stdout); err != nil {
		log.Fatalf("Failed to generate report: %v", err)
	}
	fmt.Println("--- End of Report ---")

	if res.err != nil {
		os.Exit(1)
	}
}

func applyFlags(cfg *config.Config, mode string, episodes, maxSteps int, seed uint64, assetsDir, logPath, out string) {
	if mode != "" {
		cfg.Train.Mode = mode
	}
	if episodes > 0 {
		cfg.Train.Episodes = episodes
	}
	if maxSteps > 0 {
		cfg.Train.MaxSteps = maxSteps
	}
	if seed != 0 {
		cfg.Train.Seed = seed
	}
	if assetsDir != "" {
		cfg.Assets.Dir = assetsDir
	}
	if logPath != "" {
		cfg.Train.LogPath = logPath
	}
	if out != "" {
		cfg.Train.WeightsPath = out
	}
	// NEAT runs are counted in generations.
	if cfg.Train.Mode == "neat" {
		cfg.Train.Episodes = cfg.NEAT.Generations
		if episodes > 0 {
			cfg.Train.Episodes = episodes
		}
	}
}
