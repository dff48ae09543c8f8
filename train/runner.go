package train

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/plus3/flappy/train/episodelog"
)

// Summary describes a finished run.
type Summary struct {
	Mode        string
	Preset      string
	Episodes    int
	TotalSteps  int
	Best        int
	BestReward  float64
	Last        Progress
	Duration    time.Duration
	Interrupted bool
}

// Runner drives a Trainer for a number of episodes. Log and Updates are optional.
type Runner struct {
	Trainer  Trainer
	Episodes int
	Preset   string
	Log      *episodelog.Writer
	// Updates receives every episode's progress. Sends never block; a slow
	// reader misses updates. The Runner closes it when Run returns.
	Updates chan<- Progress
}

// Run plays until Episodes are done or ctx is cancelled. Cancellation is
// not an error: the summary is marked Interrupted.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	if r.Updates != nil {
		defer close(r.Updates)
	}

	start := time.Now()
	summary := Summary{Mode: r.Trainer.Mode(), Preset: r.Preset}

	for r.Episodes <= 0 || summary.Episodes < r.Episodes {
		p, err := r.Trainer.Episode(ctx)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			summary.Interrupted = true
			break
		}
		if err != nil {
			return summary, fmt.Errorf("episode %d: %w", summary.Episodes+1, err)
		}

		summary.Episodes++
		summary.TotalSteps += p.Steps
		summary.Best = max(summary.Best, p.Best)
		if summary.Episodes == 1 || p.Reward > summary.BestReward {
			summary.BestReward = p.Reward
		}
		summary.Last = p

		if r.Log != nil {
			if err := r.Log.Write(r.row(p)); err != nil {
				return summary, err
			}
		}
		if r.Updates != nil {
			select {
			case r.Updates <- p:
			default:
			}
		}
	}

	summary.Duration = time.Since(start)
	return summary, nil
}

func (r *Runner) row(p Progress) episodelog.Row {
	return episodelog.Row{
		Mode:        p.Mode,
		Preset:      r.Preset,
		Episode:     int32(p.Episode),
		Steps:       int32(p.Steps),
		Score:       int32(p.Score),
		Best:        int32(p.Best),
		Reward:      float32(p.Reward),
		MeanFitness: float32(p.MeanFitness),
		Epsilon:     float32(p.Epsilon),
		Loss:        float32(p.Loss),
		States:      int32(p.States),
		DurationUs:  p.Duration.Microseconds(),
	}
}
