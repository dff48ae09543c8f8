package render

import (
	"fmt"

	"github.com/plus3/flappy/flappy"
	"github.com/plus3/flappy/train"
)

func hudLines(pilot train.Pilot, snap flappy.Snapshot, last train.Progress, speed int) []string {
	live := pilot.Live()
	lines := []string{
		fmt.Sprintf("Score: %d", snap.Session.Score),
		fmt.Sprintf("Best: %d", snap.Session.Best),
	}

	switch live.Mode {
	case "play":
		return lines
	case "neat":
		lines = append(lines,
			fmt.Sprintf("Generation: %d", live.Episode),
			fmt.Sprintf("Alive: %d", snap.Session.Alive),
		)
		if last.Episode > 0 {
			lines = append(lines, fmt.Sprintf("Last best fitness: %.1f", last.Reward))
		}
	default:
		lines = append(lines,
			fmt.Sprintf("Episode: %d", live.Episode),
			fmt.Sprintf("Epsilon: %.3f", live.Epsilon),
		)
	}

	if speed > 1 {
		lines = append(lines, fmt.Sprintf("Speed: x%d", speed))
	}
	return lines
}
