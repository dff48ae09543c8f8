package main

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/plus3/flappy/train"
)

type model struct {
	mode      string
	episodes  int
	startTime time.Time
	updates   <-chan train.Progress

	last   train.Progress
	seen   int
	best   int
	recent []string
	done   bool
}

func newModel(mode string, episodes int, updates <-chan train.Progress) model {
	return model{
		mode:      mode,
		episodes:  episodes,
		startTime: time.Now(),
		updates:   updates,
	}
}

type TickMsg time.Time

// doneMsg arrives once the runner closes the updates channel.
type doneMsg struct{}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Millisecond*250, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func waitForUpdate(updates <-chan train.Progress) tea.Cmd {
	return func() tea.Msg {
		p, ok := <-updates
		if !ok {
			return doneMsg{}
		}
		return p
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(waitForUpdate(m.updates), tickCmd())
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case TickMsg:
		return m, tickCmd()
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case train.Progress:
		m.seen++
		m.last = msg
		m.best = max(m.best, msg.Best)
		line := fmt.Sprintf("%s %d: score %d, steps %d, reward %.1f", label(m.mode), msg.Episode, msg.Score, msg.Steps, msg.Reward)
		m.recent = append([]string{line}, m.recent...)
		if len(m.recent) > 10 {
			m.recent = m.recent[:10]
		}
		return m, waitForUpdate(m.updates)
	}
	return m, nil
}

func (m model) View() string {
	duration := time.Since(m.startTime)
	perSec := 0.0
	if duration.Seconds() >= 1 {
		perSec = float64(m.seen) / duration.Seconds()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Mode:           %s\n", m.mode)
	fmt.Fprintf(&b, "%-16s%d / %d\n", label(m.mode)+":", m.last.Episode, m.episodes)
	fmt.Fprintf(&b, "Best score:     %d\n", m.best)
	fmt.Fprintf(&b, "Last score:     %d\n", m.last.Score)
	switch m.mode {
	case "neat":
		fmt.Fprintf(&b, "Best fitness:   %.1f\n", m.last.Reward)
		fmt.Fprintf(&b, "Mean fitness:   %.2f\n", m.last.MeanFitness)
	default:
		fmt.Fprintf(&b, "Epsilon:        %.3f\n", m.last.Epsilon)
		fmt.Fprintf(&b, "Loss:           %.4f\n", m.last.Loss)
		if m.mode == "tabular" {
			fmt.Fprintf(&b, "States:         %d\n", m.last.States)
		}
	}
	fmt.Fprintf(&b, "Duration:       %s\n", duration.Round(time.Second))
	fmt.Fprintf(&b, "%-16s%.2f\n\n", label(m.mode)+"s/sec:", perSec)

	b.WriteString("Recent:\n")
	for _, line := range m.recent {
		b.WriteString(line + "\n")
	}

	if m.done {
		b.WriteString("\nDone.\n")
	} else {
		b.WriteString("\nPress q to stop.\n")
	}
	return b.String()
}

func label(mode string) string {
	if mode == "neat" {
		return "Generation"
	}
	return "Episode"
}
