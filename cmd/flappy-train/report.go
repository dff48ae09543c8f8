package main

import (
	"fmt"
	"io"
	"runtime"
	"text/template"
	"time"

	"github.com/plus3/flappy/train"
)

type Report struct {
	// Configuration
	Mode     string
	Preset   string
	Episodes int
	MaxSteps int
	Seed     uint64
	Sprites  string

	// Results
	Summary        train.Summary
	LogPath        string
	LogRows        int
	WeightsPath    string
	GCPauseMetrics bool
	MemStatsStart  runtime.MemStats
	MemStatsEnd    runtime.MemStats
}

// EpisodesPerSecond is the training throughput.
func (r *Report) EpisodesPerSecond() float64 {
	if r.Summary.Duration <= 0 {
		return 0
	}
	return float64(r.Summary.Episodes) / r.Summary.Duration.Seconds()
}

// StepsPerSecond is the simulation throughput.
func (r *Report) StepsPerSecond() float64 {
	if r.Summary.Duration <= 0 {
		return 0
	}
	return float64(r.Summary.TotalSteps) / r.Summary.Duration.Seconds()
}

func (r *Report) Generate(w io.Writer) error {
	const reportTemplate = `
# Flappy Training Report

## Configuration
- **Mode:** {{.Mode}}
- **Preset:** {{.Preset}}
- **Episodes Requested:** {{.Episodes}}
- **Max Steps per Episode:** {{.MaxSteps}}
- **Seed:** {{.Seed}}
- **Sprites:** {{.Sprites}}

## Results
- **Episodes Run:** {{.Summary.Episodes}}{{if .Summary.Interrupted}} (interrupted){{end}}
- **Total Steps:** {{.Summary.TotalSteps}}
- **Best Score:** {{.Summary.Best}}
- **Best {{if eq .Mode "neat"}}Fitness{{else}}Reward{{end}}:** {{printf "%.2f" .Summary.BestReward}}
- **Last Score:** {{.Summary.Last.Score}}
{{- if ne .Mode "neat"}}
- **Final Epsilon:** {{printf "%.4f" .Summary.Last.Epsilon}}
{{- end}}
- **Duration:** {{.Summary.Duration}}
- **Throughput:** {{printf "%.2f" .EpisodesPerSecond}} episodes/s, {{printf "%.0f" .StepsPerSecond}} steps/s

## Output
{{- if .LogPath}}
- Episode log: {{.LogPath}} ({{.LogRows}} rows)
{{- end}}
{{- if .WeightsPath}}
- Learner: {{.WeightsPath}}
{{- end}}

## Memory Usage
- Heap Alloc:     {{.MemStatsStart.HeapAlloc | mb}} MB (start) -> {{.MemStatsEnd.HeapAlloc | mb}} MB (end)
- Total Alloc:    {{bsub .MemStatsEnd.TotalAlloc .MemStatsStart.TotalAlloc | mb}} MB
- Num GC:         {{usub .MemStatsEnd.NumGC .MemStatsStart.NumGC}}
{{if .GCPauseMetrics}}
## GC Pause Durations
- **Total GC Pause:** {{.MemStatsEnd.PauseTotalNs | ns}}
{{end}}
`

	fm := template.FuncMap{
		"mb": func(v any) string {
			switch val := v.(type) {
			case uint64:
				return fmt.Sprintf("%.2f", float64(val)/1024/1024)
			case int64:
				return fmt.Sprintf("%.2f", float64(val)/1024/1024)
			default:
				return "N/A"
			}
		},
		"bsub": func(a, b uint64) int64 {
			return int64(a) - int64(b)
		},
		"usub": func(a, b uint32) uint32 {
			return a - b
		},
		"ns": func(ns uint64) string {
			return time.Duration(ns).String()
		},
	}

	tmpl, err := template.New("report").Funcs(fm).Parse(reportTemplate)
	if err != nil {
		return err
	}

	return tmpl.Execute(w, r)
}
