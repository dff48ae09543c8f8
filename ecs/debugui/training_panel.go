package debugui

import (
	"fmt"
	"time"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/flappy/ecs"
)

// PanelStats is the learner state shown alongside the world.
type PanelStats struct {
	Mode    string
	Episode int
	Score   int
	Best    int
	Alive   int
	Epsilon float64
	Loss    float64
}

// TrainingPanel is an ImGui window with episode scores, frame times, the
// world's per-system timings and its archetype breakdown.
type TrainingPanel struct {
	frames      *History
	scores      *History
	lastEpisode int
	lastScore   int
}

func NewTrainingPanel(historyFrames, historyEpisodes int) *TrainingPanel {
	return &TrainingPanel{
		frames: NewHistory(historyFrames),
		scores: NewHistory(historyEpisodes),
	}
}

// Record tracks the score of the running episode and pushes it to the
// score history when a new episode begins.
func (p *TrainingPanel) Record(stats PanelStats) {
	if p.lastEpisode != 0 && stats.Episode != p.lastEpisode {
		p.scores.Push(float32(p.lastScore))
	}
	p.lastEpisode = stats.Episode
	p.lastScore = stats.Score
}

func (p *TrainingPanel) Scores() *History { return p.scores }

func (p *TrainingPanel) Render(stats PanelStats, storage *ecs.Storage, scheduler *ecs.Scheduler, deltaTime float32) {
	p.Record(stats)
	p.frames.Push(deltaTime * 1000.0)

	if !imgui.BeginV("Training", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	imgui.Text(fmt.Sprintf("Mode: %s", stats.Mode))
	imgui.Text(fmt.Sprintf("Episode: %d", stats.Episode))
	imgui.Text(fmt.Sprintf("Score: %d  Best: %d  Alive: %d", stats.Score, stats.Best, stats.Alive))
	if stats.Mode == "dqn" || stats.Mode == "tabular" {
		imgui.Text(fmt.Sprintf("Epsilon: %.3f  Loss: %.4f", stats.Epsilon, stats.Loss))
	}

	if scores := p.scores.Ordered(); len(scores) > 0 {
		imgui.Separator()
		imgui.Text(fmt.Sprintf("Episode scores (mean %.2f)", p.scores.Mean()))
		imgui.PlotLinesFloatPtr("##scores", &scores[0], int32(len(scores)))
	}

	avgFrameTime := p.frames.Mean()
	imgui.Separator()
	imgui.Text(fmt.Sprintf("Avg Frame Time: %.2f ms (%.0f FPS)", avgFrameTime, 1000.0/avgFrameTime))
	if frames := p.frames.Ordered(); len(frames) > 0 {
		imgui.PlotLinesFloatPtr("##frametime", &frames[0], int32(len(frames)))
	}

	if imgui.TreeNodeStr("Systems") {
		const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg
		if imgui.BeginTableV("SystemStatsTable", 4, tableFlags, imgui.NewVec2(0, 0), 0) {
			imgui.TableSetupColumn("System")
			imgui.TableSetupColumn("Runs")
			imgui.TableSetupColumn("Avg")
			imgui.TableSetupColumn("Max")
			imgui.TableHeadersRow()

			for _, system := range scheduler.GetStats().Systems {
				imgui.TableNextRow()
				imgui.TableNextColumn()
				imgui.Text(system.Name)
				imgui.TableNextColumn()
				imgui.Text(fmt.Sprintf("%d", system.ExecutionCount))
				imgui.TableNextColumn()
				imgui.Text(system.AvgDuration.Round(time.Microsecond / 10).String())
				imgui.TableNextColumn()
				imgui.Text(system.MaxDuration.Round(time.Microsecond / 10).String())
			}
			imgui.EndTable()
		}
		imgui.TreePop()
	}

	if imgui.TreeNodeStr("Archetypes") {
		world := storage.CollectStats()
		imgui.Text(fmt.Sprintf("Entities: %d  Singletons: %d", world.TotalEntityCount, world.SingletonCount))
		for _, arch := range world.ArchetypeBreakdown {
			imgui.BulletText(fmt.Sprintf("0x%X %v: %d", arch.ID, arch.ComponentTypes, arch.EntityCount))
		}
		imgui.TreePop()
	}

	imgui.End()
}

type FrameTimer struct {
	lastFrameTime time.Time
}

func NewFrameTimer() *FrameTimer {
	return &FrameTimer{
		lastFrameTime: time.Now(),
	}
}

func (ft *FrameTimer) GetDeltaTime() float32 {
	now := time.Now()
	delta := float32(now.Sub(ft.lastFrameTime).Seconds())
	ft.lastFrameTime = now
	return delta
}
