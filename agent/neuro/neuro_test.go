package neuro_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/plus3/flappy/agent"
	"github.com/plus3/flappy/agent/neuro"
	"github.com/plus3/flappy/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yaricom/goNEAT/v2/neat/genetics"
)

func TestGenomeText(t *testing.T) {
	text := neuro.GenomeText(7, []float64{0.5, -1, 2, 0})
	lines := strings.Split(strings.TrimSpace(text), "\n")

	assert.Equal(t, "genomestart 7", lines[0])
	assert.Equal(t, "genomeend 7", lines[len(lines)-1])
	assert.Contains(t, text, "gene 1 1 5 0.5 false 1 0 true")
	assert.Contains(t, text, "gene 1 3 5 2 false 3 0 true")
	assert.Contains(t, text, "node 5 0 0 2 SigmoidSteepenedActivation")
}

func TestPhenotypeFollowsBias(t *testing.T) {
	obs := []float64{0.4, 0.1, 0.2}

	up, err := neuro.NewPhenotype(1, []float64{3, 0, 0, 0}, 0.5)
	require.NoError(t, err)
	out, err := up.Output(obs)
	require.NoError(t, err)
	assert.Greater(t, out, 0.5)
	assert.Equal(t, agent.Flap, up.Act(obs))

	down, err := neuro.NewPhenotype(2, []float64{-3, 0, 0, 0}, 0.5)
	require.NoError(t, err)
	assert.Equal(t, agent.Idle, down.Act(obs))

	_, err = up.Output([]float64{1})
	assert.ErrorIs(t, err, agent.ErrShapeMismatch)

	_, err = neuro.NewPhenotype(3, []float64{1}, 0.5)
	assert.ErrorIs(t, err, agent.ErrShapeMismatch)
}

func TestPhenotypeUsesSensors(t *testing.T) {
	// flaps when the bird is low: positive weight on y
	p, err := neuro.NewPhenotype(1, []float64{-1, 4, 0, 0}, 0.5)
	require.NoError(t, err)
	assert.Equal(t, agent.Flap, p.Act([]float64{0.9, 0, 0}))
	assert.Equal(t, agent.Idle, p.Act([]float64{0.1, 0, 0}))
}

func testConfig() config.NEATConfig {
	cfg := config.Default().NEAT
	cfg.Population = 6
	cfg.Elites = 2
	return cfg
}

func TestEvolveKeepsElites(t *testing.T) {
	pop, err := neuro.New(testConfig(), 1)
	require.NoError(t, err)
	require.Equal(t, 6, pop.Size())

	fitness := []float64{1, 9, 3, 7, 0, -1}
	best := pop.Member(1).Weights
	second := pop.Member(3).Weights

	stats, err := pop.Evolve(fitness)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Generation)
	assert.Equal(t, 9.0, stats.Best)
	assert.InDelta(t, 19.0/6, stats.Mean, 1e-12)
	assert.Equal(t, 9.0, stats.ChampionFitness)

	assert.Equal(t, 1, pop.Generation())
	assert.Equal(t, 6, pop.Size())
	assert.Equal(t, best, pop.Member(0).Weights)
	assert.Equal(t, second, pop.Member(1).Weights)

	champion := pop.Champion()
	assert.Equal(t, 0, champion.Generation)
	assert.Equal(t, best, champion.Weights)

	// a worse generation does not replace the champion
	stats, err = pop.Evolve(make([]float64, 6))
	require.NoError(t, err)
	assert.Equal(t, 9.0, stats.ChampionFitness)
	assert.Equal(t, 0, pop.Champion().Generation)

	_, err = pop.Evolve([]float64{1})
	assert.ErrorIs(t, err, agent.ErrShapeMismatch)
}

func TestChampionRoundTrip(t *testing.T) {
	pop, err := neuro.New(testConfig(), 2)
	require.NoError(t, err)
	_, err = pop.Evolve([]float64{0, 0, 5, 0, 0, 0})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "champion.json")
	require.NoError(t, pop.SaveChampion(path))

	champion, err := neuro.LoadChampion(path)
	require.NoError(t, err)
	assert.Equal(t, pop.Champion(), champion)

	p, err := neuro.NewPhenotype(1, champion.Weights, 0.5)
	require.NoError(t, err)
	var genome strings.Builder
	require.NoError(t, p.WriteGenome(&genome, 1))
	assert.True(t, strings.HasPrefix(genome.String(), "genomestart 1"))
}

func TestChampionGenomeReadsBack(t *testing.T) {
	pop, err := neuro.New(testConfig(), 4)
	require.NoError(t, err)
	_, err = pop.Evolve([]float64{1, 0, 0, 3, 0, 0})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "champion.genome")
	require.NoError(t, pop.SaveChampionGenome(path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	genome, err := genetics.ReadGenome(f, 1)
	require.NoError(t, err)
	net, err := genome.Genesis(1)
	require.NoError(t, err)

	obs := []float64{0.2, -0.4, 0.9}
	require.NoError(t, net.LoadSensors(obs))
	_, err = net.Activate()
	require.NoError(t, err)

	champion, err := neuro.NewPhenotype(1, pop.Champion().Weights, 0.5)
	require.NoError(t, err)
	want, err := champion.Output(obs)
	require.NoError(t, err)
	assert.InDelta(t, want, net.ReadOutputs()[0], 1e-9)
}

func TestChampionGenomeNeedsAGeneration(t *testing.T) {
	pop, err := neuro.New(testConfig(), 4)
	require.NoError(t, err)
	err = pop.SaveChampionGenome(filepath.Join(t.TempDir(), "champion.genome"))
	assert.ErrorIs(t, err, agent.ErrShapeMismatch)
}
