// Package neuro evolves a population of fixed-topology goNEAT networks, one
// per bird, by elitism, tournament selection, crossover and Gaussian mutation.
package neuro

import (
	"cmp"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"
	"slices"

	"github.com/plus3/flappy/agent"
	"github.com/plus3/flappy/config"
)

// Champion is the best genome seen so far.
type Champion struct {
	Generation int       `json:"generation"`
	Fitness    float64   `json:"fitness"`
	Weights    []float64 `json:"weights"`
}

// GenerationStats summarizes one evaluated generation.
type GenerationStats struct {
	Generation      int
	Best            float64
	Mean            float64
	ChampionFitness float64
}

type Population struct {
	cfg        config.NEATConfig
	rng        *rand.Rand
	members    []*Phenotype
	generation int
	champion   Champion
	nextID     int
}

// New seeds a population with standard-normal weights.
func New(cfg config.NEATConfig, seed uint64) (*Population, error) {
	p := &Population{
		cfg:      cfg,
		rng:      rand.New(rand.NewPCG(seed, seed+1)),
		champion: Champion{Generation: -1},
	}

	for i := 0; i < cfg.Population; i++ {
		weights := make([]float64, NumWeights)
		for j := range weights {
			weights[j] = p.rng.NormFloat64()
		}
		member, err := p.build(weights)
		if err != nil {
			return nil, err
		}
		p.members = append(p.members, member)
	}
	return p, nil
}

func (p *Population) build(weights []float64) (*Phenotype, error) {
	p.nextID++
	return NewPhenotype(p.nextID, weights, p.cfg.FlapThreshold)
}

func (p *Population) Size() int               { return len(p.members) }
func (p *Population) Generation() int         { return p.generation }
func (p *Population) Champion() Champion      { return p.champion }
func (p *Population) Member(i int) *Phenotype { return p.members[i] }

// Decide returns member i's action for obs.
func (p *Population) Decide(i int, obs []float64) agent.Action {
	return p.members[i].Act(obs)
}

// Evolve scores the current generation and replaces it with the next one.
func (p *Population) Evolve(fitness []float64) (GenerationStats, error) {
	if len(fitness) != len(p.members) {
		return GenerationStats{}, fmt.Errorf("%w: %d fitness values for %d genomes", agent.ErrShapeMismatch, len(fitness), len(p.members))
	}

	order := make([]int, len(p.members))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int { return cmp.Compare(fitness[b], fitness[a]) })

	stats := GenerationStats{Generation: p.generation, Best: fitness[order[0]]}
	for _, f := range fitness {
		stats.Mean += f
	}
	stats.Mean /= float64(len(fitness))

	if p.champion.Generation < 0 || stats.Best > p.champion.Fitness {
		p.champion = Champion{
			Generation: p.generation,
			Fitness:    stats.Best,
			Weights:    slices.Clone(p.members[order[0]].Weights),
		}
	}
	stats.ChampionFitness = p.champion.Fitness

	next := make([]*Phenotype, 0, len(p.members))
	elites := min(max(p.cfg.Elites, 0), len(order))
	for _, i := range order[:elites] {
		next = append(next, p.members[i])
	}
	for len(next) < len(p.members) {
		a := p.tournament(fitness)
		b := p.tournament(fitness)
		child, err := p.build(p.breed(a.Weights, b.Weights))
		if err != nil {
			return stats, err
		}
		next = append(next, child)
	}

	p.members = next
	p.generation++
	return stats, nil
}

func (p *Population) tournament(fitness []float64) *Phenotype {
	best := p.rng.IntN(len(p.members))
	for k := 1; k < p.cfg.TournamentSize; k++ {
		if i := p.rng.IntN(len(p.members)); fitness[i] > fitness[best] {
			best = i
		}
	}
	return p.members[best]
}

// breed averages the parents and perturbs each weight with probability MutationRate.
func (p *Population) breed(a, b []float64) []float64 {
	child := make([]float64, len(a))
	for i := range child {
		child[i] = (a[i] + b[i]) / 2
		if p.rng.Float64() < p.cfg.MutationRate {
			child[i] += p.rng.NormFloat64() * p.cfg.MutationPower
		}
	}
	return child
}

// SaveChampion writes the champion as JSON.
func (p *Population) SaveChampion(path string) error {
	data, err := json.MarshalIndent(p.champion, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode champion: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write champion: %w", err)
	}
	return nil
}

// SaveChampionGenome writes the champion's genome in goNEAT plain text.
func (p *Population) SaveChampionGenome(path string) error {
	champion, err := NewPhenotype(1, p.champion.Weights, p.cfg.FlapThreshold)
	if err != nil {
		return fmt.Errorf("failed to build champion: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create genome file: %w", err)
	}
	if err := champion.WriteGenome(f, 1); err != nil {
		f.Close()
		return fmt.Errorf("failed to write genome: %w", err)
	}
	return f.Close()
}

// LoadChampion reads a file written by SaveChampion.
func LoadChampion(path string) (Champion, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Champion{}, fmt.Errorf("failed to read champion: %w", err)
	}
	var champion Champion
	if err := json.Unmarshal(data, &champion); err != nil {
		return Champion{}, fmt.Errorf("failed to decode champion %s: %w", path, err)
	}
	if len(champion.Weights) != NumWeights {
		return Champion{}, fmt.Errorf("%w: champion has %d weights", agent.ErrShapeMismatch, len(champion.Weights))
	}
	return champion, nil
}
