package neuro

import (
	"fmt"
	"io"
	"strings"

	"github.com/plus3/flappy/agent"
	"github.com/yaricom/goNEAT/v2/neat/genetics"
	"github.com/yaricom/goNEAT/v2/neat/network"
)

// Inputs is the number of sensors; a bias sensor comes on top.
const Inputs = 3

// NumWeights is one link from the bias and from every sensor to the output.
const NumWeights = Inputs + 1

const outputNode = Inputs + 2

// GenomeText renders a fixed-topology goNEAT genome in the plain text
// encoding. Node 1 is the bias, nodes 2..4 the sensors, node 5 the output.
// weights[0] is the bias link.
func GenomeText(id int, weights []float64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "genomestart %d\n", id)
	b.WriteString("trait 1 0.1 0 0 0 0 0 0 0\n")
	b.WriteString("node 1 0 1 3 NullActivation\n")
	for n := 2; n <= Inputs+1; n++ {
		fmt.Fprintf(&b, "node %d 0 1 1 NullActivation\n", n)
	}
	fmt.Fprintf(&b, "node %d 0 0 2 SigmoidSteepenedActivation\n", outputNode)
	for i, w := range weights {
		fmt.Fprintf(&b, "gene 1 %d %d %g false %d 0 true\n", i+1, outputNode, w, i+1)
	}
	fmt.Fprintf(&b, "genomeend %d\n", id)
	return b.String()
}

// Phenotype is a network built from one weight vector.
type Phenotype struct {
	Weights   []float64
	Threshold float64
	net       *network.Network
}

// NewPhenotype parses the genome for weights and builds its network.
func NewPhenotype(id int, weights []float64, threshold float64) (*Phenotype, error) {
	if len(weights) != NumWeights {
		return nil, fmt.Errorf("%w: %d weights, want %d", agent.ErrShapeMismatch, len(weights), NumWeights)
	}
	genome, err := genetics.ReadGenome(strings.NewReader(GenomeText(id, weights)), id)
	if err != nil {
		return nil, fmt.Errorf("failed to read genome %d: %w", id, err)
	}
	net, err := genome.Genesis(id)
	if err != nil {
		return nil, fmt.Errorf("failed to build network %d: %w", id, err)
	}
	return &Phenotype{Weights: weights, Threshold: threshold, net: net}, nil
}

// Output activates the network on obs and returns its single output.
func (p *Phenotype) Output(obs []float64) (float64, error) {
	if len(obs) != Inputs {
		return 0, fmt.Errorf("%w: %d inputs, want %d", agent.ErrShapeMismatch, len(obs), Inputs)
	}
	if err := p.net.LoadSensors(obs); err != nil {
		return 0, err
	}
	if _, err := p.net.Activate(); err != nil {
		return 0, err
	}
	return p.net.ReadOutputs()[0], nil
}

// Act flaps when the output exceeds the threshold. Activation errors idle.
func (p *Phenotype) Act(obs []float64) agent.Action {
	out, err := p.Output(obs)
	if err != nil || out <= p.Threshold {
		return agent.Idle
	}
	return agent.Flap
}

// WriteGenome writes the phenotype's genome in goNEAT plain encoding.
func (p *Phenotype) WriteGenome(w io.Writer, id int) error {
	_, err := io.WriteString(w, GenomeText(id, p.Weights))
	return err
}
