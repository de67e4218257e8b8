package evolve

import (
	"math/big"

	"github.com/cftellezc/ecc-evolve/pkg/weierstrass"
)

// Gene order used by the crossover operators. The genome itself is the tagged
// Parameters record; these constants only fix the slicing order the operators
// cut along.
const (
	geneA = iota
	geneB
	genePrime
	geneGenerator
	geneOrder
	geneCofactor
	geneCount
)

// Candidate is one individual of the genetic population, or one particle
// position of the swarm: a curve-parameter tuple annotated with its fitness.
// A Candidate is mutated only by its owning search loop.
type Candidate struct {
	Params    weierstrass.Parameters
	Fitness   float64
	Evaluated bool
}

// Clone returns a deep copy.
func (c *Candidate) Clone() *Candidate {
	return &Candidate{
		Params:    c.Params.Clone(),
		Fitness:   c.Fitness,
		Evaluated: c.Evaluated,
	}
}

// Invalidate drops a stale fitness after the genome changed.
func (c *Candidate) Invalidate() {
	c.Fitness = 0
	c.Evaluated = false
}

// swapGene exchanges a single gene between two candidates.
func swapGene(x, y *Candidate, gene int) {
	switch gene {
	case geneA:
		x.Params.A, y.Params.A = y.Params.A, x.Params.A
	case geneB:
		x.Params.B, y.Params.B = y.Params.B, x.Params.B
	case genePrime:
		x.Params.P, y.Params.P = y.Params.P, x.Params.P
	case geneGenerator:
		x.Params.G, y.Params.G = y.Params.G, x.Params.G
	case geneOrder:
		x.Params.N, y.Params.N = y.Params.N, x.Params.N
	case geneCofactor:
		x.Params.H, y.Params.H = y.Params.H, x.Params.H
	}
}

// swapGeneRange exchanges the genes in [lo, hi) between two candidates.
func swapGeneRange(x, y *Candidate, lo, hi int) {
	for gene := lo; gene < hi; gene++ {
		swapGene(x, y, gene)
	}
}

// rotateGeneRange rotates the genes in [lo, hi) among three candidates:
// x takes y's slice, y takes z's, z takes x's.
func rotateGeneRange(x, y, z *Candidate, lo, hi int) {
	swapGeneRange(x, y, lo, hi)
	swapGeneRange(y, z, lo, hi)
}

// bigFloat converts a big integer to the nearest float64. Curve parameters
// stay far below the float64 range, so precision, not magnitude, is what is
// lost here, matching how the velocity arithmetic is defined.
func bigFloat(x *big.Int) float64 {
	f, _ := new(big.Float).SetInt(x).Float64()
	return f
}
