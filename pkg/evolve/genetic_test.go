package evolve

import (
	"context"
	"math/big"
	mrand "math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cftellezc/ecc-evolve/pkg/pollard"
	"github.com/cftellezc/ecc-evolve/pkg/weierstrass"
)

func testGenerator(seed int64) (*weierstrass.Generator, *mrand.Rand) {
	rng := mrand.New(mrand.NewSource(seed))
	gen := weierstrass.NewGenerator(weierstrass.GeneratorConfig{
		PrimeBits: 12,
		Timeout:   5 * time.Second,
	}, rng)
	return gen, rng
}

func testEvaluator() *Evaluator {
	cfg := DefaultFitnessConfig()
	cfg.Oracle = pollard.OracleConfig{DistinguishedBits: 20, MaxIterations: 20}
	return NewEvaluator(cfg)
}

func testCandidate(a, b, p, gx, gy, n, h int64) *Candidate {
	return &Candidate{
		Params: weierstrass.Parameters{
			A: big.NewInt(a),
			B: big.NewInt(b),
			P: big.NewInt(p),
			G: &weierstrass.Point{X: big.NewInt(gx), Y: big.NewInt(gy)},
			N: big.NewInt(n),
			H: big.NewInt(h),
		},
	}
}

func TestGeneticSearchRun(t *testing.T) {
	gen, rng := testGenerator(5)
	cfg := DefaultGeneticConfig()
	cfg.PopulationSize = 6
	cfg.Generations = 2

	search := NewGeneticSearch(cfg, gen, testEvaluator(), rng)
	best, err := search.Run(context.Background())
	require.NoError(t, err)
	require.NotNil(t, best)

	// Freshly generated curves are always valid and elitism preserves the
	// best of them, so the winner scores above zero.
	assert.True(t, best.Evaluated)
	assert.Greater(t, best.Fitness, 0.0)
	assert.True(t, best.Params.Validate())

	stats := search.Stats()
	require.Len(t, stats, 2)
	for _, st := range stats {
		assert.GreaterOrEqual(t, st.Max, st.Min)
		assert.GreaterOrEqual(t, st.Max, st.Mean)
		assert.GreaterOrEqual(t, st.Mean, st.Min)
	}
}

func sameParams(a, b weierstrass.Parameters) bool {
	return a.A.Cmp(b.A) == 0 &&
		a.B.Cmp(b.B) == 0 &&
		a.P.Cmp(b.P) == 0 &&
		a.G.Equal(b.G) &&
		a.N.Cmp(b.N) == 0 &&
		a.H.Cmp(b.H) == 0
}

func TestNextGenerationKeepsPopulationSize(t *testing.T) {
	gen, rng := testGenerator(31)
	cfg := DefaultGeneticConfig()
	cfg.PopulationSize = 10

	search := NewGeneticSearch(cfg, gen, testEvaluator(), rng)

	pop := make([]*Candidate, cfg.PopulationSize)
	for i := range pop {
		pop[i] = &Candidate{Params: gen.Generate()}
		search.eval.Evaluate(pop[i])
	}

	for g := 0; g < 4; g++ {
		pop = search.nextGeneration(pop, cfg.MutationProb)
		require.Len(t, pop, cfg.PopulationSize, "generation %d", g+1)
	}
}

func TestNextGenerationCarriesElitesUnchanged(t *testing.T) {
	gen, rng := testGenerator(37)
	cfg := DefaultGeneticConfig()
	cfg.PopulationSize = 10
	cfg.ElitismRate = 0.2
	// Force heavy crossover and mutation; the elites must survive anyway.
	cfg.CrossoverProb = 1.0
	cfg.TrioCrossoverProb = 1.0
	cfg.GeneProb = 1.0

	search := NewGeneticSearch(cfg, gen, testEvaluator(), rng)

	pop := make([]*Candidate, cfg.PopulationSize)
	for i := range pop {
		pop[i] = &Candidate{Params: gen.Generate()}
		search.eval.Evaluate(pop[i])
	}

	elites := selectBest(pop, 2)
	want := []*Candidate{elites[0].Clone(), elites[1].Clone()}

	next := search.nextGeneration(pop, 1.0)

	for _, w := range want {
		carried := false
		for _, c := range next {
			if sameParams(w.Params, c.Params) && c.Fitness == w.Fitness && c.Evaluated {
				carried = true
				break
			}
		}
		assert.True(t, carried, "elite with fitness %f not carried unchanged", w.Fitness)
	}
}

func TestGeneticSearchRejectsTinyPopulation(t *testing.T) {
	gen, rng := testGenerator(1)
	cfg := DefaultGeneticConfig()
	cfg.PopulationSize = 2

	_, err := NewGeneticSearch(cfg, gen, testEvaluator(), rng).Run(context.Background())
	assert.Error(t, err)
}

func TestGeneticSearchStopsOnCancelledContext(t *testing.T) {
	gen, rng := testGenerator(9)
	cfg := DefaultGeneticConfig()
	cfg.PopulationSize = 4
	cfg.Generations = 100

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	best, err := NewGeneticSearch(cfg, gen, testEvaluator(), rng).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotNil(t, best, "cancelled run must still return the best so far")
}

func TestSwapGeneRange(t *testing.T) {
	x := testCandidate(1, 2, 3, 4, 5, 6, 7)
	y := testCandidate(10, 20, 30, 40, 50, 60, 70)

	// [1, 3) covers the coefficient b and the prime.
	swapGeneRange(x, y, geneB, geneGenerator)

	assert.EqualValues(t, 1, x.Params.A.Int64())
	assert.EqualValues(t, 20, x.Params.B.Int64())
	assert.EqualValues(t, 30, x.Params.P.Int64())
	assert.EqualValues(t, 4, x.Params.G.X.Int64())
	assert.EqualValues(t, 6, x.Params.N.Int64())

	assert.EqualValues(t, 2, y.Params.B.Int64())
	assert.EqualValues(t, 3, y.Params.P.Int64())
	assert.EqualValues(t, 40, y.Params.G.X.Int64())
}

func TestRotateGeneRange(t *testing.T) {
	x := testCandidate(1, 1, 1, 1, 1, 1, 1)
	y := testCandidate(2, 2, 2, 2, 2, 2, 2)
	z := testCandidate(3, 3, 3, 3, 3, 3, 3)

	rotateGeneRange(x, y, z, 0, geneCount)

	// x takes y's genes, y takes z's, z takes x's.
	assert.EqualValues(t, 2, x.Params.A.Int64())
	assert.EqualValues(t, 3, y.Params.A.Int64())
	assert.EqualValues(t, 1, z.Params.A.Int64())
	assert.EqualValues(t, 2, x.Params.H.Int64())
	assert.EqualValues(t, 3, y.Params.H.Int64())
	assert.EqualValues(t, 1, z.Params.H.Int64())
}

func TestCandidateCloneIsIndependent(t *testing.T) {
	original := testCandidate(1, 2, 23, 0, 1, 22, 1)
	original.Fitness = 3.5
	original.Evaluated = true

	clone := original.Clone()
	clone.Params.P.SetInt64(99)
	clone.Params.G.X.SetInt64(42)
	clone.Invalidate()

	assert.EqualValues(t, 23, original.Params.P.Int64())
	assert.EqualValues(t, 0, original.Params.G.X.Int64())
	assert.Equal(t, 3.5, original.Fitness)
	assert.True(t, original.Evaluated)
}

func TestSelectBestOrdersByFitness(t *testing.T) {
	pop := []*Candidate{
		{Fitness: 1.0},
		{Fitness: 5.0},
		{Fitness: 3.0},
	}

	top := selectBest(pop, 2)
	require.Len(t, top, 2)
	assert.Equal(t, 5.0, top[0].Fitness)
	assert.Equal(t, 3.0, top[1].Fitness)

	assert.Equal(t, 5.0, best(pop).Fitness)
}

func TestMutateRegeneratesStructuralGenes(t *testing.T) {
	gen, rng := testGenerator(11)
	cfg := DefaultGeneticConfig()
	cfg.GeneProb = 1.0

	search := NewGeneticSearch(cfg, gen, testEvaluator(), rng)

	c := &Candidate{Params: gen.Generate()}
	search.mutate(c, 1.0)

	// Every gene mutated: the prime is drawn fresh and the base point is
	// re-derived from the perturbed coefficients.
	assert.True(t, c.Params.P.ProbablyPrime(20))
	assert.True(t, c.Params.G.IsOnCurve(c.Params.A, c.Params.B, c.Params.P))
}
