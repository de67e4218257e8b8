package evolve

import (
	"context"
	"math"
	"math/big"
	mrand "math/rand"
	"sort"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/cftellezc/ecc-evolve/pkg/weierstrass"
)

// GeneticConfig holds the genetic-algorithm hyperparameters.
type GeneticConfig struct {
	PopulationSize int
	Generations    int

	// CrossoverProb is the two-point crossover probability per consecutive
	// pair; TrioCrossoverProb the rotating-slice crossover probability per
	// consecutive trio.
	CrossoverProb     float64
	TrioCrossoverProb float64

	// MutationProb is the initial per-individual mutation probability. The
	// rate is rescheduled during the run: EarlyMutationProb for the first
	// half of the generations, LateMutationProb after that.
	MutationProb      float64
	EarlyMutationProb float64
	LateMutationProb  float64

	// GeneProb is the independent per-gene mutation probability.
	GeneProb float64

	ElitismRate    float64
	TournamentSize int
}

// DefaultGeneticConfig returns the reference hyperparameters.
func DefaultGeneticConfig() GeneticConfig {
	return GeneticConfig{
		PopulationSize:    500,
		Generations:       40,
		CrossoverProb:     0.5,
		TrioCrossoverProb: 0.1,
		MutationProb:      0.2,
		EarlyMutationProb: 0.4,
		LateMutationProb:  0.1,
		GeneProb:          0.05,
		ElitismRate:       0.1,
		TournamentSize:    3,
	}
}

// GenerationStats summarizes the fitness distribution of one generation.
type GenerationStats struct {
	Generation int
	Min        float64
	Max        float64
	Mean       float64
	Std        float64
}

// GeneticSearch evolves a fixed-size population of curve candidates through
// tournament selection, two-point and trio crossover, and a scheduled
// mutation operator. The loop is single-threaded and deterministic for a
// fixed random source.
type GeneticSearch struct {
	cfg   GeneticConfig
	gen   *weierstrass.Generator
	eval  *Evaluator
	rng   *mrand.Rand
	log   *zap.SugaredLogger
	stats []GenerationStats
}

// NewGeneticSearch creates a GeneticSearch. A nil rng gets a time-based seed.
func NewGeneticSearch(cfg GeneticConfig, gen *weierstrass.Generator, eval *Evaluator, rng *mrand.Rand) *GeneticSearch {
	if rng == nil {
		rng = mrand.New(mrand.NewSource(time.Now().UnixNano()))
	}
	return &GeneticSearch{cfg: cfg, gen: gen, eval: eval, rng: rng, log: zap.NewNop().Sugar()}
}

// WithLogger sets the logger used for generation progress.
func (s *GeneticSearch) WithLogger(log *zap.SugaredLogger) *GeneticSearch {
	s.log = log
	return s
}

// Stats returns the per-generation fitness summaries of the last run.
func (s *GeneticSearch) Stats() []GenerationStats {
	return s.stats
}

// Run executes the search and returns the best candidate found. Cancelling
// ctx stops the run at the next generation boundary and returns the best
// candidate so far along with the context's error.
func (s *GeneticSearch) Run(ctx context.Context) (*Candidate, error) {
	if s.cfg.PopulationSize < 3 {
		return nil, errors.Errorf("evolve: population size %d is below the trio-crossover minimum", s.cfg.PopulationSize)
	}
	s.stats = s.stats[:0]

	pop := make([]*Candidate, s.cfg.PopulationSize)
	for i := range pop {
		pop[i] = &Candidate{Params: s.gen.Generate()}
		s.eval.Evaluate(pop[i])
	}

	mutationRate := s.cfg.MutationProb

	for g := 0; g < s.cfg.Generations; g++ {
		if err := ctx.Err(); err != nil {
			return best(pop).Clone(), err
		}
		generation := g + 1
		s.log.Infow("generation started", "generation", generation, "mutationRate", mutationRate)

		pop = s.nextGeneration(pop, mutationRate)

		st := summarize(generation, pop)
		s.stats = append(s.stats, st)
		s.log.Infow("generation finished",
			"generation", generation,
			"min", st.Min, "max", st.Max, "mean", st.Mean, "std", st.Std,
		)

		// Explore widely in the first half of the run, refine in the second.
		if float64(generation) < float64(s.cfg.Generations)/2 {
			mutationRate = s.cfg.EarlyMutationProb
		} else {
			mutationRate = s.cfg.LateMutationProb
		}
	}

	winner := best(pop).Clone()
	s.log.Infow("search finished", "fitness", winner.Fitness, "p", winner.Params.P)
	return winner, nil
}

// nextGeneration produces one full generation: elitism clones, tournament
// selection, both crossover operators, mutation and re-evaluation. The
// returned population has exactly the same size as the input.
func (s *GeneticSearch) nextGeneration(pop []*Candidate, mutationRate float64) []*Candidate {
	eliteCount := int(math.Round(float64(len(pop)) * s.cfg.ElitismRate))

	elites := selectBest(pop, eliteCount)
	for i, e := range elites {
		elites[i] = e.Clone()
	}

	offspring := make([]*Candidate, 0, len(pop)-eliteCount)
	for len(offspring) < len(pop)-eliteCount {
		offspring = append(offspring, s.tournament(pop).Clone())
	}

	// Trio crossover: rotate a shared random slice among three
	// consecutive offspring.
	for i := 0; i+2 < len(offspring); i += 3 {
		if s.rng.Float64() >= s.cfg.TrioCrossoverProb {
			continue
		}
		lo := s.rng.Intn(geneCount)
		hi := lo + s.rng.Intn(geneCount-lo+1)
		rotateGeneRange(offspring[i], offspring[i+1], offspring[i+2], lo, hi)
		offspring[i].Invalidate()
		offspring[i+1].Invalidate()
		offspring[i+2].Invalidate()
	}

	// Two-point crossover on consecutive pairs.
	for i := 0; i+1 < len(offspring); i += 2 {
		if s.rng.Float64() >= s.cfg.CrossoverProb {
			continue
		}
		s.twoPointCrossover(offspring[i], offspring[i+1])
		offspring[i].Invalidate()
		offspring[i+1].Invalidate()
	}

	for _, child := range offspring {
		s.mutate(child, mutationRate)
		child.Invalidate()
	}

	for _, child := range offspring {
		s.eval.Evaluate(child)
	}

	return append(offspring, elites...)
}

// tournament returns the fittest of TournamentSize random picks.
func (s *GeneticSearch) tournament(pop []*Candidate) *Candidate {
	winner := pop[s.rng.Intn(len(pop))]
	for i := 1; i < s.cfg.TournamentSize; i++ {
		c := pop[s.rng.Intn(len(pop))]
		if c.Fitness > winner.Fitness {
			winner = c
		}
	}
	return winner
}

// twoPointCrossover swaps the genes between two random cut points.
func (s *GeneticSearch) twoPointCrossover(x, y *Candidate) {
	p1 := 1 + s.rng.Intn(geneCount)
	p2 := 1 + s.rng.Intn(geneCount-1)
	if p2 >= p1 {
		p2++
	} else {
		p1, p2 = p2, p1
	}
	swapGeneRange(x, y, p1, p2)
}

// mutate applies the per-gene mutation operator. The prime gene is replaced
// wholesale with a fresh prime, the generator gene is re-derived from the
// individual's current a, b, p, and the remaining genes receive an additive
// Gaussian perturbation whose spread follows the mutation rate.
func (s *GeneticSearch) mutate(c *Candidate, rate float64) {
	sigma := 2.0
	if rate > 0.5 {
		sigma = 10.0
	}
	if s.rng.Float64() >= rate {
		return
	}
	for gene := 0; gene < geneCount; gene++ {
		if s.rng.Float64() >= s.cfg.GeneProb {
			continue
		}
		switch gene {
		case genePrime:
			c.Params.P = s.gen.Prime()
		case geneGenerator:
			pt, err := s.gen.FindGenerator(c.Params.A, c.Params.B, c.Params.P)
			if err != nil {
				// No point on the mutated curve; leave the gene alone and
				// let validation score the individual.
				s.log.Debugw("generator re-derivation failed", "err", err)
				continue
			}
			c.Params.G = pt
		case geneA:
			c.Params.A = perturb(c.Params.A, s.rng.NormFloat64()*sigma)
		case geneB:
			c.Params.B = perturb(c.Params.B, s.rng.NormFloat64()*sigma)
		case geneOrder:
			c.Params.N = perturb(c.Params.N, s.rng.NormFloat64()*sigma)
		case geneCofactor:
			c.Params.H = perturb(c.Params.H, s.rng.NormFloat64()*sigma)
		}
	}
}

func perturb(x *big.Int, delta float64) *big.Int {
	return new(big.Int).Add(x, big.NewInt(int64(math.Round(delta))))
}

// selectBest returns the k fittest candidates.
func selectBest(pop []*Candidate, k int) []*Candidate {
	sorted := make([]*Candidate, len(pop))
	copy(sorted, pop)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Fitness > sorted[j].Fitness
	})
	if k > len(sorted) {
		k = len(sorted)
	}
	return sorted[:k]
}

func best(pop []*Candidate) *Candidate {
	return selectBest(pop, 1)[0]
}

func summarize(generation int, pop []*Candidate) GenerationStats {
	st := GenerationStats{Generation: generation, Min: math.Inf(1), Max: math.Inf(-1)}
	var sum, sum2 float64
	for _, c := range pop {
		st.Min = math.Min(st.Min, c.Fitness)
		st.Max = math.Max(st.Max, c.Fitness)
		sum += c.Fitness
		sum2 += c.Fitness * c.Fitness
	}
	n := float64(len(pop))
	st.Mean = sum / n
	st.Std = math.Sqrt(math.Abs(sum2/n - st.Mean*st.Mean))
	return st
}
