package evolve

import (
	"context"
	"math"
	"math/big"
	mrand "math/rand"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/cftellezc/ecc-evolve/pkg/weierstrass"
)

// SwarmConfig holds the particle-swarm hyperparameters.
type SwarmConfig struct {
	SwarmSize     int
	MaxIterations int

	// Cognitive and Social scale the pull toward a particle's own best and
	// the swarm's global best.
	Cognitive float64
	Social    float64

	// Inertia anneals linearly from InertiaMax to InertiaMin over the run.
	InertiaMax float64
	InertiaMin float64

	// MaxStall stops the run after this many iterations without a global
	// best improvement. Zero disables early stopping.
	MaxStall int
}

// DefaultSwarmConfig returns the reference hyperparameters.
func DefaultSwarmConfig() SwarmConfig {
	return SwarmConfig{
		SwarmSize:     500,
		MaxIterations: 40,
		Cognitive:     1.0,
		Social:        2.5,
		InertiaMax:    0.9,
		InertiaMin:    0.4,
		MaxStall:      20,
	}
}

// velocity is a particle's per-gene velocity. The generator gene moves
// componentwise, so it carries two entries.
type velocity struct {
	a, b, p float64
	g       [2]float64
	n, h    float64
}

// particle couples a current position with its velocity and personal best.
type particle struct {
	cur  *Candidate
	vel  velocity
	best *Candidate
}

// ParticleSwarm searches curve parameters by flying a fixed-size swarm
// through the genome space. Velocities act on float64 projections of the
// big-integer genes; after every move the prime gene is regenerated and the
// base point re-derived, so every visited position is a well-formed curve.
type ParticleSwarm struct {
	cfg   SwarmConfig
	gen   *weierstrass.Generator
	eval  *Evaluator
	rng   *mrand.Rand
	log   *zap.SugaredLogger
	stats []GenerationStats
}

// NewParticleSwarm creates a ParticleSwarm. A nil rng gets a time-based seed.
func NewParticleSwarm(cfg SwarmConfig, gen *weierstrass.Generator, eval *Evaluator, rng *mrand.Rand) *ParticleSwarm {
	if rng == nil {
		rng = mrand.New(mrand.NewSource(time.Now().UnixNano()))
	}
	return &ParticleSwarm{cfg: cfg, gen: gen, eval: eval, rng: rng, log: zap.NewNop().Sugar()}
}

// WithLogger sets the logger used for iteration progress.
func (s *ParticleSwarm) WithLogger(log *zap.SugaredLogger) *ParticleSwarm {
	s.log = log
	return s
}

// Stats returns the per-iteration fitness summaries of the last run.
func (s *ParticleSwarm) Stats() []GenerationStats {
	return s.stats
}

// Run executes the search and returns the best position visited by any
// particle. Cancelling ctx stops the run at the next iteration boundary and
// returns the best so far along with the context's error.
func (s *ParticleSwarm) Run(ctx context.Context) (*Candidate, error) {
	if s.cfg.SwarmSize < 1 {
		return nil, errors.Errorf("evolve: swarm size %d, need at least one particle", s.cfg.SwarmSize)
	}
	s.stats = s.stats[:0]

	swarm := make([]*particle, s.cfg.SwarmSize)
	var gbest *Candidate
	for i := range swarm {
		cur := &Candidate{Params: s.gen.Generate()}
		s.eval.Evaluate(cur)
		swarm[i] = &particle{
			cur: cur,
			vel: velocity{
				a: s.rng.Float64(),
				b: s.rng.Float64(),
				p: s.rng.Float64(),
				g: [2]float64{s.rng.Float64(), s.rng.Float64()},
				n: s.rng.Float64(),
				h: s.rng.Float64(),
			},
			best: cur.Clone(),
		}
		if gbest == nil || cur.Fitness > gbest.Fitness {
			gbest = cur.Clone()
		}
	}

	// The first iteration always clears this bar, so the stall counter only
	// starts moving once iterations fail to improve on each other.
	stall := 0
	prevBest := math.Inf(-1)

	for iter := 0; iter < s.cfg.MaxIterations; iter++ {
		if err := ctx.Err(); err != nil {
			return gbest, err
		}

		w := s.cfg.InertiaMax - (s.cfg.InertiaMax-s.cfg.InertiaMin)*float64(iter)/float64(s.cfg.MaxIterations)

		for _, p := range swarm {
			s.updateVelocity(p, gbest, w)
			s.updatePosition(p)
			s.eval.Evaluate(p.cur)

			if p.cur.Fitness > p.best.Fitness {
				p.best = p.cur.Clone()
			}
			if p.cur.Fitness > gbest.Fitness {
				gbest = p.cur.Clone()
			}
		}

		st := s.summarizeSwarm(iter+1, swarm)
		s.stats = append(s.stats, st)
		s.log.Infow("iteration finished",
			"iteration", iter+1,
			"inertia", w,
			"best", gbest.Fitness,
			"mean", st.Mean,
		)

		if gbest.Fitness <= prevBest {
			stall++
			if s.cfg.MaxStall > 0 && stall >= s.cfg.MaxStall {
				s.log.Infow("early stop", "iteration", iter+1, "stalled", stall)
				break
			}
		} else {
			stall = 0
		}
		prevBest = gbest.Fitness
	}

	s.log.Infow("search finished", "fitness", gbest.Fitness, "p", gbest.Params.P)
	return gbest, nil
}

// updateVelocity applies the standard velocity rule gene by gene, with fresh
// cognitive and social draws per gene. The generator gene shares its draws
// across both coordinates so the point moves as a unit. Scalar velocities are
// forced non-negative; the genes they drive are magnitudes, not coordinates.
func (s *ParticleSwarm) updateVelocity(p *particle, gbest *Candidate, w float64) {
	pv, pb, pc := &p.vel, p.best.Params, p.cur.Params
	gb := gbest.Params

	pv.a = s.scalarVelocity(pv.a, pc.A, pb.A, gb.A, w)
	pv.b = s.scalarVelocity(pv.b, pc.B, pb.B, gb.B, w)
	pv.p = s.scalarVelocity(pv.p, pc.P, pb.P, gb.P, w)
	pv.n = s.scalarVelocity(pv.n, pc.N, pb.N, gb.N, w)
	pv.h = s.scalarVelocity(pv.h, pc.H, pb.H, gb.H, w)

	r1, r2 := s.rng.Float64(), s.rng.Float64()
	pv.g[0] = w*pv.g[0] +
		s.cfg.Cognitive*r1*(bigFloat(pb.G.X)-bigFloat(pc.G.X)) +
		s.cfg.Social*r2*(bigFloat(gb.G.X)-bigFloat(pc.G.X))
	pv.g[1] = w*pv.g[1] +
		s.cfg.Cognitive*r1*(bigFloat(pb.G.Y)-bigFloat(pc.G.Y)) +
		s.cfg.Social*r2*(bigFloat(gb.G.Y)-bigFloat(pc.G.Y))
}

func (s *ParticleSwarm) scalarVelocity(v float64, cur, pbest, gbest *big.Int, w float64) float64 {
	r1, r2 := s.rng.Float64(), s.rng.Float64()
	next := w*v +
		s.cfg.Cognitive*r1*(bigFloat(pbest)-bigFloat(cur)) +
		s.cfg.Social*r2*(bigFloat(gbest)-bigFloat(cur))
	return math.Abs(next)
}

// updatePosition moves every scalar gene by its velocity, then restores the
// structural invariants: the prime gene is regenerated outright and the base
// point re-derived from the moved coefficients, retrying with fresh primes
// until the curve carries a point.
func (s *ParticleSwarm) updatePosition(p *particle) {
	params := &p.cur.Params

	params.A = moveGene(params.A, p.vel.a)
	params.B = moveGene(params.B, p.vel.b)
	params.N = moveGene(params.N, p.vel.n)
	params.H = moveGene(params.H, p.vel.h)

	params.P = s.gen.Prime()
	for {
		pt, err := s.gen.FindGenerator(params.A, params.B, params.P)
		if err == nil {
			params.G = pt
			break
		}
		s.log.Debugw("no base point after move", "p", params.P, "err", err)
		params.P = s.gen.Prime()
	}

	p.cur.Invalidate()
}

// moveGene projects the gene to float64, applies the velocity, and maps the
// result back to a non-negative integer.
func moveGene(x *big.Int, v float64) *big.Int {
	moved := math.Abs(math.Round(bigFloat(x) + v))
	out, _ := new(big.Float).SetFloat64(moved).Int(nil)
	return out
}

func (s *ParticleSwarm) summarizeSwarm(iteration int, swarm []*particle) GenerationStats {
	pop := make([]*Candidate, len(swarm))
	for i, p := range swarm {
		pop[i] = p.cur
	}
	return summarize(iteration, pop)
}
