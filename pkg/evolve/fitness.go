package evolve

import (
	"math"
	"math/big"
	"time"

	"go.uber.org/zap"

	"github.com/cftellezc/ecc-evolve/pkg/pollard"
	"github.com/cftellezc/ecc-evolve/pkg/weierstrass"
)

// FitnessConfig holds the scoring weights and the reference bounds for the
// execution-time score. The weights are empirical tuning values carried over
// as configuration, not derived constants.
type FitnessConfig struct {
	OrderWeight      float64
	HasseWeight      float64
	ExecTimeWeight   float64
	ResistanceWeight float64

	// MinAttackTime and MaxAttackTime map the simulated attack's wall-clock
	// time linearly into [0, 1].
	MinAttackTime time.Duration
	MaxAttackTime time.Duration

	Oracle pollard.OracleConfig
}

// DefaultFitnessConfig returns the scoring defaults.
func DefaultFitnessConfig() FitnessConfig {
	return FitnessConfig{
		OrderWeight:      0.4,
		HasseWeight:      0.2,
		ExecTimeWeight:   0.2,
		ResistanceWeight: 0.2,
		MinAttackTime:    100 * time.Millisecond,
		MaxAttackTime:    10 * time.Second,
		Oracle:           pollard.DefaultOracleConfig(),
	}
}

// Evaluator scores candidate curves. Invalid curves score exactly 0; valid
// curves score a weighted sum of the order's logarithm, a Hasse-interval
// closeness term, the simulated attack's execution time and its outcome. The
// score is monotonic in curve order and in simulated attack cost.
type Evaluator struct {
	cfg    FitnessConfig
	oracle *pollard.Oracle
	log    *zap.SugaredLogger
}

// NewEvaluator creates an Evaluator.
func NewEvaluator(cfg FitnessConfig) *Evaluator {
	return &Evaluator{
		cfg:    cfg,
		oracle: pollard.NewOracle(cfg.Oracle),
		log:    zap.NewNop().Sugar(),
	}
}

// WithLogger sets the logger used for per-candidate scoring detail.
func (e *Evaluator) WithLogger(log *zap.SugaredLogger) *Evaluator {
	e.log = log
	e.oracle = e.oracle.WithLogger(log)
	return e
}

// Evaluate scores the candidate and caches the result on it.
func (e *Evaluator) Evaluate(c *Candidate) float64 {
	if c.Evaluated {
		return c.Fitness
	}
	c.Fitness = e.score(c.Params)
	c.Evaluated = true
	return c.Fitness
}

func (e *Evaluator) score(params weierstrass.Parameters) float64 {
	if !params.Validate() {
		e.log.Debugw("invalid curve", "p", params.P, "a", params.A, "b", params.B)
		return 0
	}
	if params.N.Sign() <= 0 {
		// ln(n) is undefined; a non-positive order cannot score.
		return 0
	}

	// Hasse closeness: how far the approximate order sits from the expected
	// p + 1, relative to the width of the Hasse interval p + 1 ± 2√p.
	expected := new(big.Int).Add(params.P, big.NewInt(1))
	width := new(big.Int).Sqrt(params.P)
	width.Lsh(width, 2) // upper − lower = 4√p
	dist := new(big.Int).Sub(params.N, expected)
	dist.Abs(dist)
	upper := new(big.Int).Add(expected, new(big.Int).Rsh(width, 1))
	hasseScore := math.Max(0, (bigFloat(upper)-bigFloat(dist))/bigFloat(width))

	// The oracle is handed the expected order p + 1 rather than the rough
	// approximation, as the reference attack does.
	start := time.Now()
	_, collided := e.oracle.Simulate(params.G, params.A, params.B, params.P, expected)
	elapsed := time.Since(start)

	execScore := float64(elapsed-e.cfg.MinAttackTime) / float64(e.cfg.MaxAttackTime-e.cfg.MinAttackTime)
	execScore = math.Max(0, math.Min(1, execScore))

	resistance := 0.0
	if !collided {
		resistance = 1.0
	}

	lnOrder := math.Log(bigFloat(params.N))
	fitness := e.cfg.OrderWeight*lnOrder +
		e.cfg.HasseWeight*hasseScore*lnOrder +
		e.cfg.ExecTimeWeight*execScore +
		e.cfg.ResistanceWeight*resistance

	e.log.Debugw("candidate scored",
		"p", params.P,
		"hasse", hasseScore,
		"exec", execScore,
		"resisted", !collided,
		"fitness", fitness,
	)
	return fitness
}
