package pollard

import (
	"math/big"

	"go.uber.org/zap"

	"github.com/cftellezc/ecc-evolve/pkg/weierstrass"
)

// OracleConfig bounds the simulated attack.
type OracleConfig struct {
	// DistinguishedBits is the number of trailing zero bits a point's
	// x-coordinate must have to count as distinguished. Lower values mean
	// more points qualify and collisions surface sooner.
	DistinguishedBits uint

	// MaxIterations caps the walk. Exhausting the cap is a miss, which the
	// fitness layer rewards as attack resistance.
	MaxIterations int
}

// DefaultOracleConfig returns the simulation defaults.
func DefaultOracleConfig() OracleConfig {
	return OracleConfig{
		DistinguishedBits: 20,
		MaxIterations:     100,
	}
}

// SimResult is the distinguished point a simulated walk surfaced, together
// with the walker's accumulated exponent.
type SimResult struct {
	Exponent *big.Int
	Point    *weierstrass.Point
}

// Oracle is a bounded, single-threaded Pollard's rho simulation. It never
// recovers a key; it only reports whether a walk surfaces a distinguished
// point within the iteration budget, which is what fitness scoring needs.
type Oracle struct {
	cfg OracleConfig
	log *zap.SugaredLogger
}

// NewOracle creates an Oracle.
func NewOracle(cfg OracleConfig) *Oracle {
	return &Oracle{cfg: cfg, log: zap.NewNop().Sugar()}
}

// WithLogger sets the logger used for walk diagnostics.
func (o *Oracle) WithLogger(log *zap.SugaredLogger) *Oracle {
	o.log = log
	return o
}

// simWalker is one walker of the simulated attack. The exponent tracks the
// multiple of g the walk believes it is at, reduced modulo the curve order.
type simWalker struct {
	pt  *weierstrass.Point
	exp *big.Int
}

// Simulate runs the distinguished-point walk on y² = x³ + ax + b over F_p.
// Two walkers start at g; the second advances two branch-steps per step of the
// first. The first distinguished point found is returned immediately. When the
// walkers coincide the walk length doubles and resumes from the meeting point.
// Exceeding the iteration budget returns (nil, false): no collision found.
func (o *Oracle) Simulate(g *weierstrass.Point, a, b, p, order *big.Int) (*SimResult, bool) {
	mask := new(big.Int).Lsh(one, o.cfg.DistinguishedBits)
	mask.Sub(mask, one)

	tortoise := &simWalker{pt: g.Clone(), exp: new(big.Int)}
	hare := &simWalker{pt: g.Clone(), exp: new(big.Int)}

	powerOfTwo := 1
	iterations := 0

	for iterations < o.cfg.MaxIterations {
		for i := 0; i < powerOfTwo && iterations < o.cfg.MaxIterations; i++ {
			res, err := o.advance(tortoise, g, a, p, order, mask)
			if err != nil {
				o.log.Debugw("walk aborted", "err", err)
				return nil, false
			}
			if res != nil {
				return res, true
			}

			for j := 0; j < 2; j++ {
				res, err = o.advance(hare, g, a, p, order, mask)
				if err != nil {
					o.log.Debugw("walk aborted", "err", err)
					return nil, false
				}
				if res != nil {
					return res, true
				}
			}

			iterations++
		}

		// Birthday re-seeding: on a meeting, double the walk length and
		// resume from the collision point.
		if tortoise.pt.Equal(hare.pt) {
			powerOfTwo *= 2
			hare.pt = tortoise.pt.Clone()
			hare.exp = new(big.Int).Set(tortoise.exp)
		}
	}

	o.log.Debugw("no collision within iteration budget", "iterations", iterations)
	return nil, false
}

// advance moves a walker one branch-step. The branch is chosen by the
// x-coordinate modulo 3: add g and increment the exponent, double the point
// and the exponent, or double then add. A non-nil SimResult means the walker
// landed on a distinguished point.
func (o *Oracle) advance(w *simWalker, g *weierstrass.Point, a, p, order, mask *big.Int) (*SimResult, error) {
	if w.pt.IsInfinity() {
		// The walk collapsed onto the identity; restart it at the generator.
		w.pt = g.Clone()
		w.exp = big.NewInt(1)
	}

	var err error
	switch new(big.Int).Mod(w.pt.X, three).Int64() {
	case 0:
		w.pt, err = weierstrass.Add(w.pt, g, a, p)
		w.exp.Add(w.exp, one)
	case 1:
		w.pt, err = weierstrass.Double(w.pt, a, p)
		w.exp.Lsh(w.exp, 1)
	default:
		w.pt, err = weierstrass.Double(w.pt, a, p)
		if err == nil {
			w.exp.Lsh(w.exp, 1)
			w.pt, err = weierstrass.Add(w.pt, g, a, p)
			w.exp.Add(w.exp, one)
		}
	}
	if err != nil {
		return nil, err
	}
	w.exp.Mod(w.exp, order)

	if !w.pt.IsInfinity() && new(big.Int).And(w.pt.X, mask).Sign() == 0 {
		return &SimResult{Exponent: new(big.Int).Set(w.exp), Point: w.pt.Clone()}, nil
	}
	return nil, nil
}

var (
	one   = big.NewInt(1)
	three = big.NewInt(3)
)
