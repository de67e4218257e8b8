package weierstrass

import (
	crand "crypto/rand"
	"math/big"
	mrand "math/rand"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// GeneratorConfig controls random curve generation.
type GeneratorConfig struct {
	// PrimeBits is the bit length of the prime modulus p.
	PrimeBits int

	// Timeout bounds a single generator-point scan. On expiry the candidate
	// (a, b, p) triple is discarded and generation restarts with fresh
	// randomness. Zero means no bound.
	Timeout time.Duration
}

// DefaultGeneratorConfig returns the generation defaults.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		PrimeBits: 64,
		Timeout:   30 * time.Second,
	}
}

// Generator produces random candidate curve parameters. All randomness,
// including prime drawing, flows from the single supplied source so a run is
// reproducible for a fixed seed.
type Generator struct {
	cfg GeneratorConfig
	rng *mrand.Rand
	log *zap.SugaredLogger
}

// NewGenerator creates a Generator. A nil rng gets a time-based seed.
func NewGenerator(cfg GeneratorConfig, rng *mrand.Rand) *Generator {
	if rng == nil {
		rng = mrand.New(mrand.NewSource(time.Now().UnixNano()))
	}
	return &Generator{cfg: cfg, rng: rng, log: zap.NewNop().Sugar()}
}

// WithLogger sets the logger used for generation progress.
func (g *Generator) WithLogger(log *zap.SugaredLogger) *Generator {
	g.log = log
	return g
}

// Prime draws a fresh prime of the configured bit length.
func (g *Generator) Prime() *big.Int {
	p, err := crand.Prime(g.rng, g.cfg.PrimeBits)
	if err != nil {
		// crypto/rand.Prime only fails on bits < 2 or a broken reader;
		// neither can happen with a math/rand source and a sane config.
		panic(errors.Wrap(err, "weierstrass: prime generation"))
	}
	return p
}

// FindGenerator scans for a base point on y² = x³ + ax + b under the
// configured timeout.
func (g *Generator) FindGenerator(a, b, p *big.Int) (*Point, error) {
	var deadline time.Time
	if g.cfg.Timeout > 0 {
		deadline = time.Now().Add(g.cfg.Timeout)
	}
	return findGeneratorPoint(a, b, p, deadline)
}

// Generate produces random curve parameters: a prime p of the configured bit
// length, non-singular coefficients a and b, and the first base point found on
// the curve. Generation retries on timeout or an exhausted field and never
// fails; the returned order is the p − 1 approximation with cofactor 1.
func (g *Generator) Generate() Parameters {
	for {
		p := g.Prime()

		var a, b *big.Int
		for {
			a = new(big.Int).Rand(g.rng, p)
			b = new(big.Int).Rand(g.rng, p)
			candidate := Parameters{A: a, B: b, P: p}
			if !candidate.IsSingular() {
				break
			}
		}

		point, err := g.FindGenerator(a, b, p)
		if err != nil {
			g.log.Debugw("curve discarded", "p", p, "a", a, "b", b, "reason", err)
			continue
		}

		params := Parameters{
			A: a,
			B: b,
			P: p,
			G: point,
			N: new(big.Int).Sub(p, one),
			H: big.NewInt(1),
		}
		g.log.Debugw("curve generated", "p", p, "a", a, "b", b, "G", point)
		return params
	}
}

// FindGeneratorPoint scans x upward from 0 and returns the first point on
// y² = x³ + ax + b mod p, with no time bound. It fails with
// ErrNoGeneratorPoint once the field is exhausted.
func FindGeneratorPoint(a, b, p *big.Int) (*Point, error) {
	return findGeneratorPoint(a, b, p, time.Time{})
}

func findGeneratorPoint(a, b, p *big.Int, deadline time.Time) (*Point, error) {
	for x := new(big.Int); x.Cmp(p) < 0; x.Add(x, one) {
		if !deadline.IsZero() && !time.Now().Before(deadline) {
			return nil, ErrGenerationTimeout
		}
		rhs := curveRHS(x, a, b, p)
		if Legendre(rhs, p) != 1 {
			continue
		}
		y, err := ModSqrt(rhs, p)
		if err != nil {
			return nil, errors.Wrap(err, "residue without a root")
		}
		return &Point{X: new(big.Int).Set(x), Y: y}, nil
	}
	return nil, ErrNoGeneratorPoint
}
