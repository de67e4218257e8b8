package evolve

import (
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cftellezc/ecc-evolve/pkg/weierstrass"
)

// resistantParams is y² = x³ + x + 5 over F_23: a valid curve on which the
// bounded oracle can never surface a distinguished point, so the resistance
// bonus is always granted and scoring is fully reproducible.
func resistantParams() weierstrass.Parameters {
	return weierstrass.Parameters{
		A: big.NewInt(1),
		B: big.NewInt(5),
		P: big.NewInt(23),
		G: &weierstrass.Point{X: big.NewInt(3), Y: big.NewInt(9)},
		N: big.NewInt(22),
		H: big.NewInt(1),
	}
}

func TestEvaluateInvalidCurveScoresZero(t *testing.T) {
	eval := NewEvaluator(DefaultFitnessConfig())

	params := resistantParams()
	params.H = big.NewInt(0)
	c := &Candidate{Params: params}

	assert.Zero(t, eval.Evaluate(c))
	assert.True(t, c.Evaluated)
}

func TestEvaluateSingularCurveScoresZero(t *testing.T) {
	eval := NewEvaluator(DefaultFitnessConfig())

	params := resistantParams()
	params.A = big.NewInt(0)
	params.B = big.NewInt(0)
	params.G = &weierstrass.Point{X: big.NewInt(1), Y: big.NewInt(1)}
	c := &Candidate{Params: params}

	assert.Zero(t, eval.Evaluate(c))
}

func TestEvaluateNonPositiveOrderScoresZero(t *testing.T) {
	eval := NewEvaluator(DefaultFitnessConfig())

	params := resistantParams()
	params.N = big.NewInt(0)
	c := &Candidate{Params: params}

	assert.Zero(t, eval.Evaluate(c))
}

func TestEvaluateValidCurve(t *testing.T) {
	cfg := DefaultFitnessConfig()
	eval := NewEvaluator(cfg)

	c := &Candidate{Params: resistantParams()}
	fitness := eval.Evaluate(c)

	// The order term alone contributes OrderWeight · ln(n); the resistance
	// bonus and the Hasse term only add on top.
	lnOrder := math.Log(22)
	assert.GreaterOrEqual(t, fitness, cfg.OrderWeight*lnOrder)
	assert.True(t, c.Evaluated)

	// A second evaluator must produce the identical score: the curve is too
	// small for the timing term to register and the oracle always misses.
	other := &Candidate{Params: resistantParams()}
	assert.Equal(t, fitness, NewEvaluator(cfg).Evaluate(other))
}

func TestEvaluateUsesCachedScore(t *testing.T) {
	eval := NewEvaluator(DefaultFitnessConfig())

	c := &Candidate{Params: resistantParams()}
	first := eval.Evaluate(c)
	require.Greater(t, first, 0.0)

	// Corrupt the genome without invalidating; the cached score must hold.
	c.Params.H = big.NewInt(0)
	assert.Equal(t, first, eval.Evaluate(c))

	c.Invalidate()
	assert.Zero(t, eval.Evaluate(c))
}

func TestEvaluateWeightsAreConfigurable(t *testing.T) {
	cfg := DefaultFitnessConfig()
	cfg.OrderWeight = 0
	cfg.HasseWeight = 0
	cfg.ExecTimeWeight = 0
	cfg.ResistanceWeight = 1

	// Only the resistance bonus remains, and this curve always earns it.
	c := &Candidate{Params: resistantParams()}
	assert.Equal(t, 1.0, NewEvaluator(cfg).Evaluate(c))
}
