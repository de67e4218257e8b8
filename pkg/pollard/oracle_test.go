package pollard

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cftellezc/ecc-evolve/pkg/weierstrass"
)

func TestSimulateFindsDistinguishedPointWithZeroBits(t *testing.T) {
	// With zero distinguished bits every point qualifies, so the very first
	// step must surface a result.
	oracle := NewOracle(OracleConfig{DistinguishedBits: 0, MaxIterations: 100})

	g := &weierstrass.Point{X: big.NewInt(0), Y: big.NewInt(1)}
	res, found := oracle.Simulate(g, big.NewInt(1), big.NewInt(1), big.NewInt(23), big.NewInt(24))

	require.True(t, found)
	require.NotNil(t, res)
	assert.NotNil(t, res.Exponent)
	assert.True(t, res.Point.IsOnCurve(big.NewInt(1), big.NewInt(1), big.NewInt(23)))
}

func TestSimulateMissesWhenNoPointIsDistinguished(t *testing.T) {
	// On y² = x³ + x + 5 over F_23 only x = 0 could satisfy a 20-bit
	// distinguished mask, and that x is not on the curve. The walk must
	// exhaust its budget and report a miss.
	oracle := NewOracle(DefaultOracleConfig())

	g := &weierstrass.Point{X: big.NewInt(3), Y: big.NewInt(9)}
	res, found := oracle.Simulate(g, big.NewInt(1), big.NewInt(5), big.NewInt(23), big.NewInt(24))

	assert.False(t, found)
	assert.Nil(t, res)
}

func TestSimulateIsDeterministic(t *testing.T) {
	cfg := OracleConfig{DistinguishedBits: 0, MaxIterations: 100}
	g := &weierstrass.Point{X: big.NewInt(0), Y: big.NewInt(1)}

	first, foundFirst := NewOracle(cfg).Simulate(g, big.NewInt(1), big.NewInt(1), big.NewInt(23), big.NewInt(24))
	second, foundSecond := NewOracle(cfg).Simulate(g, big.NewInt(1), big.NewInt(1), big.NewInt(23), big.NewInt(24))

	require.Equal(t, foundFirst, foundSecond)
	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.Zero(t, first.Exponent.Cmp(second.Exponent))
	assert.True(t, first.Point.Equal(second.Point))
}

func TestSimulateRespectsIterationBudget(t *testing.T) {
	// A tiny budget on the miss curve returns promptly instead of walking on.
	oracle := NewOracle(OracleConfig{DistinguishedBits: 20, MaxIterations: 3})

	g := &weierstrass.Point{X: big.NewInt(3), Y: big.NewInt(9)}
	_, found := oracle.Simulate(g, big.NewInt(1), big.NewInt(5), big.NewInt(23), big.NewInt(24))

	assert.False(t, found)
}
