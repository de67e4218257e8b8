// Package weierstrass implements arithmetic, validation and random generation
// of short-Weierstrass elliptic-curve domain parameters over a prime field.
//
// A curve is described by the tuple (a, b, p, G, n, h): the coefficients of
// y² = x³ + ax + b, the prime modulus, a base point, an approximate order and
// a cofactor. The package deliberately works with a rough order approximation
// n = p − 1 instead of running Schoof's algorithm; downstream scoring uses the
// Hasse interval to judge how plausible the approximation is.
//
// # Quick Start
//
//	import "github.com/cftellezc/ecc-evolve/pkg/weierstrass"
//
//	gen := weierstrass.NewGenerator(weierstrass.GeneratorConfig{
//	    PrimeBits: 64,
//	    Timeout:   30 * time.Second,
//	}, rand.New(rand.NewSource(1)))
//
//	params := gen.Generate()
//	if !params.Validate() {
//	    // fitness 0 upstream, never an error
//	}
//
// All arithmetic is plain affine math/big arithmetic. The point at infinity is
// represented by a nil *Point and behaves as the additive identity.
package weierstrass
