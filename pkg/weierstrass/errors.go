package weierstrass

import "github.com/pkg/errors"

var (
	// ErrNonResidue is returned by ModSqrt when the input has no square root
	// modulo p. Callers are expected to check Legendre first; passing a
	// non-residue is a precondition violation, not a recoverable state.
	ErrNonResidue = errors.New("weierstrass: not a quadratic residue")

	// ErrNoGeneratorPoint is returned when the full field has been scanned
	// without finding a point on the curve.
	ErrNoGeneratorPoint = errors.New("weierstrass: no generator point on curve")

	// ErrGenerationTimeout is returned when a generator-point scan runs past
	// its deadline. The deadline is checked cooperatively at loop boundaries.
	ErrGenerationTimeout = errors.New("weierstrass: generator point search timed out")

	// ErrNotInvertible is returned when point arithmetic requires the modular
	// inverse of an element that has none. This only happens with a composite
	// modulus; it is fatal to the single operation that hit it.
	ErrNotInvertible = errors.New("weierstrass: element is not invertible")

	// ErrZeroModulus is returned when an operation is attempted modulo zero.
	ErrZeroModulus = errors.New("weierstrass: modulus is zero")
)
