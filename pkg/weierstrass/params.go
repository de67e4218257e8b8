package weierstrass

import "math/big"

// Parameters is the full domain-parameter tuple (a, b, p, G, n, h) of a
// short-Weierstrass curve over F_p. N is a rough approximation of the curve
// order (p − 1 as produced by Generate), never an exact count.
type Parameters struct {
	A *big.Int
	B *big.Int
	P *big.Int
	G *Point
	N *big.Int
	H *big.Int
}

// Clone returns a deep copy.
func (params Parameters) Clone() Parameters {
	return Parameters{
		A: new(big.Int).Set(params.A),
		B: new(big.Int).Set(params.B),
		P: new(big.Int).Set(params.P),
		G: params.G.Clone(),
		N: new(big.Int).Set(params.N),
		H: new(big.Int).Set(params.H),
	}
}

// Discriminant returns 4a³ + 27b² mod p.
func (params Parameters) Discriminant() *big.Int {
	a3 := new(big.Int).Mul(params.A, params.A)
	a3.Mul(a3, params.A)
	a3.Mul(a3, big.NewInt(4))
	b2 := new(big.Int).Mul(params.B, params.B)
	b2.Mul(b2, big.NewInt(27))
	d := a3.Add(a3, b2)
	return d.Mod(d, params.P)
}

// IsSingular reports whether the curve discriminant vanishes mod p.
func (params Parameters) IsSingular() bool {
	return params.Discriminant().Sign() == 0
}

// IsAnomalous reports whether the approximate order equals the field
// characteristic, which makes the curve vulnerable to additive transfers.
func (params Parameters) IsAnomalous() bool {
	return params.P.Cmp(params.N) == 0
}

// IsSupersingular reports whether the curve trace p + 1 − n vanishes mod p.
// Curves over F_2 and F_3, and composite moduli, are excluded from the test.
func (params Parameters) IsSupersingular() bool {
	if params.P.Cmp(two) == 0 || params.P.Cmp(three) == 0 {
		return false
	}
	if !params.P.ProbablyPrime(20) {
		return false
	}
	trace := new(big.Int).Add(params.P, one)
	trace.Sub(trace, params.N)
	trace.Mod(trace, params.P)
	return trace.Sign() == 0
}

// Validate checks the parameter tuple, short-circuiting on the first failure:
// cofactor at least 1, non-zero prime modulus, a well-formed base point on the
// curve, and a curve that is neither singular, anomalous nor supersingular.
// Order-primality of N is deliberately not enforced; the order is an
// approximation and a composite N is an accepted weakness, not a defect.
func (params Parameters) Validate() bool {
	if params.H == nil || params.H.Cmp(one) < 0 {
		return false
	}
	if params.P == nil || params.P.Sign() <= 0 {
		return false
	}
	if params.A == nil || params.B == nil || params.N == nil {
		return false
	}
	if params.G.IsInfinity() || params.G.X == nil || params.G.Y == nil {
		return false
	}
	if !params.G.IsOnCurve(params.A, params.B, params.P) {
		return false
	}
	if params.IsSingular() {
		return false
	}
	if params.IsAnomalous() {
		return false
	}
	if params.IsSupersingular() {
		return false
	}
	return true
}
