package weierstrass

import (
	"math/big"

	"github.com/pkg/errors"
)

var (
	one   = big.NewInt(1)
	two   = big.NewInt(2)
	three = big.NewInt(3)
)

// Add returns P + Q on the curve y² = x³ + ax + b over F_p. Either operand may
// be the point at infinity. P + (−P) is the point at infinity.
func Add(p, q *Point, a, prime *big.Int) (*Point, error) {
	if prime.Sign() == 0 {
		return nil, ErrZeroModulus
	}
	if p.IsInfinity() {
		return q.Clone(), nil
	}
	if q.IsInfinity() {
		return p.Clone(), nil
	}

	var lambda *big.Int
	if p.X.Cmp(q.X) == 0 {
		// Vertical line: Q = −P, or doubling a point with y = 0.
		ySum := new(big.Int).Add(p.Y, q.Y)
		ySum.Mod(ySum, prime)
		if ySum.Sign() == 0 {
			return nil, nil
		}
		// Tangent slope (3x² + a) / 2y.
		num := new(big.Int).Mul(p.X, p.X)
		num.Mul(num, three)
		num.Add(num, a)
		den := new(big.Int).Mul(two, p.Y)
		inv := new(big.Int).ModInverse(den.Mod(den, prime), prime)
		if inv == nil {
			return nil, errors.Wrapf(ErrNotInvertible, "doubling denominator 2y = %s mod %s", den, prime)
		}
		lambda = num.Mul(num, inv)
	} else {
		// Chord slope (y₁ − y₂) / (x₁ − x₂).
		num := new(big.Int).Sub(p.Y, q.Y)
		den := new(big.Int).Sub(p.X, q.X)
		inv := new(big.Int).ModInverse(den.Mod(den, prime), prime)
		if inv == nil {
			return nil, errors.Wrapf(ErrNotInvertible, "chord denominator x1-x2 = %s mod %s", den, prime)
		}
		lambda = num.Mul(num, inv)
	}
	lambda.Mod(lambda, prime)

	x := new(big.Int).Mul(lambda, lambda)
	x.Sub(x, p.X)
	x.Sub(x, q.X)
	x.Mod(x, prime)

	y := new(big.Int).Sub(p.X, x)
	y.Mul(y, lambda)
	y.Sub(y, p.Y)
	y.Mod(y, prime)

	return &Point{X: x, Y: y}, nil
}

// Double returns 2P.
func Double(p *Point, a, prime *big.Int) (*Point, error) {
	return Add(p, p, a, prime)
}

// DoubleAndAdd returns k·P by square-and-multiply over the additive group.
// k must be non-negative; 0·P is the point at infinity.
func DoubleAndAdd(k *big.Int, p *Point, a, prime *big.Int) (*Point, error) {
	if k.Sign() < 0 {
		return nil, errors.Errorf("weierstrass: negative scalar %s", k)
	}
	var acc *Point
	addend := p.Clone()
	var err error
	for n := new(big.Int).Set(k); n.Sign() > 0; n.Rsh(n, 1) {
		if n.Bit(0) == 1 {
			acc, err = Add(acc, addend, a, prime)
			if err != nil {
				return nil, err
			}
		}
		addend, err = Add(addend, addend, a, prime)
		if err != nil {
			return nil, err
		}
	}
	return acc, nil
}

// Legendre computes the Legendre symbol of a modulo the odd prime p via
// a^((p−1)/2) mod p: 1 for a residue, −1 for a non-residue, 0 for a ≡ 0.
func Legendre(a, p *big.Int) int {
	if new(big.Int).Mod(a, p).Sign() == 0 {
		return 0
	}
	exp := new(big.Int).Sub(p, one)
	exp.Rsh(exp, 1)
	ls := new(big.Int).Exp(a, exp, p)
	if ls.Cmp(one) == 0 {
		return 1
	}
	pm1 := new(big.Int).Sub(p, one)
	if ls.Cmp(pm1) == 0 {
		return -1
	}
	return 0
}

// ModSqrt returns r with r² ≡ n (mod p) using Tonelli–Shanks. n must be a
// quadratic residue modulo the odd prime p; a non-residue input returns
// ErrNonResidue instead of looping.
func ModSqrt(n, p *big.Int) (*big.Int, error) {
	n = new(big.Int).Mod(n, p)
	if n.Sign() == 0 {
		return new(big.Int), nil
	}
	if Legendre(n, p) != 1 {
		return nil, errors.Wrapf(ErrNonResidue, "sqrt of %s mod %s", n, p)
	}

	// Factor p − 1 = 2^s · q with q odd.
	q := new(big.Int).Sub(p, one)
	s := 0
	for q.Bit(0) == 0 {
		q.Rsh(q, 1)
		s++
	}

	// s == 1 means p ≡ 3 (mod 4) and n^((p+1)/4) is a root directly.
	if s == 1 {
		exp := new(big.Int).Add(p, one)
		exp.Rsh(exp, 2)
		return new(big.Int).Exp(n, exp, p), nil
	}

	// Find a quadratic non-residue z by brute-force search.
	z := big.NewInt(2)
	for Legendre(z, p) != -1 {
		z.Add(z, one)
	}

	m := s
	c := new(big.Int).Exp(z, q, p)
	t := new(big.Int).Exp(n, q, p)
	qp1 := new(big.Int).Add(q, one)
	qp1.Rsh(qp1, 1)
	r := new(big.Int).Exp(n, qp1, p)

	for t.Cmp(one) != 0 {
		// Smallest i with t^(2^i) ≡ 1.
		i := 0
		ti := new(big.Int).Set(t)
		for ti.Cmp(one) != 0 {
			ti.Mul(ti, ti)
			ti.Mod(ti, p)
			i++
		}

		exp := new(big.Int).Lsh(one, uint(m-i-1))
		b := new(big.Int).Exp(c, exp, p)
		r.Mul(r, b)
		r.Mod(r, p)
		c.Mul(b, b)
		c.Mod(c, p)
		t.Mul(t, c)
		t.Mod(t, p)
		m = i
	}

	return r, nil
}
