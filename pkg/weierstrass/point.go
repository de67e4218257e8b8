package weierstrass

import (
	"fmt"
	"math/big"
)

// Point is an affine point on a short-Weierstrass curve. A nil *Point is the
// point at infinity and acts as the identity for addition.
type Point struct {
	X, Y *big.Int
}

// NewPoint returns the point (x, y).
func NewPoint(x, y *big.Int) *Point {
	return &Point{X: new(big.Int).Set(x), Y: new(big.Int).Set(y)}
}

// IsInfinity reports whether p is the point at infinity.
func (p *Point) IsInfinity() bool {
	return p == nil
}

// Equal reports structural equality. Two infinity points are equal.
func (p *Point) Equal(q *Point) bool {
	if p.IsInfinity() || q.IsInfinity() {
		return p.IsInfinity() && q.IsInfinity()
	}
	return p.X.Cmp(q.X) == 0 && p.Y.Cmp(q.Y) == 0
}

// Clone returns a deep copy of p.
func (p *Point) Clone() *Point {
	if p.IsInfinity() {
		return nil
	}
	return NewPoint(p.X, p.Y)
}

// IsOnCurve reports whether p satisfies y² ≡ x³ + ax + b (mod prime) with
// coordinates reduced into [0, prime). The point at infinity is not on any
// curve in this representation.
func (p *Point) IsOnCurve(a, b, prime *big.Int) bool {
	if p.IsInfinity() || prime.Sign() <= 0 {
		return false
	}
	if p.X.Sign() < 0 || p.X.Cmp(prime) >= 0 || p.Y.Sign() < 0 || p.Y.Cmp(prime) >= 0 {
		return false
	}
	y2 := new(big.Int).Mul(p.Y, p.Y)
	y2.Mod(y2, prime)
	return curveRHS(p.X, a, b, prime).Cmp(y2) == 0
}

func (p *Point) String() string {
	if p.IsInfinity() {
		return "(inf)"
	}
	return fmt.Sprintf("(%s, %s)", p.X, p.Y)
}

// curveRHS evaluates x³ + ax + b mod prime.
func curveRHS(x, a, b, prime *big.Int) *big.Int {
	rhs := new(big.Int).Mul(x, x)
	rhs.Mul(rhs, x)
	rhs.Add(rhs, new(big.Int).Mul(a, x))
	rhs.Add(rhs, b)
	rhs.Mod(rhs, prime)
	return rhs
}
