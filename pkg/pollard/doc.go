// Package pollard implements Pollard's rho discrete-logarithm attacks against
// short-Weierstrass curves: a bounded single-run simulation with distinguished
// points, used as a fitness oracle during parameter search, and an unbounded
// multi-worker tortoise/hare collision search used as a real attack against a
// deployed public key.
package pollard
