package pollard

import (
	"context"
	"math"
	"math/big"
	mrand "math/rand"
	"runtime"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cftellezc/ecc-evolve/pkg/weierstrass"
)

// AttackConfig controls the parallel collision search.
type AttackConfig struct {
	// Workers is the number of independent walkers (0 = one per CPU).
	Workers int

	// MaxIterations is the per-worker iteration budget. Zero derives the
	// 2n + 1 budget from the curve order.
	MaxIterations int

	// Seed fixes the starting scalars for reproducible runs (0 = time-based).
	Seed int64
}

// DefaultAttackConfig returns the attack defaults.
func DefaultAttackConfig() AttackConfig {
	return AttackConfig{Workers: 4}
}

// Attack is an unbounded multi-worker Pollard's rho attack against a single
// public key. Each worker owns its walk state exclusively; the only shared
// mutable state is the lock-guarded result record.
type Attack struct {
	params weierstrass.Parameters
	cfg    AttackConfig
	log    *zap.SugaredLogger
}

// NewAttack creates an Attack against the given curve parameters.
func NewAttack(params weierstrass.Parameters, cfg AttackConfig) *Attack {
	return &Attack{params: params, cfg: cfg, log: zap.NewNop().Sugar()}
}

// WithLogger sets the logger used for worker progress.
func (atk *Attack) WithLogger(log *zap.SugaredLogger) *Attack {
	atk.log = log
	return atk
}

// attackState is the record shared by all workers. Both the found-check and
// the conditional write happen inside the critical section.
type attackState struct {
	mu    sync.Mutex
	found bool
	key   *big.Int
}

func (s *attackState) done() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.found
}

// offer records a recovered key unless one is already set. First writer wins.
func (s *attackState) offer(key *big.Int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.found {
		return false
	}
	s.found = true
	s.key = key
	return true
}

// walkState is one trajectory of a worker's walk. The point is tracked as
// pt = a·G + b·Q so a collision between two trajectories yields a linear
// equation in the discrete log.
type walkState struct {
	pt   *weierstrass.Point
	a, b *big.Int
}

func (w *walkState) clone() *walkState {
	return &walkState{pt: w.pt.Clone(), a: new(big.Int).Set(w.a), b: new(big.Int).Set(w.b)}
}

// Run launches the workers and blocks until one recovers the discrete log of
// publicKey with respect to the curve's base point, every worker exhausts its
// iteration budget, or ctx is cancelled. It returns the recovered scalar, or
// nil when no collision produced a verifiable key: a normal negative result,
// not an error.
func (atk *Attack) Run(ctx context.Context, publicKey *weierstrass.Point) *big.Int {
	workers := atk.cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	budget := atk.cfg.MaxIterations
	if budget <= 0 {
		// 2n + 1 steps, the cycle bound of the original attack, clamped to
		// what an int can count.
		twoN := new(big.Int).Lsh(atk.params.N, 1)
		twoN.Add(twoN, one)
		if twoN.IsInt64() && twoN.Int64() < math.MaxInt {
			budget = int(twoN.Int64())
		} else {
			budget = math.MaxInt
		}
	}

	seed := atk.cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	state := &attackState{}

	var wg sync.WaitGroup
	for id := 0; id < workers; id++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			rng := mrand.New(mrand.NewSource(seed + int64(id)))
			atk.worker(ctx, id, rng, publicKey, state, budget)
		}(id)
	}
	wg.Wait()

	state.mu.Lock()
	defer state.mu.Unlock()
	return state.key
}

// worker runs tortoise and hare trajectories from a random starting scalar
// until they collide or the budget runs out. Every iteration re-checks the
// shared found flag so the worker stops within one of its own iterations of
// any other worker's success.
func (atk *Attack) worker(ctx context.Context, id int, rng *mrand.Rand, publicKey *weierstrass.Point, state *attackState, budget int) {
	tortoise, hare := atk.seedWalk(rng)
	atk.log.Debugw("worker started", "worker", id, "start", tortoise.a)

	for i := 0; i < budget; i++ {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if state.done() {
			return
		}

		ok := atk.step(tortoise, publicKey) &&
			atk.step(hare, publicKey) &&
			atk.step(hare, publicKey)
		if !ok {
			// A trajectory degenerated (hit infinity or broken arithmetic);
			// restart from a fresh scalar.
			tortoise, hare = atk.seedWalk(rng)
			continue
		}

		if !tortoise.pt.Equal(hare.pt) {
			continue
		}

		key := atk.solve(tortoise, hare, publicKey)
		if key == nil {
			// Useless collision: the coefficient difference is zero or not
			// invertible modulo the approximate order.
			tortoise, hare = atk.seedWalk(rng)
			continue
		}

		if state.offer(key) {
			atk.log.Infow("private key recovered", "worker", id, "iterations", i+1)
		}
		return
	}

	atk.log.Debugw("worker exhausted budget", "worker", id, "iterations", budget)
}

// seedWalk starts tortoise and hare from the same random multiple of G.
func (atk *Attack) seedWalk(rng *mrand.Rand) (*walkState, *walkState) {
	for {
		s := new(big.Int)
		if atk.params.N.Cmp(one) > 0 {
			s.Rand(rng, new(big.Int).Sub(atk.params.N, one))
		}
		s.Add(s, one)

		pt, err := weierstrass.DoubleAndAdd(s, atk.params.G, atk.params.A, atk.params.P)
		if err != nil || pt.IsInfinity() {
			continue
		}
		tortoise := &walkState{pt: pt, a: s, b: new(big.Int)}
		return tortoise, tortoise.clone()
	}
}

// step advances a trajectory one branch-step, keyed by x mod 3: add the public
// key, double, or add the base point, with the matching coefficient updates.
// It reports false when the trajectory cannot continue.
func (atk *Attack) step(w *walkState, publicKey *weierstrass.Point) bool {
	var err error
	switch new(big.Int).Mod(w.pt.X, three).Int64() {
	case 0:
		w.pt, err = weierstrass.Add(w.pt, publicKey, atk.params.A, atk.params.P)
		w.b.Add(w.b, one)
	case 1:
		w.pt, err = weierstrass.Double(w.pt, atk.params.A, atk.params.P)
		w.a.Lsh(w.a, 1)
		w.b.Lsh(w.b, 1)
	default:
		w.pt, err = weierstrass.Add(w.pt, atk.params.G, atk.params.A, atk.params.P)
		w.a.Add(w.a, one)
	}
	if err != nil || w.pt.IsInfinity() {
		return false
	}
	w.a.Mod(w.a, atk.params.N)
	w.b.Mod(w.b, atk.params.N)
	return true
}

// solve turns a collision a₁·G + b₁·Q = a₂·G + b₂·Q into
// k = (a₁ − a₂)·(b₂ − b₁)⁻¹ mod n and verifies k·G = Q before accepting.
func (atk *Attack) solve(tortoise, hare *walkState, publicKey *weierstrass.Point) *big.Int {
	n := atk.params.N

	diff := new(big.Int).Sub(hare.b, tortoise.b)
	diff.Mod(diff, n)
	if diff.Sign() == 0 {
		return nil
	}
	inv := new(big.Int).ModInverse(diff, n)
	if inv == nil {
		return nil
	}

	key := new(big.Int).Sub(tortoise.a, hare.a)
	key.Mul(key, inv)
	key.Mod(key, n)

	check, err := weierstrass.DoubleAndAdd(key, atk.params.G, atk.params.A, atk.params.P)
	if err != nil || !check.Equal(publicKey) {
		return nil
	}
	return key
}
