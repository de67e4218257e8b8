package main

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"time"

	"github.com/jessevdk/go-flags"
	"go.uber.org/zap"

	"github.com/cftellezc/ecc-evolve/internal/paramfile"
	"github.com/cftellezc/ecc-evolve/pkg/pollard"
	"github.com/cftellezc/ecc-evolve/pkg/weierstrass"
)

type options struct {
	Params string `long:"params" short:"p" required:"true" description:"Curve parameter file"`

	PubX string `long:"pub-x" description:"Public key x coordinate (decimal)"`
	PubY string `long:"pub-y" description:"Public key y coordinate (decimal)"`

	// KnownKey derives the public key as k·G, a self-test mode exercising
	// the full recovery path against a known answer.
	KnownKey string `long:"known-key" description:"Derive the target public key from this private key (decimal)"`

	Workers       int           `long:"workers" default:"0" description:"Parallel walkers (0 = one per CPU)"`
	MaxIterations int           `long:"max-iterations" default:"0" description:"Per-worker step budget (0 = 2n+1)"`
	Timeout       time.Duration `long:"timeout" default:"0" description:"Overall wall-clock bound (0 = none)"`
	Seed          int64         `long:"seed" default:"0" description:"Random seed (0 = time-based)"`
	Verbose       bool          `long:"verbose" short:"v" description:"Enable debug logging"`
}

func main() {
	var opts options
	if _, err := flags.Parse(&opts); err != nil {
		if flags.WroteHelp(err) {
			return
		}
		os.Exit(1)
	}

	logger, err := newLogger(opts.Verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.Sugar()

	params, err := paramfile.Read(opts.Params)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if !params.Validate() {
		fmt.Fprintf(os.Stderr, "Error: %s does not describe a valid curve\n", opts.Params)
		os.Exit(1)
	}

	publicKey, err := targetKey(&opts, params)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if !publicKey.IsOnCurve(params.A, params.B, params.P) {
		fmt.Fprintf(os.Stderr, "Error: public key is not on the curve\n")
		os.Exit(1)
	}

	ctx := context.Background()
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	attack := pollard.NewAttack(params, pollard.AttackConfig{
		Workers:       opts.Workers,
		MaxIterations: opts.MaxIterations,
		Seed:          opts.Seed,
	}).WithLogger(log)

	fmt.Printf("Attacking Q = (%s, %s) over p = %s...\n", publicKey.X, publicKey.Y, params.P)
	start := time.Now()
	key := attack.Run(ctx, publicKey)
	elapsed := time.Since(start)

	if key == nil {
		fmt.Printf("[-] No key recovered after %s\n", elapsed.Round(time.Millisecond))
		os.Exit(2)
	}

	fmt.Printf("[+] Private key recovered in %s:\n", elapsed.Round(time.Millisecond))
	fmt.Printf("    k = %s\n", key)
	if opts.KnownKey != "" {
		fmt.Printf("    matches k·G for the supplied key\n")
	}
}

// targetKey resolves the attacked public key, either parsed from the
// coordinate flags or derived from a known private key.
func targetKey(opts *options, params weierstrass.Parameters) (*weierstrass.Point, error) {
	if opts.KnownKey != "" {
		k, ok := new(big.Int).SetString(opts.KnownKey, 10)
		if !ok {
			return nil, fmt.Errorf("invalid known key: %s", opts.KnownKey)
		}
		pt, err := weierstrass.DoubleAndAdd(k, params.G, params.A, params.P)
		if err != nil {
			return nil, err
		}
		if pt.IsInfinity() {
			return nil, fmt.Errorf("known key maps to the point at infinity")
		}
		return pt, nil
	}

	if opts.PubX == "" || opts.PubY == "" {
		return nil, fmt.Errorf("either --known-key or both --pub-x and --pub-y are required")
	}
	x, ok := new(big.Int).SetString(opts.PubX, 10)
	if !ok {
		return nil, fmt.Errorf("invalid public key x: %s", opts.PubX)
	}
	y, ok := new(big.Int).SetString(opts.PubY, 10)
	if !ok {
		return nil, fmt.Errorf("invalid public key y: %s", opts.PubY)
	}
	return weierstrass.NewPoint(x, y), nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	if !verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	return cfg.Build()
}
