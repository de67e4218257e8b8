package main

import (
	"context"
	"fmt"
	mrand "math/rand"
	"os"
	"time"

	"github.com/jessevdk/go-flags"
	"go.uber.org/zap"

	"github.com/cftellezc/ecc-evolve/internal/paramfile"
	"github.com/cftellezc/ecc-evolve/pkg/evolve"
	"github.com/cftellezc/ecc-evolve/pkg/pollard"
	"github.com/cftellezc/ecc-evolve/pkg/weierstrass"
)

type options struct {
	Algorithm   string        `long:"algorithm" short:"a" default:"ga" choice:"ga" choice:"pso" description:"Search engine"`
	Population  int           `long:"population" default:"500" description:"Population or swarm size"`
	Generations int           `long:"generations" default:"40" description:"Generations or iterations"`
	PrimeBits   int           `long:"prime-bits" default:"64" description:"Bit length of the prime modulus"`
	GenTimeout  time.Duration `long:"gen-timeout" default:"30s" description:"Per-curve generator point scan bound"`
	Seed        int64         `long:"seed" default:"0" description:"Random seed (0 = time-based)"`

	OrderWeight      float64       `long:"order-weight" default:"0.4" description:"Fitness weight for the order term"`
	HasseWeight      float64       `long:"hasse-weight" default:"0.2" description:"Fitness weight for the Hasse term"`
	ExecWeight       float64       `long:"exec-weight" default:"0.2" description:"Fitness weight for the attack time term"`
	ResistanceWeight float64       `long:"resistance-weight" default:"0.2" description:"Fitness weight for the attack resistance term"`
	MinAttackTime    time.Duration `long:"min-attack-time" default:"100ms" description:"Attack time mapping to score 0"`
	MaxAttackTime    time.Duration `long:"max-attack-time" default:"10s" description:"Attack time mapping to score 1"`

	DistinguishedBits uint `long:"distinguished-bits" default:"20" description:"Low zero bits marking a distinguished point"`
	OracleIterations  int  `long:"oracle-iterations" default:"100" description:"Walk budget of the fitness oracle"`

	Out     string `long:"out" short:"o" default:"curve_params.txt" description:"Result file path"`
	Verbose bool   `long:"verbose" short:"v" description:"Enable debug logging"`
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

	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := mrand.New(mrand.NewSource(seed))
	log.Infow("search starting", "algorithm", opts.Algorithm, "seed", seed, "primeBits", opts.PrimeBits)

	gen := weierstrass.NewGenerator(weierstrass.GeneratorConfig{
		PrimeBits: opts.PrimeBits,
		Timeout:   opts.GenTimeout,
	}, rng).WithLogger(log)

	fitCfg := evolve.DefaultFitnessConfig()
	fitCfg.OrderWeight = opts.OrderWeight
	fitCfg.HasseWeight = opts.HasseWeight
	fitCfg.ExecTimeWeight = opts.ExecWeight
	fitCfg.ResistanceWeight = opts.ResistanceWeight
	fitCfg.MinAttackTime = opts.MinAttackTime
	fitCfg.MaxAttackTime = opts.MaxAttackTime
	fitCfg.Oracle = pollard.OracleConfig{
		DistinguishedBits: opts.DistinguishedBits,
		MaxIterations:     opts.OracleIterations,
	}
	eval := evolve.NewEvaluator(fitCfg).WithLogger(log)

	ctx := context.Background()

	var best *evolve.Candidate
	switch opts.Algorithm {
	case "pso":
		cfg := evolve.DefaultSwarmConfig()
		cfg.SwarmSize = opts.Population
		cfg.MaxIterations = opts.Generations
		best, err = evolve.NewParticleSwarm(cfg, gen, eval, rng).WithLogger(log).Run(ctx)
	default:
		cfg := evolve.DefaultGeneticConfig()
		cfg.PopulationSize = opts.Population
		cfg.Generations = opts.Generations
		best, err = evolve.NewGeneticSearch(cfg, gen, eval, rng).WithLogger(log).Run(ctx)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := paramfile.Write(opts.Out, best.Params); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("[+] Best curve found (fitness %.4f):\n", best.Fitness)
	fmt.Printf("    p   = %s\n", best.Params.P)
	fmt.Printf("    a   = %s\n", best.Params.A)
	fmt.Printf("    b   = %s\n", best.Params.B)
	fmt.Printf("    G   = %s\n", best.Params.G)
	fmt.Printf("    n   = %s\n", best.Params.N)
	fmt.Printf("    h   = %s\n", best.Params.H)
	fmt.Printf("    written to %s\n", opts.Out)
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	if !verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	return cfg.Build()
}
