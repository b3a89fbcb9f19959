package main

import (
	"fmt"
	"os"

	"git.solver4all.com/azaryc2s/rcflp"
	"github.com/urfave/cli"
	"go.uber.org/zap"
)

var (
	inputs    rcflp.PathFlags
	solutions rcflp.PathFlags
	format    rcflp.FormatFlag
)

func main() {
	app := cli.NewApp()
	app.Name = "evaluator"
	app.Usage = "score solutions against (scenario) instances"
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "config, c", Usage: "Optional configuration file (yaml, json, toml)"},
		cli.GenericFlag{Name: "input, i", Value: &inputs, Usage: "Problem instance file(s), repeatable, globs allowed"},
		cli.GenericFlag{Name: "type, t", Value: &format, Usage: "Instance type (1-OR Library; 2-Avella)"},
		cli.GenericFlag{Name: "solution, s", Value: &solutions, Usage: "Solution file(s), repeatable, globs allowed"},
		cli.StringFlag{Name: "output, o", Usage: "File the evaluation records are appended to"},
		cli.StringFlag{Name: "summary", Usage: "Write a one line summary of the (first) solution to this file"},
		cli.StringFlag{Name: "support", Usage: "Support set file; every instance is checked against it"},
		cli.IntFlag{Name: "cache-size", Usage: "Number of parsed instances kept in memory"},
		cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error"},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "evaluator: %s\n", err.Error())
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	cfg, err := rcflp.LoadConfig(c.String("config"))
	if err != nil {
		return err
	}
	if len(inputs) > 0 {
		cfg.InstancePaths = inputs
	}
	if len(solutions) > 0 {
		cfg.SolutionPaths = solutions
	}
	if format.Format != 0 {
		cfg.Format = int(format.Format)
	}
	if c.IsSet("output") {
		cfg.OutputPath = c.String("output")
	}
	if c.IsSet("summary") {
		cfg.SummaryPath = c.String("summary")
	}
	if c.IsSet("support") {
		cfg.SupportPath = c.String("support")
	}
	if c.IsSet("cache-size") {
		cfg.CacheSize = c.Int("cache-size")
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if len(cfg.SolutionPaths) == 0 {
		return fmt.Errorf("no solution file given: %w", rcflp.ErrFormat)
	}

	logger, err := rcflp.NewLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	cache, err := rcflp.NewInstanceCache(cfg.CacheSize, logger)
	if err != nil {
		return err
	}
	defer cache.Close()

	instFormat, _ := cfg.InstanceFormat()
	eval := rcflp.NewEvaluator(instFormat, cfg.OutputPath, cache, logger)
	if cfg.SupportPath != "" {
		inst, err := cache.Get(cfg.InstancePaths[0], instFormat)
		if err != nil {
			return err
		}
		if eval.Support, err = rcflp.ReadUncertaintySet(cfg.SupportPath, inst.NC); err != nil {
			return err
		}
		logger.Info("support set read",
			zap.String("file", cfg.SupportPath),
			zap.Int("rows", eval.Support.NR),
			zap.Int("nonzeros", eval.Support.NonZeros()))
	}
	records, err := eval.EvaluateFiles(cfg.InstancePaths, cfg.SolutionPaths)
	if err != nil {
		return err
	}
	for _, rec := range records {
		fmt.Printf("%.15g + %.15g = %.15g\n", rec.Result.ConstCost, rec.Result.VarCost, rec.Result.Total())
		fmt.Printf("infeasibility_tot = %g\n", rec.Result.InfeasTotal)
		fmt.Printf("infeasibility_max = %g\n", rec.Result.InfeasMax)
	}

	if cfg.SummaryPath != "" {
		inst, err := cache.Get(cfg.InstancePaths[0], instFormat)
		if err != nil {
			return err
		}
		sol, err := rcflp.ReadSolution(cfg.SolutionPaths[0], inst)
		if err != nil {
			return err
		}
		if err := rcflp.WriteSolutionSummary(cfg.SummaryPath, cfg.InstancePaths[0], instFormat, sol); err != nil {
			return err
		}
	}
	logger.Debug("instance cache",
		zap.Int64("hits", cache.Hits()),
		zap.Int64("misses", cache.Misses()),
		zap.Int64("rejected", cache.Rejected()))
	return nil
}
