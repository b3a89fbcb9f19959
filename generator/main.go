package main

import (
	"fmt"
	"os"
	"path/filepath"

	"git.solver4all.com/azaryc2s/rcflp"
	"github.com/urfave/cli"
	"go.uber.org/zap"
)

var (
	inputs   rcflp.PathFlags
	epsilons rcflp.EpsilonFlags
	format   rcflp.FormatFlag
)

func main() {
	app := cli.NewApp()
	app.Name = "generator"
	app.Usage = "generate demand scenarios around a nominal instance"
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "config, c", Usage: "Optional configuration file (yaml, json, toml)"},
		cli.GenericFlag{Name: "input, i", Value: &inputs, Usage: "Problem instance file(s)"},
		cli.GenericFlag{Name: "type, t", Value: &format, Usage: "Instance type (1-OR Library; 2-Avella)"},
		cli.GenericFlag{Name: "epsilon, e", Value: &epsilons, Usage: "Relative demand perturbation, repeatable"},
		cli.IntFlag{Name: "seed, s", Usage: "First seed"},
		cli.IntFlag{Name: "quantity, q", Value: 1, Usage: "Number of scenarios per epsilon"},
		cli.StringFlag{Name: "dir, d", Usage: "Output directory for the scenarios"},
		cli.BoolFlag{Name: "support", Usage: "Also write the box support set of every epsilon"},
		cli.Float64Flag{Name: "gamma", Usage: "With --support, limit the total demand to (1+gamma) times the nominal one"},
		cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error"},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "generator: %s\n", err.Error())
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
	if format.Format != 0 {
		cfg.Format = int(format.Format)
	}
	if c.IsSet("seed") {
		cfg.SeedStart = c.Int("seed")
	}
	if c.IsSet("quantity") {
		cfg.Quantity = c.Int("quantity")
	}
	if c.IsSet("dir") {
		cfg.ScenarioDir = c.String("dir")
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if len(epsilons) == 0 {
		epsilons = rcflp.EpsilonFlags{cfg.Epsilon}
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := rcflp.NewLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	instFormat, _ := cfg.InstanceFormat()
	gen := rcflp.NewGenerator(cfg.ScenarioDir, instFormat, logger)
	for _, path := range cfg.InstancePaths {
		inst, err := rcflp.ReadInstance(path, instFormat)
		if err != nil {
			return err
		}
		logger.Info("instance read",
			zap.String("file", path),
			zap.String("type", instFormat.String()),
			zap.Int("facilities", inst.NF),
			zap.Int("customers", inst.NC),
			zap.Float64("supply", inst.TotS),
			zap.Float64("demand", inst.TotD))
		for _, eps := range epsilons {
			paths, err := gen.Generate(inst, path, eps, cfg.SeedStart, cfg.Quantity)
			if err != nil {
				return err
			}
			for _, p := range paths {
				fmt.Println(p)
			}
			if c.Bool("support") {
				setPath, err := writeSupport(cfg.ScenarioDir, path, inst, eps, c.IsSet("gamma"), c.Float64("gamma"))
				if err != nil {
					return err
				}
				fmt.Println(setPath)
			}
		}
	}
	return nil
}

// writeSupport stores the box set the scenarios of eps were drawn from. With
// budget set, a row limiting the total demand by gamma is added.
func writeSupport(dir, basePath string, inst *rcflp.Instance, eps float64, budget bool, gamma float64) (string, error) {
	var (
		set *rcflp.UncertaintySet
		err error
	)
	if budget {
		set, err = rcflp.NewBudgetSet(inst.D, eps, gamma)
	} else {
		set, err = rcflp.NewBoxSet(inst.D, eps)
	}
	if err != nil {
		return "", err
	}
	setPath := filepath.Join(dir, fmt.Sprintf("%s_%d.set", filepath.Base(basePath), int(eps*1000)))
	file, err := os.Create(setPath)
	if err != nil {
		return "", fmt.Errorf("cannot create %s: %s: %w", setPath, err.Error(), rcflp.ErrIO)
	}
	defer file.Close()
	if err := rcflp.WriteUncertaintySet(file, set); err != nil {
		return "", fmt.Errorf("at %s: %w", setPath, err)
	}
	return setPath, nil
}
