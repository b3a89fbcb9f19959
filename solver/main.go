/* Copyright 2021, Arkadiusz Zarychta, arkadiusz.zarychta@h-brs.de */
/* Copyright 2021, Gurobi Optimization, LLC */

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"git.solver4all.com/azaryc2s/rcflp"
	"git.solver4all.com/azaryc2s/rcflp/cflp"
	"github.com/urfave/cli"
	"go.uber.org/zap"
)

var format rcflp.FormatFlag

func main() {
	app := cli.NewApp()
	app.Name = "solver"
	app.Usage = "solve the nominal capacitated facility location problem"
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "input, i", Usage: "Problem instance file"},
		cli.GenericFlag{Name: "type, t", Value: &format, Usage: "Instance type (1-OR Library; 2-Avella)"},
		cli.StringFlag{Name: "output, o", Usage: "Solution file. Defaults to <input>.sol"},
		cli.BoolFlag{Name: "single-source", Usage: "Serve every customer from a single facility"},
		cli.StringFlag{Name: "lp", Usage: "Write the model in LP format to this file"},
		cli.StringFlag{Name: "log-level", Value: "info", Usage: "debug, info, warn or error"},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "solver: %s\n", err.Error())
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	inputF := c.String("input")
	if inputF == "" {
		return fmt.Errorf("option -i is mandatory: %w", rcflp.ErrFormat)
	}
	if format.Format == 0 {
		format.Format = rcflp.FormatORLibrary
	}
	outputF := c.String("output")
	if outputF == "" {
		outputF = filepath.Base(inputF) + ".sol"
	}

	logger, err := rcflp.NewLogger(c.String("log-level"))
	if err != nil {
		return err
	}
	defer logger.Sync()

	inst, err := rcflp.ReadInstance(inputF, format.Format)
	if err != nil {
		return err
	}
	opts := cflp.Options{
		SingleSource: c.Bool("single-source"),
		LogFile:      fmt.Sprintf("cflp-%s.log", filepath.Base(inputF)),
		LPFile:       c.String("lp"),
	}
	logger.Info("solving",
		zap.String("file", inputF),
		zap.String("model", opts.ModelName()),
		zap.Int("facilities", inst.NF),
		zap.Int("customers", inst.NC))

	startTime := time.Now()
	sol, err := cflp.Solve(inst, opts, logger)
	if err != nil {
		return fmt.Errorf("at %s: %w", inputF, err)
	}
	sol.Label = filepath.Base(inputF)

	file, err := os.Create(outputF)
	if err != nil {
		return fmt.Errorf("cannot create %s: %s: %w", outputF, err.Error(), rcflp.ErrIO)
	}
	defer file.Close()
	if err := rcflp.WriteSolution(file, sol); err != nil {
		return fmt.Errorf("at %s: %w", outputF, err)
	}

	report := rcflp.Report{
		Instance: inputF,
		Type:     format.Format.String(),
		Model:    opts.ModelName(),
		Solution: sol,
		OpenList: sol.OpenFacilities(),
		Time:     time.Since(startTime).String(),
		System:   rcflp.CollectSysInfo(),
	}
	if sol.Status != rcflp.StatusOptimal {
		report.Comment = fmt.Sprintf("Optimization stopped with status %s", sol.Status)
	}
	return writeReport(outputF+".json", report)
}

func writeReport(fileName string, report rcflp.Report) error {
	jsonRep, err := json.MarshalIndent(report, "", "\t")
	if err != nil {
		return err
	}
	jsonRep = []byte(rcflp.SanitizeJsonArrayLineBreaks(string(jsonRep)))
	if err := os.WriteFile(fileName, jsonRep, 0644); err != nil {
		return fmt.Errorf("cannot write %s: %s: %w", fileName, err.Error(), rcflp.ErrIO)
	}
	return nil
}
