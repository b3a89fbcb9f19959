package main

import (
	"fmt"
	"os"
	"strings"

	"git.solver4all.com/azaryc2s/rcflp"
	"github.com/urfave/cli"
)

var (
	inputs rcflp.PathFlags
	format rcflp.FormatFlag
)

// Rewrites instances in OR Library format, e.g. to generate scenarios for
// Avella instances.
func main() {
	app := cli.NewApp()
	app.Name = "converter"
	app.Usage = "rewrite instances in OR Library format"
	app.Flags = []cli.Flag{
		cli.GenericFlag{Name: "input, i", Value: &inputs, Usage: "Problem instance file(s)"},
		cli.GenericFlag{Name: "type, t", Value: &format, Usage: "Instance type (1-OR Library; 2-Avella)"},
		cli.StringFlag{Name: "suffix", Value: ".orlib", Usage: "Suffix appended to the converted files"},
	}
	app.Action = func(c *cli.Context) error {
		if len(inputs) == 0 || format.Format == 0 {
			return fmt.Errorf("options -i and -t are mandatory: %w", rcflp.ErrFormat)
		}
		for _, fileName := range inputs {
			inst, err := rcflp.ReadInstance(fileName, format.Format)
			if err != nil {
				return err
			}
			target := strings.TrimSuffix(fileName, c.String("suffix")) + c.String("suffix")
			if target == fileName {
				return fmt.Errorf("refusing to overwrite %s: %w", fileName, rcflp.ErrIO)
			}
			if err := convert(target, inst); err != nil {
				return err
			}
			fmt.Println(target)
		}
		return nil
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "converter: %s\n", err.Error())
		os.Exit(1)
	}
}

func convert(target string, inst *rcflp.Instance) error {
	file, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("cannot create %s: %s: %w", target, err.Error(), rcflp.ErrIO)
	}
	if err := rcflp.WriteORLibrary(file, inst); err != nil {
		file.Close()
		return fmt.Errorf("at %s: %w", target, err)
	}
	return file.Close()
}
