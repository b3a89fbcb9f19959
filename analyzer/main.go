package main

import (
	"fmt"
	"os"

	"git.solver4all.com/azaryc2s/rcflp"
	"go.uber.org/zap"
)

// Prints one csv line per solution found in the given evaluation files.
func main() {
	logger, err := rcflp.NewLogger("info")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	if len(os.Args) < 2 {
		logger.Error("no arguments passed, expected evaluation files")
		os.Exit(1)
	}
	fmt.Printf("Solution,Scenarios,Feasible,FeasibleShare,MeanCost,MinCost,MaxCost,MeanInfeasTotal,WorstInfeasMax\n")
	for _, fileName := range os.Args[1:] {
		records, err := rcflp.ReadRecords(fileName)
		if err != nil {
			logger.Error("couldn't read evaluation file", zap.String("file", fileName), zap.Error(err))
			os.Exit(1)
		}
		for _, p := range rcflp.Profiles(records) {
			fmt.Printf("%s,%d,%d,%.4f,%.4f,%.4f,%.4f,%.4f,%.4f\n", p.SolutionPath, p.Scenarios, p.Feasible, p.FeasibleShare(),
				p.MeanCost, p.MinCost, p.MaxCost, p.MeanInfeas, p.WorstInfeas)
		}
	}
}
