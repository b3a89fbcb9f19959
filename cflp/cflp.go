/* Copyright 2021, Arkadiusz Zarychta, arkadiusz.zarychta@h-brs.de */
/* Copyright 2021, Gurobi Optimization, LLC */

// Package cflp solves the nominal capacitated facility location problem
// with Gurobi.
package cflp

import (
	"fmt"
	"time"

	"git.solver4all.com/azaryc2s/gorobi/gurobi"
	"git.solver4all.com/azaryc2s/rcflp"
	"go.uber.org/zap"
)

type Options struct {
	// SingleSource forces every customer to be served by one facility.
	SingleSource bool
	// LogFile receives the Gurobi log.
	LogFile string
	// LPFile, if set, receives the model in LP format before optimizing.
	LPFile string
}

func (o Options) ModelName() string {
	if o.SingleSource {
		return "Single-source-Nominal"
	}
	return "Multi-source-Nominal"
}

// Solve builds and optimizes
//
//	min  Σ f_i y_i + Σ c_ij d_j x_ij
//	s.t. Σ_i x_ij = 1             for every customer j
//	     Σ_j d_j x_ij <= s_i y_i  for every facility i
//	     x_ij <= y_i
//	     Σ_i s_i y_i >= Σ_j d_j
//
// and returns the best solution found.
func Solve(inst *rcflp.Instance, opts Options, logger *zap.Logger) (*rcflp.Solution, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logFile := opts.LogFile
	if logFile == "" {
		logFile = "cflp_gurobi.log"
	}
	env, err := gurobi.LoadEnv(logFile)
	if err != nil {
		return nil, fmt.Errorf("gurobi environment: %w", err)
	}
	defer env.Free()
	env.SetIntParam("LogToConsole", int32(0))
	defer env.SetIntParam("LogToConsole", int32(1))

	model, err := env.NewModel("cflp", 0, nil, nil, nil, nil, nil)
	if err != nil {
		return nil, err
	}
	defer model.Free()

	err = model.SetIntAttr(gurobi.INT_ATTR_MODELSENSE, gurobi.MINIMIZE)
	if err != nil {
		return nil, err
	}

	layout := rcflp.NewVariableLayout(inst)

	logger.Debug("adding variables", zap.Int("count", layout.Count()))
	for i := 0; i < inst.NF; i++ {
		err = model.AddVar(nil, nil, inst.F[i], 0.0, 1.0, gurobi.BINARY, fmt.Sprintf("y_%d", i))
		if err != nil {
			return nil, fmt.Errorf("adding y_%d: %w", i, err)
		}
	}
	xType := int8(gurobi.CONTINUOUS)
	if opts.SingleSource {
		xType = gurobi.BINARY
	}
	for i := 0; i < inst.NF; i++ {
		for j := 0; j < inst.NC; j++ {
			err = model.AddVar(nil, nil, inst.AllocationCost(i, j, inst.D[j]), 0.0, 1.0, xType, fmt.Sprintf("x_%d_%d", i, j))
			if err != nil {
				return nil, fmt.Errorf("adding x_%d_%d: %w", i, j, err)
			}
		}
	}

	/* Every customer is served completely */
	for j := 0; j < inst.NC; j++ {
		ind := make([]int, inst.NF)
		val := make([]float64, inst.NF)
		for i := 0; i < inst.NF; i++ {
			ind[i] = layout.X(i, j)
			val[i] = 1.0
		}
		err = model.AddConstr(gurobi.Int32Slice(ind), val, gurobi.EQUAL, 1.0, fmt.Sprintf("assign_%d", j))
		if err != nil {
			return nil, fmt.Errorf("adding assign_%d: %w", j, err)
		}
	}

	/* Capacity of open facilities */
	for i := 0; i < inst.NF; i++ {
		ind := make([]int, 0, inst.NC+1)
		val := make([]float64, 0, inst.NC+1)
		for j := 0; j < inst.NC; j++ {
			ind = append(ind, layout.X(i, j))
			val = append(val, inst.D[j])
		}
		ind = append(ind, layout.Y(i))
		val = append(val, -inst.S[i])
		err = model.AddConstr(gurobi.Int32Slice(ind), val, gurobi.LESS_EQUAL, 0.0, fmt.Sprintf("capacity_%d", i))
		if err != nil {
			return nil, fmt.Errorf("adding capacity_%d: %w", i, err)
		}
	}

	/* Allocation only to open facilities */
	for i := 0; i < inst.NF; i++ {
		for j := 0; j < inst.NC; j++ {
			ind := []int{layout.X(i, j), layout.Y(i)}
			val := []float64{1.0, -1.0}
			err = model.AddConstr(gurobi.Int32Slice(ind), val, gurobi.LESS_EQUAL, 0.0, fmt.Sprintf("link_%d_%d", i, j))
			if err != nil {
				return nil, fmt.Errorf("adding link_%d_%d: %w", i, j, err)
			}
		}
	}

	/* Enough capacity for the total demand */
	{
		ind := make([]int, inst.NF)
		val := make([]float64, inst.NF)
		for i := 0; i < inst.NF; i++ {
			ind[i] = layout.Y(i)
			val[i] = inst.S[i]
		}
		err = model.AddConstr(gurobi.Int32Slice(ind), val, gurobi.GREATER_EQUAL, inst.TotD, "total_capacity")
		if err != nil {
			return nil, fmt.Errorf("adding total_capacity: %w", err)
		}
	}

	if opts.LPFile != "" {
		if err = model.Write(opts.LPFile); err != nil {
			return nil, fmt.Errorf("writing %s: %w", opts.LPFile, err)
		}
	}

	startTime := time.Now()
	if err = model.Optimize(); err != nil {
		return nil, err
	}
	elapsed := time.Since(startTime)

	optimstatus, err := model.GetIntAttr(gurobi.INT_ATTR_STATUS)
	if err != nil {
		return nil, fmt.Errorf("retrieving optimization status: %w", err)
	}
	solcount, err := model.GetIntAttr(gurobi.INT_ATTR_SOLCOUNT)
	if err != nil {
		return nil, fmt.Errorf("retrieving solution count: %w", err)
	}

	status := statusOf(optimstatus, solcount)
	logger.Info("optimization done",
		zap.String("status", status.String()),
		zap.Int32("solutions", solcount),
		zap.Duration("time", elapsed))

	if solcount == 0 {
		sol := rcflp.NewSolution(inst)
		sol.Status = status
		sol.CPUTime = elapsed.Seconds()
		return sol, nil
	}

	objval, err := model.GetDblAttr(gurobi.DBL_ATTR_OBJVAL)
	if err != nil {
		return nil, fmt.Errorf("retrieving the obj-value: %w", err)
	}
	values, err := model.GetDblAttrArray(gurobi.DBL_ATTR_X, 0, int32(layout.Count()))
	if err != nil {
		return nil, fmt.Errorf("retrieving the decision variables: %w", err)
	}
	sol := layout.Solution(values)
	sol.ZStar = objval
	sol.Status = status
	sol.CPUTime = elapsed.Seconds()
	return sol, nil
}

func statusOf(optimstatus, solcount int32) rcflp.Status {
	switch {
	case optimstatus == gurobi.OPTIMAL:
		return rcflp.StatusOptimal
	case optimstatus == gurobi.INFEASIBLE:
		return rcflp.StatusInfeasible
	case optimstatus == gurobi.UNBOUNDED:
		return rcflp.StatusUnbounded
	case optimstatus == gurobi.INF_OR_UNBD:
		return rcflp.StatusInfeasibleOrUnbounded
	case solcount > 0:
		return rcflp.StatusFeasible
	default:
		return rcflp.StatusUnknown
	}
}
