package rcflp

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// CoverageTolerance is the largest deviation of Σ_i x_ij from 1 for which
// customer j still counts as fully served.
const CoverageTolerance = 1e-6

// EvaluationResult decomposes the cost of a solution on an instance and
// measures how far it violates the capacities.
type EvaluationResult struct {
	ConstCost float64
	VarCost   float64
	// InfeasTotal is the sum of all capacity shortfalls. It is never positive.
	InfeasTotal float64
	// InfeasMax is the largest shortfall of a single facility. It is never negative.
	InfeasMax float64
	// Slack[i] is the open capacity of facility i minus the demand it serves.
	Slack []float64
	// CoverageGap is max_j |1 - Σ_i x_ij|. It is only reported.
	CoverageGap float64
	Uncovered   []int
}

func (r EvaluationResult) Total() float64 {
	return r.ConstCost + r.VarCost
}

func (r EvaluationResult) Feasible() bool {
	return r.InfeasMax == 0
}

// Evaluate scores sol against the nominal demand of inst. Infeasible
// solutions are reported as such, never repaired.
func Evaluate(inst *Instance, sol *Solution) (EvaluationResult, error) {
	if len(sol.Y) != inst.NF || sol.X == nil {
		return EvaluationResult{}, fmt.Errorf("solution has %d facilities, instance %d: %w", len(sol.Y), inst.NF, ErrFormat)
	}
	if r, c := sol.X.Dims(); r != inst.NF || c != inst.NC {
		return EvaluationResult{}, fmt.Errorf("allocation is %dx%d, instance is %dx%d: %w", r, c, inst.NF, inst.NC, ErrFormat)
	}

	res := EvaluationResult{Slack: make([]float64, inst.NF)}
	coverage := make([]float64, inst.NC)
	for i := 0; i < inst.NF; i++ {
		y := float64(sol.Y[i])
		res.ConstCost += y * inst.F[i]
		res.Slack[i] = y * inst.S[i]
		for j := 0; j < inst.NC; j++ {
			x := sol.X.At(i, j)
			res.VarCost += x * inst.D[j] * inst.Cost(i, j)
			res.Slack[i] -= x * inst.D[j]
			coverage[j] += x
		}
	}
	for _, slack := range res.Slack {
		shortfall := math.Min(0, slack)
		res.InfeasTotal += shortfall
		if -shortfall > res.InfeasMax {
			res.InfeasMax = -shortfall
		}
	}
	for j, cov := range coverage {
		gap := math.Abs(1 - cov)
		if gap > res.CoverageGap {
			res.CoverageGap = gap
		}
		if gap > CoverageTolerance {
			res.Uncovered = append(res.Uncovered, j)
		}
	}
	return res, nil
}

// Record is one line of an evaluation output file.
type Record struct {
	InstancePath string
	SolutionPath string
	Result       EvaluationResult
}

func (rec Record) String() string {
	return strings.Join([]string{
		rec.InstancePath,
		rec.SolutionPath,
		formatNumber(rec.Result.ConstCost),
		formatNumber(rec.Result.VarCost),
		formatNumber(rec.Result.InfeasTotal),
		formatNumber(rec.Result.InfeasMax),
	}, ";")
}

// AppendRecord appends rec to the file at path, creating it if needed.
func AppendRecord(path string, rec Record) error {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("cannot open file %s: %s: %w", path, err.Error(), ErrIO)
	}
	if _, err := fmt.Fprintln(file, rec.String()); err != nil {
		file.Close()
		return fmt.Errorf("at %s: %s: %w", path, err.Error(), ErrIO)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("at %s: %s: %w", path, err.Error(), ErrIO)
	}
	return nil
}

// ReadRecords parses an evaluation output file. Blank lines are skipped.
func ReadRecords(path string) ([]Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open file %s: %s: %w", path, err.Error(), ErrIO)
	}
	defer file.Close()

	var records []Record
	scanner := bufio.NewScanner(file)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		fields := strings.Split(text, ";")
		if len(fields) != 6 {
			return nil, fmt.Errorf("at %s:%d: %d fields, want 6: %w", path, line, len(fields), ErrFormat)
		}
		var nums [4]float64
		for k := range nums {
			if nums[k], err = strconv.ParseFloat(fields[2+k], 64); err != nil {
				return nil, fmt.Errorf("at %s:%d: field %d is not a number (%q): %w", path, line, 3+k, fields[2+k], ErrFormat)
			}
		}
		records = append(records, Record{
			InstancePath: fields[0],
			SolutionPath: fields[1],
			Result: EvaluationResult{
				ConstCost:   nums[0],
				VarCost:     nums[1],
				InfeasTotal: nums[2],
				InfeasMax:   nums[3],
			},
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("at %s: %s: %w", path, err.Error(), ErrIO)
	}
	return records, nil
}

// WriteSolutionSummary writes the single line summary of sol:
// instance, instance type, objective, status and cpu time, tab separated.
func WriteSolutionSummary(path, instancePath string, format Format, sol *Solution) error {
	line := strings.Join([]string{
		instancePath,
		format.String(),
		strconv.FormatFloat(sol.ZStar, 'g', 15, 64),
		sol.Status.String(),
		formatNumber(sol.CPUTime),
	}, "\t")
	if err := os.WriteFile(path, []byte(line+"\n"), 0644); err != nil {
		return fmt.Errorf("cannot write %s: %s: %w", path, err.Error(), ErrIO)
	}
	return nil
}

// SupportTolerance is the slack allowed on every row of a support set
// when checking whether a scenario lies inside it.
const SupportTolerance = 1e-6

// Evaluator scores solution files against instance files and appends one
// record per pair to Output. When Support is set, every instance is also
// checked against it.
type Evaluator struct {
	Format  Format
	Output  string
	Cache   *InstanceCache
	Support *UncertaintySet
	Logger  *zap.Logger
}

func NewEvaluator(format Format, output string, cache *InstanceCache, logger *zap.Logger) *Evaluator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Evaluator{Format: format, Output: output, Cache: cache, Logger: logger}
}

// InSupport reports whether the demand of inst satisfies every row of the
// evaluator's support set.
func (e *Evaluator) InSupport(inst *Instance) (bool, error) {
	if e.Support == nil {
		return false, fmt.Errorf("no support set: %w", ErrFormat)
	}
	robust, err := inst.WithUncertainty(e.Support)
	if err != nil {
		return false, err
	}
	return robust.Uncertainty.Contains(robust.D, SupportTolerance), nil
}

func (e *Evaluator) readInstance(path string) (*Instance, error) {
	if e.Cache != nil {
		return e.Cache.Get(path, e.Format)
	}
	return ReadInstance(path, e.Format)
}

// EvaluateFiles scores every solution against every instance. Solutions
// are read once, against the dimensions of the first instance; all the
// instances are expected to be scenarios of the same nominal problem.
func (e *Evaluator) EvaluateFiles(instancePaths, solutionPaths []string) ([]Record, error) {
	if len(instancePaths) == 0 || len(solutionPaths) == 0 {
		return nil, fmt.Errorf("need at least one instance and one solution: %w", ErrFormat)
	}
	first, err := e.readInstance(instancePaths[0])
	if err != nil {
		return nil, err
	}
	solutions := make([]*Solution, len(solutionPaths))
	for k, path := range solutionPaths {
		if solutions[k], err = ReadSolution(path, first); err != nil {
			return nil, err
		}
	}

	var records []Record
	for _, instPath := range instancePaths {
		inst, err := e.readInstance(instPath)
		if err != nil {
			return records, err
		}
		if e.Support != nil {
			inside, err := e.InSupport(inst)
			if err != nil {
				return records, fmt.Errorf("support set on %s: %w", instPath, err)
			}
			if inside {
				e.Logger.Debug("demand inside support set", zap.String("instance", instPath))
			} else {
				e.Logger.Warn("demand outside support set", zap.String("instance", instPath))
			}
		}
		for k, sol := range solutions {
			res, err := Evaluate(inst, sol)
			if err != nil {
				return records, fmt.Errorf("%s on %s: %w", solutionPaths[k], instPath, err)
			}
			rec := Record{InstancePath: instPath, SolutionPath: solutionPaths[k], Result: res}
			if e.Output != "" {
				if err := AppendRecord(e.Output, rec); err != nil {
					return records, err
				}
			}
			e.Logger.Info("solution evaluated",
				zap.String("instance", instPath),
				zap.String("solution", solutionPaths[k]),
				zap.Float64("const", res.ConstCost),
				zap.Float64("var", res.VarCost),
				zap.Float64("total", res.Total()),
				zap.Float64("infeasTotal", res.InfeasTotal),
				zap.Float64("infeasMax", res.InfeasMax))
			if len(res.Uncovered) > 0 {
				e.Logger.Warn("customers not fully allocated",
					zap.String("solution", solutionPaths[k]),
					zap.Ints("customers", res.Uncovered),
					zap.Float64("gap", res.CoverageGap))
			}
			records = append(records, rec)
		}
	}
	return records, nil
}
