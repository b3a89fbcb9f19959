package rcflp

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mathext/prng"
)

// Scenario is one perturbed demand vector of an instance.
type Scenario struct {
	Seed    int
	Epsilon float64
	Demand  []float64
}

func (sc *Scenario) TotalDemand() float64 {
	return floats.Sum(sc.Demand)
}

// Ratio compares the nominal total demand with the rounded up scenario
// demand. It is 0 when the scenario has no demand at all.
func (sc *Scenario) Ratio(nominal []float64) float64 {
	var sampled float64
	for _, d := range sc.Demand {
		sampled += math.Ceil(d)
	}
	if sampled == 0 {
		return 0
	}
	return floats.Sum(nominal) / sampled
}

// SampleScenario draws a demand vector with every demand in
// [ceil((1-eps)·d_j), ceil((1+eps)·d_j)). The stream of random numbers
// depends on seed only, so a seed always yields the same scenario.
func SampleScenario(inst *Instance, eps float64, seed int) (*Scenario, error) {
	if eps < 0 || math.IsNaN(eps) || math.IsInf(eps, 0) {
		return nil, fmt.Errorf("epsilon %v: %w", eps, ErrInvalidEpsilon)
	}
	rng := prng.NewMT19937()
	rng.Seed(uint64(seed))

	demand := make([]float64, inst.NC)
	for j, d := range inst.D {
		demand[j] = sampleDemand(rng, d, eps)
	}
	return &Scenario{Seed: seed, Epsilon: eps, Demand: demand}, nil
}

func sampleDemand(rng *prng.MT19937, nominal, eps float64) float64 {
	lb := int64(math.Ceil((1 - eps) * nominal))
	ub := int64(math.Ceil((1 + eps) * nominal))
	if ub <= lb {
		return float64(lb)
	}
	return float64(lb + int64(uint64(rng.Uint32())%uint64(ub-lb)))
}

// ScenarioFileName names the scenario of seed derived from the instance
// at basePath, e.g. cap41_50_3.box for epsilon 0.05.
func ScenarioFileName(basePath string, eps float64, seed int) string {
	return fmt.Sprintf("%s_%d_%d.box", filepath.Base(basePath), int(eps*1000), seed)
}

// WriteScenario writes inst in OR Library format with demand in place of
// the nominal demand. Costs are written as totals for that demand.
func WriteScenario(w io.Writer, inst *Instance, demand []float64) error {
	if len(demand) != inst.NC {
		return fmt.Errorf("%d demands for %d customers: %w", len(demand), inst.NC, ErrFormat)
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d %d\n", inst.NF, inst.NC)
	for i := 0; i < inst.NF; i++ {
		fmt.Fprintf(bw, "%s %s\n", formatNumber(inst.S[i]), formatNumber(inst.F[i]))
	}
	writeRow(bw, demand)
	row := make([]float64, inst.NC)
	for i := 0; i < inst.NF; i++ {
		for j := range row {
			row[j] = inst.AllocationCost(i, j, demand[j])
		}
		writeRow(bw, row)
	}
	return bw.Flush()
}

// WriteORLibrary writes inst in OR Library format.
func WriteORLibrary(w io.Writer, inst *Instance) error {
	return WriteScenario(w, inst, inst.D)
}

// Generator writes perturbed copies of an instance into Dir.
type Generator struct {
	Dir    string
	Format Format
	Logger *zap.Logger
}

func NewGenerator(dir string, format Format, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{Dir: dir, Format: format, Logger: logger}
}

// Generate writes one scenario file for every seed in
// [seedStart, seedStart+quantity) and returns their paths.
func (g *Generator) Generate(inst *Instance, basePath string, eps float64, seedStart, quantity int) ([]string, error) {
	switch g.Format {
	case FormatORLibrary:
	case FormatAvella:
		return nil, fmt.Errorf("scenario generation for %s instances: %w", g.Format, ErrNotImplemented)
	default:
		_, err := ParseFormat(int(g.Format))
		return nil, err
	}
	if quantity < 0 {
		return nil, fmt.Errorf("negative scenario quantity %d: %w", quantity, ErrFormat)
	}
	if err := os.MkdirAll(g.Dir, 0755); err != nil {
		return nil, fmt.Errorf("cannot create %s: %s: %w", g.Dir, err.Error(), ErrIO)
	}

	paths := make([]string, 0, quantity)
	for seed := seedStart; seed < seedStart+quantity; seed++ {
		sc, err := SampleScenario(inst, eps, seed)
		if err != nil {
			return paths, err
		}
		path := filepath.Join(g.Dir, ScenarioFileName(basePath, eps, seed))
		if err := writeScenarioFile(path, inst, sc.Demand); err != nil {
			return paths, err
		}
		g.Logger.Info("scenario written",
			zap.String("path", path),
			zap.Int("seed", seed),
			zap.Float64("nominal", inst.TotD),
			zap.Float64("sampled", sc.TotalDemand()),
			zap.Float64("ratio", sc.Ratio(inst.D)))
		paths = append(paths, path)
	}
	return paths, nil
}

func writeScenarioFile(path string, inst *Instance, demand []float64) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create %s: %s: %w", path, err.Error(), ErrIO)
	}
	if err := WriteScenario(file, inst, demand); err != nil {
		file.Close()
		return fmt.Errorf("at %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("at %s: %s: %w", path, err.Error(), ErrIO)
	}
	return nil
}
