package rcflp

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"gonum.org/v1/gonum/mat"
)

// AllocationEpsilon is the smallest allocation written to a solution file.
const AllocationEpsilon = 1e-5

// NewSolution returns an empty solution sized for inst.
func NewSolution(inst *Instance) *Solution {
	return &Solution{
		Y: make([]int, inst.NF),
		X: mat.NewDense(inst.NF, inst.NC, nil),
	}
}

func (sol *Solution) OpenFacilities() []int {
	var open []int
	for i, y := range sol.Y {
		if y == 1 {
			open = append(open, i)
		}
	}
	return open
}

// ReadSolution reads a solution file written for inst.
func ReadSolution(path string, inst *Instance) (*Solution, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open file %s: %s: %w", path, err.Error(), ErrIO)
	}
	defer file.Close()

	sol, err := ParseSolution(file, inst)
	if err != nil {
		return nil, fmt.Errorf("at %s: %w", path, err)
	}
	return sol, nil
}

// ParseSolution reads the header "label nF nC zStar status nOpen", the
// indices of the open facilities and then (i, j, value) triples until the
// stream ends. A trailing incomplete triple is dropped.
func ParseSolution(r io.Reader, inst *Instance) (*Solution, error) {
	t := newTokenReader(r)
	label, err := t.readString("label")
	if err != nil {
		return nil, err
	}
	nF, err := t.readInt("nF")
	if err != nil {
		return nil, err
	}
	nC, err := t.readInt("nC")
	if err != nil {
		return nil, err
	}
	if nF != inst.NF || nC != inst.NC {
		return nil, fmt.Errorf("solution is %dx%d but instance has %d facilities and %d customers: %w", nF, nC, inst.NF, inst.NC, ErrFormat)
	}

	sol := NewSolution(inst)
	sol.Label = label
	if sol.ZStar, err = t.readFloat("zStar"); err != nil {
		return nil, err
	}
	status, err := t.readString("status")
	if err != nil {
		return nil, err
	}
	if sol.Status, err = ParseStatus(status); err != nil {
		return nil, err
	}
	if sol.NOpen, err = t.readInt("nOpen"); err != nil {
		return nil, err
	}
	if sol.NOpen < 0 || sol.NOpen > nF {
		return nil, fmt.Errorf("%d open facilities out of %d: %w", sol.NOpen, nF, ErrFormat)
	}
	for k := 0; k < sol.NOpen; k++ {
		i, err := t.readInt(fmt.Sprintf("open facility %d", k))
		if err != nil {
			return nil, err
		}
		if i < 0 || i >= nF {
			return nil, fmt.Errorf("open facility %d outside [0,%d): %w", i, nF, ErrFormat)
		}
		if sol.Y[i] == 1 {
			return nil, fmt.Errorf("facility %d listed twice as open: %w", i, ErrFormat)
		}
		sol.Y[i] = 1
	}

	for {
		i, j, v, err := readAllocation(t)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if i < 0 || i >= nF || j < 0 || j >= nC {
			return nil, fmt.Errorf("allocation (%d,%d) outside %dx%d: %w", i, j, nF, nC, ErrFormat)
		}
		sol.X.Set(i, j, v)
	}
	return sol, nil
}

// readAllocation reads one (i, j, value) triple. io.EOF is returned when the
// stream ends before the triple is complete.
func readAllocation(t *tokenReader) (int, int, float64, error) {
	var fields [3]string
	for k := range fields {
		tok, err := t.next()
		if err != nil {
			return 0, 0, 0, err
		}
		fields[k] = tok
	}
	i, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("token %d: facility index %q: %w", t.count-2, fields[0], ErrFormat)
	}
	j, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("token %d: customer index %q: %w", t.count-1, fields[1], ErrFormat)
	}
	v, err := strconv.ParseFloat(fields[2], 64)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("token %d: allocation value %q: %w", t.count, fields[2], ErrFormat)
	}
	return i, j, v, nil
}

// WriteSolution writes sol in the format read by ParseSolution. Allocations
// smaller than AllocationEpsilon are left out.
func WriteSolution(w io.Writer, sol *Solution) error {
	bw := bufio.NewWriter(w)
	nF, nC := sol.X.Dims()
	label := sol.Label
	if label == "" {
		label = "rcflp"
	}
	open := sol.OpenFacilities()
	fmt.Fprintf(bw, "%s\n%d %d\n%s\n%s\n%d\n", label, nF, nC, formatNumber(sol.ZStar), sol.Status, len(open))
	for k, i := range open {
		if k > 0 {
			bw.WriteByte(' ')
		}
		bw.WriteString(strconv.Itoa(i))
	}
	bw.WriteByte('\n')
	for i := 0; i < nF; i++ {
		for j := 0; j < nC; j++ {
			if v := sol.X.At(i, j); math.Abs(v) >= AllocationEpsilon {
				fmt.Fprintf(bw, "%d %d %s\n", i, j, formatNumber(v))
			}
		}
	}
	return bw.Flush()
}
