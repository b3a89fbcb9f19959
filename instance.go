package rcflp

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// NewInstance builds an instance from fixed costs f, capacities s, demands d
// and the nF×nC per-unit cost matrix c. The slices are owned by the instance
// afterwards.
func NewInstance(f, s, d []float64, c *mat.Dense) (*Instance, error) {
	nF, nC := len(f), len(d)
	if nF == 0 || nC == 0 {
		return nil, fmt.Errorf("instance needs at least one facility and one customer (got %d, %d): %w", nF, nC, ErrFormat)
	}
	if len(s) != nF {
		return nil, fmt.Errorf("%d capacities for %d facilities: %w", len(s), nF, ErrFormat)
	}
	if c == nil {
		return nil, fmt.Errorf("missing cost matrix: %w", ErrFormat)
	}
	if r, cc := c.Dims(); r != nF || cc != nC {
		return nil, fmt.Errorf("cost matrix is %dx%d, want %dx%d: %w", r, cc, nF, nC, ErrFormat)
	}
	return &Instance{
		NF:   nF,
		NC:   nC,
		F:    f,
		S:    s,
		D:    d,
		C:    c,
		TotS: floats.Sum(s),
		TotD: floats.Sum(d),
	}, nil
}

func (inst *Instance) Cost(i, j int) float64 {
	return inst.C.At(i, j)
}

// AllocationCost is the cost of serving a demand of customer j fully from facility i.
func (inst *Instance) AllocationCost(i, j int, demand float64) float64 {
	return inst.C.At(i, j) * demand
}

// WithUncertainty returns a copy of inst carrying u. The data arrays are shared.
func (inst *Instance) WithUncertainty(u *UncertaintySet) (*Instance, error) {
	if u != nil && len(u.ColStart) != inst.NC+1 {
		return nil, fmt.Errorf("uncertainty set has %d columns, instance has %d customers: %w", len(u.ColStart)-1, inst.NC, ErrFormat)
	}
	cp := *inst
	cp.Uncertainty = u
	return &cp, nil
}

// NewUncertaintySet validates the column-compressed representation of W
// (nR rows, nC columns) and wraps it together with the right-hand sides h.
func NewUncertaintySet(nR, nC int, h []float64, values, rowIndex, colStart []int) (*UncertaintySet, error) {
	if nR < 0 || nC < 0 {
		return nil, fmt.Errorf("negative size nR=%d nC=%d: %w", nR, nC, ErrFormat)
	}
	if len(h) != nR {
		return nil, fmt.Errorf("%d right-hand sides for %d rows: %w", len(h), nR, ErrFormat)
	}
	if len(colStart) != nC+1 {
		return nil, fmt.Errorf("column start has %d entries, want %d: %w", len(colStart), nC+1, ErrFormat)
	}
	if len(values) != len(rowIndex) {
		return nil, fmt.Errorf("%d values but %d row indices: %w", len(values), len(rowIndex), ErrFormat)
	}
	if colStart[0] != 0 || colStart[nC] != len(values) {
		return nil, fmt.Errorf("column start must run from 0 to %d (got %d..%d): %w", len(values), colStart[0], colStart[nC], ErrFormat)
	}
	for j := 0; j < nC; j++ {
		if colStart[j] > colStart[j+1] {
			return nil, fmt.Errorf("column start decreases at column %d: %w", j, ErrFormat)
		}
	}
	for k, r := range rowIndex {
		if r < 0 || r >= nR {
			return nil, fmt.Errorf("row index %d at position %d outside [0,%d): %w", r, k, nR, ErrFormat)
		}
	}
	return &UncertaintySet{NR: nR, H: h, Values: values, RowIndex: rowIndex, ColStart: colStart}, nil
}

func (u *UncertaintySet) Columns() int {
	return len(u.ColStart) - 1
}

func (u *UncertaintySet) NonZeros() int {
	return len(u.Values)
}

// Column returns the row indices and coefficients of column j.
func (u *UncertaintySet) Column(j int) (rows, values []int) {
	lo, hi := u.ColStart[j], u.ColStart[j+1]
	return u.RowIndex[lo:hi], u.Values[lo:hi]
}

// Product computes W·d.
func (u *UncertaintySet) Product(d []float64) []float64 {
	res := make([]float64, u.NR)
	for j := 0; j < u.Columns(); j++ {
		rows, vals := u.Column(j)
		for k, r := range rows {
			res[r] += float64(vals[k]) * d[j]
		}
	}
	return res
}

// Contains reports whether W·d <= h holds for every row up to tol.
func (u *UncertaintySet) Contains(d []float64, tol float64) bool {
	if len(d) != u.Columns() {
		return false
	}
	for r, v := range u.Product(d) {
		if v > u.H[r]+tol {
			return false
		}
	}
	return true
}

// NewBoxSet bounds every demand within a relative envelope eps of its
// nominal value: (1-eps)·d_j <= d_j' <= (1+eps)·d_j. Row 2j is the upper
// bound of customer j, row 2j+1 the lower one.
func NewBoxSet(nominal []float64, eps float64) (*UncertaintySet, error) {
	if eps < 0 || math.IsNaN(eps) || math.IsInf(eps, 0) {
		return nil, fmt.Errorf("box set with epsilon %v: %w", eps, ErrInvalidEpsilon)
	}
	nC := len(nominal)
	h := make([]float64, 2*nC)
	values := make([]int, 0, 2*nC)
	rowIndex := make([]int, 0, 2*nC)
	colStart := make([]int, nC+1)
	for j, d := range nominal {
		h[2*j] = (1 + eps) * d
		h[2*j+1] = -(1 - eps) * d
		values = append(values, 1, -1)
		rowIndex = append(rowIndex, 2*j, 2*j+1)
		colStart[j+1] = len(values)
	}
	return NewUncertaintySet(2*nC, nC, h, values, rowIndex, colStart)
}

// NewBudgetSet is the box set of eps plus one aggregate row limiting the
// total demand to (1+gamma) times the nominal total.
func NewBudgetSet(nominal []float64, eps, gamma float64) (*UncertaintySet, error) {
	box, err := NewBoxSet(nominal, eps)
	if err != nil {
		return nil, err
	}
	if gamma < 0 || math.IsNaN(gamma) || math.IsInf(gamma, 0) {
		return nil, fmt.Errorf("budget set with gamma %v: %w", gamma, ErrInvalidEpsilon)
	}
	nC := len(nominal)
	agg := box.NR
	h := append(box.H, (1+gamma)*floats.Sum(nominal))
	values := make([]int, 0, 3*nC)
	rowIndex := make([]int, 0, 3*nC)
	colStart := make([]int, nC+1)
	for j := 0; j < nC; j++ {
		rows, vals := box.Column(j)
		values = append(values, vals...)
		rowIndex = append(rowIndex, rows...)
		values = append(values, 1)
		rowIndex = append(rowIndex, agg)
		colStart[j+1] = len(values)
	}
	return NewUncertaintySet(agg+1, nC, h, values, rowIndex, colStart)
}

// WriteUncertaintySet writes u in the layout read by ReadUncertaintySet.
func WriteUncertaintySet(w io.Writer, u *UncertaintySet) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d %d %d\n", u.NR, u.Columns(), u.NonZeros())
	writeRow(bw, u.H)
	for k, start := range u.ColStart {
		if k > 0 {
			bw.WriteByte(' ')
		}
		bw.WriteString(strconv.Itoa(start))
	}
	bw.WriteByte('\n')
	for k := range u.Values {
		fmt.Fprintf(bw, "%d %d\n", u.RowIndex[k], u.Values[k])
	}
	return bw.Flush()
}
