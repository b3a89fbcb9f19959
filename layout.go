package rcflp

// VariableLayout maps the opening variables y_i and allocation variables
// x_ij of a facility location model onto one column vector: all y first,
// then x row by row.
type VariableLayout struct {
	NF int
	NC int
}

func NewVariableLayout(inst *Instance) VariableLayout {
	return VariableLayout{NF: inst.NF, NC: inst.NC}
}

func (l VariableLayout) Y(i int) int {
	return i
}

func (l VariableLayout) X(i, j int) int {
	return l.NF + i*l.NC + j
}

func (l VariableLayout) Count() int {
	return l.NF + l.NF*l.NC
}

// Solution rounds the opening variables of values and copies the
// allocations into a new solution.
func (l VariableLayout) Solution(values []float64) *Solution {
	sol := NewSolution(&Instance{NF: l.NF, NC: l.NC})
	for i := 0; i < l.NF; i++ {
		if values[l.Y(i)] > 0.5 {
			sol.Y[i] = 1
			sol.NOpen++
		}
		for j := 0; j < l.NC; j++ {
			sol.X.Set(i, j, values[l.X(i, j)])
		}
	}
	return sol
}
