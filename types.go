package rcflp

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// Format selects the on-disk layout of an instance file.
type Format int

const (
	FormatORLibrary Format = 1
	FormatAvella    Format = 2
)

func ParseFormat(kind int) (Format, error) {
	switch Format(kind) {
	case FormatORLibrary, FormatAvella:
		return Format(kind), nil
	default:
		return 0, fmt.Errorf("instance type %d (use 1-OR Library; 2-Avella): %w", kind, ErrFormat)
	}
}

func (f Format) String() string {
	switch f {
	case FormatORLibrary:
		return "OR Library"
	case FormatAvella:
		return "Avella"
	default:
		return "***"
	}
}

// Instance holds the data of a capacitated facility location problem.
// C stores per-unit allocation costs: serving customer j entirely from
// facility i costs C[i][j] times the demand of j.
type Instance struct {
	NF int `json:"facilities"`
	NC int `json:"customers"`

	F []float64  `json:"fixed_costs"`
	S []float64  `json:"capacities"`
	D []float64  `json:"demands"`
	C *mat.Dense `json:"-"`

	TotS float64 `json:"total_supply"`
	TotD float64 `json:"total_demand"`

	Uncertainty *UncertaintySet `json:"-"`
}

// UncertaintySet is the polytope {d : W·d <= h}. W is stored column-wise:
// the nonzeros of column j are Values[ColStart[j]:ColStart[j+1]] with their
// rows in RowIndex over the same range.
type UncertaintySet struct {
	NR       int
	H        []float64
	Values   []int
	RowIndex []int
	ColStart []int
}

type Status int

const (
	StatusUnknown Status = iota
	StatusFeasible
	StatusOptimal
	StatusInfeasible
	StatusUnbounded
	StatusInfeasibleOrUnbounded
	StatusError
)

var statusNames = map[Status]string{
	StatusUnknown:               "Unknown",
	StatusFeasible:              "Feasible",
	StatusOptimal:               "Optimal",
	StatusInfeasible:            "Infeasible",
	StatusUnbounded:             "Unbounded",
	StatusInfeasibleOrUnbounded: "InfeasibleOrUnbounded",
	StatusError:                 "Error",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

func ParseStatus(token string) (Status, error) {
	for s, name := range statusNames {
		if strings.EqualFold(name, token) {
			return s, nil
		}
	}
	return StatusUnknown, fmt.Errorf("unknown solution status %q: %w", token, ErrFormat)
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	status, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = status
	return nil
}

// Solution is an assignment of customers to open facilities. X[i][j] is the
// fraction of the demand of customer j served by facility i.
type Solution struct {
	Label   string     `json:"label"`
	Y       []int      `json:"open"`
	X       *mat.Dense `json:"-"`
	NOpen   int        `json:"open_count"`
	ZStar   float64    `json:"obj"`
	Status  Status     `json:"status"`
	CPUTime float64    `json:"cpu_time"`
}

// Report is written by the solver next to the solution file.
type Report struct {
	Instance string    `json:"instance"`
	Type     string    `json:"type"`
	Model    string    `json:"model"`
	Solution *Solution `json:"solution"`
	OpenList []int     `json:"open_facilities"`
	Time     string    `json:"time"`
	System   SysInfo   `json:"system"`
	Comment  string    `json:"comment"`
}

// SysInfo saves the basic system information
type SysInfo struct {
	Platform string
	CPU      string
	RAM      string
}
