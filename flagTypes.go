package rcflp

import (
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"
)

// PathFlags collects file names from a repeatable flag. A value may hold
// several comma separated names or glob patterns.
type PathFlags []string

func (i *PathFlags) String() string {
	return strings.Join(*i, ",")
}

func (i *PathFlags) Set(value string) error {
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		matches, err := filepath.Glob(part)
		if err != nil {
			return err
		}
		if len(matches) == 0 {
			// not a pattern or nothing matched yet, keep it as given
			matches = []string{part}
		}
		*i = append(*i, matches...)
	}
	return nil
}

type EpsilonFlags []float64

func (i *EpsilonFlags) String() string {
	return fmt.Sprintf("%v", []float64(*i))
}

func (i *EpsilonFlags) Set(value string) error {
	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return err
	}
	if val < 0 || math.IsInf(val, 0) || math.IsNaN(val) {
		return ErrInvalidEpsilon
	}
	*i = append(*i, val)
	return nil
}

// FormatFlag accepts 1 (OR Library) or 2 (Avella).
type FormatFlag struct {
	Format Format
}

func (f *FormatFlag) String() string {
	if f.Format == 0 {
		return ""
	}
	return strconv.Itoa(int(f.Format))
}

func (f *FormatFlag) Set(value string) error {
	kind, err := strconv.Atoi(value)
	if err != nil {
		return err
	}
	format, err := ParseFormat(kind)
	if err != nil {
		return err
	}
	f.Format = format
	return nil
}
