package rcflp

import "errors"

var (
	// ErrIO indicates that an input or output file could not be opened or written.
	ErrIO = errors.New("rcflp: i/o failure")
	// ErrFormat indicates malformed file contents, an unknown instance type or
	// dimensions that do not match.
	ErrFormat = errors.New("rcflp: bad format")
	// ErrNotImplemented is returned for scenario generation on Avella instances.
	ErrNotImplemented = errors.New("rcflp: not implemented")
	// ErrInvalidEpsilon indicates a negative or non-finite perturbation level.
	ErrInvalidEpsilon = errors.New("rcflp: epsilon must be a finite value >= 0")
)
