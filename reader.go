package rcflp

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"gonum.org/v1/gonum/mat"
)

// tokenReader walks a whitespace separated stream of tokens.
type tokenReader struct {
	scanner *bufio.Scanner
	count   int
}

func newTokenReader(r io.Reader) *tokenReader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	scanner.Split(bufio.ScanWords)
	return &tokenReader{scanner: scanner}
}

// next returns io.EOF once the stream is exhausted.
func (t *tokenReader) next() (string, error) {
	if !t.scanner.Scan() {
		if err := t.scanner.Err(); err != nil {
			return "", fmt.Errorf("token %d: %s: %w", t.count+1, err.Error(), ErrIO)
		}
		return "", io.EOF
	}
	t.count++
	return t.scanner.Text(), nil
}

func (t *tokenReader) readString(field string) (string, error) {
	tok, err := t.next()
	if errors.Is(err, io.EOF) {
		return "", fmt.Errorf("unexpected end of file reading %s: %w", field, ErrFormat)
	}
	return tok, err
}

func (t *tokenReader) readInt(field string) (int, error) {
	tok, err := t.readString(field)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(tok)
	if err != nil {
		return 0, fmt.Errorf("token %d: %s is not an integer (%q): %w", t.count, field, tok, ErrFormat)
	}
	return v, nil
}

func (t *tokenReader) readFloat(field string) (float64, error) {
	tok, err := t.readString(field)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, fmt.Errorf("token %d: %s is not a number (%q): %w", t.count, field, tok, ErrFormat)
	}
	return v, nil
}

func (t *tokenReader) readFloats(field string, n int) ([]float64, error) {
	res := make([]float64, n)
	for k := range res {
		v, err := t.readFloat(fmt.Sprintf("%s[%d]", field, k))
		if err != nil {
			return nil, err
		}
		res[k] = v
	}
	return res, nil
}

func (t *tokenReader) dims(first, second string) (int, int, error) {
	a, err := t.readInt(first)
	if err != nil {
		return 0, 0, err
	}
	b, err := t.readInt(second)
	if err != nil {
		return 0, 0, err
	}
	if a <= 0 || b <= 0 {
		return 0, 0, fmt.Errorf("%s=%d and %s=%d must be positive: %w", first, a, second, b, ErrFormat)
	}
	return a, b, nil
}

// ReadInstance reads a benchmark instance of the given format from path.
func ReadInstance(path string, format Format) (*Instance, error) {
	if _, err := ParseFormat(int(format)); err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open file %s: %s: %w", path, err.Error(), ErrIO)
	}
	defer file.Close()

	inst, err := ParseInstance(file, format)
	if err != nil {
		return nil, fmt.Errorf("at %s: %w", path, err)
	}
	return inst, nil
}

// ParseInstance reads an instance from r.
//
// OR Library files state total allocation costs, which are divided by the
// demand of the customer to obtain per-unit costs. Avella files already
// state per-unit costs.
func ParseInstance(r io.Reader, format Format) (*Instance, error) {
	switch format {
	case FormatORLibrary:
		return parseORLibrary(newTokenReader(r))
	case FormatAvella:
		return parseAvella(newTokenReader(r))
	default:
		_, err := ParseFormat(int(format))
		return nil, err
	}
}

func parseORLibrary(t *tokenReader) (*Instance, error) {
	nF, nC, err := t.dims("nF", "nC")
	if err != nil {
		return nil, err
	}
	s := make([]float64, nF)
	f := make([]float64, nF)
	for i := 0; i < nF; i++ {
		if s[i], err = t.readFloat(fmt.Sprintf("capacity[%d]", i)); err != nil {
			return nil, err
		}
		if f[i], err = t.readFloat(fmt.Sprintf("fixed cost[%d]", i)); err != nil {
			return nil, err
		}
	}
	d, err := t.readFloats("demand", nC)
	if err != nil {
		return nil, err
	}
	c := mat.NewDense(nF, nC, nil)
	for i := 0; i < nF; i++ {
		for j := 0; j < nC; j++ {
			v, err := t.readFloat(fmt.Sprintf("cost[%d][%d]", i, j))
			if err != nil {
				return nil, err
			}
			// a customer without demand costs nothing wherever it is served
			if d[j] != 0 {
				v /= d[j]
			} else {
				v = 0
			}
			c.Set(i, j, v)
		}
	}
	return NewInstance(f, s, d, c)
}

func parseAvella(t *tokenReader) (*Instance, error) {
	nC, nF, err := t.dims("nC", "nF")
	if err != nil {
		return nil, err
	}
	d, err := t.readFloats("demand", nC)
	if err != nil {
		return nil, err
	}
	s, err := t.readFloats("capacity", nF)
	if err != nil {
		return nil, err
	}
	f, err := t.readFloats("fixed cost", nF)
	if err != nil {
		return nil, err
	}
	c := mat.NewDense(nF, nC, nil)
	for i := 0; i < nF; i++ {
		for j := 0; j < nC; j++ {
			v, err := t.readFloat(fmt.Sprintf("cost[%d][%d]", i, j))
			if err != nil {
				return nil, err
			}
			c.Set(i, j, v)
		}
	}
	return NewInstance(f, s, d, c)
}

// ReadUncertaintySet reads a polyhedral support set for nC customers. The
// file holds "nR nC nnz", the nR right-hand sides, the nC+1 column starts
// and nnz pairs "row value".
func ReadUncertaintySet(path string, nC int) (*UncertaintySet, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open file %s: %s: %w", path, err.Error(), ErrIO)
	}
	defer file.Close()

	t := newTokenReader(file)
	nR, err := t.readInt("nR")
	if err != nil {
		return nil, fmt.Errorf("at %s: %w", path, err)
	}
	cols, err := t.readInt("nC")
	if err != nil {
		return nil, fmt.Errorf("at %s: %w", path, err)
	}
	if cols != nC {
		return nil, fmt.Errorf("at %s: set has %d columns, instance has %d customers: %w", path, cols, nC, ErrFormat)
	}
	nnz, err := t.readInt("nnz")
	if err != nil {
		return nil, fmt.Errorf("at %s: %w", path, err)
	}
	if nR < 0 || nnz < 0 {
		return nil, fmt.Errorf("at %s: negative size nR=%d nnz=%d: %w", path, nR, nnz, ErrFormat)
	}
	h, err := t.readFloats("h", nR)
	if err != nil {
		return nil, fmt.Errorf("at %s: %w", path, err)
	}
	colStart := make([]int, nC+1)
	for k := range colStart {
		if colStart[k], err = t.readInt(fmt.Sprintf("start[%d]", k)); err != nil {
			return nil, fmt.Errorf("at %s: %w", path, err)
		}
	}
	rowIndex := make([]int, nnz)
	values := make([]int, nnz)
	for k := 0; k < nnz; k++ {
		if rowIndex[k], err = t.readInt(fmt.Sprintf("index[%d]", k)); err != nil {
			return nil, fmt.Errorf("at %s: %w", path, err)
		}
		if values[k], err = t.readInt(fmt.Sprintf("W[%d]", k)); err != nil {
			return nil, fmt.Errorf("at %s: %w", path, err)
		}
	}
	u, err := NewUncertaintySet(nR, nC, h, values, rowIndex, colStart)
	if err != nil {
		return nil, fmt.Errorf("at %s: %w", path, err)
	}
	return u, nil
}
