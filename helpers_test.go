package rcflp

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	delta = 1e-9 // acceptable numerical deviation for test results

	// two facilities, two customers; total costs 3 6 / 6 3 for demands 3 3
	exampleORLib = `2 2
5 10
5 20
3 3
3 6
6 3
`
	// the same instance in Avella layout, per-unit costs
	exampleAvella = `2 2
3 3
5 5
10 20
1 2
2 1
`
	// facility 0 serves both customers
	exampleSolution = `cap-example
2 2
19
Optimal
1
0
0 0 1
0 1 1
`
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func exampleInstance(t *testing.T) *Instance {
	t.Helper()
	inst, err := ReadInstance(writeFile(t, "example.txt", exampleORLib), FormatORLibrary)
	require.NoError(t, err)
	return inst
}
