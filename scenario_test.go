package rcflp

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/mathext/prng"
)

func instanceWithDemand(t *testing.T, d []float64) *Instance {
	t.Helper()
	f := make([]float64, 2)
	s := make([]float64, 2)
	for i := range f {
		f[i] = 100
		s[i] = 2000
	}
	c := mat.NewDense(2, len(d), nil)
	for j := range d {
		c.Set(0, j, 1)
		c.Set(1, j, 2)
	}
	inst, err := NewInstance(f, s, d, c)
	require.NoError(t, err)
	return inst
}

func TestMersenneTwisterReference(t *testing.T) {
	// first output of std::mt19937 with its default seed
	rng := prng.NewMT19937()
	rng.Seed(5489)
	assert.Equal(t, uint32(3499211612), rng.Uint32())
}

func TestSampleScenarioGolden(t *testing.T) {
	inst := instanceWithDemand(t, []float64{100, 200, 37, 0, 1000})

	cases := []struct {
		seed int
		want []float64
	}{
		{7, []float64{102, 220, 40, 0, 986}},
		{8, []float64{105, 192, 37, 0, 1029}},
	}
	for _, tc := range cases {
		sc, err := SampleScenario(inst, 0.1, tc.seed)
		require.NoError(t, err)
		assert.Equal(t, tc.want, sc.Demand, "seed %d", tc.seed)
		assert.Equal(t, tc.seed, sc.Seed)
		assert.Equal(t, 0.1, sc.Epsilon)
	}
}

func TestSampleScenarioBounds(t *testing.T) {
	inst := instanceWithDemand(t, []float64{100, 0, 50})

	for seed := 0; seed < 200; seed++ {
		sc, err := SampleScenario(inst, 0.01, seed)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, sc.Demand[0], 99.0)
		assert.Less(t, sc.Demand[0], 101.0)
		// a customer without demand keeps none
		assert.Equal(t, 0.0, sc.Demand[1])
		// ceil(49.5) = 50 = ceil(50.5) - 1, so there is a single value
		assert.Equal(t, 50.0, sc.Demand[2])
	}

	sc, err := SampleScenario(inst, 0.01, 1)
	require.NoError(t, err)
	assert.Equal(t, []float64{100, 0, 50}, sc.Demand)
	sc, err = SampleScenario(inst, 0.01, 2)
	require.NoError(t, err)
	assert.Equal(t, []float64{99, 0, 50}, sc.Demand)
}

func TestSampleScenarioZeroEpsilon(t *testing.T) {
	d := []float64{100, 200, 37, 0, 1000}
	inst := instanceWithDemand(t, d)
	for _, seed := range []int{0, 1, 42} {
		sc, err := SampleScenario(inst, 0, seed)
		require.NoError(t, err)
		assert.Equal(t, d, sc.Demand)
		assert.InDelta(t, 1.0, sc.Ratio(inst.D), delta)
	}
}

func TestSampleScenarioInsideBoxSet(t *testing.T) {
	inst := instanceWithDemand(t, []float64{100, 200, 37, 0, 1000})
	box, err := NewBoxSet(inst.D, 0.1)
	require.NoError(t, err)
	for seed := 0; seed < 50; seed++ {
		sc, err := SampleScenario(inst, 0.1, seed)
		require.NoError(t, err)
		assert.True(t, box.Contains(sc.Demand, 1.0), "seed %d: %v", seed, sc.Demand)
	}
}

func TestSampleScenarioInvalidEpsilon(t *testing.T) {
	inst := instanceWithDemand(t, []float64{10})
	_, err := SampleScenario(inst, -0.1, 0)
	assert.ErrorIs(t, err, ErrInvalidEpsilon)
}

func TestScenarioRatio(t *testing.T) {
	sc := &Scenario{Demand: []float64{90, 110.2, 0}}
	assert.InDelta(t, 200.0/201.0, sc.Ratio([]float64{100, 100, 0}), delta)
	assert.InDelta(t, 200.2, sc.TotalDemand(), delta)

	empty := &Scenario{Demand: []float64{0, 0}}
	assert.Equal(t, 0.0, empty.Ratio([]float64{1, 2}))
}

func TestScenarioFileName(t *testing.T) {
	assert.Equal(t, "cap41_50_3.box", ScenarioFileName("/data/orlib/cap41", 0.05, 3))
	assert.Equal(t, "cap41_0_0.box", ScenarioFileName("cap41", 0, 0))
	assert.Equal(t, "i300_1_200_12.box", ScenarioFileName("i300_1", 0.2, 12))
}

func TestWriteScenarioRoundTrip(t *testing.T) {
	inst := exampleInstance(t)
	demand := []float64{4, 2}

	var buf bytes.Buffer
	require.NoError(t, WriteScenario(&buf, inst, demand))
	assert.Equal(t, "2 2\n5 10\n5 20\n4 2\n4 4\n8 2\n", buf.String())

	back, err := ParseInstance(strings.NewReader(buf.String()), FormatORLibrary)
	require.NoError(t, err)
	assert.Equal(t, inst.NF, back.NF)
	assert.Equal(t, inst.NC, back.NC)
	assert.Equal(t, demand, back.D)
	assert.InDelta(t, 6.0, back.TotD, delta)
	assert.True(t, mat.EqualApprox(inst.C, back.C, delta))

	assert.ErrorIs(t, WriteScenario(&buf, inst, []float64{1}), ErrFormat)
}

func TestGeneratorDeterministic(t *testing.T) {
	inst := instanceWithDemand(t, []float64{100, 200, 37, 0, 1000})
	base := filepath.Join("orlib", "cap-test")

	first := NewGenerator(filepath.Join(t.TempDir(), "a"), FormatORLibrary, nil)
	second := NewGenerator(filepath.Join(t.TempDir(), "b"), FormatORLibrary, nil)

	pathsA, err := first.Generate(inst, base, 0.1, 5, 3)
	require.NoError(t, err)
	pathsB, err := second.Generate(inst, base, 0.1, 5, 3)
	require.NoError(t, err)
	require.Len(t, pathsA, 3)
	require.Len(t, pathsB, 3)

	for k := range pathsA {
		assert.Equal(t, ScenarioFileName(base, 0.1, 5+k), filepath.Base(pathsA[k]))
		a, err := os.ReadFile(pathsA[k])
		require.NoError(t, err)
		b, err := os.ReadFile(pathsB[k])
		require.NoError(t, err)
		assert.Equal(t, a, b)

		sc, err := ReadInstance(pathsA[k], FormatORLibrary)
		require.NoError(t, err)
		want, err := SampleScenario(inst, 0.1, 5+k)
		require.NoError(t, err)
		assert.Equal(t, want.Demand, sc.D)
		assert.Equal(t, inst.NF, sc.NF)
		assert.Equal(t, inst.NC, sc.NC)
		assert.InDelta(t, want.TotalDemand(), sc.TotD, delta)
	}
}

func TestGeneratorZeroQuantity(t *testing.T) {
	gen := NewGenerator(t.TempDir(), FormatORLibrary, nil)
	paths, err := gen.Generate(exampleInstance(t), "example", 0.1, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, paths)
}

func TestGeneratorAvellaNotImplemented(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	gen := NewGenerator(dir, FormatAvella, nil)
	_, err := gen.Generate(exampleInstance(t), "example", 0.1, 0, 2)
	assert.ErrorIs(t, err, ErrNotImplemented)
	_, statErr := os.Stat(dir)
	assert.True(t, os.IsNotExist(statErr))
}

func TestGeneratorUnwritableDir(t *testing.T) {
	blocker := writeFile(t, "blocker", "x")
	gen := NewGenerator(filepath.Join(blocker, "sub"), FormatORLibrary, nil)
	_, err := gen.Generate(exampleInstance(t), "example", 0.1, 0, 1)
	assert.ErrorIs(t, err, ErrIO)
}
