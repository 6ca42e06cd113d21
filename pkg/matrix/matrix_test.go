package matrix

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yumyai/ggderep/pkg/derr"
)

func abcd(t *testing.T) *Matrix {
	t.Helper()
	m, err := New(MashDistance, Distance, []string{"A", "B", "C", "D"}, [][]float64{
		{0, 0.01, 0.5, 0.5},
		{0.01, 0, 0.5, 0.5},
		{0.5, 0.5, 0, 0.01},
		{0.5, 0.5, 0.01, 0},
	})
	require.NoError(t, err)
	return m
}

func TestNewAndAt(t *testing.T) {
	m := abcd(t)

	assert.Equal(t, 4, m.Len())
	assert.Equal(t, []string{"A", "B", "C", "D"}, m.Names())
	assert.Equal(t, Distance, m.Convention())

	v, err := m.At("A", "B")
	require.NoError(t, err)
	assert.Equal(t, 0.01, v)

	_, err = m.At("A", "Z")
	assert.ErrorIs(t, err, derr.ErrMissingData)
}

func TestNewRejectsRaggedRows(t *testing.T) {
	_, err := New("x", Distance, []string{"A", "B"}, [][]float64{{0, 1}, {1}})
	assert.ErrorIs(t, err, derr.ErrMissingData)

	_, err = New("x", Distance, []string{"A", "A"}, [][]float64{{0, 1}, {1, 0}})
	assert.ErrorIs(t, err, derr.ErrConsistency)
}

func TestFromMapRequiresEveryPair(t *testing.T) {
	_, err := FromMap("x", Distance, map[string]map[string]float64{
		"A": {"A": 0, "B": 0.2},
		"B": {"B": 0},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, derr.ErrMissingData)
	assert.Contains(t, err.Error(), "B/A")
}

func TestNonFiniteValuesAreMissing(t *testing.T) {
	_, err := New("x", Distance, []string{"A", "B"}, [][]float64{{0, math.NaN()}, {0.1, 0}})
	require.ErrorIs(t, err, derr.ErrMissingData)
	assert.Contains(t, err.Error(), "A/B")

	_, err = New("x", Distance, []string{"A", "B"}, [][]float64{{0, 0.1}, {math.Inf(1), 0}})
	assert.ErrorIs(t, err, derr.ErrMissingData)

	_, err = FromMap("x", Distance, map[string]map[string]float64{
		"A": {"A": 0, "B": 0.2},
		"B": {"A": math.Inf(-1), "B": 0},
	})
	require.ErrorIs(t, err, derr.ErrMissingData)
	assert.Contains(t, err.Error(), "B/A")
}

func TestNamesReturnsCopy(t *testing.T) {
	m := abcd(t)
	names := m.Names()
	names[0] = "changed"
	assert.Equal(t, "A", m.Names()[0])
}

func TestInvert(t *testing.T) {
	m, err := New(PercentIdentity, Similarity, []string{"A", "B"}, [][]float64{{1, 0.97}, {0.96, 1}})
	require.NoError(t, err)

	d := m.Invert()
	assert.Equal(t, Distance, d.Convention())
	v, _ := d.At("A", "B")
	assert.InDelta(t, 0.03, v, 1e-12)
	v, _ = d.At("A", "A")
	assert.Equal(t, 0.0, v)

	// the source is untouched
	v, _ = m.At("A", "B")
	assert.Equal(t, 0.97, v)
}

func TestMultiply(t *testing.T) {
	id, err := New(PercentIdentity, Similarity, []string{"A", "B"}, [][]float64{{1, 0.97}, {0.97, 1}})
	require.NoError(t, err)
	cov, err := New(AlignmentCoverage, Similarity, []string{"B", "A"}, [][]float64{{1, 0.5}, {0.08, 1}})
	require.NoError(t, err)

	full, err := id.Multiply(cov, FullPercentIdentity)
	require.NoError(t, err)
	assert.Equal(t, FullPercentIdentity, full.Name())

	v, _ := full.At("A", "B")
	assert.InDelta(t, 0.97*0.08, v, 1e-12)
	v, _ = full.At("B", "A")
	assert.InDelta(t, 0.97*0.5, v, 1e-12)
}

func TestMultiplyRejectsDifferentKeys(t *testing.T) {
	a, _ := New("a", Similarity, []string{"A", "B"}, [][]float64{{1, 1}, {1, 1}})
	b, _ := New("b", Similarity, []string{"A", "C"}, [][]float64{{1, 1}, {1, 1}})

	_, err := a.Multiply(b, "c")
	assert.ErrorIs(t, err, derr.ErrConsistency)
}

func TestWithZeroedIsSymmetricAndCopies(t *testing.T) {
	m := abcd(t)
	z := m.WithZeroed([]Pair{{A: "A", B: "C"}, {A: "A", B: "nope"}})

	v, _ := z.At("A", "C")
	assert.Equal(t, 0.0, v)
	v, _ = z.At("C", "A")
	assert.Equal(t, 0.0, v)

	v, _ = m.At("A", "C")
	assert.Equal(t, 0.5, v)
	assert.False(t, m.Equal(z))
	assert.True(t, z.Equal(z.WithZeroed([]Pair{{A: "C", B: "A"}})))
}

func TestValidate(t *testing.T) {
	m := abcd(t)

	assert.NoError(t, Validate(m, []string{"D", "C", "B", "A"}))

	err := Validate(m, []string{"A", "B", "C", "D", "E"})
	require.ErrorIs(t, err, derr.ErrConsistency)
	assert.Contains(t, err.Error(), "[E]")

	err = Validate(m, []string{"A", "B"})
	require.ErrorIs(t, err, derr.ErrConsistency)
	assert.Contains(t, err.Error(), "[C, D]")
}

func TestValidateListsAtMostFive(t *testing.T) {
	m := abcd(t)
	err := Validate(m, []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J"})

	var e *derr.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, []string{"E", "F", "G", "H", "I"}, e.Names)
}

func TestReadTSV(t *testing.T) {
	in := "key\tA\tB\tC\n" +
		"C\t0.5\t0.4\t0\n" +
		"A\t0\t0.01\t0.5\n" +
		"\n" +
		"B\t0.01\t0\t0.4\r\n"

	m, err := ReadTSV(strings.NewReader(in), MashDistance, Distance)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, m.Names())

	v, _ := m.At("C", "B")
	assert.Equal(t, 0.4, v)
}

func TestReadTSVErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		kind error
	}{
		{"missing row", "key\tA\tB\nA\t0\t1\n", derr.ErrMissingData},
		{"extra row", "key\tA\nA\t0\nB\t1\n", derr.ErrConsistency},
		{"duplicate row", "key\tA\nA\t0\nA\t0\n", derr.ErrConsistency},
		{"empty", "", derr.ErrMissingData},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadTSV(strings.NewReader(tt.in), "x", Distance)
			assert.ErrorIs(t, err, tt.kind)
		})
	}

	_, err := ReadTSV(strings.NewReader("key\tA\nA\tabc\n"), "x", Distance)
	assert.Error(t, err)

	_, err = ReadTSV(strings.NewReader("key\tA\tB\nA\t0\n"), "x", Distance)
	assert.Error(t, err)
}

func TestReadTSVRejectsNonFinite(t *testing.T) {
	for _, cell := range []string{"nan", "NaN", "inf", "-Inf"} {
		t.Run(cell, func(t *testing.T) {
			in := "key\tA\tB\nA\t0\t" + cell + "\nB\t" + cell + "\t0\n"
			_, err := ReadTSV(strings.NewReader(in), MashDistance, Distance)
			require.ErrorIs(t, err, derr.ErrMissingData)
			assert.Contains(t, err.Error(), "line 2")
			assert.Contains(t, err.Error(), "A/B")
		})
	}
}

func TestReadTSVExtraRowsAreSorted(t *testing.T) {
	in := "key\tA\nA\t0\nZ\t1\nM\t1\nB\t1\nQ\t1\n"
	for i := 0; i < 5; i++ {
		_, err := ReadTSV(strings.NewReader(in), "x", Distance)
		var e *derr.Error
		require.ErrorAs(t, err, &e)
		assert.Equal(t, []string{"B", "M", "Q", "Z"}, e.Names)
	}
}

func TestWriteTSVRoundTrip(t *testing.T) {
	m := abcd(t)

	var buf bytes.Buffer
	require.NoError(t, WriteTSV(&buf, m))
	assert.True(t, strings.HasPrefix(buf.String(), "key\tA\tB\tC\tD\n"))

	back, err := ReadTSV(&buf, m.Name(), Distance)
	require.NoError(t, err)
	assert.True(t, m.Equal(back))
}

func TestSetCheckKeys(t *testing.T) {
	a, _ := New("a", Similarity, []string{"A", "B"}, [][]float64{{1, 1}, {1, 1}})
	b, _ := New("b", Similarity, []string{"B", "A"}, [][]float64{{1, 1}, {1, 1}})
	c, _ := New("c", Similarity, []string{"A"}, [][]float64{{1}})

	assert.NoError(t, NewSet(a, b).CheckKeys())
	assert.ErrorIs(t, NewSet(a, b, c).CheckKeys(), derr.ErrConsistency)
	assert.Equal(t, []string{"a", "b", "c"}, NewSet(c, b, a).Names())
}
