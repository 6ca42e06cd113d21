package pick

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yumyai/ggderep/pkg/derr"
	"github.com/yumyai/ggderep/pkg/genome"
	"github.com/yumyai/ggderep/pkg/matrix"
)

func quality(name string, completion, redundancy float64, length int64) genome.Genome {
	g := genome.Genome{
		Name:              name,
		PercentCompletion: sql.NullFloat64{Float64: completion, Valid: true},
		PercentRedundancy: sql.NullFloat64{Float64: redundancy, Valid: true},
	}
	if length > 0 {
		g.TotalLength = sql.NullInt64{Int64: length, Valid: true}
	}
	return g
}

func table(t *testing.T, gs ...genome.Genome) *genome.Table {
	t.Helper()
	tbl := genome.NewTable()
	for _, g := range gs {
		require.NoError(t, tbl.Add(g))
	}
	return tbl
}

func TestParseMethod(t *testing.T) {
	for in, want := range map[string]Method{
		"Qscore":   Qscore,
		"qscore":   Qscore,
		"length":   Length,
		"distance": Distance,
	} {
		got, err := ParseMethod(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseMethod("random")
	assert.ErrorIs(t, err, derr.ErrConfiguration)

	d, err := ParseDirection("lowest")
	require.NoError(t, err)
	assert.Equal(t, Lowest, d)
	_, err = ParseDirection("sideways")
	assert.ErrorIs(t, err, derr.ErrConfiguration)
}

func TestQscoreHigherScoreWins(t *testing.T) {
	tbl := table(t, quality("P", 90, 5, 0), quality("Q", 80, 2, 0))
	p, err := New(Qscore, tbl, nil, DefaultDirection)
	require.NoError(t, err)

	got, err := p.Pick([]string{"P", "Q"})
	require.NoError(t, err)
	assert.Equal(t, "P", got)

	got, err = p.Pick([]string{"Q", "P"})
	require.NoError(t, err)
	assert.Equal(t, "P", got)
}

func TestQscoreTieBreaks(t *testing.T) {
	tbl := table(t,
		quality("A", 90, 0, 100),
		quality("B", 95, 5, 200),
		quality("C", 91, 1, 200),
		quality("D", 50, 0, 900),
	)
	p, err := New(Qscore, tbl, nil, DefaultDirection)
	require.NoError(t, err)

	got, err := p.Pick([]string{"A", "B"})
	require.NoError(t, err)
	assert.Equal(t, "B", got, "longer genome breaks a score tie")

	got, err = p.Pick([]string{"B", "C"})
	require.NoError(t, err)
	assert.Equal(t, "B", got, "first compared wins a full tie")

	got, err = p.Pick([]string{"D", "A", "C", "B"})
	require.NoError(t, err)
	assert.Equal(t, "C", got)
}

func TestQscoreMissingQuality(t *testing.T) {
	tbl := table(t, quality("P", 90, 5, 0), genome.Genome{Name: "Q"})
	p, err := New(Qscore, tbl, nil, DefaultDirection)
	require.NoError(t, err)

	_, err = p.Pick([]string{"P", "Q"})
	require.ErrorIs(t, err, derr.ErrConfiguration)
	assert.Contains(t, err.Error(), `"Q"`)
}

func TestQscoreTieWithoutLength(t *testing.T) {
	tbl := table(t, quality("P", 90, 5, 0), quality("Q", 85, 0, 0))
	p, err := New(Qscore, tbl, nil, DefaultDirection)
	require.NoError(t, err)

	_, err = p.Pick([]string{"P", "Q"})
	assert.ErrorIs(t, err, derr.ErrMissingData)
}

func TestLengthFirstMaximumWins(t *testing.T) {
	tbl := table(t, quality("A", 0, 0, 10), quality("B", 0, 0, 30), quality("C", 0, 0, 30))
	p, err := New(Length, tbl, nil, DefaultDirection)
	require.NoError(t, err)

	got, err := p.Pick([]string{"A", "B", "C"})
	require.NoError(t, err)
	assert.Equal(t, "B", got)

	got, err = p.Pick([]string{"C", "B", "A"})
	require.NoError(t, err)
	assert.Equal(t, "C", got)
}

func TestLengthMissing(t *testing.T) {
	tbl := table(t, quality("A", 0, 0, 10), genome.Genome{Name: "B"})
	p, err := New(Length, tbl, nil, DefaultDirection)
	require.NoError(t, err)

	_, err = p.Pick([]string{"A", "B"})
	assert.ErrorIs(t, err, derr.ErrMissingData)
}

func TestDistanceDirection(t *testing.T) {
	m, err := matrix.New(matrix.MashDistance, matrix.Distance, []string{"A", "B", "C"}, [][]float64{
		{0, 0.01, 0.02},
		{0.01, 0, 0.04},
		{0.02, 0.04, 0},
	})
	require.NoError(t, err)

	highest, err := New(Distance, nil, m, Highest)
	require.NoError(t, err)
	got, err := highest.Pick([]string{"A", "B", "C"})
	require.NoError(t, err)
	assert.Equal(t, "C", got)

	lowest, err := New(Distance, nil, m, Lowest)
	require.NoError(t, err)
	got, err = lowest.Pick([]string{"A", "B", "C"})
	require.NoError(t, err)
	assert.Equal(t, "A", got)
}

func TestDistanceTieKeepsFirst(t *testing.T) {
	m, err := matrix.New(matrix.MashDistance, matrix.Distance, []string{"A", "B"}, [][]float64{{0, 0.01}, {0.01, 0}})
	require.NoError(t, err)

	for _, dir := range []Direction{Highest, Lowest} {
		p, err := New(Distance, nil, m, dir)
		require.NoError(t, err)
		got, err := p.Pick([]string{"B", "A"})
		require.NoError(t, err)
		assert.Equal(t, "B", got, dir.String())
	}
}

func TestSingletonSkipsMetadata(t *testing.T) {
	empty := genome.NewTable()
	m, err := matrix.New(matrix.MashDistance, matrix.Distance, []string{"other"}, [][]float64{{0}})
	require.NoError(t, err)

	for _, method := range []Method{Qscore, Length, Distance} {
		p, err := New(method, empty, m, DefaultDirection)
		require.NoError(t, err)
		got, err := p.Pick([]string{"lonely"})
		require.NoError(t, err, method.String())
		assert.Equal(t, "lonely", got, method.String())

		_, err = p.Pick(nil)
		assert.ErrorIs(t, err, derr.ErrUsage, method.String())
	}
}

func TestNewNeedsInputs(t *testing.T) {
	_, err := New(Qscore, nil, nil, DefaultDirection)
	assert.ErrorIs(t, err, derr.ErrConfiguration)
	_, err = New(Distance, genome.NewTable(), nil, DefaultDirection)
	assert.ErrorIs(t, err, derr.ErrConfiguration)
}
