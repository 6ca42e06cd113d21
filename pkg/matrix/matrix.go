// Package matrix holds the square, name-keyed score matrices that feed
// dereplication. A Matrix never changes after construction; transforms return
// a new Matrix.
package matrix

import (
	"fmt"
	"math"
	"sort"

	"github.com/yumyai/ggderep/pkg/derr"
)

// Convention declares how to read the values of a matrix.
type Convention int

const (
	// Distance: smaller means more alike, 0 is identical.
	Distance Convention = iota
	// Similarity: larger means more alike.
	Similarity
)

func (c Convention) String() string {
	switch c {
	case Distance:
		return "distance"
	case Similarity:
		return "similarity"
	default:
		return "unknown"
	}
}

func ParseConvention(s string) (Convention, error) {
	switch s {
	case "distance", "":
		return Distance, nil
	case "similarity":
		return Similarity, nil
	default:
		return Distance, derr.Configf("matrix", "unknown convention %q", s)
	}
}

// Report names used by the genome comparison programs.
const (
	PercentIdentity     = "percentage_identity"
	FullPercentIdentity = "full_percentage_identity"
	AlignmentCoverage   = "alignment_coverage"
	AlignmentLengths    = "alignment_lengths"
	MashDistance        = "mash_distance"
)

type Matrix struct {
	name   string
	conv   Convention
	names  []string
	index  map[string]int
	values []float64 // row-major, len(names)^2
}

// Pair is an unordered pair of genome names.
type Pair struct {
	A, B string
}

// New builds a matrix from dense rows ordered like names.
func New(name string, conv Convention, names []string, rows [][]float64) (*Matrix, error) {
	m, err := alloc(name, conv, names)
	if err != nil {
		return nil, err
	}
	if len(rows) != len(names) {
		return nil, derr.Missingf("matrix.New", "%s: %d rows for %d names", name, len(rows), len(names))
	}
	n := len(names)
	for i, row := range rows {
		if len(row) != n {
			return nil, derr.Missingf("matrix.New", "%s: row %q has %d values, want %d", name, names[i], len(row), n)
		}
		for j, v := range row {
			if err := finite("matrix.New", name, names[i], names[j], v); err != nil {
				return nil, err
			}
		}
		copy(m.values[i*n:(i+1)*n], row)
	}
	return m, nil
}

// finite rejects NaN and infinite cells. Comparison tools write NaN for pairs
// they could not compare.
func finite(op, name, a, b string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return derr.Missingf(op, "%s: no usable value for %s/%s (%v)", name, a, b, v)
	}
	return nil
}

// FromMap builds a matrix from a dict-of-dicts. Every row must hold a value
// for every name, the diagonal included. Names are sorted.
func FromMap(name string, conv Convention, values map[string]map[string]float64) (*Matrix, error) {
	names := make([]string, 0, len(values))
	for k := range values {
		names = append(names, k)
	}
	sort.Strings(names)
	return fromMapOrdered(name, conv, names, values)
}

func fromMapOrdered(name string, conv Convention, names []string, values map[string]map[string]float64) (*Matrix, error) {
	m, err := alloc(name, conv, names)
	if err != nil {
		return nil, err
	}

	n := len(names)
	var missing []string
	for i, a := range names {
		row := values[a]
		for j, b := range names {
			v, ok := row[b]
			if !ok {
				missing = append(missing, a+"/"+b)
				continue
			}
			if err := finite("matrix.FromMap", name, a, b, v); err != nil {
				return nil, err
			}
			m.values[i*n+j] = v
		}
	}
	if len(missing) > 0 {
		return nil, derr.MissingNames("matrix.FromMap", fmt.Sprintf("%s: %d pairs have no value", name, len(missing)), missing)
	}
	return m, nil
}

func alloc(name string, conv Convention, names []string) (*Matrix, error) {
	index := make(map[string]int, len(names))
	var dups []string
	for i, n := range names {
		if _, ok := index[n]; ok {
			dups = append(dups, n)
			continue
		}
		index[n] = i
	}
	if len(dups) > 0 {
		return nil, derr.Inconsistent("matrix", name+": duplicate genome names", dups)
	}
	return &Matrix{
		name:   name,
		conv:   conv,
		names:  append([]string(nil), names...),
		index:  index,
		values: make([]float64, len(names)*len(names)),
	}, nil
}

func (m *Matrix) Name() string { return m.name }

func (m *Matrix) Convention() Convention { return m.conv }

func (m *Matrix) Len() int { return len(m.names) }

// Names returns the keys in matrix order.
func (m *Matrix) Names() []string {
	return append([]string(nil), m.names...)
}

func (m *Matrix) Has(name string) bool {
	_, ok := m.index[name]
	return ok
}

func (m *Matrix) Index(name string) (int, bool) {
	i, ok := m.index[name]
	return i, ok
}

// At returns the value for (a, b). An unknown name is a MissingData error.
func (m *Matrix) At(a, b string) (float64, error) {
	i, ok := m.index[a]
	if !ok {
		return 0, derr.Missingf("matrix.At", "%s has no row for %q", m.name, a)
	}
	j, ok := m.index[b]
	if !ok {
		return 0, derr.Missingf("matrix.At", "%s has no column for %q", m.name, b)
	}
	return m.values[i*len(m.names)+j], nil
}

// AtIndex skips the name lookup. It panics on out of range indices.
func (m *Matrix) AtIndex(i, j int) float64 {
	return m.values[i*len(m.names)+j]
}

// Row returns a copy of the row for name.
func (m *Matrix) Row(name string) (map[string]float64, bool) {
	i, ok := m.index[name]
	if !ok {
		return nil, false
	}
	n := len(m.names)
	row := make(map[string]float64, n)
	for j, b := range m.names {
		row[b] = m.values[i*n+j]
	}
	return row, true
}

// Rename returns a copy carrying another report name.
func (m *Matrix) Rename(name string) *Matrix {
	c := m.clone()
	c.name = name
	return c
}

// Invert maps every value x to 1-x and flips the convention. Percent
// identities in [0,1] become distances in [0,1].
func (m *Matrix) Invert() *Matrix {
	c := m.clone()
	for i, v := range c.values {
		c.values[i] = 1 - v
	}
	if m.conv == Distance {
		c.conv = Similarity
	} else {
		c.conv = Distance
	}
	return c
}

// Map returns a copy with fn applied to every value.
func (m *Matrix) Map(fn func(v float64) float64) *Matrix {
	c := m.clone()
	for i, v := range c.values {
		c.values[i] = fn(v)
	}
	return c
}

// Multiply returns the element-wise product of m and o under a new name.
// Both matrices must hold the same names.
func (m *Matrix) Multiply(o *Matrix, name string) (*Matrix, error) {
	if err := SameKeys(m, o); err != nil {
		return nil, err
	}
	c := m.clone()
	c.name = name
	n := len(m.names)
	for i, a := range m.names {
		oi := o.index[a]
		for j, b := range m.names {
			c.values[i*n+j] = m.values[i*n+j] * o.values[oi*n+o.index[b]]
		}
	}
	return c, nil
}

// WithZeroed returns a copy where every listed pair is 0 in both directions.
// Pairs naming unknown genomes are ignored.
func (m *Matrix) WithZeroed(pairs []Pair) *Matrix {
	c := m.clone()
	n := len(c.names)
	for _, p := range pairs {
		i, ok := c.index[p.A]
		if !ok {
			continue
		}
		j, ok := c.index[p.B]
		if !ok {
			continue
		}
		c.values[i*n+j] = 0
		c.values[j*n+i] = 0
	}
	return c
}

// Equal reports whether both matrices hold the same names and values.
func (m *Matrix) Equal(o *Matrix) bool {
	if m == nil || o == nil {
		return m == o
	}
	if len(m.names) != len(o.names) {
		return false
	}
	for _, a := range m.names {
		for _, b := range m.names {
			x, err := m.At(a, b)
			if err != nil {
				return false
			}
			y, err := o.At(a, b)
			if err != nil || x != y {
				return false
			}
		}
	}
	return true
}

func (m *Matrix) clone() *Matrix {
	index := make(map[string]int, len(m.index))
	for k, v := range m.index {
		index[k] = v
	}
	return &Matrix{
		name:   m.name,
		conv:   m.conv,
		names:  append([]string(nil), m.names...),
		index:  index,
		values: append([]float64(nil), m.values...),
	}
}
