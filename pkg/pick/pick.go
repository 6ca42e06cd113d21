// Package pick chooses the genome that stands in for a cluster.
package pick

import (
	"fmt"
	"strings"

	"github.com/yumyai/ggderep/pkg/derr"
	"github.com/yumyai/ggderep/pkg/genome"
	"github.com/yumyai/ggderep/pkg/matrix"
)

type Method int

const (
	// Qscore runs a bisection tournament on completion minus redundancy.
	Qscore Method = iota
	// Length keeps the longest genome.
	Length
	// Distance sums each member's distances to the rest of the cluster.
	Distance
)

func (m Method) String() string {
	switch m {
	case Qscore:
		return "Qscore"
	case Length:
		return "length"
	case Distance:
		return "distance"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "qscore", "":
		return Qscore, nil
	case "length", "longest":
		return Length, nil
	case "distance", "centrality":
		return Distance, nil
	}
	return 0, derr.Configf("pick", "unknown representative method %q (want Qscore, length or distance)", s)
}

// Direction selects which summed distance wins under the Distance method.
type Direction int

const (
	// Highest keeps the member farthest from the others in total.
	Highest Direction = iota
	// Lowest keeps the most central member.
	Lowest
)

// DefaultDirection is the behaviour of the established tool.
const DefaultDirection = Highest

func (d Direction) String() string {
	switch d {
	case Highest:
		return "highest"
	case Lowest:
		return "lowest"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "highest", "":
		return Highest, nil
	case "lowest":
		return Lowest, nil
	}
	return 0, derr.Configf("pick", "unknown distance direction %q (want highest or lowest)", s)
}

// Picker returns one member of a non-empty cluster.
type Picker interface {
	Pick(members []string) (string, error)
}

// New resolves a method into a Picker. Qscore and Length need the genome
// table, Distance needs the matrix the clusters were built from.
func New(method Method, genomes *genome.Table, m *matrix.Matrix, dir Direction) (Picker, error) {
	switch method {
	case Qscore:
		if genomes == nil {
			return nil, derr.Configf("pick", "Qscore needs a genome table")
		}
		return &qscore{genomes: genomes}, nil
	case Length:
		if genomes == nil {
			return nil, derr.Configf("pick", "length needs a genome table")
		}
		return &longest{genomes: genomes}, nil
	case Distance:
		if m == nil {
			return nil, derr.Configf("pick", "distance needs a distance matrix")
		}
		if dir != Highest && dir != Lowest {
			return nil, derr.Configf("pick", "invalid distance direction %d", int(dir))
		}
		return &central{m: m, dir: dir}, nil
	}
	return nil, derr.Configf("pick", "unknown representative method %d", int(method))
}

func trivial(members []string) (string, bool, error) {
	switch len(members) {
	case 0:
		return "", true, derr.Usagef("pick", "empty cluster")
	case 1:
		return members[0], true, nil
	}
	return "", false, nil
}

type qscore struct {
	genomes *genome.Table
}

func (q *qscore) Pick(members []string) (string, error) {
	if name, done, err := trivial(members); done {
		return name, err
	}
	return q.tournament(members)
}

func (q *qscore) tournament(members []string) (string, error) {
	if len(members) == 1 {
		return members[0], nil
	}
	mid := len(members) / 2
	left, err := q.tournament(members[:mid])
	if err != nil {
		return "", err
	}
	right, err := q.tournament(members[mid:])
	if err != nil {
		return "", err
	}
	return q.bestOfTwo(left, right)
}

// bestOfTwo prefers the higher score, then the longer genome, then a.
func (q *qscore) bestOfTwo(a, b string) (string, error) {
	ga, sa, err := q.score(a)
	if err != nil {
		return "", err
	}
	gb, sb, err := q.score(b)
	if err != nil {
		return "", err
	}
	switch {
	case sa > sb:
		return a, nil
	case sb > sa:
		return b, nil
	}

	if !ga.HasLength() || !gb.HasLength() {
		var missing []string
		for _, g := range []*genome.Genome{ga, gb} {
			if !g.HasLength() {
				missing = append(missing, g.Name)
			}
		}
		return "", derr.MissingNames("pick.Qscore", "tied scores and no total length to break the tie", missing)
	}
	if gb.TotalLength.Int64 > ga.TotalLength.Int64 {
		return b, nil
	}
	return a, nil
}

func (q *qscore) score(name string) (*genome.Genome, float64, error) {
	g, ok := q.genomes.Get(name)
	if !ok {
		return nil, 0, derr.Configf("pick.Qscore", "genome %q has no completion and redundancy estimates", name)
	}
	s, ok := g.QualityScore()
	if !ok {
		return nil, 0, derr.Configf("pick.Qscore", "genome %q has no completion and redundancy estimates", name)
	}
	return g, s, nil
}

type longest struct {
	genomes *genome.Table
}

func (l *longest) Pick(members []string) (string, error) {
	if name, done, err := trivial(members); done {
		return name, err
	}

	best := ""
	var bestLen int64
	for _, name := range members {
		g, ok := l.genomes.Get(name)
		if !ok || !g.HasLength() {
			return "", derr.MissingNames("pick.length", "no total length", []string{name})
		}
		if best == "" || g.TotalLength.Int64 > bestLen {
			best, bestLen = name, g.TotalLength.Int64
		}
	}
	return best, nil
}

type central struct {
	m   *matrix.Matrix
	dir Direction
}

func (c *central) Pick(members []string) (string, error) {
	if name, done, err := trivial(members); done {
		return name, err
	}

	best := ""
	var bestSum float64
	for _, a := range members {
		var sum float64
		for _, b := range members {
			d, err := c.m.At(a, b)
			if err != nil {
				return "", fmt.Errorf("pick.distance: %w", err)
			}
			sum += d
		}
		if best == "" || c.better(sum, bestSum) {
			best, bestSum = a, sum
		}
	}
	return best, nil
}

func (c *central) better(sum, best float64) bool {
	if c.dir == Lowest {
		return sum < best
	}
	return sum > best
}
