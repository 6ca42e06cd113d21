// Package cluster groups genomes whose pairwise distance is at or below a
// threshold. Merges are eager, so one pass over every unordered pair yields
// the transitive closure.
package cluster

import (
	"context"
	"fmt"
	"sort"

	"github.com/yumyai/ggderep/pkg/derr"
	"github.com/yumyai/ggderep/pkg/matrix"
)

// Name formats the identifier of the i-th cluster, 1-indexed.
func Name(i int) string {
	return fmt.Sprintf("cluster_%06d", i)
}

type Cluster struct {
	Name    string
	Genomes []string
}

// Engine holds the partition of a genome roster. It starts with every
// genome alone in its own cluster.
type Engine struct {
	genomes []string

	// members is indexed by creation order; a merged-away cluster keeps an
	// empty slot until Finalize prunes it.
	members  [][]string
	ofGenome map[string]int

	merges int
	final  []Cluster
}

func NewEngine(genomes []string) (*Engine, error) {
	e := &Engine{
		genomes:  append([]string(nil), genomes...),
		members:  make([][]string, len(genomes)),
		ofGenome: make(map[string]int, len(genomes)),
	}

	var dups []string
	for i, g := range genomes {
		if _, ok := e.ofGenome[g]; ok {
			dups = append(dups, g)
			continue
		}
		e.ofGenome[g] = i
		e.members[i] = []string{g}
	}
	if len(dups) > 0 {
		return nil, derr.Inconsistent("cluster", "genomes listed more than once", dups)
	}
	return e, nil
}

// SameCluster reports whether a and b currently share a cluster.
func (e *Engine) SameCluster(a, b string) bool {
	ca, okA := e.ofGenome[a]
	cb, okB := e.ofGenome[b]
	return okA && okB && ca == cb
}

// Merge moves every member of a's cluster into b's cluster.
func (e *Engine) Merge(a, b string) error {
	if e.final != nil {
		return derr.Usagef("cluster.Merge", "clusters are already finalized")
	}
	from, ok := e.ofGenome[a]
	if !ok {
		return derr.MissingNames("cluster.Merge", "genome is not in the roster", []string{a})
	}
	to, ok := e.ofGenome[b]
	if !ok {
		return derr.MissingNames("cluster.Merge", "genome is not in the roster", []string{b})
	}
	if from == to {
		return nil
	}

	for _, g := range e.members[from] {
		e.members[to] = append(e.members[to], g)
		e.ofGenome[g] = to
	}
	e.members[from] = nil
	e.merges++
	return nil
}

// Run scans every unordered pair in roster order and merges the clusters of
// pairs whose distance is at most threshold. tick, when set, is called with
// the number of pairs scanned for each row.
func (e *Engine) Run(ctx context.Context, m *matrix.Matrix, threshold float64, tick func(int)) error {
	if m.Convention() != matrix.Distance {
		return derr.Configf("cluster.Run", "matrix %q holds %s values, clustering needs distances", m.Name(), m.Convention())
	}
	if threshold < 0 || threshold > 1 {
		return derr.Configf("cluster.Run", "threshold %g is not between 0 and 1", threshold)
	}

	n := len(e.genomes)
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		g1 := e.genomes[i]
		for j := i + 1; j < n; j++ {
			g2 := e.genomes[j]
			if e.SameCluster(g1, g2) {
				continue
			}
			d, err := m.At(g1, g2)
			if err != nil {
				return fmt.Errorf("cluster.Run: %w", err)
			}
			if d > threshold {
				continue
			}
			if err := e.Merge(g1, g2); err != nil {
				return err
			}
		}
		if tick != nil && n-i-1 > 0 {
			tick(n - i - 1)
		}
	}
	return nil
}

// Merges returns how many merges changed the partition.
func (e *Engine) Merges() int { return e.merges }

// Finalize drops empty clusters and names the survivors cluster_000001 and
// onward, following the order in which the clusters were created. The engine
// rejects merges afterwards.
func (e *Engine) Finalize() []Cluster {
	if e.final != nil {
		return cloneClusters(e.final)
	}

	var alive []int
	for id, members := range e.members {
		if len(members) > 0 {
			alive = append(alive, id)
		}
	}
	sort.Ints(alive)

	e.final = make([]Cluster, 0, len(alive))
	for i, id := range alive {
		e.final = append(e.final, Cluster{
			Name:    Name(i + 1),
			Genomes: append([]string(nil), e.members[id]...),
		})
	}
	return cloneClusters(e.final)
}

func cloneClusters(cs []Cluster) []Cluster {
	out := make([]Cluster, len(cs))
	for i, c := range cs {
		out[i] = Cluster{Name: c.Name, Genomes: append([]string(nil), c.Genomes...)}
	}
	return out
}
