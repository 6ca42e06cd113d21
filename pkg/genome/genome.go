// Package genome holds the per-genome quality metadata used to pick cluster
// representatives. Every attribute is optional.
package genome

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/yumyai/ggderep/pkg/derr"
)

type Genome struct {
	Name              string
	PercentCompletion sql.NullFloat64
	PercentRedundancy sql.NullFloat64
	TotalLength       sql.NullInt64
}

// HasQuality reports whether both completion and redundancy are known.
func (g *Genome) HasQuality() bool {
	return g.PercentCompletion.Valid && g.PercentRedundancy.Valid
}

func (g *Genome) HasLength() bool {
	return g.TotalLength.Valid
}

// QualityScore is completion minus redundancy.
func (g *Genome) QualityScore() (float64, bool) {
	if !g.HasQuality() {
		return 0, false
	}
	return g.PercentCompletion.Float64 - g.PercentRedundancy.Float64, true
}

// Table keeps genomes in insertion order.
type Table struct {
	order  []string
	byName map[string]*Genome
}

func NewTable() *Table {
	return &Table{byName: make(map[string]*Genome)}
}

// Add stores g. A name seen before is a configuration error.
func (t *Table) Add(g Genome) error {
	if g.Name == "" {
		return derr.Configf("genome.Add", "genome without a name")
	}
	if _, ok := t.byName[g.Name]; ok {
		return derr.Configf("genome.Add", "genome %q is listed twice", g.Name)
	}
	gg := g
	t.byName[g.Name] = &gg
	t.order = append(t.order, g.Name)
	return nil
}

func (t *Table) Get(name string) (*Genome, bool) {
	if t == nil {
		return nil, false
	}
	g, ok := t.byName[name]
	return g, ok
}

func (t *Table) Names() []string {
	if t == nil {
		return nil
	}
	return append([]string(nil), t.order...)
}

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.order)
}

// AnyQuality reports whether at least one genome carries completion and
// redundancy estimates.
func (t *Table) AnyQuality() bool {
	if t == nil {
		return false
	}
	for _, g := range t.byName {
		if g.HasQuality() {
			return true
		}
	}
	return false
}

// Source is a labelled table, e.g. the file it was read from.
type Source struct {
	Label string
	Table *Table
}

// Combine merges sources into one table. A name present in two sources is a
// configuration error because it is unclear which entry should win.
func Combine(sources ...Source) (*Table, error) {
	out := NewTable()
	for i, a := range sources {
		for _, b := range sources[i+1:] {
			var shared []string
			for _, name := range a.Table.Names() {
				if _, ok := b.Table.Get(name); ok {
					shared = append(shared, name)
				}
			}
			if len(shared) > 0 {
				return nil, derr.Configf("genome.Combine", "%s and %s share genome names: [%s]",
					a.Label, b.Label, strings.Join(shared, ", "))
			}
		}
	}
	for _, s := range sources {
		for _, name := range s.Table.Names() {
			g, _ := s.Table.Get(name)
			if err := out.Add(*g); err != nil {
				return nil, fmt.Errorf("%s: %w", s.Label, err)
			}
		}
	}
	return out, nil
}
