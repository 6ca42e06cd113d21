package request

import (
	"database/sql"
	"fmt"

	"github.com/yumyai/ggderep/pkg/derr"
	"github.com/yumyai/ggderep/pkg/genome"
	"github.com/yumyai/ggderep/pkg/matrix"
)

// MatrixSet builds the report matrices of the request.
func (r *DereplicateRequest) MatrixSet() (matrix.Set, error) {
	if len(r.Matrices) == 0 {
		return nil, derr.Configf("request", "no matrices given")
	}
	set := matrix.NewSet()
	for _, f := range r.Matrices {
		if f.Name == "" {
			return nil, derr.Configf("request", "matrix without a name")
		}
		if _, dup := set[f.Name]; dup {
			return nil, derr.Configf("request", "matrix %q given twice", f.Name)
		}
		conv, err := matrix.ParseConvention(f.Convention)
		if err != nil {
			return nil, err
		}
		m, err := matrix.New(f.Name, conv, f.Names, f.Values)
		if err != nil {
			return nil, fmt.Errorf("matrix %s: %w", f.Name, err)
		}
		set[f.Name] = m
	}
	return set, nil
}

// GenomeTable returns nil when the request carries no genomes.
func (r *DereplicateRequest) GenomeTable() (*genome.Table, error) {
	if len(r.Genomes) == 0 {
		return nil, nil
	}
	t := genome.NewTable()
	for _, f := range r.Genomes {
		if err := t.Add(f.Genome()); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func (f GenomeField) Genome() genome.Genome {
	g := genome.Genome{Name: f.Name}
	if f.PercentCompletion != nil {
		g.PercentCompletion = sql.NullFloat64{Float64: *f.PercentCompletion, Valid: true}
	}
	if f.PercentRedundancy != nil {
		g.PercentRedundancy = sql.NullFloat64{Float64: *f.PercentRedundancy, Valid: true}
	}
	if f.TotalLength != nil {
		g.TotalLength = sql.NullInt64{Int64: *f.TotalLength, Valid: true}
	}
	return g
}
