// Package suppress zeroes pairwise scores that come from weak alignments.
//
// Two rules mark a pair (g1, g2):
//
//   - full identity floor: full_percentage_identity below
//     MinFullPercentIdentity/100 in either direction;
//   - alignment fraction floor: alignment_coverage below MinAlignmentFraction
//     in either direction, unless both alignment lengths exceed
//     SignificantAlignmentLength.
//
// Every marked pair is set to 0 in every matrix of the set, in both
// directions. Applying the same Params twice gives the same matrices as
// applying them once.
package suppress

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/yumyai/ggderep/pkg/derr"
	"github.com/yumyai/ggderep/pkg/matrix"
)

type Params struct {
	// MinFullPercentIdentity is a percentage (0-100). 0 disables the rule.
	MinFullPercentIdentity float64
	// MinAlignmentFraction is a fraction (0-1). 0 disables the rule.
	MinAlignmentFraction float64
	// SignificantAlignmentLength rescues pairs from the alignment fraction
	// rule when both directional alignment lengths are longer. 0 disables it.
	SignificantAlignmentLength int64
}

// Enabled reports whether any rule is configured.
func (p Params) Enabled() bool {
	return p.MinFullPercentIdentity > 0 || p.MinAlignmentFraction > 0
}

func (p Params) Validate() error {
	if p.MinFullPercentIdentity < 0 || p.MinFullPercentIdentity > 100 {
		return derr.Configf("suppress", "full percent identity floor %.2f is not a percentage", p.MinFullPercentIdentity)
	}
	if p.MinAlignmentFraction < 0 || p.MinAlignmentFraction > 1 {
		return derr.Configf("suppress", "alignment fraction %.2f is not between 0 and 1", p.MinAlignmentFraction)
	}
	if p.SignificantAlignmentLength < 0 {
		return derr.Configf("suppress", "significant alignment length %d is negative", p.SignificantAlignmentLength)
	}
	return nil
}

// Hit is an example of a flagged ordered pair.
type Hit struct {
	A, B  string
	Value float64
}

// Stats counts ordered pairs per rule. Zeroed counts distinct unordered pairs.
type Stats struct {
	RemovedByFullIdentity      int
	FlaggedByAlignmentFraction int
	RescuedByLength            int
	Zeroed                     int

	FullIdentityExample      *Hit
	AlignmentFractionExample *Hit
}

// AllRescued reports the alignment fraction rule flagged pairs but the length
// rescue saved every one of them.
func (s Stats) AllRescued() bool {
	return s.FlaggedByAlignmentFraction > 0 && s.FlaggedByAlignmentFraction == s.RescuedByLength
}

type Suppressor struct {
	params  Params
	workers int
}

func New(p Params) *Suppressor {
	return &Suppressor{params: p, workers: runtime.GOMAXPROCS(0)}
}

// WithWorkers bounds how many rows are evaluated concurrently.
func (s *Suppressor) WithWorkers(n int) *Suppressor {
	if n > 0 {
		s.workers = n
	}
	return s
}

type rowMarks struct {
	pairs       []matrix.Pair
	byFull      int
	byFraction  int
	rescued     int
	fullHit     *Hit
	fractionHit *Hit
}

// Apply evaluates both rules and returns a new set with the marked pairs
// zeroed. The input set is not modified.
func (s *Suppressor) Apply(ctx context.Context, set matrix.Set) (matrix.Set, Stats, error) {
	var stats Stats
	if err := s.params.Validate(); err != nil {
		return nil, stats, err
	}
	if !s.params.Enabled() {
		return set.Clone(), stats, nil
	}

	full, cov, lengths, err := s.inputs(set)
	if err != nil {
		return nil, stats, err
	}
	if err := set.CheckKeys(); err != nil {
		return nil, stats, err
	}

	var ref *matrix.Matrix
	if full != nil {
		ref = full
	} else {
		ref = cov
	}
	names := ref.Names()
	marks := make([]rowMarks, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i := range names {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			marks[i] = s.markRow(names, i, full, cov, lengths)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, stats, err
	}

	seen := make(map[matrix.Pair]struct{})
	var zero []matrix.Pair
	for _, rm := range marks {
		stats.RemovedByFullIdentity += rm.byFull
		stats.FlaggedByAlignmentFraction += rm.byFraction
		stats.RescuedByLength += rm.rescued
		if stats.FullIdentityExample == nil && rm.fullHit != nil {
			stats.FullIdentityExample = rm.fullHit
		}
		if stats.AlignmentFractionExample == nil && rm.fractionHit != nil {
			stats.AlignmentFractionExample = rm.fractionHit
		}
		for _, p := range rm.pairs {
			key := p
			if key.B < key.A {
				key = matrix.Pair{A: p.B, B: p.A}
			}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			zero = append(zero, key)
		}
	}
	stats.Zeroed = len(zero)

	out := make(matrix.Set, len(set))
	for name, m := range set {
		if len(zero) == 0 {
			out[name] = m
			continue
		}
		out[name] = m.WithZeroed(zero)
	}
	return out, stats, nil
}

func (s *Suppressor) inputs(set matrix.Set) (full, cov, lengths *matrix.Matrix, err error) {
	p := s.params
	if p.MinFullPercentIdentity > 0 {
		m, ok := set.Get(matrix.FullPercentIdentity)
		if !ok {
			return nil, nil, nil, derr.Configf("suppress",
				"a full percent identity floor is set but there is no %s matrix (found: %v)", matrix.FullPercentIdentity, set.Names())
		}
		full = m
	}
	if p.MinAlignmentFraction > 0 {
		m, ok := set.Get(matrix.AlignmentCoverage)
		if !ok {
			return nil, nil, nil, derr.Configf("suppress",
				"an alignment fraction floor is set but there is no %s matrix (found: %v)", matrix.AlignmentCoverage, set.Names())
		}
		cov = m
		if p.SignificantAlignmentLength > 0 {
			m, ok := set.Get(matrix.AlignmentLengths)
			if !ok {
				return nil, nil, nil, derr.Configf("suppress",
					"a significant alignment length is set but there is no %s matrix", matrix.AlignmentLengths)
			}
			lengths = m
		}
	}
	return full, cov, lengths, nil
}

// markRow evaluates every ordered pair (names[i], g2). Matrices are read-only
// here; keys were checked beforehand, so lookups cannot fail.
func (s *Suppressor) markRow(names []string, i int, full, cov, lengths *matrix.Matrix) rowMarks {
	var rm rowMarks
	g1 := names[i]
	floor := s.params.MinFullPercentIdentity / 100

	for j, g2 := range names {
		if i == j {
			continue
		}
		pair := matrix.Pair{A: g1, B: g2}

		if full != nil {
			fwd, _ := full.At(g1, g2)
			rev, _ := full.At(g2, g1)
			if fwd < floor || rev < floor {
				rm.byFull++
				rm.pairs = append(rm.pairs, pair)
				if rm.fullHit == nil {
					rm.fullHit = &Hit{A: g1, B: g2, Value: fwd}
				}
			}
		}

		if cov != nil {
			fwd, _ := cov.At(g1, g2)
			rev, _ := cov.At(g2, g1)
			if fwd < s.params.MinAlignmentFraction || rev < s.params.MinAlignmentFraction {
				rm.byFraction++
				if lengths != nil {
					l1, _ := lengths.At(g1, g2)
					l2, _ := lengths.At(g2, g1)
					if min(l1, l2) > float64(s.params.SignificantAlignmentLength) {
						rm.rescued++
						continue
					}
				}
				rm.pairs = append(rm.pairs, pair)
				if rm.fractionHit == nil {
					rm.fractionHit = &Hit{A: g1, B: g2, Value: fwd}
				}
			}
		}
	}
	return rm
}
