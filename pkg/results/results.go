// Package results imports the matrices of an earlier comparison run from a
// directory of TAB-delimited report files.
package results

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/yumyai/ggderep/internal/util"
	"github.com/yumyai/ggderep/pkg/derr"
	"github.com/yumyai/ggderep/pkg/matrix"
)

// ErrEmptyDir is returned for a results directory without any file.
var ErrEmptyDir = errors.New("results directory is empty")

// LoadANI reads percentage_identity and alignment_coverage, plus
// full_percentage_identity and alignment_lengths when present. A missing
// full identity report is derived as identity times coverage.
func LoadANI(dir string) (matrix.Set, error) {
	files, err := listDir(dir)
	if err != nil {
		return nil, err
	}

	set := matrix.NewSet()
	for _, report := range []string{matrix.PercentIdentity, matrix.AlignmentCoverage} {
		m, err := load(dir, files, report, matrix.Similarity, true)
		if err != nil {
			return nil, err
		}
		set[report] = m
	}
	for _, report := range []string{matrix.FullPercentIdentity, matrix.AlignmentLengths} {
		m, err := load(dir, files, report, matrix.Similarity, false)
		if err != nil {
			return nil, err
		}
		if m != nil {
			set[report] = m
		}
	}

	if _, ok := set.Get(matrix.FullPercentIdentity); !ok {
		identity, _ := set.Get(matrix.PercentIdentity)
		coverage, _ := set.Get(matrix.AlignmentCoverage)
		full, err := identity.Multiply(coverage, matrix.FullPercentIdentity)
		if err != nil {
			return nil, fmt.Errorf("derive %s: %w", matrix.FullPercentIdentity, err)
		}
		set[matrix.FullPercentIdentity] = full
	}
	return set, nil
}

// LoadSourmash reads mash_distance. Values below minDistance become 0.
func LoadSourmash(dir string, minDistance float64) (matrix.Set, error) {
	if minDistance < 0 || minDistance > 1 {
		return nil, derr.Configf("results", "minimum mash distance %g is not between 0 and 1", minDistance)
	}
	files, err := listDir(dir)
	if err != nil {
		return nil, err
	}

	m, err := load(dir, files, matrix.MashDistance, matrix.Distance, true)
	if err != nil {
		return nil, err
	}
	if minDistance > 0 {
		m = m.Map(func(v float64) float64 {
			if v < minDistance {
				return 0
			}
			return v
		})
	}
	return matrix.NewSet(m), nil
}

func listDir(dir string) ([]string, error) {
	if !util.DirExists(dir) {
		return nil, fmt.Errorf("%w: results directory %s", os.ErrNotExist, dir)
	}
	files, err := util.FilesIn(dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyDir, dir)
	}
	return files, nil
}

// match returns the files whose name contains "<report>.txt". Lookups for
// percentage_identity skip the full_percentage_identity files.
func match(files []string, report string) []string {
	want := report + ".txt"
	var out []string
	for _, f := range files {
		if !strings.Contains(f, want) {
			continue
		}
		if report == matrix.PercentIdentity && strings.Contains(f, matrix.FullPercentIdentity) {
			continue
		}
		out = append(out, f)
	}
	return out
}

func load(dir string, files []string, report string, conv matrix.Convention, required bool) (*matrix.Matrix, error) {
	found := match(files, report)
	switch {
	case len(found) > 1:
		return nil, derr.Configf("results", "%s holds %d files for the %s report %v, keep only one", dir, len(found), report, found)
	case len(found) == 0 && required:
		return nil, derr.Configf("results", "%s has no file for the %s report", dir, report)
	case len(found) == 0:
		return nil, nil
	}

	m, err := matrix.LoadTSV(filepath.Join(dir, found[0]), report, conv)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", report, err)
	}
	return m, nil
}
