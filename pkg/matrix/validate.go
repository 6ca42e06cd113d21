package matrix

import (
	"fmt"

	"github.com/yumyai/ggderep/pkg/derr"
)

// Validate checks that the keys of m are exactly expected. Names missing from
// the matrix are reported first, then matrix names missing from expected.
func Validate(m *Matrix, expected []string) error {
	known := make(map[string]struct{}, len(expected))
	var notInMatrix []string
	for _, name := range expected {
		known[name] = struct{}{}
		if !m.Has(name) {
			notInMatrix = append(notInMatrix, name)
		}
	}

	var notExpected []string
	for _, name := range m.names {
		if _, ok := known[name]; !ok {
			notExpected = append(notExpected, name)
		}
	}

	switch {
	case len(notInMatrix) > 0:
		return derr.Inconsistent("matrix.Validate",
			fmt.Sprintf("%d genome names do not appear in the %s matrix", len(notInMatrix), m.name), notInMatrix)
	case len(notExpected) > 0:
		return derr.Inconsistent("matrix.Validate",
			fmt.Sprintf("%d names of the %s matrix do not appear in the genome sources", len(notExpected), m.name), notExpected)
	}
	return nil
}

// SameKeys checks that a and b are keyed by the same names.
func SameKeys(a, b *Matrix) error {
	if err := Validate(b, a.names); err != nil {
		return fmt.Errorf("%s vs %s: %w", a.name, b.name, err)
	}
	return nil
}
