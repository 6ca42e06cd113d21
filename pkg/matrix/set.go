package matrix

import "sort"

// Set holds the reports of one comparison run keyed by report name, e.g.
// percentage_identity and alignment_coverage for ANI.
type Set map[string]*Matrix

func NewSet(ms ...*Matrix) Set {
	s := make(Set, len(ms))
	for _, m := range ms {
		s[m.Name()] = m
	}
	return s
}

func (s Set) Get(name string) (*Matrix, bool) {
	m, ok := s[name]
	return m, ok && m != nil
}

// Names returns the report names in sorted order.
func (s Set) Names() []string {
	names := make([]string, 0, len(s))
	for k := range s {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Clone copies the map. Matrices are immutable and shared.
func (s Set) Clone() Set {
	c := make(Set, len(s))
	for k, v := range s {
		c[k] = v
	}
	return c
}

// CheckKeys verifies every report is keyed like the first one in name order.
func (s Set) CheckKeys() error {
	names := s.Names()
	if len(names) < 2 {
		return nil
	}
	first := s[names[0]]
	for _, n := range names[1:] {
		if err := SameKeys(first, s[n]); err != nil {
			return err
		}
	}
	return nil
}
