// Package stringset provides the string membership set used for skip-folder
// matching, subtitle extension checks and extends-cycle detection.
package stringset

// Set wraps a map for common set operations. Because it is equivalent to a
// map, make/range/len still work with Set.
type Set map[string]struct{}

// New creates a new Set containing xs.
func New(xs ...string) Set {
	s := make(Set)
	for _, x := range xs {
		s.Add(x)
	}
	return s
}

// Add adds x to s.
func (s Set) Add(x string) {
	s[x] = struct{}{}
}

// Remove removes x from s.
func (s Set) Remove(x string) {
	delete(s, x)
}

// Has returns true if x is in s.
func (s Set) Has(x string) bool {
	_, ok := s[x]
	return ok
}
