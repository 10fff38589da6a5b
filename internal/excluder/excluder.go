package excluder

import (
	"github.com/gobwas/glob"
)

// Excluder matches watch-directory entry names against a list of glob
// patterns. Excluded entries are skipped before prefix matching.
type Excluder struct {
	globs []glob.Glob
}

// New compiles an Excluder from a list of glob patterns.
func New(patterns []string) (*Excluder, error) {
	var globs []glob.Glob
	for _, pat := range patterns {
		g, err := glob.Compile(pat)
		if err != nil {
			return nil, err
		}
		globs = append(globs, g)
	}
	return &Excluder{globs: globs}, nil
}

// IsExcluded returns true if the given name matches any exclude pattern.
func (e *Excluder) IsExcluded(name string) bool {
	for _, g := range e.globs {
		if g.Match(name) {
			return true
		}
	}
	return false
}
