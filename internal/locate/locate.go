package locate

import (
	"github.com/vipteryx/centretracker/internal/schedule"
)

// Source is one raw data source. Value holds a decoded JSON value (see ParseJSON); Text holds
// a blob believed to embed JSON, such as inline script content. Origin records provenance.
type Source struct {
	Origin string
	Value  any
	Text   string
}

// Strategy is one heuristic for finding session records in a source
type Strategy interface {
	Name() string
	Locate(src Source) ([]schedule.Record, bool)
}

// Match describes the candidate a Locator accepted
type Match struct {
	Origin   string
	Strategy string
	Records  []schedule.Record
}

// Locator tries its strategies in priority order over each source in caller order
type Locator struct {
	Strategies []Strategy
}

// DefaultLocator returns the structural, path-probe, embedded-JSON chain
func DefaultLocator() *Locator {
	structural := NewStructuralSearch()
	return &Locator{
		Strategies: []Strategy{
			structural,
			NewPathProbe(),
			&EmbeddedJSON{Inner: structural},
		},
	}
}

// Locate returns the first candidate found. Sources are tried in the given order; for each
// source the strategies run in priority order and later ones are skipped once one succeeds.
func (l *Locator) Locate(sources []Source) (*Match, bool) {
	for _, src := range sources {
		if m, ok := l.LocateOne(src); ok {
			return m, true
		}
	}
	return nil, false
}

// LocateOne applies the strategy chain to a single source
func (l *Locator) LocateOne(src Source) (*Match, bool) {
	for _, s := range l.Strategies {
		records, ok := s.Locate(src)
		if !ok || len(records) == 0 {
			continue
		}
		return &Match{Origin: src.Origin, Strategy: s.Name(), Records: records}, true
	}
	return nil, false
}
