package attribution

import (
	"fmt"
	"iter"
	"slices"
)

// Securities is the reference table of every security the ledger and
// holdings may mention, keyed by identifier.
type Securities struct {
	byID map[string]Security
}

// NewSecurities returns a new security table.
func NewSecurities(secs ...Security) *Securities {
	s := &Securities{byID: make(map[string]Security, len(secs))}
	for _, sec := range secs {
		s.byID[sec.ID()] = sec
	}
	return s
}

// Add inserts or replaces a security.
func (s *Securities) Add(sec Security) {
	s.byID[sec.ID()] = sec
}

// Get returns the security for the given identifier.
func (s *Securities) Get(id string) (Security, bool) {
	sec, ok := s.byID[id]
	return sec, ok
}

// Resolve returns the security for the given identifier, or an error naming
// the unknown identifier.
func (s *Securities) Resolve(id string) (Security, error) {
	sec, ok := s.byID[id]
	if !ok {
		return Security{}, fmt.Errorf("unknown security %q", id)
	}
	return sec, nil
}

func (s *Securities) Len() int { return len(s.byID) }

// All returns an iterator over all securities in identifier order.
func (s *Securities) All() iter.Seq[Security] {
	ids := make([]string, 0, len(s.byID))
	for id := range s.byID {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return func(yield func(Security) bool) {
		for _, id := range ids {
			if !yield(s.byID[id]) {
				return
			}
		}
	}
}
