package session

import "slices"

// ExclusionSet is an insertion-ordered set of track ids.
//
// The zero value is empty and ready to use. Add returns a new set; the receiver is never
// modified, so sets can be shared between session values.
type ExclusionSet struct {
	ids []string
}

// NewExclusionSet returns a set holding ids, in first-seen order.
func NewExclusionSet(ids ...string) ExclusionSet {
	var s ExclusionSet
	for _, id := range ids {
		s = s.Add(id)
	}
	return s
}

// Add returns a set that also contains id. Empty ids are ignored.
func (s ExclusionSet) Add(id string) ExclusionSet {
	if id == "" || s.Has(id) {
		return s
	}
	return ExclusionSet{ids: append(slices.Clip(s.ids), id)}
}

// Has reports whether id is in the set.
func (s ExclusionSet) Has(id string) bool {
	return slices.Contains(s.ids, id)
}

// Len returns the number of ids.
func (s ExclusionSet) Len() int {
	return len(s.ids)
}

// IDs returns a copy of the ids in insertion order.
func (s ExclusionSet) IDs() []string {
	return slices.Clone(s.ids)
}

// Union returns ids of s followed by any of others not already present.
func (s ExclusionSet) Union(others ...string) []string {
	out := s.IDs()
	for _, id := range others {
		if id != "" && !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}
