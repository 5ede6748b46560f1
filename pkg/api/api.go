package api

import (
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Identifier is a vocabulary concept id. Valid identifiers are positive.
type Identifier = int64

// IDSet is an unordered set of concept ids.
type IDSet map[Identifier]struct{}

func NewIDSet(ids ...Identifier) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s IDSet) Has(id Identifier) bool {
	_, exists := s[id]
	return exists
}

func (s IDSet) Add(id Identifier) {
	s[id] = struct{}{}
}

func (s IDSet) AddAll(other IDSet) {
	for id := range other {
		s[id] = struct{}{}
	}
}

func (s IDSet) Clone() IDSet {
	c := make(IDSet, len(s))
	for id := range s {
		c[id] = struct{}{}
	}
	return c
}

// ContainsAll reports whether every member of other is in s.
func (s IDSet) ContainsAll(other IDSet) bool {
	if len(other) > len(s) {
		return false
	}
	for id := range other {
		if _, exists := s[id]; !exists {
			return false
		}
	}
	return true
}

func (s IDSet) Intersects(other IDSet) bool {
	small, large := s, other
	if len(small) > len(large) {
		small, large = large, small
	}
	for id := range small {
		if _, exists := large[id]; exists {
			return true
		}
	}
	return false
}

func (s IDSet) Equal(other IDSet) bool {
	return len(s) == len(other) && s.ContainsAll(other)
}

// Minus returns a new set holding the members of s which are not in other.
func (s IDSet) Minus(other IDSet) IDSet {
	d := IDSet{}
	for id := range s {
		if _, exists := other[id]; !exists {
			d[id] = struct{}{}
		}
	}
	return d
}

// Sorted returns the members in ascending order.
func (s IDSet) Sorted() []Identifier {
	ids := maps.Keys(s)
	slices.Sort(ids)
	return ids
}
