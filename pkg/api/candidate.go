package api

import (
	"errors"
	"fmt"
	"strings"
)

var ErrMalformedCandidate = errors.New("descendants do not include the concept itself")

type ClauseKind uint8

const (
	Include ClauseKind = iota
	IncludeWithDescendants
	Exclude
	ExcludeWithDescendants
	Ignore
)

func (k ClauseKind) String() string {
	switch k {
	case Include:
		return "INCLUDE"
	case IncludeWithDescendants:
		return "INCLUDE_WITH_DESCENDANTS"
	case Exclude:
		return "EXCLUDE"
	case ExcludeWithDescendants:
		return "EXCLUDE_WITH_DESCENDANTS"
	case Ignore:
		return "IGNORE"
	}
	return fmt.Sprintf("ClauseKind(%d)", uint8(k))
}

func (k ClauseKind) IsInclusion() bool {
	return k == Include || k == IncludeWithDescendants
}

func (k ClauseKind) IsExclusion() bool {
	return k == Exclude || k == ExcludeWithDescendants
}

func (k ClauseKind) Expands() bool {
	return k == IncludeWithDescendants || k == ExcludeWithDescendants
}

// searchOrder is the order in which Options.Kinds yields its members. Ignore
// comes first, and blanket clauses before single ones.
var searchOrder = [...]ClauseKind{Ignore, IncludeWithDescendants, Include, ExcludeWithDescendants, Exclude}

// Options is a small set of clause kinds with a fixed iteration order.
type Options uint8

func NewOptions(kinds ...ClauseKind) Options {
	var o Options
	for _, k := range kinds {
		o = o.Add(k)
	}
	return o
}

func (o Options) Add(k ClauseKind) Options {
	return o | 1<<k
}

func (o Options) Has(k ClauseKind) bool {
	return o&(1<<k) != 0
}

func (o Options) Len() int {
	n := 0
	for _, k := range searchOrder {
		if o.Has(k) {
			n++
		}
	}
	return n
}

// Kinds returns the members in search order.
func (o Options) Kinds() []ClauseKind {
	kinds := make([]ClauseKind, 0, len(searchOrder))
	for _, k := range searchOrder {
		if o.Has(k) {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

func (o Options) String() string {
	var names []string
	for _, k := range o.Kinds() {
		names = append(names, k.String())
	}
	return "[" + strings.Join(names, ", ") + "]"
}

// Candidate is a vocabulary concept which may appear in the condensed
// expression. ValidOptions and InTargetSet are filled in by the analyzer.
type Candidate struct {
	ID           Identifier
	Descendants  IDSet
	ValidOptions Options
	InTargetSet  bool
}

// NewCandidate follows the OHDSI convention that the descendants of a concept
// include the concept itself, so the minimum size of descendants is 1.
func NewCandidate(id Identifier, descendants []Identifier) (*Candidate, error) {
	set := NewIDSet(descendants...)
	if !set.Has(id) {
		return nil, fmt.Errorf("concept %d: %w", id, ErrMalformedCandidate)
	}
	return &Candidate{
		ID:          id,
		Descendants: set,
	}, nil
}

func (c *Candidate) IsLeaf() bool {
	return len(c.Descendants) == 1
}

// Expansion returns the ids a clause of the given kind adds or removes.
func (c *Candidate) Expansion(k ClauseKind) IDSet {
	switch k {
	case Include, Exclude:
		return NewIDSet(c.ID)
	case IncludeWithDescendants, ExcludeWithDescendants:
		return c.Descendants
	}
	return IDSet{}
}

func (c *Candidate) String() string {
	return fmt.Sprintf("%d(%d descendants)%v", c.ID, len(c.Descendants)-1, c.ValidOptions)
}
