package order

import (
	"cmp"

	"github.com/ohdsi/condenser/pkg/api"
	"golang.org/x/exp/slices"
)

// Plan orders candidates for the branch-and-bound search. All concepts of the
// concept set come first, since the search builds the included set before it
// starts subtracting from it. Inside each group, candidates with a single
// valid option come before those that need branching, and wider descendant
// closures come before narrower ones. Ties keep their input order.
//
// firstExclusion is the index of the first candidate outside the concept set,
// or len(ordered) if there is none.
func Plan(candidates []*api.Candidate) (ordered []*api.Candidate, firstExclusion int) {
	ordered = make([]*api.Candidate, len(candidates))
	copy(ordered, candidates)

	slices.SortStableFunc(ordered, func(a, b *api.Candidate) int {
		if a.InTargetSet != b.InTargetSet {
			if a.InTargetSet {
				return -1
			}
			return 1
		}
		aSingle, bSingle := a.ValidOptions.Len() == 1, b.ValidOptions.Len() == 1
		if aSingle != bSingle {
			if aSingle {
				return -1
			}
			return 1
		}
		return cmp.Compare(len(b.Descendants), len(a.Descendants))
	})

	firstExclusion = len(ordered)
	for i, c := range ordered {
		if !c.InTargetSet {
			firstExclusion = i
			break
		}
	}
	return ordered, firstExclusion
}
