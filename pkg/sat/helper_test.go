package sat

import (
	"github.com/ohdsi/condenser/pkg/api"
)

func newCandidate(id api.Identifier, inTarget bool, options api.Options, descendants ...api.Identifier) *api.Candidate {
	return &api.Candidate{
		ID:           id,
		Descendants:  api.NewIDSet(append(descendants, id)...),
		ValidOptions: options,
		InTargetSet:  inTarget,
	}
}

// scenario is the analyzed form of the concept set {1,2,3,4} with the
// candidates 1->{1,2,3,5}, 2->{2,3}, 4->{4} and 5->{5}. Concept 3 is covered
// by 2 and was dropped by the analysis.
func scenario() ([]*api.Candidate, api.IDSet) {
	return []*api.Candidate{
		newCandidate(1, true, api.NewOptions(api.Include, api.IncludeWithDescendants), 2, 3, 5),
		newCandidate(2, true, api.NewOptions(api.IncludeWithDescendants, api.Ignore), 3),
		newCandidate(4, true, api.NewOptions(api.IncludeWithDescendants)),
		newCandidate(5, false, api.NewOptions(api.ExcludeWithDescendants, api.Ignore)),
	}, api.NewIDSet(1, 2, 3, 4)
}

func descendantsOf(candidates []*api.Candidate) func(api.Identifier) api.IDSet {
	return func(id api.Identifier) api.IDSet {
		for _, c := range candidates {
			if c.ID == id {
				return c.Descendants
			}
		}
		return nil
	}
}
