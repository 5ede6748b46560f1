package order

import (
	"testing"

	. "github.com/onsi/gomega"

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

func ids(candidates []*api.Candidate) (result []api.Identifier) {
	for _, c := range candidates {
		result = append(result, c.ID)
	}
	return
}

func TestPlan(t *testing.T) {
	single := api.NewOptions(api.IncludeWithDescendants)
	multi := api.NewOptions(api.Include, api.IncludeWithDescendants)
	excl := api.NewOptions(api.ExcludeWithDescendants, api.Ignore)

	tests := []struct {
		name               string
		given              []*api.Candidate
		wantOrder          []api.Identifier
		wantFirstExclusion int
	}{
		{
			name:               "should handle an empty list",
			given:              nil,
			wantOrder:          nil,
			wantFirstExclusion: 0,
		},
		{
			name: "should place concept set members before other concepts",
			given: []*api.Candidate{
				newCandidate(5, false, excl),
				newCandidate(1, true, single),
				newCandidate(6, false, excl),
				newCandidate(2, true, single),
			},
			wantOrder:          []api.Identifier{1, 2, 5, 6},
			wantFirstExclusion: 2,
		},
		{
			name: "should place single option candidates first",
			given: []*api.Candidate{
				newCandidate(1, true, multi, 2, 3, 5),
				newCandidate(4, true, single),
				newCandidate(2, true, single, 3),
			},
			wantOrder:          []api.Identifier{2, 4, 1},
			wantFirstExclusion: 3,
		},
		{
			name: "should place wider closures first and keep ties stable",
			given: []*api.Candidate{
				newCandidate(3, true, multi, 30),
				newCandidate(1, true, multi, 10, 11, 12),
				newCandidate(2, true, multi, 20),
			},
			wantOrder:          []api.Identifier{1, 3, 2},
			wantFirstExclusion: 3,
		},
		{
			name: "should report no exclusion boundary inside the list when all are members",
			given: []*api.Candidate{
				newCandidate(1, true, single),
			},
			wantOrder:          []api.Identifier{1},
			wantFirstExclusion: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGomegaWithT(t)
			ordered, firstExclusion := Plan(tt.given)
			g.Expect(ids(ordered)).To(Equal(tt.wantOrder))
			g.Expect(firstExclusion).To(Equal(tt.wantFirstExclusion))
		})
	}
}

func TestPlanDoesNotModifyInput(t *testing.T) {
	g := NewGomegaWithT(t)
	given := []*api.Candidate{
		newCandidate(5, false, api.NewOptions(api.ExcludeWithDescendants)),
		newCandidate(1, true, api.NewOptions(api.IncludeWithDescendants)),
	}
	Plan(given)
	g.Expect(ids(given)).To(Equal([]api.Identifier{5, 1}))
}
