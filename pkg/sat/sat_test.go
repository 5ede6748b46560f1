package sat

import (
	"testing"

	. "github.com/onsi/gomega"

	"github.com/ohdsi/condenser/pkg/api"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name       string
		candidates []*api.Candidate
		target     api.IDSet
		wantLength int
		wantErr    error
	}{
		{
			name: "should condense the example concept set",
			candidates: func() []*api.Candidate {
				c, _ := scenario()
				return c
			}(),
			target:     api.NewIDSet(1, 2, 3, 4),
			wantLength: 3,
		},
		{
			name: "should include a fully covered hierarchy with one item",
			candidates: []*api.Candidate{
				newCandidate(1, true, api.NewOptions(api.IncludeWithDescendants), 2, 3),
			},
			target:     api.NewIDSet(1, 2, 3),
			wantLength: 1,
		},
		{
			name: "should list siblings without a common ancestor",
			candidates: []*api.Candidate{
				newCandidate(1, true, api.NewOptions(api.IncludeWithDescendants)),
				newCandidate(2, true, api.NewOptions(api.IncludeWithDescendants)),
			},
			target:     api.NewIDSet(1, 2),
			wantLength: 2,
		},
		{
			name:       "should return an empty expression for an empty problem",
			target:     api.IDSet{},
			wantLength: 0,
		},
		{
			name: "should fail if a required exclusion removes a member",
			candidates: []*api.Candidate{
				newCandidate(1, true, api.NewOptions(api.IncludeWithDescendants)),
				newCandidate(2, false, api.NewOptions(api.ExcludeWithDescendants), 1),
			},
			target:  api.NewIDSet(1),
			wantErr: ErrUnsatisfiable,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGomegaWithT(t)
			model, err := NewLoader().Load(tt.candidates, tt.target)
			g.Expect(err).ToNot(HaveOccurred())

			clauses, err := Resolve(model)
			if tt.wantErr != nil {
				g.Expect(err).To(MatchError(tt.wantErr))
				return
			}
			g.Expect(err).ToNot(HaveOccurred())
			g.Expect(clauses).To(HaveLen(tt.wantLength))
			g.Expect(api.Evaluate(clauses, descendantsOf(tt.candidates)).Equal(tt.target)).To(BeTrue())
			if len(tt.candidates) == 0 {
				return
			}

			ok, err := model.Check(clauses)
			g.Expect(err).ToNot(HaveOccurred())
			g.Expect(ok).To(BeTrue())
		})
	}
}

func TestModel_Check(t *testing.T) {
	candidates, target := scenario()
	model, err := NewLoader().Load(candidates, target)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		clauses []api.Clause
		want    bool
		wantErr bool
	}{
		{
			name: "should accept the minimal expression",
			clauses: []api.Clause{
				{ConceptID: 1, Descendants: true},
				{ConceptID: 4},
				{ConceptID: 5, Exclude: true},
			},
			want: true,
		},
		{
			name: "should accept leaves written with descendants",
			clauses: []api.Clause{
				{ConceptID: 1, Descendants: true},
				{ConceptID: 4, Descendants: true},
				{ConceptID: 5, Exclude: true, Descendants: true},
			},
			want: true,
		},
		{
			name: "should reject a surplus concept",
			clauses: []api.Clause{
				{ConceptID: 1, Descendants: true},
				{ConceptID: 4},
			},
			want: false,
		},
		{
			name: "should fail on unknown concepts",
			clauses: []api.Clause{
				{ConceptID: 7},
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGomegaWithT(t)
			ok, err := model.Check(tt.clauses)
			if tt.wantErr {
				g.Expect(err).To(HaveOccurred())
				return
			}
			g.Expect(err).ToNot(HaveOccurred())
			g.Expect(ok).To(Equal(tt.want))
		})
	}
}
