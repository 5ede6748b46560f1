package sat

import (
	"fmt"
	"testing"

	. "github.com/onsi/gomega"

	"github.com/ohdsi/condenser/pkg/api"
)

func expectedVars(g *WithT, m *Model, vars ...string) {
	g.Expect(m.Vars()).To(HaveLen(len(vars)))

	for n, v := range vars {
		k := fmt.Sprintf("x%d", n+1)
		g.Expect(m.byName[k].String()).To(Equal(v))
	}
}

// semantics evaluates an assignment directly, without going through the
// formula.
func semantics(m *Model, assignment map[string]bool) bool {
	perCandidate := map[*api.Candidate]int{}
	var clauses []api.Clause
	var candidates []*api.Candidate
	for _, v := range m.Vars() {
		if _, seen := perCandidate[v.Candidate]; !seen {
			perCandidate[v.Candidate] = 0
			candidates = append(candidates, v.Candidate)
		}
		if assignment[v.satVarName] {
			perCandidate[v.Candidate]++
			clauses = append(clauses, toClauses([]*Var{v})...)
		}
	}
	for c, n := range perCandidate {
		if n > 1 || (n == 0 && !c.ValidOptions.Has(api.Ignore)) {
			return false
		}
	}
	return api.Evaluate(clauses, descendantsOf(candidates)).Equal(m.target)
}

func TestLoader_Load(t *testing.T) {
	t.Run("should create one variable per clause kind", func(t *testing.T) {
		g := NewGomegaWithT(t)
		candidates, target := scenario()

		model, err := NewLoader().Load(candidates, target)
		g.Expect(err).ToNot(HaveOccurred())
		expectedVars(g, model,
			"1(INCLUDE_WITH_DESCENDANTS)",
			"1(INCLUDE)",
			"2(INCLUDE_WITH_DESCENDANTS)",
			"4(INCLUDE_WITH_DESCENDANTS)",
			"5(EXCLUDE_WITH_DESCENDANTS)",
		)
	})

	t.Run("should accept exactly the assignments reproducing the concept set", func(t *testing.T) {
		g := NewGomegaWithT(t)
		candidates, target := scenario()

		model, err := NewLoader().Load(candidates, target)
		g.Expect(err).ToNot(HaveOccurred())

		n := len(model.Vars())
		for i := 0; i < 1<<n; i++ {
			assignment := map[string]bool{}
			for j := 0; j < n; j++ {
				assignment[fmt.Sprintf("x%d", j+1)] = (i>>j)&1 == 1
			}
			g.Expect(model.Formula().Eval(assignment)).To(Equal(semantics(model, assignment)), "assignment %v", assignment)
		}
	})

	t.Run("should evaluate known assignments", func(t *testing.T) {
		g := NewGomegaWithT(t)
		candidates, target := scenario()
		model, err := NewLoader().Load(candidates, target)
		g.Expect(err).ToNot(HaveOccurred())

		tests := []struct {
			trueVars []string
			want     bool
		}{
			{trueVars: []string{"x1", "x4", "x5"}, want: true},
			{trueVars: []string{"x2", "x3", "x4"}, want: true},
			{trueVars: []string{"x1", "x4"}, want: false},
			{trueVars: []string{"x1", "x2", "x4", "x5"}, want: false},
			{trueVars: []string{"x2", "x4"}, want: false},
			{trueVars: []string{"x3", "x4", "x5"}, want: false},
		}
		for _, tt := range tests {
			assignment := map[string]bool{}
			for _, v := range model.Vars() {
				assignment[v.satVarName] = false
			}
			for _, name := range tt.trueVars {
				assignment[name] = true
			}
			g.Expect(model.Formula().Eval(assignment)).To(Equal(tt.want), "true vars %v", tt.trueVars)
		}
	})

	t.Run("should fail if a concept can not be included", func(t *testing.T) {
		g := NewGomegaWithT(t)
		candidates := []*api.Candidate{
			newCandidate(1, true, api.NewOptions(api.IncludeWithDescendants)),
		}

		_, err := NewLoader().Load(candidates, api.NewIDSet(1, 2))
		g.Expect(err).To(MatchError("nothing can include concept 2"))
	})

	t.Run("should handle an empty problem", func(t *testing.T) {
		g := NewGomegaWithT(t)

		model, err := NewLoader().Load(nil, api.IDSet{})
		g.Expect(err).ToNot(HaveOccurred())
		g.Expect(model.Vars()).To(BeEmpty())
		g.Expect(model.ands).To(BeEmpty())
	})
}
