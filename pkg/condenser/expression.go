package condenser

import (
	"cmp"

	"github.com/ohdsi/condenser/pkg/api"
	"golang.org/x/exp/slices"
)

// toClause renders a decision for c as an expression item. Expanding a leaf
// adds nothing, so leaves are always rendered without descendants.
func toClause(c *api.Candidate, kind api.ClauseKind) (api.Clause, bool) {
	if kind == api.Ignore {
		return api.Clause{}, false
	}
	return api.Clause{
		ConceptID:   c.ID,
		Exclude:     kind.IsExclusion(),
		Descendants: kind.Expands() && !c.IsLeaf(),
	}, true
}

// extract converts the winning assignment over the ordered candidates into
// expression items, listed in the order the candidates were handed in.
func extract(ordered []*api.Candidate, kinds []api.ClauseKind, position map[api.Identifier]int) []api.Clause {
	clauses := []api.Clause{}
	for i, c := range ordered {
		if clause, ok := toClause(c, kinds[i]); ok {
			clauses = append(clauses, clause)
		}
	}
	slices.SortStableFunc(clauses, func(a, b api.Clause) int {
		return cmp.Compare(position[a.ConceptID], position[b.ConceptID])
	})
	return clauses
}
