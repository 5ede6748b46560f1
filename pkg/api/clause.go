package api

import "fmt"

// Clause is one item of a concept set expression.
type Clause struct {
	ConceptID   Identifier `json:"conceptId"`
	Exclude     bool       `json:"isExcluded"`
	Descendants bool       `json:"includeDescendants"`
}

func (c Clause) String() string {
	return fmt.Sprintf("Concept ID: %d, exclude: %v, descendants: %v", c.ConceptID, c.Exclude, c.Descendants)
}

// Evaluate computes the set of concepts an expression resolves to: the union
// of all included concepts minus the union of all excluded concepts.
// descendants is asked for the descendant closure of expanded clauses; a nil
// result is treated as the concept alone.
func Evaluate(clauses []Clause, descendants func(Identifier) IDSet) IDSet {
	included := IDSet{}
	excluded := IDSet{}
	for _, c := range clauses {
		target := included
		if c.Exclude {
			target = excluded
		}
		target.Add(c.ConceptID)
		if c.Descendants {
			target.AddAll(descendants(c.ConceptID))
		}
	}
	return included.Minus(excluded)
}
