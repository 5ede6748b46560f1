package reducer

import (
	"github.com/ohdsi/condenser/pkg/api"
	"github.com/ohdsi/condenser/pkg/api/atlas"
)

func newVocabulary(concepts ...atlas.Concept) *atlas.Vocabulary {
	return &atlas.Vocabulary{Name: "test", Concepts: concepts}
}

func newConcept(id int64, descendants ...int64) atlas.Concept {
	return atlas.Concept{ID: id, Descendants: descendants}
}

// scenario is the hierarchy 1 > 2 > 3 and 1 > 5, with 4 and 6 standing alone.
func scenario() *atlas.Vocabulary {
	return newVocabulary(
		newConcept(1, 1, 2, 3, 5),
		newConcept(2, 3),
		newConcept(3),
		newConcept(4),
		newConcept(5),
		newConcept(6),
	)
}

func candidateIDs(candidates []*api.Candidate) []api.Identifier {
	ids := []api.Identifier{}
	for _, c := range candidates {
		ids = append(ids, c.ID)
	}
	return ids
}
