package reducer

import (
	"context"
	"fmt"

	"github.com/ohdsi/condenser/pkg/api"
	"github.com/ohdsi/condenser/pkg/api/atlas"
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"
)

type ConceptReducer struct {
	name        string
	descendants map[api.Identifier][]api.Identifier
	loader      ReducerVocabularyLoader
}

func (r *ConceptReducer) Load() error {
	vocabulary, err := r.loader.Load()
	if err != nil {
		return err
	}
	r.name = vocabulary.Name
	r.descendants = make(map[api.Identifier][]api.Identifier, len(vocabulary.Concepts))
	for _, concept := range vocabulary.Concepts {
		if _, exists := r.descendants[concept.ID]; exists {
			return fmt.Errorf("concept %d is defined twice", concept.ID)
		}
		r.descendants[concept.ID] = closure(concept)
	}
	return nil
}

// Name returns the name of the loaded vocabulary.
func (r *ConceptReducer) Name() string {
	return r.name
}

func (r *ConceptReducer) ConceptCount() int {
	return len(r.descendants)
}

// closure returns the descendants of a concept including the concept itself,
// the form every candidate expects.
func closure(concept atlas.Concept) []api.Identifier {
	ids := append([]api.Identifier{concept.ID}, concept.Descendants...)
	slices.Sort(ids)
	return slices.Compact(ids)
}

// Resolve selects the candidates for the given concept set: its members and
// all their descendants. matched holds the members which exist in the
// vocabulary, in the given order; involved lists the matched members first,
// followed by the remaining descendants in ascending order.
func (r *ConceptReducer) Resolve(conceptSet []api.Identifier, ignoreMissing bool) (matched []api.Identifier, involved []*api.Candidate, err error) {
	discovered := map[api.Identifier]*api.Candidate{}
	for _, id := range conceptSet {
		if _, exists := discovered[id]; exists {
			continue
		}
		descendants, exists := r.descendants[id]
		if !exists {
			if !ignoreMissing {
				return nil, nil, fmt.Errorf("Concept %d does not exist", id)
			}
			logrus.Warnf("Ignoring concept %d, it does not exist in the vocabulary", id)
			continue
		}
		candidate, err := api.NewCandidate(id, descendants)
		if err != nil {
			return nil, nil, err
		}
		discovered[id] = candidate
		matched = append(matched, id)
		involved = append(involved, candidate)
	}

	extra := api.IDSet{}
	for _, id := range matched {
		for descendant := range discovered[id].Descendants {
			if _, exists := discovered[descendant]; !exists {
				extra.Add(descendant)
			}
		}
	}
	for _, id := range extra.Sorted() {
		descendants, exists := r.descendants[id]
		if !exists {
			logrus.Debugf("Concept %d is only known as a descendant, treating it as a leaf", id)
			descendants = []api.Identifier{id}
		}
		candidate, err := api.NewCandidate(id, descendants)
		if err != nil {
			return nil, nil, err
		}
		discovered[id] = candidate
		involved = append(involved, candidate)
	}

	for _, candidate := range involved {
		if outside := r.outside(candidate, discovered); len(outside) > 0 {
			logrus.Debugf("Descendants %v of concept %d are not below the concept set", outside, candidate.ID)
		}
	}
	return matched, involved, nil
}

// outside returns the descendants of c for which no candidate exists. For a
// transitively closed vocabulary this is always empty.
func (r *ConceptReducer) outside(c *api.Candidate, discovered map[api.Identifier]*api.Candidate) []api.Identifier {
	var missing []api.Identifier
	for id := range c.Descendants {
		if _, exists := discovered[id]; !exists {
			missing = append(missing, id)
		}
	}
	slices.Sort(missing)
	return missing
}

func NewConceptReducer(ctx context.Context, vocabularyFiles []string) *ConceptReducer {
	return &ConceptReducer{
		loader: FileLoader{
			ctx:             ctx,
			vocabularyFiles: vocabularyFiles,
		},
	}
}

func NewStaticReducer(vocabulary *atlas.Vocabulary) *ConceptReducer {
	return &ConceptReducer{
		loader: StaticLoader{Vocabulary: vocabulary},
	}
}

// Reduce restricts a vocabulary to the given candidates, for example to write
// a smaller vocabulary file for a single concept set.
func Reduce(name string, involved []*api.Candidate) *atlas.Vocabulary {
	reduced := &atlas.Vocabulary{Name: name}
	for _, c := range involved {
		concept := atlas.Concept{ID: c.ID}
		if !c.IsLeaf() {
			concept.Descendants = c.Descendants.Sorted()
		}
		reduced.Concepts = append(reduced.Concepts, concept)
	}
	return reduced
}
