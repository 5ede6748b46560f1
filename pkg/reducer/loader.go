package reducer

import (
	"context"

	"github.com/ohdsi/condenser/pkg/api/atlas"
	"github.com/ohdsi/condenser/pkg/vocabulary"
)

type ReducerVocabularyLoader interface {
	Load() (*atlas.Vocabulary, error)
}

type FileLoader struct {
	ctx             context.Context
	vocabularyFiles []string
}

func (f FileLoader) Load() (*atlas.Vocabulary, error) {
	return vocabulary.LoadVocabulary(f.ctx, f.vocabularyFiles...)
}

// StaticLoader serves a vocabulary which is already in memory.
type StaticLoader struct {
	Vocabulary *atlas.Vocabulary
}

func (s StaticLoader) Load() (*atlas.Vocabulary, error) {
	return s.Vocabulary, nil
}
