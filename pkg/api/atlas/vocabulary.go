package atlas

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Concept is one vocabulary entry together with its descendant closure. An
// empty descendant list means the concept has no descendants.
type Concept struct {
	ID          int64   `json:"id" validate:"gt=0"`
	Descendants []int64 `json:"descendants,omitempty" validate:"dive,gt=0"`
}

type Vocabulary struct {
	Name     string    `json:"name,omitempty"`
	Concepts []Concept `json:"concepts" validate:"dive"`
}

func (v *Vocabulary) Validate() error {
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("invalid vocabulary: %v", err)
	}
	return nil
}

type ConceptSet struct {
	Name     string  `json:"name" validate:"required"`
	Concepts []int64 `json:"concepts" validate:"required,min=1,dive,gt=0"`
}

type ConceptSets struct {
	ConceptSets []ConceptSet `json:"conceptSets" validate:"required,min=1,unique=Name,dive"`
}

func (c *ConceptSets) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid concept sets: %v", err)
	}
	return nil
}
