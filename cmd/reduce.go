package main

import (
	"fmt"

	"github.com/ohdsi/condenser/pkg/api"
	"github.com/ohdsi/condenser/pkg/reducer"
	"github.com/ohdsi/condenser/pkg/vocabulary"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type reduceOpts struct {
	vocabularies  []string
	conceptSets   string
	out           string
	ignoreMissing bool
}

var reduceopts = reduceOpts{}

func NewReduceCmd() *cobra.Command {

	reduceCmd := &cobra.Command{
		Use:   "reduce",
		Short: "debug command to produce trimmed down vocabularies for testing or debugging purposes",
		Long: `reduces a vocabulary to all concepts which can appear in the expression of the given concept sets. This is mostly a debug command
which allows reducing huge vocabularies to a smaller problem set for debugging, removing all the unwanted noise of definitely unrelated concepts.
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("ignore-missing") && config.IgnoreMissing {
				reduceopts.ignoreMissing = true
			}
			ctx := cmd.Context()
			sets, err := vocabulary.LoadConceptSets(ctx, reduceopts.conceptSets)
			if err != nil {
				return err
			}
			conceptReducer := reducer.NewConceptReducer(ctx, reduceopts.vocabularies)
			logrus.Info("Loading vocabulary.")
			if err := conceptReducer.Load(); err != nil {
				return err
			}
			logrus.Info("Reduction of involved concepts.")
			seen := api.IDSet{}
			var involved []*api.Candidate
			for _, set := range sets.ConceptSets {
				_, candidates, err := conceptReducer.Resolve(set.Concepts, reduceopts.ignoreMissing)
				if err != nil {
					return fmt.Errorf("concept set %s: %w", set.Name, err)
				}
				for _, c := range candidates {
					if !seen.Has(c.ID) {
						seen.Add(c.ID)
						involved = append(involved, c)
					}
				}
			}
			logrus.Infof("Writing %d of %d concepts as a vocabulary.", len(involved), conceptReducer.ConceptCount())
			if err := vocabulary.WriteVocabulary(reduceopts.out, reducer.Reduce(conceptReducer.Name(), involved)); err != nil {
				return fmt.Errorf("failed to write vocabulary file: %v", err)
			}
			return nil
		},
	}

	reduceCmd.Flags().StringArrayVarP(&reduceopts.vocabularies, "vocabulary", "v", []string{"vocabulary.yaml"}, "vocabulary file (can be specified multiple times)")
	reduceCmd.Flags().StringVarP(&reduceopts.conceptSets, "concept-sets", "c", "concept-sets.yaml", "file with the concept sets to keep")
	reduceCmd.Flags().StringVarP(&reduceopts.out, "output", "o", "debug.yaml", "where to write the reduced vocabulary")
	reduceCmd.Flags().BoolVar(&reduceopts.ignoreMissing, "ignore-missing", false, "skip concepts which do not exist in the vocabulary")
	return reduceCmd
}
