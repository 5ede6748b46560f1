package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/ohdsi/condenser/pkg/api/atlas"
	"github.com/ohdsi/condenser/pkg/reducer"
	"github.com/ohdsi/condenser/pkg/vocabulary"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type VerifyOpts struct {
	vocabularies  []string
	conceptSets   string
	expressions   string
	ignoreMissing bool
}

var verifyopts = VerifyOpts{}

func NewVerifyCmd() *cobra.Command {

	verifyCmd := &cobra.Command{
		Use:   "verify",
		Short: "verify expressions against their concept sets",
		Long: `verify that every expression of an expressions file resolves to exactly its concept set, and that no shorter
expression exists`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("ignore-missing") && config.IgnoreMissing {
				verifyopts.ignoreMissing = true
			}
			ctx := cmd.Context()
			sets, err := vocabulary.LoadConceptSets(ctx, verifyopts.conceptSets)
			if err != nil {
				return err
			}
			expressions, err := vocabulary.LoadExpressions(ctx, verifyopts.expressions)
			if err != nil {
				return err
			}
			conceptReducer := reducer.NewConceptReducer(ctx, verifyopts.vocabularies)
			if err := conceptReducer.Load(); err != nil {
				return err
			}
			return verifyAll(os.Stdout, conceptReducer, sets, expressions, verifyopts.ignoreMissing)
		},
	}

	verifyCmd.Flags().StringArrayVarP(&verifyopts.vocabularies, "vocabulary", "v", []string{"vocabulary.yaml"}, "vocabulary file (can be specified multiple times)")
	verifyCmd.Flags().StringVarP(&verifyopts.conceptSets, "concept-sets", "c", "concept-sets.yaml", "file with the concept sets")
	verifyCmd.Flags().StringVarP(&verifyopts.expressions, "expressions", "e", "expressions.yaml", "file with the expressions to verify")
	verifyCmd.Flags().BoolVar(&verifyopts.ignoreMissing, "ignore-missing", false, "skip concepts which do not exist in the vocabulary")
	return verifyCmd
}

func verifyAll(w io.Writer, conceptReducer *reducer.ConceptReducer, sets *atlas.ConceptSets, expressions *atlas.Expressions, ignoreMissing bool) error {
	failed := 0
	for _, set := range sets.ConceptSets {
		err := verifySet(conceptReducer, set, expressions, ignoreMissing)
		if err != nil {
			failed++
			log.Debugf("Verification of %s failed: %v", set.Name, err)
			fmt.Fprintf(w, "%s %s: %v\n", color.RedString("FAIL"), set.Name, err)
			continue
		}
		fmt.Fprintf(w, "%s %s\n", color.GreenString("OK"), set.Name)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d expressions failed verification", failed, len(sets.ConceptSets))
	}
	return nil
}

func verifySet(conceptReducer *reducer.ConceptReducer, set atlas.ConceptSet, expressions *atlas.Expressions, ignoreMissing bool) error {
	expression := expressions.Lookup(set.Name)
	if expression == nil {
		return fmt.Errorf("no expression found")
	}
	matched, involved, err := conceptReducer.Resolve(set.Concepts, ignoreMissing)
	if err != nil {
		return err
	}
	return verifyExpression(matched, involved, expression.Items)
}
