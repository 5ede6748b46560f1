package main

import (
	"context"
	"os"
	"time"

	"github.com/ohdsi/condenser/pkg/api/atlas"
	"github.com/ohdsi/condenser/pkg/metrics"
	"github.com/ohdsi/condenser/pkg/reducer"
	"github.com/ohdsi/condenser/pkg/vocabulary"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type condenseOpts struct {
	vocabularies    []string
	conceptSets     string
	out             string
	timeout         time.Duration
	metricsTextfile string
}

var condenseopts = condenseOpts{}

func NewCondenseCmd() *cobra.Command {

	condenseCmd := &cobra.Command{
		Use:   "condense",
		Short: "finds the shortest expression for every concept set of a file",
		Long: `finds the shortest expression for every concept set of a file. The candidates of a concept set are its concepts and
all their descendants according to the vocabulary`,
		RunE: func(cmd *cobra.Command, args []string) error {
			applyConfig(cmd)
			ctx := cmd.Context()
			if condenseopts.timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, condenseopts.timeout)
				defer cancel()
			}

			sets, err := vocabulary.LoadConceptSets(ctx, condenseopts.conceptSets)
			if err != nil {
				return err
			}
			conceptReducer := reducer.NewConceptReducer(ctx, condenseopts.vocabularies)
			logrus.Info("Loading vocabulary.")
			if err := conceptReducer.Load(); err != nil {
				return err
			}
			logrus.Infof("loaded %d concepts", conceptReducer.ConceptCount())

			recorder := metrics.NewRecorder()
			logrus.Infof("Condensing %d concept sets.", len(sets.ConceptSets))
			expressions, err := condenseAll(ctx, conceptReducer, sets.ConceptSets, condensehelperopts, recorder)
			if condenseopts.metricsTextfile != "" {
				if werr := recorder.WriteTextfile(condenseopts.metricsTextfile); werr != nil {
					logrus.Errorf("Failed to write metrics: %v", werr)
				}
			}
			if err != nil {
				return err
			}

			if condenseopts.out == "" {
				return printExpressions(os.Stdout, expressions)
			}
			logrus.Infof("Writing expressions to %s.", condenseopts.out)
			return vocabulary.WriteExpressions(condenseopts.out, &atlas.Expressions{
				CommandLineArguments: os.Args[1:],
				Vocabulary:           conceptReducer.Name(),
				Expressions:          expressions,
			})
		},
	}

	condenseCmd.Flags().StringArrayVarP(&condenseopts.vocabularies, "vocabulary", "v", []string{"vocabulary.yaml"}, "vocabulary file with the descendants of every concept (can be specified multiple times)")
	condenseCmd.Flags().StringVarP(&condenseopts.conceptSets, "concept-sets", "c", "concept-sets.yaml", "file with the concept sets to condense")
	condenseCmd.Flags().StringVarP(&condenseopts.out, "output", "o", "", "where to write the expressions; printed as a table if empty")
	condenseCmd.Flags().DurationVar(&condenseopts.timeout, "timeout", 0, "abort all searches after this duration (0 means no limit)")
	condenseCmd.Flags().StringVar(&condenseopts.metricsTextfile, "metrics-textfile", "", "write search metrics in the prometheus text format to this file")
	addCondenseHelperFlags(condenseCmd)
	return condenseCmd
}

var condensehelperopts = condenseHelperOpts{}

func addCondenseHelperFlags(cmd *cobra.Command) {
	cmd.Flags().Uint64Var(&condensehelperopts.maxNodes, "max-nodes", 0, "abort a search after visiting this many nodes (0 means no limit)")
	cmd.Flags().IntVar(&condensehelperopts.parallel, "parallel", 1, "number of concept sets condensed at the same time")
	cmd.Flags().BoolVar(&condensehelperopts.verify, "verify", false, "check every expression against the pseudo-boolean optimum")
	cmd.Flags().BoolVar(&condensehelperopts.ignoreMissing, "ignore-missing", false, "skip concepts which do not exist in the vocabulary")
}

// applyConfig fills in the flags which were not given on the command line
// from the config file.
func applyConfig(cmd *cobra.Command) {
	flags := cmd.Flags()
	if !flags.Changed("max-nodes") && config.MaxNodes > 0 {
		condensehelperopts.maxNodes = config.MaxNodes
	}
	if !flags.Changed("parallel") && config.Parallel > 0 {
		condensehelperopts.parallel = config.Parallel
	}
	if !flags.Changed("verify") && config.Verify {
		condensehelperopts.verify = true
	}
	if !flags.Changed("ignore-missing") && config.IgnoreMissing {
		condensehelperopts.ignoreMissing = true
	}
	if flags.Lookup("timeout") != nil && !flags.Changed("timeout") && config.Timeout != "" {
		if timeout, err := time.ParseDuration(config.Timeout); err == nil {
			condenseopts.timeout = timeout
		} else {
			logrus.Warnf("Ignoring invalid timeout %q from the config file: %v", config.Timeout, err)
		}
	}
}
