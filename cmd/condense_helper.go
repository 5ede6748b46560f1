package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/ohdsi/condenser/pkg/api"
	"github.com/ohdsi/condenser/pkg/api/atlas"
	"github.com/ohdsi/condenser/pkg/condenser"
	"github.com/ohdsi/condenser/pkg/metrics"
	"github.com/ohdsi/condenser/pkg/reducer"
	"github.com/ohdsi/condenser/pkg/sat"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

type condenseHelperOpts struct {
	maxNodes      uint64
	parallel      int
	verify        bool
	ignoreMissing bool
}

// condenseAll condenses every concept set with its own condenser. At most
// opts.parallel searches run at the same time; the first failure cancels the
// others. The expressions are returned in the order of sets.
func condenseAll(ctx context.Context, conceptReducer *reducer.ConceptReducer, sets []atlas.ConceptSet, opts condenseHelperOpts, recorder *metrics.Recorder) ([]atlas.Expression, error) {
	expressions := make([]atlas.Expression, len(sets))
	g, gctx := errgroup.WithContext(ctx)
	if opts.parallel > 0 {
		g.SetLimit(opts.parallel)
	}
	for i := range sets {
		set := sets[i]
		index := i
		g.Go(func() error {
			expression, err := condenseSet(gctx, conceptReducer, set, opts, recorder)
			if err != nil {
				return fmt.Errorf("concept set %s: %w", set.Name, err)
			}
			expressions[index] = *expression
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return expressions, nil
}

func condenseSet(ctx context.Context, conceptReducer *reducer.ConceptReducer, set atlas.ConceptSet, opts condenseHelperOpts, recorder *metrics.Recorder) (*atlas.Expression, error) {
	log := logrus.WithField("conceptSet", set.Name)
	matched, involved, err := conceptReducer.Resolve(set.Concepts, opts.ignoreMissing)
	if err != nil {
		return nil, err
	}
	log.Infof("Condensing %d concepts with %d candidates", len(matched), len(involved))

	c, err := condenser.New(matched, involved,
		condenser.WithLogger(log),
		condenser.WithMaxNodes(opts.maxNodes),
		condenser.WithMetrics(recorder),
	)
	if err != nil {
		return nil, err
	}
	if err := c.Condense(ctx); err != nil {
		return nil, err
	}
	items, err := c.Expression()
	if err != nil {
		return nil, err
	}
	if opts.verify {
		if err := verifyExpression(matched, involved, items); err != nil {
			return nil, err
		}
		log.Info("Expression verified.")
	}
	return &atlas.Expression{Name: set.Name, Items: items}, nil
}

// verifyExpression checks that items resolve to exactly target and that no
// shorter expression over the same candidates exists. The optimum is
// computed independently by the pseudo-boolean solver.
func verifyExpression(target []api.Identifier, involved []*api.Candidate, items []api.Clause) error {
	targetSet := api.NewIDSet(target...)
	index := map[api.Identifier]api.IDSet{}
	for _, c := range involved {
		index[c.ID] = c.Descendants
	}
	resolved := api.Evaluate(items, func(id api.Identifier) api.IDSet {
		return index[id]
	})
	if !resolved.Equal(targetSet) {
		return fmt.Errorf("expression resolves to %v instead of %v", resolved.Sorted(), targetSet.Sorted())
	}

	candidates := make([]*api.Candidate, 0, len(involved))
	for _, c := range involved {
		copied := *c
		candidates = append(candidates, &copied)
	}
	model, err := sat.NewLoader().Load(condenser.Analyze(candidates, targetSet), targetSet)
	if err != nil {
		return err
	}
	if ok, err := model.Check(items); err != nil {
		logrus.Warnf("Skipping the formula check, the expression uses items outside the analyzed candidates: %v", err)
	} else if !ok {
		return fmt.Errorf("expression violates the constraints of the concept set")
	}
	optimum, err := sat.Resolve(model)
	if err != nil {
		return err
	}
	if len(items) > len(optimum) {
		return fmt.Errorf("expression has %d items, but %d suffice", len(items), len(optimum))
	}
	return nil
}

func printExpressions(w io.Writer, expressions []atlas.Expression) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, expression := range expressions {
		fmt.Fprintf(tw, "%s (%d items)\n", color.CyanString(expression.Name), len(expression.Items))
		fmt.Fprintln(tw, "\tCONCEPT ID\tEXCLUDED\tDESCENDANTS")
		for _, item := range expression.Items {
			id := color.GreenString("%d", item.ConceptID)
			if item.Exclude {
				id = color.RedString("%d", item.ConceptID)
			}
			fmt.Fprintf(tw, "\t%s\t%v\t%v\n", id, item.Exclude, item.Descendants)
		}
	}
	return tw.Flush()
}
