package condenser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ohdsi/condenser/pkg/api"
	"github.com/ohdsi/condenser/pkg/metrics"
	"github.com/ohdsi/condenser/pkg/order"
	"github.com/sirupsen/logrus"
)

var (
	ErrNotCondensed       = errors.New("must run Condense first")
	ErrUnreachable        = errors.New("target set unreachable from candidate list")
	ErrSearchAborted      = errors.New("search aborted")
	ErrDuplicateCandidate = errors.New("duplicate candidate")
	ErrInvalidTarget      = errors.New("invalid concept set")
)

// Stats describes the work done by the last call to Condense.
type Stats struct {
	Candidates int
	Retained   int
	// TreeSize is the number of complete assignments before pruning. It is a
	// float since it easily exceeds any integer type.
	TreeSize             float64
	Nodes                uint64
	Leaves               uint64
	PrunedByLength       uint64
	PrunedByReachability uint64
	Improvements         int
	Duration             time.Duration
}

type Condenser struct {
	target     api.IDSet
	candidates []*api.Candidate
	position   map[api.Identifier]int
	log        *logrus.Entry
	maxNodes   uint64
	recorder   *metrics.Recorder

	retained   []*api.Candidate
	expression []api.Clause
	condensed  bool
	stats      Stats
}

type Option func(*Condenser)

func WithLogger(log *logrus.Entry) Option {
	return func(c *Condenser) {
		c.log = log
	}
}

// WithMaxNodes stops the search with ErrSearchAborted after visiting the given
// number of nodes. Zero means no limit.
func WithMaxNodes(maxNodes uint64) Option {
	return func(c *Condenser) {
		c.maxNodes = maxNodes
	}
}

func WithMetrics(recorder *metrics.Recorder) Option {
	return func(c *Condenser) {
		c.recorder = recorder
	}
}

// New creates a condenser for the given concept set. Every candidate is either
// in the concept set, or is a descendant of a concept in the concept set.
func New(target []api.Identifier, candidates []*api.Candidate, opts ...Option) (*Condenser, error) {
	targetSet := api.IDSet{}
	for _, id := range target {
		if id <= 0 {
			return nil, fmt.Errorf("%w: concept id %d is not positive", ErrInvalidTarget, id)
		}
		if targetSet.Has(id) {
			return nil, fmt.Errorf("%w: concept %d is listed twice", ErrInvalidTarget, id)
		}
		targetSet.Add(id)
	}

	position := make(map[api.Identifier]int, len(candidates))
	for i, candidate := range candidates {
		if _, exists := position[candidate.ID]; exists {
			return nil, fmt.Errorf("%w: concept %d", ErrDuplicateCandidate, candidate.ID)
		}
		position[candidate.ID] = i
	}

	c := &Condenser{
		target:     targetSet,
		candidates: candidates,
		position:   position,
		log:        logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Condense searches for the shortest expression. The candidates handed to New
// are not modified.
func (c *Condenser) Condense(ctx context.Context) (err error) {
	c.condensed = false
	c.expression = nil
	c.stats = Stats{Candidates: len(c.candidates)}
	start := time.Now()
	defer func() {
		c.stats.Duration = time.Since(start)
		c.observe(err)
	}()

	working := make([]*api.Candidate, 0, len(c.candidates))
	for _, candidate := range c.candidates {
		copied := *candidate
		working = append(working, &copied)
	}

	c.retained = Analyze(working, c.target)
	c.stats.Retained = len(c.retained)
	ordered, firstExclusion := order.Plan(c.retained)

	c.stats.TreeSize = 1
	for _, candidate := range ordered {
		c.log.Debugf("Concept ID %d, valid options: %v", candidate.ID, candidate.ValidOptions)
		c.stats.TreeSize *= float64(candidate.ValidOptions.Len())
	}
	c.log.Infof("Full tree size is %g solutions over %d of %d candidates", c.stats.TreeSize, c.stats.Retained, c.stats.Candidates)

	s := newSearch(ctx, c.log, ordered, firstExclusion, c.target, c.maxNodes, &c.stats)
	if missing := s.unreachable(); len(missing) > 0 {
		return fmt.Errorf("%w: no candidate covers %v", ErrUnreachable, missing.Sorted())
	}
	if err := s.run(); err != nil {
		return err
	}
	c.log.Infof("Evaluated %d solutions", c.stats.Leaves)
	c.log.Infof("Optimal solution has %d concepts", s.bestLength)

	c.expression = extract(ordered, s.best, c.position)
	c.condensed = true
	return nil
}

// Expression returns the expression found by the last successful Condense.
func (c *Condenser) Expression() ([]api.Clause, error) {
	if !c.condensed {
		return nil, ErrNotCondensed
	}
	result := make([]api.Clause, len(c.expression))
	copy(result, c.expression)
	return result, nil
}

// Retained returns the analyzed candidates which took part in the last search,
// in input order.
func (c *Condenser) Retained() []*api.Candidate {
	return c.retained
}

func (c *Condenser) Stats() Stats {
	return c.stats
}

func (c *Condenser) observe(err error) {
	result := metrics.ResultOptimal
	switch {
	case errors.Is(err, ErrSearchAborted):
		result = metrics.ResultAborted
	case errors.Is(err, ErrUnreachable):
		result = metrics.ResultUnreachable
	case err != nil:
		result = metrics.ResultFailed
	}
	c.recorder.ObserveSearch(metrics.Search{
		Result:               result,
		Concepts:             len(c.target),
		Clauses:              len(c.expression),
		Nodes:                c.stats.Nodes,
		Leaves:               c.stats.Leaves,
		PrunedByLength:       c.stats.PrunedByLength,
		PrunedByReachability: c.stats.PrunedByReachability,
		Duration:             c.stats.Duration,
	})
}
