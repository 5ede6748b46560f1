package condenser

import (
	"context"
	"fmt"

	"github.com/ohdsi/condenser/pkg/api"
	"github.com/sirupsen/logrus"
)

const progressInterval = 1000000

// assignment is one decision on the current search path. Every frame extends
// its parent's path, so siblings never see each other's choices.
type assignment struct {
	kind   api.ClauseKind
	parent *assignment
}

func (a *assignment) materialize(n int) []api.ClauseKind {
	kinds := make([]api.ClauseKind, n)
	for i := n - 1; a != nil; i-- {
		kinds[i] = a.kind
		a = a.parent
	}
	return kinds
}

type search struct {
	done           <-chan struct{}
	ctx            context.Context
	log            *logrus.Entry
	candidates     []*api.Candidate
	target         api.IDSet
	firstExclusion int
	// lastInclusion and lastExclusion map a concept to the last position at
	// which some option can still add, respectively remove, it. A concept is
	// reachable from position i if its entry is >= i.
	lastInclusion map[api.Identifier]int
	lastExclusion map[api.Identifier]int
	maxNodes      uint64

	best       []api.ClauseKind
	bestLength int
	stats      *Stats
}

func newSearch(ctx context.Context, log *logrus.Entry, ordered []*api.Candidate, firstExclusion int, target api.IDSet, maxNodes uint64, stats *Stats) *search {
	s := &search{
		done:           ctx.Done(),
		ctx:            ctx,
		log:            log,
		candidates:     ordered,
		target:         target,
		firstExclusion: firstExclusion,
		lastInclusion:  map[api.Identifier]int{},
		lastExclusion:  map[api.Identifier]int{},
		maxNodes:       maxNodes,
		bestLength:     -1,
		stats:          stats,
	}
	// scanning forward leaves the highest position in the maps
	for i, c := range ordered {
		for _, kind := range c.ValidOptions.Kinds() {
			switch {
			case kind.IsInclusion() && i < firstExclusion:
				for id := range c.Expansion(kind) {
					s.lastInclusion[id] = i
				}
			case kind.IsExclusion() && i >= firstExclusion:
				for id := range c.Expansion(kind) {
					s.lastExclusion[id] = i
				}
			}
		}
	}
	return s
}

// unreachable returns the concepts of the target which no option of any
// candidate can add.
func (s *search) unreachable() api.IDSet {
	missing := api.IDSet{}
	for id := range s.target {
		if _, ok := s.lastInclusion[id]; !ok {
			missing.Add(id)
		}
	}
	return missing
}

func (s *search) run() error {
	if err := s.recurse(0, api.IDSet{}, 0, nil); err != nil {
		return err
	}
	if s.bestLength < 0 {
		return ErrUnreachable
	}
	return nil
}

func (s *search) recurse(index int, realized api.IDSet, length int, path *assignment) error {
	s.stats.Nodes++
	select {
	case <-s.done:
		return fmt.Errorf("%w: %w", ErrSearchAborted, s.ctx.Err())
	default:
	}
	if s.maxNodes > 0 && s.stats.Nodes > s.maxNodes {
		return fmt.Errorf("%w: node budget of %d exhausted", ErrSearchAborted, s.maxNodes)
	}

	if s.bestLength >= 0 && length >= s.bestLength {
		// a solution only counts if it is strictly shorter
		s.stats.PrunedByLength++
		return nil
	}

	if index == len(s.candidates) {
		s.evaluate(realized, length, path)
		return nil
	}

	if !s.feasible(index, realized) {
		s.stats.PrunedByReachability++
		return nil
	}

	c := s.candidates[index]
	for _, kind := range c.ValidOptions.Kinds() {
		next, changed := apply(realized, c, kind)
		delta := 1
		if kind == api.Ignore {
			delta = 0
		} else if !changed && c.ValidOptions.Has(api.Ignore) {
			// ignoring the candidate has the same effect for free
			continue
		}
		if err := s.recurse(index+1, next, length+delta, &assignment{kind: kind, parent: path}); err != nil {
			return err
		}
	}
	return nil
}

func (s *search) evaluate(realized api.IDSet, length int, path *assignment) {
	s.stats.Leaves++
	if s.stats.Leaves%progressInterval == 0 {
		s.log.Infof("Evaluated %d solutions", s.stats.Leaves)
	}
	if !realized.Equal(s.target) {
		return
	}
	s.best = path.materialize(len(s.candidates))
	s.bestLength = length
	s.stats.Improvements++
	s.log.Debugf("Found new optimum with %d concepts", length)
}

// feasible checks whether the candidates from index on can still turn
// realized into the target.
func (s *search) feasible(index int, realized api.IDSet) bool {
	if index < s.firstExclusion {
		for id := range s.target {
			if realized.Has(id) {
				continue
			}
			if last, ok := s.lastInclusion[id]; !ok || last < index {
				return false
			}
		}
		return true
	}

	// no inclusions are left, and exclusions can never restore a concept
	if !realized.ContainsAll(s.target) {
		return false
	}
	for id := range realized {
		if s.target.Has(id) {
			continue
		}
		if last, ok := s.lastExclusion[id]; !ok || last < index {
			return false
		}
	}
	return true
}

// apply returns the realized set after applying kind for c. The input set is
// never modified; changed is false if the option has no effect.
func apply(realized api.IDSet, c *api.Candidate, kind api.ClauseKind) (next api.IDSet, changed bool) {
	switch {
	case kind.IsInclusion():
		expansion := c.Expansion(kind)
		if realized.ContainsAll(expansion) {
			return realized, false
		}
		next = realized.Clone()
		next.AddAll(expansion)
		return next, true
	case kind.IsExclusion():
		expansion := c.Expansion(kind)
		if !realized.Intersects(expansion) {
			return realized, false
		}
		return realized.Minus(expansion), true
	}
	return realized, false
}
