package condenser

import (
	"github.com/ohdsi/condenser/pkg/api"
	"github.com/sirupsen/logrus"
)

// Analyze determines the clause kinds worth trying for every candidate and
// drops candidates whose effect is always covered by the blanket clause of an
// ancestor. The retained candidates are returned in input order.
func Analyze(candidates []*api.Candidate, target api.IDSet) []*api.Candidate {
	return analyze(candidates, target, true)
}

func analyze(candidates []*api.Candidate, target api.IDSet, dropRedundant bool) []*api.Candidate {
	redundant := api.IDSet{}
	mark := func(c *api.Candidate) {
		if dropRedundant {
			markDescendants(redundant, c)
		}
	}
	for _, c := range candidates {
		if redundant.Has(c.ID) {
			continue
		}
		c.InTargetSet = target.Has(c.ID)
		var options api.Options
		if c.InTargetSet {
			switch {
			case c.IsLeaf():
				// nothing to expand, so INCLUDE would be a duplicate
				options = options.Add(api.IncludeWithDescendants)
			case target.ContainsAll(c.Descendants):
				options = options.Add(api.IncludeWithDescendants)
				mark(c)
			default:
				options = options.Add(api.Include).Add(api.IncludeWithDescendants)
			}
		} else {
			switch {
			case c.IsLeaf():
				options = options.Add(api.ExcludeWithDescendants)
			case !c.Descendants.Intersects(target):
				options = options.Add(api.ExcludeWithDescendants)
				mark(c)
			default:
				options = options.Add(api.Exclude).Add(api.ExcludeWithDescendants)
			}
		}
		c.ValidOptions = options
	}

	retained := make([]*api.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if redundant.Has(c.ID) {
			logrus.Debugf("Removing concept %d, it is covered by an ancestor", c.ID)
			continue
		}
		retained = append(retained, c)
	}

	for _, c := range retained {
		// a surplus concept nobody includes never needs an exclusion
		if !c.InTargetSet || reachable(c, retained) {
			c.ValidOptions = c.ValidOptions.Add(api.Ignore)
		}
	}
	return retained
}

func markDescendants(redundant api.IDSet, c *api.Candidate) {
	for id := range c.Descendants {
		if id != c.ID {
			redundant.Add(id)
		}
	}
}

// reachable reports whether another candidate's descendants contain c, which
// is what makes it safe to leave c out of the expression.
func reachable(c *api.Candidate, candidates []*api.Candidate) bool {
	for _, other := range candidates {
		if other != c && other.Descendants.Has(c.ID) {
			return true
		}
	}
	return false
}
