package sat

import (
	"errors"
	"fmt"

	"github.com/crillab/gophersat/bf"
	"github.com/crillab/gophersat/solver"
	"github.com/ohdsi/condenser/pkg/api"
	"github.com/sirupsen/logrus"
)

var ErrUnsatisfiable = errors.New("no expression reproduces the concept set")

// Formula returns the constraints of the model as a boolean formula over the
// variable names x1, x2, ...
func (m *Model) Formula() bf.Formula {
	return bf.And(m.ands...)
}

// Vars returns the variables in literal order.
func (m *Model) Vars() []*Var {
	return m.vars
}

// Resolve finds an expression with the fewest items by minimizing the number
// of true variables under the model's pseudo-boolean constraints.
func Resolve(model *Model) ([]api.Clause, error) {
	if len(model.vars) == 0 {
		if len(model.target) == 0 {
			return []api.Clause{}, nil
		}
		return nil, ErrUnsatisfiable
	}

	pb := solver.ParsePBConstrs(model.constrs)
	lits := make([]solver.Lit, 0, len(model.vars))
	weights := make([]int, 0, len(model.vars))
	for _, v := range model.vars {
		lits = append(lits, solver.IntToLit(int32(v.lit)))
		weights = append(weights, 1)
	}
	pb.SetCostFunc(lits, weights)

	s := solver.New(pb)
	cost := s.Minimize()
	if cost < 0 {
		return nil, ErrUnsatisfiable
	}
	logrus.Debugf("Solver found an optimum of cost %d", cost)

	values := s.Model()
	assignment := map[string]bool{}
	var chosen []*Var
	for i, v := range model.vars {
		value := i < len(values) && values[i]
		assignment[v.satVarName] = value
		if value {
			chosen = append(chosen, v)
		}
	}
	if !model.Formula().Eval(assignment) {
		return nil, fmt.Errorf("solver returned a model which violates the formula")
	}
	return toClauses(chosen), nil
}

// Check reports whether the given expression, read as an assignment of the
// model's variables, satisfies the model. Items which the model has no
// variable for make the check fail with an error.
func (m *Model) Check(clauses []api.Clause) (bool, error) {
	assignment := map[string]bool{}
	for name := range m.byName {
		assignment[name] = false
	}
	for _, clause := range clauses {
		v := m.lookup(clause)
		if v == nil {
			return false, fmt.Errorf("no variable for %v", clause)
		}
		assignment[v.satVarName] = true
	}
	return m.Formula().Eval(assignment), nil
}

func (m *Model) lookup(clause api.Clause) *Var {
	var candidates []*Var
	for _, v := range m.vars {
		if v.Candidate.ID == clause.ConceptID && v.Kind.IsExclusion() == clause.Exclude {
			candidates = append(candidates, v)
		}
	}
	for _, v := range candidates {
		// expanding a leaf is the same as not expanding it
		if v.Kind.Expands() == clause.Descendants || v.Candidate.IsLeaf() {
			return v
		}
	}
	return nil
}

func toClauses(vars []*Var) []api.Clause {
	clauses := make([]api.Clause, 0, len(vars))
	for _, v := range vars {
		clauses = append(clauses, api.Clause{
			ConceptID:   v.Candidate.ID,
			Exclude:     v.Kind.IsExclusion(),
			Descendants: v.Kind.Expands() && !v.Candidate.IsLeaf(),
		})
	}
	return clauses
}
