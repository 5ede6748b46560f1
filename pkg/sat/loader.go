package sat

import (
	"fmt"
	"strconv"

	"github.com/crillab/gophersat/bf"
	"github.com/crillab/gophersat/solver"
	"github.com/ohdsi/condenser/pkg/api"
	"github.com/sirupsen/logrus"
)

// Var stands for one clause kind of one candidate. If it is true, the
// candidate appears in the expression with that kind.
type Var struct {
	satVarName string
	lit        int
	Candidate  *api.Candidate
	Kind       api.ClauseKind
}

func (v *Var) String() string {
	return fmt.Sprintf("%d(%s)", v.Candidate.ID, v.Kind)
}

type Model struct {
	target api.IDSet
	// vars holds the variable with literal i+1 at index i
	vars    []*Var
	byName  map[string]*Var
	ands    []bf.Formula
	constrs []solver.PBConstr
}

type Loader struct {
	m         *Model
	varsCount int
}

func NewLoader() *Loader {
	return &Loader{
		m: &Model{
			byName: map[string]*Var{},
		},
		varsCount: 0,
	}
}

// Load encodes the choice of clause kinds for already analyzed candidates.
// Candidates without Ignore among their valid options must take one of their
// other kinds. Every concept of the target has to be added by some chosen
// inclusion and removed by no chosen exclusion, and every other concept that
// is added has to be removed again.
func (loader *Loader) Load(candidates []*api.Candidate, target api.IDSet) (*Model, error) {
	loader.m.target = target
	includers := map[api.Identifier][]*Var{}
	excluders := map[api.Identifier][]*Var{}
	universe := target.Clone()

	for _, c := range candidates {
		var candidateVars []*Var
		for _, kind := range c.ValidOptions.Kinds() {
			if kind == api.Ignore {
				continue
			}
			v := loader.newVar(c, kind)
			candidateVars = append(candidateVars, v)
			for id := range c.Expansion(kind) {
				universe.Add(id)
				if kind.IsInclusion() {
					includers[id] = append(includers[id], v)
				} else {
					excluders[id] = append(excluders[id], v)
				}
			}
		}
		loader.atMostOne(candidateVars, !c.ValidOptions.Has(api.Ignore))
	}
	logrus.Debugf("Generated %v variables.", len(loader.m.vars))

	for _, id := range universe.Sorted() {
		if target.Has(id) {
			if len(includers[id]) == 0 {
				return nil, fmt.Errorf("nothing can include concept %d", id)
			}
			loader.m.constrs = append(loader.m.constrs, solver.PropClause(toLits(includers[id])...))
			ands := []bf.Formula{bf.Or(toBFVars(includers[id])...)}
			for _, v := range excluders[id] {
				loader.m.constrs = append(loader.m.constrs, solver.PropClause(-v.lit))
				ands = append(ands, bf.Not(bf.Var(v.satVarName)))
			}
			loader.m.ands = append(loader.m.ands, bf.And(ands...))
			continue
		}
		if len(includers[id]) == 0 {
			continue
		}
		for _, v := range includers[id] {
			loader.m.constrs = append(loader.m.constrs, solver.PropClause(append([]int{-v.lit}, toLits(excluders[id])...)...))
		}
		if len(excluders[id]) == 0 {
			loader.m.ands = append(loader.m.ands, bf.Not(bf.Or(toBFVars(includers[id])...)))
		} else {
			loader.m.ands = append(loader.m.ands, bf.Implies(bf.Or(toBFVars(includers[id])...), bf.Or(toBFVars(excluders[id])...)))
		}
	}
	logrus.Debugf("Generated %v constraints.", len(loader.m.constrs))
	return loader.m, nil
}

func (loader *Loader) atMostOne(vars []*Var, required bool) {
	if len(vars) == 0 {
		return
	}
	if required {
		loader.m.constrs = append(loader.m.constrs, solver.AtLeast(toLits(vars), 1))
		loader.m.ands = append(loader.m.ands, bf.Or(toBFVars(vars)...))
	}
	if len(vars) < 2 {
		return
	}
	loader.m.constrs = append(loader.m.constrs, solver.AtMost(toLits(vars), 1))
	for i := range vars {
		for j := i + 1; j < len(vars); j++ {
			loader.m.ands = append(loader.m.ands, bf.Not(bf.And(bf.Var(vars[i].satVarName), bf.Var(vars[j].satVarName))))
		}
	}
}

func (loader *Loader) newVar(c *api.Candidate, kind api.ClauseKind) *Var {
	lit := loader.ticket()
	v := &Var{
		satVarName: "x" + strconv.Itoa(lit),
		lit:        lit,
		Candidate:  c,
		Kind:       kind,
	}
	loader.m.vars = append(loader.m.vars, v)
	loader.m.byName[v.satVarName] = v
	return v
}

func (loader *Loader) ticket() int {
	loader.varsCount++
	return loader.varsCount
}

func toBFVars(vars []*Var) (bfvars []bf.Formula) {
	for _, v := range vars {
		bfvars = append(bfvars, bf.Var(v.satVarName))
	}
	return
}

func toLits(vars []*Var) (lits []int) {
	for _, v := range vars {
		lits = append(lits, v.lit)
	}
	return
}
