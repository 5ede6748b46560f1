package condenser

import (
	"math/rand"

	"github.com/ohdsi/condenser/pkg/api"
)

func newCandidate(id api.Identifier, descendants ...api.Identifier) *api.Candidate {
	c, err := api.NewCandidate(id, append([]api.Identifier{id}, descendants...))
	if err != nil {
		panic(err)
	}
	return c
}

// scenarioCandidates is the concept set {1,2,3,4} example with a surplus
// descendant 5 below concept 1.
func scenarioCandidates() []*api.Candidate {
	return []*api.Candidate{
		newCandidate(1, 2, 3, 5),
		newCandidate(2, 3),
		newCandidate(3),
		newCandidate(4),
		newCandidate(5),
	}
}

func clone(candidates []*api.Candidate) []*api.Candidate {
	result := make([]*api.Candidate, 0, len(candidates))
	for _, c := range candidates {
		copied := *c
		result = append(result, &copied)
	}
	return result
}

func ids(candidates []*api.Candidate) (result []api.Identifier) {
	for _, c := range candidates {
		result = append(result, c.ID)
	}
	return
}

func descendantsOf(candidates []*api.Candidate) func(api.Identifier) api.IDSet {
	index := map[api.Identifier]api.IDSet{}
	for _, c := range candidates {
		index[c.ID] = c.Descendants
	}
	return func(id api.Identifier) api.IDSet {
		return index[id]
	}
}

// bruteForce returns the length of the shortest valid assignment over the
// valid options of analyzed candidates, or -1 if there is none.
func bruteForce(candidates []*api.Candidate, target api.IDSet) int {
	best := -1
	kinds := make([]api.ClauseKind, len(candidates))
	var enumerate func(i int)
	enumerate = func(i int) {
		if i == len(candidates) {
			included, excluded := api.IDSet{}, api.IDSet{}
			length := 0
			for j, kind := range kinds {
				switch {
				case kind.IsInclusion():
					included.AddAll(candidates[j].Expansion(kind))
				case kind.IsExclusion():
					excluded.AddAll(candidates[j].Expansion(kind))
				default:
					continue
				}
				length++
			}
			if included.Minus(excluded).Equal(target) && (best < 0 || length < best) {
				best = length
			}
			return
		}
		for _, kind := range candidates[i].ValidOptions.Kinds() {
			kinds[i] = kind
			enumerate(i + 1)
		}
	}
	enumerate(0)
	return best
}

// randomProblem builds a random hierarchy with transitive descendant
// closures, picks a random concept set and returns the concept set together
// with its members and all their descendants as candidates.
func randomProblem(rng *rand.Rand, size int) ([]api.Identifier, []*api.Candidate) {
	children := map[api.Identifier][]api.Identifier{}
	for child := 2; child <= size; child++ {
		for parent := 1; parent < child; parent++ {
			if rng.Intn(3) == 0 {
				children[api.Identifier(parent)] = append(children[api.Identifier(parent)], api.Identifier(child))
			}
		}
	}
	closure := map[api.Identifier]api.IDSet{}
	for id := api.Identifier(size); id >= 1; id-- {
		set := api.NewIDSet(id)
		for _, child := range children[id] {
			set.AddAll(closure[child])
		}
		closure[id] = set
	}

	var target []api.Identifier
	for id := api.Identifier(1); id <= api.Identifier(size); id++ {
		if rng.Intn(2) == 0 {
			target = append(target, id)
		}
	}
	if len(target) == 0 {
		target = append(target, api.Identifier(rng.Intn(size)+1))
	}

	involved := api.IDSet{}
	for _, id := range target {
		involved.AddAll(closure[id])
	}
	order := involved.Sorted()
	rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

	var candidates []*api.Candidate
	for _, id := range order {
		c, err := api.NewCandidate(id, closure[id].Sorted())
		if err != nil {
			panic(err)
		}
		candidates = append(candidates, c)
	}
	return target, candidates
}

func newRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}
