package solver

import (
	"github.com/pkg/errors"

	"github.com/heapsynth/heapsynth/pkg/synthesis/lang"
)

// ErrInvariant marks conditions that cannot arise unless the engine
// itself is defective. Recovery would risk an unsound program, so
// callers must treat it as fatal.
var ErrInvariant = errors.New("internal invariant violated")

// extractor assembles the solution of a solved goal by walking the
// recorded AND-edges. Solutions are memoized per entry so that shared
// subgoals are extracted once. Rules are expected to produce subgoals
// strictly deeper than their parents, but structural sharing can fold
// a no-progress subgoal back onto its own entry; the visiting set
// turns such a cycle into a diagnostic instead of unbounded descent.
type extractor struct {
	solutions map[*goalEntry]lang.Statement
	visiting  map[*goalEntry]struct{}
}

func newExtractor() *extractor {
	return &extractor{
		solutions: make(map[*goalEntry]lang.Statement),
		visiting:  make(map[*goalEntry]struct{}),
	}
}

func (x *extractor) solution(e *goalEntry) (lang.Statement, error) {
	if s, ok := x.solutions[e]; ok {
		return s, nil
	}
	if !e.solved {
		return nil, errors.Wrapf(ErrInvariant, "extraction attempted on unsolved goal %s", e.goal)
	}
	if _, ok := x.visiting[e]; ok {
		return nil, errors.Wrapf(ErrInvariant, "derivation of goal %s depends on itself", e.goal)
	}
	x.visiting[e] = struct{}{}
	defer delete(x.visiting, e)
	for _, imp := range e.implications {
		if !imp.solved() {
			continue
		}
		children := make([]lang.Statement, len(imp.subgoals))
		for i, sub := range imp.subgoals {
			s, err := x.solution(sub)
			if err != nil {
				return nil, err
			}
			children[i] = s
		}
		s, err := imp.assemble(children)
		if err != nil {
			return nil, errors.Wrapf(err, "assembling solution of %s via %s", e.goal, imp.rule)
		}
		x.solutions[e] = s
		return s, nil
	}
	return nil, errors.Wrapf(ErrInvariant, "goal %s marked solved but has no fully solved derivation", e.goal)
}
