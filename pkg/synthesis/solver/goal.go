package solver

import (
	"fmt"

	"github.com/mitchellh/hashstructure"

	"github.com/heapsynth/heapsynth/pkg/synthesis/spec"
)

// Application records one rule applied on the path from the root to a
// goal. The Commutes flag is copied from the rule's descriptor so that
// history fingerprints can be computed without consulting the rule set.
type Application struct {
	Rule     string
	Commutes bool
}

// Goal is a single pending proof obligation. Goals are immutable after
// creation; all status lives in the shared table, keyed by structural
// identity of the obligation.
type Goal struct {
	Spec    *spec.Spec
	Depth   int
	Cost    int
	History []Application

	key  string
	hash uint64
}

type goalKey struct {
	Spec string
}

func newGoal(s *spec.Spec, depth int, history []Application) *Goal {
	key := s.Canon()
	hash, err := hashstructure.Hash(goalKey{Spec: key}, nil)
	if err != nil {
		// Hashing a struct of strings cannot fail.
		panic(fmt.Sprintf("solver: goal hash: %v", err))
	}
	return &Goal{
		Spec:    s,
		Depth:   depth,
		Cost:    s.Cost(),
		History: history,
		key:     key,
		hash:    hash,
	}
}

// NewRootGoal builds the goal for a top-level obligation.
func NewRootGoal(s *spec.Spec) *Goal {
	return NewRootGoalAt(s, 0)
}

// NewRootGoalAt builds a root goal with a preset depth; useful when an
// obligation is spawned from an outer derivation.
func NewRootGoalAt(s *spec.Spec, depth int) *Goal {
	return newGoal(s, depth, nil)
}

// Child derives the subgoal obtained by applying app to g. Subgoals
// are strictly deeper than their parent, which keeps the search graph
// acyclic.
func (g *Goal) Child(s *spec.Spec, app Application) *Goal {
	history := make([]Application, len(g.History), len(g.History)+1)
	copy(history, g.History)
	return newGoal(s, g.Depth+1, append(history, app))
}

// Key returns the canonical form used for structural identity. Two
// goals with equal keys are the same node of the search graph.
func (g *Goal) Key() string {
	return g.key
}

// Hash returns a content hash of Key, used to index the goal arena.
func (g *Goal) Hash() uint64 {
	return g.hash
}

func (g *Goal) String() string {
	return fmt.Sprintf("goal(depth=%d, cost=%d) %s", g.Depth, g.Cost, g.Spec)
}
