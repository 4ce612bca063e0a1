package solver

import (
	"github.com/pkg/errors"

	"github.com/heapsynth/heapsynth/pkg/synthesis/lang"
)

// Continuation assembles the solution of a goal from the solutions of
// the subgoals of one of its derivations, in order. It must be total
// over argument lists of the recorded subgoal count.
type Continuation func(children []lang.Statement) (lang.Statement, error)

// Subderivation is one candidate way to resolve a goal: a conjunction
// of subgoals plus the continuation that assembles their solutions.
// Zero subgoals means the goal is solved outright by Assemble(nil).
type Subderivation struct {
	Subgoals []*Goal
	Assemble Continuation
}

// Rule is one inference rule of the synthesizer. Implementations must
// be pure and terminating; an empty candidate set means the rule does
// not apply and is never an error.
type Rule interface {
	// Name identifies the rule in derivation histories and traces.
	Name() string
	// Invertible rules are assumed to never lose solutions: once
	// one produces candidates for a goal, no later rule needs to
	// be consulted for that goal.
	Invertible() bool
	// Commutes marks rules whose applications may be reordered
	// without changing the derived goal, enabling commutation
	// pruning across them.
	Commutes() bool
	// Expand produces the candidate derivations for a goal.
	Expand(g *Goal) ([]Subderivation, error)
}

// candidate pairs a surviving subderivation with the rule that
// produced it.
type candidate struct {
	rule string
	sub  Subderivation
}

// applyRules tries each rule in priority order. When invert is set,
// the first invertible rule to yield candidates short-circuits the
// rest of the list; otherwise every rule is consulted and all
// candidates are unioned in list order.
func applyRules(rules []Rule, g *Goal, invert bool) ([]candidate, error) {
	var out []candidate
	for _, r := range rules {
		subs, err := r.Expand(g)
		if err != nil {
			return nil, errors.Wrapf(err, "rule %s", r.Name())
		}
		if len(subs) == 0 {
			continue
		}
		for _, sub := range subs {
			out = append(out, candidate{rule: r.Name(), sub: sub})
		}
		if invert && r.Invertible() {
			break
		}
	}
	return out, nil
}
