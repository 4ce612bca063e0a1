// Package entailment discharges the pure-logic side conditions raised
// by inference rules. Formulas are abstracted propositionally: boolean
// structure is compiled to a circuit and every relational or
// arithmetic leaf becomes an opaque atom, so validity answers are
// sound but incomplete. Rules treat "not proven" as "not applicable".
package entailment

import (
	"github.com/go-air/gini"
	"github.com/heapsynth/heapsynth/pkg/synthesis/spec"
)

const (
	satisfiable   = 1
	unsatisfiable = -1
)

// Prover answers queries about pure formulas.
type Prover interface {
	// Valid reports whether the hypotheses entail the conclusion.
	Valid(hyps []spec.Expr, concl spec.Expr) (bool, error)
	// Satisfiable reports whether the conjunction of the formulas
	// has a model.
	Satisfiable(forms []spec.Expr) (bool, error)
}

// New returns a Prover backed by the gini SAT solver. Each query
// compiles its formulas into a fresh solver instance; the prover
// itself carries no state and is safe to share.
func New() Prover {
	return prover{}
}

type prover struct{}

func (prover) Satisfiable(forms []spec.Expr) (bool, error) {
	d := newLitMapping()
	roots, err := d.litsOf(forms)
	if err != nil {
		return false, err
	}
	g := gini.New()
	d.c.ToCnf(g)
	g.Assume(roots...)
	return g.Solve() == satisfiable, nil
}

func (p prover) Valid(hyps []spec.Expr, concl spec.Expr) (bool, error) {
	forms := make([]spec.Expr, 0, len(hyps)+1)
	forms = append(forms, hyps...)
	forms = append(forms, spec.Unary{Op: spec.OpNot, Operand: concl})
	sat, err := p.Satisfiable(forms)
	if err != nil {
		return false, err
	}
	return !sat, nil
}
