package entailment

import (
	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"
	"github.com/pkg/errors"

	"github.com/heapsynth/heapsynth/pkg/synthesis/spec"
)

// litMapping performs translation between pure formulas and the
// literals that appear in the SAT formula. Boolean connectives become
// circuit nodes; every other leaf is an uninterpreted atom identified
// by its canonical rendering, so syntactically equal atoms share a
// literal across all formulas of one query.
type litMapping struct {
	c     *logic.C
	atoms map[string]z.Lit
}

func newLitMapping() *litMapping {
	return &litMapping{
		c:     logic.NewC(),
		atoms: make(map[string]z.Lit),
	}
}

func (d *litMapping) litsOf(forms []spec.Expr) ([]z.Lit, error) {
	ms := make([]z.Lit, 0, len(forms))
	for _, e := range forms {
		m, err := d.litOf(e)
		if err != nil {
			return nil, err
		}
		ms = append(ms, m)
	}
	return ms, nil
}

func (d *litMapping) litOf(e spec.Expr) (z.Lit, error) {
	switch x := e.(type) {
	case spec.BoolLit:
		if bool(x) {
			return d.c.T, nil
		}
		return d.c.F, nil
	case spec.Var:
		return d.atom(x), nil
	case spec.Unary:
		if x.Op != spec.OpNot {
			return z.LitNull, errors.Errorf("unknown unary operator %q", x.Op)
		}
		m, err := d.litOf(x.Operand)
		if err != nil {
			return z.LitNull, err
		}
		return m.Not(), nil
	case spec.Binary:
		switch x.Op {
		case spec.OpAnd, spec.OpOr:
			l, err := d.litOf(x.Left)
			if err != nil {
				return z.LitNull, err
			}
			r, err := d.litOf(x.Right)
			if err != nil {
				return z.LitNull, err
			}
			if x.Op == spec.OpAnd {
				return d.c.And(l, r), nil
			}
			return d.c.Or(l, r), nil
		case spec.OpEq, spec.OpNe, spec.OpLt, spec.OpLe:
			return d.relation(x), nil
		case spec.OpPlus, spec.OpMinus:
			return z.LitNull, errors.Errorf("arithmetic expression %s in boolean position", x)
		default:
			return z.LitNull, errors.Errorf("unknown binary operator %q", x.Op)
		}
	default:
		return z.LitNull, errors.Errorf("cannot translate expression %v", e)
	}
}

// relation maps a relational leaf to an atom. Equality is normalized
// by operand order and disequality is the negated equality, which is
// the only theory reasoning the abstraction performs; reflexive cases
// fold to constants.
func (d *litMapping) relation(x spec.Binary) z.Lit {
	l, r := x.Left.String(), x.Right.String()
	switch x.Op {
	case spec.OpEq, spec.OpNe:
		if l == r {
			if x.Op == spec.OpEq {
				return d.c.T
			}
			return d.c.F
		}
		if l > r {
			l, r = r, l
		}
		m := d.atomKey("(" + l + " == " + r + ")")
		if x.Op == spec.OpNe {
			return m.Not()
		}
		return m
	case spec.OpLt:
		if l == r {
			return d.c.F
		}
	case spec.OpLe:
		if l == r {
			return d.c.T
		}
	}
	return d.atom(x)
}

func (d *litMapping) atom(e spec.Expr) z.Lit {
	return d.atomKey(e.String())
}

func (d *litMapping) atomKey(key string) z.Lit {
	if m, ok := d.atoms[key]; ok {
		return m
	}
	m := d.c.Lit()
	d.atoms[key] = m
	return m
}
