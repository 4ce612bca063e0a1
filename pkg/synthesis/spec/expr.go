package spec

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Var names a logical or program-level variable.
type Var string

func (v Var) String() string {
	return string(v)
}

// VarSet is a set of variable names.
type VarSet map[Var]struct{}

func (s VarSet) Has(v Var) bool {
	_, ok := s[v]
	return ok
}

func (s VarSet) Add(v Var) {
	s[v] = struct{}{}
}

func (s VarSet) Union(other VarSet) VarSet {
	for v := range other {
		s.Add(v)
	}
	return s
}

// Sorted returns the members of the set in lexicographic order.
func (s VarSet) Sorted() []Var {
	vs := make([]Var, 0, len(s))
	for v := range s {
		vs = append(vs, v)
	}
	sort.Slice(vs, func(i, j int) bool { return vs[i] < vs[j] })
	return vs
}

// FreshVar returns a variable derived from base that does not appear
// in taken. The result is deterministic for a given base and set.
func FreshVar(base Var, taken VarSet) Var {
	if !taken.Has(base) {
		return base
	}
	for i := 1; ; i++ {
		v := Var(string(base) + strconv.Itoa(i))
		if !taken.Has(v) {
			return v
		}
	}
}

// Expr values are pure (heap-free) expressions over variables,
// integer and boolean literals.
type Expr interface {
	fmt.Stringer
	isExpr()
}

type IntLit int64

func (n IntLit) String() string {
	return strconv.FormatInt(int64(n), 10)
}

type BoolLit bool

func (b BoolLit) String() string {
	return strconv.FormatBool(bool(b))
}

type BinOp string

const (
	OpPlus  BinOp = "+"
	OpMinus BinOp = "-"
	OpEq    BinOp = "=="
	OpNe    BinOp = "!="
	OpLt    BinOp = "<"
	OpLe    BinOp = "<="
	OpAnd   BinOp = "&&"
	OpOr    BinOp = "||"
)

// Binary applies a binary operator to two subexpressions.
type Binary struct {
	Op          BinOp
	Left, Right Expr
}

func (b Binary) String() string {
	return fmt.Sprintf("(%s %s %s)", b.Left, b.Op, b.Right)
}

type UnOp string

const (
	OpNot UnOp = "!"
)

// Unary applies a unary operator to one subexpression.
type Unary struct {
	Op      UnOp
	Operand Expr
}

func (u Unary) String() string {
	return fmt.Sprintf("%s%s", u.Op, u.Operand)
}

func (Var) isExpr()     {}
func (IntLit) isExpr()  {}
func (BoolLit) isExpr() {}
func (Binary) isExpr()  {}
func (Unary) isExpr()   {}

// ExprVars adds every variable occurring in e to vs.
func ExprVars(e Expr, vs VarSet) {
	switch x := e.(type) {
	case Var:
		vs.Add(x)
	case Binary:
		ExprVars(x.Left, vs)
		ExprVars(x.Right, vs)
	case Unary:
		ExprVars(x.Operand, vs)
	}
}

// ExprSize measures an expression by its node count.
func ExprSize(e Expr) int {
	switch x := e.(type) {
	case Binary:
		return 1 + ExprSize(x.Left) + ExprSize(x.Right)
	case Unary:
		return 1 + ExprSize(x.Operand)
	default:
		return 1
	}
}

// Subst maps variables to replacement expressions.
type Subst map[Var]Expr

// SubstExpr applies sub to e, returning a new expression. Variables
// absent from sub are left in place.
func SubstExpr(e Expr, sub Subst) Expr {
	switch x := e.(type) {
	case Var:
		if r, ok := sub[x]; ok {
			return r
		}
		return x
	case Binary:
		return Binary{Op: x.Op, Left: SubstExpr(x.Left, sub), Right: SubstExpr(x.Right, sub)}
	case Unary:
		return Unary{Op: x.Op, Operand: SubstExpr(x.Operand, sub)}
	default:
		return e
	}
}

// Conjoin folds a slice of expressions into a single conjunction.
// An empty slice conjoins to true.
func Conjoin(es []Expr) Expr {
	if len(es) == 0 {
		return BoolLit(true)
	}
	acc := es[0]
	for _, e := range es[1:] {
		acc = Binary{Op: OpAnd, Left: acc, Right: e}
	}
	return acc
}

func joinStrings(es []Expr, sep string) string {
	s := make([]string, len(es))
	for i, e := range es {
		s[i] = e.String()
	}
	return strings.Join(s, sep)
}
