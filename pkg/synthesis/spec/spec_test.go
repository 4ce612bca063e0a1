package spec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func swapSpec() *Spec {
	return &Spec{
		Pre: Assertion{
			Heap: []Heaplet{
				PointsTo{Loc: Var("x"), Val: Var("a")},
				PointsTo{Loc: Var("y"), Val: Var("b")},
			},
		},
		Post: Assertion{
			Heap: []Heaplet{
				PointsTo{Loc: Var("x"), Val: Var("b")},
				PointsTo{Loc: Var("y"), Val: Var("a")},
			},
		},
		Params: []Param{{Name: "x", Type: TypeLoc}, {Name: "y", Type: TypeLoc}},
		Env:    NewEnvironment(),
	}
}

func TestCanonIgnoresConjunctOrder(t *testing.T) {
	a := Assertion{
		Pure: []Expr{Binary{Op: OpLt, Left: Var("a"), Right: Var("b")}, Var("p")},
		Heap: []Heaplet{
			PointsTo{Loc: Var("x"), Val: Var("a")},
			PointsTo{Loc: Var("y"), Val: Var("b")},
		},
	}
	b := Assertion{
		Pure: []Expr{Var("p"), Binary{Op: OpLt, Left: Var("a"), Right: Var("b")}},
		Heap: []Heaplet{
			PointsTo{Loc: Var("y"), Val: Var("b")},
			PointsTo{Loc: Var("x"), Val: Var("a")},
		},
	}
	assert.Equal(t, a.Canon(), b.Canon())
	assert.NotEqual(t, a.String(), b.String())
}

func TestSpecCanonDistinguishesSides(t *testing.T) {
	s := swapSpec()
	flipped := s.With(s.Post, s.Pre)
	assert.NotEqual(t, s.Canon(), flipped.Canon())
	assert.Equal(t, s.Canon(), s.With(s.Pre, s.Post).Canon())
}

func TestVarClassification(t *testing.T) {
	s := swapSpec()
	s.Post.Pure = []Expr{Binary{Op: OpEq, Left: Var("a"), Right: Var("z")}}

	assert.ElementsMatch(t, []Var{"x", "y"}, s.ProgramVars().Sorted())
	assert.ElementsMatch(t, []Var{"a", "b"}, s.Ghosts().Sorted())
	assert.ElementsMatch(t, []Var{"z"}, s.Existentials().Sorted())
	assert.ElementsMatch(t, []Var{"a", "b", "x", "y", "z"}, s.AllVars().Sorted())
}

func TestSubstReachesBothSides(t *testing.T) {
	s := swapSpec()
	out := s.Subst(Subst{"a": Var("a1"), "b": Var("b1")})

	assert.Equal(t, PointsTo{Loc: Var("x"), Val: Var("a1")}, out.Pre.Heap[0])
	assert.Equal(t, PointsTo{Loc: Var("y"), Val: Var("a1")}, out.Post.Heap[1])
	// The receiver is untouched.
	assert.Equal(t, PointsTo{Loc: Var("x"), Val: Var("a")}, s.Pre.Heap[0])
}

func TestSubstExprLeavesUnboundVars(t *testing.T) {
	e := Binary{Op: OpPlus, Left: Var("a"), Right: Binary{Op: OpMinus, Left: Var("b"), Right: IntLit(1)}}
	out := SubstExpr(e, Subst{"a": IntLit(7)})
	assert.Equal(t, "(7 + (b - 1))", out.String())
}

func TestFreshVar(t *testing.T) {
	taken := VarSet{}
	assert.Equal(t, Var("a"), FreshVar("a", taken))

	taken.Add("a")
	taken.Add("a1")
	assert.Equal(t, Var("a2"), FreshVar("a", taken))
}

func TestWithParamCopies(t *testing.T) {
	s := swapSpec()
	out := s.WithParam(Param{Name: "v", Type: TypeInt})
	assert.Len(t, out.Params, 3)
	assert.Len(t, s.Params, 2)
	assert.True(t, out.ProgramVars().Has("v"))
}

func TestCost(t *testing.T) {
	s := swapSpec()
	// Two heaplets on each side, no pure conjuncts.
	assert.Equal(t, 8, s.Cost())
}

func TestConjoin(t *testing.T) {
	assert.Equal(t, BoolLit(true), Conjoin(nil))
	assert.Equal(t, Var("p"), Conjoin([]Expr{Var("p")}))
	assert.Equal(t, "((p && q) && r)", Conjoin([]Expr{Var("p"), Var("q"), Var("r")}).String())
}

func TestTriviallyUnsolvable(t *testing.T) {
	base := swapSpec()
	for _, tt := range []struct {
		name string
		pre  []Expr
		post []Expr
		want bool
	}{
		{name: "plain spec", want: false},
		{name: "false post", post: []Expr{BoolLit(false)}, want: true},
		{name: "false post under true pre", pre: []Expr{BoolLit(true)}, post: []Expr{BoolLit(false)}, want: true},
		{name: "contradictory pre rescues the goal", pre: []Expr{BoolLit(false)}, post: []Expr{BoolLit(false)}, want: false},
		{name: "non-literal pre may be inconsistent", pre: []Expr{Var("p")}, post: []Expr{BoolLit(false)}, want: false},
	} {
		t.Run(tt.name, func(t *testing.T) {
			s := base.With(
				Assertion{Pure: tt.pre, Heap: base.Pre.Heap},
				Assertion{Pure: tt.post, Heap: base.Post.Heap},
			)
			assert.Equal(t, tt.want, s.TriviallyUnsolvable())
		})
	}
}

func TestAssertionHelpers(t *testing.T) {
	a := Assertion{Heap: []Heaplet{
		PointsTo{Loc: Var("x"), Val: Var("a")},
		Block{Loc: Var("x"), Size: 2},
		PointsTo{Loc: Var("x"), Off: 1, Val: IntLit(0)},
	}}

	removed := a.RemoveHeaplet(1)
	assert.Len(t, removed.Heap, 2)
	assert.Len(t, a.Heap, 3)

	replaced := a.ReplaceHeaplet(0, PointsTo{Loc: Var("x"), Val: Var("b")})
	assert.Equal(t, PointsTo{Loc: Var("x"), Val: Var("b")}, replaced.Heap[0])
	assert.Equal(t, PointsTo{Loc: Var("x"), Val: Var("a")}, a.Heap[0])
}

func TestAssertionPrinting(t *testing.T) {
	assert.Equal(t, "{true ; emp}", Assertion{}.String())
	a := Assertion{
		Pure: []Expr{Binary{Op: OpNe, Left: Var("x"), Right: IntLit(0)}},
		Heap: []Heaplet{Block{Loc: Var("x"), Size: 2}, PointsTo{Loc: Var("x"), Off: 1, Val: Var("v")}},
	}
	assert.Equal(t, "{(x != 0) ; [x, 2] ** (x + 1) :-> v}", a.String())
}
