package spec

import (
	"fmt"
	"sort"
	"strings"
)

// Heaplet values are the atomic pieces of a symbolic heap.
type Heaplet interface {
	fmt.Stringer
	isHeaplet()
}

// PointsTo asserts that the cell at Loc plus Off holds Val.
type PointsTo struct {
	Loc Expr
	Off int
	Val Expr
}

func (p PointsTo) String() string {
	if p.Off == 0 {
		return fmt.Sprintf("%s :-> %s", p.Loc, p.Val)
	}
	return fmt.Sprintf("(%s + %d) :-> %s", p.Loc, p.Off, p.Val)
}

// Block asserts that Loc is the base of an allocated block of Size cells.
type Block struct {
	Loc  Expr
	Size int
}

func (b Block) String() string {
	return fmt.Sprintf("[%s, %d]", b.Loc, b.Size)
}

func (PointsTo) isHeaplet() {}
func (Block) isHeaplet()    {}

// HeapletVars adds every variable occurring in h to vs.
func HeapletVars(h Heaplet, vs VarSet) {
	switch x := h.(type) {
	case PointsTo:
		ExprVars(x.Loc, vs)
		ExprVars(x.Val, vs)
	case Block:
		ExprVars(x.Loc, vs)
	}
}

// SubstHeaplet applies sub to h, returning a new heaplet.
func SubstHeaplet(h Heaplet, sub Subst) Heaplet {
	switch x := h.(type) {
	case PointsTo:
		return PointsTo{Loc: SubstExpr(x.Loc, sub), Off: x.Off, Val: SubstExpr(x.Val, sub)}
	case Block:
		return Block{Loc: SubstExpr(x.Loc, sub), Size: x.Size}
	default:
		return h
	}
}

// Assertion is one side of a specification: a conjunction of pure
// formulas together with a symbolic heap.
type Assertion struct {
	Pure []Expr
	Heap []Heaplet
}

func (a Assertion) String() string {
	pure := "true"
	if len(a.Pure) > 0 {
		pure = joinStrings(a.Pure, " && ")
	}
	heap := "emp"
	if len(a.Heap) > 0 {
		s := make([]string, len(a.Heap))
		for i, h := range a.Heap {
			s[i] = h.String()
		}
		heap = strings.Join(s, " ** ")
	}
	return fmt.Sprintf("{%s ; %s}", pure, heap)
}

// Canon renders the assertion in a normal form that is insensitive to
// the order of pure conjuncts and heaplets. Separating conjunction and
// logical conjunction are commutative, so two assertions with equal
// canonical forms denote the same obligation.
func (a Assertion) Canon() string {
	pure := make([]string, len(a.Pure))
	for i, e := range a.Pure {
		pure[i] = e.String()
	}
	sort.Strings(pure)
	heap := make([]string, len(a.Heap))
	for i, h := range a.Heap {
		heap[i] = h.String()
	}
	sort.Strings(heap)
	return strings.Join(pure, " && ") + " ; " + strings.Join(heap, " ** ")
}

// Subst applies sub to every pure conjunct and heaplet, returning a
// new assertion.
func (a Assertion) Subst(sub Subst) Assertion {
	out := Assertion{
		Pure: make([]Expr, len(a.Pure)),
		Heap: make([]Heaplet, len(a.Heap)),
	}
	for i, e := range a.Pure {
		out.Pure[i] = SubstExpr(e, sub)
	}
	for i, h := range a.Heap {
		out.Heap[i] = SubstHeaplet(h, sub)
	}
	return out
}

// Vars returns the set of variables occurring anywhere in the assertion.
func (a Assertion) Vars() VarSet {
	vs := make(VarSet)
	for _, e := range a.Pure {
		ExprVars(e, vs)
	}
	for _, h := range a.Heap {
		HeapletVars(h, vs)
	}
	return vs
}

// Size measures the assertion's footprint for scheduling purposes.
// Heaplets dominate pure conjuncts.
func (a Assertion) Size() int {
	n := 2 * len(a.Heap)
	for _, e := range a.Pure {
		n += ExprSize(e)
	}
	return n
}

// RemoveHeaplet returns a copy of the assertion without the heaplet at
// index i.
func (a Assertion) RemoveHeaplet(i int) Assertion {
	out := a
	out.Heap = make([]Heaplet, 0, len(a.Heap)-1)
	out.Heap = append(out.Heap, a.Heap[:i]...)
	out.Heap = append(out.Heap, a.Heap[i+1:]...)
	return out
}

// ReplaceHeaplet returns a copy of the assertion with the heaplet at
// index i replaced by h.
func (a Assertion) ReplaceHeaplet(i int, h Heaplet) Assertion {
	out := a
	out.Heap = make([]Heaplet, len(a.Heap))
	copy(out.Heap, a.Heap)
	out.Heap[i] = h
	return out
}
