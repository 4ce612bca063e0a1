package lang

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/heapsynth/heapsynth/pkg/synthesis/spec"
)

func TestSequence(t *testing.T) {
	load := Load{Dst: "a", Tpe: spec.TypeInt, Src: "x"}
	store := Store{Dst: spec.Var("x"), Val: spec.Var("a")}

	for _, tt := range []struct {
		name string
		in   []Statement
		out  Statement
	}{
		{name: "empty", in: nil, out: Skip{}},
		{name: "skips collapse", in: []Statement{Skip{}, Skip{}}, out: Skip{}},
		{name: "single statement unwrapped", in: []Statement{Skip{}, load, Skip{}}, out: load},
		{name: "nils dropped", in: []Statement{nil, load, nil, store}, out: Seq{Head: load, Tail: store}},
		{
			name: "left fold",
			in:   []Statement{load, store, Free{Ptr: "x"}},
			out:  Seq{Head: Seq{Head: load, Tail: store}, Tail: Free{Ptr: "x"}},
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.out, Sequence(tt.in...))
		})
	}
}

func TestSize(t *testing.T) {
	load := Load{Dst: "a", Tpe: spec.TypeInt, Src: "x"}
	assert.Equal(t, 0, Size(Skip{}))
	assert.Equal(t, 2, Size(Seq{Head: load, Tail: Store{Dst: spec.Var("x"), Val: spec.Var("a")}}))
	assert.Equal(t, 2, Size(If{Cond: spec.BoolLit(true), Then: load, Else: Skip{}}))
}

func TestProcedurePrinting(t *testing.T) {
	p := Procedure{
		Name:   "swap",
		Ret:    spec.TypeVoid,
		Params: []spec.Param{{Name: "x", Type: spec.TypeLoc}, {Name: "y", Type: spec.TypeLoc}},
		Body: Sequence(
			Load{Dst: "a1", Tpe: spec.TypeInt, Src: "x"},
			Load{Dst: "b1", Tpe: spec.TypeInt, Src: "y"},
			Store{Dst: spec.Var("x"), Val: spec.Var("b1")},
			Store{Dst: spec.Var("y"), Val: spec.Var("a1")},
		),
	}
	assert.Equal(t, `void swap(loc x, loc y) {
  let a1 = *x;
  let b1 = *y;
  *x = b1;
  *y = a1;
}
`, p.String())
}

func TestOffsetPrinting(t *testing.T) {
	body := Sequence(
		Malloc{Dst: "z", Size: 2},
		Load{Dst: "v", Tpe: spec.TypeInt, Src: "x", Off: 1},
		Store{Dst: spec.Var("z"), Off: 1, Val: spec.Var("v")},
	)
	assert.Equal(t, `let z = malloc(2);
let v = *(x + 1);
*(z + 1) = v;
`, Print(body))
}
