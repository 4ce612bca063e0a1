// Package rules provides the inference rules driving the synthesizer.
// Each rule rewrites an obligation into zero or more candidate
// derivations; the search engine treats them as opaque. Pure side
// conditions are discharged through the entailment prover.
package rules

import (
	"github.com/pkg/errors"

	"github.com/heapsynth/heapsynth/pkg/synthesis/entailment"
	"github.com/heapsynth/heapsynth/pkg/synthesis/lang"
	"github.com/heapsynth/heapsynth/pkg/synthesis/solver"
	"github.com/heapsynth/heapsynth/pkg/synthesis/spec"
)

// Default returns the standard rule list in priority order.
func Default(p entailment.Prover) []solver.Rule {
	return []solver.Rule{
		Inconsistency(p),
		Emp(p),
		Read(),
		Alloc(),
		Free(),
		Frame(),
		Write(),
	}
}

// descriptor carries the static properties shared by all rules.
type descriptor struct {
	name       string
	invertible bool
	commutes   bool
}

func (d descriptor) Name() string     { return d.name }
func (d descriptor) Invertible() bool { return d.invertible }
func (d descriptor) Commutes() bool   { return d.commutes }

func (d descriptor) child(g *solver.Goal, s *spec.Spec) *solver.Goal {
	return g.Child(s, solver.Application{Rule: d.name, Commutes: d.commutes})
}

// leaf builds the continuation of a derivation with no subgoals.
func leaf(s lang.Statement) solver.Continuation {
	return func(children []lang.Statement) (lang.Statement, error) {
		if len(children) != 0 {
			return nil, errors.Errorf("expected no subsolutions, got %d", len(children))
		}
		return s, nil
	}
}

// prefix builds the continuation of a single-subgoal derivation that
// prepends a statement to the subgoal's solution.
func prefix(head lang.Statement) solver.Continuation {
	return func(children []lang.Statement) (lang.Statement, error) {
		if len(children) != 1 {
			return nil, errors.Errorf("expected one subsolution, got %d", len(children))
		}
		return lang.Sequence(head, children[0]), nil
	}
}

// identity passes a single subgoal's solution through unchanged.
func identity(children []lang.Statement) (lang.Statement, error) {
	if len(children) != 1 {
		return nil, errors.Errorf("expected one subsolution, got %d", len(children))
	}
	return children[0], nil
}

type inconsistency struct {
	descriptor
	prover entailment.Prover
}

// Inconsistency resolves obligations whose precondition has no model:
// the synthesized program can never be entered, so aborting satisfies
// any postcondition.
func Inconsistency(p entailment.Prover) solver.Rule {
	return inconsistency{descriptor{name: "Inconsistency", invertible: true}, p}
}

func (r inconsistency) Expand(g *solver.Goal) ([]solver.Subderivation, error) {
	if len(g.Spec.Pre.Pure) == 0 {
		return nil, nil
	}
	sat, err := r.prover.Satisfiable(g.Spec.Pre.Pure)
	if err != nil {
		return nil, err
	}
	if sat {
		return nil, nil
	}
	return []solver.Subderivation{{Assemble: leaf(lang.Abort{})}}, nil
}

type emp struct {
	descriptor
	prover entailment.Prover
}

// Emp resolves obligations whose heaps are both empty and whose
// postcondition follows from the precondition: doing nothing suffices.
func Emp(p entailment.Prover) solver.Rule {
	return emp{descriptor{name: "Emp", invertible: true}, p}
}

func (r emp) Expand(g *solver.Goal) ([]solver.Subderivation, error) {
	s := g.Spec
	if len(s.Pre.Heap) != 0 || len(s.Post.Heap) != 0 {
		return nil, nil
	}
	if len(s.Existentials()) != 0 {
		// The propositional backend cannot instantiate witnesses.
		return nil, nil
	}
	valid, err := r.prover.Valid(s.Pre.Pure, spec.Conjoin(s.Post.Pure))
	if err != nil {
		return nil, err
	}
	if !valid {
		return nil, nil
	}
	return []solver.Subderivation{{Assemble: leaf(lang.Skip{})}}, nil
}

type read struct {
	descriptor
}

// Read turns a ghost stored in a reachable cell into a program
// variable by loading it, substituting the fresh name throughout the
// obligation. Reading never loses solutions.
func Read() solver.Rule {
	return read{descriptor{name: "Read", invertible: true}}
}

func (r read) Expand(g *solver.Goal) ([]solver.Subderivation, error) {
	s := g.Spec
	prog := s.ProgramVars()
	ghosts := s.Ghosts()
	for _, h := range s.Pre.Heap {
		pt, ok := h.(spec.PointsTo)
		if !ok {
			continue
		}
		v, ok := pt.Val.(spec.Var)
		if !ok || !ghosts.Has(v) {
			continue
		}
		base, ok := pt.Loc.(spec.Var)
		if !ok || !prog.Has(base) {
			continue
		}
		fresh := spec.FreshVar(v, s.AllVars())
		ns := s.Subst(spec.Subst{v: fresh}).WithParam(spec.Param{Name: fresh, Type: spec.TypeInt})
		load := lang.Load{Dst: fresh, Tpe: spec.TypeInt, Src: base, Off: pt.Off}
		return []solver.Subderivation{{
			Subgoals: []*solver.Goal{r.child(g, ns)},
			Assemble: prefix(load),
		}}, nil
	}
	return nil, nil
}

type frame struct {
	descriptor
}

// Frame removes a heaplet occurring verbatim on both sides: whatever
// program solves the rest leaves it untouched.
func Frame() solver.Rule {
	return frame{descriptor{name: "Frame", commutes: true}}
}

func (r frame) Expand(g *solver.Goal) ([]solver.Subderivation, error) {
	s := g.Spec
	for i, h := range s.Pre.Heap {
		for j, h2 := range s.Post.Heap {
			if h.String() != h2.String() {
				continue
			}
			ns := s.With(s.Pre.RemoveHeaplet(i), s.Post.RemoveHeaplet(j))
			return []solver.Subderivation{{
				Subgoals: []*solver.Goal{r.child(g, ns)},
				Assemble: identity,
			}}, nil
		}
	}
	return nil, nil
}

type write struct {
	descriptor
}

// Write reconciles a cell whose required contents differ between the
// two sides by storing the postcondition's value, provided that value
// is expressible over program variables.
func Write() solver.Rule {
	return write{descriptor{name: "Write", commutes: true}}
}

func (r write) Expand(g *solver.Goal) ([]solver.Subderivation, error) {
	s := g.Spec
	prog := s.ProgramVars()
	for i, h := range s.Pre.Heap {
		pt, ok := h.(spec.PointsTo)
		if !ok || !exprOver(pt.Loc, prog) {
			continue
		}
		for _, h2 := range s.Post.Heap {
			qt, ok := h2.(spec.PointsTo)
			if !ok || qt.Off != pt.Off || qt.Loc.String() != pt.Loc.String() {
				continue
			}
			if qt.Val.String() == pt.Val.String() || !exprOver(qt.Val, prog) {
				continue
			}
			npre := s.Pre.ReplaceHeaplet(i, spec.PointsTo{Loc: pt.Loc, Off: pt.Off, Val: qt.Val})
			ns := s.With(npre, s.Post)
			store := lang.Store{Dst: pt.Loc, Off: pt.Off, Val: qt.Val}
			return []solver.Subderivation{{
				Subgoals: []*solver.Goal{r.child(g, ns)},
				Assemble: prefix(store),
			}}, nil
		}
	}
	return nil, nil
}

type free struct {
	descriptor
}

// Free disposes a block whose base the postcondition no longer
// mentions, together with its cells.
func Free() solver.Rule {
	return free{descriptor{name: "Free"}}
}

func (r free) Expand(g *solver.Goal) ([]solver.Subderivation, error) {
	s := g.Spec
	prog := s.ProgramVars()
	for i, h := range s.Pre.Heap {
		blk, ok := h.(spec.Block)
		if !ok {
			continue
		}
		base, ok := blk.Loc.(spec.Var)
		if !ok || !prog.Has(base) {
			continue
		}
		if heapMentions(s.Post.Heap, blk.Loc) {
			continue
		}
		drop, ok := blockCells(s.Pre.Heap, blk)
		if !ok {
			continue
		}
		drop[i] = struct{}{}
		npre := s.Pre
		npre.Heap = nil
		for k, h2 := range s.Pre.Heap {
			if _, gone := drop[k]; !gone {
				npre.Heap = append(npre.Heap, h2)
			}
		}
		ns := s.With(npre, s.Post)
		return []solver.Subderivation{{
			Subgoals: []*solver.Goal{r.child(g, ns)},
			Assemble: prefix(lang.Free{Ptr: base}),
		}}, nil
	}
	return nil, nil
}

type alloc struct {
	descriptor
}

// Alloc realizes a block the postcondition requires at an existential
// location by allocating it, binding the existential to the fresh
// program variable and exposing the block's junk contents as ghosts.
func Alloc() solver.Rule {
	return alloc{descriptor{name: "Alloc"}}
}

func (r alloc) Expand(g *solver.Goal) ([]solver.Subderivation, error) {
	s := g.Spec
	ex := s.Existentials()
	for _, h := range s.Post.Heap {
		blk, ok := h.(spec.Block)
		if !ok {
			continue
		}
		x, ok := blk.Loc.(spec.Var)
		if !ok || !ex.Has(x) {
			continue
		}
		taken := s.AllVars()
		y := spec.FreshVar(x, taken)
		taken.Add(y)
		npre := s.Pre
		npre.Heap = make([]spec.Heaplet, len(s.Pre.Heap), len(s.Pre.Heap)+blk.Size+1)
		copy(npre.Heap, s.Pre.Heap)
		npre.Heap = append(npre.Heap, spec.Block{Loc: y, Size: blk.Size})
		for off := 0; off < blk.Size; off++ {
			t := spec.FreshVar("t", taken)
			taken.Add(t)
			npre.Heap = append(npre.Heap, spec.PointsTo{Loc: y, Off: off, Val: t})
		}
		npost := s.Post.Subst(spec.Subst{x: y})
		ns := s.With(npre, npost).WithParam(spec.Param{Name: y, Type: spec.TypeLoc})
		return []solver.Subderivation{{
			Subgoals: []*solver.Goal{r.child(g, ns)},
			Assemble: prefix(lang.Malloc{Dst: y, Size: blk.Size}),
		}}, nil
	}
	return nil, nil
}

// exprOver reports whether every variable of e is in vs.
func exprOver(e spec.Expr, vs spec.VarSet) bool {
	found := make(spec.VarSet)
	spec.ExprVars(e, found)
	for v := range found {
		if !vs.Has(v) {
			return false
		}
	}
	return true
}

// heapMentions reports whether any heaplet is rooted at loc.
func heapMentions(heap []spec.Heaplet, loc spec.Expr) bool {
	for _, h := range heap {
		switch x := h.(type) {
		case spec.PointsTo:
			if x.Loc.String() == loc.String() {
				return true
			}
		case spec.Block:
			if x.Loc.String() == loc.String() {
				return true
			}
		}
	}
	return false
}

// blockCells locates one points-to heaplet per cell of blk in heap,
// returning their indices; ok is false if any cell is missing.
func blockCells(heap []spec.Heaplet, blk spec.Block) (map[int]struct{}, bool) {
	drop := make(map[int]struct{}, blk.Size)
	for off := 0; off < blk.Size; off++ {
		found := false
		for k, h := range heap {
			pt, ok := h.(spec.PointsTo)
			if ok && pt.Off == off && pt.Loc.String() == blk.Loc.String() {
				drop[k] = struct{}{}
				found = true
				break
			}
		}
		if !found {
			return nil, false
		}
	}
	return drop, true
}
