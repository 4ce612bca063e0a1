// Package spec models the specifications consumed by the synthesis
// engine: pure expressions, symbolic heaps, assertions, and function
// specifications with their environments.
package spec

import (
	"fmt"
	"strings"
)

// Type names the primitive types understood by the synthesizer.
type Type string

const (
	TypeInt  Type = "int"
	TypeBool Type = "bool"
	TypeLoc  Type = "loc"
	TypeVoid Type = "void"
)

// Param is a typed formal parameter or program-level variable.
type Param struct {
	Name Var
	Type Type
}

func (p Param) String() string {
	return fmt.Sprintf("%s %s", p.Type, p.Name)
}

// FunSpec is a complete function specification: a name, return type,
// formal parameters, and a pre/post-condition pair.
type FunSpec struct {
	Name   string
	Ret    Type
	Params []Param
	Pre    Assertion
	Post   Assertion
}

func (fs FunSpec) String() string {
	params := make([]string, len(fs.Params))
	for i, p := range fs.Params {
		params[i] = p.String()
	}
	return fmt.Sprintf("%s %s(%s) %s %s", fs.Ret, fs.Name, strings.Join(params, ", "), fs.Pre, fs.Post)
}

// Environment carries the auxiliary function specifications available
// during synthesis.
type Environment struct {
	Functions map[string]FunSpec
}

func NewEnvironment() *Environment {
	return &Environment{Functions: make(map[string]FunSpec)}
}

// Spec is a single synthesis obligation: derive a program taking the
// named program variables from Pre to Post. Values are treated as
// immutable; every transformation returns a fresh Spec.
type Spec struct {
	Pre    Assertion
	Post   Assertion
	Params []Param
	Env    *Environment
}

// NewSpec builds the root obligation for a function specification.
func NewSpec(fs FunSpec, env *Environment) *Spec {
	if env == nil {
		env = NewEnvironment()
	}
	params := make([]Param, len(fs.Params))
	copy(params, fs.Params)
	return &Spec{Pre: fs.Pre, Post: fs.Post, Params: params, Env: env}
}

func (s *Spec) String() string {
	return fmt.Sprintf("%s |- %s", s.Pre, s.Post)
}

// Canon renders the obligation in a normal form suitable for use as a
// sharing key: two specs with equal canonical forms are the same node
// of the search graph.
func (s *Spec) Canon() string {
	params := make([]string, len(s.Params))
	for i, p := range s.Params {
		params[i] = p.String()
	}
	return strings.Join(params, ",") + " | " + s.Pre.Canon() + " | " + s.Post.Canon()
}

// ProgramVars returns the set of program-level variables in scope.
func (s *Spec) ProgramVars() VarSet {
	vs := make(VarSet, len(s.Params))
	for _, p := range s.Params {
		vs.Add(p.Name)
	}
	return vs
}

// Ghosts returns the universally quantified logical variables: those
// mentioned by the precondition but not bound as program variables.
func (s *Spec) Ghosts() VarSet {
	vs := s.Pre.Vars()
	for _, p := range s.Params {
		delete(vs, p.Name)
	}
	return vs
}

// Existentials returns the existentially quantified variables of the
// postcondition: those in the post that are neither program variables
// nor ghosts.
func (s *Spec) Existentials() VarSet {
	vs := s.Post.Vars()
	for _, p := range s.Params {
		delete(vs, p.Name)
	}
	for v := range s.Pre.Vars() {
		delete(vs, v)
	}
	return vs
}

// AllVars returns every variable mentioned anywhere in the obligation.
func (s *Spec) AllVars() VarSet {
	vs := s.Pre.Vars().Union(s.Post.Vars())
	for _, p := range s.Params {
		vs.Add(p.Name)
	}
	return vs
}

// Cost is the scheduling priority of the obligation; smaller is
// expanded first under best-first search.
func (s *Spec) Cost() int {
	return s.Pre.Size() + s.Post.Size()
}

// Subst applies sub to both assertions, returning a new spec with the
// same program variables.
func (s *Spec) Subst(sub Subst) *Spec {
	return &Spec{
		Pre:    s.Pre.Subst(sub),
		Post:   s.Post.Subst(sub),
		Params: s.Params,
		Env:    s.Env,
	}
}

// With returns a copy of the spec with the given assertions swapped in.
func (s *Spec) With(pre, post Assertion) *Spec {
	return &Spec{Pre: pre, Post: post, Params: s.Params, Env: s.Env}
}

// WithParam returns a copy of the spec with an additional program
// variable in scope.
func (s *Spec) WithParam(p Param) *Spec {
	params := make([]Param, len(s.Params), len(s.Params)+1)
	copy(params, s.Params)
	return &Spec{Pre: s.Pre, Post: s.Post, Params: append(params, p), Env: s.Env}
}

// TriviallyUnsolvable reports obligations that no rule can ever
// resolve: the postcondition asserts literal falsity while the
// precondition is syntactically consistent, so neither progress nor a
// vacuous proof is possible. Deliberately conservative; obligations
// with semantically false preconditions are handled by rules instead.
func (s *Spec) TriviallyUnsolvable() bool {
	post := false
	for _, e := range s.Post.Pure {
		if b, ok := e.(BoolLit); ok && !bool(b) {
			post = true
			break
		}
	}
	if !post {
		return false
	}
	for _, e := range s.Pre.Pure {
		if b, ok := e.(BoolLit); ok && !bool(b) {
			return false
		}
		if _, ok := e.(BoolLit); !ok {
			// A non-literal conjunct could be inconsistent, which
			// would make the goal solvable by aborting.
			return false
		}
	}
	return true
}
