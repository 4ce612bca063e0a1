// Package lang defines the imperative language in which synthesized
// programs are expressed, along with a C-like printer for it.
package lang

import (
	"fmt"
	"strings"

	"github.com/heapsynth/heapsynth/pkg/synthesis/spec"
)

// Statement is one node of a synthesized program.
type Statement interface {
	isStatement()
}

// Skip is the program that does nothing.
type Skip struct{}

// Abort is the program synthesized for obligations whose precondition
// is inconsistent; it can never actually execute.
type Abort struct{}

// Load reads the cell at Src plus Off into the fresh variable Dst.
type Load struct {
	Dst spec.Var
	Tpe spec.Type
	Src spec.Var
	Off int
}

// Store writes Val into the cell at Dst plus Off.
type Store struct {
	Dst spec.Expr
	Off int
	Val spec.Expr
}

// Malloc allocates Size cells and binds the base address to Dst.
type Malloc struct {
	Dst  spec.Var
	Size int
}

// Free releases the block based at Ptr.
type Free struct {
	Ptr spec.Var
}

// Call invokes an auxiliary procedure.
type Call struct {
	Fun  string
	Args []spec.Expr
}

// Seq runs Head then Tail.
type Seq struct {
	Head Statement
	Tail Statement
}

// If branches on a pure condition.
type If struct {
	Cond spec.Expr
	Then Statement
	Else Statement
}

func (Skip) isStatement()   {}
func (Abort) isStatement()  {}
func (Load) isStatement()   {}
func (Store) isStatement()  {}
func (Malloc) isStatement() {}
func (Free) isStatement()   {}
func (Call) isStatement()   {}
func (Seq) isStatement()    {}
func (If) isStatement()     {}

// Sequence folds statements left to right, dropping no-ops.
func Sequence(ss ...Statement) Statement {
	var acc Statement = Skip{}
	for _, s := range ss {
		if s == nil {
			continue
		}
		if _, ok := s.(Skip); ok {
			continue
		}
		if _, ok := acc.(Skip); ok {
			acc = s
			continue
		}
		acc = Seq{Head: acc, Tail: s}
	}
	return acc
}

// Size counts the executable nodes of a program.
func Size(s Statement) int {
	switch x := s.(type) {
	case Seq:
		return Size(x.Head) + Size(x.Tail)
	case If:
		return 1 + Size(x.Then) + Size(x.Else)
	case Skip:
		return 0
	default:
		return 1
	}
}

func writeStatement(sb *strings.Builder, s Statement, indent string) {
	switch x := s.(type) {
	case Skip:
	case Abort:
		fmt.Fprintf(sb, "%serror();\n", indent)
	case Load:
		if x.Off == 0 {
			fmt.Fprintf(sb, "%slet %s = *%s;\n", indent, x.Dst, x.Src)
		} else {
			fmt.Fprintf(sb, "%slet %s = *(%s + %d);\n", indent, x.Dst, x.Src, x.Off)
		}
	case Store:
		if x.Off == 0 {
			fmt.Fprintf(sb, "%s*%s = %s;\n", indent, x.Dst, x.Val)
		} else {
			fmt.Fprintf(sb, "%s*(%s + %d) = %s;\n", indent, x.Dst, x.Off, x.Val)
		}
	case Malloc:
		fmt.Fprintf(sb, "%slet %s = malloc(%d);\n", indent, x.Dst, x.Size)
	case Free:
		fmt.Fprintf(sb, "%sfree(%s);\n", indent, x.Ptr)
	case Call:
		args := make([]string, len(x.Args))
		for i, a := range x.Args {
			args[i] = a.String()
		}
		fmt.Fprintf(sb, "%s%s(%s);\n", indent, x.Fun, strings.Join(args, ", "))
	case Seq:
		writeStatement(sb, x.Head, indent)
		writeStatement(sb, x.Tail, indent)
	case If:
		fmt.Fprintf(sb, "%sif (%s) {\n", indent, x.Cond)
		writeStatement(sb, x.Then, indent+"  ")
		fmt.Fprintf(sb, "%s} else {\n", indent)
		writeStatement(sb, x.Else, indent+"  ")
		fmt.Fprintf(sb, "%s}\n", indent)
	}
}

// Print renders a statement as source text.
func Print(s Statement) string {
	var sb strings.Builder
	writeStatement(&sb, s, "")
	return sb.String()
}

// Procedure pairs a synthesized body with its signature.
type Procedure struct {
	Name   string
	Ret    spec.Type
	Params []spec.Param
	Body   Statement
}

func (p Procedure) String() string {
	params := make([]string, len(p.Params))
	for i, pr := range p.Params {
		params[i] = pr.String()
	}
	ret := p.Ret
	if ret == "" {
		ret = spec.TypeVoid
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s(%s) {\n", ret, p.Name, strings.Join(params, ", "))
	writeStatement(&sb, p.Body, "  ")
	sb.WriteString("}\n")
	return sb.String()
}
