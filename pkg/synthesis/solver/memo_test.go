package solver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heapsynth/heapsynth/pkg/synthesis/lang"
	"github.com/heapsynth/heapsynth/pkg/synthesis/spec"
)

func skipKont(children []lang.Statement) (lang.Statement, error) {
	return lang.Skip{}, nil
}

func TestInternSharesStructurallyEqualGoals(t *testing.T) {
	table := newMemoTable()

	a, created := table.intern(NewRootGoal(taggedSpec("g", 0)))
	require.True(t, created)
	b, created := table.intern(NewRootGoalAt(taggedSpec("g", 0), 7))
	assert.False(t, created)
	assert.Same(t, a, b)
	assert.Equal(t, 1, table.len())

	_, created = table.intern(NewRootGoal(taggedSpec("other", 0)))
	assert.True(t, created)
	assert.Equal(t, 2, table.len())
}

func TestInternMarksContradictionsUnsolvable(t *testing.T) {
	table := newMemoTable()
	contradiction := &spec.Spec{
		Pre:  spec.Assertion{Pure: []spec.Expr{spec.BoolLit(true)}},
		Post: spec.Assertion{Pure: []spec.Expr{spec.BoolLit(false)}},
		Env:  spec.NewEnvironment(),
	}
	e, created := table.intern(NewRootGoal(contradiction))
	require.True(t, created)
	assert.True(t, e.unsolvable)
	assert.False(t, e.open())
}

func TestRecordSolvesEmptyConjunction(t *testing.T) {
	table := newMemoTable()
	e, _ := table.intern(NewRootGoal(taggedSpec("g", 0)))

	table.record(e, "R-leaf", nil, skipKont)
	assert.True(t, e.solved)
	assert.False(t, e.useless)
}

func TestSolvedPropagatesThroughChain(t *testing.T) {
	// a depends on b, b on c. Solving c must cascade to the root.
	table := newMemoTable()
	a, _ := table.intern(NewRootGoal(taggedSpec("a", 0)))
	b, _ := table.intern(NewRootGoal(taggedSpec("b", 0)))
	c, _ := table.intern(NewRootGoal(taggedSpec("c", 0)))

	table.record(a, "R", []*goalEntry{b}, skipKont)
	table.record(b, "R", []*goalEntry{c}, skipKont)
	assert.True(t, a.open())

	table.record(c, "R-leaf", nil, skipKont)
	assert.True(t, c.solved)
	assert.True(t, b.solved)
	assert.True(t, a.solved)
}

func TestSolvedRequiresWholeConjunction(t *testing.T) {
	table := newMemoTable()
	root, _ := table.intern(NewRootGoal(taggedSpec("root", 0)))
	left, _ := table.intern(NewRootGoal(taggedSpec("left", 0)))
	right, _ := table.intern(NewRootGoal(taggedSpec("right", 0)))

	table.record(root, "R", []*goalEntry{left, right}, skipKont)
	table.record(left, "R-leaf", nil, skipKont)
	assert.True(t, left.solved)
	assert.True(t, root.open())

	table.record(right, "R-leaf", nil, skipKont)
	assert.True(t, root.solved)
}

func TestUnsolvablePropagatesThroughExpandedParents(t *testing.T) {
	table := newMemoTable()
	a, _ := table.intern(NewRootGoal(taggedSpec("a", 0)))
	b, _ := table.intern(NewRootGoal(taggedSpec("b", 0)))
	c, _ := table.intern(NewRootGoal(taggedSpec("c", 0)))

	table.record(a, "R", []*goalEntry{b}, skipKont)
	table.finishExpansion(a, 1, 1)
	table.record(b, "R", []*goalEntry{c}, skipKont)
	table.finishExpansion(b, 1, 1)

	table.finishExpansion(c, 0, 0)
	assert.True(t, c.unsolvable)
	assert.True(t, b.unsolvable)
	assert.True(t, a.unsolvable)
}

func TestUnsolvableOnlyDeprioritizesUnexpandedParents(t *testing.T) {
	// The parent has one dead edge but its expansion round is not
	// sealed, so it may still acquire live edges.
	table := newMemoTable()
	parent, _ := table.intern(NewRootGoal(taggedSpec("parent", 0)))
	sub, _ := table.intern(NewRootGoal(taggedSpec("sub", 0)))

	table.record(parent, "R", []*goalEntry{sub}, skipKont)
	table.finishExpansion(sub, 0, 0)
	assert.True(t, sub.unsolvable)
	assert.True(t, parent.open())
	assert.True(t, parent.useless)
}

func TestLiveEdgeClearsUseless(t *testing.T) {
	table := newMemoTable()
	parent, _ := table.intern(NewRootGoal(taggedSpec("parent", 0)))
	dead, _ := table.intern(NewRootGoal(taggedSpec("dead", 0)))
	live, _ := table.intern(NewRootGoal(taggedSpec("live", 0)))
	table.markUnsolvable(dead)

	table.record(parent, "R", []*goalEntry{dead}, skipKont)
	assert.True(t, parent.useless)

	table.record(parent, "R", []*goalEntry{live}, skipKont)
	assert.False(t, parent.useless)
}

func TestAllCandidatesPrunedLeavesGoalOpen(t *testing.T) {
	// raw > 0 but nothing survived pruning: the derivations exist
	// elsewhere in the graph, so the goal must not be declared
	// unsolvable.
	table := newMemoTable()
	e, _ := table.intern(NewRootGoal(taggedSpec("g", 0)))

	table.finishExpansion(e, 2, 0)
	assert.True(t, e.open())
	assert.True(t, e.useless)
	assert.True(t, e.pruned)
}

func TestNoCandidatesMeansUnsolvable(t *testing.T) {
	table := newMemoTable()
	e, _ := table.intern(NewRootGoal(taggedSpec("g", 0)))

	table.finishExpansion(e, 0, 0)
	assert.True(t, e.unsolvable)
}

func TestStatusFlipsPanic(t *testing.T) {
	table := newMemoTable()

	solved, _ := table.intern(NewRootGoal(taggedSpec("s", 0)))
	table.markSolved(solved)
	assert.Panics(t, func() { table.markUnsolvable(solved) })

	dead, _ := table.intern(NewRootGoal(taggedSpec("d", 0)))
	table.markUnsolvable(dead)
	assert.Panics(t, func() { table.markSolved(dead) })
}
