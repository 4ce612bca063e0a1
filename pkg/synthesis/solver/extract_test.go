package solver

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heapsynth/heapsynth/pkg/synthesis/lang"
)

func TestExtractionAssemblesInSubgoalOrder(t *testing.T) {
	table := newMemoTable()
	root, _ := table.intern(NewRootGoal(taggedSpec("root", 0)))
	left, _ := table.intern(NewRootGoal(taggedSpec("left", 0)))
	right, _ := table.intern(NewRootGoal(taggedSpec("right", 0)))

	table.record(root, "R-seq", []*goalEntry{left, right}, func(children []lang.Statement) (lang.Statement, error) {
		return lang.Sequence(children...), nil
	})
	table.record(left, "R-a", nil, func([]lang.Statement) (lang.Statement, error) {
		return lang.Call{Fun: "a"}, nil
	})
	table.record(right, "R-b", nil, func([]lang.Statement) (lang.Statement, error) {
		return lang.Call{Fun: "b"}, nil
	})
	require.True(t, root.solved)

	body, err := newExtractor().solution(root)
	require.NoError(t, err)
	assert.Equal(t, lang.Seq{Head: lang.Call{Fun: "a"}, Tail: lang.Call{Fun: "b"}}, body)
}

func TestExtractionMemoizesSharedSubgoals(t *testing.T) {
	table := newMemoTable()
	root, _ := table.intern(NewRootGoal(taggedSpec("root", 0)))
	shared, _ := table.intern(NewRootGoal(taggedSpec("shared", 0)))

	invocations := 0
	table.record(root, "R", []*goalEntry{shared, shared}, func(children []lang.Statement) (lang.Statement, error) {
		return lang.Sequence(children...), nil
	})
	table.record(shared, "R-leaf", nil, func([]lang.Statement) (lang.Statement, error) {
		invocations++
		return lang.Call{Fun: "shared"}, nil
	})

	_, err := newExtractor().solution(root)
	require.NoError(t, err)
	assert.Equal(t, 1, invocations)
}

func TestExtractionPrefersFirstSolvedDerivation(t *testing.T) {
	table := newMemoTable()
	root, _ := table.intern(NewRootGoal(taggedSpec("root", 0)))
	pending, _ := table.intern(NewRootGoal(taggedSpec("pending", 0)))

	table.record(root, "R-open", []*goalEntry{pending}, func([]lang.Statement) (lang.Statement, error) {
		return lang.Abort{}, nil
	})
	table.record(root, "R-done", nil, func([]lang.Statement) (lang.Statement, error) {
		return lang.Skip{}, nil
	})
	require.True(t, root.solved)

	body, err := newExtractor().solution(root)
	require.NoError(t, err)
	assert.Equal(t, lang.Skip{}, body)
}

func TestExtractionRejectsSelfReferentialDerivation(t *testing.T) {
	// A rule that makes no progress produces a subgoal that interns to
	// its parent's own entry. Once a later derivation solves the goal,
	// the self-edge counts as solved too; walking it must surface a
	// diagnostic rather than recurse forever.
	table := newMemoTable()
	e, _ := table.intern(NewRootGoal(taggedSpec("g", 0)))

	table.record(e, "R-self", []*goalEntry{e}, func(children []lang.Statement) (lang.Statement, error) {
		return lang.Sequence(children...), nil
	})
	table.record(e, "R-done", nil, func([]lang.Statement) (lang.Statement, error) {
		return lang.Skip{}, nil
	})
	require.True(t, e.solved)

	_, err := newExtractor().solution(e)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvariant))
	assert.Contains(t, err.Error(), "depends on itself")
}

func TestExtractionRejectsUnsolvedGoal(t *testing.T) {
	table := newMemoTable()
	e, _ := table.intern(NewRootGoal(taggedSpec("g", 0)))

	_, err := newExtractor().solution(e)
	assert.True(t, errors.Is(err, ErrInvariant))
}

func TestExtractionRejectsSolvedGoalWithoutDerivation(t *testing.T) {
	table := newMemoTable()
	e, _ := table.intern(NewRootGoal(taggedSpec("g", 0)))
	table.markSolved(e)

	_, err := newExtractor().solution(e)
	assert.True(t, errors.Is(err, ErrInvariant))
}

func TestExtractionWrapsContinuationFailure(t *testing.T) {
	table := newMemoTable()
	e, _ := table.intern(NewRootGoal(taggedSpec("g", 0)))
	boom := errors.New("arity mismatch")
	table.record(e, "R", nil, func([]lang.Statement) (lang.Statement, error) {
		return nil, boom
	})

	_, err := newExtractor().solution(e)
	assert.True(t, errors.Is(err, boom))
}
