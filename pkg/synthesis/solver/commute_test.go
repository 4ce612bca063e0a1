package solver

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFingerprint(t *testing.T) {
	for _, tt := range []struct {
		name  string
		a     []Application
		b     []Application
		equal bool
	}{
		{
			name:  "reordered commuting run",
			a:     []Application{{Rule: "write", Commutes: true}, {Rule: "frame", Commutes: true}},
			b:     []Application{{Rule: "frame", Commutes: true}, {Rule: "write", Commutes: true}},
			equal: true,
		},
		{
			name:  "non-commuting applications keep their order",
			a:     []Application{{Rule: "read"}, {Rule: "write"}},
			b:     []Application{{Rule: "write"}, {Rule: "read"}},
			equal: false,
		},
		{
			name: "runs do not cross a non-commuting application",
			a: []Application{
				{Rule: "frame", Commutes: true},
				{Rule: "read"},
				{Rule: "write", Commutes: true},
			},
			b: []Application{
				{Rule: "write", Commutes: true},
				{Rule: "read"},
				{Rule: "frame", Commutes: true},
			},
			equal: false,
		},
		{
			name: "interior run reordered around fixed points",
			a: []Application{
				{Rule: "read"},
				{Rule: "frame", Commutes: true},
				{Rule: "write", Commutes: true},
				{Rule: "emp"},
			},
			b: []Application{
				{Rule: "read"},
				{Rule: "write", Commutes: true},
				{Rule: "frame", Commutes: true},
				{Rule: "emp"},
			},
			equal: true,
		},
		{
			name:  "different multisets never collide",
			a:     []Application{{Rule: "frame", Commutes: true}},
			b:     []Application{{Rule: "frame", Commutes: true}, {Rule: "frame", Commutes: true}},
			equal: false,
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			fa, fb := fingerprint(tt.a), fingerprint(tt.b)
			if tt.equal {
				assert.Equal(t, fa, fb)
			} else {
				assert.NotEqual(t, fa, fb)
			}
		})
	}
}

func TestPrunerRejectsCommutedReordering(t *testing.T) {
	p := newPruner(true)
	root := NewRootGoal(taggedSpec("root", 0))

	first := root.
		Child(taggedSpec("mid", 0), Application{Rule: "write", Commutes: true}).
		Child(taggedSpec("join", 0), Application{Rule: "frame", Commutes: true})
	second := root.
		Child(taggedSpec("mid2", 0), Application{Rule: "frame", Commutes: true}).
		Child(taggedSpec("join", 0), Application{Rule: "write", Commutes: true})

	assert.True(t, p.admit(Subderivation{Subgoals: []*Goal{first}}))
	assert.False(t, p.admit(Subderivation{Subgoals: []*Goal{second}}))
}

func TestPrunerKeepsDistinctGoalsWithEqualHistories(t *testing.T) {
	p := newPruner(true)
	root := NewRootGoal(taggedSpec("root", 0))
	app := Application{Rule: "write", Commutes: true}

	assert.True(t, p.admit(Subderivation{Subgoals: []*Goal{root.Child(taggedSpec("x", 0), app)}}))
	assert.True(t, p.admit(Subderivation{Subgoals: []*Goal{root.Child(taggedSpec("y", 0), app)}}))
}

func TestPrunerDisabledAdmitsEverything(t *testing.T) {
	p := newPruner(false)
	root := NewRootGoal(taggedSpec("root", 0))
	app := Application{Rule: "write", Commutes: true}
	sub := Subderivation{Subgoals: []*Goal{root.Child(taggedSpec("x", 0), app)}}

	assert.True(t, p.admit(sub))
	assert.True(t, p.admit(sub))
}
