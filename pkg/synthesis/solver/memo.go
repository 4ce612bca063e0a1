package solver

// implication is a persisted subderivation: an AND-edge of the search
// graph attaching an ordered conjunction of subgoals, and the
// continuation that assembles their solutions, to the goal it resolves.
type implication struct {
	parent   *goalEntry
	subgoals []*goalEntry
	assemble Continuation
	rule     string
}

// solved reports whether every subgoal of the edge is solved; an edge
// with no subgoals is vacuously solved.
func (imp *implication) solved() bool {
	for _, s := range imp.subgoals {
		if !s.solved {
			return false
		}
	}
	return true
}

// dead reports whether the edge can never resolve its goal because at
// least one subgoal is known unsolvable.
func (imp *implication) dead() bool {
	for _, s := range imp.subgoals {
		if s.unsolvable {
			return true
		}
	}
	return false
}

// goalEntry is the per-goal record of the table: the interned goal,
// its status flags, the AND-edges rooted at it, and the edges in which
// it participates as a subgoal. solved and unsolvable are monotone and
// mutually exclusive; useless may flip back to false when a fresh
// edge free of unsolvable subgoals is recorded.
type goalEntry struct {
	goal         *Goal
	solved       bool
	unsolvable   bool
	useless      bool
	expanded     bool // rules have been applied; the implication set is final
	pruned       bool // commutation pruning removed at least one candidate
	queued       bool // currently on the boundary
	implications []*implication
	parents      []*implication
}

func (e *goalEntry) open() bool {
	return !e.solved && !e.unsolvable
}

// hasLive reports whether some recorded edge is still free of
// unsolvable subgoals.
func (e *goalEntry) hasLive() bool {
	for _, imp := range e.implications {
		if !imp.dead() {
			return true
		}
	}
	return false
}

// memoTable is the shared status table over the AND/OR graph. Goals
// are interned into an arena addressed by content hash, with exact
// key comparison within each bucket, so structurally equal goals
// reached along different derivations share a single entry. Entries
// are never evicted.
type memoTable struct {
	buckets map[uint64][]*goalEntry
	count   int
}

func newMemoTable() *memoTable {
	return &memoTable{buckets: make(map[uint64][]*goalEntry)}
}

func (t *memoTable) len() int {
	return t.count
}

// intern returns the entry for g, creating one if no structurally
// equal goal has been seen. The second result reports creation. New
// entries start open; obligations that no rule can ever resolve are
// born unsolvable.
func (t *memoTable) intern(g *Goal) (*goalEntry, bool) {
	h := g.Hash()
	for _, e := range t.buckets[h] {
		if e.goal.Key() == g.Key() {
			return e, false
		}
	}
	e := &goalEntry{goal: g}
	if g.Spec.TriviallyUnsolvable() {
		e.unsolvable = true
	}
	t.buckets[h] = append(t.buckets[h], e)
	t.count++
	return e, true
}

// record persists one surviving subderivation as an AND-edge and folds
// its immediate status consequences into the table. Solved cascades
// are propagated to a fixpoint before returning.
func (t *memoTable) record(e *goalEntry, rule string, subgoals []*goalEntry, assemble Continuation) *implication {
	imp := &implication{parent: e, subgoals: subgoals, assemble: assemble, rule: rule}
	e.implications = append(e.implications, imp)
	for _, s := range subgoals {
		s.parents = append(s.parents, imp)
	}
	switch {
	case imp.solved():
		t.markSolved(e)
	case imp.dead():
		// This edge can never resolve e, but it does not make e
		// useless by itself; the flag reflects all recorded edges.
		e.useless = !e.hasLive()
	default:
		// A live conjunction clears the deprioritization.
		e.useless = false
	}
	return imp
}

// finishExpansion seals a goal's implication set after its expansion
// round. raw counts the candidates the rules produced and kept counts
// the ones that survived pruning. A goal no rule could expand at all
// is unsolvable; a goal whose only candidates were pruned away stays
// open, since the pruned derivations are re-derivable elsewhere.
func (t *memoTable) finishExpansion(e *goalEntry, raw, kept int) {
	e.expanded = true
	if kept < raw {
		e.pruned = true
	}
	if e.solved || e.unsolvable {
		return
	}
	if raw == 0 {
		t.markUnsolvable(e)
		return
	}
	if !e.hasLive() {
		if e.pruned {
			e.useless = true
			return
		}
		t.markUnsolvable(e)
	}
}

// markSolved sets the solved flag on e and propagates it upward to a
// fixpoint: any parent with an edge whose subgoals are now all solved
// flips as well. An explicit worklist bounds stack depth on deep
// graphs.
func (t *memoTable) markSolved(e *goalEntry) {
	work := []*goalEntry{e}
	for len(work) > 0 {
		cur := work[len(work)-1]
		work = work[:len(work)-1]
		if cur.solved {
			continue
		}
		if cur.unsolvable {
			panic("solver: goal flipped from unsolvable to solved")
		}
		cur.solved = true
		cur.useless = false
		for _, imp := range cur.parents {
			if !imp.parent.solved && imp.solved() {
				work = append(work, imp.parent)
			}
		}
	}
}

// markUnsolvable sets the unsolvable flag on e and propagates it
// upward to a fixpoint: a parent whose expansion is sealed, whose
// candidates were never pruned, and whose recorded edges are now all
// dead is itself unsolvable. Parents that are not provably dead are
// merely deprioritized via the useless flag.
func (t *memoTable) markUnsolvable(e *goalEntry) {
	work := []*goalEntry{e}
	for len(work) > 0 {
		cur := work[len(work)-1]
		work = work[:len(work)-1]
		if cur.unsolvable {
			continue
		}
		if cur.solved {
			panic("solver: goal flipped from solved to unsolvable")
		}
		cur.unsolvable = true
		for _, imp := range cur.parents {
			par := imp.parent
			if par.solved || par.unsolvable || par.hasLive() {
				continue
			}
			if par.expanded && !par.pruned {
				work = append(work, par)
				continue
			}
			par.useless = true
		}
	}
}
