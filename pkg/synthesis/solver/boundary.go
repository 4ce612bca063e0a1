package solver

import "sort"

// boundary is the scheduler's frontier: the ordered sequence of open
// goals awaiting expansion. Under the depth-first policy new subgoals
// are pushed ahead of the rest; under best-first the whole frontier is
// kept sorted by ascending cost, breaking ties toward shallower goals.
type boundary struct {
	entries    []*goalEntry
	depthFirst bool
	maxLen     int
}

func (b *boundary) len() int {
	return len(b.entries)
}

// push adds freshly discovered goals to the frontier and re-orders it
// per policy. Entries already queued are left where they are.
func (b *boundary) push(es []*goalEntry) {
	fresh := es[:0:0]
	for _, e := range es {
		if e.queued {
			continue
		}
		e.queued = true
		fresh = append(fresh, e)
	}
	if len(fresh) == 0 {
		return
	}
	if b.depthFirst {
		b.entries = append(fresh, b.entries...)
	} else {
		b.entries = append(b.entries, fresh...)
		sort.SliceStable(b.entries, func(i, j int) bool {
			gi, gj := b.entries[i].goal, b.entries[j].goal
			if gi.Cost != gj.Cost {
				return gi.Cost < gj.Cost
			}
			return gi.Depth < gj.Depth
		})
	}
	if len(b.entries) > b.maxLen {
		b.maxLen = len(b.entries)
	}
}

// pop removes and returns the first goal of the frontier, or nil when
// the frontier is empty.
func (b *boundary) pop() *goalEntry {
	if len(b.entries) == 0 {
		return nil
	}
	e := b.entries[0]
	b.entries = b.entries[1:]
	e.queued = false
	return e
}

// requeue moves a deprioritized goal to the back of the frontier so
// that it is revisited only after every other open goal.
func (b *boundary) requeue(e *goalEntry) {
	if e.queued {
		return
	}
	e.queued = true
	b.entries = append(b.entries, e)
}

// goals snapshots the frontier for tracing.
func (b *boundary) goals() []*Goal {
	gs := make([]*Goal, len(b.entries))
	for i, e := range b.entries {
		gs[i] = e.goal
	}
	return gs
}
