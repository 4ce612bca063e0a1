package solver

import (
	"context"

	"github.com/sirupsen/logrus"
)

type outcome int

const (
	outcomeSolved outcome = iota
	outcomeFailed
	outcomeExhausted
)

// searcher drives one synthesis run: a single-threaded loop that pops
// a goal from the boundary, applies the rule list, filters candidates
// through commutation pruning, folds the survivors into the shared
// table, and re-orders the boundary. Cancellation is cooperative,
// checked once per iteration.
type searcher struct {
	rules  []Rule
	table  *memoTable
	bound  *boundary
	pruner *pruner
	target *goalEntry
	tracer Tracer
	log    logrus.FieldLogger
	stats  *Stats
	invert bool

	current *Goal
}

var _ SearchPosition = (*searcher)(nil)

func (h *searcher) Goal() *Goal {
	return h.current
}

func (h *searcher) Boundary() []*Goal {
	return h.bound.goals()
}

func (h *searcher) run(ctx context.Context) (outcome, error) {
	stalled := 0
	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		if h.target.solved {
			return outcomeSolved, nil
		}
		if h.target.unsolvable {
			return outcomeFailed, nil
		}
		e := h.bound.pop()
		if e == nil {
			return outcomeExhausted, nil
		}
		if e.solved || e.unsolvable || e.expanded {
			// Cheap discard; shared goals may have been resolved
			// or expanded under another parent while queued.
			continue
		}
		if e.useless {
			// Deprioritized, not discarded: a later discovery can
			// clear the flag. If the whole frontier is useless the
			// search has stalled and no expansion can help.
			h.bound.requeue(e)
			stalled++
			if stalled > h.bound.len() {
				return outcomeExhausted, nil
			}
			continue
		}
		stalled = 0
		if err := h.expand(e); err != nil {
			return 0, err
		}
	}
}

func (h *searcher) expand(e *goalEntry) error {
	h.current = e.goal
	h.stats.Expansions++
	h.log.WithField("goal", e.goal.String()).Debug("expanding")

	cands, err := applyRules(h.rules, e.goal, h.invert)
	if err != nil {
		return err
	}
	raw := len(cands)
	h.stats.RuleApplications += raw

	kept := 0
	var discovered []*goalEntry
	for _, c := range cands {
		if !h.pruner.admit(c.sub) {
			h.stats.PrunedCandidates++
			h.log.WithFields(logrus.Fields{
				"goal": e.goal.String(),
				"rule": c.rule,
			}).Debug("pruned commuted derivation")
			continue
		}
		kept++
		subs := make([]*goalEntry, len(c.sub.Subgoals))
		for i, sg := range c.sub.Subgoals {
			se, created := h.table.intern(sg)
			subs[i] = se
			if created {
				if sg.Depth > h.stats.MaxDepth {
					h.stats.MaxDepth = sg.Depth
				}
				discovered = append(discovered, se)
			}
		}
		imp := h.table.record(e, c.rule, subs, c.sub.Assemble)
		if imp.dead() {
			h.stats.Backtracks++
		}
		h.log.WithFields(logrus.Fields{
			"rule":     c.rule,
			"subgoals": len(subs),
		}).Debug("recorded derivation")
	}
	h.table.finishExpansion(e, raw, kept)

	if e.open() && !e.hasLive() {
		h.tracer.Trace(h)
	}

	open := discovered[:0:0]
	for _, se := range discovered {
		if se.open() && !se.expanded {
			open = append(open, se)
		}
	}
	h.bound.push(open)

	h.stats.Goals = h.table.len()
	if h.bound.maxLen > h.stats.MaxBoundary {
		h.stats.MaxBoundary = h.bound.maxLen
	}
	return nil
}
