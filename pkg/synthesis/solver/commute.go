package solver

import (
	"sort"
	"strings"
)

// pruner discards candidate derivations that are permutation
// equivalent to one already explored: same structural goal, same
// multiset of rule applications, differing only in the order of
// adjacent applications of rules declared to commute. Pruning is an
// optimization and may be disabled wholesale.
type pruner struct {
	enabled bool
	seen    map[string]struct{}
}

func newPruner(enabled bool) *pruner {
	return &pruner{enabled: enabled, seen: make(map[string]struct{})}
}

// admit decides whether a whole subderivation survives: it is
// discarded if any of its subgoals has already been reached through a
// commuted ordering of the same history. Fingerprints of admitted
// subgoals are registered so that later reorderings are recognized.
func (p *pruner) admit(sub Subderivation) bool {
	if !p.enabled {
		return true
	}
	keys := make([]string, len(sub.Subgoals))
	for i, g := range sub.Subgoals {
		keys[i] = g.Key() + "\x00" + fingerprint(g.History)
		if _, ok := p.seen[keys[i]]; ok {
			return false
		}
	}
	for _, k := range keys {
		p.seen[k] = struct{}{}
	}
	return true
}

// fingerprint canonicalizes a derivation history: within each maximal
// run of commuting applications the rule names are sorted, so two
// histories that differ only by reordering such a run map to the same
// string.
func fingerprint(history []Application) string {
	var sb strings.Builder
	run := make([]string, 0, len(history))
	flush := func() {
		if len(run) == 0 {
			return
		}
		sort.Strings(run)
		for _, r := range run {
			sb.WriteString(r)
			sb.WriteByte(';')
		}
		run = run[:0]
	}
	for _, app := range history {
		if app.Commutes {
			run = append(run, app.Rule)
			continue
		}
		flush()
		sb.WriteString(app.Rule)
		sb.WriteByte(';')
	}
	flush()
	return sb.String()
}
