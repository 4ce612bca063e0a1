package solver

// Stats accumulates observational counters over one synthesis run.
// They never influence control flow.
type Stats struct {
	// RuleApplications counts candidate derivations produced by rules.
	RuleApplications int
	// Expansions counts goals on which the rule list was invoked.
	Expansions int
	// PrunedCandidates counts derivations discarded as commuted
	// duplicates of explored ones.
	PrunedCandidates int
	// Backtracks counts derivations that were dead on arrival: a
	// subgoal was already known unsolvable when the edge was
	// recorded. Edges killed afterwards by unsolvable propagation
	// are not counted.
	Backtracks int
	// MaxBoundary is the high-water mark of the frontier.
	MaxBoundary int
	// MaxDepth is the deepest goal ever created.
	MaxDepth int
	// Goals is the number of distinct goals interned.
	Goals int
}
