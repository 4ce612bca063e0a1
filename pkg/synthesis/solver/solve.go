// Package solver implements the goal-resolution search engine at the
// core of the synthesizer: the shared AND/OR status table, the
// worklist scheduler over the open frontier, commutation pruning of
// redundant derivations, and extraction of the synthesized program
// once the root obligation is solved. Inference rules and the
// entailment backend they consult are opaque collaborators.
package solver

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/heapsynth/heapsynth/pkg/synthesis/lang"
	"github.com/heapsynth/heapsynth/pkg/synthesis/spec"
)

// ErrIncomplete reports that the search was cancelled before reaching
// a terminal state.
var ErrIncomplete = errors.New("cancelled before a program could be found")

// TimeoutError reports that the configured wall-clock bound elapsed.
// It aborts the whole attempt; no partial result is salvaged.
type TimeoutError struct {
	Bound time.Duration
}

func (e TimeoutError) Error() string {
	return fmt.Sprintf("synthesis timed out after %s", e.Bound)
}

// NotSynthesizable reports that the search terminated without a
// program: the root obligation is unsolvable under the rule set, or
// the frontier was exhausted with the root still open.
type NotSynthesizable struct {
	Name   string
	Reason string
}

func (e NotSynthesizable) Error() string {
	return fmt.Sprintf("no program found for %q: %s", e.Name, e.Reason)
}

// Synthesizer runs one synthesis attempt to completion, returning the
// synthesized procedure (and any auxiliaries the derivation
// introduced) or an error describing why none exists.
type Synthesizer interface {
	Synthesize(ctx context.Context) ([]lang.Procedure, error)
}

type synthesizer struct {
	fspec  spec.FunSpec
	env    *spec.Environment
	rules  []Rule
	tracer Tracer
	log    logrus.FieldLogger
	stats  *Stats

	timeout    time.Duration
	depthFirst bool
	commute    bool
	invert     bool
}

// New assembles a Synthesizer from options. A specification and at
// least one rule are required.
func New(options ...Option) (Synthesizer, error) {
	s := synthesizer{commute: true, invert: true}
	for _, option := range append(options, defaults...) {
		if err := option(&s); err != nil {
			return nil, err
		}
	}
	if len(s.rules) == 0 {
		return nil, errors.New("no rules provided")
	}
	return &s, nil
}

func (s *synthesizer) Synthesize(ctx context.Context) ([]lang.Procedure, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	root := NewRootGoal(spec.NewSpec(s.fspec, s.env))
	table := newMemoTable()
	target, _ := table.intern(root)
	bound := &boundary{depthFirst: s.depthFirst}
	bound.push([]*goalEntry{target})

	h := &searcher{
		rules:  s.rules,
		table:  table,
		bound:  bound,
		pruner: newPruner(s.commute),
		target: target,
		tracer: s.tracer,
		log:    s.log.WithField("spec", s.fspec.Name),
		stats:  s.stats,
		invert: s.invert,
	}

	start := time.Now()
	out, err := h.run(ctx)
	elapsed := time.Since(start)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return nil, TimeoutError{Bound: s.timeout}
	case errors.Is(err, context.Canceled):
		return nil, ErrIncomplete
	case err != nil:
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"elapsed":    elapsed,
		"goals":      s.stats.Goals,
		"expansions": s.stats.Expansions,
	}).Debug("search finished")

	switch out {
	case outcomeSolved:
		body, err := newExtractor().solution(target)
		if err != nil {
			return nil, err
		}
		return []lang.Procedure{{
			Name:   s.fspec.Name,
			Ret:    s.fspec.Ret,
			Params: s.fspec.Params,
			Body:   body,
		}}, nil
	case outcomeFailed:
		return nil, NotSynthesizable{Name: s.fspec.Name, Reason: "specification is unrealizable under the rule set"}
	case outcomeExhausted:
		return nil, NotSynthesizable{Name: s.fspec.Name, Reason: "search space exhausted"}
	}
	return nil, errors.Wrapf(ErrInvariant, "search returned unexpected outcome %d", out)
}

// Option configures a Synthesizer under construction.
type Option func(s *synthesizer) error

// WithSpecification sets the obligation to synthesize and the
// environment of auxiliary specifications.
func WithSpecification(fs spec.FunSpec, env *spec.Environment) Option {
	return func(s *synthesizer) error {
		s.fspec = fs
		s.env = env
		return nil
	}
}

// WithRules sets the rule list; order fixes rule priority.
func WithRules(rules ...Rule) Option {
	return func(s *synthesizer) error {
		s.rules = rules
		return nil
	}
}

func WithTracer(t Tracer) Option {
	return func(s *synthesizer) error {
		s.tracer = t
		return nil
	}
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(s *synthesizer) error {
		s.log = log
		return nil
	}
}

// WithStats directs counters into the given sink.
func WithStats(stats *Stats) Option {
	return func(s *synthesizer) error {
		s.stats = stats
		return nil
	}
}

// WithTimeout bounds the wall-clock duration of the search; zero
// means no bound.
func WithTimeout(d time.Duration) Option {
	return func(s *synthesizer) error {
		if d < 0 {
			return errors.Errorf("negative timeout %s", d)
		}
		s.timeout = d
		return nil
	}
}

// WithDepthFirst selects the frontier ordering policy.
func WithDepthFirst(enabled bool) Option {
	return func(s *synthesizer) error {
		s.depthFirst = enabled
		return nil
	}
}

// WithCommutation toggles commutation pruning.
func WithCommutation(enabled bool) Option {
	return func(s *synthesizer) error {
		s.commute = enabled
		return nil
	}
}

// WithInversion toggles the invertible-rule short circuit.
func WithInversion(enabled bool) Option {
	return func(s *synthesizer) error {
		s.invert = enabled
		return nil
	}
}

var defaults = []Option{
	func(s *synthesizer) error {
		if s.tracer == nil {
			s.tracer = DefaultTracer{}
		}
		return nil
	},
	func(s *synthesizer) error {
		if s.log == nil {
			log := logrus.New()
			log.SetOutput(io.Discard)
			s.log = log
		}
		return nil
	},
	func(s *synthesizer) error {
		if s.stats == nil {
			s.stats = &Stats{}
		}
		return nil
	},
	func(s *synthesizer) error {
		if s.env == nil {
			s.env = spec.NewEnvironment()
		}
		return nil
	},
}
