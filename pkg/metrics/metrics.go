// Package metrics exposes the engine's search statistics as
// prometheus collectors. The collectors are observational: nothing in
// the engine reads them back.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/heapsynth/heapsynth/pkg/synthesis/solver"
)

const (
	OutcomeLabel = "outcome"
	Succeeded    = "succeeded"
	Failed       = "failed"
	TimedOut     = "timed_out"
)

var (
	synthesisTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "heapsynth_synthesis_total",
			Help: "Number of synthesis attempts, partitioned by outcome.",
		},
		[]string{OutcomeLabel},
	)

	ruleApplications = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "heapsynth_rule_applications_total",
			Help: "Candidate derivations produced by inference rules.",
		},
	)

	backtracks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "heapsynth_backtracks_total",
			Help: "Recorded derivations that died because a subgoal proved unsolvable.",
		},
	)

	prunedCandidates = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "heapsynth_pruned_candidates_total",
			Help: "Derivations discarded as commuted duplicates of explored ones.",
		},
	)

	boundaryHighWater = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "heapsynth_boundary_high_water",
			Help: "Largest frontier reached by the most recent synthesis attempt.",
		},
	)

	depthHighWater = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "heapsynth_depth_high_water",
			Help: "Deepest goal reached by the most recent synthesis attempt.",
		},
	)

	synthesisDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "heapsynth_synthesis_duration_seconds",
			Help:    "Wall-clock duration of synthesis attempts.",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		},
	)
)

// RegisterSynthesis installs the collectors on the default registry.
func RegisterSynthesis() {
	prometheus.MustRegister(synthesisTotal)
	prometheus.MustRegister(ruleApplications)
	prometheus.MustRegister(backtracks)
	prometheus.MustRegister(prunedCandidates)
	prometheus.MustRegister(boundaryHighWater)
	prometheus.MustRegister(depthHighWater)
	prometheus.MustRegister(synthesisDuration)
}

// EmitRun records the statistics of one finished synthesis attempt.
func EmitRun(outcome string, elapsed time.Duration, stats solver.Stats) {
	synthesisTotal.WithLabelValues(outcome).Inc()
	ruleApplications.Add(float64(stats.RuleApplications))
	backtracks.Add(float64(stats.Backtracks))
	prunedCandidates.Add(float64(stats.PrunedCandidates))
	boundaryHighWater.Set(float64(stats.MaxBoundary))
	depthHighWater.Set(float64(stats.MaxDepth))
	synthesisDuration.Observe(elapsed.Seconds())
}
