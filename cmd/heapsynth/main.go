package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	yaml "gopkg.in/yaml.v2"

	"github.com/heapsynth/heapsynth/pkg/lib/signals"
	"github.com/heapsynth/heapsynth/pkg/metrics"
	"github.com/heapsynth/heapsynth/pkg/synthesis/entailment"
	"github.com/heapsynth/heapsynth/pkg/synthesis/parser"
	"github.com/heapsynth/heapsynth/pkg/synthesis/rules"
	"github.com/heapsynth/heapsynth/pkg/synthesis/solver"
	"github.com/heapsynth/heapsynth/pkg/synthesis/spec"
	"github.com/heapsynth/heapsynth/pkg/version"
)

const defaultTimeout = 2 * time.Minute

type options struct {
	configPath  string
	version     bool
	debug       bool
	depthFirst  bool
	commute     bool
	invert      bool
	timeout     time.Duration
	printDerivs bool
	printFailed bool
	printEnv    bool
	metricsAddr string
}

// fileConfig mirrors the flag surface; values are applied only for
// flags not set explicitly on the command line.
type fileConfig struct {
	DepthFirst       *bool   `yaml:"depthFirst"`
	Commute          *bool   `yaml:"commute"`
	Invert           *bool   `yaml:"invert"`
	Timeout          *string `yaml:"timeOut"`
	PrintDerivations *bool   `yaml:"printDerivations"`
	PrintFailed      *bool   `yaml:"printFailed"`
	PrintEnv         *bool   `yaml:"printEnv"`
}

func newRootCmd() *cobra.Command {
	o := options{}

	cmd := &cobra.Command{
		Use:          "heapsynth [flags] spec-file",
		Short:        "Synthesizes heap-manipulating programs from pre/post-condition pairs",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if o.version {
				fmt.Print(version.String())
				return nil
			}
			if len(args) != 1 {
				return errors.New("expected exactly one spec-file argument")
			}
			if err := o.applyConfigFile(cmd); err != nil {
				return err
			}

			logger := logrus.New()
			if o.debug || o.printDerivs {
				logger.SetLevel(logrus.DebugLevel)
			}

			ctx, cancel := context.WithCancel(signals.Context())
			defer cancel()

			return o.run(ctx, logger, args[0])
		},
	}

	cmd.Flags().StringVar(&o.configPath, "config", "", "path to a YAML file preloading the flags below")
	cmd.Flags().BoolVar(&o.version, "version", false, "print the version and exit")
	cmd.Flags().BoolVar(&o.debug, "debug", false, "use debug log level")
	cmd.Flags().BoolVar(&o.depthFirst, "depth-first", false, "expand newest goals first instead of cheapest first")
	cmd.Flags().BoolVar(&o.commute, "commute", true, "prune derivations that merely reorder commuting rules")
	cmd.Flags().BoolVar(&o.invert, "invert", true, "stop trying rules once an invertible rule applies")
	cmd.Flags().DurationVar(&o.timeout, "timeout", defaultTimeout, "wall-clock bound on the search, 0 to disable")
	cmd.Flags().BoolVar(&o.printDerivs, "print-derivations", false, "log every recorded derivation")
	cmd.Flags().BoolVar(&o.printFailed, "print-failed", false, "print goals whose expansion produced nothing")
	cmd.Flags().BoolVar(&o.printEnv, "print-env", false, "print the parsed specifications before searching")
	cmd.Flags().StringVar(&o.metricsAddr, "metrics-addr", "", "address to serve prometheus metrics on while searching")

	return cmd
}

func (o *options) applyConfigFile(cmd *cobra.Command) error {
	if o.configPath == "" {
		return nil
	}
	raw, err := os.ReadFile(o.configPath)
	if err != nil {
		return errors.Wrap(err, "reading config")
	}
	var fc fileConfig
	if err := yaml.UnmarshalStrict(raw, &fc); err != nil {
		return errors.Wrapf(err, "parsing config %s", o.configPath)
	}
	setBool := func(flag string, dst *bool, src *bool) {
		if src != nil && !cmd.Flags().Changed(flag) {
			*dst = *src
		}
	}
	setBool("depth-first", &o.depthFirst, fc.DepthFirst)
	setBool("commute", &o.commute, fc.Commute)
	setBool("invert", &o.invert, fc.Invert)
	setBool("print-derivations", &o.printDerivs, fc.PrintDerivations)
	setBool("print-failed", &o.printFailed, fc.PrintFailed)
	setBool("print-env", &o.printEnv, fc.PrintEnv)
	if fc.Timeout != nil && !cmd.Flags().Changed("timeout") {
		d, err := time.ParseDuration(*fc.Timeout)
		if err != nil {
			return errors.Wrapf(err, "parsing timeOut in %s", o.configPath)
		}
		o.timeout = d
	}
	return nil
}

func (o *options) run(ctx context.Context, logger *logrus.Logger, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "reading specification")
	}
	fspecs, err := parser.Parse(string(raw))
	if err != nil {
		return errors.Wrapf(err, "parsing %s", path)
	}

	env := spec.NewEnvironment()
	for _, fs := range fspecs[1:] {
		env.Functions[fs.Name] = fs
	}
	if len(env.Functions) > 0 {
		logger.WithField("count", len(env.Functions)).
			Warn("auxiliary specifications are retained in the environment, but no rule synthesizes calls to them yet")
	}
	if o.printEnv {
		for _, fs := range fspecs {
			fmt.Fprintf(os.Stderr, "%s\n", fs)
		}
	}

	metrics.RegisterSynthesis()
	if o.metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		go func() {
			if err := http.ListenAndServe(o.metricsAddr, mux); err != nil {
				logger.WithError(err).Warn("metrics listener stopped")
			}
		}()
	}

	synOpts := []solver.Option{
		solver.WithSpecification(fspecs[0], env),
		solver.WithRules(rules.Default(entailment.New())...),
		solver.WithLogger(logger),
		solver.WithTimeout(o.timeout),
		solver.WithDepthFirst(o.depthFirst),
		solver.WithCommutation(o.commute),
		solver.WithInversion(o.invert),
	}
	stats := solver.Stats{}
	synOpts = append(synOpts, solver.WithStats(&stats))
	if o.printFailed {
		synOpts = append(synOpts, solver.WithTracer(solver.LoggingTracer{Writer: os.Stderr}))
	}

	syn, err := solver.New(synOpts...)
	if err != nil {
		return err
	}

	start := time.Now()
	procs, err := syn.Synthesize(ctx)
	elapsed := time.Since(start)

	outcome := metrics.Succeeded
	var timedOut solver.TimeoutError
	switch {
	case err == nil:
	case errors.As(err, &timedOut):
		outcome = metrics.TimedOut
	default:
		outcome = metrics.Failed
	}
	metrics.EmitRun(outcome, elapsed, stats)

	logger.WithFields(logrus.Fields{
		"elapsed":      elapsed,
		"goals":        stats.Goals,
		"expansions":   stats.Expansions,
		"applications": stats.RuleApplications,
		"backtracks":   stats.Backtracks,
		"pruned":       stats.PrunedCandidates,
		"maxBoundary":  stats.MaxBoundary,
		"maxDepth":     stats.MaxDepth,
	}).Info("search statistics")

	if err != nil {
		return err
	}
	for _, p := range procs {
		fmt.Print(p)
	}
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
