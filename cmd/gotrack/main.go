// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.10.14
//

package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	m "github.com/mkhts/gotrack"
	"github.com/prometheus/client_golang/prometheus"
	"gonum.org/v1/gonum/mat"
)

func main() {

	// Parse command line arguments
	args, err := parseArgs(os.Args[1:])
	if err != nil {
		flag.Usage()
		os.Exit(1)
	}

	// Run the main application
	if err := runApplication(args); err != nil {
		m.PrintE(err)
		os.Exit(1)
	}
}

// Structure to hold command line argument information
type cmdOpt struct {
	scenarioFn string
	outFn      string
	metricsFn  string
	noHeader   bool
	ts         time.Time
	te         time.Time
	ti         float64
	fix        m.FixedEnd
	fixSet     bool
	data       m.LinkEndVar
	verify     bool
	logLevel   string
	logFormat  string
}

// Main application processing
func runApplication(args cmdOpt) error {
	logger := newLogger(args.logLevel, args.logFormat)

	// Load scenario
	sc, err := m.LoadScenario(args.scenarioFn)
	if err != nil {
		return fmt.Errorf("failed to load scenario: %w", err)
	}
	if !args.ts.IsZero() {
		sc.Simulation.Start = m.TimeStr(args.ts)
	}
	if !args.te.IsZero() {
		sc.Simulation.End = m.TimeStr(args.te)
	}
	if args.ti > 0 {
		sc.Simulation.Step = args.ti
	}

	reg := prometheus.NewRegistry()
	metrics, err := m.NewMetrics(reg)
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	built, err := sc.Build(m.WithMetrics(metrics))
	if err != nil {
		return fmt.Errorf("failed to build scenario: %w", err)
	}
	if args.fixSet {
		for i := range built.Observations {
			built.Observations[i].Fixed = args.fix.LinkEnd()
		}
	}
	logger.Info("scenario loaded",
		"file", filepath.Base(args.scenarioFn),
		"bodies", len(built.Bodies),
		"observations", len(built.Observations),
		"parameters", len(built.Parameters))

	// Prepare output file
	out, err := prepareOutput(args.outFn)
	if err != nil {
		return fmt.Errorf("failed to prepare output: %w", err)
	}
	defer out.Close()

	if !args.noHeader {
		printHeader(out, args, built)
	}

	failed := simulate(built, args.data, out, logger)

	if args.verify {
		if err := verifyPartials(built, metrics, logger); err != nil {
			return err
		}
	}

	if args.metricsFn != "" {
		if err := metrics.WriteToTextfile(args.metricsFn); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
	}
	if failed > 0 {
		logger.Warn("some observations failed", "count", failed)
	}
	return nil
}

// Compute every observation at every epoch; returns the number of failures
func simulate(built *m.BuiltScenario, data m.LinkEndVar, out io.Writer, logger *slog.Logger) int {
	failed := 0
	for _, t := range built.Epochs() {
		if m.DBG_ >= 2 {
			m.PrintB(t, ">>> epoch %.3f\n", t)
		}
		for _, so := range built.Observations {
			obs, times, states, err := so.Model.ComputeObservationsWithLinkEndData(t, so.Fixed)
			if err != nil {
				failed++
				logger.Error("observation failed", "name", so.Name, "time", t, "err", err)
				continue
			}
			printObservation(out, t, so.Name, obs, times, states, data)
		}
	}
	return failed
}

// Compare analytic and numerical one-way range partials at the first epoch
func verifyPartials(built *m.BuiltScenario, metrics *m.Metrics, logger *slog.Logger) error {
	t := built.Start
	for _, so := range built.Observations {
		if _, ok := so.Model.Observable().(m.OneWayRange); !ok {
			continue
		}
		for _, sp := range built.Parameters {
			p := sp.Parameter
			rp, err := m.NewOneWayRangePartial(so.LinkEnds, built.Bodies, p)
			if errors.Is(err, m.ErrConsistency) {
				logger.Debug("parameter does not affect observation", "name", so.Name, "parameter", p.Name())
				continue
			}
			if err != nil {
				return fmt.Errorf("range partial of %s wrt %s: %w", so.Name, p.Name(), err)
			}

			_, times, states, err := so.Model.ComputeObservationsWithLinkEndData(t, so.Fixed)
			if err != nil {
				return fmt.Errorf("observation %s failed: %w", so.Name, err)
			}
			analytic, err := rp.Partial(times, states, so.Fixed)
			if err != nil {
				return err
			}
			pert := sp.Perturbation
			if len(pert) == 0 {
				pert = defaultPerturbation(p)
			}
			numerical, err := m.NumericalParameterPartial(p, pert, m.ObservationFunction(so.Model, so.Fixed), t)
			if err != nil {
				return fmt.Errorf("numerical partial of %s wrt %s: %w", so.Name, p.Name(), err)
			}

			relErr := relativeDifference(analytic, numerical)
			metrics.SetPartialError(p.Name(), relErr)
			logger.Info("partial check",
				"observation", so.Name,
				"parameter", p.Name(),
				"analytic", fmt.Sprint(mat.Formatted(analytic, mat.Squeeze())),
				"numerical", fmt.Sprint(mat.Formatted(numerical, mat.Squeeze())),
				"rel_err", relErr)
		}
	}
	return nil
}

func defaultPerturbation(p m.Parameter) []float64 {
	switch p.(type) {
	case *m.RotationRate:
		return []float64{1e-10}
	case *m.PoleOrientation:
		return []float64{1e-5}
	default:
		return []float64{10}
	}
}

// Largest element difference relative to the largest element of b
func relativeDifference(a, b mat.Matrix) float64 {
	r, c := b.Dims()
	maxDiff, maxRef := 0.0, 0.0
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			maxDiff = math.Max(maxDiff, math.Abs(a.At(i, j)-b.At(i, j)))
			maxRef = math.Max(maxRef, math.Abs(b.At(i, j)))
		}
	}
	if maxRef == 0 {
		return maxDiff
	}
	return maxDiff / maxRef
}

// Prepare output file
func prepareOutput(fn string) (io.WriteCloser, error) {

	// Use stdout if no output file is specified
	if len(fn) == 0 {
		return &nopCloser{os.Stdout}, nil
	}

	f, err := os.Create(fn)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, nil
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

func printHeader(out io.Writer, args cmdOpt, built *m.BuiltScenario) {
	fmt.Fprintf(out, "%% program   : %s\n", filepath.Base(os.Args[0]))
	fmt.Fprintf(out, "%% scenario  : %s\n", args.scenarioFn)
	fmt.Fprintf(out, "%% span      : %s - %s step %.3f s\n",
		m.EpochToTime(built.Start).UTC().Format("2006/01/02 15:04:05.000"),
		m.EpochToTime(built.End).UTC().Format("2006/01/02 15:04:05.000"), built.Step)
	for _, so := range built.Observations {
		fmt.Fprintf(out, "%% obs       : %s %s fixed=%s %s\n", so.Name, so.Model.Observable().Name(), so.Fixed, so.LinkEnds)
	}
	cols := "%  time (UTC)                   name                 value(s)"
	for _, t := range args.data {
		cols += fmt.Sprintf("  %s: t x y z vx vy vz", t)
	}
	fmt.Fprintln(out, cols)
}

// One output line per observation
func printObservation(out io.Writer, t float64, name string, obs, times []float64, states []m.State, data m.LinkEndVar) {
	s := []string{m.EpochToTime(t).UTC().Format("2006/01/02 15:04:05.000"), fmt.Sprintf("%-20s", name)}
	for _, v := range obs {
		s = append(s, fmt.Sprintf("%22.12e", v))
	}
	for _, role := range data {
		i := 0
		if role == m.Receiver {
			i = 1
		} else if role != m.Transmitter {
			continue
		}
		s = append(s, fmt.Sprintf("%18.6f", times[i]))
		for _, v := range states[i] {
			s = append(s, fmt.Sprintf("%18.4f", v))
		}
	}
	fmt.Fprintln(out, strings.Join(s, " "))
}

// Logger for progress and diagnostics (stdout carries the observations)
func newLogger(level, format string) *slog.Logger {
	var lv slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lv = slog.LevelDebug
	case "warn":
		lv = slog.LevelWarn
	case "error":
		lv = slog.LevelError
	default:
		lv = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lv}
	if strings.ToLower(format) == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func parseArgs(argv []string) (a cmdOpt, err error) {
	fs := flag.CommandLine
	flag.Usage = func() {
		m.PrintA(`
[Usage]
	%s [Options] scenario.yaml

[Options]
`, filepath.Base(os.Args[0]))
		fs.PrintDefaults()
	}
	var ts_, te_ m.TimeStr
	fs.TextVar(&ts_, "ts", m.NewTimeStr(time.Time{}), "Start epoch, overriding the scenario. Enclose in quotes like -ts \"2026/01/01 00:00:00\"")
	fs.TextVar(&te_, "te", m.NewTimeStr(time.Time{}), "End epoch, overriding the scenario. This epoch is also included.")
	fs.Float64Var(&a.ti, "ti", 0, "Time step [s], overriding the scenario. 0 keeps the scenario step.")
	fs.Var(&a.fix, "fix", "Link end whose time is fixed for all observations. 0(receiver), 1(transmitter). Default: as in the scenario")
	fs.Var(&a.data, "data", "Link ends whose times and states are printed. Comma-separated like transmitter,receiver")
	fs.StringVar(&a.outFn, "o", "", "Output file path. If not specified, output to stdout.")
	fs.BoolVar(&a.noHeader, "nh", false, "Do not output header section.")
	fs.BoolVar(&a.verify, "verify", false, "Compare analytic and numerical range partials of the scenario parameters at the start epoch")
	fs.StringVar(&a.metricsFn, "metrics-file", "", "Write Prometheus metrics to this file at exit")
	fs.StringVar(&a.logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	fs.StringVar(&a.logFormat, "log-format", "text", "Log format: text or json")
	var dbg int
	fs.IntVar(&dbg, "x", 0, "Debug information display. Specify level value. 0(OFF), 1(display), 2(detailed display), 3(light time iterations), 4(matrices)")
	if err = fs.Parse(argv); err != nil {
		return a, err
	}
	if fs.NArg() != 1 {
		return a, fmt.Errorf("too less or many arguments")
	}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "fix" {
			a.fixSet = true
		}
	})
	a.scenarioFn = fs.Arg(0)
	a.ts = time.Time(ts_)
	a.te = time.Time(te_)
	m.DBG_ = dbg
	return
}
