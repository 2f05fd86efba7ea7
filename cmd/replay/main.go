// Command replay verifies a recorded run log: it re-runs the simulation
// with the recorded map, seed and probability and checks the per-step
// metrics and robot transitions against the log.
package main

import (
	"flag"
	"fmt"
	"os"

	"swarmfill.ai/internal/persistence/runlog"
	"swarmfill.ai/internal/sim/maps"
	"swarmfill.ai/internal/sim/sim"
)

func main() {
	var (
		logPath  = flag.String("log", "", "path to run-*.jsonl.zst")
		mapsPath = flag.String("maps", "./configs/maps.yaml", "map catalog path")
	)
	flag.Parse()

	if *logPath == "" {
		fmt.Fprintln(os.Stderr, "missing -log")
		os.Exit(2)
	}

	header, steps, err := runlog.Read(*logPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read run log:", err)
		os.Exit(1)
	}
	fmt.Printf("run log map=%q index=%d p=%d seed=%d steps=%d\n",
		header.MapName, header.MapIndex, header.Probability, header.Seed, len(steps))

	catalog, err := maps.Load(*mapsPath)
	if err != nil && !os.IsNotExist(err) {
		fmt.Fprintln(os.Stderr, "load maps:", err)
		os.Exit(1)
	}
	m := catalog.ByIndex(header.MapIndex)
	if m.Name != header.MapName {
		fmt.Fprintf(os.Stderr, "map %d is %q, log was recorded against %q\n", header.MapIndex, m.Name, header.MapName)
		os.Exit(1)
	}

	s := sim.New(sim.Config{Seed: header.Seed, ActiveProbability: header.Probability})
	if err := maps.Apply(s, m); err != nil {
		fmt.Fprintln(os.Stderr, "apply map:", err)
		os.Exit(1)
	}

	for _, want := range steps {
		s.Step()
		if s.Steps() != want.Step {
			fail(want.Step, "step counter diverged: got %d", s.Steps())
		}
		if s.Complete() != want.Complete {
			fail(want.Step, "completion diverged: got %v, want %v", s.Complete(), want.Complete)
		}
		got := runlog.MetricsEntry{
			Makespan:       s.Makespan(),
			TTotal:         s.TTotal(),
			TMax:           s.TMax(),
			ETotal:         s.ETotal(),
			EMax:           s.EMax(),
			AvailableCells: s.AvailableCells(),
			RobotCount:     s.RobotCount(),
		}
		if got != want.Metrics {
			fail(want.Step, "metrics diverged: got %+v, want %+v", got, want.Metrics)
		}
		for _, rt := range want.Robots {
			if code := s.PopRobotState(rt.Index); code != rt.Code {
				fail(want.Step, "robot %d transition diverged: got %d, want %d", rt.Index, code, rt.Code)
			}
		}
	}

	fmt.Printf("verified %d steps: makespan=%d robots=%d available_cells=%d\n",
		len(steps), s.Makespan(), s.RobotCount(), s.AvailableCells())
}

func fail(step int, format string, args ...any) {
	fmt.Fprintf(os.Stderr, "step %d: "+format+"\n", append([]any{step}, args...)...)
	os.Exit(1)
}
