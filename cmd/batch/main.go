// Command batch runs complete simulations headlessly and summarizes their
// metrics. Each run uses seed+i, so a batch is reproducible end to end.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"swarmfill.ai/internal/persistence/resultsdb"
	"swarmfill.ai/internal/persistence/runlog"
	"swarmfill.ai/internal/sim/maps"
	"swarmfill.ai/internal/sim/sim"
)

// stepCap aborts runs that fail to terminate; with at most 8000 cells a
// healthy run finishes well below this.
const stepCap = 1000000

type runMetrics struct {
	makespan       int
	eTotal         int
	eMax           int
	tTotal         int
	tMax           int
	availableCells int
}

func main() {
	var (
		prob      = flag.Int("p", 50, "active probability (0-100)")
		mapIndex  = flag.Int("m", 0, "map index to load")
		runs      = flag.Int("n", 1, "number of simulations to run")
		seed      = flag.Int64("seed", 1337, "base rng seed (run i uses seed+i)")
		mapsPath  = flag.String("maps", "./configs/maps.yaml", "map catalog path")
		dbPath    = flag.String("db", "", "optional sqlite results db path")
		runlogDir = flag.String("runlog", "", "optional directory for per-run step logs")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[batch] ", log.LstdFlags)

	catalog, err := maps.Load(*mapsPath)
	if err != nil && !os.IsNotExist(err) {
		logger.Fatalf("load maps: %v", err)
	}
	m := catalog.ByIndex(*mapIndex)

	var db *resultsdb.DB
	if *dbPath != "" {
		db, err = resultsdb.Open(*dbPath)
		if err != nil {
			logger.Fatalf("open results db: %v", err)
		}
		defer db.Close()
	}

	var collected []runMetrics
	for i := 0; i < *runs; i++ {
		runSeed := *seed + int64(i)
		s := sim.New(sim.Config{Seed: runSeed, ActiveProbability: *prob, Logger: logger})
		if err := maps.Apply(s, m); err != nil {
			logger.Fatalf("apply map %q: %v", m.Name, err)
		}

		var lw *runlog.Writer
		if *runlogDir != "" {
			path := filepath.Join(*runlogDir, fmt.Sprintf("run-%03d.jsonl.zst", i))
			lw, err = runlog.Create(path, runlog.Header{
				MapName:     m.Name,
				MapIndex:    *mapIndex,
				Probability: *prob,
				Seed:        runSeed,
			})
			if err != nil {
				logger.Fatalf("create run log: %v", err)
			}
		}

		steps := 0
		for !s.Complete() && steps < stepCap {
			s.Step()
			steps++
			if lw != nil {
				entry := runlog.StepEntry{
					Step:     s.Steps(),
					Complete: s.Complete(),
					Metrics: runlog.MetricsEntry{
						Makespan:       s.Makespan(),
						TTotal:         s.TTotal(),
						TMax:           s.TMax(),
						ETotal:         s.ETotal(),
						EMax:           s.EMax(),
						AvailableCells: s.AvailableCells(),
						RobotCount:     s.RobotCount(),
					},
				}
				for r := 0; r < s.RobotCount(); r++ {
					entry.Robots = append(entry.Robots, runlog.RobotTransition{Index: r, Code: s.PopRobotState(r)})
				}
				if err := lw.WriteStep(entry); err != nil {
					logger.Fatalf("write run log: %v", err)
				}
			}
		}
		if lw != nil {
			if err := lw.Close(); err != nil {
				logger.Fatalf("close run log: %v", err)
			}
		}
		if !s.Complete() {
			logger.Fatalf("run %d did not complete within %d steps", i, stepCap)
		}
		if n := s.DefensiveStops(); n > 0 {
			logger.Printf("run %d: %d defensive robot stops", i, n)
		}

		collected = append(collected, runMetrics{
			makespan:       s.Makespan(),
			eTotal:         s.ETotal(),
			eMax:           s.EMax(),
			tTotal:         s.TTotal(),
			tMax:           s.TMax(),
			availableCells: s.AvailableCells(),
		})
		if db != nil {
			db.RecordRun(resultsdb.RunRow{
				MapName:        m.Name,
				MapIndex:       *mapIndex,
				Probability:    *prob,
				Seed:           runSeed,
				Makespan:       s.Makespan(),
				Steps:          s.Steps(),
				Robots:         s.RobotCount(),
				TTotal:         s.TTotal(),
				TMax:           s.TMax(),
				ETotal:         s.ETotal(),
				EMax:           s.EMax(),
				AvailableCells: s.AvailableCells(),
			})
		}
	}
	if db != nil {
		db.Flush()
	}

	printSummary(collected)
}

func printSummary(runs []runMetrics) {
	if len(runs) == 0 {
		return
	}
	stat := func(name string, pick func(runMetrics) int) {
		min, max, sum := pick(runs[0]), pick(runs[0]), 0
		for _, r := range runs {
			v := pick(r)
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
			sum += v
		}
		avg := float64(sum) / float64(len(runs))
		fmt.Printf("  %-16s Min=%d Max=%d Avg=%.2f\n", name+":", min, max, avg)
	}

	fmt.Println("Simulation Metrics:")
	stat("Available Cells", func(r runMetrics) int { return r.availableCells })
	stat("Makespan", func(r runMetrics) int { return r.makespan })
	stat("E_Total", func(r runMetrics) int { return r.eTotal })
	stat("E_Max", func(r runMetrics) int { return r.eMax })
	stat("T_Total", func(r runMetrics) int { return r.tTotal })
	stat("T_Max", func(r runMetrics) int { return r.tMax })
}
