// Package resultsdb stores completed-run metrics in a local SQLite
// database so batches can be compared across maps and probabilities.
package resultsdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// RunRow is one completed simulation run.
type RunRow struct {
	MapName        string
	MapIndex       int
	Probability    int
	Seed           int64
	Makespan       int
	Steps          int
	Robots         int
	TTotal         int
	TMax           int
	ETotal         int
	EMax           int
	AvailableCells int
}

// Summary aggregates recorded runs for one map/probability pair.
type Summary struct {
	Runs        int
	MinMakespan int
	MaxMakespan int
	AvgMakespan float64
}

type req struct {
	row RunRow

	// flush requests close(done) once every prior row is written.
	flush bool
	done  chan struct{}
}

type DB struct {
	db *sql.DB

	// ch is never closed; done guards sends so a racing RecordRun cannot
	// panic against Close.
	ch   chan req
	done chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

func Open(path string) (*DB, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	d := &DB{
		db:   db,
		ch:   make(chan req, 1024),
		done: make(chan struct{}),
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.loop()
	}()
	return d, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			recorded_at TEXT NOT NULL,
			map_name TEXT NOT NULL,
			map_index INTEGER NOT NULL,
			probability INTEGER NOT NULL,
			seed INTEGER NOT NULL,
			makespan INTEGER NOT NULL,
			steps INTEGER NOT NULL,
			robots INTEGER NOT NULL,
			t_total INTEGER NOT NULL,
			t_max INTEGER NOT NULL,
			e_total INTEGER NOT NULL,
			e_max INTEGER NOT NULL,
			available_cells INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_map_prob ON runs(map_name, probability);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (d *DB) Close() error {
	var err error
	d.once.Do(func() {
		close(d.done)
		d.wg.Wait()
		err = d.db.Close()
	})
	return err
}

// RecordRun queues a run for insertion. Writes are asynchronous; a full
// queue drops the row rather than stalling the simulation loop.
func (d *DB) RecordRun(r RunRow) {
	if d == nil {
		return
	}
	select {
	case <-d.done:
	case d.ch <- req{row: r}:
	default:
	}
}

func (d *DB) loop() {
	for {
		select {
		case <-d.done:
			// Drain rows queued before Close, then stop.
			for {
				select {
				case q := <-d.ch:
					d.handle(q)
				default:
					return
				}
			}
		case q := <-d.ch:
			d.handle(q)
		}
	}
}

func (d *DB) handle(q req) {
	if q.flush {
		close(q.done)
		return
	}
	r := q.row
	_, err := d.db.Exec(
		`INSERT INTO runs (recorded_at, map_name, map_index, probability, seed,
			makespan, steps, robots, t_total, t_max, e_total, e_max, available_cells)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		time.Now().UTC().Format(time.RFC3339), r.MapName, r.MapIndex, r.Probability, r.Seed,
		r.Makespan, r.Steps, r.Robots, r.TTotal, r.TMax, r.ETotal, r.EMax, r.AvailableCells,
	)
	_ = err // Secondary index; the printed batch summary is the source of truth.
}

// Flush blocks until every previously queued row has been written.
func (d *DB) Flush() {
	if d == nil {
		return
	}
	done := make(chan struct{})
	select {
	case <-d.done:
		return
	case d.ch <- req{flush: true, done: done}:
	}
	select {
	case <-done:
	case <-d.done:
	}
}

// SummaryFor aggregates recorded runs for a map/probability pair.
func (d *DB) SummaryFor(mapName string, probability int) (Summary, error) {
	var s Summary
	row := d.db.QueryRow(
		`SELECT COUNT(*), COALESCE(MIN(makespan),0), COALESCE(MAX(makespan),0), COALESCE(AVG(makespan),0)
		 FROM runs WHERE map_name = ? AND probability = ?`,
		mapName, probability,
	)
	if err := row.Scan(&s.Runs, &s.MinMakespan, &s.MaxMakespan, &s.AvgMakespan); err != nil {
		return s, err
	}
	return s, nil
}
