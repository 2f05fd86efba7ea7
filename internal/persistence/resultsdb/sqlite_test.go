package resultsdb

import (
	"path/filepath"
	"sync"
	"testing"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	d, err := Open(filepath.Join(t.TempDir(), "results.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func TestRecordRun_SummaryAggregates(t *testing.T) {
	d := openTestDB(t)

	for _, makespan := range []int{10, 14, 12} {
		d.RecordRun(RunRow{
			MapName:        "demo",
			Probability:    100,
			Seed:           int64(makespan),
			Makespan:       makespan,
			Steps:          makespan,
			Robots:         5,
			AvailableCells: 5,
		})
	}
	d.RecordRun(RunRow{MapName: "demo", Probability: 50, Makespan: 99})
	d.Flush()

	s, err := d.SummaryFor("demo", 100)
	if err != nil {
		t.Fatalf("SummaryFor: %v", err)
	}
	if s.Runs != 3 {
		t.Fatalf("Runs = %d, want 3", s.Runs)
	}
	if s.MinMakespan != 10 || s.MaxMakespan != 14 {
		t.Fatalf("min/max = %d/%d, want 10/14", s.MinMakespan, s.MaxMakespan)
	}
	if s.AvgMakespan != 12 {
		t.Fatalf("avg = %v, want 12", s.AvgMakespan)
	}
}

func TestSummaryFor_NoRows(t *testing.T) {
	d := openTestDB(t)
	s, err := d.SummaryFor("unknown", 100)
	if err != nil {
		t.Fatalf("SummaryFor: %v", err)
	}
	if s.Runs != 0 || s.MinMakespan != 0 || s.MaxMakespan != 0 {
		t.Fatalf("summary = %+v, want zeroes", s)
	}
}

func TestClose_WritesQueuedRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.db")
	d, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	for i := 0; i < 3; i++ {
		d.RecordRun(RunRow{MapName: "demo", Probability: 100, Makespan: 10 + i})
	}
	if err := d.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	d2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer d2.Close()
	s, err := d2.SummaryFor("demo", 100)
	if err != nil {
		t.Fatalf("SummaryFor: %v", err)
	}
	if s.Runs != 3 {
		t.Fatalf("Runs = %d, want 3 (rows queued before Close must survive)", s.Runs)
	}
}

func TestRecordRun_ConcurrentWithClose(t *testing.T) {
	d := openTestDB(t)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				d.RecordRun(RunRow{MapName: "race", Probability: 100})
			}
		}()
	}
	// Racing Close must never panic a sender.
	if err := d.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	wg.Wait()
}

func TestRecordRun_AfterCloseIsDropped(t *testing.T) {
	d := openTestDB(t)
	if err := d.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	// Must not panic on the closed channel.
	d.RecordRun(RunRow{MapName: "demo"})
	d.Flush()
}

func TestOpen_EmptyPath(t *testing.T) {
	if _, err := Open(""); err == nil {
		t.Fatal("expected an error for an empty path")
	}
}
