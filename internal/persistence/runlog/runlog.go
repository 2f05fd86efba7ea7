// Package runlog records one simulation run as zstd-compressed JSONL: a
// header line followed by one entry per step. Logs are replayable: the
// header carries everything needed to reproduce the run.
package runlog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

// Header is the first line of every run log.
type Header struct {
	MapName     string `json:"map_name"`
	MapIndex    int    `json:"map_index"`
	Probability int    `json:"probability"`
	Seed        int64  `json:"seed"`
}

// StepEntry is one simulation step.
type StepEntry struct {
	Step     int               `json:"step"`
	Complete bool              `json:"complete"`
	Robots   []RobotTransition `json:"robots,omitempty"`
	Metrics  MetricsEntry      `json:"metrics"`
}

type RobotTransition struct {
	Index int `json:"index"`
	Code  int `json:"code"`
}

type MetricsEntry struct {
	Makespan       int `json:"makespan"`
	TTotal         int `json:"t_total"`
	TMax           int `json:"t_max"`
	ETotal         int `json:"e_total"`
	EMax           int `json:"e_max"`
	AvailableCells int `json:"available_cells"`
	RobotCount     int `json:"robot_count"`
}

type Writer struct {
	f   *os.File
	enc *zstd.Encoder
	w   *bufio.Writer
}

// Create opens a new run log at path, writing the header immediately.
func Create(path string, h Header) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	w := &Writer{f: f, enc: enc, w: bufio.NewWriterSize(enc, 128*1024)}
	if err := w.writeLine(h); err != nil {
		_ = w.Close()
		return nil, err
	}
	return w, nil
}

func (w *Writer) WriteStep(e StepEntry) error {
	return w.writeLine(e)
}

func (w *Writer) writeLine(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := w.w.Write(b); err != nil {
		return err
	}
	return w.w.WriteByte('\n')
}

func (w *Writer) Close() error {
	var err1 error
	if w.w != nil {
		err1 = w.w.Flush()
	}
	if w.enc != nil {
		if err := w.enc.Close(); err1 == nil {
			err1 = err
		}
		w.enc = nil
	}
	if w.f != nil {
		if err := w.f.Close(); err1 == nil {
			err1 = err
		}
		w.f = nil
	}
	return err1
}

// Read loads an entire run log.
func Read(path string) (Header, []StepEntry, error) {
	var h Header

	f, err := os.Open(path)
	if err != nil {
		return h, nil, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return h, nil, err
	}
	defer dec.Close()

	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)

	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return h, nil, err
		}
		return h, nil, fmt.Errorf("%s: empty run log", path)
	}
	if err := json.Unmarshal(sc.Bytes(), &h); err != nil {
		return h, nil, fmt.Errorf("%s: header: %w", path, err)
	}

	var steps []StepEntry
	for sc.Scan() {
		var e StepEntry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			return h, nil, fmt.Errorf("%s: step %d: %w", path, len(steps)+1, err)
		}
		steps = append(steps, e)
	}
	return h, steps, sc.Err()
}
