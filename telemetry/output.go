package telemetry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"github.com/pthm-cable/silentrun/config"
)

// csvTable appends gocsv rows to one file, writing the header with the first row.
type csvTable struct {
	name   string
	f      *os.File
	header bool
}

func (t *csvTable) append(rows any) error {
	var err error
	if t.header {
		err = gocsv.MarshalWithoutHeaders(rows, t.f)
	} else {
		err = gocsv.Marshal(rows, t.f)
		t.header = err == nil
	}
	if err != nil {
		return fmt.Errorf("writing %s: %w", t.name, err)
	}
	return nil
}

// RunLog writes one run's artifacts into a directory: window stats, perf
// windows and bookmarks as CSV, the config as YAML, vessel records as JSON.
// A nil *RunLog discards everything.
type RunLog struct {
	dir                      string
	windows, perf, bookmarks *csvTable
}

// NewRunLog creates dir and its CSV files. An empty dir disables output and returns nil.
func NewRunLog(dir string) (*RunLog, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	open := func(name string) (*csvTable, error) {
		f, err := os.Create(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("creating %s: %w", name, err)
		}
		return &csvTable{name: name, f: f}, nil
	}

	l := &RunLog{dir: dir}
	var err error
	if l.windows, err = open("telemetry.csv"); err != nil {
		return nil, err
	}
	if l.perf, err = open("perf.csv"); err != nil {
		l.Close()
		return nil, err
	}
	if l.bookmarks, err = open("bookmarks.csv"); err != nil {
		l.Close()
		return nil, err
	}
	return l, nil
}

// Config saves cfg as config.yaml.
func (l *RunLog) Config(cfg *config.Config) error {
	if l == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(l.dir, "config.yaml"))
}

// Window appends one stats window.
func (l *RunLog) Window(s WindowStats) error {
	if l == nil {
		return nil
	}
	return l.windows.append([]WindowStats{s})
}

// Perf appends one perf window ending at windowEnd.
func (l *RunLog) Perf(s PerfStats, windowEnd int32) error {
	if l == nil {
		return nil
	}
	return l.perf.append([]PerfStatsCSV{s.ToCSV(windowEnd)})
}

// Bookmark appends one bookmark.
func (l *RunLog) Bookmark(b Bookmark) error {
	if l == nil {
		return nil
	}
	return l.bookmarks.append([]Bookmark{b})
}

// Records saves per-vessel combat records as records.json.
func (l *RunLog) Records(records []VesselRecord) error {
	if l == nil {
		return nil
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling vessel records: %w", err)
	}
	if err := os.WriteFile(filepath.Join(l.dir, "records.json"), data, 0644); err != nil {
		return fmt.Errorf("writing records.json: %w", err)
	}
	return nil
}

// Close closes the CSV files.
func (l *RunLog) Close() error {
	if l == nil {
		return nil
	}
	var errs []error
	for _, t := range []*csvTable{l.windows, l.perf, l.bookmarks} {
		if t != nil {
			errs = append(errs, t.f.Close())
		}
	}
	return errors.Join(errs...)
}
