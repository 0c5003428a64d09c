// Package progress accounts for how much of an input tree has been processed.
//
// The denominator is taken once, when the tracker is created, by summing the
// size of every regular file under the root. The numerator grows as files are
// recorded and is measured from disk at record time. Files that change between
// the two measurements make the accounting drift; that drift is not corrected
// and the final report always says 100%.
package progress

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"

	"heicbatch/internal/log"
)

// Update is a single progress notification.
type Update struct {
	// Path is the file that was just recorded. Empty on completion.
	Path      string
	Processed int64
	Total     int64
	Percent   float64
	// Done is set only by the completion report.
	Done bool
}

// Sink receives progress notifications.
type Sink interface {
	Progress(u Update)
}

// TrackerConfig is the configuration of a Tracker.
type TrackerConfig struct {
	Root   string
	Sink   Sink
	Logger log.Logger
}

func (c *TrackerConfig) defaults() error {
	if c.Root == "" {
		return fmt.Errorf("root is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "progress.Tracker"})
	if c.Sink == nil {
		c.Sink = NewLogSink(c.Logger)
	}
	return nil
}

// Tracker accumulates processed bytes against the total size of a tree.
// It is not safe for concurrent use.
type Tracker struct {
	total     int64
	processed int64
	percent   float64
	sink      Sink
	logger    log.Logger
}

// NewTracker sums the size of every regular file under cfg.Root. A root that
// does not exist, is not a directory or cannot be walked is an error.
func NewTracker(cfg TrackerConfig) (*Tracker, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	total, err := TreeSize(cfg.Root)
	if err != nil {
		return nil, err
	}
	cfg.Logger.Debugf("Tree %s holds %d bytes", cfg.Root, total)

	return &Tracker{
		total:  total,
		sink:   cfg.Sink,
		logger: cfg.Logger,
	}, nil
}

// TreeSize returns the summed size of all regular files under root.
// A symlinked root is resolved first since WalkDir does not follow it.
func TreeSize(root string) (int64, error) {
	root, err := filepath.EvalSymlinks(root)
	if err != nil {
		return 0, fmt.Errorf("could not resolve root: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return 0, fmt.Errorf("could not stat root: %w", err)
	}
	if !info.IsDir() {
		return 0, fmt.Errorf("root %s is not a directory", root)
	}

	var size int64
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			return err
		}
		size += fi.Size()
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("could not size tree %s: %w", root, err)
	}

	return size, nil
}

// Record adds the current on-disk size of path to the processed bytes and
// notifies the sink. A path that is missing or not a regular file adds
// nothing and only logs a warning.
func (t *Tracker) Record(path string) {
	size, err := regularFileSize(path)
	if err != nil {
		t.logger.Warningf("Could not record %s as processed: %v", path, err)
	}
	t.processed += size
	t.percent = percentOf(t.processed, t.total)

	t.sink.Progress(Update{
		Path:      path,
		Processed: t.processed,
		Total:     t.total,
		Percent:   t.percent,
	})
}

// Complete reports the run as finished. The report is always 100% because
// completion means there is nothing left to process, not that the byte
// accounting reached the total.
func (t *Tracker) Complete() {
	t.sink.Progress(Update{
		Processed: t.processed,
		Total:     t.total,
		Percent:   100,
		Done:      true,
	})
}

// Percent returns processed/total as a percentage rounded to two decimals.
// An empty tree reports 0.
func (t *Tracker) Percent() float64 { return t.percent }

// Total returns the tree size measured at creation.
func (t *Tracker) Total() int64 { return t.total }

// Processed returns the bytes recorded so far.
func (t *Tracker) Processed() int64 { return t.processed }

var errNotRegular = errors.New("not a regular file")

func regularFileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	if !info.Mode().IsRegular() {
		return 0, errNotRegular
	}
	return info.Size(), nil
}

func percentOf(processed, total int64) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(processed)/float64(total)*100*100) / 100
}
