// Package convert walks a photo tree, converting HEIC stills and renaming
// their live photo clips while feeding a progress tracker.
package convert

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"heicbatch/internal/codec"
	"heicbatch/internal/log"
)

// ErrSameFile is returned when an output would overwrite its own source.
var ErrSameFile = errors.New("output path is the source file")

// Codec decodes sources and encodes outputs.
type Codec interface {
	Decode(path string) (*codec.Picture, error)
	Encode(pic *codec.Picture, dst string, format codec.Format, opts codec.Options) error
}

// Tracker receives finished files.
type Tracker interface {
	Record(path string)
	Complete()
}

// Config is the configuration of a Driver.
type Config struct {
	Root string
	// Suffix is the output image suffix, e.g. ".JPEG".
	Suffix         string
	DeleteOriginal bool
	Rename         bool
	Options        codec.Options

	Codec   Codec
	Tracker Tracker
	// Prober is optional. When set, MOV capture dates come from the container
	// before falling back to the modification time.
	Prober Prober
	Logger log.Logger
}

func (c *Config) defaults() error {
	if c.Root == "" {
		return fmt.Errorf("root is required")
	}
	if c.Suffix == "" {
		return fmt.Errorf("output suffix is required")
	}
	if !strings.HasPrefix(c.Suffix, ".") {
		c.Suffix = "." + c.Suffix
	}
	if c.Codec == nil {
		return fmt.Errorf("codec is required")
	}
	if c.Tracker == nil {
		return fmt.Errorf("tracker is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "convert.Driver"})
	return nil
}

// Summary counts what a run did.
type Summary struct {
	Converted int
	Renamed   int
	Failed    int
	Ignored   int
}

// Driver runs one sequential pass over a tree.
type Driver struct {
	root      string
	suffix    string
	delete    bool
	rename    bool
	opts      codec.Options
	codec     Codec
	tracker   Tracker
	heicDates []DateSource
	movDates  []DateSource
	remove    func(path string) error
	logger    log.Logger
}

// NewDriver returns a driver for cfg.
func NewDriver(cfg Config) (*Driver, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	// Subjects come from parent directory names, so "." must become a real name.
	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("could not resolve root: %w", err)
	}
	// WalkDir does not follow a symlinked root.
	root, err = filepath.EvalSymlinks(root)
	if err != nil {
		return nil, fmt.Errorf("could not resolve root: %w", err)
	}

	movDates := []DateSource{ExifDateSource}
	if cfg.Prober != nil {
		movDates = append(movDates, ProbeDateSource(cfg.Prober))
	}
	movDates = append(movDates, ModTimeSource)

	return &Driver{
		root:      root,
		suffix:    cfg.Suffix,
		delete:    cfg.DeleteOriginal,
		rename:    cfg.Rename,
		opts:      cfg.Options,
		codec:     cfg.Codec,
		tracker:   cfg.Tracker,
		heicDates: []DateSource{ExifDateSource, ModTimeSource},
		movDates:  movDates,
		remove:    os.Remove,
		logger:    cfg.Logger,
	}, nil
}

// Run walks the tree once. Failures on single files are logged and counted;
// only a root that can't be walked returns an error. The tracker completion
// is reported even then.
func (d *Driver) Run() (Summary, error) {
	var sum Summary
	defer d.tracker.Complete()

	err := filepath.WalkDir(d.root, func(path string, de fs.DirEntry, err error) error {
		if err != nil {
			if path == d.root {
				return err
			}
			d.logger.Warningf("Skipping %s: %v", path, err)
			if de != nil && de.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !de.Type().IsRegular() {
			return nil
		}

		t := &Task{Source: path, Class: Classify(path)}
		switch t.Class {
		case HEIC:
			if err := d.convertHEIC(t); err != nil {
				d.taskLogger(t).Errorf("Failed to convert %s: %v", path, err)
				sum.Failed++
				return nil
			}
			sum.Converted++
		case MOV:
			if err := d.renameMOV(t); err != nil {
				d.taskLogger(t).Errorf("Failed to rename MOV file %s: %v", path, err)
				sum.Failed++
				return nil
			}
			sum.Renamed++
		case Ignored:
			d.logger.Debugf("Ignoring %s", path)
			sum.Ignored++
		}
		return nil
	})
	if err != nil {
		return sum, fmt.Errorf("could not walk %s: %w", d.root, err)
	}

	return sum, nil
}

func (d *Driver) taskLogger(t *Task) log.Logger {
	kv := log.Kv{"class": t.Class.String()}
	if t.Output != "" {
		kv["output"] = t.Output
	}
	return d.logger.WithValues(kv)
}

func (d *Driver) convertHEIC(t *Task) error {
	src := t.Source
	d.logger.Infof("Decoding file... %s", filepath.Base(src))
	pic, err := d.codec.Decode(src)
	if err != nil {
		return err
	}
	if pic.ExifErr != nil {
		d.logger.Debugf("No usable EXIF in %s: %v", src, pic.ExifErr)
	}

	format, err := codec.FormatFromSuffix(d.suffix)
	if err != nil {
		return &codec.EncodeError{Path: src, Err: err}
	}

	t.ExifDate = pic.DateTimeOriginal
	t.ModTime = pic.ModTime
	if t.ModTime.IsZero() {
		if info, err := os.Stat(src); err == nil {
			t.ModTime = info.ModTime()
		}
	}
	dst, err := d.output(t, d.heicDates, d.suffix)
	if err != nil {
		return err
	}
	if dst == src {
		return &codec.EncodeError{Path: dst, Err: ErrSameFile}
	}

	d.logger.Debugf("Converting to %s", d.suffix)
	if err := d.codec.Encode(pic, dst, format, d.opts); err != nil {
		return err
	}
	d.logger.Infof("Save location = %s", dst)

	// Measured before removal: progress counts the source as it was.
	d.tracker.Record(src)

	if d.delete {
		if err := d.remove(src); err != nil {
			d.logger.Warningf("Could not delete original %s: %v", src, err)
		}
	}

	return nil
}

func (d *Driver) renameMOV(t *Task) error {
	src := t.Source
	info, err := os.Stat(src)
	if err != nil {
		return err
	}

	suffix := ""
	if d.rename {
		suffix = LiveSuffix
	}
	t.ModTime = info.ModTime()
	dst, err := d.output(t, d.movDates, suffix)
	if err != nil {
		return err
	}

	if dst != src {
		if err := os.Rename(src, dst); err != nil {
			return err
		}
		d.logger.Infof(".MOV renamed to %s", dst)
	} else {
		d.logger.Infof(".MOV kept at %s", dst)
	}

	// Measured at the destination after the move.
	d.tracker.Record(dst)

	return nil
}

// output fills the naming fields of t and returns a destination that does
// not clobber another file.
func (d *Driver) output(t *Task, dates []DateSource, suffix string) (string, error) {
	if d.rename {
		if err := ResolveCaptureDate(t, dates); err != nil {
			return "", fmt.Errorf("could not date %s: %w", t.Source, err)
		}
		t.Subject = Subject(t.Source)
		d.logger.Debugf("Dated %s from %s as %s", filepath.Base(t.Source), t.DateSource, t.CaptureDate.Format(dateLayout))
	}
	t.Output = uniquePath(OutputPath(t, suffix, d.rename), t.Source)
	return t.Output, nil
}
