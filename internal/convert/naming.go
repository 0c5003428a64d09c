package convert

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	// exifDateLayout is the layout of EXIF DateTime fields.
	exifDateLayout = "2006:01:02 15:04:05"
	// dateLayout is the date part of renamed outputs.
	dateLayout = "2006-01-02"
	// LiveSuffix is appended to renamed live photo clips.
	LiveSuffix = "_live.mov"
)

// ErrNoCaptureDate is returned when no date source yields a date.
var ErrNoCaptureDate = errors.New("no capture date")

// Task is the work derived for one file.
type Task struct {
	Source string
	Class  Class
	// ExifDate is the raw DateTimeOriginal field, empty if the file has none.
	ExifDate string
	ModTime  time.Time
	// CaptureDate and DateSource are set by ResolveCaptureDate.
	CaptureDate time.Time
	DateSource  string
	Subject     string
	Output      string
}

// DateSource is one strategy to find when a file was captured.
type DateSource struct {
	Name   string
	Lookup func(t *Task) (time.Time, error)
}

// ExifDateSource reads the embedded DateTimeOriginal field.
var ExifDateSource = DateSource{
	Name: "exif",
	Lookup: func(t *Task) (time.Time, error) {
		return ParseExifDate(t.ExifDate)
	},
}

// ModTimeSource uses the filesystem modification time.
var ModTimeSource = DateSource{
	Name: "mtime",
	Lookup: func(t *Task) (time.Time, error) {
		if t.ModTime.IsZero() {
			return time.Time{}, fmt.Errorf("modification time unknown")
		}
		return t.ModTime, nil
	},
}

// Prober reads the recording time of a video container.
type Prober interface {
	CreationTime(path string) (time.Time, error)
}

// ProbeDateSource asks p for the container creation time of the source.
func ProbeDateSource(p Prober) DateSource {
	return DateSource{
		Name: "probe",
		Lookup: func(t *Task) (time.Time, error) {
			return p.CreationTime(t.Source)
		},
	}
}

// ParseExifDate parses a "YYYY:MM:DD HH:MM:SS" field.
func ParseExifDate(s string) (time.Time, error) {
	s = strings.TrimRight(s, "\x00 ")
	if s == "" {
		return time.Time{}, fmt.Errorf("empty EXIF date")
	}
	return time.ParseInLocation(exifDateLayout, s, time.Local)
}

// ResolveCaptureDate tries sources in order and keeps the first date found.
func ResolveCaptureDate(t *Task, sources []DateSource) error {
	for _, src := range sources {
		d, err := src.Lookup(t)
		if err != nil {
			continue
		}
		t.CaptureDate = d
		t.DateSource = src.Name
		return nil
	}
	return ErrNoCaptureDate
}

// Subject returns the parent directory name of path with spaces and hyphens
// turned into underscores.
func Subject(path string) string {
	name := filepath.Base(filepath.Dir(path))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(name)
}

// OutputPath derives where the task output goes. With rename on it is
// "{date};{subject}{suffix}" next to the source, otherwise the source path
// with its extension swapped for suffix. An empty suffix keeps the source
// extension.
func OutputPath(t *Task, suffix string, rename bool) string {
	if !rename {
		if suffix == "" {
			return t.Source
		}
		return strings.TrimSuffix(t.Source, filepath.Ext(t.Source)) + suffix
	}
	name := fmt.Sprintf("%s;%s%s", t.CaptureDate.Format(dateLayout), t.Subject, suffix)
	return filepath.Join(filepath.Dir(t.Source), name)
}

// uniquePath returns path, or path with a "_N" counter before its extension
// when something other than source already lives there.
func uniquePath(path, source string) string {
	if path == source || !exists(path) {
		return path
	}

	ext := filepath.Ext(path)
	// Keep "_live.mov" together so the counter lands before it.
	if strings.HasSuffix(strings.ToLower(path), LiveSuffix) {
		ext = path[len(path)-len(LiveSuffix):]
	}
	base := strings.TrimSuffix(path, ext)
	for i := 2; ; i++ {
		p := fmt.Sprintf("%s_%d%s", base, i, ext)
		if p == source || !exists(p) {
			return p
		}
	}
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}
