package main

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"

	"heicbatch/internal/codec"
	"heicbatch/internal/convert"
	"heicbatch/internal/log"
	loglogrus "heicbatch/internal/log/logrus"
	"heicbatch/internal/progress"
)

const (
	// Version is the application version (set via ldflags).
	Version = "dev"

	loggerTypeDefault = "default"
	loggerTypeJSON    = "json"

	usage = "usage: heicbatch <root_dir> <.JPEG/.PNG> <0/1: delete original?> <0/1: rename?>"
)

type config struct {
	Root   string
	Suffix string
	Delete string
	Rename string

	Quality    int
	MaxWidth   int
	ProbeVideo bool

	Debug      bool
	NoLog      bool
	NoColor    bool
	LoggerType string
}

// Run runs the main application.
func Run(args []string, stdout, stderr io.Writer) error {
	app := kingpin.New("heicbatch", "Convert HEIC photos and rename their live photo clips.")
	app.DefaultEnvars()
	app.UsageWriter(stdout)
	app.ErrorWriter(stderr)

	c := config{}
	app.Arg("root", "Root directory to convert.").Required().StringVar(&c.Root)
	app.Arg("suffix", "Output image suffix, e.g. .JPEG or .PNG.").Required().StringVar(&c.Suffix)
	app.Arg("delete", "Delete originals after conversion (0/1).").Required().EnumVar(&c.Delete, "0", "1")
	app.Arg("rename", "Rename outputs as {date};{subject} (0/1).").Required().EnumVar(&c.Rename, "0", "1")

	app.Flag("quality", "JPEG output quality.").Default("95").IntVar(&c.Quality)
	app.Flag("max-width", "Downscale images wider than this, 0 keeps the size.").Default("0").IntVar(&c.MaxWidth)
	app.Flag("probe-video", "Read MOV capture dates with ffprobe before using the modification time.").BoolVar(&c.ProbeVideo)
	app.Flag("debug", "Enable debug mode.").BoolVar(&c.Debug)
	app.Flag("no-log", "Disable logger.").BoolVar(&c.NoLog)
	app.Flag("no-color", "Disable logger color.").BoolVar(&c.NoColor)
	app.Flag("logger", "Selects the logger type.").Default(loggerTypeDefault).EnumVar(&c.LoggerType, loggerTypeDefault, loggerTypeJSON)

	if _, err := app.Parse(args[1:]); err != nil {
		fmt.Fprintln(stderr, usage)
		return fmt.Errorf("invalid arguments: %w", err)
	}

	logger := getLogger(c, stderr)
	if !codec.HEICSupported() {
		logger.Warningf("Built without HEIC support, HEIC files will fail to decode")
	}

	tracker, err := progress.NewTracker(progress.TrackerConfig{Root: c.Root, Logger: logger})
	if err != nil {
		return fmt.Errorf("could not initialize progress: %w", err)
	}

	cfg := convert.Config{
		Root:           c.Root,
		Suffix:         c.Suffix,
		DeleteOriginal: c.Delete == "1",
		Rename:         c.Rename == "1",
		Options:        codec.Options{Quality: c.Quality, Optimize: true, MaxWidth: c.MaxWidth},
		Codec:          codec.New(),
		Tracker:        tracker,
		Logger:         logger,
	}
	if c.ProbeVideo {
		cfg.Prober = codec.NewVideoProber()
	}
	driver, err := convert.NewDriver(cfg)
	if err != nil {
		return fmt.Errorf("could not create driver: %w", err)
	}

	sum, err := driver.Run()
	if err != nil {
		return err
	}

	logger.WithValues(log.Kv{
		"converted": sum.Converted,
		"renamed":   sum.Renamed,
		"failed":    sum.Failed,
		"ignored":   sum.Ignored,
	}).Infof("Processed %s of %s", humanize.IBytes(uint64(tracker.Processed())), humanize.IBytes(uint64(tracker.Total())))

	return nil
}

// getLogger returns the application logger.
func getLogger(c config, out io.Writer) log.Logger {
	if c.NoLog {
		return log.Noop
	}

	logrusLog := logrus.New()
	logrusLog.Out = out
	logrusLogEntry := logrus.NewEntry(logrusLog)

	if c.Debug {
		logrusLogEntry.Logger.SetLevel(logrus.DebugLevel)
	}

	switch c.LoggerType {
	case loggerTypeJSON:
		logrusLogEntry.Logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		color := !c.NoColor && isTerminal(out)
		logrusLogEntry.Logger.SetFormatter(&logrus.TextFormatter{
			ForceColors:   color,
			DisableColors: !color,
		})
	}

	logger := loglogrus.NewLogrus(logrusLogEntry).WithValues(log.Kv{
		"version": Version,
	})
	logger.Debugf("Debug level is enabled")

	return logger
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func main() {
	if err := Run(os.Args, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
