package progress

import (
	"github.com/dustin/go-humanize"

	"heicbatch/internal/log"
)

// LogSink writes progress notifications as log lines.
type LogSink struct {
	logger log.Logger
}

// NewLogSink returns a sink logging through logger.
func NewLogSink(logger log.Logger) LogSink {
	if logger == nil {
		logger = log.Noop
	}
	return LogSink{logger: logger}
}

// Progress logs u at info level.
func (s LogSink) Progress(u Update) {
	kv := log.Kv{
		"processed": humanize.IBytes(uint64(u.Processed)),
		"total":     humanize.IBytes(uint64(u.Total)),
	}
	if u.Path != "" {
		kv["file"] = u.Path
	}
	logger := s.logger.WithValues(kv)
	if u.Done {
		logger.Infof("Loading... 100%% complete (processing finished)")
		return
	}
	logger.Infof("Loading... %.2f%% complete", u.Percent)
}
