// Package log holds the logger used across heicbatch.
//
// Components receive a [Logger] through their config and default to [Noop]
// when none is set.
package log

// Kv is a set of structured key-value pairs attached to a logger.
type Kv map[string]any

// Logger is the logging interface used by every component.
type Logger interface {
	Infof(format string, args ...any)
	Warningf(format string, args ...any)
	Errorf(format string, args ...any)
	Debugf(format string, args ...any)
	WithValues(values Kv) Logger
}

// Noop is a logger that discards everything.
var Noop Logger = noop(0)

type noop int

func (noop) Infof(format string, args ...any)    {}
func (noop) Warningf(format string, args ...any) {}
func (noop) Errorf(format string, args ...any)   {}
func (noop) Debugf(format string, args ...any)   {}
func (n noop) WithValues(_ Kv) Logger            { return n }
