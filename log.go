package minizip

import "log"

// Logger receives low-volume diagnostic messages from Open: producer-bug
// compensation and the number of cataloged entries. Archive never logs
// per-byte or per-entry-data events.
type Logger interface {
	Debugf(format string, args ...interface{})
	Warnf(format string, args ...interface{})
}

// noopLogger is the default when OpenOptions.Logger is nil.
type noopLogger struct{}

func (noopLogger) Debugf(string, ...interface{}) {}
func (noopLogger) Warnf(string, ...interface{})  {}

// StdLogger adapts the standard library's log package to Logger, for
// callers who want diagnostics on stderr without bringing in a structured
// logging dependency themselves.
type StdLogger struct {
	Verbose bool
}

func (l StdLogger) Debugf(format string, args ...interface{}) {
	if l.Verbose {
		log.Printf("debug: "+format, args...)
	}
}

func (l StdLogger) Warnf(format string, args ...interface{}) {
	log.Printf("warn: "+format, args...)
}
