//go:build linux

package reactor

import "fmt"

// LogFunc is the logging-sink collaborator threaded down from the
// embedding Listener into every Reactor and Conn it owns. nil is a valid
// value and means "discard".
type LogFunc func(level string, msg string)

func (f LogFunc) logf(level, format string, args ...any) {
	if f == nil {
		return
	}
	f(level, fmt.Sprintf(format, args...))
}
