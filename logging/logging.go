// Package logging defines the optional logger accepted by the gaugeboot
// packages and an adapter onto glog.
//
// Libraries never log on their own: a Logger is supplied through a
// WithLogger option, and a nil Logger means silence.
//
// Example with glog:
//
//	rx := xmodem.NewReceiver(buf, link, xmodem.WithLogger(logging.Glog()))
package logging

import (
	"fmt"
	"strings"

	"github.com/golang/glog"
)

// Logger is an optional logging interface that can be provided to the
// receiver, the loader and the uploader. This allows integration with any
// logging framework.
type Logger interface {
	// Debug logs a debug message with optional key-value pairs
	Debug(msg string, keysAndValues ...interface{})

	// Info logs an info message with optional key-value pairs
	Info(msg string, keysAndValues ...interface{})

	// Error logs an error message with optional key-value pairs
	Error(msg string, keysAndValues ...interface{})
}

type nop struct{}

func (nop) Debug(string, ...interface{}) {}
func (nop) Info(string, ...interface{})  {}
func (nop) Error(string, ...interface{}) {}

// Nop returns a Logger that discards everything.
func Nop() Logger { return nop{} }

// glogLogger maps Debug onto verbosity level 1.
type glogLogger struct {
	depth int
}

// Glog returns a Logger writing through github.com/golang/glog. Debug
// messages are emitted only with -v=1 or higher.
func Glog() Logger { return glogLogger{depth: 1} }

func (l glogLogger) Debug(msg string, kv ...interface{}) {
	if glog.V(1) {
		glog.InfoDepth(l.depth, Format(msg, kv...))
	}
}

func (l glogLogger) Info(msg string, kv ...interface{}) {
	glog.InfoDepth(l.depth, Format(msg, kv...))
}

func (l glogLogger) Error(msg string, kv ...interface{}) {
	glog.ErrorDepth(l.depth, Format(msg, kv...))
}

// Format renders msg followed by key=value pairs. A trailing key without a
// value is printed as key=<missing>.
func Format(msg string, kv ...interface{}) string {
	if len(kv) == 0 {
		return msg
	}
	var b strings.Builder
	b.WriteString(msg)
	for i := 0; i < len(kv); i += 2 {
		b.WriteByte(' ')
		if i+1 < len(kv) {
			fmt.Fprintf(&b, "%v=%v", kv[i], kv[i+1])
		} else {
			fmt.Fprintf(&b, "%v=<missing>", kv[i])
		}
	}
	return b.String()
}
