// Package xlog is the narrow logging seam the decoder and CLI call into.
// Nothing in this tree swaps loggers at runtime (there is a single process,
// a single stderr stream, and no test doubles for it), so there is no
// interface to implement and no default to override: std is the only sink,
// and Warnf/Fatalf are the only two levels a firmware-volume decode and a
// one-shot CLI run ever need (a non-fatal diagnostic, and the final error
// that ends the process).
package xlog

import (
	"log"
	"os"
)

var std = log.New(os.Stderr, "", log.LstdFlags)

// tag prefixes format with a bracketed level marker, so Warnf and Fatalf
// can't drift out of sync on how they render it.
func tag(level, format string) string {
	return "[xblfv][" + level + "] " + format
}

// Warnf logs a non-fatal diagnostic, such as a truncated volume tail that
// the decoder tolerates rather than rejects.
func Warnf(format string, args ...interface{}) {
	std.Printf(tag("WARN", format), args...)
}

// Fatalf logs the given message and exits the process. Only cmd/xblfv's
// main calls this; library code always returns an error instead.
func Fatalf(format string, args ...interface{}) {
	std.Fatalf(tag("FATAL", format), args...)
}
