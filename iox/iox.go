// Package iox holds cleanup helpers for writers, sinks and loggers whose
// close or flush errors cannot change the outcome of a command.
package iox

import "io"

// DiscardClose closes c and drops the error.
//
//	defer iox.DiscardClose(sink)
func DiscardClose(c io.Closer) { _ = c.Close() }

// CloseFunc returns a func that closes c, for t.Cleanup registration.
//
//	t.Cleanup(iox.CloseFunc(client))
func CloseFunc(c io.Closer) func() {
	return func() { _ = c.Close() }
}

// DiscardErr calls fn and drops its error.
//
//	defer iox.DiscardErr(logger.Sync)
func DiscardErr(fn func() error) { _ = fn() }
