//go:build !linux && !darwin && !freebsd && !openbsd && !netbsd
// +build !linux,!darwin,!freebsd,!openbsd,!netbsd

package main

// isatty reports false; the status line is only drawn on unix terminals.
func isatty(uintptr) bool {
	return false
}
