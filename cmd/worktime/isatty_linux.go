//go:build linux
// +build linux

package main

import "golang.org/x/sys/unix"

// isatty returns true if the given file descriptor is a terminal
func isatty(fd uintptr) bool {
	_, err := unix.IoctlGetTermios(int(fd), unix.TCGETS)
	return err == nil
}
