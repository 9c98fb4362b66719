//go:build darwin || freebsd || openbsd || netbsd
// +build darwin freebsd openbsd netbsd

package main

import "golang.org/x/sys/unix"

// isatty returns true if the given file descriptor is a terminal
func isatty(fd uintptr) bool {
	_, err := unix.IoctlGetTermios(int(fd), unix.TIOCGETA)
	return err == nil
}
