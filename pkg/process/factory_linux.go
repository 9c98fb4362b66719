//go:build linux
// +build linux

package process

// defaultLister reads /proc directly.
func defaultLister() Lister {
	return NewProcLister()
}
