//go:build !linux
// +build !linux

package process

// defaultLister falls back to ps(1).
func defaultLister() Lister {
	return NewPSLister()
}
