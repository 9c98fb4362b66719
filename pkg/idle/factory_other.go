//go:build !linux && !darwin
// +build !linux,!darwin

package idle

// platformCandidates has nothing to offer on unsupported platforms.
func platformCandidates() []candidate {
	return nil
}
