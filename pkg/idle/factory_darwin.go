//go:build darwin
// +build darwin

package idle

// platformCandidates lists macOS idle sources.
func platformCandidates() []candidate {
	return []candidate{
		{name: KindIoreg, sensor: NewIoregSensor()},
	}
}
