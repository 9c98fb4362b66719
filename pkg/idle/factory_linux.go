//go:build linux
// +build linux

package idle

// platformCandidates lists Linux idle sources in preference order.
func platformCandidates() []candidate {
	return []candidate{
		{name: KindXprintidle, sensor: NewXprintidleSensor()},
		{name: KindMutter, sensor: NewMutterSensor()},
		{name: KindTmux, sensor: NewTmuxSensor("")},
	}
}
