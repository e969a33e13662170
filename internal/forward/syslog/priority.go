package syslog

// DefaultFacility is used for channels with no entry in the facility
// map. 16 is local0.
const DefaultFacility = 16

// Priority computes the syslog PRI value for a channel and numeric
// level: facility*8 + severity, with the level clamped into the
// severity range 0..7.
func Priority(facilityMap map[string]int, channel string, level int) int {
	facility, ok := facilityMap[channel]
	if !ok {
		facility = DefaultFacility
	}
	return facility*8 + clampSeverity(level)
}

func clampSeverity(level int) int {
	if level < 0 {
		return 0
	}
	if level > 7 {
		return 7
	}
	return level
}
