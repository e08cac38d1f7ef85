package logging

import "strings"

// FormatSubject builds the channel/stage subject shown in console output.
func FormatSubject(channel, stage string) string {
	channel = strings.TrimSpace(channel)
	stage = strings.TrimSpace(stage)
	switch {
	case channel != "" && stage != "":
		return channel + " · " + stage
	case channel != "":
		return channel
	default:
		return stage
	}
}
