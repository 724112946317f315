package timelog

import (
	"fmt"
	"strings"
)

// DurationFormatter renders a number of minutes for humans.
type DurationFormatter interface {
	ToReadable(minutes int) string
}

// FormatterFunc adapts a plain function to DurationFormatter.
type FormatterFunc func(minutes int) string

func (f FormatterFunc) ToReadable(minutes int) string {
	return f(minutes)
}

// Readable is the default formatter: "45m", "2h 05m", "1d 1h".
var Readable DurationFormatter = FormatterFunc(readable)

const (
	minutesPerHour = 60
	minutesPerDay  = 24 * minutesPerHour
)

func readable(minutes int) string {
	if minutes < 0 {
		return "-" + readable(-minutes)
	}
	if minutes == 0 {
		return "0m"
	}

	days := minutes / minutesPerDay
	hours := minutes % minutesPerDay / minutesPerHour
	mins := minutes % minutesPerHour

	var parts []string
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if mins > 0 {
		if len(parts) == 0 {
			parts = append(parts, fmt.Sprintf("%dm", mins))
		} else {
			parts = append(parts, fmt.Sprintf("%02dm", mins))
		}
	}
	return strings.Join(parts, " ")
}
