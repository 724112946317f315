package timelog

import (
	"fmt"
	"strconv"
	"strings"
)

// MalformedDurationError reports a task whose stored elapsed time is not a
// non-negative whole number of minutes.
type MalformedDurationError struct {
	Content string
	Text    string
	Err     error
}

func (e *MalformedDurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed elapsed time %q for task %q: %v", e.Text, e.Content, e.Err)
	}
	return fmt.Sprintf("malformed elapsed time %q for task %q", e.Text, e.Content)
}

func (e *MalformedDurationError) Unwrap() error {
	return e.Err
}

func parseElapsed(rec TaskRecord) (int, error) {
	minutes, err := strconv.Atoi(strings.TrimSpace(rec.ElapsedText))
	if err != nil {
		return 0, &MalformedDurationError{Content: rec.Content, Text: rec.ElapsedText, Err: err}
	}
	if minutes < 0 {
		return 0, &MalformedDurationError{Content: rec.Content, Text: rec.ElapsedText}
	}
	return minutes, nil
}
