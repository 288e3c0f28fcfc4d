package task

import (
	"fmt"
	"strings"
	"time"
)

// DeadlineLayout is the accepted input format, e.g. "24-03-2025 23:59".
const DeadlineLayout = "02-01-2006 15:04"

var ErrDeadlineFormat = fmt.Errorf("deadline must match DD-MM-YYYY HH:MM")

// ParseDeadline parses user input in loc.
func ParseDeadline(input string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DeadlineLayout, strings.TrimSpace(input), loc)
	if err != nil {
		return time.Time{}, ErrDeadlineFormat
	}
	return t, nil
}

// ISOWeekday returns 1 for Monday through 7 for Sunday.
func ISOWeekday(t time.Time) int64 {
	wd := int64(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// FormatDeadline renders t in loc using the input layout.
func FormatDeadline(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DeadlineLayout)
}
