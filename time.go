package jwtcodec

import (
	"strconv"
	"time"
)

// TimestampLayout is the format of FormatUnix after the year.
const TimestampLayout = "-01-02 15:04:05 (UTC)"

// Supported year range of FormatUnix.
const (
	MinTimestampYear = -262143
	MaxTimestampYear = 262142
)

var (
	minTimestamp = time.Date(MinTimestampYear, time.January, 1, 0, 0, 0, 0, time.UTC).Unix()
	maxTimestamp = time.Date(MaxTimestampYear, time.December, 31, 23, 59, 59, 0, time.UTC).Unix()
)

// FilterUnixInput keeps ASCII digits and a '-' in the first position, dropping
// everything else.
func FilterUnixInput(s string) string {
	out := make([]byte, 0, len(s))
	first := true
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			out = append(out, byte(r))
		case r == '-' && first:
			out = append(out, '-')
		}
		first = false
	}
	return string(out)
}

// FormatUnix renders sec seconds since the Unix epoch as
// "YYYY-MM-DD hh:mm:ss (UTC)". Years outside 0000-9999 carry an explicit
// sign. It returns false when the instant is out of range.
func FormatUnix(sec int64) (string, bool) {
	if sec < minTimestamp || sec > maxTimestamp {
		return "", false
	}
	t := time.Unix(sec, 0).UTC()
	return formatYear(t.Year()) + t.Format(TimestampLayout), true
}

func formatYear(year int) string {
	var dst []byte
	switch {
	case year > 9999:
		dst = append(dst, '+')
	case year < 0:
		dst = append(dst, '-')
		year = -year
	}
	digits := strconv.Itoa(year)
	for i := len(digits); i < 4; i++ {
		dst = append(dst, '0')
	}
	return string(append(dst, digits...))
}

// ConvertUnixInput filters raw user input and formats it. It returns the
// filtered text and the formatted timestamp, which is "" when the filtered
// text is empty, does not fit in an int64 or is out of range.
func ConvertUnixInput(raw string) (filtered, formatted string) {
	filtered = FilterUnixInput(raw)
	if filtered == "" {
		return "", ""
	}
	sec, err := strconv.ParseInt(filtered, 10, 64)
	if err != nil {
		return filtered, ""
	}
	formatted, _ = FormatUnix(sec)
	return filtered, formatted
}
