package commons

import (
	"strconv"
	"strings"
	"time"
)

var newHelperError = NewTaggedWrapper("Helper")

// GetInt parses string into int
// s: string, comma allowed
func GetInt(s string) (int, error) {
	val, err := strconv.ParseInt(strings.ReplaceAll(strings.TrimSpace(s), ",", ""), 10, 64)
	if err != nil {
		return 0, newHelperError(err, "")
	}
	return int(val), nil
}

// GetDouble parses string into float64
// s: string, comma allowed
func GetDouble(s string) (float64, error) {
	val, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", ""), 64)
	if err != nil {
		return 0, newHelperError(err, "")
	}
	return val, nil
}

// GetTimestamp returns timestamp from string value given layout, in Asia/Seoul.
func GetTimestamp(layout, value string) (int64, error) {
	t, err := time.ParseInLocation(layout, strings.TrimSpace(value), AsiaSeoul)
	if err != nil {
		return 0, newHelperError(err, "")
	}
	return t.Unix(), nil
}

// PadCode left-pads a numeric listing code with zeros up to width.
// Returns false if s is empty, has non-digits, or is longer than width.
func PadCode(s string, width int) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > width {
		return "", false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	return strings.Repeat("0", width-len(s)) + s, true
}
