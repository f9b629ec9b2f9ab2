package collector

import (
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// StrictLayout is tried first for every timestamp.
const StrictLayout = "2006-01-02 15:04:05"

var fallbackLayouts = []string{
	"2006.01.02 15:04:05",
	"2006.01.02 15:04",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	time.RFC3339Nano,
}

// ParseTimestamp parses s with the strict layout, a few common export layouts and
// finally a generic parser. Values without zone information are taken as UTC.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.ParseInLocation(StrictLayout, s, time.UTC); err == nil {
		return t, nil
	}
	for _, layout := range fallbackLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w %q: %v", ErrTimestamp, s, err)
	}
	return t, nil
}
