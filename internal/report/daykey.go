package report

import (
	"regexp"
	"strings"
	"time"
)

const dayKeyLayout = "2006-01-02"

var dayKeyPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// resolveDayKey buckets a record into a local calendar day. The record's own
// local date wins when it is present and well-formed; otherwise the timestamp
// is shifted into loc (UTC when loc is nil). A zero timestamp with no usable
// local date yields "" and the caller skips the record for day bucketing.
func resolveDayKey(ts time.Time, localDate string, loc *time.Location) string {
	trimmed := strings.TrimSpace(localDate)
	if dayKeyPattern.MatchString(trimmed) {
		return trimmed
	}
	if ts.IsZero() {
		return ""
	}
	if loc == nil {
		loc = time.UTC
	}
	return ts.In(loc).Format(dayKeyLayout)
}

// localHour returns the hour-of-day for meal-timing rules, in loc.
func localHour(ts time.Time, loc *time.Location) int {
	if loc == nil {
		loc = time.UTC
	}
	return ts.In(loc).Hour()
}

// loadLocation resolves an IANA zone name, falling back to UTC on any error
// so day bucketing never fails outright.
func loadLocation(name string) *time.Location {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(trimmed)
	if err != nil {
		return time.UTC
	}
	return loc
}
