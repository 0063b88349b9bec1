package normalize

import (
	"strings"
	"time"
)

// DateFormats is the ordered list of layouts tried when parsing source dates.
// Day-first layouts come first because that is what the source systems emit.
var DateFormats = []string{
	"02/01/2006",
	"02/01/2006 15:04",
	"02/01/2006 15:04:05",
	"2006-01-02",
	"2006-01-02 15:04:05",
	"02-01-2006",
}

// Date attempts each known layout in order and returns nil if none applies.
// Best-effort parse, not a validator: malformed input degrades to unknown,
// it never errors.
func Date(raw string) *time.Time {
	s := strings.TrimSpace(CleanText(raw))
	if s == "" {
		return nil
	}
	for _, layout := range DateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// Year extracts the year of a parsed date, nil-safe.
func Year(t *time.Time) *int {
	if t == nil {
		return nil
	}
	y := t.Year()
	return &y
}

// Age computes completed years between birth and a reference date. Returns
// nil when birth is missing or the result would be negative.
func Age(birth *time.Time, reference time.Time) *int {
	if birth == nil {
		return nil
	}
	years := reference.Year() - birth.Year()
	if reference.Month() < birth.Month() ||
		(reference.Month() == birth.Month() && reference.Day() < birth.Day()) {
		years--
	}
	if years < 0 {
		return nil
	}
	return &years
}

// PlausibleBirthDate rejects birth dates in the future, older than 120 years,
// or after the event they supposedly precede.
func PlausibleBirthDate(birth *time.Time, event *time.Time, now time.Time) bool {
	if birth == nil {
		return false
	}
	if birth.After(now) {
		return false
	}
	if age := Age(birth, now); age != nil && *age > 120 {
		return false
	}
	if event != nil && birth.After(*event) {
		return false
	}
	return true
}
