// Package schedule turns the free-text start time a creator types into a
// Schedule value: the "now" sentinel, a parsed timestamp with a display
// string, or the raw text kept verbatim when it cannot be parsed.
package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/groupforge/keystone/internal/models"
)

// NowSentinel is the literal users type to start immediately
const NowSentinel = "now"

// NowDisplay is the display string for immediate starts
const NowDisplay = "Now"

// clockLayouts are the bare clock-time spellings accepted without a date
var clockLayouts = []string{"15:04", "3:04pm", "3:04 pm", "3pm", "3 pm"}

// Parse interprets raw schedule text relative to the reference time.
// Bare clock times ("19:30", "8pm") resolve against the reference day,
// rolling to the next day when already past; a "today"/"tomorrow" prefix
// pins the day explicitly. Text that is neither the sentinel nor a
// parsable timestamp is kept verbatim as a display-only value with no
// backing timestamp.
func Parse(raw string, now time.Time, loc *time.Location) models.Schedule {
	trimmed := strings.TrimSpace(raw)

	if strings.EqualFold(trimmed, NowSentinel) {
		return models.Schedule{Now: true, Display: NowDisplay}
	}

	if loc == nil {
		loc = time.UTC
	}

	if at, ok := parseRelative(trimmed, now, loc); ok {
		return models.Schedule{At: &at, Display: Format(at, now)}
	}

	at, err := dateparse.ParseIn(trimmed, loc)
	if err != nil {
		return models.Schedule{Display: trimmed}
	}

	return models.Schedule{At: &at, Display: Format(at, now)}
}

// parseRelative handles the dateless spellings the full parser cannot:
// a bare clock time, optionally prefixed with "today" or "tomorrow"
func parseRelative(raw string, now time.Time, loc *time.Location) (time.Time, bool) {
	lower := strings.ToLower(raw)

	dayOffset := 0
	pinned := false
	switch {
	case strings.HasPrefix(lower, "tomorrow"):
		dayOffset = 1
		pinned = true
		lower = strings.TrimSpace(strings.TrimPrefix(lower, "tomorrow"))
	case strings.HasPrefix(lower, "today"):
		pinned = true
		lower = strings.TrimSpace(strings.TrimPrefix(lower, "today"))
	}

	hour, minute, ok := parseClock(lower)
	if !ok {
		return time.Time{}, false
	}

	base := now.In(loc)
	at := time.Date(base.Year(), base.Month(), base.Day(), hour, minute, 0, 0, loc).AddDate(0, 0, dayOffset)

	// An unpinned clock time already behind us means the next day
	if !pinned && at.Before(now) {
		at = at.AddDate(0, 0, 1)
	}

	return at, true
}

// parseClock reads a bare clock time in one of the accepted layouts
func parseClock(raw string) (hour, minute int, ok bool) {
	for _, layout := range clockLayouts {
		t, err := time.Parse(layout, raw)
		if err == nil {
			return t.Hour(), t.Minute(), true
		}
	}
	return 0, 0, false
}

// Format renders a start time as "Today at HH:MM" when it falls on the
// reference day, otherwise with the full date.
func Format(at time.Time, now time.Time) string {
	ny, nm, nd := now.In(at.Location()).Date()
	ay, am, ad := at.Date()

	if ny == ay && nm == am && nd == ad {
		return fmt.Sprintf("Today at %s", at.Format("15:04"))
	}
	return at.Format("Mon Jan 2 at 15:04")
}
