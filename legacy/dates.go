package legacy

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// monthNames maps German and English month names and their common short
// forms to month numbers.
var monthNames = map[string]time.Month{
	"januar": time.January, "january": time.January, "jan": time.January, "jänner": time.January,
	"februar": time.February, "february": time.February, "feb": time.February,
	"märz": time.March, "maerz": time.March, "march": time.March, "mär": time.March, "mar": time.March,
	"april": time.April, "apr": time.April,
	"mai": time.May, "may": time.May,
	"juni": time.June, "june": time.June, "jun": time.June,
	"juli": time.July, "july": time.July, "jul": time.July,
	"august": time.August, "aug": time.August,
	"september": time.September, "sept": time.September, "sep": time.September,
	"oktober": time.October, "october": time.October, "okt": time.October, "oct": time.October,
	"november": time.November, "nov": time.November,
	"dezember": time.December, "december": time.December, "dez": time.December, "dec": time.December,
}

var (
	reNumericDate = regexp.MustCompile(`\b(\d{1,2})\.(\d{1,2})\.(\d{4})\b`)
	reEnglishDate = regexp.MustCompile(`(?i)\b([a-zä]+)\.?\s+(\d{1,2}),?\s+(\d{4})\b`)
	reNamedDate   = regexp.MustCompile(`(?i)\b(\d{1,2})\.?\s+([a-zä]+)\.?\s+(\d{4})\b`)
)

// genericLayouts are tried after the named formats.
var genericLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"02/01/2006",
	time.RFC1123Z,
	time.RFC1123,
}

// ParseDate normalizes a raw date string to a calendar date (UTC midnight).
// Formats are tried in order: DD.MM.YYYY, "Month DD, YYYY", "DD. Month
// YYYY", then generic layouts. Anything unparsable yields the date of now.
func ParseDate(raw string, now time.Time) time.Time {
	s := strings.Join(strings.Fields(raw), " ")

	if m := reNumericDate.FindStringSubmatch(s); m != nil {
		if t, ok := makeDate(m[3], m[2], m[1]); ok {
			return t
		}
	}
	if m := reEnglishDate.FindStringSubmatch(s); m != nil {
		if month, ok := monthNames[strings.ToLower(m[1])]; ok {
			if t, ok := makeDate(m[3], strconv.Itoa(int(month)), m[2]); ok {
				return t
			}
		}
	}
	if m := reNamedDate.FindStringSubmatch(s); m != nil {
		if month, ok := monthNames[strings.ToLower(m[2])]; ok {
			if t, ok := makeDate(m[3], strconv.Itoa(int(month)), m[1]); ok {
				return t
			}
		}
	}
	for _, layout := range genericLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		}
	}
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// makeDate builds a date and rejects values time.Date would normalize,
// such as 31.02.
func makeDate(year, month, day string) (time.Time, bool) {
	y, err1 := strconv.Atoi(year)
	m, err2 := strconv.Atoi(month)
	d, err3 := strconv.Atoi(day)
	if err1 != nil || err2 != nil || err3 != nil {
		return time.Time{}, false
	}
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	if t.Year() != y || int(t.Month()) != m || t.Day() != d {
		return time.Time{}, false
	}
	return t, true
}
