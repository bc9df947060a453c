package availability

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var months = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March, "apr": time.April,
	"may": time.May, "jun": time.June, "jul": time.July, "aug": time.August,
	"sep": time.September, "oct": time.October, "nov": time.November, "dec": time.December,
}

const monthNames = `(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*`

var (
	numericLongYear  = regexp.MustCompile(`\b(\d{1,2})[/\-.](\d{1,2})[/\-.](\d{4})\b`)
	numericShortYear = regexp.MustCompile(`\b(\d{1,2})[/\-.](\d{1,2})[/\-.](\d{2})\b`)
	ordinalMonth     = regexp.MustCompile(`\b(\d{1,2})\s*(?:st|nd|rd|th)\s*` + monthNames + `\s*(\d{4})?\b`)
	plainMonth       = regexp.MustCompile(`\b(\d{1,2})\s*` + monthNames + `\s*(\d{4})?\b`)
)

// ParseDate extracts a calendar date from free-form text. Day comes before
// month in numeric forms (14/02/2026, 14-02-26, 14.02.2026); named months
// accept "14 feb", "14th February 2026" and similar. A missing year means the
// year of now. Impossible dates such as 31/02 are rejected.
func ParseDate(text string, now time.Time) (time.Time, bool) {
	t := strings.ToLower(strings.TrimSpace(text))

	if m := numericLongYear.FindStringSubmatch(t); m != nil {
		if d, ok := civilDate(atoi(m[3]), time.Month(atoi(m[2])), atoi(m[1])); ok {
			return d, true
		}
	}
	if m := numericShortYear.FindStringSubmatch(t); m != nil {
		if d, ok := civilDate(2000+atoi(m[3]), time.Month(atoi(m[2])), atoi(m[1])); ok {
			return d, true
		}
	}
	for _, re := range []*regexp.Regexp{ordinalMonth, plainMonth} {
		m := re.FindStringSubmatch(t)
		if m == nil {
			continue
		}
		year := now.Year()
		if m[3] != "" {
			year = atoi(m[3])
		}
		if d, ok := civilDate(year, months[m[2]], atoi(m[1])); ok {
			return d, true
		}
	}
	return time.Time{}, false
}

func civilDate(year int, month time.Month, day int) (time.Time, bool) {
	if month < time.January || month > time.December || day < 1 {
		return time.Time{}, false
	}
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if d.Year() != year || d.Month() != month || d.Day() != day {
		return time.Time{}, false
	}
	return d, true
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
