package statement

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// DateFormat is a user-facing date layout such as "DD/MM/YYYY".
type DateFormat string

const (
	DateISO          DateFormat = "YYYY-MM-DD"
	DateISOSlash     DateFormat = "YYYY/MM/DD"
	DateUSSlash      DateFormat = "MM/DD/YYYY"
	DateEUSlash      DateFormat = "DD/MM/YYYY"
	DateUSDash       DateFormat = "MM-DD-YYYY"
	DateEUDash       DateFormat = "DD-MM-YYYY"
	DateEUDot        DateFormat = "DD.MM.YYYY"
	DateUSSlashShort DateFormat = "MM/DD/YY"
	DateEUSlashShort DateFormat = "DD/MM/YY"
)

// dateLayout describes where year, month and day sit in a format's pattern.
// Layouts that share a pattern (month-first and day-first) form an ambiguous
// pair that detection resolves by looking at the values.
type dateLayout struct {
	format  DateFormat
	pattern *regexp.Regexp
	year    int // submatch index
	month   int
	day     int
	short   bool // two-digit year
}

var (
	isoPattern        = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})(?:[T ].*)?$`)
	isoSlashPattern   = regexp.MustCompile(`^(\d{4})/(\d{1,2})/(\d{1,2})$`)
	slashPattern      = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
	dashPattern       = regexp.MustCompile(`^(\d{1,2})-(\d{1,2})-(\d{4})$`)
	dotPattern        = regexp.MustCompile(`^(\d{1,2})\.(\d{1,2})\.(\d{4})$`)
	shortSlashPattern = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{2})$`)
)

// dateLayouts is the ordered candidate list tried during detection.
var dateLayouts = []dateLayout{
	{format: DateISO, pattern: isoPattern, year: 1, month: 2, day: 3},
	{format: DateISOSlash, pattern: isoSlashPattern, year: 1, month: 2, day: 3},
	{format: DateUSSlash, pattern: slashPattern, month: 1, day: 2, year: 3},
	{format: DateEUSlash, pattern: slashPattern, day: 1, month: 2, year: 3},
	{format: DateUSDash, pattern: dashPattern, month: 1, day: 2, year: 3},
	{format: DateEUDash, pattern: dashPattern, day: 1, month: 2, year: 3},
	{format: DateEUDot, pattern: dotPattern, day: 1, month: 2, year: 3},
	{format: DateUSSlashShort, pattern: shortSlashPattern, month: 1, day: 2, year: 3, short: true},
	{format: DateEUSlashShort, pattern: shortSlashPattern, day: 1, month: 2, year: 3, short: true},
}

// DateFormats lists the supported formats in detection order.
func DateFormats() []DateFormat {
	out := make([]DateFormat, len(dateLayouts))
	for i, l := range dateLayouts {
		out[i] = l.format
	}

	return out
}

func lookupDateFormat(f DateFormat) (dateLayout, bool) {
	for _, l := range dateLayouts {
		if l.format == f {
			return l, true
		}
	}

	return dateLayout{}, false
}

// DetectDateFormat returns the first candidate format whose pattern matches
// every non-empty sample. Month-first and day-first layouts are told apart by
// a field value above 12; when no sample disambiguates, month-first wins.
// The second return value is false when no format fits.
func DetectDateFormat(samples []string) (DateFormat, bool) {
	var values []string

	for _, s := range samples {
		if s = strings.TrimSpace(s); s != "" {
			values = append(values, s)
		}
	}

	if len(values) == 0 {
		return "", false
	}

	for i, l := range dateLayouts {
		if !matchesAll(l.pattern, values) {
			continue
		}

		// The day-first twin of a month-first layout follows it directly.
		if i+1 < len(dateLayouts) && dateLayouts[i+1].pattern == l.pattern {
			return disambiguate(l, dateLayouts[i+1], values), true
		}

		return l.format, true
	}

	return "", false
}

// fitDateFormat is DetectDateFormat for real statement columns, where a
// footer or a stray value should not hide the format of the other rows. When
// no format fits every sample, detection runs over the samples matching the
// pattern that fits the most of them.
func fitDateFormat(samples []string) (DateFormat, bool) {
	if f, ok := DetectDateFormat(samples); ok {
		return f, true
	}

	var best []string

	for i, l := range dateLayouts {
		if i > 0 && dateLayouts[i-1].pattern == l.pattern {
			continue
		}

		var matched []string
		for _, s := range samples {
			if s = strings.TrimSpace(s); l.pattern.MatchString(s) {
				matched = append(matched, s)
			}
		}

		if len(matched) > len(best) {
			best = matched
		}
	}

	if len(best) == 0 {
		return "", false
	}

	return DetectDateFormat(best)
}

func matchesAll(p *regexp.Regexp, values []string) bool {
	for _, v := range values {
		if !p.MatchString(v) {
			return false
		}
	}

	return true
}

// disambiguate picks between a month-first and a day-first layout.
func disambiguate(monthFirst, dayFirst dateLayout, values []string) DateFormat {
	for _, v := range values {
		m := monthFirst.pattern.FindStringSubmatch(v)
		if n, _ := strconv.Atoi(m[dayFirst.day]); n > 12 {
			return dayFirst.format
		}

		if n, _ := strconv.Atoi(m[monthFirst.day]); n > 12 {
			return monthFirst.format
		}
	}

	return monthFirst.format
}

// ParseDate parses s in the given format and returns the canonical
// YYYY-MM-DD form. Month must be 1-12, day 1-31 and year within
// [1900, 2100); the day is not checked against the month's length.
func ParseDate(s string, format DateFormat) (string, bool) {
	l, ok := lookupDateFormat(format)
	if !ok {
		return "", false
	}

	m := l.pattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return "", false
	}

	year, err := strconv.Atoi(m[l.year])
	if err != nil {
		return "", false
	}

	month, err := strconv.Atoi(m[l.month])
	if err != nil {
		return "", false
	}

	day, err := strconv.Atoi(m[l.day])
	if err != nil {
		return "", false
	}

	if l.short {
		year = expandYear(year)
	}

	if month < 1 || month > 12 || day < 1 || day > 31 || year < 1900 || year >= 2100 {
		return "", false
	}

	return fmt.Sprintf("%04d-%02d-%02d", year, month, day), true
}

// expandYear maps a two-digit year onto 1970-2069.
func expandYear(yy int) int {
	if yy < 70 {
		return 2000 + yy
	}

	return 1900 + yy
}
