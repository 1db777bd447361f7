// Package index turns raw remote listings into the categorized,
// sorted collections the site renders: newsletters, meeting recordings,
// member resources, and committee files. The structured metadata comes
// from human-authored filenames and descriptions, so everything here is
// heuristic: an ordered cascade of parsers with explicit fallbacks, and
// a hard rule that one malformed file never aborts a listing.
package index

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ParsedDate is a year/month extracted from a filename.
type ParsedDate struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// Label renders the date as "January 2026" for display. A zero date
// renders as the empty string.
func (d ParsedDate) Label() string {
	if d.Year == 0 {
		return ""
	}

	if d.Month < 1 || d.Month > 12 {
		return strconv.Itoa(d.Year)
	}

	return fmt.Sprintf("%s %d", time.Month(d.Month).String(), d.Year)
}

// monthNames maps lowercase month names and three-letter abbreviations
// to month numbers.
var monthNames = func() map[string]int {
	m := make(map[string]int, 24)

	for i := time.January; i <= time.December; i++ {
		name := strings.ToLower(i.String())
		m[name] = int(i)
		m[name[:3]] = int(i)
	}

	return m
}()

// monthPattern matches any month name or abbreviation.
const monthPattern = `(january|february|march|april|may|june|july|august|september|october|november|december|jan|feb|mar|apr|jun|jul|aug|sep|oct|nov|dec)`

// dateStrategy tries to extract a date from a filename. It returns the
// parsed date, the matched substring (so recording titles can strip it),
// and whether it matched. Strategies are pure functions; ParseDate runs
// them in order and takes the first hit.
type dateStrategy func(name string) (ParsedDate, string, bool)

var (
	reMonthSpaceYear = regexp.MustCompile(`(?i)\b` + monthPattern + `[ _.]+(\d{4})\b`)
	reYearDashMonth  = regexp.MustCompile(`\b(\d{4})-(\d{1,2})\b`)
	reMonthDashYear  = regexp.MustCompile(`(?i)\b` + monthPattern + `-(\d{4})\b`)
	reMonthThenYear  = regexp.MustCompile(`(?i)\b` + monthPattern + `\b\D{0,6}(\d{4})`)
	reYearThenMonth  = regexp.MustCompile(`(?i)\b(\d{4})\D{0,6}\b` + monthPattern + `\b`)
)

// dateStrategies is the cascade, most-specific first. Order matters:
// "September-2025-Web-Edition" must hit the month-dash-year rule before
// the looser anywhere rules get a chance to misread a page count or
// issue number.
var dateStrategies = []dateStrategy{
	matchMonthSpaceYear,
	matchYearDashMonth,
	matchMonthDashYear,
	matchMonthThenYear,
	matchYearThenMonth,
}

func matchMonthSpaceYear(name string) (ParsedDate, string, bool) {
	return matchMonthYear(reMonthSpaceYear, name)
}

func matchMonthDashYear(name string) (ParsedDate, string, bool) {
	return matchMonthYear(reMonthDashYear, name)
}

func matchMonthThenYear(name string) (ParsedDate, string, bool) {
	return matchMonthYear(reMonthThenYear, name)
}

// matchMonthYear handles the month-first patterns, which share capture
// group order (month name, then year).
func matchMonthYear(re *regexp.Regexp, name string) (ParsedDate, string, bool) {
	m := re.FindStringSubmatch(name)
	if m == nil {
		return ParsedDate{}, "", false
	}

	month := monthNames[strings.ToLower(m[1])]

	year, err := strconv.Atoi(m[2])
	if err != nil || !plausibleYear(year) {
		return ParsedDate{}, "", false
	}

	return ParsedDate{Year: year, Month: month}, m[0], true
}

func matchYearDashMonth(name string) (ParsedDate, string, bool) {
	m := reYearDashMonth.FindStringSubmatch(name)
	if m == nil {
		return ParsedDate{}, "", false
	}

	year, err := strconv.Atoi(m[1])
	if err != nil || !plausibleYear(year) {
		return ParsedDate{}, "", false
	}

	month, err := strconv.Atoi(m[2])
	if err != nil || month < 1 || month > 12 {
		return ParsedDate{}, "", false
	}

	return ParsedDate{Year: year, Month: month}, m[0], true
}

func matchYearThenMonth(name string) (ParsedDate, string, bool) {
	m := reYearThenMonth.FindStringSubmatch(name)
	if m == nil {
		return ParsedDate{}, "", false
	}

	year, err := strconv.Atoi(m[1])
	if err != nil || !plausibleYear(year) {
		return ParsedDate{}, "", false
	}

	return ParsedDate{Year: year, Month: monthNames[strings.ToLower(m[2])]}, m[0], true
}

// plausibleYear filters out 4-digit numbers that are clearly not years
// (issue numbers, page counts, postcodes).
func plausibleYear(y int) bool {
	return y >= 1900 && y <= 2199
}

// ParseDate runs the strategy cascade over name and returns the first
// match.
func ParseDate(name string) (ParsedDate, bool) {
	d, _, ok := FindDate(name)

	return d, ok
}

// FindDate is ParseDate plus the matched substring, for callers that
// strip the date from a display title. Underscores are normalized to
// spaces before matching (they are word characters to the regexp
// engine, which breaks the \b anchors); the returned substring refers
// to the normalized form.
func FindDate(name string) (ParsedDate, string, bool) {
	normalized := strings.ReplaceAll(name, "_", " ")

	for _, strategy := range dateStrategies {
		if d, matched, ok := strategy(normalized); ok {
			return d, matched, true
		}
	}

	return ParsedDate{}, "", false
}

// yearFolder matches folder names that are exactly a 4-digit year, used
// to decide whether to recurse into a subfolder.
var yearFolder = regexp.MustCompile(`^\d{4}$`)

// FolderYear returns the year a folder name encodes, if any.
func FolderYear(name string) (int, bool) {
	name = strings.TrimSpace(name)
	if !yearFolder.MatchString(name) {
		return 0, false
	}

	y, err := strconv.Atoi(name)
	if err != nil || !plausibleYear(y) {
		return 0, false
	}

	return y, true
}
