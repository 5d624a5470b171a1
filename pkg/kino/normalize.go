package kino

import (
	"math"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Duration markers used on detail pages: "2 ч. 15 мин.".
const (
	hoursMarker   = "ч."
	minutesMarker = "мин."
)

// ruMonths maps every accepted spelling of a Russian month name
// (genitive, nominative, abbreviated) to its month.
var ruMonths = map[string]time.Month{
	"января": time.January, "январь": time.January, "янв": time.January,
	"февраля": time.February, "февраль": time.February, "фев": time.February, "февр": time.February,
	"марта": time.March, "март": time.March, "мар": time.March,
	"апреля": time.April, "апрель": time.April, "апр": time.April,
	"мая": time.May, "май": time.May,
	"июня": time.June, "июнь": time.June, "июн": time.June,
	"июля": time.July, "июль": time.July, "июл": time.July,
	"августа": time.August, "август": time.August, "авг": time.August,
	"сентября": time.September, "сентябрь": time.September, "сен": time.September, "сент": time.September,
	"октября": time.October, "октябрь": time.October, "окт": time.October,
	"ноября": time.November, "ноябрь": time.November, "ноя": time.November, "нояб": time.November,
	"декабря": time.December, "декабрь": time.December, "дек": time.December,
}

// yearSuffixes may trail the year ("12 января 2023 г.").
var yearSuffixes = map[string]bool{"г": true, "г.": true, "года": true, "год": true}

// ParseDate converts a Russian "day month year" string such as "12 января 2023"
// to a UTC calendar date. Month names are matched case-insensitively.
func ParseDate(s string) (time.Time, error) {
	fields := strings.Fields(foldRussian(s))
	if len(fields) == 4 && yearSuffixes[fields[3]] {
		fields = fields[:3]
	}
	if len(fields) != 3 {
		return time.Time{}, parseErr(FieldReleaseDate, "expected \"day month year\", got "+strconv.Quote(s))
	}

	day, err := parseCount(fields[0])
	if err != nil || day < 1 || day > 31 {
		return time.Time{}, parseErr(FieldReleaseDate, "invalid day "+strconv.Quote(fields[0]))
	}
	month, ok := ruMonths[strings.TrimSuffix(fields[1], ".")]
	if !ok {
		return time.Time{}, parseErr(FieldReleaseDate, "unknown month "+strconv.Quote(fields[1]))
	}
	year, err := parseCount(fields[2])
	if err != nil || len(fields[2]) != 4 {
		return time.Time{}, parseErr(FieldReleaseDate, "invalid year "+strconv.Quote(fields[2]))
	}

	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day {
		return time.Time{}, parseErr(FieldReleaseDate, "day out of range for month in "+strconv.Quote(s))
	}
	return t, nil
}

// ParseDuration converts "<hours> ч. <minutes> мин." to total minutes.
// Whitespace around and between components is ignored.
func ParseDuration(s string) (int, error) {
	s = strings.ReplaceAll(s, "\u00a0", " ")

	hoursPart, rest, ok := strings.Cut(s, hoursMarker)
	if !ok {
		return 0, parseErr(FieldLength, "missing "+strconv.Quote(hoursMarker)+" in "+strconv.Quote(s))
	}
	minutesPart, tail, ok := strings.Cut(rest, minutesMarker)
	if !ok {
		return 0, parseErr(FieldLength, "missing "+strconv.Quote(minutesMarker)+" in "+strconv.Quote(s))
	}
	if strings.TrimSpace(tail) != "" {
		return 0, parseErr(FieldLength, "unexpected trailing text "+strconv.Quote(tail))
	}

	hours, err := parseCount(hoursPart)
	if err != nil {
		return 0, &ParseError{Field: FieldLength, Reason: "invalid hours", Err: err}
	}
	minutes, err := parseCount(minutesPart)
	if err != nil {
		return 0, &ParseError{Field: FieldLength, Reason: "invalid minutes", Err: err}
	}
	return hours*60 + minutes, nil
}

// ParseRating reads a score such as "8.1" or "8,1" as shown on the rating widget.
func ParseRating(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, &ParseError{Field: FieldRating, Reason: "not a number", Err: err}
	}
	if math.IsNaN(v) || v < 0 || v > 10 {
		return 0, parseErr(FieldRating, "out of range "+s)
	}
	return v, nil
}

func parseCount(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, &strconv.NumError{Func: "parseCount", Num: s, Err: strconv.ErrSyntax}
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, &strconv.NumError{Func: "parseCount", Num: s, Err: strconv.ErrSyntax}
		}
	}
	return strconv.Atoi(s)
}

// foldRussian normalizes composition, non-breaking spaces and case so that
// month names compare equal regardless of how the page encoded them.
// A Caser is stateful, so one is built per call.
func foldRussian(s string) string {
	s = norm.NFC.String(s)
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return cases.Lower(language.Russian).String(s)
}
