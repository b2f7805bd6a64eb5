package query

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Span is a half-open time interval [Start, End) covered by a date literal.
type Span struct {
	Start time.Time
	End   time.Time
}

var relativeRe = regexp.MustCompile(`^([+-])(\d+)(s|min|h|d|w|mo|m|y)$`)

// maxOffset bounds relative literals to about 200 years per unit, which also
// keeps second/minute/hour offsets inside time.Duration.
var maxOffset = map[string]int{
	"s":   200 * 365 * 24 * 3600,
	"min": 200 * 365 * 24 * 60,
	"h":   200 * 365 * 24,
	"d":   200 * 365,
	"w":   200 * 52,
	"mo":  200 * 12,
	"m":   200 * 12,
	"y":   200,
}

// absolute layouts, most specific last; each entry carries its granularity.
var dateLayouts = []struct {
	layout string
	step   func(time.Time) time.Time
}{
	{"2006", func(t time.Time) time.Time { return t.AddDate(1, 0, 0) }},
	{"2006-01", func(t time.Time) time.Time { return t.AddDate(0, 1, 0) }},
	{"2006-01-02", func(t time.Time) time.Time { return t.AddDate(0, 0, 1) }},
	{"20060102", func(t time.Time) time.Time { return t.AddDate(0, 0, 1) }},
	{"2006-01-02T15", func(t time.Time) time.Time { return t.Add(time.Hour) }},
	{"2006-01-02T15:04", func(t time.Time) time.Time { return t.Add(time.Minute) }},
	{"2006-01-02T15:04:05", func(t time.Time) time.Time { return t.Add(time.Second) }},
	{time.RFC3339, func(t time.Time) time.Time { return t.Add(time.Second) }},
}

// ResolveDate turns a date literal into the span it denotes, in UTC.
//
// Accepted: now, today, yesterday, tomorrow; YYYY, YYYY-MM, YYYY-MM-DD,
// YYYYMMDD, YYYY-MM-DDTHH[:MM[:SS]], RFC 3339; relative offsets from now
// such as -7d, +2w, -1mo (also -1m), -1y, -3h, -30min, -10s. A relative
// literal covers the whole unit it lands in (-7d is that entire day).
func ResolveDate(s string, now time.Time) (Span, error) {
	now = now.UTC()
	switch strings.ToLower(s) {
	case "now":
		t := now.Truncate(time.Second)
		return Span{Start: t, End: t.Add(time.Second)}, nil
	case "today":
		return daySpan(now), nil
	case "yesterday":
		return daySpan(now.AddDate(0, 0, -1)), nil
	case "tomorrow":
		return daySpan(now.AddDate(0, 0, 1)), nil
	}

	if m := relativeRe.FindStringSubmatch(s); m != nil {
		n, err := strconv.Atoi(m[2])
		if err != nil || n > maxOffset[m[3]] {
			return Span{}, fmt.Errorf("date offset %q out of range", s)
		}
		if m[1] == "-" {
			n = -n
		}
		return relativeSpan(now, n, m[3]), nil
	}

	for _, l := range dateLayouts {
		t, err := time.Parse(l.layout, s)
		if err != nil {
			continue
		}
		t = t.UTC()
		return Span{Start: t, End: l.step(t)}, nil
	}
	return Span{}, fmt.Errorf("invalid date %q", s)
}

func daySpan(t time.Time) Span {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return Span{Start: start, End: start.AddDate(0, 0, 1)}
}

func relativeSpan(now time.Time, n int, unit string) Span {
	switch unit {
	case "s":
		t := now.Add(time.Duration(n) * time.Second).Truncate(time.Second)
		return Span{Start: t, End: t.Add(time.Second)}
	case "min":
		t := now.Add(time.Duration(n) * time.Minute).Truncate(time.Minute)
		return Span{Start: t, End: t.Add(time.Minute)}
	case "h":
		t := now.Add(time.Duration(n) * time.Hour).Truncate(time.Hour)
		return Span{Start: t, End: t.Add(time.Hour)}
	case "d":
		return daySpan(now.AddDate(0, 0, n))
	case "w":
		return daySpan(now.AddDate(0, 0, 7*n))
	case "mo", "m":
		t := now.AddDate(0, n, 0)
		start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
		return Span{Start: start, End: start.AddDate(0, 1, 0)}
	default: // y
		t := now.AddDate(n, 0, 0)
		start := time.Date(t.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
		return Span{Start: start, End: start.AddDate(1, 0, 0)}
	}
}
