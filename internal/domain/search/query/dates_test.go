package query

import (
	"testing"
	"time"
)

var now = time.Date(2024, 3, 15, 13, 45, 30, 0, time.UTC)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestResolveDate(t *testing.T) {
	tests := []struct {
		in    string
		start time.Time
		end   time.Time
	}{
		{"now", now, now.Add(time.Second)},
		{"today", day(2024, 3, 15), day(2024, 3, 16)},
		{"Yesterday", day(2024, 3, 14), day(2024, 3, 15)},
		{"tomorrow", day(2024, 3, 16), day(2024, 3, 17)},
		{"2023", day(2023, 1, 1), day(2024, 1, 1)},
		{"2023-02", day(2023, 2, 1), day(2023, 3, 1)},
		{"2023-02-28", day(2023, 2, 28), day(2023, 3, 1)},
		{"20230228", day(2023, 2, 28), day(2023, 3, 1)},
		{"2023-02-28T10:15",
			time.Date(2023, 2, 28, 10, 15, 0, 0, time.UTC),
			time.Date(2023, 2, 28, 10, 16, 0, 0, time.UTC)},
		{"2023-02-28T10:15:00Z",
			time.Date(2023, 2, 28, 10, 15, 0, 0, time.UTC),
			time.Date(2023, 2, 28, 10, 15, 1, 0, time.UTC)},
		{"-7d", day(2024, 3, 8), day(2024, 3, 9)},
		{"+2w", day(2024, 3, 29), day(2024, 3, 30)},
		{"-1m", day(2024, 2, 1), day(2024, 3, 1)},
		{"-1mo", day(2024, 2, 1), day(2024, 3, 1)},
		{"-1y", day(2023, 1, 1), day(2024, 1, 1)},
		{"-3h",
			time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC),
			time.Date(2024, 3, 15, 11, 0, 0, 0, time.UTC)},
		{"-30min",
			time.Date(2024, 3, 15, 13, 15, 0, 0, time.UTC),
			time.Date(2024, 3, 15, 13, 16, 0, 0, time.UTC)},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			sp, err := ResolveDate(tc.in, now)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !sp.Start.Equal(tc.start) || !sp.End.Equal(tc.end) {
				t.Errorf("ResolveDate(%q) = [%v, %v), want [%v, %v)", tc.in, sp.Start, sp.End, tc.start, tc.end)
			}
		})
	}
}

func TestResolveDate_Invalid(t *testing.T) {
	for _, in := range []string{"", "24", "2024-13", "2024-02-30", "soon", "-7x", "7d", "2024/01/01",
		"-99999999999h", "+99999999999999999999s", "-1000y", "-2401mo"} {
		if _, err := ResolveDate(in, now); err == nil {
			t.Errorf("ResolveDate(%q): expected error", in)
		}
	}
}

func TestResolveDate_OffsetBounds(t *testing.T) {
	sp, err := ResolveDate("-1752000h", now)
	if err != nil {
		t.Fatalf("largest hour offset: %v", err)
	}
	if !sp.Start.Before(now) || now.Sub(sp.Start) < 199*365*24*time.Hour {
		t.Errorf("unexpected span start %v", sp.Start)
	}
	if _, err := ResolveDate("-1752001h", now); err == nil {
		t.Error("expected error past the hour bound")
	}
}
