package page

import "testing"

func TestCount(t *testing.T) {
	tests := []struct {
		total, perPage, want int
	}{
		{0, 25, 0},
		{1, 25, 1},
		{25, 25, 1},
		{26, 25, 2},
		{100, 10, 10},
		{101, 10, 11},
		{5, 0, 0},
	}
	for _, tc := range tests {
		if got := Count(tc.total, tc.perPage); got != tc.want {
			t.Errorf("Count(%d, %d) = %d, want %d", tc.total, tc.perPage, got, tc.want)
		}
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		page, pages, want int
	}{
		{1, 0, 0},
		{3, 0, 0},
		{1, 5, 1},
		{5, 5, 5},
		{9, 5, 5},
	}
	for _, tc := range tests {
		if got := Clamp(tc.page, tc.pages); got != tc.want {
			t.Errorf("Clamp(%d, %d) = %d, want %d", tc.page, tc.pages, got, tc.want)
		}
	}
}

func TestNewRequest(t *testing.T) {
	r, err := NewRequest(0, 0, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Page() != DefaultPage || r.PerPage() != DefaultPerPage {
		t.Errorf("expected defaults, got page=%d per_page=%d", r.Page(), r.PerPage())
	}

	r, err = NewRequest(3, 10, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Offset() != 20 {
		t.Errorf("expected offset 20, got %d", r.Offset())
	}

	for _, bad := range [][3]int{{-1, 10, 100}, {1, -5, 100}, {1, 101, 100}} {
		if _, err := NewRequest(bad[0], bad[1], bad[2]); err == nil {
			t.Errorf("NewRequest(%v) expected error", bad)
		}
	}
}

func TestNewMeta(t *testing.T) {
	r, _ := NewRequest(4, 10, 0)
	m := NewMeta(r, 25)
	if m.Page != 4 || m.Pages != 3 || m.PerPage != 10 || m.Total != 25 {
		t.Errorf("unexpected meta: %+v", m)
	}
}
