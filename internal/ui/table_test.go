package ui

import (
	"testing"
	"time"
)

func TestFormatMoney(t *testing.T) {
	tests := map[float64]string{
		0:           "0.00",
		999.5:       "999.50",
		1000:        "1 000.00",
		1234567.891: "1 234 567.89",
		-2500.25:    "-2 500.25",
	}
	for in, want := range tests {
		if got := formatMoney(in); got != want {
			t.Fatalf("formatMoney(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestTruncateCountsRunes(t *testing.T) {
	if got := truncate("Платье летнее", 8); got != "Плать..." {
		t.Fatalf("truncate = %q", got)
	}
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("truncate = %q", got)
	}
	if got := truncate("abc", 0); got != "" {
		t.Fatalf("truncate = %q", got)
	}
}

func TestFit(t *testing.T) {
	if got := fit("ab", 4, false); got != "ab  " {
		t.Fatalf("fit left = %q", got)
	}
	if got := fit("ab", 4, true); got != "  ab" {
		t.Fatalf("fit right = %q", got)
	}
	if got := fit("abcdefgh", 5, false); got != "ab..." {
		t.Fatalf("fit truncate = %q", got)
	}
}

func TestShortID(t *testing.T) {
	if got := shortID("3f2a9c1e-7b1d-4a4e-9a51-0c6c1a2b3d4e"); got != "3f2a9c1e" {
		t.Fatalf("shortID = %q", got)
	}
	if got := shortID("42"); got != "42" {
		t.Fatalf("shortID = %q", got)
	}
}

func TestColumnWidthsSharesRemainder(t *testing.T) {
	widths := columnWidths([]column{{width: 10}, {width: 0}, {width: 5}}, 40)
	// 40 - 15 fixed - 2 separators
	if widths[1] != 23 {
		t.Fatalf("flex width = %d, want 23", widths[1])
	}
}

func TestFormatTimestamp(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.Local)
	tests := []struct {
		at     time.Time
		suffix string
	}{
		{now.Add(-10 * time.Second), " (now)"},
		{now.Add(-5 * time.Minute), " (5m ago)"},
		{now.Add(-3 * time.Hour), " (3h ago)"},
	}
	for _, tt := range tests {
		got := formatTimestamp(now, tt.at)
		want := tt.at.Format("15:04:05") + tt.suffix
		if got != want {
			t.Fatalf("formatTimestamp = %q, want %q", got, want)
		}
	}
	if got := formatTimestamp(now, time.Time{}); got != "" {
		t.Fatalf("zero time = %q", got)
	}
}
