package shop

import (
	"testing"
	"time"
)

func TestNextStatus(t *testing.T) {
	tests := []struct {
		current string
		want    string
		ok      bool
	}{
		{"new", StatusProcessing, true},
		{" Processing ", StatusShipped, true},
		{"shipped", StatusDelivered, true},
		{"delivered", "", false},
		{"cancelled", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := NextStatus(tt.current)
		if got != tt.want || ok != tt.ok {
			t.Fatalf("NextStatus(%q) = %q,%v want %q,%v", tt.current, got, ok, tt.want, tt.ok)
		}
	}
}

func TestIsTerminal(t *testing.T) {
	if !IsTerminal("Cancelled") || !IsTerminal("delivered") {
		t.Fatalf("IsTerminal should accept delivered and cancelled")
	}
	if IsTerminal("new") {
		t.Fatalf("IsTerminal(new) = true, want false")
	}
}

func TestParseTime(t *testing.T) {
	want := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)
	for _, value := range []string{"2024-05-01T10:30:00Z", "2024-05-01 10:30:00", Timestamp(want)} {
		if got := ParseTime(value); !got.Equal(want) {
			t.Fatalf("ParseTime(%q) = %v, want %v", value, got, want)
		}
	}
	if got := ParseTime("yesterday"); !got.IsZero() {
		t.Fatalf("ParseTime(garbage) = %v, want zero", got)
	}
}

func TestTimestamp_FixedWidth(t *testing.T) {
	base := time.Date(2026, 10, 19, 5, 0, 0, 0, time.UTC)
	whole := Timestamp(base)
	half := Timestamp(base.Add(500 * time.Millisecond))
	tiny := Timestamp(base.Add(120 * time.Millisecond))

	if len(whole) != len(half) || len(half) != len(tiny) {
		t.Fatalf("widths differ: %q %q %q", whole, half, tiny)
	}
	if !(whole < tiny && tiny < half) {
		t.Fatalf("text order of %q %q %q is not chronological", whole, tiny, half)
	}
	if got := ParseTime(half); !got.Equal(base.Add(500 * time.Millisecond)) {
		t.Fatalf("ParseTime(%q) = %v", half, got)
	}
}
