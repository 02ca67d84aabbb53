package date

import (
	"encoding/json"
	"testing"
	"time"
)

// TestTime assert that the time() is cannonical and gives comparable times.
func TestTime(t *testing.T) {
	d1 := New(2025, 7, 31)
	d2 := New(2025, 7, 31)

	if d1.time() != d2.time() {
		// Note that usually time.Time are not comparable (there is a pointer for the timezone) this
		// tests also checks that the property remain true
		t.Errorf("invalid time() function same day gives two different time")
	}
}

func TestNew_Normalizes(t *testing.T) {
	got := New(2024, time.February, 30)
	want := MustParse("2024-03-01")
	if got != want {
		t.Errorf("New(2024, 2, 30) = %v, want %v", got, want)
	}
}

func TestParse(t *testing.T) {
	testCases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "2024-06-15", want: "2024-06-15"},
		{in: "2025-7-1", want: "2025-07-01"},
		{in: "15/06/2024", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := Parse(tc.in)
			if (err != nil) != tc.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			}
			if err == nil && got.String() != tc.want {
				t.Errorf("Parse(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestDaysSince(t *testing.T) {
	testCases := []struct {
		from, to string
		want     int
	}{
		{"2024-01-10", "2024-01-10", 0},
		{"2024-01-10", "2024-06-15", 157},
		{"2023-01-10", "2024-01-10", 365},
		{"2023-06-01", "2024-06-01", 366}, // spans 29 February 2024
		{"2024-06-15", "2024-01-10", -157},
	}
	for _, tc := range testCases {
		got := MustParse(tc.to).DaysSince(MustParse(tc.from))
		if got != tc.want {
			t.Errorf("%s.DaysSince(%s) = %d, want %d", tc.to, tc.from, got, tc.want)
		}
	}
}

func TestDate_JSON(t *testing.T) {
	d := MustParse("2024-02-15")
	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}
	if string(data) != `"2024-02-15"` {
		t.Errorf("json.Marshal() = %s, want %q", data, "2024-02-15")
	}
	var got Date
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	if got != d {
		t.Errorf("json.Unmarshal() = %v, want %v", got, d)
	}
}

func TestRange(t *testing.T) {
	r := Range{From: MustParse("2024-07-01"), To: MustParse("2025-06-30")}
	if !r.Contains(r.From) || !r.Contains(r.To) {
		t.Errorf("Range.Contains() must include boundaries")
	}
	if r.Contains(MustParse("2025-07-01")) {
		t.Errorf("Range.Contains(2025-07-01) = true, want false")
	}
	if got := r.Days(); got != 365 {
		t.Errorf("Range.Days() = %d, want 365", got)
	}
}

func TestClock(t *testing.T) {
	testCases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "10:00:00", want: "10:00:00"},
		{in: "09:30", want: "09:30:00"},
		{in: "23:59:59.123", want: "23:59:59"},
		{in: "25:00:00", wantErr: true},
		{in: "noon", wantErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseClock(tc.in)
			if (err != nil) != tc.wantErr {
				t.Fatalf("ParseClock(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			}
			if err == nil && got.String() != tc.want {
				t.Errorf("ParseClock(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}

	if !MustParseClock("09:00:00").Before(MustParseClock("10:00:00")) {
		t.Errorf("09:00:00 must be before 10:00:00")
	}
	if got := NewClock(0, 0, 0).Compare(Clock{}); got != 0 {
		t.Errorf("midnight.Compare(zero) = %d, want 0", got)
	}
}
