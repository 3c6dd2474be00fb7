package date

import (
	"encoding/json"
	"testing"
	"time"
)

// TestTime checks the round trip through time.Time, before and after the unix epoch.
func TestTime(t *testing.T) {
	for _, d := range []Date{New(2025, 7, 31), New(1969, 12, 31), New(1, 1, 1), New(2000, 2, 29)} {
		if got := FromTime(d.Time()); got != d {
			t.Errorf("FromTime(%v.Time()) = %v", d, got)
		}
		if h, m, s := d.Time().Clock(); h+m+s != 0 {
			t.Errorf("%v.Time() is not midnight", d)
		}
	}
	d := New(2011, time.January, 10)
	if d.Year() != 2011 || d.Month() != time.January || d.Day() != 10 || d.Weekday() != time.Monday {
		t.Errorf("New(2011, 1, 10) fields = %d %v %d %v", d.Year(), d.Month(), d.Day(), d.Weekday())
	}
	if !(Date{}).IsZero() || d.IsZero() {
		t.Errorf("IsZero() is wrong")
	}
}

func TestCompare(t *testing.T) {
	a, b := New(2011, 1, 10), New(2011, 2, 1)
	if !a.Before(b) || a.After(b) || a.Compare(b) != -1 || b.Compare(a) != 1 || a.Compare(a) != 0 {
		t.Errorf("comparison of %v and %v is wrong", a, b)
	}
	if got := b.Sub(a); got != 22 {
		t.Errorf("Sub() = %d want 22", got)
	}
}

func TestParse(t *testing.T) {
	testCases := []struct {
		in      string
		want    Date
		wantErr bool
	}{
		{"2025-07-01", New(2025, time.July, 1), false},
		{"2025-7-1", New(2025, time.July, 1), false},
		{"2025/07/01", Date{}, true},
		{"", Date{}, true},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := Parse(tc.in)
			if (err != nil) != tc.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			}
			if got != tc.want {
				t.Errorf("Parse(%q) = %v want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestNormalization(t *testing.T) {
	if got, want := New(2024, time.February, 30), New(2024, time.March, 1); got != want {
		t.Errorf("New(2024, 2, 30) = %v want %v", got, want)
	}
	if got, want := MustParse("2024-12-31").Add(1), MustParse("2025-01-01"); got != want {
		t.Errorf("Add(1) = %v want %v", got, want)
	}
}

func TestJSON(t *testing.T) {
	d := MustParse("2011-01-10")
	b, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("json.Marshal() unexpected error %v", err)
	}
	if string(b) != `"2011-01-10"` {
		t.Errorf("json.Marshal() = %s want %q", b, "2011-01-10")
	}
	var got Date
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("json.Unmarshal() unexpected error %v", err)
	}
	if got != d {
		t.Errorf("json.Unmarshal() = %v want %v", got, d)
	}
}

func TestRangeDays(t *testing.T) {
	r := Range{From: MustParse("2025-01-30"), To: MustParse("2025-02-02")}
	var got []Date
	for d := range r.Days() {
		got = append(got, d)
	}
	if len(got) != 4 {
		t.Fatalf("Days() yielded %d days want 4", len(got))
	}
	if got[3] != r.To {
		t.Errorf("last day = %v want %v", got[3], r.To)
	}
	if !r.Contains(MustParse("2025-02-01")) || r.Contains(MustParse("2025-02-03")) {
		t.Errorf("Contains() is wrong for %v", r)
	}
	if (Range{From: r.To, To: r.From}).IsEmpty() != true {
		t.Errorf("IsEmpty() = false for a reversed range")
	}
}
