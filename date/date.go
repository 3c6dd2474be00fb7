// Package date provides a day granularity date and chronological series of values.
package date

import (
	"encoding/json"
	"fmt"
	"iter"
	"time"
)

// Layout is the ISO-8601 format dates are written in.
const Layout = "2006-01-02"

// lenient is the read format, it accepts single digit months and days.
const lenient = "2006-1-2"

// unixEpoch is the day number of 1970-01-01.
const unixEpoch = 719163

// Date is a calendar day, without time zone.
//
// Dates are comparable with ==. The zero value is not a valid day.
type Date struct {
	n int // days since 0000-12-31, in the proleptic Gregorian calendar
}

// New returns the Date of year, month and day, normalized like [time.Date]:
// 2011-01-32 is 2011-02-01.
func New(year int, month time.Month, day int) Date {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return Date{n: int(t.Unix()/86400) + unixEpoch}
}

// FromTime returns the Date of t in its own location.
func FromTime(t time.Time) Date { return New(t.Date()) }

// Today returns the current local date.
func Today() Date { return FromTime(time.Now()) }

// Time returns midnight UTC of d.
func (d Date) Time() time.Time { return time.Unix(int64(d.n-unixEpoch)*86400, 0).UTC() }

// Calendar fields and day arithmetic.
func (d Date) Year() int             { return d.Time().Year() }
func (d Date) Month() time.Month     { return d.Time().Month() }
func (d Date) Day() int              { return d.Time().Day() }
func (d Date) Weekday() time.Weekday { return d.Time().Weekday() }
func (d Date) IsZero() bool          { return d.n == 0 }
func (d Date) Before(x Date) bool    { return d.n < x.n }
func (d Date) After(x Date) bool     { return d.n > x.n }
func (d Date) Add(days int) Date     { return Date{n: d.n + days} }

// Sub returns the number of days from x to d.
func (d Date) Sub(x Date) int { return d.n - x.n }

// Format formats d with a [time.Time] layout.
func (d Date) Format(layout string) string { return d.Time().Format(layout) }

// Compare returns -1, 0 or +1 if d is before, equal or after x.
func (d Date) Compare(x Date) int {
	switch {
	case d.n < x.n:
		return -1
	case d.n > x.n:
		return 1
	}
	return 0
}

func (d Date) String() string { return d.Format(Layout) }

// Parse reads a date in the YYYY-MM-DD format. Single digit months and days are accepted.
func Parse(s string) (Date, error) {
	t, err := time.Parse(lenient, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD: %w", s, err)
	}
	return FromTime(t), nil
}

// MustParse is like Parse but panics on error.
func MustParse(s string) Date {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Date) MarshalJSON() ([]byte, error) { return json.Marshal(d.String()) }

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	return d.set(s)
}

// UnmarshalYAML reads a date from a yaml scalar.
func (d *Date) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	return d.set(s)
}

func (d *Date) set(s string) error {
	v, err := Parse(s)
	if err != nil {
		return err
	}
	*d = v
	return nil
}

var (
	_ json.Marshaler   = Date{}
	_ json.Unmarshaler = (*Date)(nil)
)

// Range is an inclusive range of dates.
type Range struct{ From, To Date }

// Contains reports whether on is in r, boundaries included.
func (r Range) Contains(on Date) bool { return !on.Before(r.From) && !on.After(r.To) }

// IsEmpty reports whether the range contains no day at all.
func (r Range) IsEmpty() bool { return r.To.Before(r.From) }

// Days iterates over every calendar day of the range, in order.
func (r Range) Days() iter.Seq[Date] {
	return func(yield func(Date) bool) {
		for d := r.From; !d.After(r.To); d = d.Add(1) {
			if !yield(d) {
				return
			}
		}
	}
}

func (r Range) String() string { return fmt.Sprintf("%s to %s", r.From, r.To) }
