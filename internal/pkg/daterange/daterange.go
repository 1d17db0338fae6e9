// Package daterange models a stay as a half-open range of calendar days
// [CheckIn, CheckOut). All values are normalised to midnight UTC so that
// comparisons never depend on the caller's time zone.
package daterange

import (
	"errors"
	"fmt"
	"time"
)

const Layout = "2006-01-02"

var ErrEmptyRange = errors.New("check-out must be after check-in")

type Range struct {
	CheckIn  time.Time `json:"check_in"`
	CheckOut time.Time `json:"check_out"`
}

// Day truncates t to its calendar day in t's own location and returns it as midnight UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return t, nil
}

func Format(t time.Time) string {
	return Day(t).Format(Layout)
}

// New builds a range from two days. The range must hold at least one night.
func New(checkIn, checkOut time.Time) (Range, error) {
	r := Range{CheckIn: Day(checkIn), CheckOut: Day(checkOut)}
	if !r.CheckOut.After(r.CheckIn) {
		return Range{}, ErrEmptyRange
	}
	return r, nil
}

// Overlaps reports whether a and b share at least one night. Ranges that only
// touch (one's check-out is the other's check-in) do not overlap.
func Overlaps(a, b Range) bool {
	return a.CheckIn.Before(b.CheckOut) && b.CheckIn.Before(a.CheckOut)
}

func (r Range) Overlaps(o Range) bool { return Overlaps(r, o) }

// Contains reports whether the night starting on day belongs to the range.
func (r Range) Contains(day time.Time) bool {
	d := Day(day)
	return !d.Before(r.CheckIn) && d.Before(r.CheckOut)
}

func (r Range) Nights() int {
	return DaysBetween(r.CheckIn, r.CheckOut)
}

// Days lists every night of the range in order.
func (r Range) Days() []time.Time {
	n := r.Nights()
	if n <= 0 {
		return nil
	}
	out := make([]time.Time, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, AddDays(r.CheckIn, i))
	}
	return out
}

func (r Range) String() string {
	return Format(r.CheckIn) + ".." + Format(r.CheckOut)
}

// DaysBetween counts calendar days from a to b. It works on the civil dates
// only, so a DST switch between the two never shifts the result.
func DaysBetween(a, b time.Time) int {
	return int(epochDay(b) - epochDay(a))
}

func AddDays(t time.Time, n int) time.Time {
	d := Day(t)
	return time.Date(d.Year(), d.Month(), d.Day()+n, 0, 0, 0, 0, time.UTC)
}

func epochDay(t time.Time) int64 {
	return Day(t).Unix() / 86400
}
