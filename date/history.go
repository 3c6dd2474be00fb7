package date

import (
	"iter"
	"slices"
)

// point is a dated value.
type point[T any] struct {
	on Date
	v  T
}

// History is a chronological series of values, at most one per day.
//
// The zero value is an empty history ready to use.
type History[T any] struct {
	points []point[T] // sorted by date, without duplicates
}

// Len returns the number of days with a value.
func (h *History[T]) Len() int { return len(h.points) }

// First returns the earliest day and its value, ok is false if h is empty.
func (h *History[T]) First() (on Date, value T, ok bool) {
	if len(h.points) == 0 {
		return on, value, false
	}
	return h.points[0].on, h.points[0].v, true
}

// Append sets the value of a day, replacing any previous one.
//
// Appending in chronological order is the fast path.
func (h *History[T]) Append(on Date, value T) *History[T] {
	if n := len(h.points); n == 0 || h.points[n-1].on.Before(on) {
		h.points = append(h.points, point[T]{on, value})
		return h
	}
	i, found := h.search(on)
	if found {
		h.points[i].v = value
		return h
	}
	h.points = slices.Insert(h.points, i, point[T]{on, value})
	return h
}

// Values iterates over the days and values in chronological order.
func (h *History[T]) Values() iter.Seq2[Date, T] {
	return func(yield func(Date, T) bool) {
		for _, p := range h.points {
			if !yield(p.on, p.v) {
				return
			}
		}
	}
}

// Days returns the days with a value, in chronological order.
func (h *History[T]) Days() []Date {
	days := make([]Date, len(h.points))
	for i, p := range h.points {
		days[i] = p.on
	}
	return days
}

// Get returns the value of a day.
func (h *History[T]) Get(on Date) (value T, ok bool) {
	if i, found := h.search(on); found {
		return h.points[i].v, true
	}
	return value, false
}

// Between returns a new history restricted to the days in r.
func (h *History[T]) Between(r Range) *History[T] {
	lo, _ := h.search(r.From)
	hi, found := h.search(r.To)
	if found {
		hi++
	}
	if hi < lo {
		hi = lo
	}
	return &History[T]{points: slices.Clone(h.points[lo:hi])}
}

func (h *History[T]) search(on Date) (int, bool) {
	return slices.BinarySearchFunc(h.points, on, func(p point[T], on Date) int { return p.on.Compare(on) })
}
