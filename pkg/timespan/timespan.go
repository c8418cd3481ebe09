// Package timespan provides interval tests over time spans measured
// in seconds.
package timespan

// Span is a [Start, End] time interval in seconds.
type Span struct {
	Start float64
	End   float64
}

// New returns the span covering [start, end].
func New(start, end float64) Span {
	return Span{Start: start, End: end}
}

// Duration returns the span length in seconds.
func (s Span) Duration() float64 {
	return s.End - s.Start
}

// Overlaps reports whether the two spans share any interior point.
// Spans that merely touch at an endpoint do not overlap.
func (s Span) Overlaps(other Span) bool {
	return s.Start < other.End && other.Start < s.End
}

// Covers reports whether other lies entirely within s.
func (s Span) Covers(other Span) bool {
	return s.Start <= other.Start && other.End <= s.End
}
