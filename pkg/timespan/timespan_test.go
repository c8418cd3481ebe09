package timespan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDuration(t *testing.T) {
	assert.InDelta(t, 2.5, New(1.0, 3.5).Duration(), 1e-12)
	assert.Zero(t, New(4.0, 4.0).Duration())
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name string
		a, b Span
		want bool
	}{
		{"disjoint", New(0, 1), New(2, 3), false},
		{"touching endpoints", New(0, 1), New(1, 2), false},
		{"partial overlap", New(0, 2), New(1, 3), true},
		{"nested", New(0, 10), New(2, 3), true},
		{"identical", New(1, 2), New(1, 2), true},
		{"zero-length inside", New(0, 2), New(1, 1), true},
		{"zero-length at start", New(0, 2), New(0, 0), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Overlaps(tt.b))
			assert.Equal(t, tt.want, tt.b.Overlaps(tt.a), "Overlaps must be symmetric")
		})
	}
}

func TestCovers(t *testing.T) {
	tests := []struct {
		name string
		a, b Span
		want bool
	}{
		{"proper subset", New(0, 10), New(2, 3), true},
		{"identical", New(1, 2), New(1, 2), true},
		{"shared start", New(0, 5), New(0, 2), true},
		{"shared end", New(0, 5), New(3, 5), true},
		{"extends past end", New(0, 5), New(3, 6), false},
		{"starts before", New(2, 5), New(1, 3), false},
		{"disjoint", New(0, 1), New(5, 6), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Covers(tt.b))
		})
	}
}

func TestCoveredImpliesOverlap(t *testing.T) {
	window := New(5, 7)
	candidates := []Span{
		New(4, 6), New(5.5, 6.5), New(6, 9), New(1, 2), New(5, 7), New(7, 8),
	}
	for _, c := range candidates {
		if window.Covers(c) {
			assert.True(t, window.Overlaps(c), "covered span %+v must also overlap", c)
		}
	}
}
