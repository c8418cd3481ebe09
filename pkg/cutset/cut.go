// Package cutset models training cuts of recorded audio: atomic
// segments backed by stored feature matrices, lazily mixed overlays
// of two cuts, and the id-keyed sets that resolve references between
// them. Derived cuts never copy numeric data; all array work is
// deferred until LoadFeatures is called.
package cutset

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/speechkit/cutset/pkg/cutset/features"
	"github.com/speechkit/cutset/pkg/cutset/supervision"
	"github.com/speechkit/cutset/pkg/timespan"
)

// durationTolerance absorbs floating-point drift when validating
// truncation windows.
const durationTolerance = 1e-5

// Cut is the contract shared by atomic and derived cuts. Accessors
// carry a Cut prefix because Segment exposes plain data fields the
// method names would otherwise collide with. Mix accessors resolve
// operands on every call and fail when resolution fails; Segment
// accessors only fail on feature loading.
type Cut interface {
	CutID() string
	CutDuration() (float64, error)
	CutSupervisions() ([]supervision.Segment, error)
	CutFraming() (frameLength, frameShift float64, err error)
	LoadFeatures(rootDir string) ([][]float64, error)
	Overlay(other Cut, offsetOtherBy, snr float64) *Mix
}

// Segment is an atomic cut: one channel and time window of a stored
// feature matrix, plus the supervisions attached to that window.
// Supervisions keep their own absolute timing and may extend beyond
// the window. The window is expected to lie inside the feature
// extent; a violation only surfaces when features are loaded.
type Segment struct {
	ID           string                `yaml:"id"`
	Channel      int                   `yaml:"channel"`
	Start        float64               `yaml:"start"`
	Duration     float64               `yaml:"duration"`
	Features     *features.Features    `yaml:"features,omitempty"`
	Supervisions []supervision.Segment `yaml:"supervisions,omitempty"`
}

// NewSegment creates a segment with a fresh id.
func NewSegment(channel int, start, duration float64, feats *features.Features, sups []supervision.Segment) *Segment {
	return &Segment{
		ID:           uuid.New().String(),
		Channel:      channel,
		Start:        start,
		Duration:     duration,
		Features:     feats,
		Supervisions: sups,
	}
}

// End returns the window end in the recording timeline.
func (s *Segment) End() float64 {
	return s.Start + s.Duration
}

func (s *Segment) CutID() string {
	return s.ID
}

func (s *Segment) CutDuration() (float64, error) {
	return s.Duration, nil
}

func (s *Segment) CutSupervisions() ([]supervision.Segment, error) {
	return s.Supervisions, nil
}

func (s *Segment) CutFraming() (float64, float64, error) {
	if s.Features == nil {
		return 0, 0, fmt.Errorf("segment %s has no feature reference", s.ID)
	}
	return s.Features.FrameLength, s.Features.FrameShift, nil
}

// LoadFeatures reads the feature rows covering this segment's
// window. Storage failures are returned exactly as the feature layer
// produced them.
func (s *Segment) LoadFeatures(rootDir string) ([][]float64, error) {
	if s.Features == nil {
		return nil, fmt.Errorf("segment %s has no feature reference", s.ID)
	}
	return s.Features.Load(rootDir, s.Start, s.Duration)
}

// TruncateOption adjusts a truncation.
type TruncateOption func(*truncateConfig)

type truncateConfig struct {
	offset        float64
	until         float64
	hasUntil      bool
	keepExcessive bool
}

// WithOffset starts the truncated window offset seconds after the
// original start.
func WithOffset(sec float64) TruncateOption {
	return func(c *truncateConfig) { c.offset = sec }
}

// WithUntil ends the truncated window until seconds after the
// original start. Without it the window extends to the original end.
func WithUntil(sec float64) TruncateOption {
	return func(c *truncateConfig) {
		c.until = sec
		c.hasUntil = true
	}
}

// WithKeepExcessiveSupervisions controls which supervisions survive
// truncation: true, the default, keeps every supervision overlapping
// the new window; false keeps only those fully inside it.
func WithKeepExcessiveSupervisions(keep bool) TruncateOption {
	return func(c *truncateConfig) { c.keepExcessive = keep }
}

// Truncate returns a new segment covering a sub-window of this one.
// The receiver is unchanged; the result has a fresh id and shares the
// feature reference. Kept supervisions are neither shifted nor
// clipped. A window that would be empty or extend past the original
// end is an error, never silently clamped.
func (s *Segment) Truncate(opts ...TruncateOption) (*Segment, error) {
	cfg := truncateConfig{keepExcessive: true}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.offset < 0 {
		return nil, fmt.Errorf("truncate offset must not be negative, got %g", cfg.offset)
	}
	newStart := s.Start + cfg.offset
	newDuration := s.Duration - cfg.offset
	if cfg.hasUntil {
		newDuration = cfg.until - cfg.offset
	}
	if newDuration <= 0 {
		return nil, fmt.Errorf("truncating cut %s yields non-positive duration %g", s.ID, newDuration)
	}
	if newStart+newDuration > s.End()+durationTolerance {
		return nil, fmt.Errorf("truncation window [%g, %g) exceeds cut %s window [%g, %g)",
			newStart, newStart+newDuration, s.ID, s.Start, s.End())
	}

	window := timespan.New(newStart, newStart+newDuration)
	keep := window.Overlaps
	if !cfg.keepExcessive {
		keep = window.Covers
	}
	var kept []supervision.Segment
	for _, sup := range s.Supervisions {
		if keep(sup.Span()) {
			kept = append(kept, sup)
		}
	}

	return &Segment{
		ID:           uuid.New().String(),
		Channel:      s.Channel,
		Start:        newStart,
		Duration:     newDuration,
		Features:     s.Features,
		Supervisions: kept,
	}, nil
}

// Overlay mixes other into this cut. The other cut's timeline is
// shifted forward by offsetOtherBy seconds and its features are
// scaled by the signal-to-noise ratio snr in dB: positive snr scales
// the other cut down, negative scales it up. The result is an
// unbound Mix naming both operands by id; nothing is computed until
// it is bound to a set and loaded.
func (s *Segment) Overlay(other Cut, offsetOtherBy, snr float64) *Mix {
	return newMix(s.ID, other.CutID(), offsetOtherBy, snr)
}

// Append places other right after this cut ends.
func (s *Segment) Append(other Cut, snr float64) *Mix {
	return s.Overlay(other, s.Duration, snr)
}
