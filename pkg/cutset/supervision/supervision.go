// Package supervision models annotated time segments used as
// training targets. Segments are independent of cut boundaries: a cut
// may carry supervisions that extend beyond its own window.
package supervision

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/speechkit/cutset/pkg/timespan"
)

// Segment is a labeled time interval within one channel of a
// recording. Start and Duration are seconds in the recording
// timeline.
type Segment struct {
	ID          string  `yaml:"id"`
	RecordingID string  `yaml:"recording_id"`
	Start       float64 `yaml:"start"`
	Duration    float64 `yaml:"duration"`
	ChannelID   int     `yaml:"channel_id"`
	Text        string  `yaml:"text,omitempty"`
	Language    string  `yaml:"language,omitempty"`
	Speaker     string  `yaml:"speaker,omitempty"`
}

// End returns the segment end time in seconds.
func (s Segment) End() float64 {
	return s.Start + s.Duration
}

// Span returns the segment's time interval.
func (s Segment) Span() timespan.Span {
	return timespan.New(s.Start, s.End())
}

// Set is an ordered collection of supervision segments.
type Set struct {
	Segments []Segment
}

// Len returns the number of segments.
func (s *Set) Len() int {
	return len(s.Segments)
}

// FromYAML reads a supervision set from a YAML file holding a list of
// segment mappings.
func FromYAML(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading supervision set: %w", err)
	}
	var segments []Segment
	if err := yaml.Unmarshal(data, &segments); err != nil {
		return nil, fmt.Errorf("parsing supervision set %s: %w", path, err)
	}
	return &Set{Segments: segments}, nil
}

// ToYAML writes the supervision set to a YAML file.
func (s *Set) ToYAML(path string) error {
	data, err := yaml.Marshal(s.Segments)
	if err != nil {
		return fmt.Errorf("encoding supervision set: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing supervision set: %w", err)
	}
	return nil
}
