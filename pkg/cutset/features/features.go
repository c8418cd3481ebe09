// Package features manages precomputed acoustic feature matrices:
// manifest entries describing where each matrix lives and how it was
// framed, windowed loading, gob storage, extraction from PCM samples,
// and an optional SQLite-backed index.
package features

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrNotFound is wrapped by lookups when no stored matrix covers the
// requested window.
var ErrNotFound = errors.New("features not found")

// coverageTolerance absorbs floating-point drift when deciding
// whether a stored extent covers a requested window.
const coverageTolerance = 1e-3

// Features describes one stored feature matrix: which part of which
// recording channel it covers, its framing, and where it lives.
type Features struct {
	RecordingID string  `yaml:"recording_id"`
	ChannelID   int     `yaml:"channel_id"`
	Start       float64 `yaml:"start"`
	Duration    float64 `yaml:"duration"`
	Type        string  `yaml:"type"`
	NumFrames   int     `yaml:"num_frames"`
	NumFeatures int     `yaml:"num_features"`
	FrameLength float64 `yaml:"frame_length"`
	FrameShift  float64 `yaml:"frame_shift"`
	StorageType string  `yaml:"storage_type"`
	StoragePath string  `yaml:"storage_path"`
}

// End returns the end of the covered extent in the recording
// timeline.
func (f *Features) End() float64 {
	return f.Start + f.Duration
}

// Load reads the frame rows covering [start, start+duration), both in
// the recording timeline. A non-empty rootDir is prefixed to the
// storage path. The window must lie inside the stored extent; this is
// where an out-of-range cut window finally surfaces.
func (f *Features) Load(rootDir string, start, duration float64) ([][]float64, error) {
	if f.StorageType != StorageGob {
		return nil, fmt.Errorf("unsupported feature storage type %q", f.StorageType)
	}
	path := f.StoragePath
	if rootDir != "" {
		path = filepath.Join(rootDir, path)
	}
	matrix, err := ReadMatrix(path)
	if err != nil {
		return nil, err
	}
	first := int(math.Round((start - f.Start) / f.FrameShift))
	count := int(math.Round(duration / f.FrameShift))
	if first < 0 || count <= 0 || first+count > len(matrix) {
		return nil, fmt.Errorf("window [%.3f, %.3f) outside stored extent [%.3f, %.3f) of %s",
			start, start+duration, f.Start, f.End(), path)
	}
	return matrix[first : first+count], nil
}

// Lookup finds the feature matrix covering a window of one recording
// channel. Both the in-memory manifest Set and the SQLite Index
// satisfy it.
type Lookup interface {
	Find(recordingID string, channelID int, start, duration float64) (*Features, error)
}

// Set is an in-memory feature manifest.
type Set struct {
	Features []*Features
}

var _ Lookup = (*Set)(nil)

// Add appends manifest entries.
func (s *Set) Add(fs ...*Features) {
	s.Features = append(s.Features, fs...)
}

// Len returns the number of manifest entries.
func (s *Set) Len() int {
	return len(s.Features)
}

// Find returns the first entry for the recording channel whose extent
// covers [start, start+duration] within a small tolerance.
func (s *Set) Find(recordingID string, channelID int, start, duration float64) (*Features, error) {
	for _, f := range s.Features {
		if f.RecordingID != recordingID || f.ChannelID != channelID {
			continue
		}
		if f.Start <= start+coverageTolerance && start+duration <= f.End()+coverageTolerance {
			return f, nil
		}
	}
	return nil, fmt.Errorf("no features cover %s channel %d window [%.3f, %.3f): %w",
		recordingID, channelID, start, start+duration, ErrNotFound)
}

// FromYAML reads a feature manifest from a YAML file.
func FromYAML(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading feature manifest: %w", err)
	}
	var feats []*Features
	if err := yaml.Unmarshal(data, &feats); err != nil {
		return nil, fmt.Errorf("parsing feature manifest %s: %w", path, err)
	}
	return &Set{Features: feats}, nil
}

// ToYAML writes the manifest to a YAML file.
func (s *Set) ToYAML(path string) error {
	data, err := yaml.Marshal(s.Features)
	if err != nil {
		return fmt.Errorf("encoding feature manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing feature manifest: %w", err)
	}
	return nil
}
