// Package audio reads WAV recordings and tracks their metadata in a
// manifest. Feature extraction consumes normalized per-channel
// samples produced here.
package audio

import (
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"gopkg.in/yaml.v3"
)

// Recording describes one WAV file on disk.
type Recording struct {
	ID          string  `yaml:"id"`
	Path        string  `yaml:"path"`
	SampleRate  int     `yaml:"sample_rate"`
	NumChannels int     `yaml:"num_channels"`
	BitDepth    int     `yaml:"bit_depth"`
	Duration    float64 `yaml:"duration"`
}

// ReadRecording opens a WAV file and captures its format metadata.
// The recording id defaults to the file name without extension.
func ReadRecording(path string) (*Recording, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening recording: %w", err)
	}
	defer file.Close()

	decoder := wav.NewDecoder(file)
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("invalid WAV file: %s", path)
	}
	duration, err := decoder.Duration()
	if err != nil {
		return nil, fmt.Errorf("reading duration of %s: %w", path, err)
	}

	base := filepath.Base(path)
	return &Recording{
		ID:          strings.TrimSuffix(base, filepath.Ext(base)),
		Path:        path,
		SampleRate:  int(decoder.SampleRate),
		NumChannels: int(decoder.NumChans),
		BitDepth:    int(decoder.BitDepth),
		Duration:    duration.Seconds(),
	}, nil
}

// Samples decodes the full PCM stream and returns the requested
// channel normalized to [-1, 1).
func (r *Recording) Samples(channel int) ([]float64, error) {
	if channel < 0 || channel >= r.NumChannels {
		return nil, fmt.Errorf("recording %s has no channel %d", r.ID, channel)
	}
	file, err := os.Open(r.Path)
	if err != nil {
		return nil, fmt.Errorf("opening recording: %w", err)
	}
	defer file.Close()

	decoder := wav.NewDecoder(file)
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("invalid WAV file: %s", r.Path)
	}

	total := int(math.Round(r.Duration * float64(r.SampleRate)))
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: r.NumChannels,
			SampleRate:  r.SampleRate,
		},
		Data:           make([]int, total*r.NumChannels),
		SourceBitDepth: r.BitDepth,
	}
	n, err := decoder.PCMBuffer(buf)
	if err != nil {
		return nil, fmt.Errorf("reading samples from %s: %w", r.Path, err)
	}

	maxVal := float64(int(1) << (uint(r.BitDepth) - 1))
	samples := make([]float64, 0, n/r.NumChannels+1)
	for i := channel; i < n; i += r.NumChannels {
		samples = append(samples, float64(buf.Data[i])/maxVal)
	}
	return samples, nil
}

// Set is a manifest of recordings.
type Set struct {
	Recordings []*Recording
}

// Len returns the number of recordings.
func (s *Set) Len() int {
	return len(s.Recordings)
}

// Scan walks dir and reads every WAV file found, in walk order. Any
// unreadable WAV fails the scan.
func Scan(dir string) (*Set, error) {
	set := &Set{}
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".wav") {
			return nil
		}
		rec, err := ReadRecording(path)
		if err != nil {
			return err
		}
		set.Recordings = append(set.Recordings, rec)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}
	return set, nil
}

// FromYAML reads a recording manifest.
func FromYAML(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading recording manifest: %w", err)
	}
	var recordings []*Recording
	if err := yaml.Unmarshal(data, &recordings); err != nil {
		return nil, fmt.Errorf("parsing recording manifest %s: %w", path, err)
	}
	return &Set{Recordings: recordings}, nil
}

// ToYAML writes the recording manifest.
func (s *Set) ToYAML(path string) error {
	data, err := yaml.Marshal(s.Recordings)
	if err != nil {
		return fmt.Errorf("encoding recording manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing recording manifest: %w", err)
	}
	return nil
}
