package features

import (
	"errors"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// FbankType identifies mel filterbank energy features. Energies are
// kept linear, not log-compressed, so matrices can be summed when
// cuts are mixed.
const FbankType = "fbank"

// Config holds feature extraction parameters. Frame length and shift
// are seconds, matching how framing appears in manifests.
type Config struct {
	SampleRate  int
	FrameLength float64
	FrameShift  float64
	NumMels     int
}

// Option adjusts the extractor configuration.
type Option func(*Config)

// WithSampleRate sets the input sample rate in Hz.
func WithSampleRate(hz int) Option {
	return func(c *Config) { c.SampleRate = hz }
}

// WithFrameLength sets the analysis window length in seconds.
func WithFrameLength(sec float64) Option {
	return func(c *Config) { c.FrameLength = sec }
}

// WithFrameShift sets the hop between frames in seconds.
func WithFrameShift(sec float64) Option {
	return func(c *Config) { c.FrameShift = sec }
}

// WithNumMels sets the number of mel filters.
func WithNumMels(n int) Option {
	return func(c *Config) { c.NumMels = n }
}

// Extractor computes mel filterbank energies from PCM samples.
type Extractor struct {
	cfg     Config
	window  []float64
	filters [][]float64
	fftSize int
}

// NewExtractor returns an extractor with 16 kHz, 25 ms window, 10 ms
// shift, 40 mel defaults, adjusted by opts.
func NewExtractor(opts ...Option) (*Extractor, error) {
	cfg := Config{
		SampleRate:  16000,
		FrameLength: 0.025,
		FrameShift:  0.01,
		NumMels:     40,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.SampleRate <= 0 {
		return nil, errors.New("sample rate must be positive")
	}
	if cfg.FrameLength <= 0 || cfg.FrameShift <= 0 {
		return nil, errors.New("frame length and shift must be positive")
	}
	if cfg.NumMels <= 0 {
		return nil, errors.New("mel filter count must be positive")
	}
	windowSize := int(math.Round(cfg.FrameLength * float64(cfg.SampleRate)))
	if windowSize < 1 {
		return nil, errors.New("frame length too short for sample rate")
	}
	fftSize := nextPow2(windowSize)
	return &Extractor{
		cfg:     cfg,
		window:  hamming(windowSize),
		filters: melFilterbank(cfg.NumMels, fftSize, cfg.SampleRate),
		fftSize: fftSize,
	}, nil
}

// Config returns the effective configuration.
func (e *Extractor) Config() Config {
	return e.cfg
}

// Extract computes one row of NumMels energies per frame. The row
// count is round(len(samples)/hop): the signal is zero-padded so
// trailing partial frames are kept rather than snipped.
func (e *Extractor) Extract(samples []float64) ([][]float64, error) {
	if len(samples) == 0 {
		return nil, errors.New("samples cannot be empty")
	}
	hop := int(math.Round(e.cfg.FrameShift * float64(e.cfg.SampleRate)))
	if hop < 1 {
		return nil, errors.New("frame shift too short for sample rate")
	}
	numFrames := int(math.Round(float64(len(samples)) / float64(hop)))
	if numFrames == 0 {
		return nil, errors.New("audio too short for frame shift")
	}

	windowSize := len(e.window)
	out := make([][]float64, 0, numFrames)
	frame := make([]float64, e.fftSize)
	for f := 0; f < numFrames; f++ {
		start := f * hop
		for i := 0; i < e.fftSize; i++ {
			frame[i] = 0
		}
		for i := 0; i < windowSize; i++ {
			if idx := start + i; idx < len(samples) {
				frame[i] = samples[idx] * e.window[i]
			}
		}
		spectrum := fft.FFTReal(frame)
		power := powerSpectrum(spectrum)
		out = append(out, applyFilterbank(e.filters, power))
	}
	return out, nil
}

// FeaturesFor describes an extracted matrix as a manifest entry
// covering one full recording channel.
func (e *Extractor) FeaturesFor(recordingID string, channelID int, duration float64, numFrames int, storagePath string) *Features {
	return &Features{
		RecordingID: recordingID,
		ChannelID:   channelID,
		Start:       0,
		Duration:    duration,
		Type:        FbankType,
		NumFrames:   numFrames,
		NumFeatures: e.cfg.NumMels,
		FrameLength: e.cfg.FrameLength,
		FrameShift:  e.cfg.FrameShift,
		StorageType: StorageGob,
		StoragePath: storagePath,
	}
}

func hamming(n int) []float64 {
	if n == 1 {
		return []float64{1}
	}
	w := make([]float64, n)
	for i := 0; i < n; i++ {
		w[i] = 0.54 - 0.46*math.Cos(2*math.Pi*float64(i)/float64(n-1))
	}
	return w
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// powerSpectrum keeps the non-negative frequency bins, fftSize/2+1 of
// them.
func powerSpectrum(spectrum []complex128) []float64 {
	half := len(spectrum)/2 + 1
	power := make([]float64, half)
	for i := 0; i < half; i++ {
		mag := cmplx.Abs(spectrum[i])
		power[i] = mag * mag
	}
	return power
}

func applyFilterbank(filters [][]float64, power []float64) []float64 {
	row := make([]float64, len(filters))
	for m, filter := range filters {
		sum := 0.0
		for k, w := range filter {
			if w != 0 {
				sum += w * power[k]
			}
		}
		row[m] = sum
	}
	return row
}

func hzToMel(hz float64) float64 {
	return 2595 * math.Log10(1+hz/700)
}

func melToHz(mel float64) float64 {
	return 700 * (math.Pow(10, mel/2595) - 1)
}

// melFilterbank builds numMels triangular filters over the
// non-negative FFT bins, spanning 0 Hz to Nyquist.
func melFilterbank(numMels, fftSize, sampleRate int) [][]float64 {
	numBins := fftSize/2 + 1
	highMel := hzToMel(float64(sampleRate) / 2)

	// Filter edge positions as fractional bin indices.
	points := make([]float64, numMels+2)
	for i := range points {
		mel := highMel * float64(i) / float64(numMels+1)
		points[i] = melToHz(mel) / float64(sampleRate) * float64(fftSize)
	}

	filters := make([][]float64, numMels)
	for m := 0; m < numMels; m++ {
		filter := make([]float64, numBins)
		left, center, right := points[m], points[m+1], points[m+2]
		for k := 0; k < numBins; k++ {
			b := float64(k)
			switch {
			case b > left && b < center:
				filter[k] = (b - left) / (center - left)
			case b == center:
				filter[k] = 1
			case b > center && b < right:
				filter[k] = (right - b) / (right - center)
			}
		}
		filters[m] = filter
	}
	return filters
}
