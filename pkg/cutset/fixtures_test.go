package cutset

import (
	"fmt"
	"math"
	"path/filepath"
	"testing"

	"github.com/speechkit/cutset/pkg/cutset/features"
	"github.com/speechkit/cutset/pkg/cutset/supervision"
	"github.com/stretchr/testify/require"
)

const (
	testFrameLength = 0.025
	testFrameShift  = 0.01
	testNumFeatures = 4
)

func constantMatrix(rows, cols int, fill float64) [][]float64 {
	m := make([][]float64, rows)
	for i := range m {
		m[i] = make([]float64, cols)
		for j := range m[i] {
			m[i][j] = fill
		}
	}
	return m
}

// writeTestFeatures stores a constant-valued matrix under dir and
// returns a manifest entry pointing at it with a dir-relative path.
func writeTestFeatures(t *testing.T, dir, recordingID string, channel int, start, duration, fill float64) *features.Features {
	t.Helper()
	numFrames := int(math.Round(duration / testFrameShift))
	rel := fmt.Sprintf("%s_ch%d_%g.gob", recordingID, channel, start)
	err := features.WriteMatrix(filepath.Join(dir, rel), constantMatrix(numFrames, testNumFeatures, fill))
	require.NoError(t, err)
	return &features.Features{
		RecordingID: recordingID,
		ChannelID:   channel,
		Start:       start,
		Duration:    duration,
		Type:        features.FbankType,
		NumFrames:   numFrames,
		NumFeatures: testNumFeatures,
		FrameLength: testFrameLength,
		FrameShift:  testFrameShift,
		StorageType: features.StorageGob,
		StoragePath: rel,
	}
}

// testSegment builds a segment cut over freshly written features.
func testSegment(t *testing.T, dir, recordingID string, channel int, start, duration, fill float64, sups ...supervision.Segment) *Segment {
	t.Helper()
	feats := writeTestFeatures(t, dir, recordingID, channel, start, duration, fill)
	return NewSegment(channel, start, duration, feats, sups)
}

func sup(id string, start, duration float64) supervision.Segment {
	return supervision.Segment{
		ID:          id,
		RecordingID: "rec",
		Start:       start,
		Duration:    duration,
		Text:        "text of " + id,
	}
}
