package features

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFeatures(storagePath string) *Features {
	return &Features{
		RecordingID: "rec1",
		ChannelID:   0,
		Start:       5.0,
		Duration:    1.0,
		Type:        FbankType,
		NumFrames:   100,
		NumFeatures: 2,
		FrameLength: 0.025,
		FrameShift:  0.01,
		StorageType: StorageGob,
		StoragePath: storagePath,
	}
}

// writeRampMatrix stores rows rows of width columns where every value
// in row i equals i.
func writeRampMatrix(t *testing.T, path string, rows, width int) {
	t.Helper()
	matrix := make([][]float64, rows)
	for i := range matrix {
		row := make([]float64, width)
		for j := range row {
			row[j] = float64(i)
		}
		matrix[i] = row
	}
	require.NoError(t, WriteMatrix(path, matrix))
}

func TestMatrixRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feats", "m.gob")
	writeRampMatrix(t, path, 10, 3)

	matrix, err := ReadMatrix(path)
	require.NoError(t, err)
	require.Len(t, matrix, 10)
	assert.Equal(t, []float64{4, 4, 4}, matrix[4])
	assert.Equal(t, 240, MatrixBytes(matrix))
}

func TestLoadWindow(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "m.gob")
	writeRampMatrix(t, path, 100, 2)
	f := testFeatures(path)

	got, err := f.Load("", 5.25, 0.5)
	require.NoError(t, err)
	require.Len(t, got, 50)
	assert.Equal(t, 25.0, got[0][0])
	assert.Equal(t, 74.0, got[49][0])
}

func TestLoadWithRootDir(t *testing.T) {
	dir := t.TempDir()
	writeRampMatrix(t, filepath.Join(dir, "feats", "m.gob"), 100, 2)
	f := testFeatures(filepath.Join("feats", "m.gob"))

	got, err := f.Load(dir, 5.0, 1.0)
	require.NoError(t, err)
	assert.Len(t, got, 100)
}

func TestLoadOutsideExtent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "m.gob")
	writeRampMatrix(t, path, 100, 2)
	f := testFeatures(path)

	t.Run("before start", func(t *testing.T) {
		_, err := f.Load("", 4.9, 0.5)
		assert.ErrorContains(t, err, "outside stored extent")
	})
	t.Run("past end", func(t *testing.T) {
		_, err := f.Load("", 5.9, 0.2)
		assert.ErrorContains(t, err, "outside stored extent")
	})
	t.Run("empty window", func(t *testing.T) {
		_, err := f.Load("", 5.0, 0.0)
		assert.Error(t, err)
	})
}

func TestLoadUnknownStorageType(t *testing.T) {
	f := testFeatures("m.gob")
	f.StorageType = "npz"
	_, err := f.Load("", 5.0, 0.5)
	assert.ErrorContains(t, err, "storage type")
}

func TestSetFind(t *testing.T) {
	a := testFeatures("a.gob")
	b := testFeatures("b.gob")
	b.ChannelID = 1
	set := &Set{}
	set.Add(a, b)
	require.Equal(t, 2, set.Len())

	t.Run("hit returns the stored entry", func(t *testing.T) {
		got, err := set.Find("rec1", 0, 5.2, 0.5)
		require.NoError(t, err)
		assert.Same(t, a, got)
	})
	t.Run("channel mismatch", func(t *testing.T) {
		got, err := set.Find("rec1", 1, 5.2, 0.5)
		require.NoError(t, err)
		assert.Same(t, b, got)
	})
	t.Run("window not covered", func(t *testing.T) {
		_, err := set.Find("rec1", 0, 5.5, 1.0)
		assert.ErrorIs(t, err, ErrNotFound)
	})
	t.Run("unknown recording", func(t *testing.T) {
		_, err := set.Find("rec2", 0, 5.2, 0.5)
		assert.ErrorIs(t, err, ErrNotFound)
	})
	t.Run("tolerance absorbs drift", func(t *testing.T) {
		got, err := set.Find("rec1", 0, 4.9995, 1.0)
		require.NoError(t, err)
		assert.Same(t, a, got)
	})
}

func TestManifestYAMLRoundTrip(t *testing.T) {
	set := &Set{}
	set.Add(testFeatures("feats/a.gob"))
	second := testFeatures("feats/b.gob")
	second.ChannelID = 1
	second.NumFrames = 42
	set.Add(second)

	path := filepath.Join(t.TempDir(), "features.yml")
	require.NoError(t, set.ToYAML(path))

	got, err := FromYAML(path)
	require.NoError(t, err)
	require.Equal(t, set.Len(), got.Len())
	for i := range set.Features {
		assert.Equal(t, set.Features[i], got.Features[i])
	}
}
