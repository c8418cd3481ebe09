package cutset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/speechkit/cutset/pkg/cutset/supervision"
)

func TestSetAddAndOrder(t *testing.T) {
	a := NewSegment(0, 0, 1, nil, nil)
	b := NewSegment(0, 1, 1, nil, nil)
	c := NewSegment(0, 2, 1, nil, nil)
	set := New(a, b, c)

	assert.Equal(t, 3, set.Len())

	cuts := set.Cuts()
	require.Len(t, cuts, 3)
	assert.Equal(t, a.ID, cuts[0].CutID())
	assert.Equal(t, b.ID, cuts[1].CutID())
	assert.Equal(t, c.ID, cuts[2].CutID())

	got, ok := set.Get(b.ID)
	require.True(t, ok)
	assert.Same(t, b, got)

	_, ok = set.Get("nope")
	assert.False(t, ok)
}

func TestSetAddReplacesInPlace(t *testing.T) {
	a := NewSegment(0, 0, 1, nil, nil)
	b := NewSegment(0, 1, 1, nil, nil)
	set := New(a, b)

	replacement := &Segment{ID: a.ID, Start: 0, Duration: 9}
	set.Add(replacement)

	assert.Equal(t, 2, set.Len())
	cuts := set.Cuts()
	assert.Same(t, replacement, cuts[0])
	assert.Same(t, b, cuts[1])
}

func TestSetUnion(t *testing.T) {
	a := NewSegment(0, 0, 1, nil, nil)
	b := NewSegment(0, 1, 1, nil, nil)
	c := NewSegment(0, 2, 1, nil, nil)
	bNew := &Segment{ID: b.ID, Start: 1, Duration: 5}

	left := New(a, b)
	right := New(bNew, c)
	merged := left.Union(right)

	require.Equal(t, 3, merged.Len())
	cuts := merged.Cuts()
	assert.Same(t, a, cuts[0])
	assert.Same(t, bNew, cuts[1])
	assert.Same(t, c, cuts[2])

	// Inputs stay as they were.
	gotLeft, _ := left.Get(b.ID)
	assert.Same(t, b, gotLeft)
	assert.Equal(t, 2, left.Len())
	assert.Equal(t, 2, right.Len())

	merged.Add(NewSegment(0, 3, 1, nil, nil))
	assert.Equal(t, 2, left.Len())
}

func TestSetYAMLRoundTrip(t *testing.T) {
	dir := t.TempDir()
	a := testSegment(t, dir, "recA", 0, 0, 2, 1.0, sup("s1", 0.5, 1))
	b := testSegment(t, dir, "recB", 0, 0, 2, 0.5)
	m := a.Overlay(b, 1.0, 10)
	set := New(a, b, m)

	path := filepath.Join(dir, "cuts.yml")
	require.NoError(t, set.ToYAML(path))

	loaded, err := FromYAML(path)
	require.NoError(t, err)
	require.Equal(t, 3, loaded.Len())

	cuts := loaded.Cuts()
	assert.Equal(t, a.ID, cuts[0].CutID())
	assert.Equal(t, b.ID, cuts[1].CutID())
	assert.Equal(t, m.ID, cuts[2].CutID())

	gotA, ok := loaded.Get(a.ID)
	require.True(t, ok)
	require.IsType(t, &Segment{}, gotA)
	assert.Equal(t, *a, *gotA.(*Segment))

	gotM, ok := loaded.Get(m.ID)
	require.True(t, ok)
	require.IsType(t, &Mix{}, gotM)
	loadedMix := gotM.(*Mix)
	assert.Equal(t, m.LeftCutID, loadedMix.LeftCutID)
	assert.Equal(t, m.RightCutID, loadedMix.RightCutID)
	assert.Equal(t, 1.0, loadedMix.OffsetRightBy)
	assert.Equal(t, 10.0, loadedMix.SNR)

	// Deserialized mixes are unbound until told where to resolve.
	_, err = loadedMix.CutDuration()
	assert.ErrorIs(t, err, ErrNotBound)

	loaded.BindMixes(loaded)
	dur, err := loadedMix.CutDuration()
	require.NoError(t, err)
	assert.InDelta(t, 3.0, dur, 1e-9)

	rows, err := loadedMix.LoadFeatures(dir)
	require.NoError(t, err)
	assert.Len(t, rows, 300)
}

func TestSetYAMLKindTags(t *testing.T) {
	dir := t.TempDir()
	a := NewSegment(0, 0, 1, nil, nil)
	b := NewSegment(0, 0, 1, nil, nil)
	set := New(a, b, a.Overlay(b, 0, 0))

	path := filepath.Join(dir, "cuts.yml")
	require.NoError(t, set.ToYAML(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "type: Segment")
	assert.Contains(t, string(data), "type: Mix")
}

func TestSetYAMLOmitsEmptySupervisions(t *testing.T) {
	seg := NewSegment(0, 0, 1, nil, nil)
	path := filepath.Join(t.TempDir(), "cuts.yml")
	require.NoError(t, New(seg).ToYAML(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "supervisions:")
}

func TestSetYAMLDeterministic(t *testing.T) {
	dir := t.TempDir()
	a := NewSegment(0, 0, 1, nil, []supervision.Segment{sup("s1", 0, 1)})
	b := NewSegment(1, 0, 1, nil, nil)
	set := New(a, b, a.Overlay(b, 0.5, 3))

	first := filepath.Join(dir, "one.yml")
	second := filepath.Join(dir, "two.yml")
	require.NoError(t, set.ToYAML(first))
	require.NoError(t, set.ToYAML(second))

	one, err := os.ReadFile(first)
	require.NoError(t, err)
	two, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.Equal(t, one, two)
}

func TestFromYAMLUnknownKind(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cuts.yml")
	manifest := "- type: Spectrogram\n  id: x\n"
	require.NoError(t, os.WriteFile(path, []byte(manifest), 0644))

	_, err := FromYAML(path)
	assert.ErrorContains(t, err, `unknown cut type "Spectrogram"`)
}

func TestFromYAMLMissingFile(t *testing.T) {
	_, err := FromYAML(filepath.Join(t.TempDir(), "absent.yml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestBindMixesReturnsReceiver(t *testing.T) {
	a := NewSegment(0, 0, 1, nil, nil)
	b := NewSegment(0, 0, 1, nil, nil)
	set := New(a, b, a.Overlay(b, 0, 0))
	assert.Same(t, set, set.BindMixes(set))
}
