package cutset

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// LoadFeatures materializes the overlay. Both operands are loaded
// recursively, padded to a common length, then combined: the right
// operand is shifted forward by the offset converted to whole frames
// and gain-scaled where both operands overlap, and frames outside
// one operand's extent take the other operand's values unscaled. The
// result always has round(duration/frameShift) rows. Operand load
// failures are returned exactly as produced.
func (m *Mix) LoadFeatures(rootDir string) ([][]float64, error) {
	left, right, err := m.resolve()
	if err != nil {
		return nil, err
	}

	leftLen, leftShift, err := left.CutFraming()
	if err != nil {
		return nil, err
	}
	rightLen, rightShift, err := right.CutFraming()
	if err != nil {
		return nil, err
	}
	if leftLen != rightLen || leftShift != rightShift {
		return nil, fmt.Errorf("mix %s: mismatched framing: left %g/%g, right %g/%g",
			m.ID, leftLen, leftShift, rightLen, rightShift)
	}

	leftFeats, err := left.LoadFeatures(rootDir)
	if err != nil {
		return nil, err
	}
	rightFeats, err := right.LoadFeatures(rootDir)
	if err != nil {
		return nil, err
	}
	if len(leftFeats) == 0 || len(rightFeats) == 0 {
		return nil, fmt.Errorf("mix %s: operand features are empty", m.ID)
	}
	if len(leftFeats[0]) != len(rightFeats[0]) {
		return nil, fmt.Errorf("mix %s: mismatched feature dimensions %d and %d",
			m.ID, len(leftFeats[0]), len(rightFeats[0]))
	}

	duration, err := m.CutDuration()
	if err != nil {
		return nil, err
	}

	leftFeats, rightFeats = padShorter(leftFeats, rightFeats)
	out := overlayFeatures(leftFeats, rightFeats, m.OffsetRightBy, m.SNR, leftShift)
	return fitRows(out, int(math.Round(duration/leftShift))), nil
}

// padShorter appends zero rows to the shorter matrix until both have
// the same row count. Inputs are not modified.
func padShorter(a, b [][]float64) ([][]float64, [][]float64) {
	if len(a) == len(b) {
		return a, b
	}
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	return padRows(a, n), padRows(b, n)
}

func padRows(matrix [][]float64, n int) [][]float64 {
	if len(matrix) >= n {
		return matrix
	}
	width := 0
	if len(matrix) > 0 {
		width = len(matrix[0])
	}
	out := make([][]float64, n)
	copy(out, matrix)
	for i := len(matrix); i < n; i++ {
		out[i] = make([]float64, width)
	}
	return out
}

// overlayFeatures sums left with right shifted by offset seconds.
// Both matrices must have the same row count; the workspace spans
// the full shifted extent. The snr gain applies to right only where
// left also has rows; the sole-right tail is copied as-is.
func overlayFeatures(left, right [][]float64, offset, snr, frameShift float64) [][]float64 {
	shift := int(math.Round(offset / frameShift))
	gain := math.Pow(10, -snr/10)
	n := len(left)
	width := len(left[0])

	out := make([][]float64, shift+n)
	for i := range out {
		out[i] = make([]float64, width)
	}
	for i, row := range left {
		copy(out[i], row)
	}
	for i, row := range right {
		if j := shift + i; j < n {
			floats.AddScaled(out[j], gain, row)
		} else {
			copy(out[j], row)
		}
	}
	return out
}

// fitRows trims or zero-extends matrix to exactly n rows.
func fitRows(matrix [][]float64, n int) [][]float64 {
	if n < 0 {
		n = 0
	}
	if len(matrix) > n {
		return matrix[:n]
	}
	return padRows(matrix, n)
}
