package cutset

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/speechkit/cutset/pkg/cutset/supervision"
)

// Mix is a derived cut: the lazy overlay of two other cuts named by
// id. A Mix owns no numeric data and never embeds its operands; they
// are resolved through the Set it is bound to, fresh on every
// access. Operands may themselves be mixes, so arbitrarily deep
// graphs materialize transitively.
type Mix struct {
	ID            string  `yaml:"id"`
	LeftCutID     string  `yaml:"left_cut_id"`
	RightCutID    string  `yaml:"right_cut_id"`
	OffsetRightBy float64 `yaml:"offset_right_by"`
	SNR           float64 `yaml:"snr"`

	source *Set
}

func newMix(leftID, rightID string, offsetRightBy, snr float64) *Mix {
	return &Mix{
		ID:            uuid.New().String(),
		LeftCutID:     leftID,
		RightCutID:    rightID,
		OffsetRightBy: offsetRightBy,
		SNR:           snr,
	}
}

// Bind records the set used to resolve operand ids and returns the
// receiver for chaining. Rebinding to a different set is allowed;
// operands only have to resolve at access time. Binding is the one
// mutation a Mix permits, so concurrent Bind calls on the same Mix
// are not safe.
func (m *Mix) Bind(s *Set) *Mix {
	m.source = s
	return m
}

func (m *Mix) resolve() (Cut, Cut, error) {
	if m.source == nil {
		return nil, nil, fmt.Errorf("mix %s: %w", m.ID, ErrNotBound)
	}
	left, ok := m.source.Get(m.LeftCutID)
	if !ok {
		return nil, nil, fmt.Errorf("mix %s: left operand %q: %w", m.ID, m.LeftCutID, ErrCutNotFound)
	}
	right, ok := m.source.Get(m.RightCutID)
	if !ok {
		return nil, nil, fmt.Errorf("mix %s: right operand %q: %w", m.ID, m.RightCutID, ErrCutNotFound)
	}
	return left, right, nil
}

func (m *Mix) CutID() string {
	return m.ID
}

// CutDuration is the overlay extent: the longer of the left operand
// and the shifted right operand.
func (m *Mix) CutDuration() (float64, error) {
	left, right, err := m.resolve()
	if err != nil {
		return 0, err
	}
	leftDur, err := left.CutDuration()
	if err != nil {
		return 0, err
	}
	rightDur, err := right.CutDuration()
	if err != nil {
		return 0, err
	}
	return math.Max(leftDur, m.OffsetRightBy+rightDur), nil
}

// CutSupervisions concatenates the operands' supervisions, left
// first. The right operand's supervisions keep their own timing; the
// mix offset is not applied to them.
func (m *Mix) CutSupervisions() ([]supervision.Segment, error) {
	left, right, err := m.resolve()
	if err != nil {
		return nil, err
	}
	leftSups, err := left.CutSupervisions()
	if err != nil {
		return nil, err
	}
	rightSups, err := right.CutSupervisions()
	if err != nil {
		return nil, err
	}
	sups := make([]supervision.Segment, 0, len(leftSups)+len(rightSups))
	sups = append(sups, leftSups...)
	sups = append(sups, rightSups...)
	return sups, nil
}

// CutFraming reports the left operand's framing. LoadFeatures
// separately requires both operands to agree.
func (m *Mix) CutFraming() (float64, float64, error) {
	left, _, err := m.resolve()
	if err != nil {
		return 0, 0, err
	}
	return left.CutFraming()
}

// Overlay mixes other into this mix, with the same contract as on
// Segment.
func (m *Mix) Overlay(other Cut, offsetOtherBy, snr float64) *Mix {
	return newMix(m.ID, other.CutID(), offsetOtherBy, snr)
}

// Append places other right after this mix ends. Unlike on Segment
// it can fail, because the mix duration requires operand resolution.
func (m *Mix) Append(other Cut, snr float64) (*Mix, error) {
	duration, err := m.CutDuration()
	if err != nil {
		return nil, err
	}
	return m.Overlay(other, duration, snr), nil
}
