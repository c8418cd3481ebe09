package cutset

import (
	"fmt"

	"github.com/speechkit/cutset/pkg/cutset/features"
	"github.com/speechkit/cutset/pkg/cutset/supervision"
)

// FromSupervisions builds one segment cut per supervision. Each cut
// spans exactly its supervision, carries it as the sole annotation,
// and points at the feature extent found through lookup. A
// supervision without covering features fails the whole build.
func FromSupervisions(sups []supervision.Segment, lookup features.Lookup) (*Set, error) {
	set := New()
	for _, sup := range sups {
		feats, err := lookup.Find(sup.RecordingID, sup.ChannelID, sup.Start, sup.Duration)
		if err != nil {
			return nil, fmt.Errorf("supervision %s: %w", sup.ID, err)
		}
		set.Add(NewSegment(sup.ChannelID, sup.Start, sup.Duration, feats, []supervision.Segment{sup}))
	}
	return set, nil
}

// DownmixStereo pairs the set's channel 0 cuts with its channel 1
// cuts positionally and overlays each pair at offset zero with no
// gain change. The returned set holds only the new mixes, already
// bound to the input set; union it with the input before serializing
// so the operands travel along.
func DownmixStereo(set *Set) (*Set, error) {
	var lefts, rights []*Segment
	for _, c := range set.Cuts() {
		seg, ok := c.(*Segment)
		if !ok {
			return nil, fmt.Errorf("downmix requires segment cuts, got %T %s", c, c.CutID())
		}
		switch seg.Channel {
		case 0:
			lefts = append(lefts, seg)
		case 1:
			rights = append(rights, seg)
		default:
			return nil, fmt.Errorf("downmix supports channels 0 and 1, cut %s has channel %d", seg.ID, seg.Channel)
		}
	}
	if len(lefts) != len(rights) {
		return nil, fmt.Errorf("downmix needs matching channel pairs, got %d left and %d right", len(lefts), len(rights))
	}

	mixes := New()
	for i := range lefts {
		mixes.Add(lefts[i].Overlay(rights[i], 0, 0))
	}
	return mixes.BindMixes(set), nil
}
