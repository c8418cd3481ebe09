package cutset

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Kind tags in the serialized form.
const (
	kindSegment = "Segment"
	kindMix     = "Mix"
)

// Set is an id-keyed registry of cuts. Insertion order is preserved
// for iteration and serialization. A set is the namespace mix
// operands are resolved in; it assumes ids are freshly minted on
// every derivation, so cut graphs stay acyclic by construction.
type Set struct {
	cuts  map[string]Cut
	order []string
}

// New builds a set from the given cuts.
func New(cuts ...Cut) *Set {
	s := &Set{cuts: make(map[string]Cut)}
	for _, c := range cuts {
		s.Add(c)
	}
	return s
}

// Add inserts a cut. An existing id is replaced in place, keeping its
// position.
func (s *Set) Add(c Cut) {
	id := c.CutID()
	if _, ok := s.cuts[id]; !ok {
		s.order = append(s.order, id)
	}
	s.cuts[id] = c
}

// Get looks up a cut by id.
func (s *Set) Get(id string) (Cut, bool) {
	c, ok := s.cuts[id]
	return c, ok
}

// Len returns the number of cuts.
func (s *Set) Len() int {
	return len(s.order)
}

// Cuts returns the cuts in insertion order.
func (s *Set) Cuts() []Cut {
	out := make([]Cut, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.cuts[id])
	}
	return out
}

// Union merges two sets into a new one. On id collision the other
// set's cut wins while keeping the receiver's position; keeping ids
// disjoint is the caller's responsibility. Neither input is modified
// and mix bindings are left as they are.
func (s *Set) Union(other *Set) *Set {
	merged := New()
	for _, c := range s.Cuts() {
		merged.Add(c)
	}
	for _, c := range other.Cuts() {
		merged.Add(c)
	}
	return merged
}

// BindMixes binds every mix in the set to source and returns the
// receiver. The usual finalization step after assembly is binding a
// set to itself; binding to a different source set is equally valid
// when operands live elsewhere.
func (s *Set) BindMixes(source *Set) *Set {
	for _, c := range s.Cuts() {
		if m, ok := c.(*Mix); ok {
			m.Bind(source)
		}
	}
	return s
}

type segmentRecord struct {
	Type    string `yaml:"type"`
	Segment `yaml:",inline"`
}

type mixRecord struct {
	Type string `yaml:"type"`
	Mix  `yaml:",inline"`
}

// ToYAML writes every cut in insertion order, each record tagged with
// its kind, to a YAML file. Unset optional fields are omitted.
func (s *Set) ToYAML(path string) error {
	records := make([]interface{}, 0, s.Len())
	for _, c := range s.Cuts() {
		switch cut := c.(type) {
		case *Segment:
			records = append(records, segmentRecord{Type: kindSegment, Segment: *cut})
		case *Mix:
			records = append(records, mixRecord{Type: kindMix, Mix: *cut})
		default:
			return fmt.Errorf("cannot serialize cut %s of type %T", c.CutID(), c)
		}
	}
	data, err := yaml.Marshal(records)
	if err != nil {
		return fmt.Errorf("encoding cut set: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing cut set: %w", err)
	}
	return nil
}

// FromYAML reads a cut set written by ToYAML, dispatching each record
// on its kind tag. A record with an unknown tag fails the whole read.
// Mixes come back unbound; call BindMixes before using them.
func FromYAML(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading cut set: %w", err)
	}
	var nodes []yaml.Node
	if err := yaml.Unmarshal(data, &nodes); err != nil {
		return nil, fmt.Errorf("parsing cut set %s: %w", path, err)
	}

	set := New()
	for i := range nodes {
		var probe struct {
			Type string `yaml:"type"`
		}
		if err := nodes[i].Decode(&probe); err != nil {
			return nil, fmt.Errorf("reading kind of cut %d in %s: %w", i, path, err)
		}
		switch probe.Type {
		case kindSegment:
			var rec segmentRecord
			if err := nodes[i].Decode(&rec); err != nil {
				return nil, fmt.Errorf("parsing segment %d in %s: %w", i, path, err)
			}
			seg := rec.Segment
			set.Add(&seg)
		case kindMix:
			var rec mixRecord
			if err := nodes[i].Decode(&rec); err != nil {
				return nil, fmt.Errorf("parsing mix %d in %s: %w", i, path, err)
			}
			mix := rec.Mix
			set.Add(&mix)
		default:
			return nil, fmt.Errorf("unknown cut type %q in %s", probe.Type, path)
		}
	}
	return set, nil
}
