// Package selection holds the ordered, weighted tag selection that is
// exported as a prompt string.
//
// A Selection is a plain in-memory value. It keeps two invariants: no id is
// selected twice, and every weight belongs to a selected id. Persisting it is
// the caller's job.
package selection

import (
	"strings"

	"github.com/mesh-intelligence/tagshelf/pkg/types"
)

// Selection is an ordered list of tag snapshots plus a weight per entry.
// The zero value is an empty selection ready to use.
type Selection struct {
	tags    []types.Tag
	weights types.Weights
}

// New builds a selection from stored state. Later duplicates of an id are
// dropped, weights for unselected ids are pruned and weights are clamped
// into [0, types.MaxWeight].
func New(tags []types.Tag, weights types.Weights) *Selection {
	s := &Selection{weights: types.Weights{}}
	for _, t := range tags {
		s.Select(t)
	}
	for id, n := range weights {
		if s.Contains(id) {
			s.weights[id] = types.ClampWeight(n)
		}
	}
	return s
}

// Clone returns a deep copy.
func (s *Selection) Clone() *Selection {
	return &Selection{
		tags:    append([]types.Tag(nil), s.tags...),
		weights: s.weights.Clone(),
	}
}

// Tags returns a copy of the selected tags in export order.
func (s *Selection) Tags() []types.Tag {
	out := make([]types.Tag, len(s.tags))
	copy(out, s.tags)
	return out
}

// Weights returns a copy of the weight map.
func (s *Selection) Weights() types.Weights {
	return s.weights.Clone()
}

// Len returns the number of selected tags.
func (s *Selection) Len() int {
	return len(s.tags)
}

// IndexOf returns the position of id, or -1.
func (s *Selection) IndexOf(id string) int {
	for i, t := range s.tags {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// Contains reports whether id is selected.
func (s *Selection) Contains(id string) bool {
	return s.IndexOf(id) >= 0
}

// Weight returns the weight of id; unselected or unweighted ids weigh 0.
func (s *Selection) Weight(id string) int {
	return s.weights.Get(id)
}

// Select appends a snapshot of t with weight 0. It reports false and
// changes nothing when t.ID is already selected.
func (s *Selection) Select(t types.Tag) bool {
	if s.Contains(t.ID) {
		return false
	}
	if s.weights == nil {
		s.weights = types.Weights{}
	}
	s.tags = append(s.tags, t)
	s.weights[t.ID] = 0
	return true
}

// Deselect removes id and its weight. It reports whether id was selected.
func (s *Selection) Deselect(id string) bool {
	i := s.IndexOf(id)
	if i < 0 {
		return false
	}
	s.tags = append(s.tags[:i:i], s.tags[i+1:]...)
	delete(s.weights, id)
	return true
}

// Clear empties the selection and its weights.
func (s *Selection) Clear() {
	s.tags = nil
	s.weights = types.Weights{}
}

// SetWeight stores n, clamped to 0, as the weight of id.
// Returns types.ErrNotSelected when id is not selected and
// types.ErrInvalidWeight when n exceeds types.MaxWeight.
func (s *Selection) SetWeight(id string, n int) error {
	if !s.Contains(id) {
		return types.ErrNotSelected
	}
	if n > types.MaxWeight {
		return types.ErrInvalidWeight
	}
	s.weights[id] = types.ClampWeight(n)
	return nil
}

// AdjustWeight moves the weight of id one unit in the direction of delta,
// which must be +1 or -1, and returns the new weight. The weight stays
// within [0, types.MaxWeight].
func (s *Selection) AdjustWeight(id string, delta int) (int, error) {
	if delta != 1 && delta != -1 {
		return 0, types.ErrInvalidDelta
	}
	if !s.Contains(id) {
		return 0, types.ErrNotSelected
	}
	n := types.ClampWeight(s.weights[id] + delta)
	s.weights[id] = n
	return n, nil
}

// Reorder replaces the order with order, which must hold exactly the
// selected ids. Snapshots keep their stored content; only ids are read
// from order.
func (s *Selection) Reorder(order []string) error {
	if len(order) != len(s.tags) {
		return types.ErrInvalidOrder
	}
	byID := make(map[string]types.Tag, len(s.tags))
	for _, t := range s.tags {
		byID[t.ID] = t
	}
	next := make([]types.Tag, 0, len(order))
	for _, id := range order {
		t, ok := byID[id]
		if !ok {
			return types.ErrInvalidOrder
		}
		delete(byID, id)
		next = append(next, t)
	}
	s.tags = next
	return nil
}

// Move relocates the entry at from to to, following Move's index rules.
func (s *Selection) Move(from, to int) error {
	next, err := Move(s.tags, from, to)
	if err != nil {
		return err
	}
	s.tags = next
	return nil
}

// RenameCategory rewrites the category names of selected snapshots. With
// isMain set, every snapshot whose main category is oldName gets newName;
// otherwise snapshots under (main, oldName) get the new sub name. It
// returns the number of snapshots changed.
func (s *Selection) RenameCategory(main, oldName, newName string, isMain bool) int {
	n := 0
	for i := range s.tags {
		t := &s.tags[i]
		switch {
		case isMain && t.MainCategory == oldName:
			t.MainCategory = newName
			n++
		case !isMain && t.MainCategory == main && t.SubCategory == oldName:
			t.SubCategory = newName
			n++
		}
	}
	return n
}

// Encode renders the selection for export: each name wrapped in as many
// brace pairs as its weight, joined with ", ".
func (s *Selection) Encode() string {
	return Encode(s.tags, s.weights)
}

// Encode renders tags in order with their weights. A weight of n wraps the
// name in n "{" and n "}".
func Encode(tags []types.Tag, weights types.Weights) string {
	parts := make([]string, len(tags))
	for i, t := range tags {
		n := types.ClampWeight(weights.Get(t.ID))
		parts[i] = strings.Repeat("{", n) + t.Name + strings.Repeat("}", n)
	}
	return strings.Join(parts, ", ")
}

// TagRecords returns the selection as selected_tags store records.
func (s *Selection) TagRecords() []any {
	out := make([]any, len(s.tags))
	for i := range s.tags {
		t := s.tags[i]
		out[i] = &t
	}
	return out
}

// WeightRecords returns one tag_weights record per selected id, in
// selection order.
func (s *Selection) WeightRecords() []any {
	out := make([]any, len(s.tags))
	for i, t := range s.tags {
		out[i] = &types.Weight{ID: t.ID, Value: s.weights.Get(t.ID)}
	}
	return out
}
