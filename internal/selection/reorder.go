package selection

import "github.com/mesh-intelligence/tagshelf/pkg/types"

// Move returns a copy of seq with the element at from relocated to index
// to, the position of the element it was dropped on. to == len(seq) moves
// the element to the end. from == to returns an unchanged copy. Indices
// outside the sequence return types.ErrInvalidIndex.
//
// With [A B C D], Move(0, 3) gives [B C D A] and Move(3, 0) gives [D A B C].
func Move[T any](seq []T, from, to int) ([]T, error) {
	n := len(seq)
	if from < 0 || from >= n || to < 0 || to > n {
		return nil, types.ErrInvalidIndex
	}
	gap := to
	if to > from && to < n {
		gap = to + 1
	}
	return DropAt(seq, from, gap)
}

// DropAt returns a copy of seq with the element at from removed and
// reinserted at gap, where gap counts the slots between elements: 0 is
// before the first element and len(seq) after the last. A gap to the right
// of from shifts left by one once the element is removed. Dropping into
// either gap next to the element returns an unchanged copy.
//
// With [A B C D], DropAt(0, 3) gives [B C A D] and DropAt(0, 4) gives
// [B C D A].
func DropAt[T any](seq []T, from, gap int) ([]T, error) {
	n := len(seq)
	if from < 0 || from >= n || gap < 0 || gap > n {
		return nil, types.ErrInvalidIndex
	}

	out := make([]T, 0, n)
	out = append(out, seq...)
	if gap > from {
		gap--
	}
	if gap == from {
		return out, nil
	}

	item := out[from]
	out = append(out[:from], out[from+1:]...)
	out = append(out[:gap], append([]T{item}, out[gap:]...)...)
	return out, nil
}
