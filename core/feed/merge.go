package feed

import "strconv"

// Item is implemented by every feed entity. Key is the identity (id falling
// back to the legacy id, empty when neither is set); Same compares only the
// mutable field subset of two entities with equal keys.
type Item[T any] interface {
	Key() string
	Same(T) bool
}

// keyAt resolves the identity of an item, falling back to its position when
// the backend sent no usable id.
func keyAt[T Item[T]](item T, index int) string {
	if k := item.Key(); k != "" {
		return k
	}
	return "#" + strconv.Itoa(index)
}

// MergeOne merges a single-item push event into a list.
//
// If an item with the same identity exists and its mutable subset is
// unchanged, the input slice is returned untouched — callers skip the change
// notification entirely, and that reference stability is load-bearing for
// render skipping downstream, not an optimization. If the subset differs,
// the item is replaced in place in a fresh slice, preserving position.
// Unknown items are appended, or prepended when front is set (notifications
// are presented newest-first, messages oldest-first).
func MergeOne[T Item[T]](list []T, incoming T, front bool) ([]T, bool) {
	if key := incoming.Key(); key != "" {
		for i, existing := range list {
			if existing.Key() != key {
				continue
			}
			if existing.Same(incoming) {
				return list, false
			}
			next := make([]T, len(list))
			copy(next, list)
			next[i] = incoming
			return next, true
		}
	}

	if front {
		next := make([]T, 0, len(list)+1)
		next = append(next, incoming)
		return append(next, list...), true
	}
	next := make([]T, len(list), len(list)+1)
	copy(next, list)
	return append(next, incoming), true
}

// MergeList reconciles a bulk refresh against the local list. The local
// slice is replaced wholesale only when a pairwise difference (identity,
// mutable subset, or length) is found; otherwise the existing reference is
// kept so observers comparing by reference see no change.
func MergeList[T Item[T]](local, incoming []T) ([]T, bool) {
	if len(local) != len(incoming) {
		return incoming, true
	}
	for i := range local {
		if keyAt(local[i], i) != keyAt(incoming[i], i) {
			return incoming, true
		}
		if !local[i].Same(incoming[i]) {
			return incoming, true
		}
	}
	return local, false
}

// RemoveByKey drops the item with the given identity. The input slice is
// returned untouched when the key is absent.
func RemoveByKey[T Item[T]](list []T, key string) ([]T, bool) {
	if key == "" {
		return list, false
	}
	for i, item := range list {
		if item.Key() == key {
			next := make([]T, 0, len(list)-1)
			next = append(next, list[:i]...)
			return append(next, list[i+1:]...), true
		}
	}
	return list, false
}
