// Package value holds the runtime value shapes that Go has no builtin for:
// an ordered heterogeneous Tuple and an immutable FrozenSet.
package value

import "reflect"

// Tuple is an ordered, fixed sequence of heterogeneous values.
// It is distinct from a plain slice so that list and tuple descriptors
// can tell them apart.
type Tuple []any

// FrozenSet is an immutable set of values.
// The zero value is an empty set.
type FrozenSet struct {
	items []any
	index map[any]struct{}
}

// NewFrozenSet builds a set from items, dropping duplicates.
// Items that cannot be used as map keys are kept and compared with reflect.DeepEqual.
func NewFrozenSet(items ...any) FrozenSet {
	s := FrozenSet{index: make(map[any]struct{}, len(items))}
	for _, item := range items {
		if s.Contains(item) {
			continue
		}
		s.items = append(s.items, item)
		insert(s.index, item)
	}
	return s
}

// Len returns the number of members.
func (s FrozenSet) Len() int { return len(s.items) }

// Items returns a copy of the members in insertion order.
func (s FrozenSet) Items() []any {
	out := make([]any, len(s.items))
	copy(out, s.items)
	return out
}

// Contains reports whether v is a member of the set.
func (s FrozenSet) Contains(v any) bool {
	if found, ok := lookup(s.index, v); ok && found {
		return true
	}
	for _, item := range s.items {
		if reflect.DeepEqual(item, v) {
			return true
		}
	}
	return false
}

// lookup reports ok=false when v cannot be hashed.
func lookup(index map[any]struct{}, v any) (found, ok bool) {
	defer func() {
		if recover() != nil {
			found, ok = false, false
		}
	}()
	_, found = index[v]
	return found, true
}

func insert(index map[any]struct{}, v any) {
	defer func() { _ = recover() }()
	index[v] = struct{}{}
}
