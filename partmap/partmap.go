// Package partmap implements PartMap (spec.md §3 "Address-split map"): a
// persistent mapping from a linearly-ordered key space to values via split
// points. A point P between split points inherits the value of the
// largest split <= P, else the default.
//
// Backed by github.com/google/btree (the ordered-set primitive this
// program already depends on for comment.Database, see DESIGN.md) for its
// B-tree's cheap ascending range iteration, which Bounds and ClearRange
// both need. The split-point/default-value shape follows the generic
// persistent-table convention of gaissmai-bart's Table[V] in the retrieval
// pack (a generic ordered container keyed by a linearly ordered type),
// adapted here to a default-filled split map instead of a sparse trie.
package partmap

import "github.com/google/btree"

// Key is the constraint on PartMap's key type: anything with a natural
// total order, matching the address-offset / program-point style keys the
// engine splits on (spec.md never restricts PartMap to addresses
// specifically — it is used wherever a linear key space needs
// interval-style defaulting).
type Key interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr |
		~float32 | ~float64 | ~string
}

type split[K Key, V any] struct {
	key K
	val V
}

func less[K Key, V any](a, b split[K, V]) bool { return a.key < b.key }

// Map is a PartMap[K, V]: a default value plus a btree.BTreeG of split
// points. The zero Map is not usable; construct with New.
type Map[K Key, V any] struct {
	def  V
	tree *btree.BTreeG[split[K, V]]
}

// New constructs an empty PartMap whose unsplit range reads as def.
func New[K Key, V any](def V) *Map[K, V] {
	return &Map[K, V]{def: def, tree: btree.NewG[split[K, V]](32, less[K, V])}
}

// Get returns the value at key k: the value of the largest split <= k, or
// the default if no split is <= k.
func (m *Map[K, V]) Get(k K) V {
	v, _, found := m.lowerSplit(k)
	if !found {
		return m.def
	}
	return v
}

// lowerSplit returns the split with the largest key <= k, if any.
func (m *Map[K, V]) lowerSplit(k K) (val V, key K, found bool) {
	m.tree.DescendLessOrEqual(split[K, V]{key: k}, func(s split[K, V]) bool {
		val, key, found = s.val, s.key, true
		return false // stop after the first (largest <= k)
	})
	return
}

// upperSplit returns the split with the smallest key > k, if any.
func (m *Map[K, V]) upperSplit(k K) (key K, found bool) {
	m.tree.AscendGreaterOrEqual(split[K, V]{key: k}, func(s split[K, V]) bool {
		if s.key == k {
			return true // keep going; we want strictly greater than k
		}
		key, found = s.key, true
		return false
	})
	return
}

// Split introduces a split at k if one doesn't already exist, copying the
// value currently reaching k (Get(k) before the call). Idempotent:
// split(p); split(p) behaves identically to a single split(p) (§8
// "PartMap idempotence").
func (m *Map[K, V]) Split(k K) {
	if _, key, found := m.lowerSplit(k); found && key == k {
		return // already a split here; idempotent no-op
	}
	m.tree.ReplaceOrInsert(split[K, V]{key: k, val: m.Get(k)})
}

// SplitAndSet introduces (or overwrites) a split at k with value v.
func (m *Map[K, V]) SplitAndSet(k K, v V) {
	m.tree.ReplaceOrInsert(split[K, V]{key: k, val: v})
}

// ClearRange removes every split key in [lo, hi), then — if no split
// remains exactly at hi — introduces one there holding the value that
// reached hi before the clear, so every point >= hi keeps reading
// unchanged. No split is introduced at lo, and every split below lo is left
// untouched. A split exactly at lo is removed with the rest, so lo then
// reads the value of the nearest split below it (or the default); when no
// split sat at lo, lo keeps the value that reached it before the call.
func (m *Map[K, V]) ClearRange(lo, hi K) {
	preserved := m.Get(hi)
	hiWasSplit := false
	if _, key, found := m.lowerSplit(hi); found && key == hi {
		hiWasSplit = true
	}

	var toRemove []K
	m.tree.AscendRange(split[K, V]{key: lo}, split[K, V]{key: hi}, func(s split[K, V]) bool {
		toRemove = append(toRemove, s.key)
		return true
	})
	for _, k := range toRemove {
		m.tree.Delete(split[K, V]{key: k})
	}

	if !hiWasSplit {
		m.tree.ReplaceOrInsert(split[K, V]{key: hi, val: preserved})
	}
}

// Bounds returns the value at k, the nearest split key <= k (lowerOK
// false if none), and the nearest split key > k (upperOK false if none).
func (m *Map[K, V]) Bounds(k K) (val V, lower K, lowerOK bool, upper K, upperOK bool) {
	v, lk, found := m.lowerSplit(k)
	if found {
		val, lower, lowerOK = v, lk, true
	} else {
		val = m.def
	}
	uk, ufound := m.upperSplit(k)
	if ufound {
		upper, upperOK = uk, true
	}
	return
}

// Len returns the number of explicit split points (not counting the
// implicit default-filled range before the first split).
func (m *Map[K, V]) Len() int { return m.tree.Len() }

// Splits returns every explicit split key in ascending order.
func (m *Map[K, V]) Splits() []K {
	out := make([]K, 0, m.tree.Len())
	m.tree.Ascend(func(s split[K, V]) bool {
		out = append(out, s.key)
		return true
	})
	return out
}
