package pmap

import (
	"math/rand"
	"testing"
)

type intKey int64

func (k intKey) Compare(o intKey) int {
	switch {
	case k < o:
		return -1
	case k > o:
		return 1
	default:
		return 0
	}
}
func (k intKey) Low() int64  { return int64(k) }
func (k intKey) High() int64 { return int64(k) + 1 }

type intVal int64

func (v intVal) Hash() uint64 { return uint64(v) * 0x9E3779B97F4A7C15 }

func buildTree(t *testing.T, cache *Cache[intKey, intVal], keys []int64) Tree[intKey, intVal] {
	t.Helper()
	var tree Tree[intKey, intVal]
	for _, k := range keys {
		tree = Insert(tree, cache, intKey(k), intVal(k*2))
	}
	return tree
}

func TestInsertFindRoundTrip(t *testing.T) {
	cache := NewCache[intKey, intVal]()
	tree := buildTree(t, cache, []int64{5, 3, 8, 1, 4, 7, 9, 2, 6})
	for _, k := range []int64{1, 2, 3, 4, 5, 6, 7, 8, 9} {
		v, ok := tree.FindExact(intKey(k))
		if !ok || v != intVal(k*2) {
			t.Fatalf("FindExact(%d) = %v, %v; want %d, true", k, v, ok, k*2)
		}
	}
	if _, ok := tree.FindExact(intKey(100)); ok {
		t.Fatalf("FindExact(100) unexpectedly found")
	}
	if tree.Len() != 9 {
		t.Fatalf("Len() = %d, want 9", tree.Len())
	}
}

func TestEraseRemovesKeyAndPreservesOthers(t *testing.T) {
	cache := NewCache[intKey, intVal]()
	tree := buildTree(t, cache, []int64{5, 3, 8, 1, 4, 7, 9, 2, 6})
	tree = Erase(tree, cache, intKey(4))
	if _, ok := tree.FindExact(intKey(4)); ok {
		t.Fatalf("key 4 still present after Erase")
	}
	if tree.Len() != 8 {
		t.Fatalf("Len() = %d, want 8", tree.Len())
	}
	for _, k := range []int64{1, 2, 3, 5, 6, 7, 8, 9} {
		if _, ok := tree.FindExact(intKey(k)); !ok {
			t.Fatalf("key %d missing after unrelated erase", k)
		}
	}
}

func TestEraseAbsentKeyIsNoop(t *testing.T) {
	cache := NewCache[intKey, intVal]()
	tree := buildTree(t, cache, []int64{1, 2, 3})
	after := Erase(tree, cache, intKey(42))
	if !tree.Equal(after) {
		t.Fatalf("erasing an absent key changed the tree")
	}
}

func TestOriginalTreeUnaffectedByEdits(t *testing.T) {
	cache := NewCache[intKey, intVal]()
	tree := buildTree(t, cache, []int64{1, 2, 3})
	tree2 := Insert(tree, cache, intKey(4), intVal(40))
	if _, ok := tree.FindExact(intKey(4)); ok {
		t.Fatalf("Insert mutated the original tree")
	}
	if _, ok := tree2.FindExact(intKey(4)); !ok {
		t.Fatalf("Insert on the new tree lost key 4")
	}
}

func TestHashConsingCollapsesEqualTrees(t *testing.T) {
	cache := NewCache[intKey, intVal]()
	order1 := buildTree(t, cache, []int64{1, 2, 3, 4, 5})
	order2 := buildTree(t, cache, []int64{5, 4, 3, 2, 1})
	if !order1.Equal(order2) {
		t.Fatalf("trees with the same elements in different insertion order compare unequal")
	}
}

func TestFindAllOverlapping(t *testing.T) {
	cache := NewCache[rangeKey, intVal]()
	var tree Tree[rangeKey, intVal]
	ranges := []rangeKey{{0, 4}, {4, 8}, {10, 20}, {15, 16}, {100, 200}}
	for i, r := range ranges {
		tree = Insert(tree, cache, r, intVal(i))
	}
	got := FindAllOverlapping[rangeKey, intVal](tree, 5, 16)
	wantLo := map[int64]bool{4: true, 10: true, 15: true}
	if len(got) != len(wantLo) {
		t.Fatalf("FindAllOverlapping returned %d entries, want %d (%v)", len(got), len(wantLo), got)
	}
	for _, e := range got {
		if !wantLo[e.Key.lo] {
			t.Fatalf("unexpected overlapping entry %+v", e.Key)
		}
	}
}

type rangeKey struct{ lo, hi int64 }

func (r rangeKey) Compare(o rangeKey) int {
	switch {
	case r.lo < o.lo:
		return -1
	case r.lo > o.lo:
		return 1
	default:
		return 0
	}
}
func (r rangeKey) Low() int64  { return r.lo }
func (r rangeKey) High() int64 { return r.hi }

func TestRandomizedInsertEraseAgreesWithMap(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	cache := NewCache[intKey, intVal]()
	var tree Tree[intKey, intVal]
	model := make(map[int64]int64)

	for i := 0; i < 2000; i++ {
		k := rng.Int63n(200)
		if rng.Intn(2) == 0 {
			tree = Insert(tree, cache, intKey(k), intVal(k))
			model[k] = k
		} else {
			tree = Erase(tree, cache, intKey(k))
			delete(model, k)
		}
	}

	if tree.Len() != len(model) {
		t.Fatalf("tree has %d entries, model has %d", tree.Len(), len(model))
	}
	for k, v := range model {
		got, ok := tree.FindExact(intKey(k))
		if !ok || int64(got) != v {
			t.Fatalf("FindExact(%d) = %v, %v; want %d, true", k, got, ok, v)
		}
	}
	prev := int64(-1 << 62)
	tree.Each(func(e Entry[intKey, intVal]) {
		if int64(e.Key) <= prev {
			t.Fatalf("Each produced out-of-order keys")
		}
		prev = int64(e.Key)
	})
}
