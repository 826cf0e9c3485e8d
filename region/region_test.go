package region

import (
	"math/rand"
	"testing"

	"github.com/sarchlab/vsax86/interval"
	"github.com/sarchlab/vsax86/pmap"
	"github.com/sarchlab/vsax86/valueset"
)

func newTestRegion(id int64, kind Kind, size int64) Region {
	cache := pmap.NewCache[siKey, vsVal]()
	return New(id, kind, interval.New(0, size, 1), cache)
}

func TestWriteThenReadRoundTripOnStrongHeapRegion(t *testing.T) {
	r := newTestRegion(3, StrongHeap, 64)
	addr := interval.New(8, 12, 4)
	r = r.Write(addr, valueset.Const(0x11223344), nil)
	got := r.Read(addr, nil, nil)
	v, ok := got.Lookup(valueset.GlobalRegion)
	if !ok {
		t.Fatalf("read did not find the global region entry")
	}
	iv, ok := v.ConstValue()
	if !ok || iv != 0x11223344 {
		t.Fatalf("read back %v, want constant 0x11223344", v)
	}
}

func TestWeakRegionJoinsOnRepeatedWrite(t *testing.T) {
	r := newTestRegion(5, WeakHeap, 64)
	addr := interval.New(4, 8, 4)
	r = r.Write(addr, valueset.Const(10), nil)
	r = r.Write(addr, valueset.Const(20), nil)
	got := r.Read(addr, nil, nil)
	si, _ := got.Lookup(valueset.GlobalRegion)
	if !si.Contains(10) || !si.Contains(20) {
		t.Fatalf("weak region write should join, got %v", si)
	}
}

func TestStrongRegionReplacesOnRepeatedWrite(t *testing.T) {
	r := newTestRegion(5, StrongHeap, 64)
	addr := interval.New(4, 8, 4)
	r = r.Write(addr, valueset.Const(10), nil)
	r = r.Write(addr, valueset.Const(20), nil)
	got := r.Read(addr, nil, nil)
	si, _ := got.Lookup(valueset.GlobalRegion)
	v, ok := si.ConstValue()
	if !ok || v != 20 {
		t.Fatalf("strong region write should replace, got %v", si)
	}
}

func TestOutOfBoundsReadReturnsBotAndWarns(t *testing.T) {
	r := newTestRegion(1, StrongStack, 16)
	rec := &recordingWarner{}
	got := r.Read(interval.New(100, 104, 4), nil, rec)
	if !got.IsBot() {
		t.Fatalf("out-of-bounds read should be Bot")
	}
	if len(rec.kinds) == 0 || rec.kinds[0] != "out-of-bounds-read" {
		t.Fatalf("expected an out-of-bounds-read warning, got %v", rec.kinds)
	}
}

func TestReadBeforeAnyWriteIsTopAndWarnsUninitialized(t *testing.T) {
	r := newTestRegion(3, StrongHeap, 64)
	rec := &recordingWarner{}
	got := r.Read(interval.New(4, 8, 4), nil, rec)
	if !got.IsTop() {
		t.Fatalf("uninitialized read should be Top")
	}
	if len(rec.kinds) == 0 || rec.kinds[0] != "uninitialized-read" {
		t.Fatalf("expected an uninitialized-read warning, got %v", rec.kinds)
	}
}

func TestDiscardFrameDropsEntriesAboveBoundary(t *testing.T) {
	r := newTestRegion(2, StrongStack, 1000)
	r = r.Write(interval.New(100, 104, 4), valueset.Const(1), nil)
	r = r.Write(interval.New(200, 204, 4), valueset.Const(2), nil)
	r = r.DiscardFrame(150)
	if _, ok := r.findExact(interval.New(100, 104, 4)); !ok {
		t.Fatalf("entry below the boundary should survive DiscardFrame")
	}
	if _, ok := r.findExact(interval.New(200, 204, 4)); ok {
		t.Fatalf("entry above the boundary should be dropped by DiscardFrame")
	}
}

func TestGetWeaklyUpdatableNeverWeakensRegister(t *testing.T) {
	r := newTestRegion(1, StrongRegister, 32)
	if w := r.GetWeaklyUpdatable(); w.Kind != StrongRegister {
		t.Fatalf("register region should never weaken, got %v", w.Kind)
	}
}

func TestGetWeaklyAndStronglyUpdatableRoundTrip(t *testing.T) {
	r := newTestRegion(3, StrongHeap, 32)
	weak := r.GetWeaklyUpdatable()
	if weak.Kind != WeakHeap {
		t.Fatalf("GetWeaklyUpdatable on strong heap = %v, want weak-heap", weak.Kind)
	}
	strong := weak.GetStronglyUpdatable()
	if strong.Kind != StrongHeap {
		t.Fatalf("GetStronglyUpdatable on weak heap = %v, want strong-heap", strong.Kind)
	}
}

func TestWriteAtOverlappingMisalignedAddressSplitsStoredEntry(t *testing.T) {
	r := newTestRegion(3, StrongHeap, 64)
	r = r.Write(interval.New(0, 8, 8), valueset.Const(0xAABBCCDD), nil)
	r = r.Write(interval.New(2, 4, 2), valueset.Const(0x1234), nil)
	// The write should not panic and should leave the region readable.
	got := r.Read(interval.New(2, 4, 2), nil, nil)
	if got.IsBot() {
		t.Fatalf("region became Bot after an overlapping split write")
	}
}

type recordingWarner struct {
	kinds []string
}

func (w *recordingWarner) Warn(kind string, addr *interval.SI, detail string) {
	w.kinds = append(w.kinds, kind)
}

func TestRandomizedWritesOnWeakRegionAlwaysSubsumeLastValue(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	r := newTestRegion(9, WeakHeap, 4096)
	var lastAddr *interval.SI
	var lastVal int64
	for i := 0; i < 2000; i++ {
		base := int64(rng.Intn(1000)) * 4
		addr := interval.New(base, base+4, 4)
		val := rng.Int63n(1 << 30)
		r = r.Write(addr, valueset.Const(val), nil)
		lastAddr, lastVal = addr, val
	}
	got := r.Read(lastAddr, nil, nil)
	if !got.IsTop() {
		if si, ok := got.Lookup(valueset.GlobalRegion); ok {
			if !si.Contains(lastVal) {
				t.Fatalf("read(lastAddr) = %v does not subsume last written value %d", si, lastVal)
			}
		}
	}
}
