package nbiopool

import (
	"bytes"
	"testing"

	"github.com/ZenulAbidin/xalloc"
)

func newTestAllocator(t *testing.T) *xalloc.Allocator {
	t.Helper()
	a, err := xalloc.New(xalloc.Config{
		Name:    "nbio",
		Classes: []xalloc.ClassConfig{{Size: 16}, {Size: 64}, {Size: 256}},
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(a.Destroy)
	return a
}

func TestMallocFree(t *testing.T) {
	a := newTestAllocator(t)
	p := New(a)

	pbuf := p.Malloc(40)
	if len(*pbuf) != 40 {
		t.Fatalf("length %v != 40", len(*pbuf))
	}
	if cap(*pbuf)+xalloc.HeaderSize != 64 {
		t.Fatalf("40-byte request landed in a %v class", cap(*pbuf)+xalloc.HeaderSize)
	}
	p.Free(pbuf)

	for _, s := range a.Stats() {
		if s.InUse != 0 {
			t.Fatalf("class %v leaked %v blocks", s.BlockSize, s.InUse)
		}
	}
}

func TestOversizeFallsBackToHeap(t *testing.T) {
	a := newTestAllocator(t)
	p := New(a)

	pbuf := p.Malloc(4096)
	if len(*pbuf) != 4096 {
		t.Fatalf("length %v != 4096", len(*pbuf))
	}
	// Freeing a heap fallback is a no-op, not a foreign-pointer crash.
	p.Free(pbuf)

	if stats := a.Stats(); len(stats) != 0 {
		t.Fatalf("oversize request created class pools: %+v", stats)
	}
}

func TestHeapFallbackNeverLooksPooled(t *testing.T) {
	a, err := xalloc.New(xalloc.Config{
		Classes:    []xalloc.ClassConfig{{Size: 16}, {Size: 64}},
		MaxClasses: 1,
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(a.Destroy)
	p := New(a)

	held := p.Malloc(10) // uses up the one allowed class pool

	// 60+4 is exactly the 64 class, so a plain make-backed fallback
	// would be indistinguishable from a pool payload.
	pbuf := p.Malloc(60)
	if len(*pbuf) != 60 {
		t.Fatalf("length %v != 60", len(*pbuf))
	}
	if p.classPayloadCap(cap(*pbuf)) {
		t.Fatalf("fallback capacity %v collides with a class size", cap(*pbuf))
	}
	p.Free(pbuf)

	stats := a.Stats()
	if len(stats) != 1 || stats[0].BlockSize != 16 || stats[0].InUse != 1 {
		t.Fatalf("freeing the fallback disturbed the pools: %+v", stats)
	}

	p.Free(held)
	if stats := a.Stats(); stats[0].InUse != 0 {
		t.Fatalf("pool buffer not returned: %+v", stats)
	}
}

func TestRealloc(t *testing.T) {
	a := newTestAllocator(t)
	p := New(a)

	pbuf := p.Malloc(10)
	copy(*pbuf, "0123456789")

	pbuf = p.Realloc(pbuf, 100)
	if len(*pbuf) != 100 {
		t.Fatalf("length %v != 100", len(*pbuf))
	}
	if string((*pbuf)[:10]) != "0123456789" {
		t.Fatal("content lost")
	}
	p.Free(pbuf)
}

func TestAppend(t *testing.T) {
	a := newTestAllocator(t)
	p := New(a)

	pbuf := p.Malloc(4)
	copy(*pbuf, "abcd")
	pbuf = p.Append(pbuf, 'e', 'f')
	if !bytes.Equal(*pbuf, []byte("abcdef")) {
		t.Fatalf("append result %q", *pbuf)
	}
	pbuf = p.AppendString(pbuf, "-and-more-than-the-class-holds")
	if !bytes.HasPrefix(*pbuf, []byte("abcdef-and-more")) {
		t.Fatalf("append result %q", *pbuf)
	}
	p.Free(pbuf)

	for _, s := range a.Stats() {
		if s.InUse != 0 {
			t.Fatalf("class %v leaked %v blocks", s.BlockSize, s.InUse)
		}
	}
}
