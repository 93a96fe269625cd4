package xalloc

import (
	"testing"
)

func TestHeaderRoundTrip(t *testing.T) {
	cases := []struct {
		class uint32
		index uint32
	}{
		{0, 0},
		{1, 1},
		{7, 123456},
		{maxClassIndex, maxBlockIndex},
	}
	for _, c := range cases {
		block := make([]byte, 64)
		payload := stampHeader(block, c.class, c.index)
		if len(payload) != 64-HeaderSize {
			t.Fatalf("payload length %v", len(payload))
		}
		if cap(payload) != 64-HeaderSize {
			t.Fatalf("payload capacity %v leaks past the block", cap(payload))
		}
		class, index := decodeHeader(payload)
		if class != c.class || index != c.index {
			t.Fatalf("decode (%v,%v) != stamp (%v,%v)", class, index, c.class, c.index)
		}
	}
}

func TestHeaderDecodeAfterReslice(t *testing.T) {
	block := make([]byte, 32)
	payload := stampHeader(block, 3, 9)

	// Shortening from the back keeps the front edge, and with it the
	// header, in place.
	short := payload[:4]
	class, index := decodeHeader(short)
	if class != 3 || index != 9 {
		t.Fatalf("decode after reslice: (%v,%v)", class, index)
	}
}

func TestHeaderSmallestClass(t *testing.T) {
	// The smallest legal block still has a payload, so decode can step
	// back from a non-empty slice.
	block := make([]byte, 8)
	payload := stampHeader(block, 2, 5)
	if cap(payload) != 8-HeaderSize {
		t.Fatalf("payload capacity %v", cap(payload))
	}
	class, index := decodeHeader(payload[:0])
	if class != 2 || index != 5 {
		t.Fatalf("decode on zero-length payload: (%v,%v)", class, index)
	}
}
