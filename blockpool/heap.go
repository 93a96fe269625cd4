// Copyright 2021 ZenulAbidin. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package blockpool

// Heap is the system-heap collaborator pools draw raw memory from.
// The default implementation is backed by the Go runtime; tests swap in
// counting or failing implementations.
type Heap interface {
	Allocate(size int) ([]byte, error)
	Release(buf []byte)
}

type stdHeap struct{}

// NewStdHeap returns a Heap backed by the runtime allocator. Release is
// a no-op, the garbage collector reclaims released regions once the
// pool drops its references.
func NewStdHeap() Heap {
	return stdHeap{}
}

func (stdHeap) Allocate(size int) ([]byte, error) {
	return make([]byte, size), nil
}

func (stdHeap) Release(buf []byte) {}
