// Copyright 2021 ZenulAbidin. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package xalloc

import (
	"encoding/binary"
	"unsafe"
)

// HeaderSize is the per-block overhead in bytes. Every allocated block
// starts with a packed back-reference to its owner: 8 bits of size
// class index and 24 bits of block index within the class pool. Free
// recovers the owning pool from a bare payload slice by reading the
// header just before it; no size argument is ever needed.
const HeaderSize = 4

// maxBlockIndex bounds how many blocks one class pool can ever issue;
// beyond it the block index no longer fits the header.
const maxBlockIndex = 1<<24 - 1

// maxClassIndex bounds the size class table for the same reason.
const maxClassIndex = 1<<8 - 1

// stampHeader writes the back-reference into the block's prefix and
// returns the payload, capped so that callers cannot append into a
// neighboring block.
func stampHeader(block []byte, class, index uint32) []byte {
	binary.LittleEndian.PutUint32(block, class<<24|index)
	return block[HeaderSize:len(block):len(block)]
}

// decodeHeader reads the back-reference from the header just before
// the payload. The payload must be one previously returned by
// stampHeader; the header bytes sit inside the same block, so stepping
// back across the slice boundary stays within one allocation.
func decodeHeader(payload []byte) (class, index uint32) {
	base := unsafe.Add(unsafe.Pointer(unsafe.SliceData(payload)), -HeaderSize)
	v := binary.LittleEndian.Uint32(unsafe.Slice((*byte)(base), HeaderSize))
	return v >> 24, v & maxBlockIndex
}
