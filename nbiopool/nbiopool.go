// Copyright 2021 ZenulAbidin. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package nbiopool adapts an xalloc allocator to nbio's
// mempool.Allocator interface, so nbio servers can draw their read and
// write buffers from fixed block pools:
//
//	mempool.DefaultMemPool = nbiopool.New(xalloc.Default())
//
// Requests larger than the biggest size class fall through to the
// runtime heap, the same escape hatch nbio's own pools use. Fallback
// buffers are allocated with a capacity no class payload can have, so
// Free always tells them apart from pool buffers.
package nbiopool

import (
	"github.com/lesismal/nbio/mempool"

	"github.com/ZenulAbidin/xalloc"
	"github.com/ZenulAbidin/xalloc/logging"
)

// Allocator bridges *xalloc.Allocator to nbio's allocation surface.
type Allocator struct {
	alloc *xalloc.Allocator
	sizes []int
	max   int // largest class payload
}

var _ mempool.Allocator = (*Allocator)(nil)

// New wraps an allocator. The wrapped allocator's lifecycle stays with
// its owner; destroying it while nbio still holds buffers is a misuse.
func New(a *xalloc.Allocator) *Allocator {
	sizes := a.ClassSizes()
	max := 0
	if len(sizes) > 0 {
		max = sizes[len(sizes)-1] - xalloc.HeaderSize
	}
	return &Allocator{alloc: a, sizes: sizes, max: max}
}

// Malloc returns a buffer of len size.
func (p *Allocator) Malloc(size int) *[]byte {
	if size > p.max {
		return p.heapFallback(size)
	}
	buf, err := p.alloc.Malloc(size)
	if err != nil {
		logging.Warn("nbiopool: pool malloc failed, falling back to heap: %v", err)
		return p.heapFallback(size)
	}
	return &buf
}

// Realloc resizes a buffer, keeping its content.
func (p *Allocator) Realloc(pbuf *[]byte, size int) *[]byte {
	buf := *pbuf
	if !p.fromPool(buf) {
		if size <= cap(buf) {
			*pbuf = buf[:size]
			return pbuf
		}
		newPbuf := p.Malloc(size)
		copy(*newPbuf, buf)
		return newPbuf
	}
	newBuf, err := p.alloc.Realloc(buf, size)
	if err != nil {
		fallback := p.heapFallback(size)
		copy(*fallback, buf)
		p.alloc.Free(buf)
		return fallback
	}
	*pbuf = newBuf
	return pbuf
}

// Append grows the buffer by more, reallocating through the pools when
// the capacity runs out.
func (p *Allocator) Append(pbuf *[]byte, more ...byte) *[]byte {
	buf := *pbuf
	if cap(buf)-len(buf) >= len(more) {
		*pbuf = append(buf, more...)
		return pbuf
	}
	newPbuf := p.Malloc(len(buf) + len(more))
	n := copy(*newPbuf, buf)
	copy((*newPbuf)[n:], more)
	p.Free(pbuf)
	return newPbuf
}

// AppendString is Append for strings.
func (p *Allocator) AppendString(pbuf *[]byte, more string) *[]byte {
	return p.Append(pbuf, []byte(more)...)
}

// Free returns a pool buffer; heap-fallback buffers are left to the
// garbage collector.
func (p *Allocator) Free(pbuf *[]byte) {
	if pbuf == nil || *pbuf == nil {
		return
	}
	if p.fromPool(*pbuf) {
		p.alloc.Free(*pbuf)
	}
}

// fromPool reports whether buf came out of a class pool. A pool
// payload's capacity plus the header is exactly one class size, and
// heapFallback keeps that property from ever holding for its buffers.
func (p *Allocator) fromPool(buf []byte) bool {
	return buf != nil && p.classPayloadCap(cap(buf))
}

// classPayloadCap reports whether capacity c plus the header matches a
// configured class size. The table is ascending, so the scan stops at
// the first class past c.
func (p *Allocator) classPayloadCap(c int) bool {
	n := c + xalloc.HeaderSize
	for _, s := range p.sizes {
		if s == n {
			return true
		}
		if s > n {
			return false
		}
	}
	return false
}

// heapFallback allocates from the runtime heap, padding the capacity
// past any value fromPool would mistake for a class payload.
func (p *Allocator) heapFallback(size int) *[]byte {
	c := size
	for p.classPayloadCap(c) {
		c++
	}
	buf := make([]byte, size, c)
	return &buf
}
