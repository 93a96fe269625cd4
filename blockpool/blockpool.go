// Copyright 2021 ZenulAbidin. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package blockpool manages free lists of equally sized memory blocks,
// one pool per size class. Blocks are sourced in one of three ways:
// from the system heap on demand (unbounded), from a single heap-backed
// region sliced up front, or from a caller-supplied region that the
// pool never owns. Allocation and deallocation are O(1): only the head
// of the LIFO free list is ever touched.
//
// The free list borrows the first 8 bytes of each free block for its
// link, stored as an index into the pool rather than a raw pointer, so
// no steady-state bookkeeping memory is needed beyond the pool's block
// registry.
package blockpool

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/ZenulAbidin/xalloc/logging"
)

// MinBlockSize is the smallest legal block size: one free-list link.
const MinBlockSize = 8

var (
	// ErrBlockSize reports a block size below MinBlockSize.
	ErrBlockSize = errors.New("blockpool: block size below minimum")
	// ErrMemorySize reports an external region too small for the
	// configured block size and count.
	ErrMemorySize = errors.New("blockpool: external memory smaller than block size * max blocks")
	// ErrConfig reports an inconsistent sourcing configuration.
	ErrConfig = errors.New("blockpool: external memory requires max blocks")
)

// Mode selects how a pool sources blocks it has never issued before.
type Mode int

const (
	// Growth sources each new block from the system heap, unbounded.
	Growth Mode = iota
	// HeapPool slices blocks out of one up-front heap allocation.
	HeapPool
	// StaticPool slices blocks out of a caller-supplied region. The
	// system heap is never called in this mode.
	StaticPool
)

func (m Mode) String() string {
	switch m {
	case Growth:
		return "growth"
	case HeapPool:
		return "heap-pool"
	case StaticPool:
		return "static-pool"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// Config of Pool.
type Config struct {
	// BlockSize is the fixed size of every block, at least MinBlockSize.
	BlockSize int

	// MaxBlocks bounds the pool; 0 selects Growth mode.
	MaxBlocks int

	// Memory, together with MaxBlocks > 0, selects StaticPool mode.
	// The pool slices Memory but never owns it.
	Memory []byte

	// Heap overrides the system heap collaborator; nil selects the
	// runtime-backed default.
	Heap Heap

	// Lock guards all mutating operations; nil leaves the pool
	// unguarded (the zero Lock).
	Lock Locker

	// Name is an optional diagnostic label.
	Name string
}

// Pool hands out fixed-size blocks for one size class. Every block it
// ever issues either stays outstanding or comes back to this exact
// pool; blocks never move between pools.
type Pool struct {
	name      string
	blockSize int
	maxBlocks int
	mode      Mode
	heap      Heap
	lock      Locker

	arena    []byte   // backing region, pool modes only
	blocks   [][]byte // block registry, growth mode only
	freeHead int64    // index of first free block, -1 when empty
	nextSlot int      // next never-issued slot, pool modes only
	total    int64    // blocks ever created
	inUse    int64    // issued minus freed
}

// New constructs a pool. MaxBlocks == 0 selects Growth mode.
// MaxBlocks > 0 without Memory selects HeapPool mode and makes the
// single backing allocation immediately. MaxBlocks > 0 with Memory
// selects StaticPool mode and never allocates.
func New(conf Config) (*Pool, error) {
	if conf.BlockSize < MinBlockSize {
		return nil, fmt.Errorf("%w: %v < %v", ErrBlockSize, conf.BlockSize, MinBlockSize)
	}
	if conf.Heap == nil {
		conf.Heap = NewStdHeap()
	}
	if conf.Lock == nil {
		conf.Lock = &Lock{}
	}

	p := &Pool{
		name:      conf.Name,
		blockSize: conf.BlockSize,
		maxBlocks: conf.MaxBlocks,
		heap:      conf.Heap,
		lock:      conf.Lock,
		freeHead:  -1,
	}

	switch {
	case conf.MaxBlocks > 0 && conf.Memory != nil:
		need := conf.BlockSize * conf.MaxBlocks
		if len(conf.Memory) < need {
			return nil, fmt.Errorf("%w: %v < %v", ErrMemorySize, len(conf.Memory), need)
		}
		p.mode = StaticPool
		p.arena = conf.Memory[:need]
	case conf.MaxBlocks > 0:
		p.mode = HeapPool
		arena, err := conf.Heap.Allocate(conf.BlockSize * conf.MaxBlocks)
		if err != nil {
			return nil, fmt.Errorf("blockpool %q: backing allocation failed: %w", conf.Name, err)
		}
		p.arena = arena
	case conf.Memory != nil:
		return nil, ErrConfig
	default:
		p.mode = Growth
	}

	return p, nil
}

// Allocate pops a block off the free list, or sources a new one: from
// the system heap in Growth mode, from the next never-issued slot in
// the pool modes. Pool-mode exhaustion routes to the fatal hook and
// does not return. The block index identifies the block for
// Deallocate.
func (p *Pool) Allocate() ([]byte, int) {
	p.lock.Acquire()

	if p.freeHead >= 0 {
		idx := int(p.freeHead)
		b := p.block(idx)
		p.freeHead = readLink(b)
		p.inUse++
		p.lock.Release()
		return b, idx
	}

	switch p.mode {
	case Growth:
		b, err := p.heap.Allocate(p.blockSize)
		if err != nil {
			p.lock.Release()
			fatal("blockpool %q: system heap refused %v bytes: %v", p.name, p.blockSize, err)
			return nil, -1
		}
		p.blocks = append(p.blocks, b)
		idx := len(p.blocks) - 1
		p.total++
		p.inUse++
		p.lock.Release()
		return b, idx
	default:
		if p.nextSlot < p.maxBlocks {
			idx := p.nextSlot
			p.nextSlot++
			p.total++
			p.inUse++
			b := p.block(idx)
			p.lock.Release()
			return b, idx
		}
		p.lock.Release()
		fatal("blockpool %q: out of blocks (%v of %v in use)", p.name, p.maxBlocks, p.maxBlocks)
		return nil, -1
	}
}

// Deallocate pushes the block back onto the free list. It never checks
// that the index actually came out of this pool; that guarantee is the
// caller's.
func (p *Pool) Deallocate(idx int) {
	p.lock.Acquire()
	writeLink(p.block(idx), p.freeHead)
	p.freeHead = int64(idx)
	p.inUse--
	p.lock.Release()
}

// Destroy tears the pool down. Growth mode walks the free list and
// releases each block to the system heap; blocks still outstanding are
// unreachable afterwards and are the caller's leak. HeapPool mode
// releases the single backing region. StaticPool mode releases nothing,
// the region belongs to whoever supplied it.
func (p *Pool) Destroy() {
	p.lock.Acquire()
	defer p.lock.Release()

	if p.inUse > 0 {
		logging.Warn("blockpool %q: %v blocks still in use at destroy", p.name, p.inUse)
	}

	switch p.mode {
	case Growth:
		for p.freeHead >= 0 {
			idx := int(p.freeHead)
			b := p.blocks[idx]
			p.freeHead = readLink(b)
			p.heap.Release(b)
			p.blocks[idx] = nil
		}
		p.blocks = nil
	case HeapPool:
		p.heap.Release(p.arena)
		p.arena = nil
	case StaticPool:
		p.arena = nil
	}
	p.freeHead = -1
	p.nextSlot = p.maxBlocks
}

// BlockCount returns the number of blocks currently outstanding.
func (p *Pool) BlockCount() int64 {
	p.lock.Acquire()
	n := p.inUse
	p.lock.Release()
	return n
}

// TotalBlocks returns the number of blocks ever created by this pool.
func (p *Pool) TotalBlocks() int64 {
	p.lock.Acquire()
	n := p.total
	p.lock.Release()
	return n
}

// BlockSize returns the fixed block size.
func (p *Pool) BlockSize() int {
	return p.blockSize
}

// MaxBlocks returns the pool bound, 0 for Growth mode.
func (p *Pool) MaxBlocks() int {
	return p.maxBlocks
}

// PoolMode returns the sourcing mode.
func (p *Pool) PoolMode() Mode {
	return p.mode
}

// Name returns the diagnostic label.
func (p *Pool) Name() string {
	return p.name
}

func (p *Pool) block(idx int) []byte {
	if p.mode == Growth {
		return p.blocks[idx]
	}
	off := idx * p.blockSize
	return p.arena[off : off+p.blockSize : off+p.blockSize]
}

// Free-list links live in the first 8 bytes of free blocks, as indices
// into the pool. -1 terminates the list.
func writeLink(b []byte, next int64) {
	binary.LittleEndian.PutUint64(b, uint64(next))
}

func readLink(b []byte) int64 {
	return int64(binary.LittleEndian.Uint64(b))
}
