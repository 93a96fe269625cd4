// Copyright 2021 ZenulAbidin. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package xalloc is a fixed-block allocator that substitutes for the
// general-purpose heap in latency-sensitive or fault-intolerant
// programs. It routes every request to a per-size-class block pool, so
// allocation and deallocation are O(1) free-list operations with no
// fragmentation: a long-running process can never reach a state where
// a large allocation fails while total free memory would suffice.
//
// Requests are rounded up to the smallest configured size class that
// holds them plus a 4-byte header; the header carries a back-reference
// to the owning pool, which is how Free works from a bare slice with
// no size argument. Pools source blocks from the runtime heap on
// demand (Growth mode) or from pre-sized regions that bound every
// class (HeapPool and Static modes, for targets that must not touch
// the heap after startup).
//
// Misuse is a caller obligation, exactly as with C malloc/free:
// freeing a slice that did not come out of this allocator, or freeing
// one twice, is undefined and deliberately unchecked.
package xalloc

import (
	"fmt"

	"github.com/ZenulAbidin/xalloc/blockpool"
	"github.com/ZenulAbidin/xalloc/logging"
)

// Mode selects how every class pool sources its blocks.
type Mode = blockpool.Mode

const (
	// Growth grows each class from the runtime heap, unbounded.
	Growth = blockpool.Growth
	// HeapPool bounds each class with one up-front heap allocation.
	HeapPool = blockpool.HeapPool
	// Static bounds each class with pre-reserved storage; the runtime
	// heap is never called after New.
	Static = blockpool.StaticPool
)

// Config of Allocator.
type Config struct {
	// Mode is the sourcing strategy, Growth by default.
	Mode Mode

	// Classes is the ordered size class table; DefaultClasses when nil.
	// The pool modes require a Blocks bound on every class.
	Classes []ClassConfig

	// MaxClasses bounds how many class pools may be created; defaults
	// to the table length.
	MaxClasses int

	// SingleThreaded leaves the process-wide lock inert.
	SingleThreaded bool

	// Heap overrides the system heap collaborator (tests, arenas).
	Heap blockpool.Heap

	// Name is an optional diagnostic label.
	Name string
}

// Allocator owns a bounded, ordered set of block pools, one per size
// class, behind a heap-compatible Malloc/Free/Realloc surface. All
// mutations of the class registry and of every pool's free list are
// guarded by one coarse process-wide lock: the critical sections are
// short and constant-time, so per-pool locks buy nothing.
type Allocator struct {
	name       string
	mode       Mode
	maxClasses int
	classes    []ClassConfig
	heap       blockpool.Heap
	lock       *blockpool.Lock

	pools    []*blockpool.Pool    // parallel to classes, nil until created
	storages []*blockpool.Storage // Static mode backing regions
	created  int
}

// New constructs an allocator. In Static mode every class pool is
// brought up eagerly over freshly reserved storage; in the other modes
// class pools are created lazily on first use.
func New(conf Config) (*Allocator, error) {
	classes := conf.Classes
	if classes == nil {
		classes = DefaultClasses
	}
	classes = append([]ClassConfig(nil), classes...)

	if len(classes) == 0 {
		return nil, fmt.Errorf("%w: empty class table", ErrClassConfig)
	}
	if len(classes) > maxClassIndex+1 {
		return nil, fmt.Errorf("%w: %v classes, %v max", ErrTooManyClasses, len(classes), maxClassIndex+1)
	}
	for i := range classes {
		if classes[i].Size < blockpool.MinBlockSize {
			return nil, fmt.Errorf("%w: class size %v below minimum %v",
				ErrClassConfig, classes[i].Size, blockpool.MinBlockSize)
		}
		if i > 0 && classes[i].Size <= classes[i-1].Size {
			return nil, fmt.Errorf("%w: class sizes must be strictly ascending", ErrClassConfig)
		}
		if conf.Mode != Growth && classes[i].Blocks <= 0 {
			return nil, fmt.Errorf("%w: class %v needs a block count in %v mode",
				ErrClassConfig, classes[i].Size, conf.Mode)
		}
	}

	maxClasses := conf.MaxClasses
	if maxClasses <= 0 {
		maxClasses = len(classes)
	}
	heap := conf.Heap
	if heap == nil {
		heap = blockpool.NewStdHeap()
	}

	a := &Allocator{
		name:       conf.Name,
		mode:       conf.Mode,
		maxClasses: maxClasses,
		classes:    classes,
		heap:       heap,
		lock:       &blockpool.Lock{},
		pools:      make([]*blockpool.Pool, len(classes)),
	}
	a.lock.Init(conf.SingleThreaded)

	if conf.Mode == Static {
		if len(classes) > maxClasses {
			a.lock.Destroy()
			return nil, fmt.Errorf("%w: %v static classes, %v max", ErrTooManyClasses, len(classes), maxClasses)
		}
		a.storages = make([]*blockpool.Storage, len(classes))
		for i, c := range classes {
			a.storages[i] = blockpool.NewStorage(c.Size, c.Blocks)
			pool, err := a.storages[i].Activate(a.lock, a.poolName(c.Size))
			if err != nil {
				a.lock.Destroy()
				return nil, err
			}
			a.pools[i] = pool
			a.created++
		}
	}

	return a, nil
}

// Malloc returns a region of at least size bytes, drawn from the
// smallest class that holds size plus the header. Unsupported sizes
// and exceeding the class bound are reported to the caller;
// pool exhaustion is terminal and routes to the fatal hook instead.
func (a *Allocator) Malloc(size int) ([]byte, error) {
	if size < 0 {
		return nil, fmt.Errorf("%w: %v bytes", ErrSizeUnsupported, size)
	}
	ci := a.classIndex(size)
	if ci < 0 {
		return nil, fmt.Errorf("%w: %v bytes", ErrSizeUnsupported, size)
	}

	pool, err := a.classPool(ci)
	if err != nil {
		return nil, err
	}

	block, idx := pool.Allocate()
	if idx > maxBlockIndex {
		// The header cannot address this block anymore. Only reachable
		// after 16M live blocks in one class.
		blockpool.Fatal("xalloc %q: class %v exceeded the %v block index limit", a.name, a.classes[ci].Size, maxBlockIndex)
		return nil, ErrBlockLimit
	}
	payload := stampHeader(block, uint32(ci), uint32(idx))
	return payload[:size], nil
}

// Free returns buf's block to the pool that issued it. A nil buf is a
// no-op. buf must be a slice previously returned by Malloc or Realloc
// of this allocator, unshortened at the front.
func (a *Allocator) Free(buf []byte) {
	if buf == nil {
		return
	}
	class, idx := decodeHeader(buf)

	a.lock.Acquire()
	var pool *blockpool.Pool
	if int(class) < len(a.pools) {
		pool = a.pools[class]
	}
	a.lock.Release()
	if pool == nil {
		return
	}
	pool.Deallocate(int(idx))
}

// Realloc resizes buf. Within the same size class the block is kept
// and resliced; across classes a new block is allocated, the first
// min(old, new) bytes are copied and the old block is freed. A nil buf
// behaves as Malloc; size 0 frees buf and returns a fresh zero-length
// region, per the conventional heap contract.
func (a *Allocator) Realloc(buf []byte, size int) ([]byte, error) {
	if buf == nil {
		return a.Malloc(size)
	}
	if size < 0 {
		return nil, fmt.Errorf("%w: %v bytes", ErrSizeUnsupported, size)
	}
	if size == 0 {
		a.Free(buf)
		return a.Malloc(0)
	}

	usable := cap(buf)
	if ci := a.classIndex(size); ci >= 0 && a.classes[ci].Size == usable+HeaderSize {
		return buf[:size], nil
	}

	newBuf, err := a.Malloc(size)
	if err != nil {
		return nil, err
	}
	copy(newBuf, buf[:usable])
	a.Free(buf)
	return newBuf, nil
}

// Destroy finalizes every class pool. In Growth mode free-listed
// blocks go back to the system heap; anything still outstanding is
// the caller's leak, as documented on blockpool.Pool.Destroy.
func (a *Allocator) Destroy() {
	a.lock.Acquire()
	pools := a.pools
	storages := a.storages
	a.pools = make([]*blockpool.Pool, len(a.classes))
	a.storages = nil
	a.created = 0
	a.lock.Release()

	for i := range pools {
		switch {
		case storages != nil && storages[i] != nil:
			storages[i].Finalize()
		case pools[i] != nil:
			pools[i].Destroy()
		}
	}
	a.lock.Destroy()
	logging.Debug("xalloc %q: destroyed", a.name)
}

// Name returns the diagnostic label.
func (a *Allocator) Name() string {
	return a.name
}

// AllocMode returns the sourcing strategy.
func (a *Allocator) AllocMode() Mode {
	return a.mode
}

// classPool locates the pool for a class, creating it on first use in
// the lazy modes. Creation beyond MaxClasses is a configuration error.
func (a *Allocator) classPool(ci int) (*blockpool.Pool, error) {
	a.lock.Acquire()
	if pool := a.pools[ci]; pool != nil {
		a.lock.Release()
		return pool, nil
	}
	if a.created >= a.maxClasses {
		a.lock.Release()
		return nil, fmt.Errorf("%w: %v pools already created", ErrTooManyClasses, a.maxClasses)
	}

	c := a.classes[ci]
	maxBlocks := 0
	if a.mode == HeapPool {
		maxBlocks = c.Blocks
	}
	pool, err := blockpool.New(blockpool.Config{
		BlockSize: c.Size,
		MaxBlocks: maxBlocks,
		Heap:      a.heap,
		Lock:      a.lock,
		Name:      a.poolName(c.Size),
	})
	if err != nil {
		a.lock.Release()
		return nil, err
	}
	a.pools[ci] = pool
	a.created++
	a.lock.Release()
	logging.Debug("xalloc %q: created %v class pool for size %v", a.name, a.mode, c.Size)
	return pool, nil
}

func (a *Allocator) poolName(size int) string {
	if a.name == "" {
		return fmt.Sprintf("class-%v", size)
	}
	return fmt.Sprintf("%s-%v", a.name, size)
}
