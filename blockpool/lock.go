// Copyright 2021 ZenulAbidin. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package blockpool

import (
	"sync"
	"sync/atomic"
)

// Locker is the narrow locking contract pools are guarded by.
type Locker interface {
	Acquire()
	Release()
}

const (
	lockUninitialized int32 = iota
	lockActive
	lockInert
)

// Lock is the process-wide mutual exclusion service. Acquire and
// Release are no-ops until Init runs: before initialization the caller
// is necessarily single-threaded. Init with singleThreaded leaves the
// lock permanently inert.
//
// The zero Lock is an always-inert Locker, which is also what pools
// fall back to when constructed without one.
type Lock struct {
	mu    sync.Mutex
	state int32
}

// Init arms the lock. Must be called before the first concurrent use.
func (l *Lock) Init(singleThreaded bool) {
	if singleThreaded {
		atomic.StoreInt32(&l.state, lockInert)
		return
	}
	atomic.StoreInt32(&l.state, lockActive)
}

// Acquire takes the lock, or does nothing if the lock has not been
// initialized or is single-threaded.
func (l *Lock) Acquire() {
	if atomic.LoadInt32(&l.state) == lockActive {
		l.mu.Lock()
	}
}

// Release undoes Acquire.
func (l *Lock) Release() {
	if atomic.LoadInt32(&l.state) == lockActive {
		l.mu.Unlock()
	}
}

// Destroy disarms the lock. Legal only once no caller can still be
// inside Acquire/Release, i.e. after subsystem shutdown.
func (l *Lock) Destroy() {
	atomic.StoreInt32(&l.state, lockUninitialized)
}
