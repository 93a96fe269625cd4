// Copyright 2021 ZenulAbidin. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package xalloc

import (
	"sync"

	"github.com/ZenulAbidin/xalloc/logging"
)

// The package-level allocator and its lifecycle. Two usage patterns
// are supported:
//
//   - Explicit: the hosting program calls Init once before any
//     allocation (in Static mode, before any other startup code that
//     might allocate through this package) and Shutdown once after all
//     use. Embedded targets whose main loop never returns may skip
//     Shutdown entirely.
//   - Reference-counted: every subsystem that allocates brackets its
//     lifetime with Retain/Release. The first Retain initializes, the
//     last Release shuts down, so ordering relative to user code falls
//     out of the bracket nesting instead of package init order.
var (
	lifecycleMu  sync.Mutex
	defaultAlloc *Allocator
	refs         int
)

// Init constructs the package-level allocator. It must run exactly
// once before any other package-level call; a second Init without an
// intervening Shutdown returns ErrAlreadyInitialized.
func Init(conf Config) error {
	lifecycleMu.Lock()
	defer lifecycleMu.Unlock()
	return initLocked(conf)
}

func initLocked(conf Config) error {
	if defaultAlloc != nil {
		return ErrAlreadyInitialized
	}
	a, err := New(conf)
	if err != nil {
		return err
	}
	defaultAlloc = a
	logging.Debug("xalloc: initialized (%v classes, %v mode)", len(a.classes), a.mode)
	return nil
}

// Shutdown finalizes every class pool of the package-level allocator.
// It must run after every other subsystem that might still allocate or
// free through this package.
func Shutdown() error {
	lifecycleMu.Lock()
	defer lifecycleMu.Unlock()
	if defaultAlloc == nil {
		return ErrNotInitialized
	}
	defaultAlloc.Destroy()
	defaultAlloc = nil
	refs = 0
	logging.Debug("xalloc: shut down")
	return nil
}

// Retain brackets a subsystem's use of the package-level allocator.
// The first Retain performs Init with conf; later calls only bump the
// reference count and ignore conf.
func Retain(conf Config) error {
	lifecycleMu.Lock()
	defer lifecycleMu.Unlock()
	if defaultAlloc == nil {
		if err := initLocked(conf); err != nil {
			return err
		}
	}
	refs++
	return nil
}

// Release undoes one Retain. The last Release shuts the allocator
// down.
func Release() error {
	lifecycleMu.Lock()
	defer lifecycleMu.Unlock()
	if defaultAlloc == nil || refs == 0 {
		return ErrNotInitialized
	}
	refs--
	if refs > 0 {
		return nil
	}
	defaultAlloc.Destroy()
	defaultAlloc = nil
	logging.Debug("xalloc: shut down (last release)")
	return nil
}

// Default returns the package-level allocator, nil before Init.
func Default() *Allocator {
	lifecycleMu.Lock()
	a := defaultAlloc
	lifecycleMu.Unlock()
	return a
}

// Malloc allocates from the package-level allocator.
func Malloc(size int) ([]byte, error) {
	a := Default()
	if a == nil {
		return nil, ErrNotInitialized
	}
	return a.Malloc(size)
}

// Free returns buf to the package-level allocator. No-op on nil buf or
// before Init.
func Free(buf []byte) {
	if a := Default(); a != nil {
		a.Free(buf)
	}
}

// Realloc resizes buf through the package-level allocator.
func Realloc(buf []byte, size int) ([]byte, error) {
	a := Default()
	if a == nil {
		return nil, ErrNotInitialized
	}
	return a.Realloc(buf, size)
}

// Stats snapshots the package-level allocator's classes, nil before
// Init.
func Stats() []ClassStats {
	a := Default()
	if a == nil {
		return nil
	}
	return a.Stats()
}

// DumpStats logs the human-readable statistics dump at Info level.
func DumpStats() {
	if a := Default(); a != nil {
		logging.Info("%s", a.String())
	}
}
