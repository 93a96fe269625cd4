// Copyright 2021 ZenulAbidin. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package blockpool

// Storage reserves the backing bytes for one StaticPool-mode pool and
// brings the pool to life over them in a separate step. Reserve it at a
// point guaranteed to precede any use, typically a package-level var in
// the hosting program, then Activate once the lock exists:
//
//	var telemetry = blockpool.NewStorage(64, 1024)
//	...
//	pool, err := telemetry.Activate(lock, "telemetry")
//
// Storage owns the raw bytes; the pool constructed inside them does
// not. Finalize destroys the pool only, the region's storage duration
// is the hosting program's concern.
type Storage struct {
	blockSize int
	maxBlocks int
	region    []byte
	pool      *Pool
}

// NewStorage reserves a zeroed region of exactly blockSize*maxBlocks
// bytes. Both arguments must be positive.
func NewStorage(blockSize, maxBlocks int) *Storage {
	return &Storage{
		blockSize: blockSize,
		maxBlocks: maxBlocks,
		region:    make([]byte, blockSize*maxBlocks),
	}
}

// Activate constructs a StaticPool-mode pool over the reserved region.
// Calling it again returns the already-constructed pool.
func (s *Storage) Activate(lock Locker, name string) (*Pool, error) {
	if s.pool != nil {
		return s.pool, nil
	}
	p, err := New(Config{
		BlockSize: s.blockSize,
		MaxBlocks: s.maxBlocks,
		Memory:    s.region,
		Lock:      lock,
		Name:      name,
	})
	if err != nil {
		return nil, err
	}
	s.pool = p
	return p, nil
}

// Get returns the constructed pool, nil before Activate.
func (s *Storage) Get() *Pool {
	return s.pool
}

// Finalize runs the pool's destruction logic. The region itself is
// left alone and can be activated again.
func (s *Storage) Finalize() {
	if s.pool != nil {
		s.pool.Destroy()
		s.pool = nil
	}
}
