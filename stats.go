// Copyright 2021 ZenulAbidin. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package xalloc

import (
	"fmt"
	"strings"

	"github.com/ZenulAbidin/xalloc/blockpool"
)

// ClassStats is the per-class introspection record: one entry per
// created size class, in class order.
type ClassStats struct {
	// BlockSize is the class's fixed block size, header included.
	BlockSize int `json:"blockSize"`
	// TotalBlocks counts blocks ever created by the class pool.
	TotalBlocks int64 `json:"totalBlocks"`
	// InUse counts blocks currently outstanding: issued minus freed.
	InUse int64 `json:"inUse"`
}

// Stats returns a read-only snapshot of every created class pool, in
// class order. Classes never used are omitted.
func (a *Allocator) Stats() []ClassStats {
	a.lock.Acquire()
	pools := append([]*blockpool.Pool(nil), a.pools...)
	a.lock.Release()

	stats := make([]ClassStats, 0, len(pools))
	for i, p := range pools {
		if p == nil {
			continue
		}
		stats = append(stats, ClassStats{
			BlockSize:   a.classes[i].Size,
			TotalBlocks: p.TotalBlocks(),
			InUse:       p.BlockCount(),
		})
	}
	return stats
}

// String renders the statistics surface as a human-readable dump.
func (a *Allocator) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "xalloc %q mode=%v classes=%v/%v\n", a.name, a.mode, a.created, a.maxClasses)
	for _, s := range a.Stats() {
		fmt.Fprintf(&sb, "  class %-6d total %-8d inuse %-8d\n", s.BlockSize, s.TotalBlocks, s.InUse)
	}
	return sb.String()
}
