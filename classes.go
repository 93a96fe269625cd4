// Copyright 2021 ZenulAbidin. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package xalloc

// ClassConfig describes one size class: the fixed block size and, for
// the pool modes, how many blocks the class is allowed.
type ClassConfig struct {
	// Size is the block size in bytes, header included. At least
	// blockpool.MinBlockSize, strictly ascending across the table.
	Size int

	// Blocks bounds the class pool in HeapPool and Static modes.
	// Ignored in Growth mode.
	Blocks int
}

// DefaultClasses is the default size class table: powers of two plus
// two extra thresholds, 396 and 768, that cut slack for common
// mid-sized requests (a 300-byte request wastes 92 bytes in a 396
// block instead of 208 in a 512 one). The table is a tuning policy,
// not a correctness requirement; deployments override it through
// Config.Classes.
var DefaultClasses = []ClassConfig{
	{Size: 8},
	{Size: 16},
	{Size: 32},
	{Size: 64},
	{Size: 128},
	{Size: 256},
	{Size: 396},
	{Size: 512},
	{Size: 768},
	{Size: 1024},
	{Size: 2048},
	{Size: 4096},
	{Size: 8192},
	{Size: 16384},
	{Size: 32768},
	{Size: 65536},
}

// PowerOfTwoClasses builds a plain power-of-two class table covering
// [minSize, maxSize], for deployments that prefer predictability over
// slack tuning.
func PowerOfTwoClasses(minSize, maxSize, blocks int) []ClassConfig {
	var classes []ClassConfig
	for size := minSize; size <= maxSize; size <<= 1 {
		classes = append(classes, ClassConfig{Size: size, Blocks: blocks})
	}
	return classes
}

// classIndex maps a requested payload size to the smallest class that
// holds it plus the header, -1 when none does. The table is immutable
// after New, so no lock is taken.
func (a *Allocator) classIndex(size int) int {
	need := size + HeaderSize
	for i := range a.classes {
		if a.classes[i].Size >= need {
			return i
		}
	}
	return -1
}

// ClassSizes returns the configured block sizes in class order.
func (a *Allocator) ClassSizes() []int {
	sizes := make([]int, len(a.classes))
	for i := range a.classes {
		sizes[i] = a.classes[i].Size
	}
	return sizes
}
