// Copyright 2024 The Squalr Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package snapshot implements the memory snapshot and region model (C3):
// the captured contents of a target process's memory regions across two
// generations, plus the filters (still-candidate address ranges) carried
// forward between scans.
//
// The region list's lifecycle — built once from an OS enumeration, then
// exclusively owned by one mutator at a time with read-only views served
// under a lock in between — mirrors how
// github.com/grailbio/bio/encoding/bamprovider hands out shards of a BAM
// file: a fixed partition of an address space, read concurrently, mutated
// only by the component driving the current pass.
package snapshot

import "github.com/squalr/scanengine/filter"

// Region is one contiguous range of a target process's virtual address
// space, captured at the current generation (and, once at least one scan
// has run, the previous generation too).
type Region struct {
	BaseAddress uint64
	RegionSize  uint64

	// CurrentBytes holds the most recent read of the region, length
	// RegionSize.
	CurrentBytes []byte
	// PreviousBytes holds the read from the prior generation, same length as
	// CurrentBytes, or nil if there is no prior generation yet (the region
	// was just discovered, or this is the first scan).
	PreviousBytes []byte

	// Filters are the ordered, non-overlapping, wholly-contained sub-ranges
	// of this region still under consideration.
	Filters []filter.Range
}

// NewRegion creates a region covering [baseAddress, baseAddress+len(current)),
// with no previous generation and a single filter spanning the whole region
// (the natural starting point before any scan has run).
func NewRegion(baseAddress uint64, current []byte) *Region {
	r := &Region{
		BaseAddress:  baseAddress,
		RegionSize:   uint64(len(current)),
		CurrentBytes: current,
	}
	if r.RegionSize > 0 {
		r.Filters = []filter.Range{{BaseAddress: baseAddress, RegionSize: r.RegionSize}}
	}
	return r
}

// End returns the address one past the region's last byte.
func (r *Region) End() uint64 { return r.BaseAddress + r.RegionSize }

// FilterBytes returns the current-bytes slice corresponding to f, which must
// be wholly contained in the region.
func (r *Region) FilterBytes(f filter.Range) []byte {
	start := f.BaseAddress - r.BaseAddress
	return r.CurrentBytes[start : start+f.RegionSize]
}

// FilterPreviousBytes is FilterBytes over the previous generation; it
// returns nil if there is no previous generation.
func (r *Region) FilterPreviousBytes(f filter.Range) []byte {
	if r.PreviousBytes == nil {
		return nil
	}
	start := f.BaseAddress - r.BaseAddress
	return r.PreviousBytes[start : start+f.RegionSize]
}

// Advance swaps CurrentBytes into PreviousBytes and installs next as the new
// CurrentBytes — a swap, not a copy, per §3's generation-rollover note. next
// must be the same length as the region's RegionSize (memsource.Refresh
// reads exactly RegionSize bytes for each region; a region whose read fails
// is not advanced and keeps its current generation and filters).
func (r *Region) Advance(next []byte) {
	r.PreviousBytes = r.CurrentBytes
	r.CurrentBytes = next
}
