// Copyright 2024 The Squalr Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package filter implements the scan kernel's run-length filter encoder
// (C4): it turns a stream of per-element match verdicts into a minimal,
// address-ordered, non-overlapping set of address ranges ("filters"),
// dropping runs too short to hold one full element of the scanned type.
//
// The merge-adjacent-ranges step (CoalesceAdjacent) is grounded on the
// sorted-interval-union logic in github.com/grailbio/bio/interval's
// BEDUnion, adapted from genomic-coordinate unions to scan-result address
// ranges.
package filter

// Range is a contiguous address range still under consideration: a filter
// per §3 of the specification ("Filter — a sub-range of a region still
// under consideration after the most recent scan").
type Range struct {
	BaseAddress uint64
	RegionSize  uint64
}

// End returns the address one past the last byte of the range.
func (r Range) End() uint64 { return r.BaseAddress + r.RegionSize }

// Encoder accumulates a run-length-encoded stream of match verdicts for one
// region (or one filter within a region) into a list of Range filters. It is
// not safe for concurrent use — the specification makes each Encoder
// thread-local to exactly one worker (§5).
type Encoder struct {
	baseAddress uint64
	// runStart is the offset (relative to baseAddress) the currently open
	// run began at, or -1 if no run is open.
	runStart int64
	runLen   uint64
	offset   uint64
	emitted  []Range
}

// NewEncoder creates an encoder for a region/filter beginning at
// baseAddress.
func NewEncoder(baseAddress uint64) *Encoder {
	return &Encoder{baseAddress: baseAddress, runStart: -1}
}

// EncodeRange records that the next n bytes/elements satisfied the
// predicate, extending the open run (opening one at the current offset if
// none is open).
func (e *Encoder) EncodeRange(n uint64) {
	if n == 0 {
		return
	}
	if e.runStart < 0 {
		e.runStart = int64(e.offset)
	}
	e.runLen += n
	e.offset += n
}

// FinalizeCurrentEncodeWithMinimumSizeFiltering records that the next skip
// bytes/elements failed the predicate, closing any open run. The closed run
// is emitted as a filter iff its length is >= unitSize; otherwise it is
// discarded as noise too small to hold a full element. The internal offset
// advances by skip either way.
func (e *Encoder) FinalizeCurrentEncodeWithMinimumSizeFiltering(skip uint64, unitSize uint64) {
	e.closeRun(unitSize)
	e.offset += skip
}

func (e *Encoder) closeRun(unitSize uint64) {
	if e.runStart < 0 {
		return
	}
	if e.runLen >= unitSize {
		e.emitted = append(e.emitted, Range{
			BaseAddress: e.baseAddress + uint64(e.runStart),
			RegionSize:  e.runLen,
		})
	}
	e.runStart = -1
	e.runLen = 0
}

// TakeResultRegions finalizes any still-open run under the same
// minimum-size policy, then returns the accumulated filters and resets the
// encoder to a fresh state at the same base address.
func (e *Encoder) TakeResultRegions(unitSize uint64) []Range {
	e.closeRun(unitSize)
	out := e.emitted
	e.emitted = nil
	e.runStart = -1
	e.runLen = 0
	e.offset = 0
	return out
}
