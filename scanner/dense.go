// Copyright 2024 The Squalr Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package scanner

import (
	"github.com/squalr/scanengine/filter"
	"github.com/squalr/scanengine/mapper"
	"github.com/squalr/scanengine/simdscan"
)

// denseWalk is the mask-chunk walk shared by the scalar and dense-aligned
// strategies (and reused once per pass by the overlapping strategy): run the
// kernel once over the whole input to get a full byte mask, then walk the
// mask in plan.VectorWidth-sized chunks, taking §4.4 point 2's fast path
// (one encode call for an all-matched or all-unmatched chunk) and falling
// back to per-element processing only for a mixed chunk.
//
// When plan.VectorWidth is 0 (region too small to vectorize, or the Scalar
// strategy), the chunk size degenerates to one element, which is exactly
// "one element at a time" — scalar is dense with the smallest possible
// chunk, not a separate code path.
func denseWalk(plan mapper.Plan, filterBase uint64, current, previous []byte) []filter.Range {
	unitSize := plan.Descriptor.UnitSize
	mask := make([]byte, len(current))
	plan.Kernel(mask, current, previous, plan.Descriptor, plan.Params)

	chunk := plan.VectorWidth
	if chunk <= 0 {
		chunk = unitSize
	}

	enc := filter.NewEncoder(filterBase)
	for off := 0; off < len(mask); {
		end := off + chunk
		if end > len(mask) {
			end = len(mask)
		}
		sub := mask[off:end]
		switch {
		case simdscan.AllMatched(sub):
			enc.EncodeRange(uint64(len(sub)))
		case simdscan.AllUnmatched(sub):
			enc.FinalizeCurrentEncodeWithMinimumSizeFiltering(uint64(len(sub)), uint64(unitSize))
		default:
			walkElements(enc, sub, unitSize)
		}
		off = end
	}
	return enc.TakeResultRegions(uint64(unitSize))
}

// walkElements feeds one mixed mask chunk to enc element by element — the
// fallback §4.4 point 2 describes for a chunk that isn't uniformly matched.
func walkElements(enc *filter.Encoder, mask []byte, unitSize int) {
	for off := 0; off+unitSize <= len(mask); off += unitSize {
		if simdscan.ElementMatched(mask, off/unitSize, unitSize) {
			enc.EncodeRange(uint64(unitSize))
		} else {
			enc.FinalizeCurrentEncodeWithMinimumSizeFiltering(uint64(unitSize), uint64(unitSize))
		}
	}
}

// scanOverlapping implements §4.4 point 3: unit_size/alignment dense passes,
// each over a byte-shifted sub-slice, so a value scanned with finer-than-
// unit-size alignment is found regardless of which byte boundary it starts
// on. The passes' filters are handed back unmerged and address-interleaved;
// the orchestrator sorts and coalesces them during its merge step.
func scanOverlapping(plan mapper.Plan, filterBase uint64, current, previous []byte) []filter.Range {
	unitSize := plan.Descriptor.UnitSize
	passes := unitSize / plan.Alignment
	var out []filter.Range
	for i := 0; i < passes; i++ {
		shift := i * plan.Alignment
		if shift >= len(current) {
			continue
		}
		curSub := current[shift:]
		var prevSub []byte
		if previous != nil {
			prevSub = previous[shift:]
		}
		out = append(out, denseWalk(plan, filterBase+uint64(shift), curSub, prevSub)...)
	}
	return out
}
