// Copyright 2024 The Squalr Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package scanner

import (
	"github.com/squalr/scanengine/filter"
	"github.com/squalr/scanengine/mapper"
	"github.com/squalr/scanengine/simdscan"
)

// scanBytewisePeriodic implements §4.4 point 5. Since the operand's bytes
// repeat with period plan.Periodicity, a byte at any position matches the
// operand's corresponding phase independent of which unit_size-aligned
// element it would belong to — so the scan can run at byte granularity
// instead of element granularity, finding occurrences at any byte offset,
// not just ones aligned to the type's unit size. A run of consecutive
// matching bytes of length >= unit_size is a genuine occurrence; the
// shared minimum-size filtering in filter.Encoder already drops anything
// shorter, which is exactly the "fed to the encoder as though scanning
// single bytes" behavior the specification describes.
func scanBytewisePeriodic(plan mapper.Plan, filterBase uint64, current []byte) []filter.Range {
	period := plan.Periodicity
	pattern := plan.Params.Operand[:period]
	invert := plan.Predicate == simdscan.NotEqual
	unitSize := plan.Descriptor.UnitSize

	chunk := plan.VectorWidth
	if chunk <= 0 {
		chunk = unitSize
	}

	matchAt := func(i int) bool {
		m := current[i] == pattern[i%period]
		if invert {
			return !m
		}
		return m
	}

	enc := filter.NewEncoder(filterBase)
	for off := 0; off < len(current); {
		end := off + chunk
		if end > len(current) {
			end = len(current)
		}
		allMatched, allUnmatched := true, true
		for i := off; i < end; i++ {
			if matchAt(i) {
				allUnmatched = false
			} else {
				allMatched = false
			}
		}
		switch {
		case allMatched:
			enc.EncodeRange(uint64(end - off))
		case allUnmatched:
			enc.FinalizeCurrentEncodeWithMinimumSizeFiltering(uint64(end-off), uint64(unitSize))
		default:
			for i := off; i < end; i++ {
				if matchAt(i) {
					enc.EncodeRange(1)
				} else {
					enc.FinalizeCurrentEncodeWithMinimumSizeFiltering(1, uint64(unitSize))
				}
			}
		}
		off = end
	}
	return enc.TakeResultRegions(uint64(unitSize))
}
