// Copyright 2024 The Squalr Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package scanner

import (
	"github.com/squalr/scanengine/filter"
	"github.com/squalr/scanengine/mapper"
)

// scanSparse implements §4.4 point 4: alignment greater than unit size, so
// matching elements are never address-adjacent (the gap between strides
// always exceeds one element). Each gathered element is evaluated and, if
// matched, emitted as its own singleton filter directly — there is no run to
// accumulate, so filter.Encoder's run-length bookkeeping would only add
// overhead here.
func scanSparse(plan mapper.Plan, filterBase uint64, current, previous []byte) []filter.Range {
	unitSize := plan.Descriptor.UnitSize
	alignment := plan.Alignment
	mask := make([]byte, unitSize)

	var out []filter.Range
	for off := 0; off+unitSize <= len(current); off += alignment {
		cur := current[off : off+unitSize]
		var prev []byte
		if previous != nil {
			prev = previous[off : off+unitSize]
		}
		plan.Kernel(mask, cur, prev, plan.Descriptor, plan.Params)
		if mask[0] == 0xFF {
			out = append(out, filter.Range{BaseAddress: filterBase + uint64(off), RegionSize: uint64(unitSize)})
		}
	}
	return out
}
