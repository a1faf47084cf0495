// Copyright 2024 The Squalr Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package filter

import "sort"

// CoalesceAdjacent merges address-adjacent or overlapping ranges in ranges,
// which need not already be sorted. This is the step the orchestrator (C8)
// applies after concatenating per-worker filter lists from the overlapping
// scanner strategy, which can legitimately emit several filters that abut at
// their boundaries (one per alignment-offset pass).
//
// The merge rule mirrors github.com/grailbio/bio/interval's BEDUnion
// interval-loading loop (scanBEDUnion): walk the sorted ranges, and whenever
// the next range starts at or before the end of the one being accumulated,
// extend it instead of starting a new one.
func CoalesceAdjacent(ranges []Range) []Range {
	if len(ranges) == 0 {
		return nil
	}
	sorted := append([]Range(nil), ranges...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].BaseAddress < sorted[j].BaseAddress })

	out := make([]Range, 0, len(sorted))
	cur := sorted[0]
	for _, r := range sorted[1:] {
		if r.BaseAddress <= cur.End() {
			if r.End() > cur.End() {
				cur.RegionSize = r.End() - cur.BaseAddress
			}
			continue
		}
		out = append(out, cur)
		cur = r
	}
	out = append(out, cur)
	return out
}
