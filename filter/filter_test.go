// Copyright 2024 The Squalr Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package filter

import (
	"testing"

	"github.com/grailbio/testutil/expect"
	"github.com/stretchr/testify/require"
)

func TestEncoderMinimumSizeFiltering(t *testing.T) {
	// S6: alternating true/false per 4-byte i32 element over 32 bytes
	// (eight elements) produces four separate 4-byte filters, not one run.
	e := NewEncoder(0x1000)
	for i := 0; i < 4; i++ {
		e.EncodeRange(4)
		e.FinalizeCurrentEncodeWithMinimumSizeFiltering(4, 4)
	}
	got := e.TakeResultRegions(4)
	want := []Range{
		{BaseAddress: 0x1000, RegionSize: 4},
		{BaseAddress: 0x1008, RegionSize: 4},
		{BaseAddress: 0x1010, RegionSize: 4},
		{BaseAddress: 0x1018, RegionSize: 4},
	}
	require.Equal(t, want, got)
}

func TestEncoderDropsShortRuns(t *testing.T) {
	e := NewEncoder(0)
	e.EncodeRange(2) // shorter than unitSize=4
	e.FinalizeCurrentEncodeWithMinimumSizeFiltering(1, 4)
	e.EncodeRange(4)
	got := e.TakeResultRegions(4)
	require.Equal(t, []Range{{BaseAddress: 3, RegionSize: 4}}, got)
}

func TestEncoderOpenRunAtEnd(t *testing.T) {
	e := NewEncoder(0x2000)
	e.EncodeRange(16)
	got := e.TakeResultRegions(4)
	require.Equal(t, []Range{{BaseAddress: 0x2000, RegionSize: 16}}, got)
}

func TestEncoderMonotonicity(t *testing.T) {
	// Invariant 1: emitted filters are strictly ascending, non-overlapping.
	e := NewEncoder(0)
	e.EncodeRange(4)
	e.FinalizeCurrentEncodeWithMinimumSizeFiltering(4, 4)
	e.EncodeRange(4)
	e.FinalizeCurrentEncodeWithMinimumSizeFiltering(4, 4)
	e.EncodeRange(4)
	got := e.TakeResultRegions(4)
	for i := 1; i < len(got); i++ {
		require.Less(t, got[i-1].End(), got[i].BaseAddress+1)
		require.LessOrEqual(t, got[i-1].End(), got[i].BaseAddress)
	}
}

func TestCoalesceAdjacent(t *testing.T) {
	in := []Range{
		{BaseAddress: 0, RegionSize: 4},
		{BaseAddress: 4, RegionSize: 4},
		{BaseAddress: 10, RegionSize: 4},
		{BaseAddress: 12, RegionSize: 8},
	}
	got := CoalesceAdjacent(in)
	want := []Range{
		{BaseAddress: 0, RegionSize: 8},
		{BaseAddress: 10, RegionSize: 10},
	}
	require.Equal(t, want, got)
}

func TestCoalesceAdjacentEmpty(t *testing.T) {
	require.Nil(t, CoalesceAdjacent(nil))
}

// TestCoalesceAdjacentLeavesGapsUnmerged exercises CoalesceAdjacent as an
// interval-merge: two ranges separated by a gap (End() < next.BaseAddress)
// must stay separate, while a genuinely adjacent pair merges into one.
func TestCoalesceAdjacentLeavesGapsUnmerged(t *testing.T) {
	in := []Range{
		{BaseAddress: 0, RegionSize: 4},  // [0, 4)
		{BaseAddress: 8, RegionSize: 4},  // [8, 12), gap after the first
		{BaseAddress: 12, RegionSize: 4}, // [12, 16), adjacent to the previous
	}
	got := CoalesceAdjacent(in)
	expect.EQ(t, len(got), 2)
	expect.EQ(t, got[0], Range{BaseAddress: 0, RegionSize: 4})
	expect.EQ(t, got[1], Range{BaseAddress: 8, RegionSize: 8})
}
