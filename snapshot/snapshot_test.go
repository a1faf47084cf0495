// Copyright 2024 The Squalr Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package snapshot

import (
	"testing"

	"github.com/squalr/scanengine/filter"
	"github.com/stretchr/testify/require"
)

func TestNewRegionStartsWithOneFilter(t *testing.T) {
	r := NewRegion(0x1000, make([]byte, 64))
	require.Equal(t, []filter.Range{{BaseAddress: 0x1000, RegionSize: 64}}, r.Filters)
	require.Equal(t, uint64(0x1040), r.End())
}

func TestRegionAdvanceSwaps(t *testing.T) {
	cur := []byte{1, 2, 3, 4}
	r := NewRegion(0, cur)
	next := []byte{5, 6, 7, 8}
	r.Advance(next)
	require.Equal(t, cur, r.PreviousBytes)
	require.Equal(t, next, r.CurrentBytes)
}

func TestFilterBytes(t *testing.T) {
	r := NewRegion(0x1000, []byte{0, 1, 2, 3, 4, 5, 6, 7})
	got := r.FilterBytes(filter.Range{BaseAddress: 0x1002, RegionSize: 3})
	require.Equal(t, []byte{2, 3, 4}, got)
}

func TestSnapshotRegionsIsASnapshotCopy(t *testing.T) {
	s := New([]*Region{NewRegion(0, make([]byte, 8)), NewRegion(0x100, make([]byte, 8))})
	require.Equal(t, 2, s.Len())
	regions := s.Regions()
	require.Len(t, regions, 2)
	regions[0] = nil
	require.NotNil(t, s.Regions()[0])
}
