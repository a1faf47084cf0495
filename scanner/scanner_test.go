// Copyright 2024 The Squalr Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package scanner

import (
	"testing"

	"github.com/squalr/scanengine/dtype"
	"github.com/squalr/scanengine/filter"
	"github.com/squalr/scanengine/mapper"
	"github.com/squalr/scanengine/simdscan"
	"github.com/stretchr/testify/require"
)

func planFor(t *testing.T, reg *dtype.Registry, req mapper.Request, regionSize uint64) mapper.Plan {
	t.Helper()
	plan, err := mapper.Map(reg, req, regionSize)
	require.NoError(t, err)
	return plan
}

func TestDenseScanFindsAllMatchingElements(t *testing.T) {
	reg := dtype.NewRegistry()
	d, _ := reg.Get("u8")
	current := []byte{5, 5, 5, 1, 5, 5}
	plan := planFor(t, reg, mapper.Request{Predicate: simdscan.Equal, DataTypeID: "u8", Operand: d.EncodeUint(5)}, uint64(len(current)))

	got, err := Scan(plan, 0x1000, current, nil)
	require.NoError(t, err)
	require.Equal(t, []filter.Range{
		{BaseAddress: 0x1000, RegionSize: 3},
		{BaseAddress: 0x1004, RegionSize: 2},
	}, got)
}

func TestOverlappingScanFindsMisalignedOccurrence(t *testing.T) {
	reg := dtype.NewRegistry()
	d, _ := reg.Get("i32")
	// Target value placed at byte offset 1, invisible to a 4-byte-aligned
	// dense scan.
	current := make([]byte, 9)
	target := d.EncodeInt(0x11223344)
	copy(current[1:], target)
	plan := planFor(t, reg, mapper.Request{
		Predicate:         simdscan.Equal,
		DataTypeID:        "i32",
		Operand:           target,
		AlignmentOverride: 1,
	}, uint64(len(current)))
	require.Equal(t, mapper.Overlapping, plan.Strategy)

	got, err := Scan(plan, 0x2000, current, nil)
	require.NoError(t, err)
	found := false
	for _, r := range got {
		if r.BaseAddress == 0x2001 && r.RegionSize == 4 {
			found = true
		}
	}
	require.True(t, found, "expected a filter at the misaligned offset, got %+v", got)
}

func TestSparseScanGathersStridedElements(t *testing.T) {
	reg := dtype.NewRegistry()
	d, _ := reg.Get("u16")
	current := make([]byte, 16)
	copy(current[0:2], d.EncodeUint(7))
	copy(current[8:10], d.EncodeUint(7))
	plan := planFor(t, reg, mapper.Request{
		Predicate:         simdscan.Equal,
		DataTypeID:        "u16",
		Operand:           d.EncodeUint(7),
		AlignmentOverride: 8,
	}, uint64(len(current)))
	require.Equal(t, mapper.Sparse, plan.Strategy)

	got, err := Scan(plan, 0, current, nil)
	require.NoError(t, err)
	require.Equal(t, []filter.Range{
		{BaseAddress: 0, RegionSize: 2},
		{BaseAddress: 8, RegionSize: 2},
	}, got)
}

func TestBytewisePeriodicScanFindsZeroRun(t *testing.T) {
	reg := dtype.NewRegistry()
	d, _ := reg.Get("i32")
	current := make([]byte, 20) // all zero bytes
	plan := planFor(t, reg, mapper.Request{Predicate: simdscan.Equal, DataTypeID: "i32", Operand: d.EncodeInt(0)}, uint64(len(current)))
	require.Equal(t, mapper.BytewisePeriodic, plan.Strategy)

	got, err := Scan(plan, 0x3000, current, nil)
	require.NoError(t, err)
	require.Equal(t, []filter.Range{{BaseAddress: 0x3000, RegionSize: 20}}, got)
}

func TestScanRequiresPreviousForRelativePredicate(t *testing.T) {
	reg := dtype.NewRegistry()
	plan := planFor(t, reg, mapper.Request{Predicate: simdscan.Changed, DataTypeID: "u8"}, 8)
	_, err := Scan(plan, 0, make([]byte, 8), nil)
	require.Error(t, err)
}
