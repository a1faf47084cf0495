// Copyright 2024 The Squalr Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package orchestrator

import (
	"context"
	"testing"

	"github.com/squalr/scanengine/dtype"
	"github.com/squalr/scanengine/mapper"
	"github.com/squalr/scanengine/simdscan"
	"github.com/squalr/scanengine/snapshot"
	"github.com/stretchr/testify/require"
)

func TestScanFindsMatchesAcrossRegions(t *testing.T) {
	reg := dtype.NewRegistry()
	d, err := reg.Get("u32")
	require.NoError(t, err)

	r1 := snapshot.NewRegion(0x1000, []byte{
		1, 0, 0, 0,
		2, 0, 0, 0,
		1, 0, 0, 0,
	})
	r2 := snapshot.NewRegion(0x2000, []byte{
		1, 0, 0, 0,
	})
	snap := snapshot.New([]*snapshot.Region{r1, r2})

	req := mapper.Request{Predicate: simdscan.Equal, DataTypeID: "u32", Operand: d.EncodeUint(1)}
	meta, err := Scan(context.Background(), reg, snap, req, Settings{SingleThreaded: true})
	require.NoError(t, err)

	require.Equal(t, uint64(3), meta.ResultCount) // two singletons in r1 plus one in r2
	require.Equal(t, uint64(12), meta.TotalSizeInBytes)

	regions := snap.Regions()
	require.Equal(t, 2, len(regions[0].Filters))
	require.Equal(t, 1, len(regions[1].Filters))
}

func TestScanHonorsCancellation(t *testing.T) {
	reg := dtype.NewRegistry()
	d, _ := reg.Get("u8")
	r := snapshot.NewRegion(0, make([]byte, 64))
	snap := snapshot.New([]*snapshot.Region{r})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req := mapper.Request{Predicate: simdscan.Equal, DataTypeID: "u8", Operand: d.EncodeUint(0)}
	_, err := Scan(ctx, reg, snap, req, Settings{SingleThreaded: true})
	require.Error(t, err)

	// The region's filters must be unchanged from before the scan.
	require.Equal(t, 1, len(snap.Regions()[0].Filters))
	require.Equal(t, uint64(64), snap.Regions()[0].Filters[0].RegionSize)
}

func TestScanWithNoFiltersReturnsZeroMetadata(t *testing.T) {
	reg := dtype.NewRegistry()
	snap := snapshot.New(nil)
	req := mapper.Request{Predicate: simdscan.Equal, DataTypeID: "u8", Operand: []byte{0}}
	meta, err := Scan(context.Background(), reg, snap, req, Settings{})
	require.NoError(t, err)
	require.Equal(t, Metadata{}, meta)
}

func TestScanRunsValidationWithoutDivergingOnAgreeingStrategies(t *testing.T) {
	reg := dtype.NewRegistry()
	d, _ := reg.Get("u32")
	r := snapshot.NewRegion(0x4000, []byte{
		9, 0, 0, 0,
		9, 0, 0, 0,
		5, 0, 0, 0,
	})
	snap := snapshot.New([]*snapshot.Region{r})
	req := mapper.Request{Predicate: simdscan.Equal, DataTypeID: "u32", Operand: d.EncodeUint(9)}

	meta, err := Scan(context.Background(), reg, snap, req, Settings{SingleThreaded: true, DebugPerformValidationScan: true})
	require.NoError(t, err)
	require.Equal(t, uint64(8), meta.TotalSizeInBytes)
}
