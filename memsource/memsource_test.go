// Copyright 2024 The Squalr Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package memsource

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewSnapshotReadsAllRegions(t *testing.T) {
	src := NewFakeSource()
	src.AddRegion(0x1000, []byte{1, 2, 3, 4}, Permissions{Read: true, Write: true})
	src.AddRegion(0x2000, []byte{5, 6}, Permissions{Read: true})

	snap, err := NewSnapshot(context.Background(), src, nil)
	require.NoError(t, err)
	require.Equal(t, 2, snap.Len())
}

func TestNewSnapshotDropsRegionOnReadFailure(t *testing.T) {
	src := NewFakeSource()
	src.AddRegion(0x1000, []byte{1, 2, 3, 4}, Permissions{Read: true})
	src.AddRegion(0x2000, []byte{5, 6}, Permissions{Read: true})
	src.FailReads[0x2000] = true

	snap, err := NewSnapshot(context.Background(), src, nil)
	require.NoError(t, err)
	require.Equal(t, 1, snap.Len())
	require.Equal(t, uint64(0x1000), snap.Regions()[0].BaseAddress)
}

func TestRefreshAdvancesGenerationAndPreservesFiltersOnFailure(t *testing.T) {
	src := NewFakeSource()
	src.AddRegion(0x1000, []byte{1, 2, 3, 4}, Permissions{Read: true})

	snap, err := NewSnapshot(context.Background(), src, nil)
	require.NoError(t, err)

	src.Mutate(0x1000, []byte{9, 9, 9, 9})
	require.NoError(t, Refresh(context.Background(), src, nil, snap))
	regions := snap.Regions()
	require.Equal(t, []byte{9, 9, 9, 9}, regions[0].CurrentBytes)
	require.Equal(t, []byte{1, 2, 3, 4}, regions[0].PreviousBytes)

	src.FailReads[0x1000] = true
	require.NoError(t, Refresh(context.Background(), src, nil, snap))
	regions = snap.Regions()
	require.Equal(t, []byte{9, 9, 9, 9}, regions[0].CurrentBytes) // unchanged: read failed
}
