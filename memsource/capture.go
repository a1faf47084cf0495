// Copyright 2024 The Squalr Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package memsource

import (
	"context"

	"github.com/grailbio/base/log"
	"github.com/squalr/scanengine/snapshot"
)

// NewSnapshot enumerates every region src reports for process and reads its
// bytes, building a fresh first-generation snapshot. A region whose read
// fails is dropped entirely — there is no prior generation to fall back to
// (§6: "On partial-read failures, the region is dropped for the
// generation").
func NewSnapshot(ctx context.Context, src Source, process any) (*snapshot.Snapshot, error) {
	descs, err := src.EnumerateRegions(ctx, process)
	if err != nil {
		return nil, err
	}
	var regions []*snapshot.Region
	for _, d := range descs {
		bytes, err := src.ReadBytes(ctx, process, d.Base, d.Size)
		if err != nil {
			log.Printf("memsource.NewSnapshot: dropping region 0x%x (%d bytes): %v", d.Base, d.Size, err)
			continue
		}
		regions = append(regions, snapshot.NewRegion(d.Base, bytes))
	}
	return snapshot.New(regions), nil
}

// Refresh re-reads every region already in snap and advances its
// generation (§3's current/previous rollover). A region whose read fails
// keeps its existing current generation and its filter set untouched — §6's
// "the filter set for that region is preserved unchanged" — rather than
// being dropped from the snapshot, since (unlike NewSnapshot) there is a
// prior generation worth keeping.
func Refresh(ctx context.Context, src Source, process any, snap *snapshot.Snapshot) error {
	unlock := snap.Lock()
	defer unlock()

	for _, r := range snap.RegionsUnsafe() {
		bytes, err := src.ReadBytes(ctx, process, r.BaseAddress, r.RegionSize)
		if err != nil {
			log.Printf("memsource.Refresh: region 0x%x read failed, preserving prior generation: %v", r.BaseAddress, err)
			continue
		}
		r.Advance(bytes)
	}
	return nil
}

// Write passes a write request straight through to src, for the rare
// external collaborator that pokes values back into the target (§6's
// write_bytes). The kernel itself never calls this on its own initiative.
func Write(ctx context.Context, src Source, process any, base uint64, data []byte) error {
	return src.WriteBytes(ctx, process, base, data)
}
