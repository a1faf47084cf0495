// Copyright 2024 The Squalr Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package main

import (
	"encoding/binary"
	"os"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/gzip"
	"github.com/squalr/scanengine/snapshot"
)

// writeSnapshotDump writes a diagnostic export of snap's region metadata
// (base address, size, filter count, filter bytes) to path: a snappy-framed
// stream of fixed-width records, gzip-wrapped on top. It is a bug-report
// aid, not a format the kernel itself ever reads back (§6: "Persisted
// state: None in the kernel").
func writeSnapshotDump(path string, snap *snapshot.Snapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	gz := gzip.NewWriter(f)
	defer gz.Close()

	sw := snappy.NewBufferedWriter(gz)
	defer sw.Close()

	for _, r := range snap.Regions() {
		var filterBytes uint64
		for _, flt := range r.Filters {
			filterBytes += flt.RegionSize
		}
		var rec [32]byte
		binary.LittleEndian.PutUint64(rec[0:8], r.BaseAddress)
		binary.LittleEndian.PutUint64(rec[8:16], r.RegionSize)
		binary.LittleEndian.PutUint64(rec[16:24], uint64(len(r.Filters)))
		binary.LittleEndian.PutUint64(rec[24:32], filterBytes)
		if _, err := sw.Write(rec[:]); err != nil {
			return err
		}
	}
	return nil
}
