// Copyright 2024 The Squalr Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package result implements the §6 "scan-result refs" external interface:
// it reifies a snapshot's filters plus their current bytes into a flat,
// globally-indexed, paginated list of concrete scan results, and re-reads
// that list against the snapshot's live bytes on Refresh without
// recomputing the index.
//
// Pagination is built the way github.com/grailbio/bio/encoding/bamprovider
// exposes shard ranges to its caller: an explicit page_index/page_size/
// last_page_index triple over a flat, precomputed ordering, rather than a
// cursor the caller has to thread through. The paging cache's backing slice
// is pre-sized with circular.NextExp2 the same way the teacher used it to
// size bitmap rows that grow by doubling.
package result

import (
	"fmt"

	"github.com/squalr/scanengine/circular"
	"github.com/squalr/scanengine/dtype"
	"github.com/squalr/scanengine/scanerr"
	"github.com/squalr/scanengine/snapshot"
)

// Result is one externally addressable scan match: a concrete address, the
// data type that matched there, and the bytes read at the generation the
// result was built or last refreshed against. It is produced post-scan by
// reification, never an internal data structure of the kernel itself
// (§3's "Scan result" note).
type Result struct {
	GlobalIndex uint64
	Address     uint64
	DataTypeID  string
	Bytes       []byte
}

// entry is the store's internal bookkeeping for one result: enough to
// re-read its bytes from the live snapshot on Refresh without rebuilding
// the whole index.
type entry struct {
	address uint64
	region  *snapshot.Region
	offset  uint64
}

// Store holds the paginated, globally-indexed view of one snapshot
// generation's filters for one data type. Rebuild is the "reify filters
// into scan results" step; the store is not
// updated automatically when the snapshot advances to a new generation —
// a new scan narrows the filter set, which invalidates global indices per
// §6 ("a result's global index does not change while the snapshot
// generation does not change"), so callers rebuild a Store after every
// scan and only call Refresh between scans.
type Store struct {
	registry   *dtype.Registry
	dataTypeID string
	pageSize   int
	unitSize   int

	entries []entry
	total   uint64 // sum of entries' unit sizes
}

// NewStore creates an empty Store for results of dataTypeID (the type the
// scan that produced the filters was run against) with the given page size.
// Rebuild then fills it from a snapshot, treating each filter as a run of
// back-to-back elements of that type and assigning each element a
// sequential GlobalIndex in region/filter/address order — the same order
// guarantee the orchestrator provides for filters within a region (§4.6
// "Ordering guarantees").
func NewStore(registry *dtype.Registry, dataTypeID string, pageSize int) (*Store, error) {
	if pageSize <= 0 {
		return nil, scanerr.New(scanerr.BadParameter, "result.NewStore",
			fmt.Errorf("page size must be positive, got %d", pageSize))
	}
	d, err := registry.Get(dataTypeID)
	if err != nil {
		return nil, err
	}
	return &Store{
		registry:   registry,
		dataTypeID: dataTypeID,
		pageSize:   pageSize,
		unitSize:   d.UnitSize,
	}, nil
}

// Rebuild replaces the store's index with a fresh reification of snap's
// current filters. Call it once per scan generation, after the orchestrator
// has written the new filter set back into the snapshot.
func (s *Store) Rebuild(snap *snapshot.Snapshot) {
	regions := snap.Regions()

	// Rough capacity estimate: total filter bytes / unit size, rounded up to
	// the next power of two so append() amortizes cleanly even when the
	// estimate undershoots (overlapping-strategy filters can pack more
	// elements per byte than a naive per-region estimate assumes).
	var estimatedBytes uint64
	for _, r := range regions {
		for _, f := range r.Filters {
			estimatedBytes += f.RegionSize
		}
	}
	capHint := 1
	if s.unitSize > 0 && estimatedBytes > 0 {
		capHint = circular.NextExp2(int(estimatedBytes) / s.unitSize)
	}

	entries := make([]entry, 0, capHint)
	var total uint64
	for _, r := range regions {
		for _, f := range r.Filters {
			n := f.RegionSize / uint64(s.unitSize)
			for i := uint64(0); i < n; i++ {
				addr := f.BaseAddress + i*uint64(s.unitSize)
				entries = append(entries, entry{
					address: addr,
					region:  r,
					offset:  addr - r.BaseAddress,
				})
				total += uint64(s.unitSize)
			}
		}
	}
	s.entries = entries
	s.total = total
}

// ResultCount returns the number of indexed results.
func (s *Store) ResultCount() int { return len(s.entries) }

// TotalSizeInBytes returns the sum of every indexed result's byte length.
func (s *Store) TotalSizeInBytes() uint64 { return s.total }

// LastPageIndex returns the highest valid page index, or -1 if the store is
// empty.
func (s *Store) LastPageIndex() int {
	if len(s.entries) == 0 {
		return -1
	}
	return (len(s.entries) - 1) / s.pageSize
}

func (s *Store) materialize(e entry) Result {
	bytes := e.region.CurrentBytes[e.offset : e.offset+uint64(s.unitSize)]
	return Result{
		Address:    e.address,
		DataTypeID: s.dataTypeID,
		Bytes:      append([]byte(nil), bytes...),
	}
}

// Page is the §6 query() response shape.
type Page struct {
	PageIndex        int
	LastPageIndex    int
	PageSize         int
	ResultCount      int
	TotalSizeInBytes uint64
	Results          []Result
}

// Query returns page pageIndex of the store's results, each carrying its
// global index across the whole store, not its offset within the page
// (§6: `query(page_index) →
// (page_index, last_page_index, page_size, result_count, total_size_in_bytes,
// results[])`). An out-of-range pageIndex returns an empty Results slice
// rather than an error — pagination is a view, not a fallible lookup.
func (s *Store) Query(pageIndex int) Page {
	page := Page{
		PageIndex:        pageIndex,
		LastPageIndex:    s.LastPageIndex(),
		PageSize:         s.pageSize,
		ResultCount:      len(s.entries),
		TotalSizeInBytes: s.total,
	}
	start := pageIndex * s.pageSize
	if pageIndex < 0 || start >= len(s.entries) {
		return page
	}
	end := start + s.pageSize
	if end > len(s.entries) {
		end = len(s.entries)
	}
	results := make([]Result, 0, end-start)
	for i := start; i < end; i++ {
		r := s.materialize(s.entries[i])
		r.GlobalIndex = uint64(i)
		results = append(results, r)
	}
	page.Results = results
	return page
}

// Refresh re-reads the current bytes for each global index in refs,
// without touching the index itself. It is stable across a snapshot
// Refresh/generation rollover (§6: "a result's global index does not
// change while the snapshot generation does not change") since it reads
// straight through to each entry's live region pointer rather than a
// cached byte copy.
func (s *Store) Refresh(refs []uint64) ([]Result, error) {
	out := make([]Result, 0, len(refs))
	for _, idx := range refs {
		if idx >= uint64(len(s.entries)) {
			return nil, scanerr.New(scanerr.BadParameter, "result.Refresh",
				fmt.Errorf("global index %d out of range (%d results)", idx, len(s.entries)))
		}
		r := s.materialize(s.entries[idx])
		r.GlobalIndex = idx
		out = append(out, r)
	}
	return out, nil
}
