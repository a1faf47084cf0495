// Copyright 2024 The Squalr Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package orchestrator implements the scan orchestrator (C8): it takes a
// snapshot and a scan request, dispatches per-(region, filter) work items
// across a worker pool, merges and coalesces the results, and writes the new
// filter set back into the snapshot.
//
// The work-item dispatch is grounded on
// github.com/grailbio/bio/pileup/snp/pileup.go's pileupSNPMain: partition a
// flat slice of work into `parallelism` contiguous index ranges and run them
// through github.com/grailbio/base/traverse.Each, with each job writing
// directly into a pre-sized, disjointly-indexed output slice rather than
// returning a value — exactly the shape this package's Scan reuses, swapped
// from BAM shards to scan filters.
package orchestrator

import (
	"context"
	"runtime"

	"github.com/grailbio/base/log"
	"github.com/grailbio/base/traverse"
	"github.com/squalr/scanengine/dtype"
	"github.com/squalr/scanengine/filter"
	"github.com/squalr/scanengine/mapper"
	"github.com/squalr/scanengine/scanerr"
	"github.com/squalr/scanengine/scanner"
	"github.com/squalr/scanengine/snapshot"
)

// Settings configures one Scan call (§5's "settings bundle").
type Settings struct {
	// Parallelism caps the worker pool size; 0 means runtime.NumCPU().
	Parallelism int
	// SingleThreaded forces Parallelism to 1, for debugging (§4.6 point 2).
	SingleThreaded bool
	// DebugPerformValidationScan additionally scans every region with the
	// scalar strategy and diffs the result against the chosen strategy's
	// output, logging any divergence (§4.6 point "Validation scan").
	DebugPerformValidationScan bool
}

// Metadata summarizes a completed scan (§4.6 "Outputs").
type Metadata struct {
	ResultCount      uint64
	TotalSizeInBytes uint64
}

// workItem is one (region, filter) pair to scan. The worker resolves the
// mapper plan for each item itself, since the mapper's vector-width
// tie-break depends on each filter's own size.
type workItem struct {
	regionIndex int
	f           filter.Range
}

// Scan runs req over every region/filter in snap, under the snapshot's
// exclusive lock for the whole call (§5: "Snapshot... exclusively owned by
// the orchestrator for the duration of a scan"). On cancellation via ctx,
// partial results are discarded and the snapshot is left unchanged, and
// Scan returns scanerr.Cancelled.
func Scan(ctx context.Context, registry *dtype.Registry, snap *snapshot.Snapshot, req mapper.Request, settings Settings) (Metadata, error) {
	unlock := snap.Lock()
	defer unlock()

	regions := snap.RegionsUnsafe()
	items := make([]workItem, 0, len(regions))
	for ri, r := range regions {
		for _, f := range r.Filters {
			items = append(items, workItem{regionIndex: ri, f: f})
		}
	}
	if len(items) == 0 {
		return Metadata{}, nil
	}

	parallelism := settings.Parallelism
	if settings.SingleThreaded {
		parallelism = 1
	} else if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}
	if parallelism > len(items) {
		parallelism = len(items)
	}

	results := make([][]filter.Range, len(items))

	err := traverse.Each(parallelism, func(jobIdx int) error {
		startIdx := (jobIdx * len(items)) / parallelism
		endIdx := ((jobIdx + 1) * len(items)) / parallelism

		for i := startIdx; i < endIdx; i++ {
			select {
			case <-ctx.Done():
				return scanerr.New(scanerr.Cancelled, "orchestrator.Scan", ctx.Err())
			default:
			}

			item := items[i]
			region := regions[item.regionIndex]
			plan, err := mapper.Map(registry, req, item.f.RegionSize)
			if err != nil {
				log.Printf("orchestrator.Scan: region 0x%x filter 0x%x: %v", region.BaseAddress, item.f.BaseAddress, err)
				continue
			}

			cur := region.FilterBytes(item.f)
			var prev []byte
			if req.Predicate.NeedsPrevious() {
				prev = region.FilterPreviousBytes(item.f)
				if prev == nil {
					continue
				}
			}

			found, err := scanner.Scan(plan, item.f.BaseAddress, cur, prev)
			if err != nil {
				if scanerr.KindOf(err) == scanerr.InternalInvariantViolated {
					return err
				}
				log.Printf("orchestrator.Scan: region 0x%x filter 0x%x: %v", region.BaseAddress, item.f.BaseAddress, err)
				continue
			}

			if settings.DebugPerformValidationScan {
				validateAgainstScalar(plan, item, region, cur, prev, found)
			}

			results[i] = found
		}
		return nil
	})

	if err != nil {
		// scanerr.Cancelled and scanerr.InternalInvariantViolated are the only
		// kinds a work item returns as a hard stop (§7); both propagate as-is so
		// the caller can distinguish them with scanerr.KindOf.
		return Metadata{}, err
	}

	return mergeResults(regions, items, results), nil
}

// mergeResults implements §4.6 points 4-5: per region, concatenate the
// per-work-item filters in original order, coalesce address-adjacent ranges
// (an artifact of overlapping-strategy passes), write the merged filters
// back into the region, and accumulate the summary metadata.
func mergeResults(regions []*snapshot.Region, items []workItem, results [][]filter.Range) Metadata {
	perRegion := make([][]filter.Range, len(regions))
	for i, item := range items {
		perRegion[item.regionIndex] = append(perRegion[item.regionIndex], results[i]...)
	}

	var meta Metadata
	for ri, region := range regions {
		merged := filter.CoalesceAdjacent(perRegion[ri])
		region.Filters = merged
		meta.ResultCount += uint64(len(merged))
		for _, f := range merged {
			meta.TotalSizeInBytes += f.RegionSize
		}
	}
	return meta
}
