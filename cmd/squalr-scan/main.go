// Copyright 2024 The Squalr Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

/*
squalr-scan is a demonstration CLI that drives the scan kernel end-to-end
against an in-process fake memory source, since attaching to a real OS
process is out of scope for the kernel itself (spec's Non-goals). It runs
an initial full-region scan, then narrows the candidate set through a
sequence of -scans steps, logging the result count after each step and
printing one page of results after the last.

It is a harness, not a replacement for the out-of-scope collaborators
(process attach, persistence, terminal rendering) the kernel treats as
external interfaces.
*/
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"strings"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"github.com/squalr/scanengine/dtype"
	"github.com/squalr/scanengine/mapper"
	"github.com/squalr/scanengine/memsource"
	"github.com/squalr/scanengine/orchestrator"
	"github.com/squalr/scanengine/result"
	"github.com/squalr/scanengine/wire"
)

var (
	dataType       = flag.String("type", "i32", "Data type id to scan with (see dtype.NewRegistry for the registered set)")
	scans          = flag.String("scans", "Equal:0", "Semicolon-separated list of Predicate:Operand steps to run in sequence, e.g. \"GreaterThan:10;Decreased\"")
	format         = flag.String("format", "decimal", "Operand string format: decimal, hex, binary, or byte_array")
	tolerance      = flag.Float64("tolerance", 0, "Floating-point comparison tolerance")
	alignOverride  = flag.Int("align", 0, "Alignment override in bytes; 0 means use the data type's unit size")
	pageSize       = flag.Int("page-size", 20, "Scan-result page size")
	printPage      = flag.Int("page", 0, "Page index to print after the final scan step")
	parallelism    = flag.Int("parallelism", 0, "Worker pool size; 0 means runtime.NumCPU()")
	singleThreaded = flag.Bool("single-threaded", false, "Force single-threaded scanning (debugging)")
	validate       = flag.Bool("validate", false, "Run the scalar validation scan alongside each step and log any divergence")
	demoRegions    = flag.Int("demo-regions", 2, "Number of fake memory regions to synthesize for the demonstration")
	demoRegionSize = flag.Int("demo-region-size", 4096, "Byte size of each synthesized fake memory region")
	demoSeed       = flag.Int64("demo-seed", 1, "Seed for the synthesized fake memory region contents and per-step mutation")
	dumpSnapshot   = flag.String("dump-snapshot", "", "If set, write a compressed diagnostic dump of the final snapshot's region metadata to this path")
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS]\n", os.Args[0])
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()
	shutdown := grail.Init()
	defer shutdown()

	ctx := vcontext.Background()
	registry := dtype.NewRegistry()

	src, process := buildDemoSource()
	snap, err := memsource.NewSnapshot(ctx, src, process)
	if err != nil {
		log.Panicf("building initial snapshot: %v", err)
	}

	settings := orchestrator.Settings{
		Parallelism:                *parallelism,
		SingleThreaded:             *singleThreaded,
		DebugPerformValidationScan: *validate,
	}

	rng := rand.New(rand.NewSource(*demoSeed))
	steps := strings.Split(*scans, ";")
	for i, step := range steps {
		step = strings.TrimSpace(step)
		if step == "" {
			continue
		}
		if i > 0 {
			mutateDemoSource(src, rng)
			if err := memsource.Refresh(ctx, src, process, snap); err != nil {
				log.Panicf("refreshing snapshot before step %d: %v", i, err)
			}
		}

		req, err := parseStep(registry, step)
		if err != nil {
			log.Panicf("step %d (%q): %v", i, step, err)
		}

		meta, err := orchestrator.Scan(ctx, registry, snap, req, settings)
		if err != nil {
			log.Panicf("step %d (%q): %v", i, step, err)
		}
		log.Printf("step %d: %q -> %d result ranges, %d bytes total", i, step, meta.ResultCount, meta.TotalSizeInBytes)
	}

	store, err := result.NewStore(registry, *dataType, *pageSize)
	if err != nil {
		log.Panicf("building result store: %v", err)
	}
	store.Rebuild(snap)
	page := store.Query(*printPage)
	printPageReport(page)

	if *dumpSnapshot != "" {
		if err := writeSnapshotDump(*dumpSnapshot, snap); err != nil {
			log.Panicf("dumping snapshot to %s: %v", *dumpSnapshot, err)
		}
	}
}

// parseStep turns "Predicate" or "Predicate:Operand" into a mapper.Request
// by round-tripping through the wire codec (wire.Decode), exercising the
// same parsing path an out-of-process command channel would use (§6).
func parseStep(registry *dtype.Registry, step string) (mapper.Request, error) {
	parts := strings.SplitN(step, ":", 2)
	b := wire.Bundle{
		Predicate:         parts[0],
		DataType:          *dataType,
		Format:            *format,
		Tolerance:         *tolerance,
		AlignmentOverride: *alignOverride,
	}
	if len(parts) == 2 {
		b.Operand = parts[1]
	}
	return wire.Decode(registry, b)
}

func printPageReport(p result.Page) {
	fmt.Printf("page %d of %d (page size %d): %d results, %d bytes total\n",
		p.PageIndex, p.LastPageIndex, p.PageSize, p.ResultCount, p.TotalSizeInBytes)
	for _, r := range p.Results {
		fmt.Printf("  [%d] 0x%x  %s\n", r.GlobalIndex, r.Address, formatBytes(r.Bytes))
	}
}

func formatBytes(b []byte) string {
	parts := make([]string, len(b))
	for i, v := range b {
		parts[i] = strconv.FormatUint(uint64(v), 16)
	}
	return strings.Join(parts, "")
}

// buildDemoSource synthesizes demo-regions fake memory regions of
// demo-region-size bytes each, seeded deterministically so repeated runs
// with the same flags scan the same bytes.
func buildDemoSource() (*memsource.FakeSource, any) {
	src := memsource.NewFakeSource()
	rng := rand.New(rand.NewSource(*demoSeed))
	for i := 0; i < *demoRegions; i++ {
		base := uint64(0x1000 + i*0x10000)
		data := make([]byte, *demoRegionSize)
		rng.Read(data)
		src.AddRegion(base, data, memsource.Permissions{Read: true, Write: true})
	}
	return src, "demo-process"
}

// mutateDemoSource simulates the target process's memory changing between
// scan generations, so Relative/Delta predicates have something meaningful
// to compare against.
func mutateDemoSource(src *memsource.FakeSource, rng *rand.Rand) {
	for i := 0; i < *demoRegions; i++ {
		base := uint64(0x1000 + i*0x10000)
		data := make([]byte, *demoRegionSize)
		rng.Read(data)
		src.Mutate(base, data)
	}
}
