// Copyright 2024 The Squalr Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package orchestrator

import (
	"reflect"
	"sort"

	"blainsmith.com/go/seahash"
	"github.com/grailbio/base/log"
	"github.com/squalr/scanengine/filter"
	"github.com/squalr/scanengine/mapper"
	"github.com/squalr/scanengine/scanner"
	"github.com/squalr/scanengine/snapshot"
)

// validateAgainstScalar implements §4.6's "Validation scan": re-run this
// work item through the scalar strategy and diff against the result the
// mapper's chosen strategy produced. Any divergence is logged with the
// region's address and a seahash fingerprint of the scanned bytes (§13's
// supplemented checksum-for-bug-report feature, grounded on
// cmd/bio-pamtool/checksum.go) rather than the raw bytes themselves, so a
// bug report can carry a short reproducible signature.
func validateAgainstScalar(plan mapper.Plan, item workItem, region *snapshot.Region, cur, prev []byte, found []filter.Range) {
	scalarPlan := plan
	scalarPlan.Strategy = mapper.Scalar
	scalarPlan.VectorWidth = 0

	oracle, err := scanner.Scan(scalarPlan, item.f.BaseAddress, cur, prev)
	if err != nil {
		log.Error.Printf("orchestrator: validation scan failed for region 0x%x: %v", region.BaseAddress, err)
		return
	}

	if !sameFilterSet(found, oracle) {
		fingerprint := seahash.Sum64(cur)
		log.Error.Printf(
			"orchestrator: validation scan diverged at region 0x%x filter 0x%x (fingerprint %x): strategy produced %d filters, scalar oracle produced %d",
			region.BaseAddress, item.f.BaseAddress, fingerprint, len(found), len(oracle))
	}
}

func sameFilterSet(a, b []filter.Range) bool {
	sa := append([]filter.Range(nil), a...)
	sb := append([]filter.Range(nil), b...)
	sort.Slice(sa, func(i, j int) bool { return sa[i].BaseAddress < sa[j].BaseAddress })
	sort.Slice(sb, func(i, j int) bool { return sb[i].BaseAddress < sb[j].BaseAddress })
	return reflect.DeepEqual(sa, sb)
}
