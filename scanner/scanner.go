// Copyright 2024 The Squalr Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package scanner implements the scanner strategies (C6): scalar, dense
// aligned, overlapping (sub-element-aligned), sparse, and bytewise-periodic,
// each walking one filter's bytes against a mapper.Plan and feeding a
// filter.Encoder.
//
// The scalar and dense strategies share the mask-chunk walk in dense.go;
// overlapping runs that same walk once per alignment-shifted sub-slice
// (§4.4 point 3) and lets its caller (the orchestrator) coalesce the
// resulting address-interleaved filters, exactly as §4.4's closing
// paragraph assigns that job. Sparse and bytewise-periodic have their own
// loops in sparse.go and periodic.go.
package scanner

import (
	"fmt"

	"github.com/squalr/scanengine/filter"
	"github.com/squalr/scanengine/mapper"
	"github.com/squalr/scanengine/scanerr"
)

// Scan runs plan's chosen strategy over one filter's current (and, for
// predicates that need it, previous) bytes, starting at filterBase, and
// returns the filters found. A kernel panic is a bug (§4.4's failure
// semantics say tests must catch it, not this function); a missing previous
// generation for a predicate that needs one is reported as BadParameter
// instead, since it's a caller-supplied condition, not a kernel bug.
func Scan(plan mapper.Plan, filterBase uint64, current, previous []byte) ([]filter.Range, error) {
	if plan.Predicate.NeedsPrevious() && previous == nil {
		return nil, scanerr.New(scanerr.BadParameter, "scanner.Scan",
			fmt.Errorf("predicate %s requires a previous generation", plan.Predicate))
	}

	switch plan.Strategy {
	case mapper.Scalar, mapper.Dense:
		return denseWalk(plan, filterBase, current, previous), nil
	case mapper.Overlapping:
		return scanOverlapping(plan, filterBase, current, previous), nil
	case mapper.Sparse:
		return scanSparse(plan, filterBase, current, previous), nil
	case mapper.BytewisePeriodic:
		return scanBytewisePeriodic(plan, filterBase, current), nil
	default:
		return nil, scanerr.New(scanerr.InternalInvariantViolated, "scanner.Scan",
			fmt.Errorf("unrecognized strategy %v", plan.Strategy))
	}
}
