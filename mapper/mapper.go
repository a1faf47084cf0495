// Copyright 2024 The Squalr Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package mapper implements the scan parameter mapper (C7): a pure function
// from a scan request plus a region size hint to a fully resolved Plan —
// effective unit size/endianness, alignment, vector width, periodicity, and
// strategy selection — with the documented tie-breaks from §4.5 of the
// specification applied once, up front, rather than re-derived by every
// worker.
package mapper

import (
	"fmt"

	"github.com/grailbio/base/errors"
	"github.com/squalr/scanengine/dtype"
	"github.com/squalr/scanengine/scanerr"
	"github.com/squalr/scanengine/simdscan"
)

// Strategy is the scanner strategy (C6) the mapper has chosen for a Plan.
type Strategy int

const (
	Scalar Strategy = iota
	Dense
	Overlapping
	Sparse
	BytewisePeriodic
)

func (s Strategy) String() string {
	switch s {
	case Scalar:
		return "scalar"
	case Dense:
		return "dense"
	case Overlapping:
		return "overlapping"
	case Sparse:
		return "sparse"
	case BytewisePeriodic:
		return "bytewise_periodic"
	default:
		return "unknown"
	}
}

// Request is the caller-supplied half of a scan parameter resolution: what
// to compare, against what data type, and any alignment override.
type Request struct {
	Predicate         simdscan.Predicate
	DataTypeID        string
	Operand           []byte // encoded per the data type's format; nil if unused
	Tolerance         float64
	AlignmentOverride int // 0 means "use the type's unit size"
}

// Plan is the mapper's fully resolved output, ready for a scanner strategy
// to execute without consulting the registry or re-deriving anything.
type Plan struct {
	Descriptor  *dtype.Descriptor
	Kernel      simdscan.KernelFunc
	Predicate   simdscan.Predicate
	Params      simdscan.Params
	Alignment   int
	VectorWidth int // 0 when the region is too small to vectorize (scalar granularity)
	Periodicity int // 0 (none), 1, 2, or 4; always smaller than the unit size
	Strategy    Strategy
}

// candidateVectorWidths are tried widest-first per §4.5's tie-break
// ("wider vector always wins if the region is large enough").
var candidateVectorWidths = [...]int{64, 32, 16}

// Map resolves req against the registry into a Plan, given regionSize (the
// byte length of the filter this plan will scan — used only for the vector
// width tie-break, since a plan is otherwise a pure function of req). It
// returns scanerr.BadParameter if the registry has no kernel for
// (req.Predicate, the resolved data type) — e.g. a float type asked for
// ModuloBy — so the orchestrator can log and skip the request per §7 rather
// than discover the gap mid-scan.
func Map(registry *dtype.Registry, req Request, regionSize uint64) (Plan, error) {
	d, err := registry.Get(req.DataTypeID)
	if err != nil {
		return Plan{}, err
	}
	kernel, ok := simdscan.Lookup(req.Predicate, d)
	if !ok {
		underlying := fmt.Errorf("predicate %s is not supported for data type %s", req.Predicate, d.ID)
		return Plan{}, scanerr.New(scanerr.BadParameter, "mapper.Map",
			errors.E(underlying, "incompatible predicate/type combination"))
	}

	alignment := req.AlignmentOverride
	if alignment <= 0 {
		alignment = d.UnitSize
	}

	periodicity := detectPeriodicity(req.Predicate, d, req.Operand)
	strategy := selectStrategy(periodicity, alignment, d.UnitSize)

	vectorWidth := 0
	if strategy != Scalar {
		vectorWidth = selectVectorWidth(regionSize, d.UnitSize)
	}

	return Plan{
		Descriptor:  d,
		Kernel:      kernel,
		Predicate:   req.Predicate,
		Params:      simdscan.Params{Operand: req.Operand, Tolerance: req.Tolerance},
		Alignment:   alignment,
		VectorWidth: vectorWidth,
		Periodicity: periodicity,
		Strategy:    strategy,
	}, nil
}

// selectStrategy implements §4.5 point 5 exactly: periodic wins outright;
// otherwise the strategy follows from comparing alignment to unit size.
func selectStrategy(periodicity, alignment, unitSize int) Strategy {
	if periodicity > 0 {
		return BytewisePeriodic
	}
	switch {
	case alignment == unitSize:
		return Dense
	case alignment < unitSize:
		return Overlapping
	default:
		return Sparse
	}
}

// selectVectorWidth picks the widest of 64/32/16 bytes that fits the region
// at least once and that unitSize divides evenly (it always does, since unitSize
// is one of 1/2/4/8 — trivially a divisor of every candidate width — this
// check exists for an explicit paper trail, not because it can fail). A
// region smaller than the narrowest candidate returns 0 (scalar
// granularity): §4.5 point 3's "falls back to scalar if the platform lacks
// SIMD" is modeled here as "falls back to scalar if there isn't enough data
// to fill even the smallest vector," since this kernel never emits real
// SIMD instructions (see simdscan's package doc).
func selectVectorWidth(regionSize uint64, unitSize int) int {
	for _, n := range candidateVectorWidths {
		if n%unitSize != 0 {
			continue
		}
		if regionSize >= uint64(n) {
			return n
		}
	}
	return 0
}

// detectPeriodicity implements §4.5 point 4: periodicity only applies to
// Equal/NotEqual over an integer type, and only when the operand's bytes
// actually repeat with one of the supported periods. Periods are tried
// smallest-first so a maximally-periodic operand (e.g. all-zero bytes, which
// trivially satisfies period 1) gets the cheapest possible comparison width.
func detectPeriodicity(pred simdscan.Predicate, d *dtype.Descriptor, operand []byte) int {
	if d.Class != dtype.Integer {
		return 0
	}
	if pred != simdscan.Equal && pred != simdscan.NotEqual {
		return 0
	}
	for _, p := range [...]int{1, 2, 4, 8} {
		// p must be a proper divisor of the unit size: p == UnitSize would
		// trivially "match" with nothing left to compare against, which isn't
		// a repeating sub-pattern at all, just the whole element.
		if p >= d.UnitSize || p > len(operand) || d.UnitSize%p != 0 {
			continue
		}
		if hasPeriod(operand, p) {
			return p
		}
	}
	return 0
}

func hasPeriod(b []byte, p int) bool {
	for i := p; i < len(b); i++ {
		if b[i] != b[i%p] {
			return false
		}
	}
	return true
}
