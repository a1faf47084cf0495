// Copyright 2024 The Squalr Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package simdscan is the comparison kernel library (C5): pure, allocation-
// free functions that compare one generation of memory bytes (and, for
// relative/delta predicates, the prior generation) against an operand and
// produce a byte mask of the result.
//
// The kernels are "vectorized" the way
// github.com/grailbio/bio/biosimd's *_generic.go files are: a plain Go loop
// standing in for the hand-written assembly biosimd carries on amd64.
// There is no assembly here — a scan kernel's useful lifetime is the scan
// itself, and the branch-free table dispatch below already gets the one
// property that matters for a filter encoder: a kernel call never revisits a
// byte once decided.
package simdscan

// Predicate is a comparison variant a scan can run. It is a closed,
// tagged-union-like enumeration rather than an interface, matching §3's
// compare-type taxonomy: Immediate compares current bytes to a fixed
// operand; Relative compares current bytes to the previous generation;
// Delta compares current bytes to a function of the previous generation and
// an operand.
type Predicate int

const (
	// Immediate family: current vs. a fixed operand.
	Equal Predicate = iota
	NotEqual
	GreaterThan
	GreaterThanOrEqual
	LessThan
	LessThanOrEqual

	// Relative family: current vs. previous.
	Changed
	Unchanged
	Increased
	Decreased

	// Delta family: current vs. f(previous, operand).
	IncreasedBy
	DecreasedBy
	MultipliedBy
	DividedBy
	ModuloBy
	ShiftLeftBy
	ShiftRightBy
	LogicalAnd
	LogicalOr
	LogicalXor
)

// Family groups predicates by which generations and operands they consult.
type Family int

const (
	ImmediateFamily Family = iota
	RelativeFamily
	DeltaFamily
)

// Family reports which generations/operands p needs.
func (p Predicate) Family() Family {
	switch p {
	case Equal, NotEqual, GreaterThan, GreaterThanOrEqual, LessThan, LessThanOrEqual:
		return ImmediateFamily
	case Changed, Unchanged, Increased, Decreased:
		return RelativeFamily
	default:
		return DeltaFamily
	}
}

// NeedsPrevious reports whether p's evaluation requires a previous-generation
// byte slice to be supplied.
func (p Predicate) NeedsPrevious() bool {
	return p.Family() != ImmediateFamily
}

// NeedsOperand reports whether p consults a user-supplied operand (as
// opposed to Changed/Unchanged/Increased/Decreased, which compare current
// only to previous).
func (p Predicate) NeedsOperand() bool {
	switch p {
	case Changed, Unchanged, Increased, Decreased:
		return false
	default:
		return true
	}
}

func (p Predicate) String() string {
	switch p {
	case Equal:
		return "Equal"
	case NotEqual:
		return "NotEqual"
	case GreaterThan:
		return "GreaterThan"
	case GreaterThanOrEqual:
		return "GreaterThanOrEqual"
	case LessThan:
		return "LessThan"
	case LessThanOrEqual:
		return "LessThanOrEqual"
	case Changed:
		return "Changed"
	case Unchanged:
		return "Unchanged"
	case Increased:
		return "Increased"
	case Decreased:
		return "Decreased"
	case IncreasedBy:
		return "IncreasedBy"
	case DecreasedBy:
		return "DecreasedBy"
	case MultipliedBy:
		return "MultipliedBy"
	case DividedBy:
		return "DividedBy"
	case ModuloBy:
		return "ModuloBy"
	case ShiftLeftBy:
		return "ShiftLeftBy"
	case ShiftRightBy:
		return "ShiftRightBy"
	case LogicalAnd:
		return "LogicalAnd"
	case LogicalOr:
		return "LogicalOr"
	case LogicalXor:
		return "LogicalXor"
	default:
		return "Unknown"
	}
}
