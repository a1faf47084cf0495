// Copyright 2024 The Squalr Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package simdscan

import (
	"math"

	"github.com/squalr/scanengine/dtype"
)

// Params bundles a predicate's non-byte-slice inputs: an encoded operand
// (unused by predicates that don't need one) and a float tolerance (unused
// by integer and byte-array types).
type Params struct {
	// Operand holds the comparison operand (Immediate family) or the delta
	// operand (Delta family), already encoded in the descriptor's format.
	// Left nil for Changed/Unchanged/Increased/Decreased.
	Operand []byte
	// Tolerance is the maximum absolute difference two float values may
	// differ by and still compare Equal/Unchanged. Ignored for Integer and
	// ByteArray classes, which compare bit-exactly.
	Tolerance float64
}

// KernelFunc evaluates its bound predicate over every element of current
// (and, for predicates that need it, previous), writing a byte mask into
// dst: every byte of an element that matched is set to 0xFF, every byte of a
// non-matching element to 0x00. dst, current, and previous (when non-nil)
// must all be the same length, a multiple of d.UnitSize.
//
// This mirrors how a real SIMD compare instruction reports its result: the
// match decision is made once per lane, then broadcast across that lane's
// full byte width, so a caller can fast-path an all-0xFF or all-0x00 chunk
// without revisiting individual bytes (§4.3, §4.5's dense-scanner
// fast path).
type KernelFunc func(dst, current, previous []byte, d *dtype.Descriptor, p Params)

// Lookup returns the kernel for predicate pred over data type d, and false
// if no kernel supports that (predicate, class) combination — e.g. ordering
// predicates over a ByteArray type, or the integer-only Delta predicates
// over a Float type (ModuloBy, the shifts, and the logical ops; IncreasedBy,
// DecreasedBy, MultipliedBy, and DividedBy are supported for floats).
// This mirrors the Option<fn> fallback the original implementation used per
// (type, width): the mapper asks once before the scan starts and fails fast
// with scanerr.BadParameter rather than discovering the gap mid-scan.
func Lookup(pred Predicate, d *dtype.Descriptor) (KernelFunc, bool) {
	if d.Class == dtype.ByteArray {
		switch pred {
		case Equal, NotEqual, Changed, Unchanged:
			return bind(pred), true
		default:
			return nil, false
		}
	}
	switch pred {
	case ModuloBy, ShiftLeftBy, ShiftRightBy, LogicalAnd, LogicalOr, LogicalXor:
		if d.Class == dtype.Float {
			return nil, false
		}
		return bind(pred), true
	default:
		return bind(pred), true
	}
}

// bind closes over pred so the returned KernelFunc matches the
// predicate-agnostic dst/current/previous/descriptor/params signature every
// scanner strategy in package scanner calls through.
func bind(pred Predicate) KernelFunc {
	return func(dst, current, previous []byte, d *dtype.Descriptor, p Params) {
		n := d.UnitSize
		for off := 0; off+n <= len(current); off += n {
			cur := current[off : off+n]
			var prev []byte
			if previous != nil {
				prev = previous[off : off+n]
			}
			fill := byte(0x00)
			if evalElement(pred, d, cur, prev, p) {
				fill = 0xFF
			}
			for i := 0; i < n; i++ {
				dst[off+i] = fill
			}
		}
	}
}

// evalElement evaluates pred over a single element, already sliced to
// exactly d.UnitSize bytes.
func evalElement(pred Predicate, d *dtype.Descriptor, cur, prev []byte, p Params) bool {
	if d.Class == dtype.ByteArray {
		return evalBytes(pred, cur, prev, p.Operand)
	}
	if d.Class == dtype.Float {
		return evalFloat(pred, d, cur, prev, p)
	}
	if d.Signed {
		return evalSignedInt(pred, d, cur, prev, p)
	}
	return evalUnsignedInt(pred, d, cur, prev, p)
}

func evalBytes(pred Predicate, cur, prev, operand []byte) bool {
	switch pred {
	case Equal:
		return bytesEqual(cur, operand)
	case NotEqual:
		return !bytesEqual(cur, operand)
	case Changed:
		return !bytesEqual(cur, prev)
	case Unchanged:
		return bytesEqual(cur, prev)
	default:
		return false
	}
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func evalFloat(pred Predicate, d *dtype.Descriptor, cur, prev []byte, p Params) bool {
	c := d.DecodeFloat(cur)
	within := func(a, b float64) bool { return math.Abs(a-b) <= p.Tolerance }

	switch pred.Family() {
	case ImmediateFamily:
		o := d.DecodeFloat(p.Operand)
		switch pred {
		case Equal:
			return within(c, o)
		case NotEqual:
			return !within(c, o)
		case GreaterThan:
			return c > o
		case GreaterThanOrEqual:
			return c >= o
		case LessThan:
			return c < o
		case LessThanOrEqual:
			return c <= o
		}
	case RelativeFamily:
		pr := d.DecodeFloat(prev)
		switch pred {
		case Changed:
			return !within(c, pr)
		case Unchanged:
			return within(c, pr)
		case Increased:
			return c > pr
		case Decreased:
			return c < pr
		}
	case DeltaFamily:
		pr := d.DecodeFloat(prev)
		o := d.DecodeFloat(p.Operand)
		switch pred {
		case IncreasedBy:
			return within(c, pr+o)
		case DecreasedBy:
			return within(c, pr-o)
		case MultipliedBy:
			return within(c, pr*o)
		case DividedBy:
			if o == 0 {
				return false
			}
			return within(c, pr/o)
		}
	}
	return false
}

func evalSignedInt(pred Predicate, d *dtype.Descriptor, cur, prev []byte, p Params) bool {
	c := d.DecodeInt(cur)
	switch pred.Family() {
	case ImmediateFamily:
		o := d.DecodeInt(p.Operand)
		return compareOrdered(pred, c, o)
	case RelativeFamily:
		pr := d.DecodeInt(prev)
		return compareRelative(pred, c, pr)
	case DeltaFamily:
		pr := d.DecodeInt(prev)
		o := d.DecodeInt(p.Operand)
		target, ok := deltaTargetSigned(pred, pr, o, 8*d.UnitSize)
		if !ok {
			return false
		}
		return c == target
	}
	return false
}

func evalUnsignedInt(pred Predicate, d *dtype.Descriptor, cur, prev []byte, p Params) bool {
	c := d.DecodeUint(cur)
	switch pred.Family() {
	case ImmediateFamily:
		o := d.DecodeUint(p.Operand)
		return compareOrdered(pred, c, o)
	case RelativeFamily:
		pr := d.DecodeUint(prev)
		return compareRelative(pred, c, pr)
	case DeltaFamily:
		pr := d.DecodeUint(prev)
		o := d.DecodeUint(p.Operand)
		target, ok := deltaTargetUnsigned(pred, pr, o, 8*d.UnitSize)
		if !ok {
			return false
		}
		return c == target
	}
	return false
}

type ordered interface{ ~int64 | ~uint64 }

func compareOrdered[T ordered](pred Predicate, c, o T) bool {
	switch pred {
	case Equal:
		return c == o
	case NotEqual:
		return c != o
	case GreaterThan:
		return c > o
	case GreaterThanOrEqual:
		return c >= o
	case LessThan:
		return c < o
	case LessThanOrEqual:
		return c <= o
	default:
		return false
	}
}

func compareRelative[T ordered](pred Predicate, c, pr T) bool {
	switch pred {
	case Changed:
		return c != pr
	case Unchanged:
		return c == pr
	case Increased:
		return c > pr
	case Decreased:
		return c < pr
	default:
		return false
	}
}

// signExtend sign-extends the low bitWidth bits of u to a full int64.
func signExtend(u uint64, bitWidth int) int64 {
	shift := uint(64 - bitWidth)
	return int64(u<<shift) >> shift
}

// truncateUnsigned masks u down to its low bitWidth bits.
func truncateUnsigned(u uint64, bitWidth int) uint64 {
	if bitWidth >= 64 {
		return u
	}
	return u & (uint64(1)<<uint(bitWidth) - 1)
}

// deltaTargetSigned computes f(previous, operand) for the Delta family over
// a bitWidth-bit signed type, returning ok=false for the operations the
// spec requires to fail the comparison (not trap) on overflow/degenerate
// input: divide/modulo by zero, and shifts by an amount outside
// [0, bitWidth). Arithmetic/bitwise results are truncated back to bitWidth
// bits (with sign re-extended) so they compare correctly against a current
// value decoded from the same bitWidth-bit type.
func deltaTargetSigned(pred Predicate, pr, o int64, bitWidth int) (int64, bool) {
	wrap := func(v int64) (int64, bool) {
		return signExtend(truncateUnsigned(uint64(v), bitWidth), bitWidth), true
	}
	switch pred {
	case IncreasedBy:
		return wrap(pr + o)
	case DecreasedBy:
		return wrap(pr - o)
	case MultipliedBy:
		return wrap(pr * o)
	case DividedBy:
		if o == 0 {
			return 0, false
		}
		return wrap(pr / o)
	case ModuloBy:
		if o == 0 {
			return 0, false
		}
		return wrap(pr % o)
	case ShiftLeftBy:
		if o < 0 || o >= int64(bitWidth) {
			return 0, false
		}
		return wrap(pr << uint(o))
	case ShiftRightBy:
		if o < 0 || o >= int64(bitWidth) {
			return 0, false
		}
		return wrap(pr >> uint(o))
	case LogicalAnd:
		return wrap(pr & o)
	case LogicalOr:
		return wrap(pr | o)
	case LogicalXor:
		return wrap(pr ^ o)
	default:
		return 0, false
	}
}

// deltaTargetUnsigned is deltaTargetSigned's unsigned-type counterpart.
func deltaTargetUnsigned(pred Predicate, pr, o uint64, bitWidth int) (uint64, bool) {
	wrap := func(v uint64) (uint64, bool) { return truncateUnsigned(v, bitWidth), true }
	switch pred {
	case IncreasedBy:
		return wrap(pr + o)
	case DecreasedBy:
		return wrap(pr - o)
	case MultipliedBy:
		return wrap(pr * o)
	case DividedBy:
		if o == 0 {
			return 0, false
		}
		return wrap(pr / o)
	case ModuloBy:
		if o == 0 {
			return 0, false
		}
		return wrap(pr % o)
	case ShiftLeftBy:
		if o >= uint64(bitWidth) {
			return 0, false
		}
		return wrap(pr << o)
	case ShiftRightBy:
		if o >= uint64(bitWidth) {
			return 0, false
		}
		return wrap(pr >> o)
	case LogicalAnd:
		return wrap(pr & o)
	case LogicalOr:
		return wrap(pr | o)
	case LogicalXor:
		return wrap(pr ^ o)
	default:
		return 0, false
	}
}
