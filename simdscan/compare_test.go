// Copyright 2024 The Squalr Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package simdscan

import (
	"testing"

	"github.com/squalr/scanengine/dtype"
	"github.com/stretchr/testify/require"
)

func descriptor(t *testing.T, id string) *dtype.Descriptor {
	t.Helper()
	d, err := dtype.NewRegistry().Get(id)
	require.NoError(t, err)
	return d
}

func TestEqualImmediateI32(t *testing.T) {
	d := descriptor(t, "i32")
	kernel, ok := Lookup(Equal, d)
	require.True(t, ok)

	current := d.EncodeInt(42)
	current = append(current, d.EncodeInt(7)...)
	operand := d.EncodeInt(42)
	mask := make([]byte, len(current))

	kernel(mask, current, nil, d, Params{Operand: operand})
	require.True(t, ElementMatched(mask, 0, 4))
	require.False(t, ElementMatched(mask, 1, 4))
}

func TestEqualErasesByteOrder(t *testing.T) {
	le := descriptor(t, "i32")
	be := descriptor(t, "i32be")

	leBytes := le.EncodeInt(-1000)
	beBytes := be.EncodeInt(-1000)
	require.NotEqual(t, leBytes, beBytes)

	kernelLE, _ := Lookup(Equal, le)
	kernelBE, _ := Lookup(Equal, be)

	maskLE := make([]byte, 4)
	maskBE := make([]byte, 4)
	kernelLE(maskLE, leBytes, nil, le, Params{Operand: le.EncodeInt(-1000)})
	kernelBE(maskBE, beBytes, nil, be, Params{Operand: be.EncodeInt(-1000)})
	require.True(t, AllMatched(maskLE))
	require.True(t, AllMatched(maskBE))
}

func TestFloatToleranceEquality(t *testing.T) {
	d := descriptor(t, "f64")
	kernel, ok := Lookup(Equal, d)
	require.True(t, ok)

	current := d.EncodeFloat(1.00001)
	operand := d.EncodeFloat(1.0)
	mask := make([]byte, 8)

	kernel(mask, current, nil, d, Params{Operand: operand, Tolerance: 0.001})
	require.True(t, AllMatched(mask))

	kernel(mask, current, nil, d, Params{Operand: operand, Tolerance: 0.0000001})
	require.True(t, AllUnmatched(mask))
}

func TestDividedByZeroIsFalseNotPanic(t *testing.T) {
	d := descriptor(t, "i32")
	kernel, ok := Lookup(DividedBy, d)
	require.True(t, ok)

	current := d.EncodeInt(10)
	previous := d.EncodeInt(10)
	operand := d.EncodeInt(0)
	mask := make([]byte, 4)

	require.NotPanics(t, func() {
		kernel(mask, current, previous, d, Params{Operand: operand})
	})
	require.True(t, AllUnmatched(mask))
}

func TestShiftByOutOfRangeIsFalse(t *testing.T) {
	d := descriptor(t, "u8")
	kernel, ok := Lookup(ShiftLeftBy, d)
	require.True(t, ok)

	current := d.EncodeUint(1)
	previous := d.EncodeUint(1)
	operand := d.EncodeUint(64)
	mask := make([]byte, 1)

	kernel(mask, current, previous, d, Params{Operand: operand})
	require.True(t, AllUnmatched(mask))
}

func TestModuloAndShiftUnavailableForFloat(t *testing.T) {
	d := descriptor(t, "f32")
	_, ok := Lookup(ModuloBy, d)
	require.False(t, ok)
	_, ok = Lookup(ShiftLeftBy, d)
	require.False(t, ok)
}

func TestOrderingUnavailableForByteArray(t *testing.T) {
	d := descriptor(t, "bytes")
	_, ok := Lookup(GreaterThan, d)
	require.False(t, ok)

	kernel, ok := Lookup(Equal, d)
	require.True(t, ok)
	mask := make([]byte, 3)
	kernel(mask, []byte{1, 1, 1}, nil, d, Params{Operand: []byte{1}})
	require.True(t, AllMatched(mask))
}

func TestUnsignedWraparoundComparesCorrectly(t *testing.T) {
	d := descriptor(t, "u8")
	kernel, ok := Lookup(GreaterThan, d)
	require.True(t, ok)

	current := d.EncodeUint(200)
	operand := d.EncodeUint(100)
	mask := make([]byte, 1)
	kernel(mask, current, nil, d, Params{Operand: operand})
	require.True(t, AllMatched(mask))
}

func TestFloatOrderingIgnoresTolerance(t *testing.T) {
	d := descriptor(t, "f64")
	mask := make([]byte, 8)

	// current is just below operand by less than the tolerance, so a
	// tolerance-leaking >= would wrongly report a match.
	current := d.EncodeFloat(0.999)
	operand := d.EncodeFloat(1.0)

	kernel, ok := Lookup(GreaterThanOrEqual, d)
	require.True(t, ok)
	kernel(mask, current, nil, d, Params{Operand: operand, Tolerance: 1.0})
	require.True(t, AllUnmatched(mask))

	kernel, ok = Lookup(LessThanOrEqual, d)
	require.True(t, ok)
	kernel(mask, current, nil, d, Params{Operand: operand, Tolerance: 1.0})
	require.True(t, AllMatched(mask))
}

func TestRelativeIncreasedDecreased(t *testing.T) {
	d := descriptor(t, "i16")
	kernel, ok := Lookup(Increased, d)
	require.True(t, ok)

	current := d.EncodeInt(5)
	previous := d.EncodeInt(3)
	mask := make([]byte, 2)
	kernel(mask, current, previous, d, Params{})
	require.True(t, AllMatched(mask))

	kernel, ok = Lookup(Decreased, d)
	require.True(t, ok)
	kernel(mask, current, previous, d, Params{})
	require.True(t, AllUnmatched(mask))
}
