// Copyright 2024 The Squalr Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package dtype

import "math"

// DecodeUint interprets b (d.UnitSize bytes, in d's endianness) as an
// unsigned integer, zero-extended to 64 bits. It is the load-boundary
// erasure point: every comparison kernel in package simdscan calls through
// this (or DecodeInt/DecodeFloat) before comparing, so a big-endian type and
// its little-endian twin run through identical comparison logic once their
// bytes reach this function — byte order never reaches the predicate logic
// (§4.3's "byte order is erased at the load boundary").
func (d *Descriptor) DecodeUint(b []byte) uint64 {
	return uintFromBytes(b, d.Endian)
}

// DecodeInt interprets b as a two's-complement signed integer of d's width,
// sign-extended to 64 bits.
func (d *Descriptor) DecodeInt(b []byte) int64 {
	u := uintFromBytes(b, d.Endian)
	shift := uint(64 - 8*d.UnitSize)
	return int64(u<<shift) >> shift
}

// DecodeFloat interprets b as an IEEE-754 float of d's width, widened to
// float64.
func (d *Descriptor) DecodeFloat(b []byte) float64 {
	u := uintFromBytes(b, d.Endian)
	if d.UnitSize == 4 {
		return float64(math.Float32frombits(uint32(u)))
	}
	return math.Float64frombits(u)
}

// EncodeUint is the inverse of DecodeUint: it packs v into d.UnitSize bytes
// in d's endianness.
func (d *Descriptor) EncodeUint(v uint64) []byte {
	return bytesFromUint(v, d.UnitSize, d.Endian)
}

// EncodeInt packs a signed integer into d.UnitSize bytes.
func (d *Descriptor) EncodeInt(v int64) []byte {
	return bytesFromUint(uint64(v), d.UnitSize, d.Endian)
}

// EncodeFloat packs a float into d.UnitSize bytes.
func (d *Descriptor) EncodeFloat(v float64) []byte {
	if d.UnitSize == 4 {
		return bytesFromUint(uint64(math.Float32bits(float32(v))), 4, d.Endian)
	}
	return bytesFromUint(math.Float64bits(v), 8, d.Endian)
}
