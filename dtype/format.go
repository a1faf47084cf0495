// Copyright 2024 The Squalr Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package dtype

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/grailbio/base/simd"
	"github.com/squalr/scanengine/scanerr"
	"github.com/squalr/scanengine/value"
)

// Format is one of the canonical anonymous operand string formats a scan
// parameter bundle may arrive in over the wire (§6).
type Format int

const (
	// FormatDecimal renders integers/floats in base 10.
	FormatDecimal Format = iota
	// FormatHex renders bytes as a contiguous hex string, most-significant
	// byte first regardless of the type's in-memory endianness (i.e. it is a
	// human-facing rendering of the numeric value, not a memory dump).
	FormatHex
	// FormatBinary renders bytes as a contiguous string of '0'/'1' digits,
	// most-significant bit first.
	FormatBinary
	// FormatByteArray renders the raw element bytes as comma-separated hex
	// byte pairs in memory order (e.g. "AA,BB,CC,DD").
	FormatByteArray
)

// nibbleToHex maps a 4-bit value to its lowercase hex digit. Re-exported
// through grailbio/base/simd's NibbleLookupTable the same way
// github.com/grailbio/bio/biosimd builds its SeqASCIITable, since this is
// exactly the "splat a 16-entry table across a lookup" idiom that package
// exists for.
var nibbleToHex = simd.MakeNibbleLookupTable([16]byte{
	'0', '1', '2', '3', '4', '5', '6', '7',
	'8', '9', 'a', 'b', 'c', 'd', 'e', 'f',
})

var hexToNibble = [256]int8{}

func init() {
	for i := range hexToNibble {
		hexToNibble[i] = -1
	}
	for i, c := range []byte("0123456789abcdef") {
		hexToNibble[c] = int8(i)
	}
	for i, c := range []byte("ABCDEF") {
		hexToNibble[c] = int8(10 + i)
	}
}

// bytesToHex renders b (size bytes in the given endianness) as a
// most-significant-byte-first hex string, routing through uintFromBytes the
// same way decimalString does so the rendering is normalized away from the
// type's in-memory endianness rather than dumping memory order.
func bytesToHex(b []byte, endian Endianness) string {
	u := uintFromBytes(b, endian)
	var sb strings.Builder
	sb.Grow(len(b) * 2)
	for i := len(b) - 1; i >= 0; i-- {
		shift := uint(8 * i)
		v := byte(u >> shift)
		sb.WriteByte(nibbleToHex.Get(v >> 4))
		sb.WriteByte(nibbleToHex.Get(v & 15))
	}
	return sb.String()
}

func hexToBytes(s string, size int, endian Endianness) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(s)%2 != 0 {
		s = "0" + s
	}
	nHexBytes := len(s) / 2
	if nHexBytes > size {
		return nil, fmt.Errorf("hex string %q too long for a %d-byte value", s, size)
	}
	var u uint64
	for i := 0; i < nHexBytes; i++ {
		hi := hexToNibble[s[2*i]]
		lo := hexToNibble[s[2*i+1]]
		if hi < 0 || lo < 0 {
			return nil, fmt.Errorf("invalid hex digit in %q", s)
		}
		u = u<<8 | uint64(byte(hi)<<4|byte(lo))
	}
	return bytesFromUint(u, size, endian), nil
}

// uintFromBytes interprets b (which holds len(b) bytes in the given
// endianness) as an unsigned integer, zero-extended to 64 bits.
func uintFromBytes(b []byte, endian Endianness) uint64 {
	if endian == LittleEndian {
		var le [8]byte
		copy(le[:], b)
		return binary.LittleEndian.Uint64(le[:])
	}
	var be [8]byte
	copy(be[8-len(b):], b)
	return binary.BigEndian.Uint64(be[:])
}

func bytesFromUint(v uint64, size int, endian Endianness) []byte {
	var buf [8]byte
	if endian == LittleEndian {
		binary.LittleEndian.PutUint64(buf[:], v)
		return append([]byte(nil), buf[:size]...)
	}
	binary.BigEndian.PutUint64(buf[:], v)
	return append([]byte(nil), buf[8-size:]...)
}

// AnonymizeValue renders v (which must carry the descriptor's type id) as a
// string in the given format.
func (d *Descriptor) AnonymizeValue(v value.Value, format Format) (string, error) {
	if len(v.Bytes) != d.UnitSize {
		return "", scanerr.New(scanerr.BadParameter, "dtype.AnonymizeValue",
			fmt.Errorf("value has %d bytes, type %s needs %d", len(v.Bytes), d.ID, d.UnitSize))
	}
	switch format {
	case FormatHex:
		return "0x" + bytesToHex(v.Bytes, d.Endian), nil
	case FormatBinary:
		u := uintFromBytes(v.Bytes, d.Endian)
		var sb strings.Builder
		for i := len(v.Bytes) - 1; i >= 0; i-- {
			sb.WriteString(fmt.Sprintf("%08b", byte(u>>uint(8*i))))
		}
		return sb.String(), nil
	case FormatByteArray:
		parts := make([]string, len(v.Bytes))
		for i, b := range v.Bytes {
			parts[i] = fmt.Sprintf("%02X", b)
		}
		return strings.Join(parts, ","), nil
	case FormatDecimal:
		return d.decimalString(v.Bytes)
	default:
		return "", scanerr.New(scanerr.BadParameter, "dtype.AnonymizeValue", fmt.Errorf("unknown format %d", format))
	}
}

func (d *Descriptor) decimalString(b []byte) (string, error) {
	switch d.Class {
	case Float:
		if d.UnitSize == 4 {
			bits := uint32(uintFromBytes(b, d.Endian))
			return strconv.FormatFloat(float64(math.Float32frombits(bits)), 'g', -1, 32), nil
		}
		bits := uintFromBytes(b, d.Endian)
		return strconv.FormatFloat(math.Float64frombits(bits), 'g', -1, 64), nil
	case Integer:
		u := uintFromBytes(b, d.Endian)
		if d.Signed {
			shift := uint(64 - 8*d.UnitSize)
			signed := int64(u<<shift) >> shift
			return strconv.FormatInt(signed, 10), nil
		}
		mask := uint64(1)<<uint(8*d.UnitSize) - 1
		if d.UnitSize == 8 {
			mask = ^uint64(0)
		}
		return strconv.FormatUint(u&mask, 10), nil
	default:
		return "", scanerr.New(scanerr.BadParameter, "dtype.decimalString", fmt.Errorf("type %s has no decimal representation", d.ID))
	}
}

// DeanonymizeValueString parses s (in the given format) into a Value for
// this descriptor's type.
func (d *Descriptor) DeanonymizeValueString(s string, format Format) (value.Value, error) {
	switch format {
	case FormatHex:
		b, err := hexToBytes(s, d.UnitSize, d.Endian)
		if err != nil {
			return value.Value{}, scanerr.New(scanerr.BadParameter, "dtype.DeanonymizeValueString", err)
		}
		return value.New(d.ID, b), nil
	case FormatBinary:
		s = strings.ReplaceAll(s, "_", "")
		if len(s) > d.UnitSize*8 {
			return value.Value{}, scanerr.New(scanerr.BadParameter, "dtype.DeanonymizeValueString",
				fmt.Errorf("binary string %q too long for %d-byte type", s, d.UnitSize))
		}
		u, err := strconv.ParseUint(s, 2, 64)
		if err != nil {
			return value.Value{}, scanerr.New(scanerr.BadParameter, "dtype.DeanonymizeValueString", err)
		}
		return value.New(d.ID, bytesFromUint(u, d.UnitSize, d.Endian)), nil
	case FormatByteArray:
		parts := strings.Split(s, ",")
		if len(parts) != d.UnitSize {
			return value.Value{}, scanerr.New(scanerr.BadParameter, "dtype.DeanonymizeValueString",
				fmt.Errorf("byte-array %q has %d elements, type %s needs %d", s, len(parts), d.ID, d.UnitSize))
		}
		out := make([]byte, d.UnitSize)
		for i, p := range parts {
			bv, err := strconv.ParseUint(strings.TrimSpace(p), 16, 8)
			if err != nil {
				return value.Value{}, scanerr.New(scanerr.BadParameter, "dtype.DeanonymizeValueString", err)
			}
			out[i] = byte(bv)
		}
		return value.New(d.ID, out), nil
	case FormatDecimal:
		return d.deanonymizeDecimal(s)
	default:
		return value.Value{}, scanerr.New(scanerr.BadParameter, "dtype.DeanonymizeValueString", fmt.Errorf("unknown format %d", format))
	}
}

func (d *Descriptor) deanonymizeDecimal(s string) (value.Value, error) {
	switch d.Class {
	case Float:
		f, err := strconv.ParseFloat(s, 8*d.UnitSize)
		if err != nil {
			return value.Value{}, scanerr.New(scanerr.BadParameter, "dtype.deanonymizeDecimal", err)
		}
		if d.UnitSize == 4 {
			return value.New(d.ID, bytesFromUint(uint64(math.Float32bits(float32(f))), 4, d.Endian)), nil
		}
		return value.New(d.ID, bytesFromUint(math.Float64bits(f), 8, d.Endian)), nil
	case Integer:
		if d.Signed {
			iv, err := strconv.ParseInt(s, 10, 8*d.UnitSize)
			if err != nil {
				return value.Value{}, scanerr.New(scanerr.BadParameter, "dtype.deanonymizeDecimal", err)
			}
			return value.New(d.ID, bytesFromUint(uint64(iv), d.UnitSize, d.Endian)), nil
		}
		uv, err := strconv.ParseUint(s, 10, 8*d.UnitSize)
		if err != nil {
			return value.Value{}, scanerr.New(scanerr.BadParameter, "dtype.deanonymizeDecimal", err)
		}
		return value.New(d.ID, bytesFromUint(uv, d.UnitSize, d.Endian)), nil
	default:
		return value.Value{}, scanerr.New(scanerr.BadParameter, "dtype.deanonymizeDecimal", fmt.Errorf("type %s has no decimal representation", d.ID))
	}
}

// AnonymizeValue and DeanonymizeValueString on *Registry are the public
// entry points named in §4.1; they resolve the descriptor then delegate.

// AnonymizeValue renders v as a string in format, resolving v's own type id
// against the registry.
func (r *Registry) AnonymizeValue(v value.Value, format Format) (string, error) {
	d, err := r.Get(v.TypeID)
	if err != nil {
		return "", err
	}
	return d.AnonymizeValue(v, format)
}

// DeanonymizeValueString parses s into a Value of type id, in format.
func (r *Registry) DeanonymizeValueString(id string, s string, format Format) (value.Value, error) {
	d, err := r.Get(id)
	if err != nil {
		return value.Value{}, err
	}
	return d.DeanonymizeValueString(s, format)
}
