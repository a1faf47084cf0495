// Copyright 2024 The Squalr Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package dtype

import (
	"testing"

	"github.com/squalr/scanengine/value"
	"github.com/stretchr/testify/require"
)

func TestHexFormatNormalizesEndianness(t *testing.T) {
	reg := NewRegistry()
	le, err := reg.Get("i32")
	require.NoError(t, err)
	be, err := reg.Get("i32be")
	require.NoError(t, err)

	leVal := value.New(le.ID, le.EncodeInt(0x12345678))
	beVal := value.New(be.ID, be.EncodeInt(0x12345678))
	require.NotEqual(t, leVal.Bytes, beVal.Bytes)

	leHex, err := le.AnonymizeValue(leVal, FormatHex)
	require.NoError(t, err)
	beHex, err := be.AnonymizeValue(beVal, FormatHex)
	require.NoError(t, err)

	require.Equal(t, "0x12345678", leHex)
	require.Equal(t, "0x12345678", beHex)
}

func TestHexFormatRoundTripsThroughDeanonymize(t *testing.T) {
	reg := NewRegistry()
	for _, id := range []string{"i32", "i32be", "u16", "u16be"} {
		d, err := reg.Get(id)
		require.NoError(t, err)

		v := value.New(d.ID, d.EncodeUint(0xBEEF))
		s, err := d.AnonymizeValue(v, FormatHex)
		require.NoError(t, err)

		got, err := d.DeanonymizeValueString(s, FormatHex)
		require.NoError(t, err)
		require.Equal(t, v.Bytes, got.Bytes, "type %s", id)
	}
}

func TestBinaryFormatRoundTrips(t *testing.T) {
	reg := NewRegistry()
	d, err := reg.Get("u8")
	require.NoError(t, err)

	v := value.New(d.ID, d.EncodeUint(0xA5))
	s, err := d.AnonymizeValue(v, FormatBinary)
	require.NoError(t, err)
	require.Equal(t, "10100101", s)

	got, err := d.DeanonymizeValueString(s, FormatBinary)
	require.NoError(t, err)
	require.Equal(t, v.Bytes, got.Bytes)
}

func TestByteArrayFormatRoundTrips(t *testing.T) {
	reg := NewRegistry()
	d, err := reg.Get("bytes")
	require.NoError(t, err)

	v := value.New(d.ID, []byte{0xAA})
	s, err := d.AnonymizeValue(v, FormatByteArray)
	require.NoError(t, err)
	require.Equal(t, "AA", s)

	got, err := d.DeanonymizeValueString(s, FormatByteArray)
	require.NoError(t, err)
	require.Equal(t, v.Bytes, got.Bytes)
}

func TestDecimalFormatRoundTripsSignedAndFloat(t *testing.T) {
	reg := NewRegistry()

	i32, err := reg.Get("i32")
	require.NoError(t, err)
	iv := value.New(i32.ID, i32.EncodeInt(-42))
	s, err := i32.AnonymizeValue(iv, FormatDecimal)
	require.NoError(t, err)
	require.Equal(t, "-42", s)
	got, err := i32.DeanonymizeValueString(s, FormatDecimal)
	require.NoError(t, err)
	require.Equal(t, iv.Bytes, got.Bytes)

	f64, err := reg.Get("f64")
	require.NoError(t, err)
	fv := value.New(f64.ID, f64.EncodeFloat(3.5))
	s, err = f64.AnonymizeValue(fv, FormatDecimal)
	require.NoError(t, err)
	got, err = f64.DeanonymizeValueString(s, FormatDecimal)
	require.NoError(t, err)
	require.Equal(t, fv.Bytes, got.Bytes)
}

func TestHexTooLongIsRejected(t *testing.T) {
	reg := NewRegistry()
	d, err := reg.Get("u8")
	require.NoError(t, err)
	_, err = d.DeanonymizeValueString("0x1234", FormatHex)
	require.Error(t, err)
}
