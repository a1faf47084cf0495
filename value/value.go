// Copyright 2024 The Squalr Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package value implements the scan kernel's data value: a contiguous byte
// buffer tagged with the id of the data type it was built against. A value
// carries no address; it is just bytes plus a type tag, analogous to how
// github.com/grailbio/bio/encoding/pam/fieldio buffers carry a field's raw
// bytes without knowing where on disk they came from.
package value

// Value is a tagged byte buffer. Invariant: len(Bytes) == unitSize *
// elementCount for the referenced type; this package does not itself know
// unitSize (that lives in the dtype registry), so it cannot enforce the
// invariant on construction — callers that build a Value from a Descriptor
// are responsible for it.
type Value struct {
	TypeID string
	Bytes  []byte
}

// New wraps raw bytes for typeID. The caller owns buf; use Clone if the
// caller may mutate buf afterwards.
func New(typeID string, buf []byte) Value {
	return Value{TypeID: typeID, Bytes: buf}
}

// Clone returns a Value with its own copy of the bytes.
func (v Value) Clone() Value {
	cp := make([]byte, len(v.Bytes))
	copy(cp, v.Bytes)
	return Value{TypeID: v.TypeID, Bytes: cp}
}

// Len returns the number of bytes backing the value.
func (v Value) Len() int { return len(v.Bytes) }

// Equal reports whether two values carry the same type id and bytes.
func (v Value) Equal(o Value) bool {
	if v.TypeID != o.TypeID || len(v.Bytes) != len(o.Bytes) {
		return false
	}
	for i := range v.Bytes {
		if v.Bytes[i] != o.Bytes[i] {
			return false
		}
	}
	return true
}
