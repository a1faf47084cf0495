// Copyright 2024 The Squalr Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package dtype implements the scan kernel's data-type registry (C1): a
// process-wide, immutable-after-init mapping from a stable string id
// ("i32", "f32be", "u8", ...) to a descriptor of its size, byte order,
// signedness, and default presentation.
//
// The registry is populated once and read many times, the same lifecycle
// github.com/grailbio/bio/encoding/bam's reference tables and
// github.com/grailbio/bio/biosimd's lookup tables follow; unlike those,
// ours is guarded by a RWMutex because §5 of the specification calls out
// "acquiring the read lock on the registry" as one of the kernel's three
// legal suspension points, even though the map is never mutated after
// construction.
package dtype

import (
	"fmt"
	"sync"

	"github.com/squalr/scanengine/scanerr"
	"github.com/squalr/scanengine/value"
)

// Endianness is the byte order a multi-byte data type is read/written in.
type Endianness int

const (
	// LittleEndian is the byte order native to the overwhelming majority of
	// scan targets (x86, ARM in its default mode).
	LittleEndian Endianness = iota
	// BigEndian types exist for targets/protocols that need it; the
	// comparison kernels erase byte order at the load boundary (§4.3).
	BigEndian
)

func (e Endianness) String() string {
	if e == BigEndian {
		return "big"
	}
	return "little"
}

// Class is the broad category of a data type, which determines which
// predicate semantics (§4.3) apply.
type Class int

const (
	// Integer types compare bit-exactly.
	Integer Class = iota
	// Float types compare via tolerance.
	Float
	// ByteArray types are raw fixed-length buffers with no arithmetic.
	ByteArray
)

// Descriptor is the immutable description of one registered data type.
type Descriptor struct {
	ID            string
	UnitSize      int // bytes per element
	Endian        Endianness
	Signed        bool
	Class         Class
	DefaultFormat Format
}

// Registry is a process-wide, populate-once mapping from type id to
// Descriptor. The zero value is not usable; construct with NewRegistry.
type Registry struct {
	mu    sync.RWMutex
	types map[string]*Descriptor
}

// NewRegistry builds a registry containing every canonical primitive and its
// big-endian twin, plus a raw byte-array type. It is meant to be built once
// at process init and shared freely thereafter (§5 "global state").
func NewRegistry() *Registry {
	r := &Registry{types: make(map[string]*Descriptor, 32)}
	r.populate()
	return r
}

func (r *Registry) register(d Descriptor) {
	cp := d
	r.types[d.ID] = &cp
}

func (r *Registry) populate() {
	type spec struct {
		id       string
		size     int
		signed   bool
		class    Class
		beSuffix bool
	}
	specs := []spec{
		{"i8", 1, true, Integer, false},
		{"u8", 1, false, Integer, false},
		{"i16", 2, true, Integer, true},
		{"u16", 2, false, Integer, true},
		{"i32", 4, true, Integer, true},
		{"u32", 4, false, Integer, true},
		{"i64", 8, true, Integer, true},
		{"u64", 8, false, Integer, true},
		{"f32", 4, true, Float, true},
		{"f64", 8, true, Float, true},
	}
	for _, s := range specs {
		defFmt := FormatDecimal
		r.register(Descriptor{ID: s.id, UnitSize: s.size, Endian: LittleEndian, Signed: s.signed, Class: s.class, DefaultFormat: defFmt})
		if s.beSuffix {
			r.register(Descriptor{ID: s.id + "be", UnitSize: s.size, Endian: BigEndian, Signed: s.signed, Class: s.class, DefaultFormat: defFmt})
		}
	}
	r.register(Descriptor{ID: "bytes", UnitSize: 1, Endian: LittleEndian, Signed: false, Class: ByteArray, DefaultFormat: FormatByteArray})
}

// Get returns the descriptor for id, or a scanerr.UnknownType error.
func (r *Registry) Get(id string) (*Descriptor, error) {
	r.mu.RLock()
	d, ok := r.types[id]
	r.mu.RUnlock()
	if !ok {
		return nil, scanerr.New(scanerr.UnknownType, "dtype.Get", fmt.Errorf("unregistered data type id %q", id))
	}
	return d, nil
}

// GetUnitSizeInBytes returns the per-element byte size of id.
func (r *Registry) GetUnitSizeInBytes(id string) (int, error) {
	d, err := r.Get(id)
	if err != nil {
		return 0, err
	}
	return d.UnitSize, nil
}

// GetDefaultValue returns a zero-valued Value of the given type, one element
// long.
func (r *Registry) GetDefaultValue(id string) (value.Value, error) {
	d, err := r.Get(id)
	if err != nil {
		return value.Value{}, err
	}
	return value.New(id, make([]byte, d.UnitSize)), nil
}

// GetDefaultAnonymousValueStringFormat returns the format used when no
// explicit format is requested for id.
func (r *Registry) GetDefaultAnonymousValueStringFormat(id string) (Format, error) {
	d, err := r.Get(id)
	if err != nil {
		return 0, err
	}
	return d.DefaultFormat, nil
}

// Twin returns the opposite-endianness id for a multi-byte type (e.g. "i32"
// <-> "i32be"), and ok=false for single-byte or byte-array types which have
// no twin.
func (d *Descriptor) Twin() (string, bool) {
	if d.UnitSize <= 1 {
		return "", false
	}
	if d.Endian == LittleEndian {
		return d.ID + "be", true
	}
	return d.ID[:len(d.ID)-2], true
}
