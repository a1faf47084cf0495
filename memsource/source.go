// Copyright 2024 The Squalr Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package memsource defines the external memory-source interface (§6): the
// kernel never speaks to an operating system directly, only to whatever
// implements Source. It also provides a NewSnapshot/Refresh pair that builds
// and updates a snapshot.Snapshot from a Source, and a FakeSource for
// demonstration and tests, since a real OS process attach is out of scope
// (spec.md §1's Non-goals).
package memsource

import "context"

// Permissions describes a memory region's access rights, as reported by the
// host OS (or, for FakeSource, simulated).
type Permissions struct {
	Read    bool
	Write   bool
	Execute bool
}

// RegionDescriptor is one entry of an enumeration: where a region is and
// how big it is, before any bytes have been read.
type RegionDescriptor struct {
	Base        uint64
	Size        uint64
	Permissions Permissions
}

// Source is the external "process memory reader" contract of §6. The
// kernel only ever calls through this interface; it never issues a syscall
// or reads another process's memory directly (§5's "Unsafe memory access"
// note).
type Source interface {
	// EnumerateRegions lists every candidate region of process.
	EnumerateRegions(ctx context.Context, process any) ([]RegionDescriptor, error)
	// ReadBytes reads exactly size bytes starting at base. A partial read is
	// reported as an error, not a short slice — §6 treats any read that
	// doesn't return the full requested window as a failure for that region.
	ReadBytes(ctx context.Context, process any, base uint64, size uint64) ([]byte, error)
	// WriteBytes writes data starting at base.
	WriteBytes(ctx context.Context, process any, base uint64, data []byte) error
}
