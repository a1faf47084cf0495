// Copyright 2024 The Squalr Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package memsource

import (
	"context"
	"fmt"
	"sync"
)

// FakeSource is an in-process Source backed by plain byte slices, standing
// in for a real OS process attach (out of scope per spec.md §1's
// Non-goals). cmd/squalr-scan uses one to give the demonstration CLI
// something to scan; tests elsewhere in this module use it to exercise
// memsource.NewSnapshot/Refresh without an OS dependency.
type FakeSource struct {
	mu      sync.Mutex
	regions []fakeRegion
	// FailReads, if set, names base addresses whose next ReadBytes call
	// should fail, simulating a partial-read failure (§6). ReadBytes removes
	// an entry after it fires once.
	FailReads map[uint64]bool
}

type fakeRegion struct {
	base uint64
	data []byte
	perm Permissions
}

// NewFakeSource creates an empty fake source.
func NewFakeSource() *FakeSource {
	return &FakeSource{FailReads: make(map[uint64]bool)}
}

// AddRegion registers a simulated memory region. data is copied.
func (f *FakeSource) AddRegion(base uint64, data []byte, perm Permissions) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := append([]byte(nil), data...)
	f.regions = append(f.regions, fakeRegion{base: base, data: cp, perm: perm})
}

// Mutate overwrites the live bytes of the region starting at base, the way
// a running process's memory would change between scan generations.
func (f *FakeSource) Mutate(base uint64, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.regions {
		if f.regions[i].base == base {
			copy(f.regions[i].data, data)
			return
		}
	}
}

func (f *FakeSource) EnumerateRegions(ctx context.Context, process any) ([]RegionDescriptor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]RegionDescriptor, len(f.regions))
	for i, r := range f.regions {
		out[i] = RegionDescriptor{Base: r.base, Size: uint64(len(r.data)), Permissions: r.perm}
	}
	return out, nil
}

func (f *FakeSource) ReadBytes(ctx context.Context, process any, base uint64, size uint64) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailReads[base] {
		delete(f.FailReads, base)
		return nil, fmt.Errorf("fakesource: simulated read failure at 0x%x", base)
	}
	for _, r := range f.regions {
		if r.base == base && uint64(len(r.data)) == size {
			return append([]byte(nil), r.data...), nil
		}
	}
	return nil, fmt.Errorf("fakesource: no region at 0x%x of size %d", base, size)
}

func (f *FakeSource) WriteBytes(ctx context.Context, process any, base uint64, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.regions {
		if f.regions[i].base == base {
			if len(data) != len(f.regions[i].data) {
				return fmt.Errorf("fakesource: write size %d does not match region size %d", len(data), len(f.regions[i].data))
			}
			copy(f.regions[i].data, data)
			return nil
		}
	}
	return fmt.Errorf("fakesource: no region at 0x%x", base)
}
