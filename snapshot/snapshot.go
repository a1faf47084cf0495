// Copyright 2024 The Squalr Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package snapshot

import "sync"

// Snapshot is an ordered, address-sorted list of Regions. It is exclusively
// owned by the orchestrator for the duration of a scan; between scans,
// read-only views may be served to callers (a CLI, a TUI) under the read
// lock, per §5's mutation-discipline rules.
type Snapshot struct {
	mu      sync.RWMutex
	regions []*Region
}

// New builds a snapshot over the given regions, which must already be
// disjoint and address-ordered (the external enumeration collaborator's
// responsibility, not this package's).
func New(regions []*Region) *Snapshot {
	return &Snapshot{regions: regions}
}

// Regions returns a read-only snapshot of the region list under the read
// lock. Callers must not mutate the returned slice's Region pointees
// without taking the exclusive lock first (see Lock).
func (s *Snapshot) Regions() []*Region {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Region, len(s.regions))
	copy(out, s.regions)
	return out
}

// Len returns the number of regions.
func (s *Snapshot) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.regions)
}

// Lock acquires the exclusive lock an orchestrator scan or a generation
// rollover needs, and returns an unlock function. Kept as a simple
// lock/unlock pair (rather than an RAII-style closure-taking method) to
// match the orchestrator's need to hold the lock across an entire scan
// pass, not just one call.
func (s *Snapshot) Lock() func() {
	s.mu.Lock()
	return s.mu.Unlock
}

// RegionsUnsafe returns the live region slice without locking. Callers must
// already hold the lock obtained from Lock.
func (s *Snapshot) RegionsUnsafe() []*Region {
	return s.regions
}
