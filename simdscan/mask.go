// Copyright 2024 The Squalr Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package simdscan

// AllMatched reports whether every byte of mask is 0xFF — the dense
// scanner's fast path (§4.5): when a whole vector-sized chunk matches, the
// scanner can hand the entire chunk to the filter encoder in one call
// instead of walking it element by element.
func AllMatched(mask []byte) bool {
	for _, b := range mask {
		if b != 0xFF {
			return false
		}
	}
	return true
}

// AllUnmatched reports whether every byte of mask is 0x00 — the dense
// scanner's complementary fast path.
func AllUnmatched(mask []byte) bool {
	for _, b := range mask {
		if b != 0x00 {
			return false
		}
	}
	return true
}

// ElementMatched reports whether the element starting at byte offset
// elementIndex*unitSize matched, by inspecting the element's first mask
// byte (every byte of a matched element is 0xFF, so the first byte alone
// disambiguates).
func ElementMatched(mask []byte, elementIndex, unitSize int) bool {
	return mask[elementIndex*unitSize] == 0xFF
}
