// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package circular_test

import (
	"testing"

	"github.com/squalr/scanengine/circular"
)

func TestNextExp2(t *testing.T) {
	cases := []struct {
		in   int
		want int
	}{
		{1, 2},
		{2, 4},
		{3, 4},
		{4, 8},
		{63, 64},
		{64, 128},
	}
	for _, c := range cases {
		if got := circular.NextExp2(c.in); got != c.want {
			t.Errorf("NextExp2(%d) = %d, want %d", c.in, got, c.want)
		}
	}
}
