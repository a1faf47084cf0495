// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package circular provides sizing helpers for buffers that grow by
// doubling. The scan kernel's result package uses NextExp2 to size its
// paging cache's backing array, the same role this helper played for the
// teacher's sliding-window BAM/PAM/BED bitmaps before they were trimmed
// out of this module (see DESIGN.md).
package circular
