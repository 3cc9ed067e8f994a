// Copyright (c) 2026, Solid Scene Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mesh

import (
	"sort"
	"strconv"
	"strings"
)

// Signature computes the order-independent merge-grouping key for a
// material: the type tag followed by the sorted numeric and boolean
// fields. Color is deliberately excluded: it lives per-vertex in the
// merged buffer, so meshes differing only in color remain merge-eligible.
// Two meshes may be concatenated into one draw buffer only if their
// signatures are identical.
func Signature(tag string, nums map[string]float32, flags map[string]bool) string {
	var b strings.Builder
	b.WriteString(tag)
	keys := make([]string, 0, len(nums))
	for k := range nums {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteByte('|')
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(strconv.FormatFloat(float64(nums[k]), 'g', -1, 32))
	}
	keys = keys[:0]
	for k := range flags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteByte('|')
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(strconv.FormatBool(flags[k]))
	}
	return b.String()
}
