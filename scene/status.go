// Copyright (c) 2026, Solid Scene Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scene

import (
	"strings"

	"cogentcore.org/core/base/ordmap"

	"github.com/solidscene/solidscene/fault"
)

// BRepStatusKey is the status key for remote-tessellation failures that
// cannot be attributed to an individual entity.
const BRepStatusKey = "brep"

// Status accumulates validation and geometry errors per entity name / id
// over one conversion. The returned scene is always renderable, possibly
// with fewer nodes than requested; Status is the human-readable account
// of what was dropped.
type Status struct {
	// Errors maps the entity key to its messages, in first-seen order.
	Errors ordmap.Map[string, []string]
}

// Add records a message under the given entity key.
func (st *Status) Add(key, msg string) {
	msgs, _ := st.Errors.ValueByKeyTry(key)
	st.Errors.Add(key, append(msgs, msg))
}

// AddError records a classified error under its entity key,
// or under the given fallback key when the error names no entity.
func (st *Status) AddError(fallback string, err error) {
	fe, ok := fault.As(err)
	if !ok {
		st.Add(fallback, err.Error())
		return
	}
	key := fe.Entity
	if key == "" {
		key = fallback
	}
	st.Add(key, fe.Message())
}

// IsEmpty reports whether no errors were recorded.
func (st *Status) IsEmpty() bool {
	return st.Errors.Len() == 0
}

// Summary joins "<key> (<message1>, <message2>, …)" across all invalid
// keys into one human-readable error summary, empty when clean.
func (st *Status) Summary() string {
	if st.IsEmpty() {
		return ""
	}
	var b strings.Builder
	for i, kv := range st.Errors.Order {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(kv.Key)
		b.WriteString(" (")
		b.WriteString(strings.Join(kv.Value, ", "))
		b.WriteString(")")
	}
	return b.String()
}
