// Copyright (c) 2026, Solid Scene Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package entity

// Validator checks one entity against the document schema before any
// geometry is built for it. Validation data lives outside this module;
// the pipeline only consumes the result.
type Validator interface {
	// Validate returns a non-nil error describing why the entity is
	// invalid, or nil when it may proceed to geometry building.
	Validate(e *Entity) error
}

// UnitConverter normalizes an entity's numeric data into the scene's
// working unit. The conversion table lives outside this module.
type UnitConverter interface {
	// Convert returns the entity with its lengths normalized; it may
	// return its argument unchanged.
	Convert(e *Entity) *Entity
}

// NopValidator accepts everything.
type NopValidator struct{}

func (NopValidator) Validate(e *Entity) error { return nil }

// NopUnits performs no unit conversion.
type NopUnits struct{}

func (NopUnits) Convert(e *Entity) *Entity { return e }
