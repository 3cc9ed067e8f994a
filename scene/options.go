// Copyright (c) 2026, Solid Scene Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scene

import (
	"github.com/solidscene/solidscene/brep"
	"github.com/solidscene/solidscene/entity"
	"github.com/solidscene/solidscene/mesh"
	"github.com/solidscene/solidscene/nurbs"
)

// PrimitiveBuilder constructs the mesh for an analytic primitive
// (sphere, box, cylinder, plane, cone, torus) from its closed-form
// parameterization. The constructors live outside this module; the
// assembler only consumes the resulting mesh.
type PrimitiveBuilder func(kind string, e *entity.Entity) (*mesh.Mesh, error)

// Options configures one conversion. The zero value is usable:
// [Options.Defaults] fills in the standard pipeline.
type Options struct {
	// Tess is the curvature-driven tessellation quality.
	Tess nurbs.Options

	// SmoothAngle is the crease threshold in degrees for normal
	// synthesis; edges with a larger dihedral angle stay sharp.
	SmoothAngle float32

	// NoMerge disables mesh merging entirely, keeping every entity
	// individually pickable at the cost of more draw calls.
	NoMerge bool

	// Aliases remaps legacy primitive names during flattening.
	Aliases entity.Aliases

	// Validator checks entities before geometry building.
	Validator entity.Validator

	// Units normalizes entity lengths into the scene unit.
	Units entity.UnitConverter

	// Materials resolves material entities; [ResolveMaterial] by
	// default.
	Materials MaterialResolver

	// Primitives builds analytic primitives; without it, analytic
	// entities are recorded as errors.
	Primitives PrimitiveBuilder

	// BRep is the remote solid-tessellation gateway; without it,
	// solids needing remote tessellation are recorded under the
	// "brep" status key.
	BRep *brep.Client
}

// Defaults fills in the standard pipeline for zero fields.
func (o *Options) Defaults() {
	o.Tess.Defaults()
	if o.SmoothAngle <= 0 {
		o.SmoothAngle = mesh.DefaultSmoothAngle
	}
	if o.Aliases == nil {
		o.Aliases = entity.DefaultAliases
	}
	if o.Validator == nil {
		o.Validator = entity.NopValidator{}
	}
	if o.Units == nil {
		o.Units = entity.NopUnits{}
	}
	if o.Materials == nil {
		o.Materials = ResolveMaterial
	}
}
