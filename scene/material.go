// Copyright (c) 2026, Solid Scene Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scene

import (
	"image/color"

	"cogentcore.org/core/colors"

	"github.com/solidscene/solidscene/entity"
	"github.com/solidscene/solidscene/mesh"
)

// Material describes the surface properties applied to leaf geometry.
// Main color is used for both ambient and diffuse color; everything
// else is parameter pass-through for the viewer's shading model.
type Material struct {
	// ID is the material entity id this was resolved from.
	ID string

	// Color is the main surface color; it lives per-vertex after
	// merging, never in the merge signature.
	Color color.RGBA

	// Emissive is the color the surface emits independent of lighting.
	Emissive color.RGBA

	// Opacity is the overall alpha in [0, 1].
	Opacity float32

	// Shiny is the specular shininess exponent.
	Shiny float32

	// Reflective is the specular reflectiveness factor.
	Reflective float32

	// DoubleSided disables back-face culling.
	DoubleSided bool

	// TextureName references a texture entity by id.
	TextureName string
}

// Defaults sets the standard surface parameters.
func (mt *Material) Defaults() {
	mt.Color = colors.FromRGB(128, 128, 128)
	mt.Emissive = color.RGBA{}
	mt.Opacity = 1
	mt.Shiny = 30
	mt.Reflective = 1
}

// IsTransparent reports whether the material needs transparent
// rendering.
func (mt *Material) IsTransparent() bool {
	return mt.Opacity < 1 || mt.Color.A < 255
}

// Signature returns the order-independent merge-grouping key for this
// material. Color is excluded: two meshes differing only in color are
// merge-eligible, while any difference in the remaining numeric or
// boolean fields (opacity included) keeps them separate.
func (mt *Material) Signature() string {
	return mesh.Signature("phong",
		map[string]float32{
			"opacity":    mt.Opacity,
			"shiny":      mt.Shiny,
			"reflective": mt.Reflective,
		},
		map[string]bool{
			"doubleSided": mt.DoubleSided,
			"textured":    mt.TextureName != "",
		})
}

// MaterialResolver turns a material entity into a material. The default
// covers the standard descriptor; viewers may substitute their own.
type MaterialResolver func(e *entity.Entity) (*Material, error)

// ResolveMaterial is the default [MaterialResolver].
func ResolveMaterial(e *entity.Entity) (*Material, error) {
	mt := &Material{ID: e.ID}
	mt.Defaults()
	if e.Color != "" {
		c, err := colors.FromString(e.Color)
		if err != nil {
			return nil, err
		}
		mt.Color = c
	}
	if e.Emissive != "" {
		c, err := colors.FromString(e.Emissive)
		if err != nil {
			return nil, err
		}
		mt.Emissive = c
	}
	if e.Opacity > 0 {
		mt.Opacity = e.Opacity
	}
	if e.Shininess > 0 {
		mt.Shiny = e.Shininess
	}
	if e.Reflectivity > 0 {
		mt.Reflective = e.Reflectivity
	}
	mt.DoubleSided = e.DoubleSided
	mt.TextureName = e.Texture
	return mt, nil
}
