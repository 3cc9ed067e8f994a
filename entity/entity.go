// Copyright (c) 2026, Solid Scene Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package entity defines the declarative JSON description of parametric
// geometry and scene containers consumed by the conversion pipeline,
// and the flattening step that expands nested containers into one
// ordered, bucketed entity list.
package entity

import (
	"cogentcore.org/core/math32"
	jsoniter "github.com/json-iterator/go"

	"github.com/solidscene/solidscene/fault"
	"github.com/solidscene/solidscene/nurbs"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Entity is one element of the flattened input list: a geometric
// primitive, a scene container, or a resource definition. Fields not
// relevant to an entity's primitive are simply absent in the JSON and
// zero here; unknown fields are tolerated.
type Entity struct {
	// Primitive names the entity type: curve, surface, point, arc,
	// polyline, solid, layer, group, instance, geometry, material,
	// texture, camera. Legacy names are remapped via [Aliases].
	Primitive string `json:"primitive"`

	// ID is the reference id, unique within one conversion.
	// Entities without an id get a synthesized one during flattening.
	ID string `json:"id,omitempty"`

	// Name is the display name used as the status-map key;
	// falls back to Primitive when empty.
	Name string `json:"name,omitempty"`

	// curve fields
	Degree int       `json:"degree,omitempty"`
	Knots  []float32 `json:"knots,omitempty"`

	// surface fields
	UDegree int       `json:"uDegree,omitempty"`
	VDegree int       `json:"vDegree,omitempty"`
	UKnots  []float32 `json:"uKnots,omitempty"`
	VKnots  []float32 `json:"vKnots,omitempty"`

	// ControlPoints is [[x,y,z],...] for curves and [[[x,y,z],...],...]
	// for surfaces; decoded per primitive.
	ControlPoints jsoniter.RawMessage `json:"controlPoints,omitempty"`

	// Weights parallels ControlPoints; absent means all weights are 1.
	Weights jsoniter.RawMessage `json:"weights,omitempty"`

	// point / arc / polyline fields
	Position []float32   `json:"position,omitempty"`
	Start    []float32   `json:"start,omitempty"`
	Middle   []float32   `json:"middle,omitempty"`
	End      []float32   `json:"end,omitempty"`
	Vertices [][]float32 `json:"vertices,omitempty"`

	// container / graph fields
	Entities []*Entity `json:"entities,omitempty"` // inline container children
	Children []string  `json:"children,omitempty"` // group child ids
	Elements []string  `json:"elements,omitempty"` // layer member ids
	Entity   string    `json:"entity,omitempty"`   // instance target id

	// Transform is the local 4x4 matrix in row-major order (16 values);
	// absent means identity.
	Transform []float32 `json:"transform,omitempty"`

	// Material is the id of a material entity applied to this node's
	// leaf geometry, recursively overriding descendant materials.
	Material string `json:"material,omitempty"`

	// material / layer fields
	Color        string  `json:"color,omitempty"`
	Opacity      float32 `json:"opacity,omitempty"`
	Shininess    float32 `json:"shininess,omitempty"`
	Reflectivity float32 `json:"reflectivity,omitempty"`
	Emissive     string  `json:"emissive,omitempty"`
	DoubleSided  bool    `json:"doubleSided,omitempty"`
	Texture      string  `json:"texture,omitempty"`
	Visible      *bool   `json:"visible,omitempty"`

	// texture fields
	URL string `json:"url,omitempty"`

	// camera fields
	Fov  float32 `json:"fov,omitempty"`
	Near float32 `json:"near,omitempty"`
	Far  float32 `json:"far,omitempty"`

	// solid fields: a boundary representation without already-provided
	// face data needs the remote tessellation service.
	BRep  jsoniter.RawMessage `json:"brep,omitempty"`
	Faces jsoniter.RawMessage `json:"faces,omitempty"`

	// ChildIDs is the resolved ordered child id list of a container
	// node, filled during flattening from Entities / Children / Elements.
	ChildIDs []string `json:"-"`
}

// Decode parses a JSON entity list.
func Decode(data []byte) ([]*Entity, error) {
	var ents []*Entity
	if err := json.Unmarshal(data, &ents); err != nil {
		return nil, err
	}
	return ents, nil
}

// Key returns the status-map key for this entity: the name when set,
// otherwise the primitive type.
func (e *Entity) Key() string {
	if e.Name != "" {
		return e.Name
	}
	return e.Primitive
}

// Matrix returns the entity's local transform as a matrix,
// identity when the transform field is absent or malformed.
func (e *Entity) Matrix() math32.Matrix4 {
	var m math32.Matrix4
	m.SetIdentity()
	if len(e.Transform) != 16 {
		return m
	}
	t := e.Transform
	m.Set(
		t[0], t[1], t[2], t[3],
		t[4], t[5], t[6], t[7],
		t[8], t[9], t[10], t[11],
		t[12], t[13], t[14], t[15],
	)
	return m
}

// NeedsRemoteTessellation reports whether this entity declares a
// boundary representation without already-provided face data, so its
// triangles must come from the external tessellation service.
func (e *Entity) NeedsRemoteTessellation() bool {
	return len(e.BRep) > 0 && len(e.Faces) == 0
}

// Curve decodes the entity's NURBS curve definition.
func (e *Entity) Curve() (*nurbs.Curve, error) {
	var pts [][]float32
	if err := json.Unmarshal(e.ControlPoints, &pts); err != nil {
		return nil, fault.Wrap(fault.InvalidNurbsDefinition, e.Key(), err)
	}
	var wts []float32
	if len(e.Weights) > 0 {
		if err := json.Unmarshal(e.Weights, &wts); err != nil {
			return nil, fault.Wrap(fault.InvalidNurbsDefinition, e.Key(), err)
		}
	}
	cv := &nurbs.Curve{Degree: e.Degree, Knots: e.Knots}
	cv.Points = make([]nurbs.ControlPoint, len(pts))
	for i, p := range pts {
		if len(p) < 3 {
			return nil, fault.Newf(fault.InvalidNurbsDefinition, e.Key(),
				"control point %d has %d coordinates; expected 3", i, len(p))
		}
		cv.Points[i].Pos = math32.Vec3(p[0], p[1], p[2])
		if i < len(wts) {
			cv.Points[i].Weight = wts[i]
		}
	}
	return cv, nil
}

// Surface decodes the entity's NURBS surface definition.
func (e *Entity) Surface() (*nurbs.Surface, error) {
	var pts [][][]float32
	if err := json.Unmarshal(e.ControlPoints, &pts); err != nil {
		return nil, fault.Wrap(fault.InvalidNurbsDefinition, e.Key(), err)
	}
	var wts [][]float32
	if len(e.Weights) > 0 {
		if err := json.Unmarshal(e.Weights, &wts); err != nil {
			return nil, fault.Wrap(fault.InvalidNurbsDefinition, e.Key(), err)
		}
	}
	sf := &nurbs.Surface{
		UDegree: e.UDegree, VDegree: e.VDegree,
		UKnots: e.UKnots, VKnots: e.VKnots,
	}
	sf.Grid = make([][]nurbs.ControlPoint, len(pts))
	for i, row := range pts {
		sf.Grid[i] = make([]nurbs.ControlPoint, len(row))
		for j, p := range row {
			if len(p) < 3 {
				return nil, fault.Newf(fault.InvalidNurbsDefinition, e.Key(),
					"control point (%d,%d) has %d coordinates; expected 3", i, j, len(p))
			}
			sf.Grid[i][j].Pos = math32.Vec3(p[0], p[1], p[2])
			if i < len(wts) && j < len(wts[i]) {
				sf.Grid[i][j].Weight = wts[i][j]
			}
		}
	}
	return sf, nil
}

// Vec3At returns the given coordinate triple as a vector,
// and false if it does not have 3 coordinates.
func Vec3At(p []float32) (math32.Vector3, bool) {
	if len(p) < 3 {
		return math32.Vector3{}, false
	}
	return math32.Vec3(p[0], p[1], p[2]), true
}
