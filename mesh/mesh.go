// Copyright (c) 2026, Solid Scene Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package mesh provides the renderable geometry buffers produced by the
// tessellation pipeline: flat float32 attribute arrays for point clouds,
// polylines, and triangle meshes, plus the crease-preserving normal
// synthesizer and the draw-call-reducing merge engine.
package mesh

import (
	"github.com/jinzhu/copier"

	"cogentcore.org/core/math32"
)

// Kind is the variant tag of a [Mesh]: every mesh is a point cloud,
// a line set, or a triangle mesh, sharing one buffer payload.
type Kind int32

const (
	// Points renders each vertex as an independent point.
	Points Kind = iota

	// Lines renders consecutive vertex pairs as line segments,
	// or, with an index buffer, indexed segment pairs.
	Lines

	// Triangles renders triangle faces, either indexed or, after
	// face-vertex splitting, as every 3 consecutive vertices.
	Triangles
)

var kindNames = []string{"Points", "Lines", "Triangles"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "Invalid"
	}
	return kindNames[k]
}

// Mesh is a renderable geometry buffer. Vertex positions are required;
// normal, color, and texture-coordinate buffers are optional and, when
// present, run parallel to the position buffer. When Index is empty,
// faces are implicit: every 3 consecutive vertices form one face
// (the post-merge, face-vertex-split layout).
type Mesh struct {
	// Name is the mesh name, usually the id of the originating entity.
	Name string

	// Kind is the variant tag: points, lines, or triangles.
	Kind Kind

	// Vertex is the flat position buffer, 3 float32 per vertex.
	Vertex math32.ArrayF32

	// Normal is the optional flat normal buffer, 3 float32 per vertex.
	Normal math32.ArrayF32

	// Color is the optional per-vertex color buffer, RGBA float32.
	Color math32.ArrayF32

	// TexCoord is the optional texture coordinate buffer, 2 float32
	// per vertex (the surface parameter values for NURBS surfaces).
	TexCoord math32.ArrayF32

	// Index is the optional triangle / segment index list.
	// Empty means the implicit consecutive layout.
	Index math32.ArrayU32

	// Transform is the local-to-world matrix of this mesh.
	Transform math32.Matrix4

	// BBox is the local-space bounding box, updated by [Mesh.UpdateBBox].
	BBox math32.Box3
}

// New returns a new empty Mesh of the given kind with identity transform.
func New(kind Kind) *Mesh {
	ms := &Mesh{Kind: kind}
	ms.Transform.SetIdentity()
	return ms
}

// NumVertex returns the number of vertices in the position buffer.
func (ms *Mesh) NumVertex() int {
	return len(ms.Vertex) / 3
}

// NumFaces returns the number of triangle faces, indexed or implicit.
// It is 0 for non-triangle meshes.
func (ms *Mesh) NumFaces() int {
	if ms.Kind != Triangles {
		return 0
	}
	if len(ms.Index) > 0 {
		return len(ms.Index) / 3
	}
	return ms.NumVertex() / 3
}

func (ms *Mesh) HasNormals() bool   { return len(ms.Normal) > 0 }
func (ms *Mesh) HasColors() bool    { return len(ms.Color) > 0 }
func (ms *Mesh) HasTexCoords() bool { return len(ms.TexCoord) > 0 }
func (ms *Mesh) IsIndexed() bool    { return len(ms.Index) > 0 }

// Pos returns the position of vertex i.
func (ms *Mesh) Pos(i int) math32.Vector3 {
	return math32.Vec3(ms.Vertex[3*i], ms.Vertex[3*i+1], ms.Vertex[3*i+2])
}

// SetPos sets the position of vertex i.
func (ms *Mesh) SetPos(i int, v math32.Vector3) {
	ms.Vertex[3*i] = v.X
	ms.Vertex[3*i+1] = v.Y
	ms.Vertex[3*i+2] = v.Z
}

// Norm returns the normal of vertex i.
func (ms *Mesh) Norm(i int) math32.Vector3 {
	return math32.Vec3(ms.Normal[3*i], ms.Normal[3*i+1], ms.Normal[3*i+2])
}

// SetNorm sets the normal of vertex i.
func (ms *Mesh) SetNorm(i int, v math32.Vector3) {
	ms.Normal[3*i] = v.X
	ms.Normal[3*i+1] = v.Y
	ms.Normal[3*i+2] = v.Z
}

// AddPos appends a vertex position.
func (ms *Mesh) AddPos(v math32.Vector3) {
	ms.Vertex = append(ms.Vertex, v.X, v.Y, v.Z)
}

// AddNorm appends a vertex normal.
func (ms *Mesh) AddNorm(v math32.Vector3) {
	ms.Normal = append(ms.Normal, v.X, v.Y, v.Z)
}

// AddTexCoord appends a texture coordinate.
func (ms *Mesh) AddTexCoord(u, v float32) {
	ms.TexCoord = append(ms.TexCoord, u, v)
}

// AddColor appends an RGBA vertex color.
func (ms *Mesh) AddColor(r, g, b, a float32) {
	ms.Color = append(ms.Color, r, g, b, a)
}

// PaintColor sets every vertex color to the given RGBA value, creating
// the color buffer if needed. This is how layer-level color overrides
// win over any inherited vertex color.
func (ms *Mesh) PaintColor(r, g, b, a float32) {
	nv := ms.NumVertex()
	if len(ms.Color) != 4*nv {
		ms.Color = make(math32.ArrayF32, 4*nv)
	}
	for i := range nv {
		ms.Color[4*i] = r
		ms.Color[4*i+1] = g
		ms.Color[4*i+2] = b
		ms.Color[4*i+3] = a
	}
}

// UpdateBBox recomputes the local-space bounding box from the
// position buffer.
func (ms *Mesh) UpdateBBox() {
	ms.BBox.SetEmpty()
	nv := ms.NumVertex()
	for i := range nv {
		ms.BBox.ExpandByPoint(ms.Pos(i))
	}
}

// Unindex converts an indexed triangle or line mesh to the face-vertex-split
// layout, where each face has its own consecutive vertex entries and no
// vertex is shared between faces. This is the required precondition for
// normal synthesis and merging. No-op for meshes without an index buffer.
func (ms *Mesh) Unindex() {
	if len(ms.Index) == 0 {
		return
	}
	n := len(ms.Index)
	vtx := make(math32.ArrayF32, 0, 3*n)
	var nrm, clr, tex math32.ArrayF32
	if ms.HasNormals() {
		nrm = make(math32.ArrayF32, 0, 3*n)
	}
	if ms.HasColors() {
		clr = make(math32.ArrayF32, 0, 4*n)
	}
	if ms.HasTexCoords() {
		tex = make(math32.ArrayF32, 0, 2*n)
	}
	for _, ix := range ms.Index {
		i := int(ix)
		vtx = append(vtx, ms.Vertex[3*i], ms.Vertex[3*i+1], ms.Vertex[3*i+2])
		if nrm != nil {
			nrm = append(nrm, ms.Normal[3*i], ms.Normal[3*i+1], ms.Normal[3*i+2])
		}
		if clr != nil {
			clr = append(clr, ms.Color[4*i], ms.Color[4*i+1], ms.Color[4*i+2], ms.Color[4*i+3])
		}
		if tex != nil {
			tex = append(tex, ms.TexCoord[2*i], ms.TexCoord[2*i+1])
		}
	}
	ms.Vertex = vtx
	ms.Normal = nrm
	ms.Color = clr
	ms.TexCoord = tex
	ms.Index = nil
}

// Clone returns an independent deep copy of the mesh, sharing nothing
// with the source. Instances use this because no scene node may have
// two parents.
func (ms *Mesh) Clone() *Mesh {
	nm := &Mesh{}
	copier.CopyWithOption(nm, ms, copier.Option{DeepCopy: true})
	return nm
}

// Release drops the geometry buffers, after their content has been
// concatenated into a merged mesh. The mesh must not be used afterwards.
func (ms *Mesh) Release() {
	ms.Vertex = nil
	ms.Normal = nil
	ms.Color = nil
	ms.TexCoord = nil
	ms.Index = nil
}
