// Copyright (c) 2026, Solid Scene Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mesh

import (
	"cogentcore.org/core/math32"

	"github.com/solidscene/solidscene/fault"
)

// Merge concatenates the attribute buffers of the given meshes into one
// mesh, reducing the draw-call count. The caller guarantees that all
// meshes share one material signature; Merge never checks signatures.
//
// Each mesh is face-vertex split and given synthesized normals first
// (triangle meshes only). The first mesh is the accumulation base: every
// other mesh has the composition of its world transform with the inverse
// of the base transform baked into its position and normal data, so the
// merged buffer lives in the base mesh's frame.
//
// All meshes must agree with the base on which attribute buffers are
// present; a mismatch is a [fault.MismatchedAttributes] error and the
// caller must keep the groups separate instead.
//
// The source meshes' buffers are released after concatenation and must
// not be reused.
func Merge(meshes []*Mesh) (*Mesh, error) {
	if len(meshes) == 0 {
		return nil, fault.New(fault.DegenerateGeometry, "", "merge of empty mesh list")
	}
	for _, ms := range meshes {
		if ms.Kind == Triangles {
			if !ms.HasNormals() {
				ms.SynthesizeNormals(DefaultSmoothAngle)
			} else {
				ms.Unindex()
			}
		} else {
			ms.Unindex()
		}
	}
	base := meshes[0]
	for _, ms := range meshes[1:] {
		if ms.Kind != base.Kind {
			return nil, fault.Newf(fault.MismatchedAttributes, ms.Name,
				"cannot merge %v mesh into %v mesh", ms.Kind, base.Kind)
		}
		if ms.HasNormals() != base.HasNormals() ||
			ms.HasColors() != base.HasColors() ||
			ms.HasTexCoords() != base.HasTexCoords() {
			return nil, fault.Newf(fault.MismatchedAttributes, ms.Name,
				"attribute layout differs from base mesh %q", base.Name)
		}
	}

	out := New(base.Kind)
	out.Name = base.Name
	out.Transform = base.Transform
	baseInv, err := base.Transform.Inverse()
	if err != nil {
		return nil, fault.Wrap(fault.DegenerateGeometry, base.Name, err)
	}

	out.Vertex = base.Vertex
	out.Normal = base.Normal
	out.Color = base.Color
	out.TexCoord = base.TexCoord

	for _, ms := range meshes[1:] {
		var rel math32.Matrix4
		rel.MulMatrices(baseInv, &ms.Transform)
		bakeTransform(ms, &rel)
		out.Vertex = append(out.Vertex, ms.Vertex...)
		out.Normal = append(out.Normal, ms.Normal...)
		out.Color = append(out.Color, ms.Color...)
		out.TexCoord = append(out.TexCoord, ms.TexCoord...)
	}
	for _, ms := range meshes {
		ms.Release()
	}
	out.UpdateBBox()
	return out, nil
}

// bakeTransform applies the given matrix to the mesh positions in place,
// and its rotation / scale part to the normals, renormalized.
func bakeTransform(ms *Mesh, mat *math32.Matrix4) {
	nv := ms.NumVertex()
	for i := range nv {
		ms.SetPos(i, ms.Pos(i).MulMatrix4(mat))
	}
	if !ms.HasNormals() {
		return
	}
	nm := math32.Matrix3FromMatrix4(mat)
	for i := range nv {
		ms.SetNorm(i, ms.Norm(i).MulMatrix3(&nm).Normal())
	}
}
