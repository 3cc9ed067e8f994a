// Copyright (c) 2026, Solid Scene Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mesh

import (
	"cogentcore.org/core/math32"
)

// DefaultSmoothAngle is the default crease threshold in degrees:
// normals blend across edges whose dihedral angle is below this,
// and split into a crease above it.
const DefaultSmoothAngle = 45

// cornerRef locates one corner of one face in a face-vertex-split buffer.
type cornerRef struct {
	face   int
	corner int
}

// SynthesizeNormals computes a normal for every face-vertex of a triangle
// mesh, blending smoothly across edges whose dihedral angle is below
// smoothAngle (degrees) and splitting sharply across creases. The mesh is
// converted to the face-vertex-split layout first, so that each face owns
// its 3 vertex entries. Faces whose three synthesized corner normals come
// out mutually equal keep the flat face normal exactly.
// No-op for non-triangle meshes.
func (ms *Mesh) SynthesizeNormals(smoothAngle float32) {
	if ms.Kind != Triangles {
		return
	}
	ms.Unindex()
	nf := ms.NumVertex() / 3
	if nf == 0 {
		return
	}
	cosThr := math32.Cos(math32.DegToRad(smoothAngle))

	// flat normal per face
	faceNorm := make([]math32.Vector3, nf)
	for f := range nf {
		a := ms.Pos(3 * f)
		b := ms.Pos(3*f + 1)
		c := ms.Pos(3*f + 2)
		faceNorm[f] = math32.Normal(a, b, c)
	}

	// topological adjacency: position -> all (face, corner) at that position.
	// positions originating from the same source vertex are bitwise equal,
	// so exact keys suffice.
	adj := make(map[[3]float32][]cornerRef, ms.NumVertex())
	for f := range nf {
		for c := range 3 {
			i := 3*f + c
			key := [3]float32{ms.Vertex[3*i], ms.Vertex[3*i+1], ms.Vertex[3*i+2]}
			adj[key] = append(adj[key], cornerRef{f, c})
		}
	}

	norm := make(math32.ArrayF32, len(ms.Vertex))
	ms.Normal = norm
	for f := range nf {
		fn := faceNorm[f]
		var cn [3]math32.Vector3
		for c := range 3 {
			i := 3*f + c
			key := [3]float32{ms.Vertex[3*i], ms.Vertex[3*i+1], ms.Vertex[3*i+2]}
			sum := math32.Vector3{}
			for _, cr := range adj[key] {
				on := faceNorm[cr.face]
				if on.Dot(fn) > cosThr {
					sum.SetAdd(on)
				}
			}
			if sum.LengthSquared() == 0 {
				sum = fn
			}
			cn[c] = sum.Normal()
		}
		// if all three corners agree, the face renders flat
		if cn[0].DistanceToSquared(cn[1]) < flatNormalTol &&
			cn[1].DistanceToSquared(cn[2]) < flatNormalTol &&
			cn[0].DistanceToSquared(cn[2]) < flatNormalTol {
			cn[0], cn[1], cn[2] = fn, fn, fn
		}
		for c := range 3 {
			ms.SetNorm(3*f+c, cn[c])
		}
	}
}

// flatNormalTol is the squared-distance tolerance under which the three
// corner normals of a face are considered equal, keeping the face flat.
const flatNormalTol = 1e-6
