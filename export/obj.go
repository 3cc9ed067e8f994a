// Copyright (c) 2026, Solid Scene Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package export writes assembled scenes to interchange formats.
package export

import (
	"bufio"
	"fmt"
	"io"

	"cogentcore.org/core/math32"

	"github.com/solidscene/solidscene/mesh"
	"github.com/solidscene/solidscene/scene"
)

// OBJ writes all visible leaf geometry of the scene to w in Wavefront
// OBJ form, one named object per leaf, with world transforms baked into
// the emitted vertices. Point and line leaves use OBJ point / line
// elements; pending leaves and invisible subtrees are skipped.
func OBJ(w io.Writer, root *scene.Node) error {
	bw := bufio.NewWriter(w)
	base := 1
	root.WalkDown(func(nd *scene.Node) bool {
		if !nd.Visible {
			return false
		}
		if nd.Mesh != nil {
			base += writeMesh(bw, nd, base)
		}
		return true
	})
	// write errors are sticky in the buffered writer
	return bw.Flush()
}

// writeMesh emits one leaf and returns how many vertices it wrote.
func writeMesh(bw *bufio.Writer, nd *scene.Node, base int) int {
	ms := nd.Mesh
	world := nd.WorldMatrix()
	nm := math32.Matrix3FromMatrix4(&world)

	fmt.Fprintf(bw, "o %s\n", nd.Name)
	nv := ms.NumVertex()
	for i := range nv {
		p := ms.Pos(i).MulMatrix4(&world)
		fmt.Fprintf(bw, "v %g %g %g\n", p.X, p.Y, p.Z)
	}
	if ms.HasNormals() {
		for i := range nv {
			n := ms.Norm(i).MulMatrix3(&nm).Normal()
			fmt.Fprintf(bw, "vn %g %g %g\n", n.X, n.Y, n.Z)
		}
	}
	if ms.HasTexCoords() {
		for i := range nv {
			fmt.Fprintf(bw, "vt %g %g\n", ms.TexCoord[2*i], ms.TexCoord[2*i+1])
		}
	}

	switch ms.Kind {
	case mesh.Points:
		for i := range nv {
			fmt.Fprintf(bw, "p %d\n", base+i)
		}
	case mesh.Lines:
		if ms.IsIndexed() {
			for i := 0; i+1 < len(ms.Index); i += 2 {
				fmt.Fprintf(bw, "l %d %d\n", base+int(ms.Index[i]), base+int(ms.Index[i+1]))
			}
		} else {
			for i := 0; i+1 < nv; i++ {
				fmt.Fprintf(bw, "l %d %d\n", base+i, base+i+1)
			}
		}
	case mesh.Triangles:
		emit := func(a, b, c int) {
			if ms.HasNormals() && ms.HasTexCoords() {
				fmt.Fprintf(bw, "f %d/%d/%d %d/%d/%d %d/%d/%d\n", a, a, a, b, b, b, c, c, c)
			} else if ms.HasNormals() {
				fmt.Fprintf(bw, "f %d//%d %d//%d %d//%d\n", a, a, b, b, c, c)
			} else {
				fmt.Fprintf(bw, "f %d %d %d\n", a, b, c)
			}
		}
		if ms.IsIndexed() {
			for i := 0; i+3 <= len(ms.Index); i += 3 {
				emit(base+int(ms.Index[i]), base+int(ms.Index[i+1]), base+int(ms.Index[i+2]))
			}
		} else {
			for i := 0; i+3 <= nv; i += 3 {
				emit(base+i, base+i+1, base+i+2)
			}
		}
	}
	return nv
}
