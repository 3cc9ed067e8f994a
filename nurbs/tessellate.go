// Copyright (c) 2026, Solid Scene Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nurbs

import (
	"cogentcore.org/core/math32"

	"github.com/solidscene/solidscene/mesh"
)

// Options are the tessellation quality parameters, threaded explicitly
// through every tessellation call.
type Options struct {
	// Quality scales the curvature-driven resolution formula.
	// 1 is the standard viewer quality.
	Quality float32

	// Flatness is the normalized hull-curvature threshold below which a
	// collinear control grid collapses to a single quad. The default is
	// 1/180, about 1 degree of dihedral angle.
	Flatness float32
}

// Defaults sets default options for zero values.
func (o *Options) Defaults() {
	if o.Quality <= 0 {
		o.Quality = 1
	}
	if o.Flatness <= 0 {
		o.Flatness = 1.0 / 180
	}
}

// parallelTol is the tolerance for treating consecutive control-hull
// edge vectors as parallel in the planar-collapse check.
const parallelTol = 1e-6

// TessellateCurve samples the curve into a polyline point sequence.
// Resolution is max(floor(numPoints * degree * quality), numPoints-1).
// Degree-1 curves bypass evaluation entirely: the control points are
// the polyline.
func TessellateCurve(cv *Curve, opts *Options, entity string) ([]math32.Vector3, error) {
	if err := cv.Check(entity); err != nil {
		return nil, err
	}
	n := len(cv.Points)
	if cv.Degree == 1 {
		pts := make([]math32.Vector3, n)
		for i, cp := range cv.Points {
			pts[i] = cp.Pos
		}
		return pts, nil
	}
	var o Options
	if opts != nil {
		o = *opts
	}
	o.Defaults()
	res := max(int(math32.Floor(float32(n*cv.Degree)*o.Quality)), n-1)

	lo, hi := rawDomain(cv.Knots, cv.Degree, cv.IsClosed())
	scratch := make([]float32, 3*(cv.Degree+1))
	pts := make([]math32.Vector3, res+1)
	for i := 0; i <= res; i++ {
		t := lo + (hi-lo)*float32(i)/float32(res)
		pts[i] = cv.pointAt(t, scratch)
	}
	return pts, nil
}

// TessellateSurface produces a triangulated grid mesh for the surface.
// The resolution in each parametric direction is driven by the maximum
// dihedral curvature of the minimum control-point hull:
// max(floor(degree * numPoints * curvature * quality), hullCells).
// A hull below the flatness threshold whose control grid is collinear in
// both directions collapses to a single quad regardless of quality.
func TessellateSurface(sf *Surface, opts *Options, entity string) (*mesh.Mesh, error) {
	if err := sf.Check(entity); err != nil {
		return nil, err
	}
	var o Options
	if opts != nil {
		o = *opts
	}
	o.Defaults()

	nu, nv := sf.NumU(), sf.NumV()
	curvature := hullCurvature(sf.Grid)

	slices := max(int(math32.Floor(float32(sf.UDegree*nu)*curvature*o.Quality)), nu-1)
	stacks := max(int(math32.Floor(float32(sf.VDegree*nv)*curvature*o.Quality)), nv-1)
	if curvature < o.Flatness && hullCollinear(sf.Grid) {
		// planar patch: no detail needed, one quad
		slices, stacks = 1, 1
	}

	uLo, uHi := rawDomain(sf.UKnots, sf.UDegree, sf.IsClosedU())
	vLo, vHi := rawDomain(sf.VKnots, sf.VDegree, sf.IsClosedV())

	ms := mesh.New(mesh.Triangles)
	ms.Name = entity
	scratchU := make([]float32, 3*(sf.UDegree+1))
	scratchV := make([]float32, 3*(sf.VDegree+1))
	for i := 0; i <= slices; i++ {
		u := float32(i) / float32(slices)
		tu := uLo + (uHi-uLo)*u
		for j := 0; j <= stacks; j++ {
			v := float32(j) / float32(stacks)
			tv := vLo + (vHi-vLo)*v
			ms.AddPos(sf.pointAt(tu, tv, scratchU, scratchV))
			ms.AddTexCoord(u, v)
		}
	}
	row := stacks + 1
	for i := 0; i < slices; i++ {
		for j := 0; j < stacks; j++ {
			a := uint32(i*row + j)
			b := uint32((i+1)*row + j)
			ms.Index = append(ms.Index, a, b, a+1, b, b+1, a+1)
		}
	}
	ms.UpdateBBox()
	return ms, nil
}

// hullCurvature returns the maximum dihedral curvature of the coarsest
// triangulated control-point grid: for every pair of adjacent hull
// triangles, the angle between their normals, normalized by pi, keeping
// the maximum. Degenerate (zero-area) hull triangles are skipped.
func hullCurvature(grid [][]ControlPoint) float32 {
	nu := len(grid)
	nv := len(grid[0])
	// two triangle normals per hull cell
	na := make([][]math32.Vector3, nu-1)
	nb := make([][]math32.Vector3, nu-1)
	for i := 0; i < nu-1; i++ {
		na[i] = make([]math32.Vector3, nv-1)
		nb[i] = make([]math32.Vector3, nv-1)
		for j := 0; j < nv-1; j++ {
			p00 := grid[i][j].Pos
			p10 := grid[i+1][j].Pos
			p01 := grid[i][j+1].Pos
			p11 := grid[i+1][j+1].Pos
			na[i][j] = math32.Normal(p00, p10, p01)
			nb[i][j] = math32.Normal(p10, p11, p01)
		}
	}
	var maxAng float32
	ang := func(a, b math32.Vector3) {
		if a.LengthSquared() == 0 || b.LengthSquared() == 0 {
			return
		}
		d := math32.Clamp(a.Dot(b), -1, 1)
		maxAng = max(maxAng, math32.Acos(d))
	}
	for i := 0; i < nu-1; i++ {
		for j := 0; j < nv-1; j++ {
			ang(na[i][j], nb[i][j]) // in-cell diagonal pair
			if i+1 < nu-1 {
				ang(nb[i][j], na[i+1][j])
			}
			if j+1 < nv-1 {
				ang(nb[i][j], na[i][j+1])
			}
		}
	}
	return maxAng / math32.Pi
}

// hullCollinear reports whether consecutive control-hull edge vectors
// are parallel within tolerance along both grid directions.
func hullCollinear(grid [][]ControlPoint) bool {
	nu := len(grid)
	nv := len(grid[0])
	// along v within each row
	for i := 0; i < nu; i++ {
		for j := 0; j < nv-2; j++ {
			e1 := grid[i][j+1].Pos.Sub(grid[i][j].Pos)
			e2 := grid[i][j+2].Pos.Sub(grid[i][j+1].Pos)
			if !parallel(e1, e2) {
				return false
			}
		}
	}
	// along u within each column
	for j := 0; j < nv; j++ {
		for i := 0; i < nu-2; i++ {
			e1 := grid[i+1][j].Pos.Sub(grid[i][j].Pos)
			e2 := grid[i+2][j].Pos.Sub(grid[i+1][j].Pos)
			if !parallel(e1, e2) {
				return false
			}
		}
	}
	return true
}

func parallel(a, b math32.Vector3) bool {
	if a.LengthSquared() == 0 || b.LengthSquared() == 0 {
		return true // coincident points impose no direction
	}
	return a.Normal().Cross(b.Normal()).Length() < parallelTol
}
