// Copyright (c) 2026, Solid Scene Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nurbs

import (
	"testing"

	"cogentcore.org/core/base/tolassert"
	"cogentcore.org/core/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solidscene/solidscene/fault"
)

func pt(x, y, z float32) ControlPoint {
	return ControlPoint{Pos: math32.Vec3(x, y, z)}
}

// clampedKnots returns a clamped uniform knot vector for n points of
// the given degree.
func clampedKnots(n, degree int) []float32 {
	m := n + degree + 1
	knots := make([]float32, m)
	spans := n - degree
	for i := range knots {
		switch {
		case i <= degree:
			knots[i] = 0
		case i >= m-degree-1:
			knots[i] = float32(spans)
		default:
			knots[i] = float32(i - degree)
		}
	}
	return knots
}

func TestCurveCheckKnotCount(t *testing.T) {
	cv := &Curve{
		Degree: 3,
		Knots:  []float32{0, 0, 0, 1, 2, 3}, // needs 8
		Points: []ControlPoint{pt(0, 0, 0), pt(1, 1, 0), pt(2, -1, 0), pt(3, 0, 0)},
	}
	err := cv.Check("c1")
	require.Error(t, err)
	assert.Equal(t, fault.InvalidNurbsDefinition, fault.KindOf(err))
	fe, ok := fault.As(err)
	require.True(t, ok)
	assert.Equal(t, "c1", fe.Entity)
}

func TestCurveCheckDecreasingKnots(t *testing.T) {
	cv := &Curve{
		Degree: 1,
		Knots:  []float32{0, 1, 0.5, 2},
		Points: []ControlPoint{pt(0, 0, 0), pt(1, 0, 0)},
	}
	assert.Error(t, cv.Check(""))
}

func TestDegree1CurveIsControlPolyline(t *testing.T) {
	cv := &Curve{
		Degree: 1,
		Knots:  []float32{0, 0, 1, 2, 2},
		Points: []ControlPoint{pt(0, 0, 0), pt(1, 2, 0), pt(3, 0, 0)},
	}
	pts, err := TessellateCurve(cv, nil, "")
	require.NoError(t, err)
	require.Len(t, pts, 3)
	assert.Equal(t, math32.Vec3(1, 2, 0), pts[1])
}

func TestClampedCubicEndpoints(t *testing.T) {
	cps := []ControlPoint{pt(0, 0, 0), pt(1, 3, 0), pt(3, 3, 0), pt(4, 0, 0)}
	cv := &Curve{Degree: 3, Knots: clampedKnots(len(cps), 3), Points: cps}
	p0 := cv.Point(0)
	p1 := cv.Point(1)
	tolassert.EqualTol(t, float32(0), p0.DistanceTo(cps[0].Pos), 1e-5)
	tolassert.EqualTol(t, float32(0), p1.DistanceTo(cps[3].Pos), 1e-5)
}

func TestUnclampedCubicTessellation(t *testing.T) {
	cps := []ControlPoint{pt(0, 0, 0), pt(1, 2, 0), pt(2, -2, 0), pt(3, 0, 0)}
	cv := &Curve{Degree: 3, Knots: []float32{0, 0, 0, 1, 2, 3, 3, 3}, Points: cps}
	pts, err := TessellateCurve(cv, nil, "curve")
	require.NoError(t, err)
	// resolution floor(4*3*1) = 12 segments
	assert.Len(t, pts, 13)
	for _, p := range pts {
		assert.False(t, p.X != p.X || p.Y != p.Y || p.Z != p.Z, "NaN in point %v", p)
	}
}

func TestRationalWeightsPullCurve(t *testing.T) {
	mk := func(w float32) *Curve {
		cps := []ControlPoint{pt(0, 0, 0), pt(1, 2, 0), pt(2, 0, 0)}
		cps[1].Weight = w
		return &Curve{Degree: 2, Knots: clampedKnots(3, 2), Points: cps}
	}
	mid1 := mk(1).Point(0.5)
	mid5 := mk(5).Point(0.5)
	// a heavier middle weight pulls the curve toward the middle point
	assert.Greater(t, mid5.Y, mid1.Y)
}

func TestQualityScalesCurveResolution(t *testing.T) {
	cps := []ControlPoint{pt(0, 0, 0), pt(1, 2, 0), pt(2, -2, 0), pt(3, 0, 0)}
	cv := &Curve{Degree: 3, Knots: clampedKnots(4, 3), Points: cps}
	lo, err := TessellateCurve(cv, &Options{Quality: 1}, "")
	require.NoError(t, err)
	hi, err := TessellateCurve(cv, &Options{Quality: 4}, "")
	require.NoError(t, err)
	assert.Greater(t, len(hi), len(lo))
}

func TestTangentDirection(t *testing.T) {
	cps := []ControlPoint{pt(0, 0, 0), pt(1, 0, 0), pt(2, 0, 0)}
	cv := &Curve{Degree: 2, Knots: clampedKnots(3, 2), Points: cps}
	tan := cv.Tangent(0.5)
	tolassert.EqualTol(t, float32(1), tan.X, 1e-4)
	tolassert.EqualTol(t, float32(0), tan.Y, 1e-4)
}

func flatGrid(nu, nv int) [][]ControlPoint {
	grid := make([][]ControlPoint, nu)
	for i := range grid {
		grid[i] = make([]ControlPoint, nv)
		for j := range grid[i] {
			grid[i][j] = pt(float32(i), float32(j), 0)
		}
	}
	return grid
}

func TestFlatSurfaceCollapsesToSingleQuad(t *testing.T) {
	sf := &Surface{
		UDegree: 2, VDegree: 2,
		UKnots: clampedKnots(4, 2), VKnots: clampedKnots(4, 2),
		Grid: flatGrid(4, 4),
	}
	ms, err := TessellateSurface(sf, nil, "plane")
	require.NoError(t, err)
	assert.Equal(t, 4, ms.NumVertex())
	assert.Equal(t, 2, ms.NumFaces())

	// idempotent under quality: still one quad at quality 10
	ms10, err := TessellateSurface(sf, &Options{Quality: 10}, "plane")
	require.NoError(t, err)
	assert.Equal(t, 4, ms10.NumVertex())
}

func TestCurvedSurfaceResolution(t *testing.T) {
	grid := flatGrid(4, 4)
	grid[1][1].Pos.Z = 2
	grid[2][2].Pos.Z = -2
	sf := &Surface{
		UDegree: 2, VDegree: 2,
		UKnots: clampedKnots(4, 2), VKnots: clampedKnots(4, 2),
		Grid: grid,
	}
	ms, err := TessellateSurface(sf, nil, "patch")
	require.NoError(t, err)
	// curvature-driven resolution always at least the hull cell count
	assert.GreaterOrEqual(t, ms.NumFaces(), 2*3*3)
	assert.True(t, ms.HasTexCoords())
	assert.True(t, ms.IsIndexed())
}

func TestSurfaceKnotMismatch(t *testing.T) {
	sf := &Surface{
		UDegree: 2, VDegree: 2,
		UKnots: clampedKnots(4, 2), VKnots: []float32{0, 0, 1},
		Grid: flatGrid(4, 4),
	}
	_, err := TessellateSurface(sf, nil, "s")
	require.Error(t, err)
	assert.Equal(t, fault.InvalidNurbsDefinition, fault.KindOf(err))
}

func TestSurfaceRaggedGrid(t *testing.T) {
	grid := flatGrid(3, 3)
	grid[1] = grid[1][:2]
	sf := &Surface{
		UDegree: 2, VDegree: 2,
		UKnots: clampedKnots(3, 2), VKnots: clampedKnots(3, 2),
		Grid: grid,
	}
	assert.Error(t, sf.Check(""))
}

func TestClosedSurfaceBoundaryMeets(t *testing.T) {
	// periodic quadratic cylinder around z: 9 control columns, the last
	// degree columns repeating the first
	ring := [][2]float32{
		{1, 0}, {1, 1}, {-1, 1}, {-1, -1}, {1, -1}, {1, 0}, {1, 1},
	}
	nu := len(ring)
	grid := make([][]ControlPoint, nu)
	for i, xy := range ring {
		grid[i] = []ControlPoint{
			pt(xy[0], xy[1], 0),
			pt(xy[0], xy[1], 1),
		}
	}
	uKnots := make([]float32, nu+3)
	for i := range uKnots {
		uKnots[i] = float32(i)
	}
	sf := &Surface{
		UDegree: 2, VDegree: 1,
		UKnots: uKnots, VKnots: clampedKnots(2, 1),
		Grid: grid,
	}
	require.NoError(t, sf.Check(""))
	assert.True(t, sf.IsClosedU())
	assert.False(t, sf.IsClosedV())
	p0 := sf.Point(0, 0.5)
	p1 := sf.Point(1, 0.5)
	tolassert.EqualTol(t, float32(0), p0.DistanceTo(p1), 1e-4)
}

func TestArcThreePoints(t *testing.T) {
	// quarter circle of radius 1 around the origin
	pts := TessellateArc(
		math32.Vec3(1, 0, 0),
		math32.Vec3(math32.Sqrt(2)/2, math32.Sqrt(2)/2, 0),
		math32.Vec3(0, 1, 0),
		nil)
	require.GreaterOrEqual(t, len(pts), 2)
	for _, p := range pts {
		tolassert.EqualTol(t, float32(1), p.Length(), 1e-4)
	}
	tolassert.EqualTol(t, float32(0), pts[0].DistanceTo(math32.Vec3(1, 0, 0)), 1e-5)
	tolassert.EqualTol(t, float32(0), pts[len(pts)-1].DistanceTo(math32.Vec3(0, 1, 0)), 1e-4)
}

func TestDegenerateArcIsPolyline(t *testing.T) {
	// collinear inputs cannot define a circle
	pts := TessellateArc(
		math32.Vec3(0, 0, 0),
		math32.Vec3(1, 0, 0),
		math32.Vec3(2, 0, 0),
		nil)
	require.Len(t, pts, 3)
	assert.Equal(t, math32.Vec3(1, 0, 0), pts[1])
}

func TestCoincidentArcPoints(t *testing.T) {
	p := math32.Vec3(1, 2, 3)
	pts := TessellateArc(p, p, p, nil)
	require.Len(t, pts, 3)
	assert.Equal(t, p, pts[0])
}

func TestClampedClosedSurfaceDetected(t *testing.T) {
	// clamped quadratic tube: the boundary rows coincide even though
	// the control grid does not wrap periodically
	loop := [][2]float32{{0, 0}, {2, 0}, {2, 2}, {0, 2}, {0, 0}}
	grid := make([][]ControlPoint, len(loop))
	for i, xy := range loop {
		grid[i] = []ControlPoint{
			pt(xy[0], xy[1], 0),
			pt(xy[0], xy[1], 1),
		}
	}
	sf := &Surface{
		UDegree: 2, VDegree: 1,
		UKnots: clampedKnots(5, 2), VKnots: clampedKnots(2, 1),
		Grid: grid,
	}
	require.NoError(t, sf.Check(""))
	assert.True(t, sf.IsClosedU())
	assert.False(t, sf.IsClosedV())
}
