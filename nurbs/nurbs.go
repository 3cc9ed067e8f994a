// Copyright (c) 2026, Solid Scene Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package nurbs evaluates Non-Uniform Rational B-Spline curves and
// surfaces, and tessellates them adaptively based on the curvature of
// their control-point hull, collapsing flat regions to minimal geometry.
package nurbs

import (
	"cogentcore.org/core/math32"

	"github.com/solidscene/solidscene/fault"
)

// CoincideTol is the distance tolerance under which two evaluated
// points are considered the same, used for closed-domain detection
// and degenerate-input checks.
const CoincideTol = 1e-6

// ControlPoint is one weighted control point. A zero Weight is treated
// as the default weight of 1 everywhere, so plain B-spline data needs
// no explicit weights.
type ControlPoint struct {
	Pos    math32.Vector3
	Weight float32
}

// W returns the effective weight, defaulting to 1.
func (cp ControlPoint) W() float32 {
	if cp.Weight == 0 {
		return 1
	}
	return cp.Weight
}

// Curve is a NURBS curve: degree, knot vector, and weighted control
// points. The defining invariant is
// len(Knots) == len(Points) + Degree + 1.
type Curve struct {
	Degree int
	Knots  []float32
	Points []ControlPoint
}

// Check verifies the curve invariants, returning a
// [fault.InvalidNurbsDefinition] error naming the entity if violated.
// It is the precondition of every evaluation and tessellation call.
func (cv *Curve) Check(entity string) error {
	if cv.Degree < 1 {
		return fault.Newf(fault.InvalidNurbsDefinition, entity,
			"curve degree %d is below 1", cv.Degree)
	}
	if len(cv.Points) < cv.Degree+1 {
		return fault.Newf(fault.InvalidNurbsDefinition, entity,
			"curve of degree %d needs at least %d control points; has %d",
			cv.Degree, cv.Degree+1, len(cv.Points))
	}
	return checkKnots(entity, "curve", cv.Degree, len(cv.Points), cv.Knots)
}

// Surface is a NURBS surface: independent degree / knot-vector pairs in
// the u and v directions over a rectangular grid of weighted control
// points, indexed Grid[u][v]. The knot invariant holds per direction
// against the grid's row / column counts.
type Surface struct {
	UDegree int
	VDegree int
	UKnots  []float32
	VKnots  []float32
	Grid    [][]ControlPoint
}

// NumU returns the number of control points in the u direction.
func (sf *Surface) NumU() int { return len(sf.Grid) }

// NumV returns the number of control points in the v direction.
func (sf *Surface) NumV() int {
	if len(sf.Grid) == 0 {
		return 0
	}
	return len(sf.Grid[0])
}

// Check verifies the surface invariants for both directions.
func (sf *Surface) Check(entity string) error {
	if sf.UDegree < 1 || sf.VDegree < 1 {
		return fault.Newf(fault.InvalidNurbsDefinition, entity,
			"surface degrees %d x %d must be at least 1", sf.UDegree, sf.VDegree)
	}
	nu, nv := sf.NumU(), sf.NumV()
	if nu < 2 || nv < 2 {
		return fault.Newf(fault.InvalidNurbsDefinition, entity,
			"surface control grid %d x %d is below the 2 x 2 minimum", nu, nv)
	}
	for i, row := range sf.Grid {
		if len(row) != nv {
			return fault.Newf(fault.InvalidNurbsDefinition, entity,
				"surface control grid is ragged: row %d has %d points; expected %d",
				i, len(row), nv)
		}
	}
	if err := checkKnots(entity, "surface u", sf.UDegree, nu, sf.UKnots); err != nil {
		return err
	}
	return checkKnots(entity, "surface v", sf.VDegree, nv, sf.VKnots)
}

func checkKnots(entity, dir string, degree, numPoints int, knots []float32) error {
	want := numPoints + degree + 1
	if len(knots) != want {
		return fault.Newf(fault.InvalidNurbsDefinition, entity,
			"%s has %d knots; %d control points of degree %d require %d",
			dir, len(knots), numPoints, degree, want)
	}
	for i := 1; i < len(knots); i++ {
		if knots[i] < knots[i-1] {
			return fault.Newf(fault.InvalidNurbsDefinition, entity,
				"%s knot vector decreases at index %d", dir, i)
		}
	}
	return nil
}
