// Copyright (c) 2026, Solid Scene Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nurbs

import (
	"cogentcore.org/core/math32"
)

// Evaluation works in homogeneous coordinates (x·w, y·w, z·w, w) and
// projects back to 3-space by dividing by w. Basis functions follow
// The NURBS Book (Piegl & Tiller), algorithms A2.1 / A2.2.

// knotSpan returns the knot span index containing parameter t, for a
// B-spline with n = numPoints-1 and the given degree.
func knotSpan(n, degree int, t float32, knots []float32) int {
	if t >= knots[n+1] { // clamp at the top of the domain
		return n
	}
	if t <= knots[degree] {
		return degree
	}
	lo, hi := degree, n+1
	mid := (lo + hi) / 2
	for t < knots[mid] || t >= knots[mid+1] {
		if t < knots[mid] {
			hi = mid
		} else {
			lo = mid
		}
		mid = (lo + hi) / 2
	}
	return mid
}

// basisFuncs computes the degree+1 non-vanishing basis function values
// at parameter t in the given knot span. The scratch slices avoid
// per-sample allocation in the tessellation hot loop; pass nil to let
// the function allocate.
func basisFuncs(span int, t float32, degree int, knots []float32, scratch []float32) []float32 {
	n := degree + 1
	if cap(scratch) < 3*n {
		scratch = make([]float32, 3*n)
	}
	out := scratch[:n]
	left := scratch[n : 2*n]
	right := scratch[2*n : 3*n]

	out[0] = 1
	for j := 1; j <= degree; j++ {
		left[j] = t - knots[span+1-j]
		right[j] = knots[span+j] - t
		var saved float32
		for r := 0; r < j; r++ {
			d := right[r+1] + left[j-r]
			var temp float32
			if d != 0 {
				temp = out[r] / d
			}
			out[r] = saved + right[r+1]*temp
			saved = left[j-r] * temp
		}
		out[j] = saved
	}
	return out
}

// rawDomain returns the usable knot domain of a direction. For closed
// curves / surfaces the bounds are pulled inward by degree knots, to
// avoid extrapolation artifacts outside the renderable domain.
func rawDomain(knots []float32, degree int, closed bool) (lo, hi float32) {
	iMin, iMax := 0, len(knots)-1
	if closed {
		iMin += degree
		iMax -= degree
	}
	return knots[iMin], knots[iMax]
}

// pointAt evaluates the curve at a raw knot-domain parameter.
func (cv *Curve) pointAt(t float32, scratch []float32) math32.Vector3 {
	n := len(cv.Points) - 1
	span := knotSpan(n, cv.Degree, t, cv.Knots)
	bv := basisFuncs(span, t, cv.Degree, cv.Knots, scratch)
	var hw math32.Vector4
	for k := 0; k <= cv.Degree; k++ {
		cp := cv.Points[span-cv.Degree+k]
		w := cp.W() * bv[k]
		hw.X += cp.Pos.X * w
		hw.Y += cp.Pos.Y * w
		hw.Z += cp.Pos.Z * w
		hw.W += w
	}
	if hw.W != 1 {
		return math32.Vec3(hw.X/hw.W, hw.Y/hw.W, hw.Z/hw.W)
	}
	return math32.Vec3(hw.X, hw.Y, hw.Z)
}

// wraps reports whether the last degree entries of the point sequence
// repeat the first degree entries, the layout of a periodic spline.
func wraps(at func(int) math32.Vector3, n, degree int) bool {
	if n <= degree {
		return false
	}
	for k := range degree {
		if at(k).DistanceTo(at(n-degree+k)) >= CoincideTol {
			return false
		}
	}
	return true
}

// IsClosed reports whether the curve is closed: either its control
// points wrap periodically by degree, or its evaluated endpoints
// coincide within [CoincideTol].
func (cv *Curve) IsClosed() bool {
	if wraps(func(i int) math32.Vector3 { return cv.Points[i].Pos }, len(cv.Points), cv.Degree) {
		return true
	}
	lo, hi := rawDomain(cv.Knots, cv.Degree, false)
	return cv.pointAt(lo, nil).DistanceTo(cv.pointAt(hi, nil)) < CoincideTol
}

// Point evaluates the curve at normalized parameter u in [0, 1],
// remapped to the curve's knot domain.
func (cv *Curve) Point(u float32) math32.Vector3 {
	lo, hi := rawDomain(cv.Knots, cv.Degree, cv.IsClosed())
	return cv.pointAt(lo+u*(hi-lo), nil)
}

// Tangent returns the unit first-derivative direction at normalized
// parameter u, used to orient geometry along the curve.
func (cv *Curve) Tangent(u float32) math32.Vector3 {
	const h = 1e-3
	u0 := max(u-h, 0)
	u1 := min(u+h, 1)
	return cv.Point(u1).Sub(cv.Point(u0)).Normal()
}

// pointAt evaluates the surface at raw knot-domain parameters.
func (sf *Surface) pointAt(tu, tv float32, scratchU, scratchV []float32) math32.Vector3 {
	nu := sf.NumU() - 1
	nv := sf.NumV() - 1
	spanU := knotSpan(nu, sf.UDegree, tu, sf.UKnots)
	spanV := knotSpan(nv, sf.VDegree, tv, sf.VKnots)
	bu := basisFuncs(spanU, tu, sf.UDegree, sf.UKnots, scratchU)
	bv := basisFuncs(spanV, tv, sf.VDegree, sf.VKnots, scratchV)

	var hw math32.Vector4
	for j := 0; j <= sf.VDegree; j++ {
		vind := spanV - sf.VDegree + j
		for i := 0; i <= sf.UDegree; i++ {
			cp := sf.Grid[spanU-sf.UDegree+i][vind]
			w := cp.W() * bu[i] * bv[j]
			hw.X += cp.Pos.X * w
			hw.Y += cp.Pos.Y * w
			hw.Z += cp.Pos.Z * w
			hw.W += w
		}
	}
	if hw.W != 1 {
		return math32.Vec3(hw.X/hw.W, hw.Y/hw.W, hw.Z/hw.W)
	}
	return math32.Vec3(hw.X, hw.Y, hw.Z)
}

// IsClosedU reports whether the surface is closed in the u direction:
// either every grid column wraps periodically by the u degree, or the
// evaluated u-boundary rows coincide within [CoincideTol].
func (sf *Surface) IsClosedU() bool {
	nu := sf.NumU()
	closed := true
	for j := range sf.NumV() {
		if !wraps(func(i int) math32.Vector3 { return sf.Grid[i][j].Pos }, nu, sf.UDegree) {
			closed = false
			break
		}
	}
	if closed {
		return true
	}
	uLo, uHi := rawDomain(sf.UKnots, sf.UDegree, false)
	vLo, vHi := rawDomain(sf.VKnots, sf.VDegree, false)
	for _, f := range []float32{0, 0.5, 1} {
		tv := vLo + f*(vHi-vLo)
		if sf.pointAt(uLo, tv, nil, nil).DistanceTo(sf.pointAt(uHi, tv, nil, nil)) >= CoincideTol {
			return false
		}
	}
	return true
}

// IsClosedV reports whether the surface is closed in the v direction:
// either every grid row wraps periodically by the v degree, or the
// evaluated v-boundary rows coincide within [CoincideTol].
func (sf *Surface) IsClosedV() bool {
	nv := sf.NumV()
	closed := true
	for i := range sf.NumU() {
		if !wraps(func(j int) math32.Vector3 { return sf.Grid[i][j].Pos }, nv, sf.VDegree) {
			closed = false
			break
		}
	}
	if closed {
		return true
	}
	uLo, uHi := rawDomain(sf.UKnots, sf.UDegree, false)
	vLo, vHi := rawDomain(sf.VKnots, sf.VDegree, false)
	for _, f := range []float32{0, 0.5, 1} {
		tu := uLo + f*(uHi-uLo)
		if sf.pointAt(tu, vLo, nil, nil).DistanceTo(sf.pointAt(tu, vHi, nil, nil)) >= CoincideTol {
			return false
		}
	}
	return true
}

// Point evaluates the surface at normalized parameters u, v in [0, 1],
// each remapped to the corresponding knot domain.
func (sf *Surface) Point(u, v float32) math32.Vector3 {
	uLo, uHi := rawDomain(sf.UKnots, sf.UDegree, sf.IsClosedU())
	vLo, vHi := rawDomain(sf.VKnots, sf.VDegree, sf.IsClosedV())
	return sf.pointAt(uLo+u*(uHi-uLo), vLo+v*(vHi-vLo), nil, nil)
}
