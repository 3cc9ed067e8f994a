// Copyright (c) 2026, Solid Scene Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nurbs

import (
	"cogentcore.org/core/math32"
)

// TessellateArc samples the circular arc through the three given points
// into a polyline. Degenerate input (collinear or coincident points
// within tolerance) falls back to the straight 2-segment
// polyline through the given points rather than failing.
func TessellateArc(start, middle, end math32.Vector3, opts *Options) []math32.Vector3 {
	var o Options
	if opts != nil {
		o = *opts
	}
	o.Defaults()

	v1 := middle.Sub(start)
	v2 := end.Sub(start)
	cross := v1.Cross(v2)
	cl2 := cross.LengthSquared()
	if cl2 < CoincideTol*CoincideTol {
		return []math32.Vector3{start, middle, end}
	}

	// circumcenter of the three points
	d := v2.MulScalar(v1.LengthSquared()).Sub(v1.MulScalar(v2.LengthSquared()))
	center := start.Add(d.Cross(cross).DivScalar(2 * cl2))
	radius := start.DistanceTo(center)

	// in-plane basis with e1 at the start point
	e1 := start.Sub(center).DivScalar(radius)
	w := cross.Normal()
	e2 := w.Cross(e1)

	angleOf := func(p math32.Vector3) float32 {
		r := p.Sub(center)
		a := math32.Atan2(r.Dot(e2), r.Dot(e1))
		if a < 0 {
			a += 2 * math32.Pi
		}
		return a
	}
	aMid := angleOf(middle)
	aEnd := angleOf(end)
	if aMid > aEnd { // middle not on the ccw path: sweep the other way
		aEnd -= 2 * math32.Pi
	}

	segs := max(int(math32.Ceil(math32.Abs(aEnd)/(2*math32.Pi)*32*o.Quality)), 2)
	pts := make([]math32.Vector3, segs+1)
	for i := 0; i <= segs; i++ {
		a := aEnd * float32(i) / float32(segs)
		pts[i] = center.Add(e1.MulScalar(radius * math32.Cos(a))).Add(e2.MulScalar(radius * math32.Sin(a)))
	}
	return pts
}
