// Copyright (c) 2026, Solid Scene Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package entity

import (
	"testing"

	"cogentcore.org/core/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solidscene/solidscene/fault"
)

const curveJSON = `[{
	"primitive": "nurbs-curve",
	"id": "c1",
	"name": "spline",
	"degree": 3,
	"knots": [0, 0, 0, 0, 1, 1, 1, 1],
	"controlPoints": [[0,0,0], [1,3,0], [3,3,0], [4,0,0]],
	"weights": [1, 2, 2, 1]
}]`

func TestDecodeCurve(t *testing.T) {
	ents, err := Decode([]byte(curveJSON))
	require.NoError(t, err)
	require.Len(t, ents, 1)
	e := ents[0]
	assert.Equal(t, "c1", e.ID)
	assert.Equal(t, "spline", e.Key())

	cv, err := e.Curve()
	require.NoError(t, err)
	assert.Equal(t, 3, cv.Degree)
	require.Len(t, cv.Points, 4)
	assert.Equal(t, float32(3), cv.Points[1].Pos.Y)
	assert.Equal(t, float32(2), cv.Points[1].Weight)
}

func TestDecodeBadControlPoints(t *testing.T) {
	ents, err := Decode([]byte(`[{"primitive":"curve","degree":1,
		"knots":[0,0,1,1], "controlPoints":"oops"}]`))
	require.NoError(t, err)
	_, cerr := ents[0].Curve()
	require.Error(t, cerr)
	assert.Equal(t, fault.InvalidNurbsDefinition, fault.KindOf(cerr))
}

func TestSurfaceDecode(t *testing.T) {
	ents, err := Decode([]byte(`[{
		"primitive": "surface",
		"id": "s1",
		"uDegree": 1, "vDegree": 1,
		"uKnots": [0,0,1,1], "vKnots": [0,0,1,1],
		"controlPoints": [[[0,0,0],[0,1,0]], [[1,0,0],[1,1,1]]]
	}]`))
	require.NoError(t, err)
	sf, serr := ents[0].Surface()
	require.NoError(t, serr)
	assert.Equal(t, 2, sf.NumU())
	assert.Equal(t, 2, sf.NumV())
	assert.Equal(t, float32(1), sf.Grid[1][1].Pos.Z)
}

func TestKeyFallsBackToPrimitive(t *testing.T) {
	e := &Entity{Primitive: "curve"}
	assert.Equal(t, "curve", e.Key())
}

func TestMatrixDefaultsToIdentity(t *testing.T) {
	e := &Entity{}
	m := e.Matrix()
	p := math32.Vec3(1, 2, 3).MulMatrix4(&m)
	assert.Equal(t, math32.Vec3(1, 2, 3), p)
}

func TestMatrixRowMajor(t *testing.T) {
	e := &Entity{Transform: []float32{
		1, 0, 0, 5,
		0, 1, 0, 6,
		0, 0, 1, 7,
		0, 0, 0, 1,
	}}
	m := e.Matrix()
	p := math32.Vec3(0, 0, 0).MulMatrix4(&m)
	assert.Equal(t, math32.Vec3(5, 6, 7), p)
}

func TestNeedsRemoteTessellation(t *testing.T) {
	e := &Entity{BRep: []byte(`{"faces": []}`)}
	assert.True(t, e.NeedsRemoteTessellation())
	e.Faces = []byte(`{"vertices": [0,0,0]}`)
	assert.False(t, e.NeedsRemoteTessellation())
	assert.False(t, (&Entity{}).NeedsRemoteTessellation())
}

func TestAliasCanon(t *testing.T) {
	assert.Equal(t, "curve", DefaultAliases.Canon("NURBS-Curve"))
	assert.Equal(t, "solid", DefaultAliases.Canon("breps"))
	assert.Equal(t, "instance", DefaultAliases.Canon("block"))
	assert.Equal(t, "point", DefaultAliases.Canon("point"))
}

func TestFlattenExpandsPolycurve(t *testing.T) {
	src := []*Entity{{
		Primitive: "polycurve",
		Material:  "m1",
		Entities: []*Entity{
			{Primitive: "curve", ID: "a"},
			{Primitive: "arc", ID: "b", Material: "m2"},
		},
	}}
	fl, bad := Flatten(src, nil)
	assert.Empty(t, bad)
	// the container itself disappears
	require.Len(t, fl.Entities, 2)
	assert.Len(t, fl.Lines, 2)
	// children inherit the container material unless they override
	assert.Equal(t, "m1", fl.ByID["a"].Material)
	assert.Equal(t, "m2", fl.ByID["b"].Material)
}

func TestFlattenKeepsGeometryContainer(t *testing.T) {
	src := []*Entity{{
		Primitive: "geometry",
		ID:        "g",
		Entities: []*Entity{
			{Primitive: "point", ID: "p", Position: []float32{0, 0, 0}},
		},
	}}
	fl, bad := Flatten(src, nil)
	assert.Empty(t, bad)
	require.Len(t, fl.Nodes, 1)
	assert.Equal(t, []string{"p"}, fl.Nodes[0].ChildIDs)
	assert.NotNil(t, fl.ByID["p"])
}

func TestFlattenUnknownPrimitiveKeepsSiblings(t *testing.T) {
	src := []*Entity{
		{Primitive: "hologram", Name: "bad one"},
		{Primitive: "point", ID: "p", Position: []float32{1, 2, 3}},
	}
	fl, bad := Flatten(src, nil)
	require.Len(t, bad, 1)
	assert.Equal(t, fault.UnknownPrimitiveType, bad[0].Kind)
	assert.Equal(t, "bad one", bad[0].Entity)
	require.Len(t, fl.Points, 1)
	assert.Equal(t, "p", fl.Points[0].ID)
}

func TestFlattenSynthesizesIDs(t *testing.T) {
	fl, bad := Flatten([]*Entity{{Primitive: "point", Position: []float32{0, 0, 0}}}, nil)
	assert.Empty(t, bad)
	require.Len(t, fl.Points, 1)
	assert.NotEmpty(t, fl.Points[0].ID)
	assert.NotNil(t, fl.ByID[fl.Points[0].ID])
}

func TestClassify(t *testing.T) {
	assert.Equal(t, ClassLine, Classify("arc"))
	assert.Equal(t, ClassSolid, Classify("solid"))
	assert.Equal(t, ClassAnalytic, Classify("torus"))
	assert.Equal(t, ClassNode, Classify("camera"))
	assert.Equal(t, ClassUnknown, Classify("wormhole"))
}
