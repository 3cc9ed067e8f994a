// Copyright (c) 2026, Solid Scene Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package export

import (
	"strings"
	"testing"

	"cogentcore.org/core/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solidscene/solidscene/mesh"
	"github.com/solidscene/solidscene/scene"
)

func triangleLeaf(id string) *scene.Node {
	nd := scene.NewNode(scene.Leaf, id, id)
	ms := mesh.New(mesh.Triangles)
	ms.AddPos(math32.Vec3(0, 0, 0))
	ms.AddPos(math32.Vec3(1, 0, 0))
	ms.AddPos(math32.Vec3(0, 1, 0))
	ms.SynthesizeNormals(mesh.DefaultSmoothAngle)
	nd.Mesh = ms
	return nd
}

func TestOBJTriangle(t *testing.T) {
	root := scene.NewNode(scene.Group, "", "scene")
	root.AddChild(triangleLeaf("tri"))

	var sb strings.Builder
	require.NoError(t, OBJ(&sb, root))
	out := sb.String()

	assert.Contains(t, out, "o tri\n")
	assert.Contains(t, out, "v 0 0 0\n")
	assert.Contains(t, out, "v 1 0 0\n")
	assert.Contains(t, out, "vn 0 0 1\n")
	assert.Contains(t, out, "f 1//1 2//2 3//3\n")
}

func TestOBJLineAndPoint(t *testing.T) {
	root := scene.NewNode(scene.Group, "", "scene")

	p := scene.NewNode(scene.Leaf, "pt", "pt")
	pm := mesh.New(mesh.Points)
	pm.AddPos(math32.Vec3(5, 5, 5))
	p.Mesh = pm
	root.AddChild(p)

	l := scene.NewNode(scene.Leaf, "ln", "ln")
	lm := mesh.New(mesh.Lines)
	lm.AddPos(math32.Vec3(0, 0, 0))
	lm.AddPos(math32.Vec3(1, 0, 0))
	lm.Index = append(lm.Index, 0, 1)
	l.Mesh = lm
	root.AddChild(l)

	var sb strings.Builder
	require.NoError(t, OBJ(&sb, root))
	out := sb.String()

	assert.Contains(t, out, "p 1\n")
	// line indices continue after the point's vertex
	assert.Contains(t, out, "l 2 3\n")
}

func TestOBJSkipsInvisible(t *testing.T) {
	root := scene.NewNode(scene.Group, "", "scene")
	hidden := triangleLeaf("ghost")
	hidden.Visible = false
	root.AddChild(hidden)

	var sb strings.Builder
	require.NoError(t, OBJ(&sb, root))
	assert.NotContains(t, sb.String(), "ghost")
}
