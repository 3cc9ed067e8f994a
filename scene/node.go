// Copyright (c) 2026, Solid Scene Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package scene assembles the renderable node hierarchy from a flattened
// entity list: it resolves id references, builds each node exactly once
// per conversion, links parents to children, resolves materials, merges
// compatible meshes, and coordinates the batched asynchronous round trip
// to the external solid-tessellation service.
package scene

import (
	"slices"

	"cogentcore.org/core/math32"

	"github.com/solidscene/solidscene/mesh"
)

// NodeKind is the variant tag of a scene node.
type NodeKind int32

const (
	// Leaf is a geometry-carrying node: a point cloud, polyline,
	// surface mesh, or tessellated solid.
	Leaf NodeKind = iota

	// Layer collects elements with shared visibility and color
	// overrides.
	Layer

	// Group collects children under a shared local transform.
	Group

	// Instance places an independent copy of another node's geometry
	// under its own transform.
	Instance

	// Container is a generic geometry container linking its expanded
	// children.
	Container

	// MaterialNode is a material definition; it carries no geometry
	// and is referenced by id from other nodes.
	MaterialNode

	// TextureNode is a texture resource definition.
	TextureNode

	// CameraNode is a camera; reparented directly by instances,
	// never copied.
	CameraNode
)

var nodeKindNames = []string{"Leaf", "Layer", "Group", "Instance",
	"Container", "Material", "Texture", "Camera"}

func (k NodeKind) String() string {
	if k < 0 || int(k) >= len(nodeKindNames) {
		return "Invalid"
	}
	return nodeKindNames[k]
}

// Node is one addressable element of the output hierarchy. A node has
// at most one parent; instances therefore carry independent copies of
// the geometry they reference.
type Node struct {
	// Name is the display name, falling back to the entity id.
	Name string

	// ID is the entity id this node was built from, unique within
	// one conversion.
	ID string

	// Kind is the node variant.
	Kind NodeKind

	// Pose is the local transform relative to the parent.
	Pose math32.Matrix4

	// Visible is whether the node (and its subtree) renders.
	Visible bool

	// Mesh is the geometry payload of a [Leaf] node.
	Mesh *mesh.Mesh

	// Mat is the resolved material applied to this node's leaf
	// geometry, overriding descendant materials.
	Mat *Material

	// Camera is the camera payload of a [CameraNode].
	Camera *Camera

	// Texture is the texture payload of a [TextureNode].
	Texture *Texture

	// Pending marks a solid leaf awaiting remote tessellation.
	Pending bool

	// NoMerge excludes this node's leaf geometry from mesh merging,
	// keeping it individually pickable.
	NoMerge bool

	Parent   *Node
	Children []*Node
}

// NewNode returns a new node of the given kind with identity transform.
func NewNode(kind NodeKind, id, name string) *Node {
	nd := &Node{Kind: kind, ID: id, Name: name, Visible: true}
	if nd.Name == "" {
		nd.Name = id
	}
	nd.Pose.SetIdentity()
	return nd
}

// AddChild appends the child to this node, detaching it from any
// previous parent first: no node may have two parents.
func (nd *Node) AddChild(kid *Node) {
	if kid == nil {
		return
	}
	kid.Detach()
	kid.Parent = nd
	nd.Children = append(nd.Children, kid)
}

// Detach removes the node from its parent, if any.
func (nd *Node) Detach() {
	if nd.Parent == nil {
		return
	}
	i := slices.Index(nd.Parent.Children, nd)
	if i >= 0 {
		nd.Parent.Children = slices.Delete(nd.Parent.Children, i, i+1)
	}
	nd.Parent = nil
}

// WalkDown calls fn on this node and then its children, depth first,
// in child order. If fn returns false the subtree below that node
// is not visited.
func (nd *Node) WalkDown(fn func(*Node) bool) {
	if !fn(nd) {
		return
	}
	for _, kid := range nd.Children {
		kid.WalkDown(fn)
	}
}

// WorldMatrix returns the composed transform from the root down to
// this node.
func (nd *Node) WorldMatrix() math32.Matrix4 {
	if nd.Parent == nil {
		return nd.Pose
	}
	par := nd.Parent.WorldMatrix()
	var m math32.Matrix4
	m.MulMatrices(&par, &nd.Pose)
	return m
}

// Camera is the camera payload: perspective parameters only, pass-through
// for the viewer.
type Camera struct {
	Fov  float32
	Near float32
	Far  float32
}

// Texture is a texture resource reference; image loading is the
// viewer's concern.
type Texture struct {
	URL string
}
