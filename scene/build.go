// Copyright (c) 2026, Solid Scene Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scene

import (
	"context"

	"cogentcore.org/core/math32"
	jsoniter "github.com/json-iterator/go"

	"github.com/solidscene/solidscene/entity"
	"github.com/solidscene/solidscene/fault"
	"github.com/solidscene/solidscene/mesh"
	"github.com/solidscene/solidscene/nurbs"
)

var jsonCfg = jsoniter.ConfigCompatibleWithStandardLibrary

// buildEntity constructs the scene node for one entity, dispatching on
// its class. Geometry leaves call into the tessellation components;
// containers and resources are built directly.
func (cc *ConversionContext) buildEntity(ctx context.Context, e *entity.Entity, trail map[string]bool) (*Node, error) {
	switch entity.Classify(e.Primitive) {
	case entity.ClassPoint:
		return cc.buildPoint(e)
	case entity.ClassLine:
		return cc.buildLine(e)
	case entity.ClassSurface:
		return cc.buildSurface(e)
	case entity.ClassSolid:
		return cc.buildSolid(e)
	case entity.ClassAnalytic:
		return cc.buildAnalytic(e)
	case entity.ClassNode:
		return cc.buildNode(ctx, e, trail)
	}
	return nil, fault.Newf(fault.UnknownPrimitiveType, e.Key(),
		"unknown primitive type %q", e.Primitive)
}

// newLeaf wraps a mesh in a leaf node carrying the entity's transform
// and material reference.
func (cc *ConversionContext) newLeaf(e *entity.Entity, ms *mesh.Mesh) *Node {
	nd := NewNode(Leaf, e.ID, e.Name)
	nd.Pose = e.Matrix()
	nd.Mesh = ms
	if e.Material != "" {
		cc.mu.Lock()
		cc.matRefs[e.ID] = e.Material
		cc.mu.Unlock()
	}
	return nd
}

func (cc *ConversionContext) buildPoint(e *entity.Entity) (*Node, error) {
	pos, ok := entity.Vec3At(e.Position)
	if !ok {
		return nil, fault.Newf(fault.DegenerateGeometry, e.Key(),
			"point has %d coordinates; expected 3", len(e.Position))
	}
	ms := mesh.New(mesh.Points)
	ms.Name = e.ID
	ms.AddPos(pos)
	ms.UpdateBBox()
	return cc.newLeaf(e, ms), nil
}

// buildLine produces polyline geometry for curves, arcs, and explicit
// polylines.
func (cc *ConversionContext) buildLine(e *entity.Entity) (*Node, error) {
	var pts []math32.Vector3
	switch e.Primitive {
	case "curve":
		cv, err := e.Curve()
		if err != nil {
			return nil, err
		}
		pts, err = nurbs.TessellateCurve(cv, &cc.opts.Tess, e.Key())
		if err != nil {
			return nil, err
		}
	case "arc":
		start, ok1 := entity.Vec3At(e.Start)
		middle, ok2 := entity.Vec3At(e.Middle)
		end, ok3 := entity.Vec3At(e.End)
		if !ok1 || !ok2 || !ok3 {
			return nil, fault.New(fault.DegenerateGeometry, e.Key(),
				"arc needs start, middle, and end points")
		}
		pts = nurbs.TessellateArc(start, middle, end, &cc.opts.Tess)
	case "polyline":
		for i, p := range e.Vertices {
			v, ok := entity.Vec3At(p)
			if !ok {
				return nil, fault.Newf(fault.DegenerateGeometry, e.Key(),
					"polyline vertex %d has %d coordinates; expected 3", i, len(p))
			}
			pts = append(pts, v)
		}
	}
	if len(pts) < 2 {
		return nil, fault.Newf(fault.DegenerateGeometry, e.Key(),
			"%s produced %d points; need at least 2", e.Primitive, len(pts))
	}
	ms := mesh.New(mesh.Lines)
	ms.Name = e.ID
	for _, p := range pts {
		ms.AddPos(p)
	}
	for i := 0; i < len(pts)-1; i++ {
		ms.Index = append(ms.Index, uint32(i), uint32(i+1))
	}
	ms.UpdateBBox()
	return cc.newLeaf(e, ms), nil
}

func (cc *ConversionContext) buildSurface(e *entity.Entity) (*Node, error) {
	sf, err := e.Surface()
	if err != nil {
		return nil, err
	}
	ms, err := nurbs.TessellateSurface(sf, &cc.opts.Tess, e.Key())
	if err != nil {
		return nil, err
	}
	ms.SynthesizeNormals(cc.opts.SmoothAngle)
	return cc.newLeaf(e, ms), nil
}

// buildSolid uses inline face data when present; otherwise the leaf is
// marked pending and its triangles arrive from the remote tessellation
// service after assembly.
func (cc *ConversionContext) buildSolid(e *entity.Entity) (*Node, error) {
	if e.NeedsRemoteTessellation() {
		nd := cc.newLeaf(e, nil)
		nd.Pending = true
		return nd, nil
	}
	ms, err := decodeInlineFaces(e)
	if err != nil {
		return nil, err
	}
	ms.SynthesizeNormals(cc.opts.SmoothAngle)
	return cc.newLeaf(e, ms), nil
}

func (cc *ConversionContext) buildAnalytic(e *entity.Entity) (*Node, error) {
	if cc.opts.Primitives == nil {
		return nil, fault.Newf(fault.UnknownPrimitiveType, e.Key(),
			"no analytic primitive builder configured for %q", e.Primitive)
	}
	ms, err := cc.opts.Primitives(e.Primitive, e)
	if err != nil {
		return nil, err
	}
	if ms.Kind == mesh.Triangles && !ms.HasNormals() {
		ms.SynthesizeNormals(cc.opts.SmoothAngle)
	}
	return cc.newLeaf(e, ms), nil
}

// buildNode constructs container and resource nodes. Instances build
// their referenced entity first and take an independent copy of its
// geometry.
func (cc *ConversionContext) buildNode(ctx context.Context, e *entity.Entity, trail map[string]bool) (*Node, error) {
	var kind NodeKind
	switch e.Primitive {
	case "layer":
		kind = Layer
	case "group":
		kind = Group
	case "instance":
		kind = Instance
	case "geometry":
		kind = Container
	case "material":
		kind = MaterialNode
	case "texture":
		kind = TextureNode
	case "camera":
		kind = CameraNode
	}
	nd := NewNode(kind, e.ID, e.Name)
	nd.Pose = e.Matrix()
	if e.Visible != nil {
		nd.Visible = *e.Visible
	}
	if e.Material != "" {
		cc.mu.Lock()
		cc.matRefs[e.ID] = e.Material
		cc.mu.Unlock()
	}
	switch kind {
	case CameraNode:
		nd.Camera = &Camera{Fov: e.Fov, Near: e.Near, Far: e.Far}
	case TextureNode:
		nd.Texture = &Texture{URL: e.URL}
	case Instance:
		if e.Entity == "" {
			return nil, fault.New(fault.UnknownPrimitiveType, e.Key(),
				"instance references no entity")
		}
		target, err := cc.nodeRec(ctx, e.Entity, trail)
		if err != nil {
			return nil, fault.Newf(fault.UnknownPrimitiveType, e.Key(),
				"instance target %q failed to build", e.Entity)
		}
		nd.AddChild(instanceCopy(target))
	}
	return nd, nil
}

// instanceCopy returns an independent copy of the subtree for use under
// an instance: mesh leaves get their own deep-copied geometry because
// no scene node may have two parents, while non-mesh leaves (cameras,
// textures) are reparented directly without copying.
func instanceCopy(src *Node) *Node {
	switch src.Kind {
	case CameraNode, TextureNode:
		return src
	}
	nd := NewNode(src.Kind, src.ID, src.Name)
	nd.Pose = src.Pose
	nd.Visible = src.Visible
	nd.Mat = src.Mat
	nd.NoMerge = src.NoMerge
	nd.Pending = src.Pending
	if src.Mesh != nil {
		nd.Mesh = src.Mesh.Clone()
	}
	for _, kid := range src.Children {
		nd.AddChild(instanceCopy(kid))
	}
	return nd
}

// decodeInlineFaces parses pre-tessellated face data carried inline on
// a solid entity.
func decodeInlineFaces(e *entity.Entity) (*mesh.Mesh, error) {
	var fb struct {
		Vertices []float32 `json:"vertices"`
		Faces    []uint32  `json:"faces"`
		Normals  []float32 `json:"normals,omitempty"`
	}
	if err := jsonCfg.Unmarshal(e.Faces, &fb); err != nil {
		return nil, fault.Wrap(fault.DegenerateGeometry, e.Key(), err)
	}
	if len(fb.Vertices) == 0 || len(fb.Vertices)%3 != 0 {
		return nil, fault.Newf(fault.DegenerateGeometry, e.Key(),
			"solid face data has %d vertex floats; expected a positive multiple of 3", len(fb.Vertices))
	}
	ms := mesh.New(mesh.Triangles)
	ms.Name = e.ID
	ms.Vertex = fb.Vertices
	ms.Index = fb.Faces
	ms.Normal = fb.Normals
	ms.UpdateBBox()
	return ms, nil
}
