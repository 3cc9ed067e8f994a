// Copyright (c) 2026, Solid Scene Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scene

import (
	"context"
	"image/color"
	"sort"

	"cogentcore.org/core/base/logx"
	"cogentcore.org/core/colors"
	"golang.org/x/sync/errgroup"

	"github.com/solidscene/solidscene/entity"
	"github.com/solidscene/solidscene/fault"
	"github.com/solidscene/solidscene/mesh"
)

// Convert turns a declarative entity list into a renderable scene
// hierarchy. Invalid entities are recorded in the returned status and
// dropped; their siblings always survive. The error return is non-nil
// only for unexpected internal failures or context cancellation, never
// for per-entity geometry problems.
func Convert(ctx context.Context, entities []*entity.Entity, opts *Options) (*Node, *Status, error) {
	if opts == nil {
		opts = &Options{}
	}
	opts.Defaults()
	st := &Status{}

	list, bad := entity.Flatten(entities, opts.Aliases)
	for _, fe := range bad {
		st.AddError(fe.Entity, fe)
	}

	cc := newContext(list, opts, st)

	// validate and unit-normalize before any geometry building;
	// failures are memoized so references to the entity fail fast
	for _, e := range list.Entities {
		if err := opts.Validator.Validate(e); err != nil {
			// memoized failures surface in the status map through the
			// entity's own build goroutine below, exactly once
			fe := fault.Wrap(validationKind(e, err), e.Key(), err)
			cc.mu.Lock()
			cc.built[e.ID] = buildResult{err: fe}
			cc.mu.Unlock()
			continue
		}
		list.ByID[e.ID] = opts.Units.Convert(e)
	}

	cc.failInstanceCycles()

	g, gctx := errgroup.WithContext(ctx)
	for _, e := range list.Entities {
		g.Go(func() error {
			_, err := cc.node(gctx, e.ID)
			if err == nil {
				return nil
			}
			if fault.KindOf(err) == fault.Unexpected {
				return err
			}
			cc.addError(e.Key(), err)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, st, err
	}

	root := cc.link()
	cc.finalize(root)
	cc.resolvePending(ctx, root)
	if !st.IsEmpty() {
		logx.PrintlnWarn("scene: conversion finished with errors:", st.Summary())
	}
	return root, st, nil
}

// validationKind classifies a validator rejection. Errors the validator
// already classified keep their kind; unclassified rejections of
// NURBS-bearing entities read as definition errors, all others as
// degenerate input.
func validationKind(e *entity.Entity, err error) fault.Kind {
	if fe, ok := fault.As(err); ok {
		return fe.Kind
	}
	switch entity.Classify(e.Primitive) {
	case entity.ClassLine, entity.ClassSurface, entity.ClassSolid:
		return fault.InvalidNurbsDefinition
	}
	return fault.DegenerateGeometry
}

// failInstanceCycles pre-fails every instance whose target chain loops
// back on itself. Builds recurse only through instance targets, so
// rejecting these up front keeps concurrent builds free of mutual waits.
func (cc *ConversionContext) failInstanceCycles() {
	for _, e := range cc.list.Nodes {
		if e.Primitive != "instance" {
			continue
		}
		seen := map[string]bool{}
		cur := e
		for cur != nil && cur.Primitive == "instance" {
			if seen[cur.ID] {
				for id := range seen {
					fe := fault.Newf(fault.UnknownPrimitiveType, cc.list.ByID[id].Key(),
						"instance reference cycle through id %q", cur.ID)
					cc.mu.Lock()
					if _, done := cc.built[id]; !done {
						cc.built[id] = buildResult{err: fe}
					}
					cc.mu.Unlock()
				}
				break
			}
			seen[cur.ID] = true
			cur = cc.list.ByID[cur.Entity]
		}
	}
}

// link attaches built children to their container nodes in document
// order and collects every unclaimed, non-resource node under a fresh
// root group. Instance definitions are claimed by their instances and
// do not surface as roots on their own.
func (cc *ConversionContext) link() *Node {
	claimed := map[string]bool{}
	for _, e := range cc.list.Nodes {
		nd := cc.builtNode(e.ID)
		if nd == nil {
			continue
		}
		if e.Primitive == "instance" {
			claimed[e.Entity] = true
			continue
		}
		for _, cid := range childIDs(e) {
			kid := cc.builtNode(cid)
			if kid == nil {
				if !cc.buildFailed(cid) {
					cc.addStatus(e.Key(), "unresolved reference to id "+cid)
				}
				continue
			}
			nd.AddChild(kid)
			claimed[cid] = true
		}
	}

	root := NewNode(Group, "", "scene")
	for _, e := range cc.list.Entities {
		nd := cc.builtNode(e.ID)
		if nd == nil || claimed[e.ID] {
			continue
		}
		switch nd.Kind {
		case MaterialNode, TextureNode:
			// resources are referenced by id, never placed
			continue
		}
		root.AddChild(nd)
	}

	cc.applyLayerOverrides()
	return root
}

// childIDs returns the ordered child references of a container entity:
// layer elements, then group children, then expanded container children.
func childIDs(e *entity.Entity) []string {
	ids := make([]string, 0, len(e.Elements)+len(e.Children)+len(e.ChildIDs))
	ids = append(ids, e.Elements...)
	ids = append(ids, e.Children...)
	ids = append(ids, e.ChildIDs...)
	return ids
}

// applyLayerOverrides pushes a layer's color override down to member
// leaf geometry that declares no material of its own. Visibility needs
// no push: an invisible node hides its whole subtree.
func (cc *ConversionContext) applyLayerOverrides() {
	for _, e := range cc.list.Nodes {
		if e.Primitive != "layer" || e.Color == "" {
			continue
		}
		nd := cc.builtNode(e.ID)
		if nd == nil {
			continue
		}
		c, err := colors.FromString(e.Color)
		if err != nil {
			cc.addStatus(e.Key(), "bad layer color "+e.Color)
			continue
		}
		nd.WalkDown(func(kid *Node) bool {
			if kid.Mesh != nil && cc.matRefs[kid.ID] == "" {
				paintRGBA(kid.Mesh, c)
			}
			return true
		})
	}
}

// finalize resolves materials over the assembled hierarchy and then
// merges compatible leaf meshes to cut the draw-call count.
func (cc *ConversionContext) finalize(root *Node) {
	resolved := map[string]*Material{}
	cc.assignMaterials(root, nil, resolved)
	if !cc.opts.NoMerge {
		cc.mergePass(root)
	}
}

// assignMaterials walks the hierarchy assigning each leaf its effective
// material: the nearest ancestor's reference wins over the leaf's own.
// Resolution failures are recorded once per material id.
func (cc *ConversionContext) assignMaterials(nd *Node, inherited *Material, resolved map[string]*Material) {
	cur := inherited
	if ref := cc.matRefs[nd.ID]; ref != "" && cur == nil {
		cur = cc.resolveMaterial(ref, resolved)
	}
	if nd.Mesh != nil || nd.Kind == Leaf {
		mt := cur
		if mt == nil {
			mt = &Material{}
			mt.Defaults()
		}
		nd.Mat = mt
	}
	for _, kid := range nd.Children {
		cc.assignMaterials(kid, cur, resolved)
	}
}

func (cc *ConversionContext) resolveMaterial(id string, resolved map[string]*Material) *Material {
	if mt, ok := resolved[id]; ok {
		return mt
	}
	var mt *Material
	if e := cc.list.ByID[id]; e == nil {
		cc.addStatus(id, "unresolved material reference")
	} else if m, err := cc.opts.Materials(e); err != nil {
		cc.addError(e.Key(), err)
	} else {
		mt = m
	}
	resolved[id] = mt
	return mt
}

// mergePass groups mergeable triangle leaves by material signature and
// concatenates each group into its first member. Group membership is
// purely the signature; the signatures themselves are processed in
// sorted order so the pass is deterministic. A group whose buffers turn
// out incompatible is kept unmerged with a warning rather than failing
// the conversion.
func (cc *ConversionContext) mergePass(root *Node) {
	groups := map[string][]*Node{}
	root.WalkDown(func(nd *Node) bool {
		if !nd.Visible {
			return false
		}
		if nd.Mesh == nil || nd.Mesh.Kind != mesh.Triangles ||
			nd.NoMerge || nd.Pending || nd.Mat == nil {
			return true
		}
		sig := nd.Mat.Signature()
		groups[sig] = append(groups[sig], nd)
		return true
	})

	sigs := make([]string, 0, len(groups))
	for sig := range groups {
		sigs = append(sigs, sig)
	}
	sort.Strings(sigs)

	for _, sig := range sigs {
		nodes := groups[sig]
		if len(nodes) < 2 {
			continue
		}
		// color is excluded from the signature, so bake each
		// member's material color per vertex before concatenating
		needColor := false
		for _, nd := range nodes {
			if nd.Mesh.HasColors() || nd.Mat.Color != nodes[0].Mat.Color {
				needColor = true
				break
			}
		}
		meshes := make([]*mesh.Mesh, len(nodes))
		for i, nd := range nodes {
			if needColor && !nd.Mesh.HasColors() {
				paintRGBA(nd.Mesh, nd.Mat.Color)
			}
			nd.Mesh.Transform = nd.WorldMatrix()
			meshes[i] = nd.Mesh
		}
		merged, err := mesh.Merge(meshes)
		if err != nil {
			cc.addError(nodes[0].Name, err)
			logx.PrintlnWarn("scene: merge group kept separate:", err)
			continue
		}
		base := nodes[0]
		base.Mesh = merged
		for _, nd := range nodes[1:] {
			nd.Detach()
		}
	}
}

// paintRGBA fills the mesh's per-vertex color buffer from an 8-bit color.
func paintRGBA(ms *mesh.Mesh, c color.RGBA) {
	ms.PaintColor(float32(c.R)/255, float32(c.G)/255, float32(c.B)/255, float32(c.A)/255)
}

// resolvePending sends the pending solids to the remote tessellation
// service as one batch and splices the returned meshes into their
// placeholder leaves. Service failures land in the status map; the
// scene stays renderable without the solids.
func (cc *ConversionContext) resolvePending(ctx context.Context, root *Node) {
	var pending []*Node
	root.WalkDown(func(nd *Node) bool {
		if nd.Pending {
			pending = append(pending, nd)
		}
		return true
	})
	if len(pending) == 0 {
		return
	}
	if cc.opts.BRep == nil {
		cc.addStatus(BRepStatusKey, "no solid tessellation service configured")
		return
	}
	// instanced solids repeat an id; the batch carries each entity once
	seen := map[string]bool{}
	ents := make([]*entity.Entity, 0, len(pending))
	for _, nd := range pending {
		if seen[nd.ID] {
			continue
		}
		seen[nd.ID] = true
		if e := cc.list.ByID[nd.ID]; e != nil {
			ents = append(ents, e)
		}
	}
	res, err := cc.opts.BRep.Tessellate(ctx, ents)
	if err != nil {
		cc.addError(BRepStatusKey, err)
		return
	}
	for key, msg := range res.Errors {
		if key == "" {
			key = BRepStatusKey
		}
		cc.addStatus(key, msg)
	}
	for _, ms := range res.Meshes {
		ms.SynthesizeNormals(cc.opts.SmoothAngle)
	}
	taken := map[string]bool{}
	for _, nd := range pending {
		ms := res.Meshes[nd.ID]
		if ms == nil {
			continue
		}
		if taken[nd.ID] {
			ms = ms.Clone()
		}
		taken[nd.ID] = true
		nd.Mesh = ms
		nd.Pending = false
	}
}
