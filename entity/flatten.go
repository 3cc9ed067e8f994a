// Copyright (c) 2026, Solid Scene Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package entity

import (
	"strings"

	"github.com/google/uuid"

	"github.com/solidscene/solidscene/fault"
)

// Aliases remaps legacy primitive names to their canonical form.
// It is an explicit configuration value threaded through the flatten
// step, not module-level state.
type Aliases map[string]string

// DefaultAliases covers the legacy primitive names still found in
// older documents.
var DefaultAliases = Aliases{
	"nurbs-curve":   "curve",
	"nurbscurve":    "curve",
	"nurbs-surface": "surface",
	"nurbssurface":  "surface",
	"breps":         "solid",
	"brep":          "solid",
	"line":          "polyline",
	"block":         "instance",
	"blockdef":      "group",
}

// Canon returns the canonical lower-case primitive name.
func (a Aliases) Canon(primitive string) string {
	p := strings.ToLower(primitive)
	if c, ok := a[p]; ok {
		return c
	}
	return p
}

// Class buckets canonical primitives by the pipeline path that
// handles them.
type Class int32

const (
	// ClassUnknown is an unrecognized primitive.
	ClassUnknown Class = iota

	// ClassPoint renders as point geometry.
	ClassPoint

	// ClassLine renders as polyline geometry: curves, arcs, polylines.
	ClassLine

	// ClassSurface renders as triangulated surface geometry.
	ClassSurface

	// ClassSolid is a boundary representation, tessellated remotely
	// when no face data is provided inline.
	ClassSolid

	// ClassAnalytic is a closed-form shape (sphere, box, cylinder,
	// plane, cone, torus) built by the external primitive constructor.
	ClassAnalytic

	// ClassNode is a scene container or resource: layer, group,
	// instance, geometry container, material, texture, camera.
	ClassNode
)

var classNames = []string{"Unknown", "Point", "Line", "Surface", "Solid", "Analytic", "Node"}

func (c Class) String() string {
	if c < 0 || int(c) >= len(classNames) {
		return "Invalid"
	}
	return classNames[c]
}

// Classify returns the pipeline class of a canonical primitive name.
func Classify(canon string) Class {
	switch canon {
	case "point":
		return ClassPoint
	case "curve", "arc", "polyline":
		return ClassLine
	case "surface":
		return ClassSurface
	case "solid":
		return ClassSolid
	case "sphere", "box", "cylinder", "plane", "cone", "torus":
		return ClassAnalytic
	case "layer", "group", "instance", "geometry", "material", "texture", "camera":
		return ClassNode
	}
	return ClassUnknown
}

// List is the flattened, bucketed entity list for one conversion.
type List struct {
	// Entities is the ordered flat list after container expansion.
	Entities []*Entity

	// ByID maps every recorded id to its entity.
	ByID map[string]*Entity

	// class buckets, in flattened order
	Points    []*Entity
	Lines     []*Entity
	Surfaces  []*Entity
	Solids    []*Entity
	Analytics []*Entity
	Nodes     []*Entity
}

// Flatten recursively expands nested containers (polycurve into curves,
// polysurface into surfaces, geometry containers into their children)
// into one ordered entity list, recording each entity's id (synthesizing
// one when absent) and bucketing by class. Unknown primitives yield a
// [fault.UnknownPrimitiveType] error per entity via the returned bad
// list; flattening itself continues so that siblings survive.
func Flatten(src []*Entity, aliases Aliases) (*List, []*fault.Error) {
	if aliases == nil {
		aliases = DefaultAliases
	}
	fl := &List{ByID: map[string]*Entity{}}
	var bad []*fault.Error
	for _, e := range src {
		fl.add(e, aliases, &bad)
	}
	return fl, bad
}

func (fl *List) add(e *Entity, aliases Aliases, bad *[]*fault.Error) {
	if e == nil {
		return
	}
	canon := aliases.Canon(e.Primitive)
	switch canon {
	case "polycurve", "polysurface":
		// pure expansion: the container disappears, children inherit
		// its material reference when they have none of their own
		for _, kid := range e.Entities {
			if kid != nil && kid.Material == "" {
				kid.Material = e.Material
			}
			fl.add(kid, aliases, bad)
		}
		return
	}
	e.Primitive = canon
	class := Classify(canon)
	if class == ClassUnknown {
		*bad = append(*bad, fault.Newf(fault.UnknownPrimitiveType, e.Key(),
			"unknown primitive type %q", canon))
		return
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if canon == "geometry" {
		// geometry containers stay in the graph as nodes linking
		// their expanded children
		for _, kid := range e.Entities {
			if kid == nil {
				continue
			}
			fl.add(kid, aliases, bad)
			if kid.ID != "" {
				e.ChildIDs = append(e.ChildIDs, kid.ID)
			}
		}
		e.Entities = nil
	}
	fl.record(e, class)
}

func (fl *List) record(e *Entity, class Class) {
	fl.Entities = append(fl.Entities, e)
	fl.ByID[e.ID] = e
	switch class {
	case ClassPoint:
		fl.Points = append(fl.Points, e)
	case ClassLine:
		fl.Lines = append(fl.Lines, e)
	case ClassSurface:
		fl.Surfaces = append(fl.Surfaces, e)
	case ClassSolid:
		fl.Solids = append(fl.Solids, e)
	case ClassAnalytic:
		fl.Analytics = append(fl.Analytics, e)
	case ClassNode:
		fl.Nodes = append(fl.Nodes, e)
	}
}
