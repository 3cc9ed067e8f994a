// Copyright (c) 2026, Solid Scene Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package brep

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"math"

	"cogentcore.org/core/math32"
	jsoniter "github.com/json-iterator/go"

	"github.com/solidscene/solidscene/mesh"
)

// meshBlob is the JSON mesh form of one tessellation result.
type meshBlob struct {
	Vertices []float32 `json:"vertices"`
	Faces    []uint32  `json:"faces"`
	Normals  []float32 `json:"normals,omitempty"`
	Colors   []float32 `json:"colors,omitempty"`
	UVs      []float32 `json:"uvs,omitempty"`
}

// decodeBlob turns one labeled result value into a triangle mesh.
// The service returns either a JSON mesh object or a base64-encoded
// binary STL string.
func decodeBlob(blob jsoniter.RawMessage) (*mesh.Mesh, error) {
	trimmed := bytes.TrimSpace(blob)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty tessellation result")
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return nil, err
		}
		raw, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("tessellation result is not valid base64: %w", err)
		}
		return decodeBinarySTL(raw)
	}
	var mb meshBlob
	if err := json.Unmarshal(trimmed, &mb); err != nil {
		return nil, err
	}
	if len(mb.Vertices) == 0 || len(mb.Vertices)%3 != 0 {
		return nil, fmt.Errorf("tessellation result has %d vertex floats; expected a positive multiple of 3", len(mb.Vertices))
	}
	ms := mesh.New(mesh.Triangles)
	ms.Vertex = mb.Vertices
	ms.Index = mb.Faces
	ms.Normal = mb.Normals
	ms.Color = mb.Colors
	ms.TexCoord = mb.UVs
	ms.UpdateBBox()
	return ms, nil
}

// stlTriangleSize is the byte size of one binary STL triangle record:
// normal + 3 vertices as float32 triples, plus the attribute count.
const stlTriangleSize = 12*4 + 2

// decodeBinarySTL parses a binary STL blob into a triangle mesh with
// per-face-vertex normals taken from the facet records.
func decodeBinarySTL(raw []byte) (*mesh.Mesh, error) {
	if len(raw) < 84 {
		return nil, fmt.Errorf("STL blob of %d bytes is too short", len(raw))
	}
	count := binary.LittleEndian.Uint32(raw[80:84])
	want := 84 + int(count)*stlTriangleSize
	if len(raw) < want {
		return nil, fmt.Errorf("STL blob truncated: %d triangles need %d bytes; have %d", count, want, len(raw))
	}
	ms := mesh.New(mesh.Triangles)
	ms.Vertex = make(math32.ArrayF32, 0, 9*count)
	ms.Normal = make(math32.ArrayF32, 0, 9*count)
	off := 84
	f32 := func(o int) float32 {
		return math.Float32frombits(binary.LittleEndian.Uint32(raw[o : o+4]))
	}
	for t := 0; t < int(count); t++ {
		nx, ny, nz := f32(off), f32(off+4), f32(off+8)
		for v := 0; v < 3; v++ {
			vo := off + 12 + v*12
			ms.Vertex = append(ms.Vertex, f32(vo), f32(vo+4), f32(vo+8))
			ms.Normal = append(ms.Normal, nx, ny, nz)
		}
		off += stlTriangleSize
	}
	ms.UpdateBBox()
	return ms, nil
}
