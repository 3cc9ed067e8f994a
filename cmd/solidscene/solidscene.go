// Copyright (c) 2026, Solid Scene Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command solidscene converts a declarative JSON geometry file into a
// scene hierarchy and exports the resulting meshes as Wavefront OBJ.
package main

import (
	"context"
	"fmt"
	"os"

	"cogentcore.org/core/base/logx"
	"cogentcore.org/core/cli"

	"github.com/solidscene/solidscene/brep"
	"github.com/solidscene/solidscene/entity"
	"github.com/solidscene/solidscene/export"
	"github.com/solidscene/solidscene/nurbs"
	"github.com/solidscene/solidscene/scene"
)

// Config holds the conversion settings.
type Config struct {
	// Input is the JSON entity file to convert.
	Input string `posarg:"0"`

	// Output is the OBJ file to write; standard output when empty.
	Output string `flag:"o,output"`

	// Quality scales the curvature-driven tessellation resolution.
	Quality float32 `default:"1"`

	// SmoothAngle is the normal-smoothing crease threshold in degrees.
	SmoothAngle float32 `default:"45"`

	// NoMerge keeps every entity's mesh separate instead of merging
	// by material.
	NoMerge bool

	// BRepURL is the endpoint of the remote solid-tessellation
	// service; solids are skipped when empty.
	BRepURL string
}

func main() {
	opts := cli.DefaultOptions("solidscene",
		"Solidscene converts declarative JSON geometry into a renderable scene and exports it as OBJ.")
	cli.Run(opts, &Config{}, Convert)
}

// Convert runs one conversion per the config.
func Convert(c *Config) error {
	data, err := os.ReadFile(c.Input)
	if err != nil {
		return err
	}
	ents, err := entity.Decode(data)
	if err != nil {
		return fmt.Errorf("%s: %w", c.Input, err)
	}

	so := &scene.Options{
		Tess:        nurbs.Options{Quality: c.Quality},
		SmoothAngle: c.SmoothAngle,
		NoMerge:     c.NoMerge,
	}
	if c.BRepURL != "" {
		so.BRep = &brep.Client{URL: c.BRepURL, Quality: c.Quality}
	}
	root, st, err := scene.Convert(context.Background(), ents, so)
	if err != nil {
		return err
	}
	if !st.IsEmpty() {
		logx.PrintlnWarn("skipped entities:", st.Summary())
	}

	out := os.Stdout
	if c.Output != "" {
		f, err := os.Create(c.Output)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	return export.OBJ(out, root)
}
