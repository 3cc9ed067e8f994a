// Copyright (c) 2026, Solid Scene Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fault

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassification(t *testing.T) {
	err := New(InvalidNurbsDefinition, "c1", "knot vector mismatch")
	assert.Equal(t, InvalidNurbsDefinition, KindOf(err))
	assert.True(t, Is(err, InvalidNurbsDefinition))
	assert.False(t, Is(err, DegenerateGeometry))

	fe, ok := As(err)
	require.True(t, ok)
	assert.Equal(t, "c1", fe.Entity)
	assert.Equal(t, "knot vector mismatch", fe.Message())
}

func TestWrappedClassificationSurvives(t *testing.T) {
	inner := Wrap(DegenerateGeometry, "arc", errors.New("collinear points"))
	outer := fmt.Errorf("tessellating: %w", inner)
	assert.Equal(t, DegenerateGeometry, KindOf(outer))
	fe, ok := As(outer)
	require.True(t, ok)
	assert.Equal(t, "arc", fe.Entity)
}

func TestUnclassifiedIsUnexpected(t *testing.T) {
	assert.Equal(t, Unexpected, KindOf(errors.New("boom")))
}

func TestErrorString(t *testing.T) {
	err := Newf(UnknownPrimitiveType, "x", "unknown primitive type %q", "blob")
	assert.Contains(t, err.Error(), "blob")
	assert.Contains(t, err.Error(), "x")
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("cause")
	err := Wrap(RemoteTessellation, "", cause)
	assert.True(t, errors.Is(err, cause))
}
