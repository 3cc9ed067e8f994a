// Copyright (c) 2026, Solid Scene Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scene

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/solidscene/solidscene/entity"
)

func TestContextBuildsEachIDOnce(t *testing.T) {
	opts := &Options{}
	opts.Defaults()
	list, bad := entity.Flatten([]*entity.Entity{flatSurface("s1", 0)}, opts.Aliases)
	require.Empty(t, bad)
	cc := newContext(list, opts, &Status{})

	// concurrent requests for one id share the single in-flight build
	var g errgroup.Group
	for range 8 {
		g.Go(func() error {
			nd, err := cc.node(context.Background(), "s1")
			if err != nil {
				return err
			}
			assert.NotNil(t, nd)
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.Equal(t, 1, cc.BuildCount("s1"))

	// later requests reuse the memoized node
	nd, err := cc.node(context.Background(), "s1")
	require.NoError(t, err)
	assert.Same(t, nd, cc.builtNode("s1"))
	assert.Equal(t, 1, cc.BuildCount("s1"))
}
