// Copyright (c) 2026, Solid Scene Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scene

import (
	"context"
	"sync"

	"github.com/solidscene/solidscene/entity"
	"github.com/solidscene/solidscene/fault"
)

// buildResult memoizes the outcome of one node build, success or
// failure, so an id is never built twice within a conversion.
type buildResult struct {
	node *Node
	err  error
}

// ConversionContext carries the per-conversion caches: id to built
// node, id to source entity, and id to in-flight build, plus the
// accumulating status map. Its lifetime is one top-level [Convert]
// call; all caches die with it, so a late asynchronous tessellation
// response can only ever affect the conversion it was issued for.
type ConversionContext struct {
	list *entity.List
	opts *Options

	mu       sync.Mutex
	built    map[string]buildResult
	inflight map[string]chan struct{}
	builds   map[string]int
	status   *Status

	// matRefs maps node id to its declared material reference.
	matRefs map[string]string
}

func newContext(list *entity.List, opts *Options, st *Status) *ConversionContext {
	return &ConversionContext{
		list:     list,
		opts:     opts,
		built:    map[string]buildResult{},
		inflight: map[string]chan struct{}{},
		builds:   map[string]int{},
		status:   st,
		matRefs:  map[string]string{},
	}
}

// BuildCount returns how many times the given id's geometry was
// actually built; it is at most 1 within one conversion.
func (cc *ConversionContext) BuildCount(id string) int {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.builds[id]
}

// addError records a classified error in the status map under the
// error's entity key, or the fallback key.
func (cc *ConversionContext) addError(fallback string, err error) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.status.AddError(fallback, err)
}

func (cc *ConversionContext) addStatus(key, msg string) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.status.Add(key, msg)
}

// node returns the built node for the given id, building it exactly
// once: concurrent requests for the same id await the single in-flight
// build rather than duplicating work, and the memoized result (success
// or failure) is shared by every later request.
func (cc *ConversionContext) node(ctx context.Context, id string) (*Node, error) {
	return cc.nodeRec(ctx, id, nil)
}

// nodeRec carries the chain of ids currently being built by this call
// stack, so an instance whose target chain reaches back to itself fails
// instead of waiting on its own build.
func (cc *ConversionContext) nodeRec(ctx context.Context, id string, trail map[string]bool) (*Node, error) {
	if trail[id] {
		return nil, fault.Newf(fault.UnknownPrimitiveType, id,
			"instance reference cycle through id %q", id)
	}
	for {
		cc.mu.Lock()
		if res, ok := cc.built[id]; ok {
			cc.mu.Unlock()
			return res.node, res.err
		}
		if ch, ok := cc.inflight[id]; ok {
			cc.mu.Unlock()
			select {
			case <-ch:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			continue
		}
		ch := make(chan struct{})
		cc.inflight[id] = ch
		cc.builds[id]++
		cc.mu.Unlock()

		if trail == nil {
			trail = map[string]bool{}
		}
		trail[id] = true
		nd, err := cc.build(ctx, id, trail)
		delete(trail, id)

		cc.mu.Lock()
		cc.built[id] = buildResult{node: nd, err: err}
		delete(cc.inflight, id)
		close(ch)
		cc.mu.Unlock()
		return nd, err
	}
}

// builtNode returns the memoized node for the id, nil if it was never
// built or its build failed.
func (cc *ConversionContext) builtNode(id string) *Node {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.built[id].node
}

// buildFailed reports whether the id's build was attempted and failed.
func (cc *ConversionContext) buildFailed(id string) bool {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	res, ok := cc.built[id]
	return ok && res.err != nil
}

// build constructs the node for an id; never called twice for the same
// id within one conversion.
func (cc *ConversionContext) build(ctx context.Context, id string, trail map[string]bool) (*Node, error) {
	e := cc.list.ByID[id]
	if e == nil {
		return nil, fault.Newf(fault.UnknownPrimitiveType, id,
			"unresolved reference to id %q", id)
	}
	return cc.buildEntity(ctx, e, trail)
}
