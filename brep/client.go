// Copyright (c) 2026, Solid Scene Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package brep is the gateway to the external solid-tessellation
// service: all solids of one conversion that cannot be tessellated
// locally are batched into a single request, and the keyed response is
// correlated back to the originating entities.
package brep

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/solidscene/solidscene/entity"
	"github.com/solidscene/solidscene/fault"
	"github.com/solidscene/solidscene/mesh"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DefaultTimeout bounds the tessellation round trip when the caller's
// context carries no deadline of its own.
const DefaultTimeout = 60 * time.Second

// Client issues batched tessellation requests to the service at URL.
type Client struct {
	// URL is the tessellation service endpoint.
	URL string

	// HTTPClient is the client used for the round trip;
	// http.DefaultClient when nil.
	HTTPClient *http.Client

	// Quality is the tessellation quality passed to the service.
	Quality float32
}

// sceneItem is one element of the request's Scene array: either a
// labeled entity payload or a tessellate operation referencing it by
// the same label.
type sceneItem struct {
	ID      string         `json:"id"`
	Entity  *entity.Entity `json:"entity,omitempty"`
	Op      string         `json:"op,omitempty"`
	Quality float32        `json:"quality,omitempty"`
}

type request struct {
	Scene []sceneItem `json:"Scene"`
}

type wireError struct {
	Message string `json:"Message"`
}

type response struct {
	Errors map[string]wireError `json:"Errors,omitempty"`
	Output struct {
		Results *struct {
			Value map[string]jsoniter.RawMessage `json:"value"`
		} `json:"Results,omitempty"`
	} `json:"Output"`
}

// Result correlates the service response back to the originating
// entities.
type Result struct {
	// Meshes maps entity id to its tessellated triangle mesh.
	Meshes map[string]*mesh.Mesh

	// Errors maps the entity key to the service's message for it.
	// The empty key holds messages that could not be attributed to
	// any entity.
	Errors map[string]string
}

// labelPat extracts the generated result label from an error-message
// path fragment when the server does not otherwise identify the
// failing entity.
var labelPat = regexp.MustCompile(`/(result\d+)`)

// Tessellate sends one batched request covering all pending entities
// and parses the keyed response. Entity-specific failures land in
// [Result.Errors]; a batch-level failure is returned as a classified
// [fault.RemoteTessellation] error and no result is produced.
func (cl *Client) Tessellate(ctx context.Context, pending []*entity.Entity) (*Result, error) {
	if len(pending) == 0 {
		return &Result{}, nil
	}
	byLabel := make(map[string]*entity.Entity, len(pending))
	req := request{}
	for i, e := range pending {
		label := fmt.Sprintf("result%d", i)
		byLabel[label] = e
		req.Scene = append(req.Scene,
			sceneItem{ID: label, Entity: e},
			sceneItem{ID: label, Op: "tessellate", Quality: cl.Quality},
		)
	}
	body, err := json.Marshal(&req)
	if err != nil {
		return nil, fault.Wrap(fault.RemoteTessellation, "", err)
	}

	if _, has := ctx.Deadline(); !has {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultTimeout)
		defer cancel()
	}
	hreq, err := http.NewRequestWithContext(ctx, http.MethodPost, cl.URL, bytes.NewReader(body))
	if err != nil {
		return nil, fault.Wrap(fault.RemoteTessellation, "", err)
	}
	hreq.Header.Set("Content-Type", "application/json")

	hc := cl.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(hreq)
	if err != nil {
		return nil, classifyTransport(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusGatewayTimeout:
		return nil, fault.New(fault.RemoteTessellation, "",
			"tessellation exceeded time limit")
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fault.Newf(fault.RemoteTessellation, "",
			"tessellation service unavailable (status %d)", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyTransport(err)
	}
	var wire response
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fault.Wrap(fault.RemoteTessellation, "", err)
	}

	res := &Result{
		Meshes: map[string]*mesh.Mesh{},
		Errors: map[string]string{},
	}
	for key, werr := range wire.Errors {
		ent := byLabel[key]
		if ent == nil {
			// fall back to the label embedded in the message path
			if m := labelPat.FindStringSubmatch(werr.Message); m != nil {
				ent = byLabel[m[1]]
			}
		}
		if ent != nil {
			res.Errors[ent.Key()] = werr.Message
		} else {
			res.Errors[""] = werr.Message
		}
	}
	if wire.Output.Results == nil {
		return res, nil
	}
	for label, blob := range wire.Output.Results.Value {
		ent := byLabel[label]
		if ent == nil {
			continue
		}
		ms, err := decodeBlob(blob)
		if err != nil {
			res.Errors[ent.Key()] = err.Error()
			continue
		}
		ms.Name = ent.ID
		res.Meshes[ent.ID] = ms
	}
	return res, nil
}

// classifyTransport maps a client-side transport error to its
// [fault.RemoteTessellation] message. A canceled context is a
// duplicate-request abort: a newer conversion superseded this one.
func classifyTransport(err error) error {
	switch {
	case errors.Is(err, context.Canceled):
		return fault.New(fault.RemoteTessellation, "",
			"duplicate request aborted")
	case errors.Is(err, context.DeadlineExceeded):
		return fault.New(fault.RemoteTessellation, "",
			"tessellation exceeded time limit")
	}
	return fault.Wrap(fault.RemoteTessellation, "",
		fmt.Errorf("tessellation service unavailable: %w", err))
}
