// Copyright (c) 2026, Solid Scene Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package fault defines the closed set of error kinds used throughout the
// conversion pipeline, so that errors are classified by kind, not by
// comparing message strings. Anything that does not carry a [fault.Error]
// is an [Unexpected] fault and must be propagated, never recorded.
package fault

import (
	"errors"
	"fmt"
)

// Kind enumerates the recoverable error categories of the pipeline.
// Every Kind except [Unexpected] is caught at the smallest possible scope
// (per entity, or per merge group) and recorded in the conversion status,
// so that sibling entities still produce geometry.
type Kind int32

const (
	// Unexpected is any error that was not classified by the pipeline.
	// It aborts the surrounding build step and propagates to the caller.
	Unexpected Kind = iota

	// InvalidNurbsDefinition is a knot / control-point count mismatch.
	InvalidNurbsDefinition

	// DegenerateGeometry is geometry that cannot be recovered by a
	// fallback: zero-length vectors, non-planar polygons, etc.
	DegenerateGeometry

	// MismatchedAttributes is a merge-time attribute layout conflict:
	// one mesh has an attribute buffer that another in the group lacks.
	MismatchedAttributes

	// UnknownPrimitiveType is an entity whose primitive name is not
	// recognized, after alias remapping.
	UnknownPrimitiveType

	// RemoteTessellation is a failure of the external solid-tessellation
	// service round trip: network, timeout, parse, or duplicate-request
	// abort.
	RemoteTessellation
)

var kindNames = []string{
	"Unexpected",
	"InvalidNurbsDefinition",
	"DegenerateGeometry",
	"MismatchedAttributes",
	"UnknownPrimitiveType",
	"RemoteTessellation",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int32(k))
	}
	return kindNames[k]
}

// Error is a classified pipeline error, naming the entity it arose from.
type Error struct {
	// Kind is the error category.
	Kind Kind

	// Entity is the name or id of the entity the error is attributed to.
	// It becomes the status-map key.
	Entity string

	// Err is the underlying error, if any.
	Err error

	// Msg is the human-readable message when there is no underlying error.
	Msg string
}

func (e *Error) Error() string {
	msg := e.Msg
	if e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Entity == "" {
		return fmt.Sprintf("%s: %s", e.Kind, msg)
	}
	return fmt.Sprintf("%s: %s: %s", e.Kind, e.Entity, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Message returns the message without the kind / entity prefix,
// for recording in the status map.
func (e *Error) Message() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Msg
}

// New returns a new classified error for the given entity.
func New(k Kind, entity, msg string) *Error {
	return &Error{Kind: k, Entity: entity, Msg: msg}
}

// Newf returns a new classified error with a formatted message.
func Newf(k Kind, entity, format string, args ...any) *Error {
	return &Error{Kind: k, Entity: entity, Msg: fmt.Sprintf(format, args...)}
}

// Wrap classifies an existing error for the given entity.
func Wrap(k Kind, entity string, err error) *Error {
	return &Error{Kind: k, Entity: entity, Err: err}
}

// KindOf returns the Kind of the given error, or [Unexpected] if the error
// does not carry a classification (including nil).
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return Unexpected
}

// Is reports whether the error is classified with the given kind.
func Is(err error, k Kind) bool {
	var fe *Error
	return errors.As(err, &fe) && fe.Kind == k
}

// As extracts the classified error, if any.
func As(err error) (*Error, bool) {
	var fe *Error
	ok := errors.As(err, &fe)
	return fe, ok
}
