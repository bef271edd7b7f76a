// Copyright 2026 The Redforge Authors
// SPDX-License-Identifier: Apache-2.0

// Package objgraph is the session's object-handle table. Handle and
// NodeRef properties do not own the objects they point at — they hold
// a small integer index into this table, which is owned by the object
// graph manager above the serialization engine.
//
// The table only grows during a session. Indices are never reused or
// renumbered, so an index resolved early in a session stays valid
// until the session is discarded.
package objgraph

import (
	"errors"
	"fmt"
)

// ErrInvalidHandle is returned when an index has no registered object.
// Callers recover by substituting a null reference; a dangling handle
// in a save is not a load failure.
var ErrInvalidHandle = errors.New("invalid object handle")

// Graph maps small integer indices to live object references. Not safe
// for concurrent use; a graph belongs to one session on one goroutine.
type Graph struct {
	objects []any
}

// NewGraph returns an empty handle table.
func NewGraph() *Graph {
	return &Graph{}
}

// Register adds value to the table and returns its index. Indices are
// assigned densely in registration order and never recycled.
func (g *Graph) Register(value any) uint32 {
	index := uint32(len(g.objects))
	g.objects = append(g.objects, value)
	return index
}

// Resolve returns the object registered at index. Fails with
// ErrInvalidHandle for indices that were never assigned.
func (g *Graph) Resolve(index uint32) (any, error) {
	if int(index) >= len(g.objects) {
		return nil, fmt.Errorf("object handle %d out of range (table has %d entries): %w", index, len(g.objects), ErrInvalidHandle)
	}
	return g.objects[index], nil
}

// Len returns the number of registered objects.
func (g *Graph) Len() int { return len(g.objects) }
