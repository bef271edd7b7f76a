// Copyright 2026 The Redforge Authors
// SPDX-License-Identifier: Apache-2.0

// Package stringpool interns the type and field names that repeat
// thousands of times across a decoded save system. Interning a string
// yields a small stable Name handle; resolving a handle returns the
// original string.
//
// Handles are only valid against the pool that issued them. Each pool
// carries a session-unique id baked into every handle it issues, so a
// handle presented to the wrong pool fails with ErrInvalidHandle
// instead of silently resolving to an unrelated name.
package stringpool

import (
	"errors"
	"fmt"
	"sync/atomic"
)

// ErrInvalidHandle is returned when a Name is resolved against a pool
// that did not issue it, or when the handle's index is out of range.
var ErrInvalidHandle = errors.New("invalid string pool handle")

// Name is a handle to an interned string. The zero Name is invalid.
type Name struct {
	pool  uint32
	index uint32
}

// Index returns the handle's position in the issuing pool's table.
// This is the value written to the wire for pooled name references
// (CName properties).
func (n Name) Index() uint32 { return n.index }

// poolSerial distinguishes pool instances within a process. Pools are
// session-scoped, so a plain counter is enough; atomic only so that
// independent sessions on different goroutines can construct pools.
var poolSerial atomic.Uint32

// Pool is a deduplicated string table. It only grows: interned strings
// are never removed and handles stay valid for the pool's lifetime.
// Not safe for concurrent use — a pool belongs to one decode/edit/save
// session on one goroutine.
type Pool struct {
	id      uint32
	strings []string
	lookup  map[string]uint32
}

// NewPool returns an empty pool with a fresh session id.
func NewPool() *Pool {
	return &Pool{
		id:     poolSerial.Add(1),
		lookup: make(map[string]uint32),
	}
}

// Intern returns the handle for value, adding it to the pool on first
// sight. Idempotent: interning the same string twice yields the same
// handle. Distinct strings never share a handle.
func (p *Pool) Intern(value string) Name {
	if index, ok := p.lookup[value]; ok {
		return Name{pool: p.id, index: index}
	}
	index := uint32(len(p.strings))
	p.strings = append(p.strings, value)
	p.lookup[value] = index
	return Name{pool: p.id, index: index}
}

// Resolve returns the string for a handle issued by this pool. A
// handle from another pool instance, or one with an out-of-range
// index, fails with ErrInvalidHandle.
func (p *Pool) Resolve(n Name) (string, error) {
	if n.pool != p.id {
		return "", fmt.Errorf("handle issued by pool %d resolved against pool %d: %w", n.pool, p.id, ErrInvalidHandle)
	}
	if int(n.index) >= len(p.strings) {
		return "", fmt.Errorf("handle index %d out of range (pool has %d strings): %w", n.index, len(p.strings), ErrInvalidHandle)
	}
	return p.strings[n.index], nil
}

// At returns the string at a raw table index, as read from the wire.
// Fails with ErrInvalidHandle if the index is out of range.
func (p *Pool) At(index uint32) (string, error) {
	if int(index) >= len(p.strings) {
		return "", fmt.Errorf("name table index %d out of range (pool has %d strings): %w", index, len(p.strings), ErrInvalidHandle)
	}
	return p.strings[index], nil
}

// Len returns the number of distinct strings interned so far.
func (p *Pool) Len() int { return len(p.strings) }
