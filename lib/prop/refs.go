// Copyright 2026 The Redforge Authors
// SPDX-License-Identifier: Apache-2.0

package prop

import (
	"fmt"
	"math"

	"github.com/redforge/savetree/lib/stream"
	"github.com/redforge/savetree/lib/stringpool"
)

// CNameProperty is a pooled name reference. The wire form is a u16
// index into the session string pool's table, which the outer
// container layer preloads from the save's name section.
type CNameProperty struct {
	node
	value string
}

// NewCName returns a CName node for the given type name.
func NewCName(typeName stringpool.Name) *CNameProperty {
	return &CNameProperty{node: newNode(KindCName, typeName)}
}

// Value returns the referenced name.
func (p *CNameProperty) Value() string { return p.value }

// SetValue replaces the referenced name and marks the node modified.
// The new name is interned into the session pool on encode.
func (p *CNameProperty) SetValue(v string) {
	p.value = v
	p.NotifyModified()
}

// Decode reads the pool index and resolves it against the session
// name table.
func (p *CNameProperty) Decode(c *stream.Cursor, ctx *Context) error {
	index, err := c.ReadUint16()
	if err != nil {
		return fmt.Errorf("decoding CName index: %w", err)
	}
	value, err := ctx.Names.At(uint32(index))
	if err != nil {
		return fmt.Errorf("decoding CName: %w", err)
	}
	p.value = value
	return nil
}

// Encode writes the captured bytes when clean; otherwise interns the
// current name (the pool only grows, so existing indices are
// undisturbed) and writes its index. An index past the u16 wire form
// is an error, never a silent truncation to some other name's index.
func (p *CNameProperty) Encode(s *stream.Sink, ctx *Context) error {
	if p.IsSkippable() && p.hasCaptured() {
		return p.writeCaptured(s)
	}
	name := ctx.Names.Intern(p.value)
	if name.Index() > math.MaxUint16 {
		return fmt.Errorf("encoding CName %q: pool index %d exceeds u16 wire form", p.value, name.Index())
	}
	return s.WriteUint16(uint16(name.Index()))
}

// TweakDBIDProperty is a 64-bit tweak database record id.
type TweakDBIDProperty struct {
	node
	value uint64
}

// NewTweakDBID returns a TweakDBID node for the given type name.
func NewTweakDBID(typeName stringpool.Name) *TweakDBIDProperty {
	return &TweakDBIDProperty{node: newNode(KindTweakDBID, typeName)}
}

// Value returns the record id.
func (p *TweakDBIDProperty) Value() uint64 { return p.value }

// SetValue replaces the record id and marks the node modified.
func (p *TweakDBIDProperty) SetValue(v uint64) {
	p.value = v
	p.NotifyModified()
}

// Decode reads eight bytes.
func (p *TweakDBIDProperty) Decode(c *stream.Cursor, ctx *Context) error {
	value, err := c.ReadUint64()
	if err != nil {
		return fmt.Errorf("decoding TweakDBID: %w", err)
	}
	p.value = value
	return nil
}

// Encode writes the captured bytes when clean, else the current id.
func (p *TweakDBIDProperty) Encode(s *stream.Sink, ctx *Context) error {
	if p.IsSkippable() && p.hasCaptured() {
		return p.writeCaptured(s)
	}
	return s.WriteUint64(p.value)
}

// NodeRefProperty is a world-node reference. Format version 1 stores
// the node path as a u16-length-prefixed string; version 2 and later
// store a u64 path hash. Which variant applies comes from the session
// context, so a clean node re-encodes under the same rules it was
// decoded with.
type NodeRefProperty struct {
	node
	path string
	hash uint64
}

// NewNodeRef returns a NodeRef node for the given type name.
func NewNodeRef(typeName stringpool.Name) *NodeRefProperty {
	return &NodeRefProperty{node: newNode(KindNodeRef, typeName)}
}

// Path returns the node path (empty under hash-form versions).
func (p *NodeRefProperty) Path() string { return p.path }

// Hash returns the path hash (zero under string-form versions).
func (p *NodeRefProperty) Hash() uint64 { return p.hash }

// SetPath replaces the path and marks the node modified.
func (p *NodeRefProperty) SetPath(path string) {
	p.path = path
	p.NotifyModified()
}

// SetHash replaces the path hash and marks the node modified.
func (p *NodeRefProperty) SetHash(hash uint64) {
	p.hash = hash
	p.NotifyModified()
}

// Decode reads the version-appropriate variant.
func (p *NodeRefProperty) Decode(c *stream.Cursor, ctx *Context) error {
	if ctx.Version >= 2 {
		hash, err := c.ReadUint64()
		if err != nil {
			return fmt.Errorf("decoding NodeRef hash: %w", err)
		}
		p.hash = hash
		return nil
	}
	path, err := c.ReadString()
	if err != nil {
		return fmt.Errorf("decoding NodeRef path: %w", err)
	}
	p.path = path
	return nil
}

// Encode writes the captured bytes when clean, else the
// version-appropriate variant of the current state.
func (p *NodeRefProperty) Encode(s *stream.Sink, ctx *Context) error {
	if p.IsSkippable() && p.hasCaptured() {
		return p.writeCaptured(s)
	}
	if ctx.Version >= 2 {
		return s.WriteUint64(p.hash)
	}
	return s.WriteString(p.path)
}

// HandleProperty is a non-owning u32 index into the session's object
// handle table. The referenced object lives in the external object
// graph; removing this node never destroys it.
type HandleProperty struct {
	node
	index uint32
}

// NewHandle returns a Handle node for the given type name.
func NewHandle(typeName stringpool.Name) *HandleProperty {
	return &HandleProperty{node: newNode(KindHandle, typeName)}
}

// Index returns the raw handle-table index.
func (p *HandleProperty) Index() uint32 { return p.index }

// SetIndex repoints the handle and marks the node modified. The index
// is not validated here — the table may legitimately grow later in the
// session.
func (p *HandleProperty) SetIndex(index uint32) {
	p.index = index
	p.NotifyModified()
}

// Resolve returns the referenced object. A dangling index is not an
// error worth failing an edit over: it resolves to nil, matching the
// engine's policy of degrading rather than crashing on handle misses.
func (p *HandleProperty) Resolve(ctx *Context) any {
	value, err := ctx.Graph.Resolve(p.index)
	if err != nil {
		return nil
	}
	return value
}

// Decode reads four bytes.
func (p *HandleProperty) Decode(c *stream.Cursor, ctx *Context) error {
	index, err := c.ReadUint32()
	if err != nil {
		return fmt.Errorf("decoding Handle index: %w", err)
	}
	p.index = index
	return nil
}

// Encode writes the captured bytes when clean, else the current index.
func (p *HandleProperty) Encode(s *stream.Sink, ctx *Context) error {
	if p.IsSkippable() && p.hasCaptured() {
		return p.writeCaptured(s)
	}
	return s.WriteUint32(p.index)
}
