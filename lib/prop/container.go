// Copyright 2026 The Redforge Authors
// SPDX-License-Identifier: Apache-2.0

package prop

import (
	"fmt"
	"math"

	"github.com/redforge/savetree/lib/stream"
	"github.com/redforge/savetree/lib/stringpool"
)

// Container kinds own their children exclusively: removing a child
// from its container is what destroys it (no other owner exists).
// Every structural mutation attaches or detaches the child's parent
// back-pointer and calls NotifyModified on the container, so dirtiness
// bubbles and IsSkippable aggregates correctly.

// minElementSize is the smallest possible element record: a u16
// zero-length type name plus a u32 zero payload length.
const minElementSize = 6

// decodeChildren reads count element records and attaches them to
// owner. The count comes from inside the payload and is untrusted: the
// capacity hint is bounded by what the remaining bytes could possibly
// hold, so a corrupt count underruns in the loop and degrades to a
// capsule instead of exhausting memory up front.
func decodeChildren(c *stream.Cursor, ctx *Context, count int, owner Property) ([]Property, error) {
	children := make([]Property, 0, min(count, c.Remaining()/minElementSize))
	for i := 0; i < count; i++ {
		child, err := DecodeElement(c, ctx)
		if err != nil {
			return nil, fmt.Errorf("decoding element %d: %w", i, err)
		}
		child.base().attach(owner)
		children = append(children, child)
	}
	return children, nil
}

// encodeChildren writes the element records for children.
func encodeChildren(s *stream.Sink, ctx *Context, children []Property) error {
	for i, child := range children {
		if err := EncodeElement(s, child, ctx); err != nil {
			return fmt.Errorf("encoding element %d: %w", i, err)
		}
	}
	return nil
}

// skippableChildren reports whether every child is still skippable.
func skippableChildren(children []Property) bool {
	for _, child := range children {
		if !child.IsSkippable() {
			return false
		}
	}
	return true
}

// ArrayProperty is a fixed-count container with a u16 count header.
type ArrayProperty struct {
	node
	children []Property
}

// NewArray returns an empty Array node for the given type name.
func NewArray(typeName stringpool.Name) *ArrayProperty {
	return &ArrayProperty{node: newNode(KindArray, typeName)}
}

// Len returns the number of children.
func (p *ArrayProperty) Len() int { return len(p.children) }

// At returns the child at index.
func (p *ArrayProperty) At(index int) Property { return p.children[index] }

// Append adds a child at the end and marks the container modified.
func (p *ArrayProperty) Append(child Property) {
	child.base().attach(p)
	p.children = append(p.children, child)
	p.NotifyModified()
}

// Replace swaps the child at index and marks the container modified.
// The displaced child is detached and, having no other owner, is dead
// to the tree.
func (p *ArrayProperty) Replace(index int, child Property) error {
	if index < 0 || index >= len(p.children) {
		return fmt.Errorf("replacing array element %d of %d", index, len(p.children))
	}
	p.children[index].base().attach(nil)
	child.base().attach(p)
	p.children[index] = child
	p.NotifyModified()
	return nil
}

// Remove deletes the child at index and marks the container modified.
func (p *ArrayProperty) Remove(index int) error {
	if index < 0 || index >= len(p.children) {
		return fmt.Errorf("removing array element %d of %d", index, len(p.children))
	}
	p.children[index].base().attach(nil)
	p.children = append(p.children[:index], p.children[index+1:]...)
	p.NotifyModified()
	return nil
}

// IsSkippable aggregates over the children: a container with any dirty
// descendant must re-encode even if the container itself was never
// touched directly.
func (p *ArrayProperty) IsSkippable() bool {
	return !p.dirty && skippableChildren(p.children)
}

// Decode reads the u16 count and that many element records.
func (p *ArrayProperty) Decode(c *stream.Cursor, ctx *Context) error {
	count, err := c.ReadUint16()
	if err != nil {
		return fmt.Errorf("decoding Array count: %w", err)
	}
	children, err := decodeChildren(c, ctx, int(count), p)
	if err != nil {
		return fmt.Errorf("decoding Array: %w", err)
	}
	p.children = children
	return nil
}

// Encode replays the captured bytes when the whole subtree is clean,
// else re-frames every child (clean children still replay their own
// captured payloads inside the fresh framing).
func (p *ArrayProperty) Encode(s *stream.Sink, ctx *Context) error {
	if p.IsSkippable() && p.hasCaptured() {
		return p.writeCaptured(s)
	}
	if len(p.children) > math.MaxUint16 {
		return fmt.Errorf("encoding Array: %d elements exceed u16 count header", len(p.children))
	}
	if err := s.WriteUint16(uint16(len(p.children))); err != nil {
		return err
	}
	return encodeChildren(s, ctx, p.children)
}

// DynArrayProperty is a growable container with a u32 count header.
type DynArrayProperty struct {
	node
	children []Property
}

// NewDynArray returns an empty DynArray node for the given type name.
func NewDynArray(typeName stringpool.Name) *DynArrayProperty {
	return &DynArrayProperty{node: newNode(KindDynArray, typeName)}
}

// Len returns the number of children.
func (p *DynArrayProperty) Len() int { return len(p.children) }

// At returns the child at index.
func (p *DynArrayProperty) At(index int) Property { return p.children[index] }

// Append adds a child at the end and marks the container modified.
func (p *DynArrayProperty) Append(child Property) {
	child.base().attach(p)
	p.children = append(p.children, child)
	p.NotifyModified()
}

// Replace swaps the child at index and marks the container modified.
func (p *DynArrayProperty) Replace(index int, child Property) error {
	if index < 0 || index >= len(p.children) {
		return fmt.Errorf("replacing dynarray element %d of %d", index, len(p.children))
	}
	p.children[index].base().attach(nil)
	child.base().attach(p)
	p.children[index] = child
	p.NotifyModified()
	return nil
}

// Remove deletes the child at index and marks the container modified.
func (p *DynArrayProperty) Remove(index int) error {
	if index < 0 || index >= len(p.children) {
		return fmt.Errorf("removing dynarray element %d of %d", index, len(p.children))
	}
	p.children[index].base().attach(nil)
	p.children = append(p.children[:index], p.children[index+1:]...)
	p.NotifyModified()
	return nil
}

// IsSkippable aggregates over the children.
func (p *DynArrayProperty) IsSkippable() bool {
	return !p.dirty && skippableChildren(p.children)
}

// Decode reads the u32 count and that many element records.
func (p *DynArrayProperty) Decode(c *stream.Cursor, ctx *Context) error {
	count, err := c.ReadUint32()
	if err != nil {
		return fmt.Errorf("decoding DynArray count: %w", err)
	}
	children, err := decodeChildren(c, ctx, int(count), p)
	if err != nil {
		return fmt.Errorf("decoding DynArray: %w", err)
	}
	p.children = children
	return nil
}

// Encode replays the captured bytes when the whole subtree is clean,
// else re-frames every child.
func (p *DynArrayProperty) Encode(s *stream.Sink, ctx *Context) error {
	if p.IsSkippable() && p.hasCaptured() {
		return p.writeCaptured(s)
	}
	if uint64(len(p.children)) > math.MaxUint32 {
		return fmt.Errorf("encoding DynArray: %d elements exceed u32 count header", len(p.children))
	}
	if err := s.WriteUint32(uint32(len(p.children))); err != nil {
		return err
	}
	return encodeChildren(s, ctx, p.children)
}

// ObjectProperty is a named-field container. Wire layout: u16 field
// count, then per field a u16-length-prefixed field name followed by
// the element record. Field order is part of the format and preserved.
type ObjectProperty struct {
	node
	names    []string
	children []Property
}

// NewObject returns an empty Object node for the given type name.
func NewObject(typeName stringpool.Name) *ObjectProperty {
	return &ObjectProperty{node: newNode(KindObject, typeName)}
}

// Len returns the number of fields.
func (p *ObjectProperty) Len() int { return len(p.children) }

// Field returns the name and value of the field at index.
func (p *ObjectProperty) Field(index int) (string, Property) {
	return p.names[index], p.children[index]
}

// Get returns the value of the named field, or nil if absent.
func (p *ObjectProperty) Get(name string) Property {
	for i, fieldName := range p.names {
		if fieldName == name {
			return p.children[i]
		}
	}
	return nil
}

// Set replaces the named field's value, appending the field if it does
// not exist yet, and marks the container modified.
func (p *ObjectProperty) Set(name string, child Property) {
	child.base().attach(p)
	for i, fieldName := range p.names {
		if fieldName == name {
			p.children[i].base().attach(nil)
			p.children[i] = child
			p.NotifyModified()
			return
		}
	}
	p.names = append(p.names, name)
	p.children = append(p.children, child)
	p.NotifyModified()
}

// Remove deletes the named field and marks the container modified.
// Removing an absent field is a no-op and does not dirty the node.
func (p *ObjectProperty) Remove(name string) {
	for i, fieldName := range p.names {
		if fieldName == name {
			p.children[i].base().attach(nil)
			p.names = append(p.names[:i], p.names[i+1:]...)
			p.children = append(p.children[:i], p.children[i+1:]...)
			p.NotifyModified()
			return
		}
	}
}

// IsSkippable aggregates over the field values.
func (p *ObjectProperty) IsSkippable() bool {
	return !p.dirty && skippableChildren(p.children)
}

// Decode reads the u16 field count and that many named element
// records.
func (p *ObjectProperty) Decode(c *stream.Cursor, ctx *Context) error {
	count, err := c.ReadUint16()
	if err != nil {
		return fmt.Errorf("decoding Object field count: %w", err)
	}
	names := make([]string, 0, count)
	children := make([]Property, 0, count)
	for i := 0; i < int(count); i++ {
		fieldName, err := c.ReadString()
		if err != nil {
			return fmt.Errorf("decoding Object field %d name: %w", i, err)
		}
		child, err := DecodeElement(c, ctx)
		if err != nil {
			return fmt.Errorf("decoding Object field %q: %w", fieldName, err)
		}
		child.base().attach(p)
		names = append(names, fieldName)
		children = append(children, child)
	}
	p.names = names
	p.children = children
	return nil
}

// Encode replays the captured bytes when the whole subtree is clean,
// else re-frames every field.
func (p *ObjectProperty) Encode(s *stream.Sink, ctx *Context) error {
	if p.IsSkippable() && p.hasCaptured() {
		return p.writeCaptured(s)
	}
	if len(p.children) > math.MaxUint16 {
		return fmt.Errorf("encoding Object: %d fields exceed u16 count header", len(p.children))
	}
	if err := s.WriteUint16(uint16(len(p.children))); err != nil {
		return err
	}
	for i, child := range p.children {
		if err := s.WriteString(p.names[i]); err != nil {
			return fmt.Errorf("encoding Object field %q name: %w", p.names[i], err)
		}
		if err := EncodeElement(s, child, ctx); err != nil {
			return fmt.Errorf("encoding Object field %q: %w", p.names[i], err)
		}
	}
	return nil
}
