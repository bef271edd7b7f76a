// Copyright 2026 The Redforge Authors
// SPDX-License-Identifier: Apache-2.0

package prop

import (
	"fmt"

	"github.com/redforge/savetree/lib/stream"
	"github.com/redforge/savetree/lib/stringpool"
)

// BoolProperty is a one-byte boolean. Nonzero wire values are true;
// the captured-byte replay preserves whatever nonzero byte the save
// actually used as long as the node stays clean.
type BoolProperty struct {
	node
	value bool
}

// NewBool returns a Bool node for the given type name.
func NewBool(typeName stringpool.Name) *BoolProperty {
	return &BoolProperty{node: newNode(KindBool, typeName)}
}

// Value returns the current boolean value.
func (p *BoolProperty) Value() bool { return p.value }

// SetValue replaces the value and marks the node modified.
func (p *BoolProperty) SetValue(v bool) {
	p.value = v
	p.NotifyModified()
}

// Decode reads one byte.
func (p *BoolProperty) Decode(c *stream.Cursor, ctx *Context) error {
	raw, err := c.ReadUint8()
	if err != nil {
		return fmt.Errorf("decoding Bool: %w", err)
	}
	p.value = raw != 0
	return nil
}

// Encode writes the captured byte when clean, else 0x00/0x01.
func (p *BoolProperty) Encode(s *stream.Sink, ctx *Context) error {
	if p.IsSkippable() && p.hasCaptured() {
		return p.writeCaptured(s)
	}
	var raw uint8
	if p.value {
		raw = 1
	}
	return s.WriteUint8(raw)
}

// IntegerProperty is a little-endian int32.
type IntegerProperty struct {
	node
	value int32
}

// NewInteger returns an Integer node for the given type name.
func NewInteger(typeName stringpool.Name) *IntegerProperty {
	return &IntegerProperty{node: newNode(KindInteger, typeName)}
}

// Value returns the current integer value.
func (p *IntegerProperty) Value() int32 { return p.value }

// SetValue replaces the value and marks the node modified.
func (p *IntegerProperty) SetValue(v int32) {
	p.value = v
	p.NotifyModified()
}

// Decode reads four bytes.
func (p *IntegerProperty) Decode(c *stream.Cursor, ctx *Context) error {
	raw, err := c.ReadUint32()
	if err != nil {
		return fmt.Errorf("decoding Integer: %w", err)
	}
	p.value = int32(raw)
	return nil
}

// Encode writes the captured bytes when clean, else the current value.
func (p *IntegerProperty) Encode(s *stream.Sink, ctx *Context) error {
	if p.IsSkippable() && p.hasCaptured() {
		return p.writeCaptured(s)
	}
	return s.WriteUint32(uint32(p.value))
}

// FloatProperty is a little-endian IEEE 754 float32.
type FloatProperty struct {
	node
	value float32
}

// NewFloat returns a Float node for the given type name.
func NewFloat(typeName stringpool.Name) *FloatProperty {
	return &FloatProperty{node: newNode(KindFloat, typeName)}
}

// Value returns the current float value.
func (p *FloatProperty) Value() float32 { return p.value }

// SetValue replaces the value and marks the node modified.
func (p *FloatProperty) SetValue(v float32) {
	p.value = v
	p.NotifyModified()
}

// Decode reads four bytes.
func (p *FloatProperty) Decode(c *stream.Cursor, ctx *Context) error {
	value, err := c.ReadFloat32()
	if err != nil {
		return fmt.Errorf("decoding Float: %w", err)
	}
	p.value = value
	return nil
}

// Encode writes the captured bytes when clean, else the current value.
// Clean replay matters for floats in particular: it preserves NaN
// payload bits the save may carry.
func (p *FloatProperty) Encode(s *stream.Sink, ctx *Context) error {
	if p.IsSkippable() && p.hasCaptured() {
		return p.writeCaptured(s)
	}
	return s.WriteFloat32(p.value)
}

// DoubleProperty is a little-endian IEEE 754 float64.
type DoubleProperty struct {
	node
	value float64
}

// NewDouble returns a Double node for the given type name.
func NewDouble(typeName stringpool.Name) *DoubleProperty {
	return &DoubleProperty{node: newNode(KindDouble, typeName)}
}

// Value returns the current double value.
func (p *DoubleProperty) Value() float64 { return p.value }

// SetValue replaces the value and marks the node modified.
func (p *DoubleProperty) SetValue(v float64) {
	p.value = v
	p.NotifyModified()
}

// Decode reads eight bytes.
func (p *DoubleProperty) Decode(c *stream.Cursor, ctx *Context) error {
	value, err := c.ReadFloat64()
	if err != nil {
		return fmt.Errorf("decoding Double: %w", err)
	}
	p.value = value
	return nil
}

// Encode writes the captured bytes when clean, else the current value.
func (p *DoubleProperty) Encode(s *stream.Sink, ctx *Context) error {
	if p.IsSkippable() && p.hasCaptured() {
		return p.writeCaptured(s)
	}
	return s.WriteFloat64(p.value)
}

// ComboProperty is an enumerated choice: the selected index and the
// option names it selects among. Wire layout: u32 selected index,
// u16 option count, options as u16-length-prefixed strings.
type ComboProperty struct {
	node
	selected uint32
	options  []string
}

// NewCombo returns a Combo node for the given type name.
func NewCombo(typeName stringpool.Name) *ComboProperty {
	return &ComboProperty{node: newNode(KindCombo, typeName)}
}

// Selected returns the index of the chosen option.
func (p *ComboProperty) Selected() uint32 { return p.selected }

// Options returns the option names. The slice is the node's own
// storage; it must not be mutated in place.
func (p *ComboProperty) Options() []string { return p.options }

// SetSelected chooses the option at index and marks the node modified.
// An index past the option list is rejected.
func (p *ComboProperty) SetSelected(index uint32) error {
	if int(index) >= len(p.options) {
		return fmt.Errorf("selecting combo option %d of %d", index, len(p.options))
	}
	p.selected = index
	p.NotifyModified()
	return nil
}

// Decode reads the selected index and the option list.
func (p *ComboProperty) Decode(c *stream.Cursor, ctx *Context) error {
	selected, err := c.ReadUint32()
	if err != nil {
		return fmt.Errorf("decoding Combo selection: %w", err)
	}
	count, err := c.ReadUint16()
	if err != nil {
		return fmt.Errorf("decoding Combo option count: %w", err)
	}
	options := make([]string, 0, count)
	for i := 0; i < int(count); i++ {
		option, err := c.ReadString()
		if err != nil {
			return fmt.Errorf("decoding Combo option %d: %w", i, err)
		}
		options = append(options, option)
	}
	p.selected = selected
	p.options = options
	return nil
}

// Encode writes the captured bytes when clean, else the current state.
func (p *ComboProperty) Encode(s *stream.Sink, ctx *Context) error {
	if p.IsSkippable() && p.hasCaptured() {
		return p.writeCaptured(s)
	}
	if err := s.WriteUint32(p.selected); err != nil {
		return err
	}
	if err := s.WriteUint16(uint16(len(p.options))); err != nil {
		return err
	}
	for _, option := range p.options {
		if err := s.WriteString(option); err != nil {
			return err
		}
	}
	return nil
}
