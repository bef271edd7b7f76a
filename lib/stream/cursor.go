// Copyright 2026 The Redforge Authors
// SPDX-License-Identifier: Apache-2.0

package stream

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// ErrBufferUnderrun is returned when a read asks for more bytes than
// the cursor has left. Callers that carry a declared length treat this
// as recoverable: the declared range is preserved as an opaque capsule
// instead of failing the whole tree.
var ErrBufferUnderrun = errors.New("buffer underrun")

// Cursor reads sequentially from a byte buffer. The zero value is an
// empty cursor; use NewCursor to read real data. Cursor does no I/O —
// the caller owns the buffer and its lifetime.
type Cursor struct {
	data []byte
	pos  int
}

// NewCursor returns a cursor positioned at the start of data. The
// cursor aliases data; it never copies or mutates it.
func NewCursor(data []byte) *Cursor {
	return &Cursor{data: data}
}

// Pos returns the number of bytes consumed so far.
func (c *Cursor) Pos() int { return c.pos }

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int { return len(c.data) - c.pos }

// Read consumes and returns the next n bytes. The returned slice
// aliases the underlying buffer — callers that retain it across edits
// must copy. Fails with ErrBufferUnderrun if fewer than n bytes remain.
func (c *Cursor) Read(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("reading %d bytes: negative length", n)
	}
	if c.Remaining() < n {
		return nil, fmt.Errorf("reading %d bytes with %d remaining: %w", n, c.Remaining(), ErrBufferUnderrun)
	}
	out := c.data[c.pos : c.pos+n]
	c.pos += n
	return out, nil
}

// Slice consumes n bytes and returns a new cursor over exactly that
// range. Used to hand a property decoder its declared byte range so it
// cannot overrun into sibling data.
func (c *Cursor) Slice(n int) (*Cursor, error) {
	raw, err := c.Read(n)
	if err != nil {
		return nil, err
	}
	return NewCursor(raw), nil
}

// ReadUint8 consumes one byte.
func (c *Cursor) ReadUint8() (uint8, error) {
	raw, err := c.Read(1)
	if err != nil {
		return 0, err
	}
	return raw[0], nil
}

// ReadUint16 consumes two bytes, little-endian.
func (c *Cursor) ReadUint16() (uint16, error) {
	raw, err := c.Read(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(raw), nil
}

// ReadUint32 consumes four bytes, little-endian.
func (c *Cursor) ReadUint32() (uint32, error) {
	raw, err := c.Read(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(raw), nil
}

// ReadUint64 consumes eight bytes, little-endian.
func (c *Cursor) ReadUint64() (uint64, error) {
	raw, err := c.Read(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(raw), nil
}

// ReadFloat32 consumes four bytes as a little-endian IEEE 754 float.
func (c *Cursor) ReadFloat32() (float32, error) {
	bits, err := c.ReadUint32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(bits), nil
}

// ReadFloat64 consumes eight bytes as a little-endian IEEE 754 double.
func (c *Cursor) ReadFloat64() (float64, error) {
	bits, err := c.ReadUint64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(bits), nil
}

// ReadString consumes a u16 length prefix followed by that many bytes.
func (c *Cursor) ReadString() (string, error) {
	length, err := c.ReadUint16()
	if err != nil {
		return "", err
	}
	raw, err := c.Read(int(length))
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
