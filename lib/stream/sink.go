// Copyright 2026 The Redforge Authors
// SPDX-License-Identifier: Apache-2.0

package stream

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Sink accumulates encoded output. The zero value is ready to use.
// Writes never fail; the error return on Write exists so encode paths
// have a uniform signature with future streaming sinks.
type Sink struct {
	buf []byte
}

// NewSink returns an empty sink.
func NewSink() *Sink {
	return &Sink{}
}

// Offset returns the number of bytes written so far. The outer
// container layer queries it for record framing.
func (s *Sink) Offset() int { return len(s.buf) }

// Bytes returns the accumulated output. The slice aliases the sink's
// internal buffer; further writes may reallocate it.
func (s *Sink) Bytes() []byte { return s.buf }

// Write appends raw bytes.
func (s *Sink) Write(raw []byte) error {
	s.buf = append(s.buf, raw...)
	return nil
}

// WriteUint8 appends one byte.
func (s *Sink) WriteUint8(v uint8) error {
	s.buf = append(s.buf, v)
	return nil
}

// WriteUint16 appends two bytes, little-endian.
func (s *Sink) WriteUint16(v uint16) error {
	s.buf = binary.LittleEndian.AppendUint16(s.buf, v)
	return nil
}

// WriteUint32 appends four bytes, little-endian.
func (s *Sink) WriteUint32(v uint32) error {
	s.buf = binary.LittleEndian.AppendUint32(s.buf, v)
	return nil
}

// WriteUint64 appends eight bytes, little-endian.
func (s *Sink) WriteUint64(v uint64) error {
	s.buf = binary.LittleEndian.AppendUint64(s.buf, v)
	return nil
}

// WriteFloat32 appends a little-endian IEEE 754 float.
func (s *Sink) WriteFloat32(v float32) error {
	return s.WriteUint32(math.Float32bits(v))
}

// WriteFloat64 appends a little-endian IEEE 754 double.
func (s *Sink) WriteFloat64(v float64) error {
	return s.WriteUint64(math.Float64bits(v))
}

// WriteString appends a u16 length prefix followed by the string
// bytes. Strings longer than 65535 bytes do not occur in the format;
// attempting to write one is a caller bug and returns an error.
func (s *Sink) WriteString(v string) error {
	if len(v) > math.MaxUint16 {
		return fmt.Errorf("writing string of %d bytes: exceeds u16 length prefix", len(v))
	}
	if err := s.WriteUint16(uint16(len(v))); err != nil {
		return err
	}
	s.buf = append(s.buf, v...)
	return nil
}
