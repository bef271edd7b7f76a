// Copyright 2026 The Redforge Authors
// SPDX-License-Identifier: Apache-2.0

package prop

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/redforge/savetree/lib/stream"
)

// frameElement builds one wire element record: u16 type-name length,
// name bytes, u32 payload length, payload bytes.
func frameElement(t *testing.T, typeName string, payload []byte) []byte {
	t.Helper()
	s := stream.NewSink()
	if err := s.WriteString(typeName); err != nil {
		t.Fatalf("framing type name %q: %v", typeName, err)
	}
	if err := s.WriteUint32(uint32(len(payload))); err != nil {
		t.Fatalf("framing payload length: %v", err)
	}
	if err := s.Write(payload); err != nil {
		t.Fatalf("framing payload: %v", err)
	}
	return s.Bytes()
}

func testContext(t *testing.T, version uint32) *Context {
	t.Helper()
	return NewContext(DefaultRegistry(), version)
}

func TestDecodeElementRoundTrip(t *testing.T) {
	comboPayload := func() []byte {
		s := stream.NewSink()
		s.WriteUint32(1)
		s.WriteUint16(2)
		s.WriteString("low")
		s.WriteString("high")
		return s.Bytes()
	}()

	cases := []struct {
		typeName string
		payload  []byte
		kind     Kind
	}{
		{"Bool", []byte{0x01}, KindBool},
		{"Int32", []byte{0xd2, 0x04, 0x00, 0x00}, KindInteger},
		{"Float", []byte{0x00, 0x00, 0x80, 0x3f}, KindFloat},
		{"Double", []byte{0, 0, 0, 0, 0, 0, 0xf0, 0x3f}, KindDouble},
		{"Combo", comboPayload, KindCombo},
		{"TweakDBID", []byte{1, 2, 3, 4, 5, 6, 7, 8}, KindTweakDBID},
		{"Handle", []byte{7, 0, 0, 0}, KindHandle},
		{"NodeRef", []byte{0xef, 0xbe, 0xad, 0xde, 0, 0, 0, 0}, KindNodeRef},
	}

	for _, tc := range cases {
		t.Run(tc.typeName, func(t *testing.T) {
			ctx := testContext(t, 2)
			record := frameElement(t, tc.typeName, tc.payload)

			property, err := DecodeElement(stream.NewCursor(record), ctx)
			if err != nil {
				t.Fatalf("DecodeElement: %v", err)
			}
			if property.Kind() != tc.kind {
				t.Fatalf("kind = %s, want %s", property.Kind(), tc.kind)
			}
			if !property.IsSkippable() {
				t.Fatalf("freshly decoded node is not skippable")
			}

			sink := stream.NewSink()
			if err := EncodeElement(sink, property, ctx); err != nil {
				t.Fatalf("EncodeElement: %v", err)
			}
			if !bytes.Equal(sink.Bytes(), record) {
				t.Fatalf("re-encode drift:\n got %x\nwant %x", sink.Bytes(), record)
			}
		})
	}
}

func TestDecodeElementCName(t *testing.T) {
	ctx := testContext(t, 2)
	ctx.Names.Intern("entEntity")

	payload := binary.LittleEndian.AppendUint16(nil, uint16(ctx.Names.Intern("entEntity").Index()))
	record := frameElement(t, "CName", payload)

	property, err := DecodeElement(stream.NewCursor(record), ctx)
	if err != nil {
		t.Fatalf("DecodeElement: %v", err)
	}
	cname, ok := property.(*CNameProperty)
	if !ok {
		t.Fatalf("decoded %T, want *CNameProperty", property)
	}
	if cname.Value() != "entEntity" {
		t.Fatalf("Value() = %q, want %q", cname.Value(), "entEntity")
	}

	sink := stream.NewSink()
	if err := EncodeElement(sink, property, ctx); err != nil {
		t.Fatalf("EncodeElement: %v", err)
	}
	if !bytes.Equal(sink.Bytes(), record) {
		t.Fatalf("re-encode drift:\n got %x\nwant %x", sink.Bytes(), record)
	}
}

func TestUnknownTypeNameBecomesCapsule(t *testing.T) {
	ctx := testContext(t, 2)
	payload := []byte{0xde, 0xad, 0xbe, 0xef, 0x42}
	record := frameElement(t, "questPhaseBlob", payload)

	property, err := DecodeElement(stream.NewCursor(record), ctx)
	if err != nil {
		t.Fatalf("DecodeElement: %v", err)
	}
	capsule, ok := property.(*UnknownProperty)
	if !ok {
		t.Fatalf("decoded %T, want *UnknownProperty", property)
	}
	if !bytes.Equal(capsule.RawData(), payload) {
		t.Fatalf("RawData() = %x, want %x", capsule.RawData(), payload)
	}
	if capsule.Reason() != nil {
		t.Fatalf("Reason() = %v, want nil for an unregistered name", capsule.Reason())
	}

	sink := stream.NewSink()
	if err := EncodeElement(sink, property, ctx); err != nil {
		t.Fatalf("EncodeElement: %v", err)
	}
	if !bytes.Equal(sink.Bytes(), record) {
		t.Fatalf("re-encode drift:\n got %x\nwant %x", sink.Bytes(), record)
	}
}

func TestShortConsumeDegradesToCapsule(t *testing.T) {
	// Int32 consumes 4 of the 8 declared bytes. The structural result
	// is discarded and the full declared range survives as a capsule.
	ctx := testContext(t, 2)
	payload := []byte{1, 0, 0, 0, 0xaa, 0xbb, 0xcc, 0xdd}
	record := frameElement(t, "Int32", payload)

	property, err := DecodeElement(stream.NewCursor(record), ctx)
	if err != nil {
		t.Fatalf("DecodeElement: %v", err)
	}
	capsule, ok := property.(*UnknownProperty)
	if !ok {
		t.Fatalf("decoded %T, want *UnknownProperty", property)
	}
	if !errors.Is(capsule.Reason(), ErrStructuralMismatch) {
		t.Fatalf("Reason() = %v, want ErrStructuralMismatch", capsule.Reason())
	}
	if !bytes.Equal(capsule.RawData(), payload) {
		t.Fatalf("RawData() = %x, want %x", capsule.RawData(), payload)
	}

	sink := stream.NewSink()
	if err := EncodeElement(sink, property, ctx); err != nil {
		t.Fatalf("EncodeElement: %v", err)
	}
	if !bytes.Equal(sink.Bytes(), record) {
		t.Fatalf("re-encode drift:\n got %x\nwant %x", sink.Bytes(), record)
	}
}

func TestDecoderUnderrunDegradesToCapsule(t *testing.T) {
	// Int32 needs 4 bytes, the declared range has 2. The decoder's
	// underrun is recoverable: the 2 bytes survive as a capsule.
	ctx := testContext(t, 2)
	payload := []byte{0x01, 0x02}
	record := frameElement(t, "Int32", payload)

	property, err := DecodeElement(stream.NewCursor(record), ctx)
	if err != nil {
		t.Fatalf("DecodeElement: %v", err)
	}
	capsule, ok := property.(*UnknownProperty)
	if !ok {
		t.Fatalf("decoded %T, want *UnknownProperty", property)
	}
	if !errors.Is(capsule.Reason(), stream.ErrBufferUnderrun) {
		t.Fatalf("Reason() = %v, want ErrBufferUnderrun", capsule.Reason())
	}
	if !bytes.Equal(capsule.RawData(), payload) {
		t.Fatalf("RawData() = %x, want %x", capsule.RawData(), payload)
	}
}

func TestDeclaredLengthPastBufferEnd(t *testing.T) {
	// The record declares 100 payload bytes but only 3 are present.
	// Whatever is actually there becomes the capsule payload.
	ctx := testContext(t, 2)
	s := stream.NewSink()
	s.WriteString("Int32")
	s.WriteUint32(100)
	s.Write([]byte{0x01, 0x02, 0x03})

	property, err := DecodeElement(stream.NewCursor(s.Bytes()), ctx)
	if err != nil {
		t.Fatalf("DecodeElement: %v", err)
	}
	capsule, ok := property.(*UnknownProperty)
	if !ok {
		t.Fatalf("decoded %T, want *UnknownProperty", property)
	}
	if !bytes.Equal(capsule.RawData(), []byte{0x01, 0x02, 0x03}) {
		t.Fatalf("RawData() = %x, want 010203", capsule.RawData())
	}
}

func TestHostileDynArrayCountDegradesToCapsule(t *testing.T) {
	// A 4-byte DynArray payload claiming 0xFFFFFFFF elements. The
	// count is a lie the payload cannot back up; decode must degrade
	// to a capsule over the declared range, not allocate for four
	// billion children.
	ctx := testContext(t, 2)
	payload := []byte{0xff, 0xff, 0xff, 0xff}
	record := frameElement(t, "DynArray", payload)

	property, err := DecodeElement(stream.NewCursor(record), ctx)
	if err != nil {
		t.Fatalf("DecodeElement: %v", err)
	}
	capsule, ok := property.(*UnknownProperty)
	if !ok {
		t.Fatalf("decoded %T, want *UnknownProperty", property)
	}
	if !bytes.Equal(capsule.RawData(), payload) {
		t.Fatalf("RawData() = %x, want %x", capsule.RawData(), payload)
	}

	sink := stream.NewSink()
	if err := EncodeElement(sink, property, ctx); err != nil {
		t.Fatalf("EncodeElement: %v", err)
	}
	if !bytes.Equal(sink.Bytes(), record) {
		t.Fatalf("re-encode drift:\n got %x\nwant %x", sink.Bytes(), record)
	}
}

func TestHostileArrayCountDegradesToCapsule(t *testing.T) {
	// Same shape with the u16-counted container: count 0xFFFF over an
	// empty element region underruns and capsules.
	ctx := testContext(t, 2)
	payload := []byte{0xff, 0xff}
	record := frameElement(t, "Array", payload)

	property, err := DecodeElement(stream.NewCursor(record), ctx)
	if err != nil {
		t.Fatalf("DecodeElement: %v", err)
	}
	if _, ok := property.(*UnknownProperty); !ok {
		t.Fatalf("decoded %T, want *UnknownProperty", property)
	}
}

func TestDecodeElementTruncatedFraming(t *testing.T) {
	// A record whose framing itself is cut off is not recoverable.
	ctx := testContext(t, 2)
	record := frameElement(t, "Int32", []byte{1, 0, 0, 0})

	for _, cut := range []int{1, 3, 8} {
		if _, err := DecodeElement(stream.NewCursor(record[:cut]), ctx); err == nil {
			t.Errorf("DecodeElement on %d-byte prefix: no error", cut)
		}
	}
}

func TestEditedCapsuleResizesLengthHeader(t *testing.T) {
	ctx := testContext(t, 2)
	record := frameElement(t, "questPhaseBlob", []byte{1, 2, 3, 4})

	property, err := DecodeElement(stream.NewCursor(record), ctx)
	if err != nil {
		t.Fatalf("DecodeElement: %v", err)
	}
	capsule := property.(*UnknownProperty)

	edited := []byte{9, 8, 7, 6, 5, 4, 3, 2, 1}
	capsule.SetRawData(edited)

	sink := stream.NewSink()
	if err := EncodeElement(sink, property, ctx); err != nil {
		t.Fatalf("EncodeElement: %v", err)
	}
	want := frameElement(t, "questPhaseBlob", edited)
	if !bytes.Equal(sink.Bytes(), want) {
		t.Fatalf("edited capsule record:\n got %x\nwant %x", sink.Bytes(), want)
	}
}

func TestNodeRefVersionVariants(t *testing.T) {
	t.Run("v1 path string", func(t *testing.T) {
		ctx := testContext(t, 1)
		s := stream.NewSink()
		s.WriteString("#world/door/01")
		record := frameElement(t, "NodeRef", s.Bytes())

		property, err := DecodeElement(stream.NewCursor(record), ctx)
		if err != nil {
			t.Fatalf("DecodeElement: %v", err)
		}
		ref, ok := property.(*NodeRefProperty)
		if !ok {
			t.Fatalf("decoded %T, want *NodeRefProperty", property)
		}
		if ref.Path() != "#world/door/01" {
			t.Fatalf("Path() = %q", ref.Path())
		}
	})

	t.Run("v2 hash", func(t *testing.T) {
		ctx := testContext(t, 2)
		s := stream.NewSink()
		s.WriteUint64(0xdeadbeefcafe)
		record := frameElement(t, "NodeRef", s.Bytes())

		property, err := DecodeElement(stream.NewCursor(record), ctx)
		if err != nil {
			t.Fatalf("DecodeElement: %v", err)
		}
		ref := property.(*NodeRefProperty)
		if ref.Hash() != 0xdeadbeefcafe {
			t.Fatalf("Hash() = %#x", ref.Hash())
		}
	})
}

func TestCNameIndexOverflowRejected(t *testing.T) {
	// Fill the pool past the u16 wire form, then force a dirty CName
	// to encode a fresh name. The oversized index must be an error,
	// not a truncation that points at an unrelated pool entry.
	ctx := testContext(t, 2)
	for i := 0; i <= math.MaxUint16; i++ {
		ctx.Names.Intern(fmt.Sprintf("name%05d", i))
	}

	cname := NewCName(ctx.Names.Intern("CName"))
	cname.SetValue("oneNameTooMany")

	sink := stream.NewSink()
	if err := cname.Encode(sink, ctx); err == nil {
		t.Fatalf("encoding a CName with pool index past u16: no error")
	}
}

func BenchmarkDecodeElement(b *testing.B) {
	ctx := NewContext(DefaultRegistry(), 2)
	s := stream.NewSink()
	s.WriteString("Int32")
	s.WriteUint32(4)
	s.Write([]byte{0x2a, 0, 0, 0})
	record := s.Bytes()

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := DecodeElement(stream.NewCursor(record), ctx); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkEncodeElementCleanReplay(b *testing.B) {
	ctx := NewContext(DefaultRegistry(), 2)
	s := stream.NewSink()
	s.WriteString("Int32")
	s.WriteUint32(4)
	s.Write([]byte{0x2a, 0, 0, 0})

	property, err := DecodeElement(stream.NewCursor(s.Bytes()), ctx)
	if err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		sink := stream.NewSink()
		if err := EncodeElement(sink, property, ctx); err != nil {
			b.Fatal(err)
		}
	}
}

// TestInventoryBlobEndToEnd walks a realistic fragment: a 64-byte
// Array payload holding a modeled integer next to a type the registry
// has never heard of. The unknown neighbor must not disturb the
// integer, and an immediate save must reproduce the input exactly.
func TestInventoryBlobEndToEnd(t *testing.T) {
	registry := DefaultRegistry()
	if err := registry.RegisterAlias("inventoryItemCount32", KindInteger); err != nil {
		t.Fatalf("RegisterAlias: %v", err)
	}
	ctx := NewContext(registry, 2)

	unknownPayload := []byte{
		0x10, 0x20, 0x30, 0x40, 0x50, 0x60, 0x70, 0x80,
		0x90, 0xa0, 0xb0, 0xc0, 0xd0, 0xe0, 0xf0, 0x00,
	}

	blob := stream.NewSink()
	blob.WriteUint16(2)
	blob.Write(frameElement(t, "inventoryItemCount32", []byte{0x2a, 0, 0, 0}))
	blob.Write(frameElement(t, "FutureType", unknownPayload))
	if got := len(blob.Bytes()); got != 64 {
		t.Fatalf("fixture is %d bytes, want 64", got)
	}

	root := NewArray(ctx.Names.Intern("Array"))
	if err := root.Decode(stream.NewCursor(blob.Bytes()), ctx); err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if root.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", root.Len())
	}
	count, ok := root.At(0).(*IntegerProperty)
	if !ok {
		t.Fatalf("child 0 is %T, want *IntegerProperty", root.At(0))
	}
	if count.Value() != 42 {
		t.Fatalf("child 0 value = %d, want 42", count.Value())
	}
	capsule, ok := root.At(1).(*UnknownProperty)
	if !ok {
		t.Fatalf("child 1 is %T, want *UnknownProperty", root.At(1))
	}
	if !bytes.Equal(capsule.RawData(), unknownPayload) {
		t.Fatalf("capsule bytes drifted:\n got %x\nwant %x", capsule.RawData(), unknownPayload)
	}

	sink := stream.NewSink()
	if err := root.Encode(sink, ctx); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !bytes.Equal(sink.Bytes(), blob.Bytes()) {
		t.Fatalf("re-encode drift:\n got %x\nwant %x", sink.Bytes(), blob.Bytes())
	}
}
