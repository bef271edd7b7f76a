// Copyright 2026 The Redforge Authors
// SPDX-License-Identifier: Apache-2.0

package dump

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/zeebo/blake3"

	"github.com/redforge/savetree/lib/codec"
	"github.com/redforge/savetree/lib/prop"
)

// envelopeMagic opens every snapshot file.
var envelopeMagic = [4]byte{'R', 'F', 'S', 'D'}

// envelopeVersion is the snapshot file format version, independent of
// the save format version recorded inside the snapshot.
const envelopeVersion uint8 = 1

// Record is the snapshot rendering of one property node. Exactly one
// value group is populated, matching the node's kind; container kinds
// populate Children or Fields instead.
type Record struct {
	TypeName  string `cbor:"type_name"`
	Kind      string `cbor:"kind"`
	Skippable bool   `cbor:"skippable"`

	Bool      *bool    `cbor:"bool,omitempty"`
	Int       *int32   `cbor:"int,omitempty"`
	Float     *float32 `cbor:"float,omitempty"`
	Double    *float64 `cbor:"double,omitempty"`
	Selected  *uint32  `cbor:"selected,omitempty"`
	Options   []string `cbor:"options,omitempty"`
	Name      string   `cbor:"name,omitempty"`
	TweakDBID *uint64  `cbor:"tweakdbid,omitempty"`
	Path      string   `cbor:"path,omitempty"`
	Hash      *uint64  `cbor:"hash,omitempty"`
	Handle    *uint32  `cbor:"handle,omitempty"`

	// Raw carries an Unknown capsule's bytes; Reason says why the
	// engine fell back to a capsule, when it was not simply an
	// unregistered type name.
	Raw    []byte `cbor:"raw,omitempty"`
	Reason string `cbor:"reason,omitempty"`

	Children []Record `cbor:"children,omitempty"`
	Fields   []Field  `cbor:"fields,omitempty"`
}

// Field is one named field of an Object record.
type Field struct {
	Name  string `cbor:"name"`
	Value Record `cbor:"value"`
}

// Snapshot is the decoded form of a snapshot file.
type Snapshot struct {
	// SaveVersion is the save format version the tree was decoded
	// under.
	SaveVersion uint32 `cbor:"save_version"`

	// SourceDigest is the BLAKE3-256 digest of the source blob the
	// tree was decoded from.
	SourceDigest []byte `cbor:"source_digest"`

	// Root is the rendered property tree.
	Root Record `cbor:"root"`
}

// Capture renders a decoded tree into a snapshot. The source blob is
// hashed so the snapshot can later be matched to the exact bytes it
// came from.
func Capture(root prop.Property, ctx *prop.Context, source []byte) (*Snapshot, error) {
	record, err := renderNode(root, ctx)
	if err != nil {
		return nil, err
	}
	digest := blake3.Sum256(source)
	return &Snapshot{
		SaveVersion:  ctx.Version,
		SourceDigest: digest[:],
		Root:         record,
	}, nil
}

func renderNode(p prop.Property, ctx *prop.Context) (Record, error) {
	typeName, err := ctx.Names.Resolve(p.TypeName())
	if err != nil {
		return Record{}, fmt.Errorf("rendering node %d: %w", p.ID(), err)
	}
	record := Record{
		TypeName:  typeName,
		Kind:      p.Kind().String(),
		Skippable: p.IsSkippable(),
	}

	switch node := p.(type) {
	case *prop.BoolProperty:
		value := node.Value()
		record.Bool = &value
	case *prop.IntegerProperty:
		value := node.Value()
		record.Int = &value
	case *prop.FloatProperty:
		value := node.Value()
		record.Float = &value
	case *prop.DoubleProperty:
		value := node.Value()
		record.Double = &value
	case *prop.ComboProperty:
		selected := node.Selected()
		record.Selected = &selected
		// Copy: the snapshot must not alias the live node's storage.
		record.Options = append([]string(nil), node.Options()...)
	case *prop.CNameProperty:
		record.Name = node.Value()
	case *prop.TweakDBIDProperty:
		value := node.Value()
		record.TweakDBID = &value
	case *prop.NodeRefProperty:
		record.Path = node.Path()
		if hash := node.Hash(); hash != 0 {
			record.Hash = &hash
		}
	case *prop.HandleProperty:
		index := node.Index()
		record.Handle = &index
	case *prop.UnknownProperty:
		record.Raw = node.RawData()
		if reason := node.Reason(); reason != nil {
			record.Reason = reason.Error()
		}
	case *prop.ArrayProperty:
		record.Children = make([]Record, 0, node.Len())
		for i := 0; i < node.Len(); i++ {
			child, err := renderNode(node.At(i), ctx)
			if err != nil {
				return Record{}, err
			}
			record.Children = append(record.Children, child)
		}
	case *prop.DynArrayProperty:
		record.Children = make([]Record, 0, node.Len())
		for i := 0; i < node.Len(); i++ {
			child, err := renderNode(node.At(i), ctx)
			if err != nil {
				return Record{}, err
			}
			record.Children = append(record.Children, child)
		}
	case *prop.ObjectProperty:
		record.Fields = make([]Field, 0, node.Len())
		for i := 0; i < node.Len(); i++ {
			fieldName, fieldValue := node.Field(i)
			child, err := renderNode(fieldValue, ctx)
			if err != nil {
				return Record{}, err
			}
			record.Fields = append(record.Fields, Field{Name: fieldName, Value: child})
		}
	default:
		return Record{}, fmt.Errorf("rendering node %d: unhandled kind %s", p.ID(), p.Kind())
	}

	return record, nil
}

// Write serializes the snapshot to w: a fixed envelope header followed
// by the (optionally compressed) deterministic CBOR body.
//
// Envelope layout, little-endian:
//
//	magic "RFSD", u8 envelope version, u8 compression tag,
//	u32 uncompressed body size, u32 stored body size, body bytes.
func (s *Snapshot) Write(w io.Writer, tag CompressionTag) error {
	body, err := codec.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding snapshot body: %w", err)
	}

	stored, appliedTag, err := compressBody(body, tag)
	if err != nil {
		return fmt.Errorf("compressing snapshot body: %w", err)
	}

	header := make([]byte, 0, 14)
	header = append(header, envelopeMagic[:]...)
	header = append(header, envelopeVersion, uint8(appliedTag))
	header = binary.LittleEndian.AppendUint32(header, uint32(len(body)))
	header = binary.LittleEndian.AppendUint32(header, uint32(len(stored)))

	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("writing snapshot header: %w", err)
	}
	if _, err := w.Write(stored); err != nil {
		return fmt.Errorf("writing snapshot body: %w", err)
	}
	return nil
}

// Read parses a snapshot file written by Write.
func Read(r io.Reader) (*Snapshot, error) {
	header := make([]byte, 14)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("reading snapshot header: %w", err)
	}
	if !bytes.Equal(header[:4], envelopeMagic[:]) {
		return nil, fmt.Errorf("not a snapshot file (magic %x)", header[:4])
	}
	if header[4] != envelopeVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d", header[4])
	}
	tag := CompressionTag(header[5])
	uncompressedSize := int(binary.LittleEndian.Uint32(header[6:10]))
	storedSize := int(binary.LittleEndian.Uint32(header[10:14]))

	stored := make([]byte, storedSize)
	if _, err := io.ReadFull(r, stored); err != nil {
		return nil, fmt.Errorf("reading snapshot body: %w", err)
	}

	body, err := decompressBody(stored, tag, uncompressedSize)
	if err != nil {
		return nil, fmt.Errorf("decompressing snapshot body: %w", err)
	}

	var snapshot Snapshot
	if err := codec.Unmarshal(body, &snapshot); err != nil {
		return nil, fmt.Errorf("decoding snapshot body: %w", err)
	}
	return &snapshot, nil
}

// SourceMatches reports whether data is the exact blob this snapshot
// was captured from.
func (s *Snapshot) SourceMatches(data []byte) bool {
	digest := blake3.Sum256(data)
	return bytes.Equal(digest[:], s.SourceDigest)
}
