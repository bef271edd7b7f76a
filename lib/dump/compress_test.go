// Copyright 2026 The Redforge Authors
// SPDX-License-Identifier: Apache-2.0

package dump

import (
	"bytes"
	"crypto/rand"
	"testing"
)

func TestCompressionRoundTrip(t *testing.T) {
	// Repetitive enough that both algorithms actually compress it.
	body := bytes.Repeat([]byte("inventoryItemData"), 400)

	for _, tag := range []CompressionTag{CompressionNone, CompressionLZ4, CompressionZstd} {
		t.Run(tag.String(), func(t *testing.T) {
			stored, applied, err := compressBody(body, tag)
			if err != nil {
				t.Fatalf("compressBody: %v", err)
			}
			if applied != tag {
				t.Fatalf("applied tag = %s, want %s", applied, tag)
			}
			if tag != CompressionNone && len(stored) >= len(body) {
				t.Fatalf("%s did not shrink %d bytes (got %d)", tag, len(body), len(stored))
			}

			restored, err := decompressBody(stored, applied, len(body))
			if err != nil {
				t.Fatalf("decompressBody: %v", err)
			}
			if !bytes.Equal(restored, body) {
				t.Fatalf("round trip drifted")
			}
		})
	}
}

func TestIncompressibleFallsBackToNone(t *testing.T) {
	body := make([]byte, 4096)
	if _, err := rand.Read(body); err != nil {
		t.Fatalf("rand.Read: %v", err)
	}

	for _, tag := range []CompressionTag{CompressionLZ4, CompressionZstd} {
		stored, applied, err := compressBody(body, tag)
		if err != nil {
			t.Fatalf("compressBody(%s): %v", tag, err)
		}
		if applied != CompressionNone {
			t.Fatalf("random data stored as %s, want fallback to none", applied)
		}
		if !bytes.Equal(stored, body) {
			t.Fatalf("fallback altered the body")
		}
	}
}

func TestDecompressSizeMismatch(t *testing.T) {
	if _, err := decompressBody([]byte{1, 2, 3}, CompressionNone, 5); err == nil {
		t.Fatalf("size mismatch accepted for uncompressed body")
	}
}

func TestParseCompressionTag(t *testing.T) {
	for name, want := range map[string]CompressionTag{
		"none": CompressionNone,
		"lz4":  CompressionLZ4,
		"zstd": CompressionZstd,
	} {
		got, err := ParseCompressionTag(name)
		if err != nil {
			t.Fatalf("ParseCompressionTag(%q): %v", name, err)
		}
		if got != want {
			t.Fatalf("ParseCompressionTag(%q) = %v, want %v", name, got, want)
		}
		if got.String() != name {
			t.Fatalf("String() = %q, want %q", got.String(), name)
		}
	}

	if _, err := ParseCompressionTag("brotli"); err == nil {
		t.Fatalf("unknown tag accepted")
	}
}
