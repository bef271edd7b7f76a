// Copyright 2026 The Redforge Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/redforge/savetree/lib/prop"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config fixture: %v", err)
	}
	return path
}

func TestDefaults(t *testing.T) {
	cfg := Default()
	if cfg.SaveVersion != 2 {
		t.Errorf("SaveVersion = %d, want 2", cfg.SaveVersion)
	}
	if cfg.Dump.Compression != "zstd" {
		t.Errorf("Dump.Compression = %q, want zstd", cfg.Dump.Compression)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config fails validation: %v", err)
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, "savetree.yaml", `
save_version: 1
aliases:
  inventoryItemCount32: Integer
  gameItemID: TweakDBID
dump:
  compression: lz4
`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.SaveVersion != 1 {
		t.Errorf("SaveVersion = %d, want 1", cfg.SaveVersion)
	}
	if cfg.Aliases["gameItemID"] != "TweakDBID" {
		t.Errorf("Aliases = %v", cfg.Aliases)
	}
	if cfg.Dump.Compression != "lz4" {
		t.Errorf("Dump.Compression = %q, want lz4", cfg.Dump.Compression)
	}
}

func TestLoadJSONC(t *testing.T) {
	path := writeConfig(t, "savetree.jsonc", `{
	// names discovered in patch 1.6 captures
	"save_version": 2,
	"aliases": {
		"inventoryItemCount32": "Integer",
	},
}`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Aliases["inventoryItemCount32"] != "Integer" {
		t.Errorf("Aliases = %v", cfg.Aliases)
	}
	// Unset sections keep their defaults.
	if cfg.Dump.Compression != "zstd" {
		t.Errorf("Dump.Compression = %q, want default zstd", cfg.Dump.Compression)
	}
}

func TestLoadUsesEnvironment(t *testing.T) {
	path := writeConfig(t, "savetree.yaml", "save_version: 3\n")
	t.Setenv("SAVETREE_CONFIG", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SaveVersion != 3 {
		t.Errorf("SaveVersion = %d, want 3", cfg.SaveVersion)
	}

	t.Setenv("SAVETREE_CONFIG", "")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load without env: %v", err)
	}
	if cfg.SaveVersion != 2 {
		t.Errorf("SaveVersion = %d, want default 2", cfg.SaveVersion)
	}
}

func TestAliasFilesMergeAndExpand(t *testing.T) {
	dir := t.TempDir()
	aliasPath := filepath.Join(dir, "names.yaml")
	if err := os.WriteFile(aliasPath, []byte(`
inventoryItemCount32: Integer
gameItemID: Float
`), 0o644); err != nil {
		t.Fatalf("writing alias fixture: %v", err)
	}
	t.Setenv("NAMEDB_DIR", dir)

	path := writeConfig(t, "savetree.yaml", `
alias_files:
  - ${NAMEDB_DIR}/names.yaml
aliases:
  gameItemID: TweakDBID
`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Aliases["inventoryItemCount32"] != "Integer" {
		t.Errorf("alias file entry missing: %v", cfg.Aliases)
	}
	// The explicit alias wins over the file's entry.
	if cfg.Aliases["gameItemID"] != "TweakDBID" {
		t.Errorf("explicit alias overridden: %v", cfg.Aliases)
	}
}

func TestExpandVarsDefault(t *testing.T) {
	t.Setenv("SAVETREE_ABSENT", "")
	if got := expandVars("${SAVETREE_ABSENT:-/opt/namedb}/names.yaml"); got != "/opt/namedb/names.yaml" {
		t.Errorf("expandVars = %q", got)
	}

	t.Setenv("SAVETREE_PRESENT", "/data")
	if got := expandVars("${SAVETREE_PRESENT:-/opt}/names.yaml"); got != "/data/names.yaml" {
		t.Errorf("expandVars = %q", got)
	}
}

func TestMissingAliasFileRejected(t *testing.T) {
	path := writeConfig(t, "savetree.yaml", `
alias_files:
  - /nonexistent/names.yaml
`)
	if _, err := LoadFile(path); err == nil {
		t.Fatalf("missing alias file accepted")
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := &Config{
		SaveVersion: 0,
		Aliases: map[string]string{
			"":        "Integer",
			"mystery": "Quaternion",
		},
		Dump: DumpConfig{Compression: "brotli"},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatalf("broken config passed validation")
	}
	for _, want := range []string{"save_version", "empty type name", "Quaternion", "dump.compression"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("validation error misses %q: %v", want, err)
		}
	}
}

func TestLoadFileRejectsInvalidConfig(t *testing.T) {
	path := writeConfig(t, "savetree.yaml", "save_version: 0\n")
	if _, err := LoadFile(path); err == nil {
		t.Fatalf("invalid config accepted")
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("missing file accepted")
	}
}

func TestRegistryIncludesAliases(t *testing.T) {
	cfg := Default()
	cfg.Aliases = map[string]string{
		"inventoryItemCount32": "Integer",
	}

	registry, err := cfg.Registry()
	if err != nil {
		t.Fatalf("Registry: %v", err)
	}
	kind, ok := registry.Lookup("inventoryItemCount32")
	if !ok {
		t.Fatalf("alias not registered")
	}
	if kind != prop.KindInteger {
		t.Fatalf("alias kind = %s, want Integer", kind)
	}
	// The canonical names are present alongside the aliases.
	if _, ok := registry.Lookup("Int32"); !ok {
		t.Fatalf("canonical name missing from registry")
	}
}

func TestRegistryRejectsCanonicalCollision(t *testing.T) {
	cfg := Default()
	cfg.Aliases = map[string]string{"Int32": "Integer"}

	if _, err := cfg.Registry(); err == nil {
		t.Fatalf("alias shadowing a canonical name accepted")
	}
}
