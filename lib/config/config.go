// Copyright 2026 The Redforge Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for savetree tools.
//
// Configuration is loaded from a single file specified by:
//   - SAVETREE_CONFIG environment variable, or
//   - --config flag passed to the command
//
// There are no fallbacks or automatic discovery. This ensures
// deterministic, auditable configuration with no hidden overrides.
//
// The file may be YAML or, when the path ends in .jsonc, JSON with
// comments. Its main job is bootstrapping the kind registry: the save
// format reuses a handful of binary layouts under hundreds of type
// names, and the alias table is how newly identified names get mapped
// onto modeled kinds without a rebuild. Alias tables can also live in
// separate name-database files listed under alias_files.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/redforge/savetree/lib/prop"
)

// Config is the master configuration for savetree tools.
type Config struct {
	// SaveVersion is the save format version to decode under.
	SaveVersion uint32 `yaml:"save_version" json:"save_version"`

	// Aliases maps additional wire type names onto modeled kinds.
	// Keys are exact type names; values are kind display names
	// ("Integer", "CName", ...). Names absent from this table and
	// from the canonical set decode as Unknown capsules, which is
	// always safe.
	Aliases map[string]string `yaml:"aliases" json:"aliases"`

	// AliasFiles lists additional alias table files to merge in, for
	// name databases maintained separately from the tool config
	// (community captures, per-patch discoveries). Paths may use
	// ${VAR} and ${VAR:-default} patterns. Entries in Aliases win over
	// entries loaded from files.
	AliasFiles []string `yaml:"alias_files" json:"alias_files"`

	// Dump configures snapshot output.
	Dump DumpConfig `yaml:"dump" json:"dump"`
}

// DumpConfig configures snapshot output.
type DumpConfig struct {
	// Compression selects the snapshot body compression: none, lz4,
	// or zstd. Default: zstd.
	Compression string `yaml:"compression" json:"compression"`
}

// Default returns the default configuration. These defaults make the
// tools usable without a config file; the file exists to carry alias
// tables, which have no sensible default beyond the canonical names.
func Default() *Config {
	return &Config{
		SaveVersion: 2,
		Aliases:     map[string]string{},
		Dump: DumpConfig{
			Compression: "zstd",
		},
	}
}

// Load loads configuration from the SAVETREE_CONFIG environment
// variable, falling back to defaults when it is unset.
func Load() (*Config, error) {
	configPath := os.Getenv("SAVETREE_CONFIG")
	if configPath == "" {
		return Default(), nil
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path. A .jsonc
// suffix selects JSON-with-comments; everything else parses as YAML
// (which accepts plain JSON too).
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if strings.HasSuffix(path, ".jsonc") {
		data = jsonc.ToJSON(data)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.loadAliasFiles(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config %s: %w", path, err)
	}
	return cfg, nil
}

// loadAliasFiles merges each alias file into the alias table. Explicit
// Aliases entries take precedence over file entries; among files, later
// files win.
func (c *Config) loadAliasFiles() error {
	if len(c.AliasFiles) == 0 {
		return nil
	}

	merged := map[string]string{}
	for _, raw := range c.AliasFiles {
		path := expandVars(raw)
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading alias file: %w", err)
		}
		if strings.HasSuffix(path, ".jsonc") {
			data = jsonc.ToJSON(data)
		}
		var table map[string]string
		if err := yaml.Unmarshal(data, &table); err != nil {
			return fmt.Errorf("parsing alias file %s: %w", path, err)
		}
		for name, kindName := range table {
			merged[name] = kindName
		}
	}

	for name, kindName := range c.Aliases {
		merged[name] = kindName
	}
	c.Aliases = merged
	return nil
}

// varPattern matches ${VAR} and ${VAR:-default} in alias file paths.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}
		if value := os.Getenv(parts[1]); value != "" {
			return value
		}
		if len(parts) >= 3 {
			return parts[2]
		}
		return ""
	})
}

// kindNames maps the kind display names accepted in the alias table.
// Unknown is deliberately absent: it is the fallback, not a target.
var kindNames = map[string]prop.Kind{
	"Bool":      prop.KindBool,
	"Integer":   prop.KindInteger,
	"Float":     prop.KindFloat,
	"Double":    prop.KindDouble,
	"Combo":     prop.KindCombo,
	"Array":     prop.KindArray,
	"DynArray":  prop.KindDynArray,
	"Handle":    prop.KindHandle,
	"Object":    prop.KindObject,
	"TweakDBID": prop.KindTweakDBID,
	"CName":     prop.KindCName,
	"NodeRef":   prop.KindNodeRef,
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.SaveVersion == 0 {
		errs = append(errs, fmt.Errorf("save_version must be at least 1"))
	}

	for name, kindName := range c.Aliases {
		if name == "" {
			errs = append(errs, fmt.Errorf("aliases: empty type name"))
			continue
		}
		if _, ok := kindNames[kindName]; !ok {
			errs = append(errs, fmt.Errorf("aliases: %q maps to unknown kind %q", name, kindName))
		}
	}

	switch c.Dump.Compression {
	case "none", "lz4", "zstd":
	default:
		errs = append(errs, fmt.Errorf("dump.compression must be one of: none, lz4, zstd"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Registry builds the kind registry: the canonical names plus this
// configuration's alias table. Call once at bootstrap, before any
// decode session starts.
func (c *Config) Registry() (*prop.Registry, error) {
	registry := prop.DefaultRegistry()
	for name, kindName := range c.Aliases {
		kind, ok := kindNames[kindName]
		if !ok {
			return nil, fmt.Errorf("alias %q: unknown kind %q", name, kindName)
		}
		if err := registry.RegisterAlias(name, kind); err != nil {
			return nil, fmt.Errorf("alias %q: %w", name, err)
		}
	}
	return registry, nil
}
