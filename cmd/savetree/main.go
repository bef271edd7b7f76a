// Copyright 2026 The Redforge Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/redforge/savetree/lib/codec"
	"github.com/redforge/savetree/lib/config"
	"github.com/redforge/savetree/lib/dump"
	"github.com/redforge/savetree/lib/prop"
	"github.com/redforge/savetree/lib/stream"
	"github.com/redforge/savetree/lib/version"
)

func main() {
	if err := run(); err != nil {
		if coder, ok := err.(interface{ ExitCode() int }); ok {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(coder.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}
}

func run() error {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		version.Print("savetree")
		return nil
	}
	if len(os.Args) < 2 {
		printUsage()
		return fmt.Errorf("missing command")
	}

	logLevel := slog.LevelInfo
	if os.Getenv("SAVETREE_DEBUG") != "" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "dump":
		return dumpCmd(args, logger)
	case "verify":
		return verifyCmd(args, logger)
	case "show":
		return showCmd(args)
	case "version":
		version.Print("savetree")
		return nil
	case "help", "--help", "-h":
		printUsage()
		return nil
	default:
		printUsage()
		return fmt.Errorf("unknown command: %s", command)
	}
}

// session is the decoded state dump and verify operate on.
type session struct {
	cfg  *config.Config
	blob []byte
	root prop.Property
	ctx  *prop.Context
}

// loadSession reads the input blob and decodes it into a property tree
// under the configured registry and save version. The blob is a single
// element record framing the whole tree.
func loadSession(inPath, configPath string, logger *slog.Logger) (*session, error) {
	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	registry, err := cfg.Registry()
	if err != nil {
		return nil, fmt.Errorf("building kind registry: %w", err)
	}

	blob, err := os.ReadFile(inPath)
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}

	ctx := prop.NewContext(registry, cfg.SaveVersion)
	cursor := stream.NewCursor(blob)
	root, err := prop.DecodeElement(cursor, ctx)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", inPath, err)
	}
	if cursor.Remaining() != 0 {
		return nil, fmt.Errorf("decoding %s: %d trailing bytes after root record", inPath, cursor.Remaining())
	}

	logger.Debug("decoded blob",
		"path", inPath,
		"bytes", len(blob),
		"save_version", cfg.SaveVersion,
		"registered_kinds", registry.Len())

	return &session{cfg: cfg, blob: blob, root: root, ctx: ctx}, nil
}

func dumpCmd(args []string, logger *slog.Logger) error {
	var inPath, outPath, compress, configPath string

	flagSet := pflag.NewFlagSet("savetree dump", pflag.ContinueOnError)
	flagSet.StringVar(&inPath, "in", "", "input property blob (required)")
	flagSet.StringVar(&outPath, "out", "", "snapshot output path (default: input path with .rfsd suffix)")
	flagSet.StringVar(&compress, "compress", "", "snapshot compression: none, lz4, zstd (default: from config)")
	flagSet.StringVar(&configPath, "config", "", "configuration file (default: $SAVETREE_CONFIG)")
	if err := flagSet.Parse(args); err != nil {
		return err
	}
	if inPath == "" {
		return fmt.Errorf("dump: --in is required")
	}
	if outPath == "" {
		outPath = strings.TrimSuffix(inPath, ".bin") + ".rfsd"
	}

	sess, err := loadSession(inPath, configPath, logger)
	if err != nil {
		return err
	}

	if compress == "" {
		compress = sess.cfg.Dump.Compression
	}
	tag, err := dump.ParseCompressionTag(compress)
	if err != nil {
		return fmt.Errorf("dump: %w", err)
	}

	snapshot, err := dump.Capture(sess.root, sess.ctx, sess.blob)
	if err != nil {
		return fmt.Errorf("capturing snapshot: %w", err)
	}

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("creating snapshot file: %w", err)
	}
	defer out.Close()
	if err := snapshot.Write(out, tag); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing snapshot file: %w", err)
	}

	logger.Info("snapshot written",
		"in", inPath,
		"out", outPath,
		"compression", tag.String())
	return nil
}

// driftError reports verify finding a byte difference between the
// input blob and its re-encoding. Distinct exit code so scripts can
// tell drift from operational failures.
type driftError struct {
	offset int
}

func (e *driftError) Error() string {
	return fmt.Sprintf("re-encode drift: first differing byte at offset %d", e.offset)
}

func (e *driftError) ExitCode() int { return 1 }

func verifyCmd(args []string, logger *slog.Logger) error {
	var inPath, configPath string

	flagSet := pflag.NewFlagSet("savetree verify", pflag.ContinueOnError)
	flagSet.StringVar(&inPath, "in", "", "input property blob (required)")
	flagSet.StringVar(&configPath, "config", "", "configuration file (default: $SAVETREE_CONFIG)")
	if err := flagSet.Parse(args); err != nil {
		return err
	}
	if inPath == "" {
		return fmt.Errorf("verify: --in is required")
	}

	sess, err := loadSession(inPath, configPath, logger)
	if err != nil {
		return err
	}

	sink := stream.NewSink()
	if err := prop.EncodeElement(sink, sess.root, sess.ctx); err != nil {
		return fmt.Errorf("re-encoding %s: %w", inPath, err)
	}
	encoded := sink.Bytes()

	if !bytes.Equal(sess.blob, encoded) {
		offset := len(sess.blob)
		if len(encoded) < offset {
			offset = len(encoded)
		}
		for i := 0; i < offset; i++ {
			if sess.blob[i] != encoded[i] {
				offset = i
				break
			}
		}
		logger.Error("verify failed",
			"path", inPath,
			"input_bytes", len(sess.blob),
			"encoded_bytes", len(encoded),
			"first_diff", offset)
		return &driftError{offset: offset}
	}

	logger.Info("verify ok", "path", inPath, "bytes", len(sess.blob))
	return nil
}

func showCmd(args []string) error {
	var inPath string

	flagSet := pflag.NewFlagSet("savetree show", pflag.ContinueOnError)
	flagSet.StringVar(&inPath, "in", "", "snapshot file written by dump (required)")
	if err := flagSet.Parse(args); err != nil {
		return err
	}
	if inPath == "" {
		return fmt.Errorf("show: --in is required")
	}

	file, err := os.Open(inPath)
	if err != nil {
		return fmt.Errorf("opening snapshot: %w", err)
	}
	defer file.Close()

	snapshot, err := dump.Read(file)
	if err != nil {
		return fmt.Errorf("reading snapshot %s: %w", inPath, err)
	}

	body, err := codec.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encoding snapshot for display: %w", err)
	}
	diagnostic, err := codec.Diagnose(body)
	if err != nil {
		return fmt.Errorf("rendering snapshot: %w", err)
	}
	fmt.Println(diagnostic)
	return nil
}

func printUsage() {
	fmt.Fprint(os.Stderr, `savetree — inspect and verify RED save property blobs

Usage:
  savetree dump --in <blob> [--out <file>] [--compress none|lz4|zstd] [--config <file>]
  savetree verify --in <blob> [--config <file>]
  savetree show --in <snapshot>
  savetree --version

Commands:
  dump     decode the blob and write a snapshot file for inspection
  verify   decode the blob, re-encode it, and check for byte drift
  show     print a snapshot file in CBOR diagnostic notation
`)
}
