// Copyright 2021 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	uasset "github.com/saferwall/uasset"
)

const (
	binaryExt = ".uasset"
	textExt   = ".yaml_uasset"
)

// outPath derives the default output path by swapping in's final
// extension for ext.
func outPath(in, ext string) string {
	return strings.TrimSuffix(in, filepath.Ext(in)) + ext
}

func runEncode(cmd *cobra.Command, args []string) error {
	in := args[0]
	out := in
	if len(args) > 1 {
		out = args[1]
	} else {
		out = outPath(in, binaryExt)
	}

	text, err := os.ReadFile(in)
	if err != nil {
		return fmt.Errorf("reading %s: %w", in, err)
	}

	doc, err := uasset.ParseText(string(text), &uasset.Options{})
	if err != nil {
		return fmt.Errorf("parsing %s: %w", in, err)
	}

	data, err := doc.Encode(&uasset.Options{})
	if err != nil {
		return fmt.Errorf("encoding %s: %w", in, err)
	}

	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}
	fmt.Printf("wrote %s\n", out)
	return nil
}

func runDecode(cmd *cobra.Command, args []string) error {
	in := args[0]
	out := in
	if len(args) > 1 {
		out = args[1]
	} else {
		out = outPath(in, textExt)
	}

	f, err := uasset.Open(in, &uasset.Options{})
	if err != nil {
		return fmt.Errorf("opening %s: %w", in, err)
	}
	defer f.Close()

	text, err := uasset.EmitText(f.Document)
	if err != nil {
		return fmt.Errorf("rendering %s: %w", in, err)
	}

	if err := os.WriteFile(out, []byte(text), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}
	fmt.Printf("wrote %s\n", out)
	return nil
}

func runTest(cmd *cobra.Command, args []string) error {
	in := args[0]

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Prefix = fmt.Sprintf("round-tripping %s... ", in)
	s.Start()
	err := roundTrip(in)
	s.Stop()

	if err != nil {
		return err
	}
	fmt.Printf("%s: round-trip OK\n", in)
	return nil
}

func roundTrip(in string) error {
	original, err := os.ReadFile(in)
	if err != nil {
		return fmt.Errorf("reading %s: %w", in, err)
	}

	doc, err := uasset.DecodeDocument(original, &uasset.Options{})
	if err != nil {
		return fmt.Errorf("decoding %s: %w", in, err)
	}

	text, err := uasset.EmitText(doc)
	if err != nil {
		return fmt.Errorf("rendering %s: %w", in, err)
	}

	reparsed, err := uasset.ParseText(text, &uasset.Options{})
	if err != nil {
		return fmt.Errorf("reparsing %s: %w", in, err)
	}

	roundTripped, err := reparsed.Encode(&uasset.Options{})
	if err != nil {
		return fmt.Errorf("re-encoding %s: %w", in, err)
	}

	if !bytes.Equal(original, roundTripped) {
		return fmt.Errorf("%s: round-trip mismatch (%d original bytes, %d re-encoded bytes)",
			in, len(original), len(roundTripped))
	}
	return nil
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "uassetctl",
		Short: "Converts a packed uasset container between binary and text",
		Long: `uassetctl converts a packed game-engine uasset container between its
binary form and a lossless YAML-like textual dialect.`,
	}

	encodeCmd := &cobra.Command{
		Use:   "encode <input> [output]",
		Short: "Read text, write binary",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  runEncode,
	}

	decodeCmd := &cobra.Command{
		Use:   "decode <input> [output]",
		Short: "Read binary, write text",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  runDecode,
	}

	testCmd := &cobra.Command{
		Use:   "test <input>",
		Short: "Round-trip a binary file through text and back, comparing byte-for-byte",
		Args:  cobra.ExactArgs(1),
		RunE:  runTest,
	}

	rootCmd.AddCommand(encodeCmd, decodeCmd, testCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
