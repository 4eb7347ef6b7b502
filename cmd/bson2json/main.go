// Command bson2json converts a BSON document file into a JSON text file.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vibraphone/cjson-bson/bson"
	"github.com/vibraphone/cjson-bson/internal/jsontree"
)

// exitError carries the exit-code scheme from original_source/bson2json.cxx:
// 0 success, 1 missing args, 3 input-open failure, 5 parse failure, 7
// output-open failure.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "bson2json input.bson output.json",
		Short:         "Convert a BSON document file to JSON text",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args[0], args[1])
		},
	}
	return cmd
}

func run(inputPath, outputPath string) error {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return &exitError{3, fmt.Errorf("unable to open input file: %w", err)}
	}

	// Extended types stay off so Binary/UUID decode as hex/canonical-UUID
	// strings directly representable in JSON text, rather than tree.KindBinary
	// nodes encoding/json would render as base64.
	root, err := bson.Decode(data, bson.CodecOptions{})
	if err != nil {
		return &exitError{5, fmt.Errorf("unable to parse input file: %w", err)}
	}

	out, err := jsontree.Encode(root)
	if err != nil {
		return &exitError{5, fmt.Errorf("unable to render output JSON: %w", err)}
	}

	if err := os.WriteFile(outputPath, out, 0o644); err != nil {
		return &exitError{7, fmt.Errorf("unable to open output file: %w", err)}
	}
	return nil
}

func main() {
	cmd := newRootCmd()
	err := cmd.Execute()
	if err == nil {
		return
	}

	fmt.Fprintln(os.Stderr, err)
	if ee, ok := err.(*exitError); ok {
		os.Exit(ee.code)
	}
	// cobra's own arg-count validation failure maps to the source's
	// "missing filenames" exit code.
	os.Exit(1)
}
