// Command json2bson converts a JSON text file into a BSON document file.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vibraphone/cjson-bson/bson"
	"github.com/vibraphone/cjson-bson/internal/jsontree"
)

// exitError carries the exit-code scheme from original_source/json2bson.cxx:
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
		Use:           "json2bson input.json output.bson",
		Short:         "Convert a JSON text file to a BSON document file",
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
		return &exitError{3, fmt.Errorf("could not open input file: %w", err)}
	}

	root, err := jsontree.Decode(data)
	if err != nil {
		return &exitError{5, fmt.Errorf("could not parse input file: %w", err)}
	}

	// Enable UUID-string detection before encoding, matching
	// cJSON_BSON_SetDetectUUIDs(1) in original_source/json2bson.cxx.
	opts := bson.CodecOptions{DetectUUIDsInStrings: true}
	encoded, err := bson.Encode(root, opts)
	if err != nil {
		return &exitError{5, fmt.Errorf("could not encode BSON: %w", err)}
	}

	if err := os.WriteFile(outputPath, encoded, 0o644); err != nil {
		return &exitError{7, fmt.Errorf("could not open output file: %w", err)}
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
	os.Exit(1)
}
