// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// outputFormat defines the output format for command reports.
type outputFormat string

const (
	outputYAML outputFormat = "yaml"
	outputJSON outputFormat = "json"
)

// parseOutput validates the --output flag.
func parseOutput(raw string) (outputFormat, error) {
	switch format := outputFormat(raw); format {
	case outputYAML, outputJSON:
		return format, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want yaml or json)", raw)
	}
}

// writeOutput writes data to w in the given format.
func writeOutput(w io.Writer, format outputFormat, data any) error {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(data)
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}

// print writes a report to the command's stdout in the --output format.
func (opts *rootOptions) print(w io.Writer, data any) error {
	format, err := parseOutput(opts.output)
	if err != nil {
		return err
	}
	return writeOutput(w, format, data)
}
