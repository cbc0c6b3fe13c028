// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/taibuivan/folio/internal/core/layout"
)

func newImportLegacyCmd(opts *rootOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "import-legacy",
		Short: "Load a legacy document export as inline works",
		Long: `import-legacy reads newline-delimited JSON documents exported from the
legacy document database and stores each one as an inline work. Documents
already imported are skipped, so the import can be re-run.

Run migrate-layout afterwards to externalize the imported works.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			input, closeInput, err := openInput(cmd, file)
			if err != nil {
				return err
			}
			defer closeInput()

			current, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer current.Close()

			report, err := layout.NewImporter(current.backend.Works, current.logger).Import(cmd.Context(), input)
			if report != nil {
				if printErr := opts.print(cmd.OutOrStdout(), report); printErr != nil {
					return printErr
				}
			}
			if err != nil {
				return err
			}
			if report.Failed > 0 {
				return fmt.Errorf("%w: %d", errWorksFailed, report.Failed)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "-", `NDJSON export to read ("-" for stdin)`)
	return cmd
}

func openInput(cmd *cobra.Command, path string) (io.Reader, func(), error) {
	if path == "-" {
		return cmd.InOrStdin(), func() {}, nil
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return file, func() { _ = file.Close() }, nil
}
