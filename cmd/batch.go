package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bookloader/bookloader/internal/batch"
)

func newBatchCmd(root *rootOptions) *cobra.Command {
	var (
		input       string
		output      string
		format      string
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Look up every ISBN in a file",
		Long: `Reads ISBN-13s from a text file (one per line), a JSONL file or a Parquet
file with an "isbn" column, looks each one up and writes the records.

Invalid identifiers are reported and skipped; the other records are still written.`,
		Example: `  # Look up a list and save the records as JSONL
  bookloader batch --input isbns.txt --output records.jsonl

  # Four lookups at a time, written as Parquet
  bookloader batch --input isbns.parquet --output records.parquet --concurrency 4`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format == "" && output == "" {
				format = "jsonl"
			}
			f, err := outputFormat(format, output)
			if err != nil {
				return err
			}

			ids, err := batch.Load(input)
			if err != nil {
				return fmt.Errorf("failed to load identifiers: %w", err)
			}

			_, svc, err := root.load(cmd.Context())
			if err != nil {
				return err
			}

			results := batch.Run(cmd.Context(), svc, ids, concurrency)
			summary := batch.Summarize(results)

			if err := writeRecords(cmd.OutOrStdout(), output, f, batch.Records(results)); err != nil {
				return err
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "\nProcessed %d identifiers: %d succeeded, %d failed\n",
				summary.Total, summary.Succeeded, summary.Failed)
			for _, r := range results {
				if r.Err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "  %s: %v\n", r.ISBN, r.Err)
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "File of identifiers (.txt, .jsonl or .parquet)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout as JSONL)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: json, jsonl, yaml, csv, parquet")
	cmd.Flags().IntVar(&concurrency, "concurrency", 2, "Number of lookups to run at once")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}
