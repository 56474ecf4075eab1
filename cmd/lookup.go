package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/bookloader/bookloader/internal/export"
	"github.com/bookloader/bookloader/internal/images"
	"github.com/bookloader/bookloader/internal/models"
)

// shortTitleSeparators maps --short-title values to the cut point
var shortTitleSeparators = map[string]string{
	"colon":       ":",
	"comma":       ",",
	"parenthesis": "(",
}

func newLookupCmd(root *rootOptions) *cobra.Command {
	var (
		format        string
		output        string
		shortTitle    string
		downloadImage bool
	)

	cmd := &cobra.Command{
		Use:   "lookup ISBN",
		Short: "Look up one book and print the reconciled record",
		Long: `Queries every enabled source for the ISBN-13, reconciles the answers field
by field and classifies the collected subjects.

Fields that were requested but could not be resolved are printed as null.
Images and descriptions keep every candidate; CSV and Parquet output keep
the first image and the longest description.`,
		Example: `  # Print the record as JSON
  bookloader lookup 9780306406157

  # Save as YAML with the title cut at the first colon
  bookloader lookup 9780306406157 --short-title colon --output book.yaml

  # Download the cover to the configured image directory
  bookloader lookup 9780306406157 --download-image`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sep := ""
			if shortTitle != "" {
				var ok bool
				if sep, ok = shortTitleSeparators[shortTitle]; !ok {
					return fmt.Errorf("invalid --short-title %q (supported: colon, comma, parenthesis)", shortTitle)
				}
			}

			f, err := outputFormat(format, output)
			if err != nil {
				return err
			}

			cfg, svc, err := root.load(cmd.Context())
			if err != nil {
				return err
			}

			rec, err := svc.Lookup(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if sep != "" {
				if title := rec.Values[models.FieldTitle]; title != nil {
					short := models.ShortTitle(*title, sep)
					rec.Values[models.FieldTitle] = &short
				}
			}

			if downloadImage {
				path, err := images.NewFetcher().Download(cmd.Context(), rec.ISBN, cfg.ImageDir, rec.Lists[models.FieldImage])
				if err != nil {
					slog.Warn("Image download failed", "isbn", rec.ISBN, "error", err)
				} else {
					fmt.Fprintf(cmd.ErrOrStderr(), "Image saved to: %s\n", path)
				}
			}

			return writeRecords(cmd.OutOrStdout(), output, f, []*models.Record{rec})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: json, jsonl, yaml, csv, parquet (default from --output extension, else json)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the record to this file instead of stdout")
	cmd.Flags().StringVar(&shortTitle, "short-title", "", "Cut the title at the first colon, comma or parenthesis")
	cmd.Flags().BoolVar(&downloadImage, "download-image", false, "Download the first working image to the image directory")

	return cmd
}

// outputFormat resolves --format, falling back to the output file extension
func outputFormat(format, output string) (export.Format, error) {
	if format != "" {
		return export.ParseFormat(format)
	}
	if output != "" {
		return export.FormatFromPath(output)
	}
	return export.FormatJSON, nil
}

// writeRecords writes to path, or to stdout when path is empty
func writeRecords(stdout io.Writer, path string, format export.Format, records []*models.Record) error {
	if path == "" {
		if format == export.FormatParquet {
			return fmt.Errorf("parquet output needs --output")
		}
		return export.Write(stdout, format, records)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if err := export.Write(file, format, records); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	slog.Info("Saved records", "path", path, "format", format, "count", len(records))
	return file.Close()
}
