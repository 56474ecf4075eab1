package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/parquet-go/parquet-go"
	"gopkg.in/yaml.v3"

	"github.com/bookloader/bookloader/internal/models"
	"github.com/bookloader/bookloader/internal/reconcile"
)

// Format is an output encoding for records
type Format string

const (
	FormatJSON    Format = "json"
	FormatJSONL   Format = "jsonl"
	FormatYAML    Format = "yaml"
	FormatCSV     Format = "csv"
	FormatParquet Format = "parquet"
)

// ParseFormat returns the Format named by s
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatJSON, FormatJSONL, FormatYAML, FormatCSV, FormatParquet:
		return f, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported format: %s (supported: json, jsonl, yaml, csv, parquet)", s)
	}
}

// FormatFromPath picks the Format from a file extension
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", fmt.Errorf("cannot infer format from %s", path)
	}
	return ParseFormat(ext)
}

// Row is the flat form of a record used by tabular formats. Nil pointers
// are fields that were requested but resolved to no value.
type Row struct {
	ISBN        string   `parquet:"isbn" json:"isbn"`
	Title       *string  `parquet:"title,optional" json:"title"`
	Authors     *string  `parquet:"authors,optional" json:"authors"`
	Publisher   *string  `parquet:"publisher,optional" json:"publisher"`
	Binding     *string  `parquet:"binding,optional" json:"binding"`
	PublishDate *string  `parquet:"publish_date,optional" json:"publish_date"`
	Description *string  `parquet:"description,optional" json:"description"`
	Image       *string  `parquet:"image,optional" json:"image"`
	Categories  []string `parquet:"categories,list" json:"categories"`
}

// csvHeader is the column order of CSV output
var csvHeader = []string{"isbn", "title", "authors", "publisher", "binding", "publish_date", "description", "image", "categories"}

// NewRow flattens rec, keeping the longest description and the first image
func NewRow(rec *models.Record) Row {
	row := Row{
		ISBN:        rec.ISBN,
		Title:       rec.Values[models.FieldTitle],
		Authors:     rec.Values[models.FieldAuthors],
		Publisher:   rec.Values[models.FieldPublisher],
		Binding:     rec.Values[models.FieldBinding],
		PublishDate: rec.Values[models.FieldPublishDate],
		Categories:  rec.Categories,
	}
	if descriptions := rec.Lists[models.FieldDescription]; len(descriptions) > 0 {
		best := reconcile.Best(descriptions)
		row.Description = &best
	}
	if images := rec.Lists[models.FieldImage]; len(images) > 0 {
		first := images[0]
		row.Image = &first
	}
	return row
}

// Write encodes records to w in format
func Write(w io.Writer, format Format, records []*models.Record) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, records)
	case FormatJSONL:
		return writeJSONL(w, records)
	case FormatYAML:
		return writeYAML(w, records)
	case FormatCSV:
		return writeCSV(w, records)
	case FormatParquet:
		return writeParquet(w, records)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func maps(records []*models.Record) []map[string]any {
	out := make([]map[string]any, 0, len(records))
	for _, rec := range records {
		out = append(out, rec.Map())
	}
	return out
}

func writeJSON(w io.Writer, records []*models.Record) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if len(records) == 1 {
		return encoder.Encode(records[0].Map())
	}
	return encoder.Encode(maps(records))
}

func writeJSONL(w io.Writer, records []*models.Record) error {
	encoder := json.NewEncoder(w)
	for _, rec := range records {
		if err := encoder.Encode(rec.Map()); err != nil {
			return fmt.Errorf("failed to encode record %s: %w", rec.ISBN, err)
		}
	}
	return nil
}

func writeYAML(w io.Writer, records []*models.Record) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()

	if len(records) == 1 {
		return encoder.Encode(records[0].Map())
	}
	return encoder.Encode(maps(records))
}

func writeCSV(w io.Writer, records []*models.Record) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(csvHeader); err != nil {
		return err
	}

	for _, rec := range records {
		row := NewRow(rec)
		if err := writer.Write([]string{
			row.ISBN,
			deref(row.Title),
			deref(row.Authors),
			deref(row.Publisher),
			deref(row.Binding),
			deref(row.PublishDate),
			deref(row.Description),
			deref(row.Image),
			strings.Join(row.Categories, "; "),
		}); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func writeParquet(w io.Writer, records []*models.Record) error {
	rows := make([]Row, 0, len(records))
	for _, rec := range records {
		rows = append(rows, NewRow(rec))
	}

	writer := parquet.NewGenericWriter[Row](w)
	if _, err := writer.Write(rows); err != nil {
		return fmt.Errorf("failed to write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
