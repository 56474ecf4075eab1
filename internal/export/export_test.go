package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/parquet-go/parquet-go"
	"gopkg.in/yaml.v3"

	"github.com/bookloader/bookloader/internal/models"
)

func testRecord() *models.Record {
	rec := models.NewRecord("9780000000002")
	title := "Foo"
	rec.Values[models.FieldTitle] = &title
	rec.Values[models.FieldPublisher] = nil
	rec.Lists[models.FieldDescription] = []string{"short", "a longer description"}
	rec.Lists[models.FieldImage] = []string{"https://a/1.jpg", "https://b/2.jpg"}
	rec.Categories = []string{"Food & Drink", "Travel"}
	return rec
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input    string
		expected Format
		wantErr  bool
	}{
		{input: "json", expected: FormatJSON},
		{input: "YAML", expected: FormatYAML},
		{input: "yml", expected: FormatYAML},
		{input: "parquet", expected: FormatParquet},
		{input: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Error("Expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, got)
			}
		})
	}

	if got, err := FormatFromPath("out/records.csv"); err != nil || got != FormatCSV {
		t.Errorf("Expected csv, got %s (%v)", got, err)
	}
	if _, err := FormatFromPath("records"); err == nil {
		t.Error("Expected error for path without extension, got nil")
	}
}

func TestWriteJSONKeepsNulls(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, FormatJSON, []*models.Record{testRecord()}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if v, ok := got["publisher"]; !ok || v != nil {
		t.Errorf("Expected publisher null, got %v (present %v)", v, ok)
	}
	if _, ok := got["binding"]; ok {
		t.Error("Expected unrequested binding absent")
	}
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, FormatYAML, []*models.Record{testRecord(), models.NewRecord("9780306406157")}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	var got []map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("Invalid YAML: %v", err)
	}
	if len(got) != 2 || got[0]["title"] != "Foo" {
		t.Errorf("Unexpected YAML output: %v", got)
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, FormatCSV, []*models.Record{testRecord()}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("Invalid CSV: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Expected header and 1 row, got %d rows", len(rows))
	}

	row := rows[1]
	expected := []string{"9780000000002", "Foo", "", "", "", "", "a longer description", "https://a/1.jpg", "Food & Drink; Travel"}
	if strings.Join(row, "|") != strings.Join(expected, "|") {
		t.Errorf("Expected %v, got %v", expected, row)
	}
}

func TestWriteParquet(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, FormatParquet, []*models.Record{testRecord()}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	reader := parquet.NewGenericReader[Row](bytes.NewReader(buf.Bytes()))
	defer reader.Close()

	rows := make([]Row, 2)
	n, _ := reader.Read(rows)
	if n != 1 {
		t.Fatalf("Expected 1 row, got %d", n)
	}

	row := rows[0]
	if row.Title == nil || *row.Title != "Foo" {
		t.Errorf("Expected title Foo, got %v", row.Title)
	}
	if row.Publisher != nil {
		t.Errorf("Expected nil publisher, got %q", *row.Publisher)
	}
	if len(row.Categories) != 2 {
		t.Errorf("Expected 2 categories, got %v", row.Categories)
	}
}
