package batch

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/parquet-go/parquet-go"
)

// Entry is one identifier to look up. JSONL and Parquet inputs carry it in
// an "isbn" column.
type Entry struct {
	ISBN string `json:"isbn" parquet:"isbn"`
}

// Load reads identifiers from a .txt, .jsonl or .parquet file
func Load(path string) ([]string, error) {
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".parquet":
		return loadParquet(path)
	case ".jsonl", ".json":
		return loadJSONL(path)
	case ".txt", ".csv", "":
		return loadText(path)
	default:
		return nil, fmt.Errorf("unsupported file format: %s (supported: .txt, .jsonl, .parquet)", ext)
	}
}

// loadText reads one identifier per line; blank lines and # comments are skipped
func loadText(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	return readText(file)
}

func readText(r io.Reader) ([]string, error) {
	var ids []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		// The first column of a CSV line is the identifier
		if id, _, ok := strings.Cut(line, ","); ok {
			line = strings.TrimSpace(id)
		}
		ids = append(ids, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading input: %w", err)
	}
	return ids, nil
}

func loadJSONL(path string) ([]string, error) {
	slog.Debug("Opening JSONL file", "path", path)

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	var ids []string
	scanner := bufio.NewScanner(file)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()

		if len(line) == 0 {
			continue
		}

		var entry Entry
		if err := json.Unmarshal(line, &entry); err != nil {
			return nil, fmt.Errorf("failed to parse JSON at line %d: %w", lineNum, err)
		}
		if entry.ISBN == "" {
			slog.Warn("Skipping line without isbn", "line", lineNum)
			continue
		}
		ids = append(ids, entry.ISBN)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading input: %w", err)
	}

	return ids, nil
}

func loadParquet(path string) ([]string, error) {
	slog.Debug("Opening Parquet file", "path", path)

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet: %w", err)
	}

	slog.Debug("Parquet file opened successfully", "num_rows", pf.NumRows(), "num_row_groups", len(pf.RowGroups()))

	reader := parquet.NewGenericReader[Entry](pf)
	defer reader.Close()

	var ids []string
	rows := make([]Entry, 128)
	for {
		n, err := reader.Read(rows)
		for _, row := range rows[:n] {
			if row.ISBN != "" {
				ids = append(ids, row.ISBN)
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read parquet rows: %w", err)
		}
	}

	return ids, nil
}
