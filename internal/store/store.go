// Package store persists crawl results as JSON documents.
package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"videocrawl/internal/model"
	"videocrawl/pkg/validator"
)

// ErrEmpty is returned by Load when the document holds no records
var ErrEmpty = errors.New("no records in file")

// FileName is the results file for a query
func FileName(query string) string {
	return "youtube_results_" + validator.SanitizeFilename(query) + ".json"
}

// Save writes records as an indented JSON array. A nil slice is written as [].
func Save(path string, records []model.Record) error {
	if records == nil {
		records = []model.Record{}
	}
	return writeJSON(path, records)
}

// Load reads a results file written by Save.
func Load(path string) ([]model.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}
	var records []model.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode records %s: %w", path, err)
	}
	for i := range records {
		if records[i].Tags == nil {
			records[i].Tags = []string{}
		}
	}
	return records, nil
}

// LoadNonEmpty is Load that also fails on an empty array.
func LoadNonEmpty(path string) ([]model.Record, error) {
	records, err := Load(path)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmpty)
	}
	return records, nil
}

// WriteSidecar writes a single record next to its media file.
func WriteSidecar(path string, record *model.Record) error {
	return writeJSON(path, record)
}

func writeJSON(path string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, bytes.TrimRight(buf.Bytes(), "\n"), 0644)
}
