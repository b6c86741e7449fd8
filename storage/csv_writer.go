package storage

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"property-parser/models"
)

// DefaultCSVName gives each run its own file so a new crawl never
// overwrites an older one.
func DefaultCSVName(now time.Time) string {
	return fmt.Sprintf("parsed_listings_%s.csv", now.Format("20060102_150405"))
}

// CSVWriter is the durable sink for one crawl. It owns its path for the
// whole run.
type CSVWriter struct {
	path string
}

func NewCSVWriter(path string) *CSVWriter {
	return &CSVWriter{path: path}
}

func (w *CSVWriter) Path() string { return w.path }

// Append writes records in models.Columns order.
//
// appendMode=false truncates (or creates) the file and writes the header
// first; appendMode=true only adds rows. The file is fsynced before Append
// returns, so every page that made it through Append survives a crash.
func (w *CSVWriter) Append(_ context.Context, records []models.ListingRecord, appendMode bool) error {
	if dir := filepath.Dir(w.path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("could not create output dir: %w", err)
		}
	}

	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if appendMode {
		flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
	}

	file, err := os.OpenFile(w.path, flags, 0644)
	if err != nil {
		return fmt.Errorf("could not open %s: %w", w.path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	if !appendMode {
		if err := writer.Write(models.Columns); err != nil {
			return fmt.Errorf("csv header write error: %w", err)
		}
	}

	for _, r := range records {
		if err := writer.Write(r.Row()); err != nil {
			return fmt.Errorf("csv write error: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("csv write error: %w", err)
	}

	if err := file.Sync(); err != nil {
		return fmt.Errorf("could not sync %s: %w", w.path, err)
	}
	return nil
}

func (w *CSVWriter) Close() error { return nil }

// ReadCSV loads a file written by CSVWriter. The header must match
// models.Columns exactly.
func ReadCSV(path string) ([]models.ListingRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = len(models.Columns)

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%s is empty", path)
		}
		return nil, fmt.Errorf("could not read header of %s: %w", path, err)
	}
	for i, col := range models.Columns {
		if header[i] != col {
			return nil, fmt.Errorf("%s: column %d is %q, want %q", path, i+1, header[i], col)
		}
	}

	var records []models.ListingRecord
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("could not read %s: %w", path, err)
		}
		records = append(records, models.RecordFromRow(row))
	}
	return records, nil
}
