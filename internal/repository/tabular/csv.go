package tabular

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
)

// CSVSource reads a comma separated file from the local filesystem.
type CSVSource struct {
	path   string
	logger *zap.Logger
}

// NewCSVSource builds a local CSV source.
func NewCSVSource(path string, logger *zap.Logger) *CSVSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CSVSource{path: path, logger: logger}
}

// Read opens and parses the whole file.
func (s *CSVSource) Read(_ context.Context) (*Table, error) {
	file, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open csv %s: %w", s.path, err)
	}
	defer file.Close()

	table, err := ReadCSV(file)
	if err != nil {
		return nil, fmt.Errorf("parse csv %s: %w", s.path, err)
	}

	s.logger.Debug("csv loaded", zap.String("path", s.path), zap.Int("rows", table.Len()), zap.Strings("columns", table.Columns))
	return table, nil
}

// ReadCSV parses comma separated content with a header row.
func ReadCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	header, rows, err := splitHeader(records)
	if err != nil {
		return nil, err
	}
	return NewTable(header, rows)
}
