package tabular

import (
	"context"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// XLSXSource reads the first worksheet of an Excel workbook.
type XLSXSource struct {
	path   string
	logger *zap.Logger
}

// NewXLSXSource builds a workbook source.
func NewXLSXSource(path string, logger *zap.Logger) *XLSXSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &XLSXSource{path: path, logger: logger}
}

// Read loads every row of the first sheet.
func (s *XLSXSource) Read(_ context.Context) (*Table, error) {
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", s.path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}

	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}

	header, rows, err := splitHeader(records)
	if err != nil {
		return nil, fmt.Errorf("parse sheet %s: %w", sheets[0], err)
	}

	table, err := NewTable(header, rows)
	if err != nil {
		return nil, fmt.Errorf("parse sheet %s: %w", sheets[0], err)
	}

	s.logger.Debug("workbook loaded", zap.String("path", s.path), zap.String("sheet", sheets[0]), zap.Int("rows", table.Len()))
	return table, nil
}
