package tabular

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/mamadbah2/farmsales/internal/config"
)

// SheetsSource reads a rectangular range from a Google spreadsheet.
type SheetsSource struct {
	service       *sheetsapi.Service
	spreadsheetID string
	sheetRange    string
	logger        *zap.Logger
}

// NewSheetsSource builds a Google Sheets backed source.
func NewSheetsSource(ctx context.Context, cfg config.SheetsConfig, spreadsheetID, sheetRange string, logger *zap.Logger) (*SheetsSource, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if cfg.CredentialsPath == "" {
		return nil, errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH must be provided for sheets inputs")
	}

	service, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath), option.WithScopes(sheetsapi.SpreadsheetsReadonlyScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &SheetsSource{
		service:       service,
		spreadsheetID: spreadsheetID,
		sheetRange:    sheetRange,
		logger:        logger,
	}, nil
}

// Read fetches the range and converts the first row into the header.
func (s *SheetsSource) Read(ctx context.Context) (*Table, error) {
	resp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, s.sheetRange).
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("FORMATTED_STRING").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("read range %s: %w", s.sheetRange, err)
	}

	header, rows, err := splitHeader(ValuesToRecords(resp.Values))
	if err != nil {
		return nil, fmt.Errorf("parse range %s: %w", s.sheetRange, err)
	}

	table, err := NewTable(header, rows)
	if err != nil {
		return nil, fmt.Errorf("parse range %s: %w", s.sheetRange, err)
	}

	s.logger.Debug("sheet range loaded", zap.String("range", s.sheetRange), zap.Int("rows", table.Len()))
	return table, nil
}

// ParseSheetsLocation splits sheets://<spreadsheetID>/<range> into its parts.
func ParseSheetsLocation(input string) (spreadsheetID, sheetRange string, err error) {
	rest := input[len(SheetsScheme):]
	spreadsheetID, sheetRange, found := strings.Cut(rest, "/")
	if !found || spreadsheetID == "" || sheetRange == "" {
		return "", "", fmt.Errorf("%w: expected %s<spreadsheetID>/<range>, got %q", ErrUnsupportedSource, SheetsScheme, input)
	}
	return spreadsheetID, sheetRange, nil
}

// ValuesToRecords turns the loosely typed cells of the Sheets API into strings.
func ValuesToRecords(values [][]interface{}) [][]string {
	records := make([][]string, 0, len(values))
	for _, row := range values {
		record := make([]string, len(row))
		for i, value := range row {
			if value == nil {
				continue
			}
			record[i] = fmt.Sprint(value)
		}
		records = append(records, record)
	}
	return records
}
