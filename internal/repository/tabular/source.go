package tabular

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/mamadbah2/farmsales/internal/config"
)

// ErrUnsupportedSource indicates an input location that no source understands.
var ErrUnsupportedSource = errors.New("unsupported input source")

// SheetsScheme prefixes Google Sheets inputs: sheets://<spreadsheetID>/<A1 range>.
const SheetsScheme = "sheets://"

// Source reads a whole table into memory.
type Source interface {
	Read(ctx context.Context) (*Table, error)
}

// Open picks the source matching the input location.
func Open(ctx context.Context, input string, cfg config.SheetsConfig, logger *zap.Logger) (Source, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	input = strings.TrimSpace(input)
	lower := strings.ToLower(input)

	switch {
	case input == "":
		return nil, fmt.Errorf("%w: empty input", ErrUnsupportedSource)
	case strings.HasPrefix(lower, SheetsScheme):
		spreadsheetID, sheetRange, err := ParseSheetsLocation(input)
		if err != nil {
			return nil, err
		}
		return NewSheetsSource(ctx, cfg, spreadsheetID, sheetRange, logger.Named("sheets"))
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
		return NewHTTPSource(input, logger.Named("http")), nil
	case strings.Contains(lower, "://"):
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSource, input)
	case strings.EqualFold(filepath.Ext(input), ".xlsx"):
		return NewXLSXSource(input, logger.Named("xlsx")), nil
	default:
		return NewCSVSource(input, logger.Named("csv")), nil
	}
}

func splitHeader(records [][]string) ([]string, [][]string, error) {
	if len(records) == 0 {
		return nil, nil, errors.New("no header row found")
	}
	return records[0], records[1:], nil
}
