package pipeline

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/farmsales/internal/domain/models"
	"github.com/mamadbah2/farmsales/internal/repository/tabular"
)

// ErrNonNumericColumn indicates a numeric input column holds text values.
var ErrNonNumericColumn = errors.New("numeric column contains non-numeric values")

var numericColumns = []string{
	models.ColumnAreaHa,
	models.ColumnInputCostTZS,
	models.ColumnYieldKg,
	models.ColumnPricePerKgTZS,
}

// dateLayouts are tried in order; the first that parses wins.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-1-2",
	"2006-1-2 15:04:05",
	"2006-1-2 15:04",
	time.RFC3339,
	time.RFC3339Nano,
	"2006/01/02",
	"1/2/2006",
	"2 Jan 2006",
	"02-Jan-2006",
	"Jan 2, 2006",
	"January 2, 2006",
}

// dropStats counts why rows were left out of the cleaned table.
type dropStats struct {
	invalidDate  int
	missingField int
	duplicate    int
}

// Clean filters, deduplicates and enriches the loaded rows. Rows with an
// unparsable date or a missing required value are dropped silently; only
// structural problems of the table are returned as errors.
func (s *Service) Clean(table *tabular.Table) ([]models.SalesRecord, error) {
	if err := table.Require(models.RequiredColumns...); err != nil {
		return nil, err
	}

	for _, name := range numericColumns {
		if table.Kinds[table.Index(name)] != tabular.KindNumber {
			return nil, fmt.Errorf("%w: %s inferred as %s", ErrNonNumericColumn, name, table.Kinds[table.Index(name)])
		}
	}

	var (
		dateIdx   = table.Index(models.ColumnDate)
		cropIdx   = table.Index(models.ColumnCrop)
		areaIdx   = table.Index(models.ColumnAreaHa)
		costIdx   = table.Index(models.ColumnInputCostTZS)
		yieldIdx  = table.Index(models.ColumnYieldKg)
		priceIdx  = table.Index(models.ColumnPricePerKgTZS)
		required  = []int{cropIdx, areaIdx, costIdx, yieldIdx, priceIdx}
		extraCols = extraColumns(table.Columns)
	)

	var drops dropStats
	seen := make(map[models.DedupKey]struct{}, table.Len())
	records := make([]models.SalesRecord, 0, table.Len())

	for i, row := range table.Rows {
		date, ok := parseDate(row[dateIdx])
		if !ok {
			drops.invalidDate++
			s.logger.Debug("skip row with invalid date", zap.Int("row", i+2), zap.String("value", row[dateIdx].Text))
			continue
		}

		if missing := firstNull(row, required); missing >= 0 {
			drops.missingField++
			s.logger.Debug("skip row with missing value", zap.Int("row", i+2), zap.String("column", table.Columns[missing]))
			continue
		}

		record := models.NewSalesRecord(
			date,
			row[cropIdx].Text,
			row[areaIdx].Num,
			row[costIdx].Num,
			row[yieldIdx].Num,
			row[priceIdx].Num,
		)

		key := record.Key()
		if _, dup := seen[key]; dup {
			drops.duplicate++
			s.logger.Debug("skip duplicate row", zap.Int("row", i+2), zap.String("crop", record.Crop), zap.Time("date", record.Date))
			continue
		}
		seen[key] = struct{}{}

		if len(extraCols) > 0 {
			record.Extra = make(map[string]string, len(extraCols))
			for _, idx := range extraCols {
				if !row[idx].Null {
					record.Extra[table.Columns[idx]] = row[idx].Text
				}
			}
		}

		records = append(records, record)
	}

	s.logger.Info("rows cleaned",
		zap.Int("input_rows", table.Len()),
		zap.Int("kept", len(records)),
		zap.Int("invalid_date", drops.invalidDate),
		zap.Int("missing_field", drops.missingField),
		zap.Int("duplicate", drops.duplicate))

	return records, nil
}

func parseDate(cell tabular.Cell) (time.Time, bool) {
	if cell.Null {
		return time.Time{}, false
	}

	value := strings.TrimSpace(cell.Text)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func firstNull(row []tabular.Cell, indexes []int) int {
	for _, idx := range indexes {
		if row[idx].Null {
			return idx
		}
	}
	return -1
}

// extraColumns returns the indexes of input columns that are neither required
// nor recomputed by the pipeline.
func extraColumns(columns []string) []int {
	known := make(map[string]struct{}, len(models.RequiredColumns)+len(models.DerivedColumns))
	for _, name := range models.RequiredColumns {
		known[name] = struct{}{}
	}
	for _, name := range models.DerivedColumns {
		known[name] = struct{}{}
	}

	var extra []int
	for i, name := range columns {
		if _, ok := known[name]; !ok {
			extra = append(extra, i)
		}
	}
	return extra
}
