package pipeline

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strconv"

	"go.uber.org/zap"

	"github.com/mamadbah2/farmsales/internal/domain/models"
	"github.com/mamadbah2/farmsales/internal/repository/tabular"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04:05"
)

// Emit writes the cleaned table, prints the report and renders the charts.
// Outputs are written in that order; a failure leaves earlier files in place.
func (s *Service) Emit(result Result, outdir string) (models.Artifacts, error) {
	artifacts := models.Artifacts{
		CleanedCSV:     filepath.Join(outdir, CleanedFileName),
		ProfitByCrop:   filepath.Join(outdir, ProfitByCropFileName),
		MonthlyTrend:   filepath.Join(outdir, MonthlyTrendFileName),
		YieldHistogram: filepath.Join(outdir, YieldHistogramFileName),
	}

	header := CleanedColumns(result.Columns)
	if err := tabular.WriteCSV(artifacts.CleanedCSV, header, CleanedRows(header, result.Records)); err != nil {
		return models.Artifacts{}, fmt.Errorf("write cleaned data: %w", err)
	}
	s.logger.Info("cleaned data written", zap.String("path", artifacts.CleanedCSV), zap.Int("rows", len(result.Records)))

	if err := s.printer.PrintSummary(header, result.Stats, result.Crops); err != nil {
		return models.Artifacts{}, fmt.Errorf("print summary: %w", err)
	}

	if s.charts == nil {
		return models.Artifacts{}, errors.New("no chart renderer configured")
	}
	if err := s.charts.ProfitByCrop(result.Crops, artifacts.ProfitByCrop); err != nil {
		return models.Artifacts{}, fmt.Errorf("render profit by crop: %w", err)
	}
	if err := s.charts.MonthlyRevenueProfit(result.Months, artifacts.MonthlyTrend); err != nil {
		return models.Artifacts{}, fmt.Errorf("render monthly revenue: %w", err)
	}
	if err := s.charts.YieldDistribution(result.Records, artifacts.YieldHistogram); err != nil {
		return models.Artifacts{}, fmt.Errorf("render yield distribution: %w", err)
	}
	s.logger.Info("charts rendered", zap.Strings("paths", artifacts.Charts()))

	if err := s.printer.PrintArtifacts(artifacts); err != nil {
		return models.Artifacts{}, fmt.Errorf("print artifacts: %w", err)
	}

	return artifacts, nil
}

// CleanedColumns returns the cleaned table header: the input columns followed
// by any derived column the input did not already carry.
func CleanedColumns(input []string) []string {
	header := append([]string(nil), input...)
	for _, derived := range models.DerivedColumns {
		if !slices.Contains(header, derived) {
			header = append(header, derived)
		}
	}
	return header
}

// CleanedRows serializes records in the order of header.
func CleanedRows(header []string, records []models.SalesRecord) [][]string {
	layout := dateLayout
	for _, r := range records {
		if hasTimeOfDay(r) {
			layout = dateTimeLayout
			break
		}
	}

	rows := make([][]string, 0, len(records))
	for _, r := range records {
		row := make([]string, len(header))
		for i, col := range header {
			row[i] = cleanedValue(r, col, layout)
		}
		rows = append(rows, row)
	}
	return rows
}

func cleanedValue(r models.SalesRecord, column, layout string) string {
	switch column {
	case models.ColumnDate:
		return r.Date.Format(layout)
	case models.ColumnCrop:
		return r.Crop
	case models.ColumnAreaHa:
		return formatNumber(r.AreaHa)
	case models.ColumnInputCostTZS:
		return formatNumber(r.InputCostTZS)
	case models.ColumnYieldKg:
		return formatNumber(r.YieldKg)
	case models.ColumnPricePerKgTZS:
		return formatNumber(r.PricePerKgTZS)
	case models.ColumnRevenueTZS:
		return formatNumber(r.RevenueTZS)
	case models.ColumnProfitTZS:
		return formatNumber(r.ProfitTZS)
	case models.ColumnMonth:
		return r.Month
	default:
		return r.Extra[column]
	}
}

func hasTimeOfDay(r models.SalesRecord) bool {
	h, m, sec := r.Date.Clock()
	return h != 0 || m != 0 || sec != 0 || r.Date.Nanosecond() != 0
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
