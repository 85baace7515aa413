package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/mamadbah2/farmsales/internal/config"
	"github.com/mamadbah2/farmsales/internal/domain/models"
	"github.com/mamadbah2/farmsales/internal/repository/tabular"
	"github.com/mamadbah2/farmsales/internal/service/reporting"
)

// Output file names under the output directory.
const (
	CleanedFileName        = "cleaned_farm_sales.csv"
	ProfitByCropFileName   = "profit_by_crop.png"
	MonthlyTrendFileName   = "monthly_revenue_profit.png"
	YieldHistogramFileName = "yield_distribution.png"
)

// ChartRenderer draws the report charts into image files.
type ChartRenderer interface {
	ProfitByCrop(crops []models.CropSummary, path string) error
	MonthlyRevenueProfit(months []models.MonthSummary, path string) error
	YieldDistribution(records []models.SalesRecord, path string) error
}

// Result is everything a run computes before writing outputs.
type Result struct {
	// Columns are the input table columns, in input order.
	Columns []string
	Records []models.SalesRecord
	Stats   models.OverallStats
	Crops   []models.CropSummary
	Months  []models.MonthSummary
}

// Service is the farm sales batch pipeline: load, clean, aggregate, emit.
type Service struct {
	sheets  config.SheetsConfig
	charts  ChartRenderer
	printer *reporting.Printer
	logger  *zap.Logger
}

// NewService wires a pipeline. The report is printed to out.
func NewService(sheets config.SheetsConfig, charts ChartRenderer, out io.Writer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if out == nil {
		out = io.Discard
	}
	return &Service{
		sheets:  sheets,
		charts:  charts,
		printer: reporting.NewPrinter(out),
		logger:  logger,
	}
}

// Run executes the whole pipeline for one input and output directory.
func (s *Service) Run(ctx context.Context, input, outdir string) (models.Artifacts, error) {
	if err := os.MkdirAll(outdir, 0o755); err != nil {
		return models.Artifacts{}, fmt.Errorf("create output dir %s: %w", outdir, err)
	}

	table, err := s.Load(ctx, input)
	if err != nil {
		return models.Artifacts{}, err
	}

	records, err := s.Clean(table)
	if err != nil {
		return models.Artifacts{}, err
	}

	result := Result{
		Columns: table.Columns,
		Records: records,
		Stats:   Summarize(records),
		Crops:   GroupByCrop(records),
		Months:  GroupByMonth(records),
	}

	s.logger.Info("sales aggregated",
		zap.Int("rows", result.Stats.Rows),
		zap.Int("crops", len(result.Crops)),
		zap.Int("months", len(result.Months)),
		zap.Float64("profit_tzs", result.Stats.ProfitTZS))

	return s.Emit(result, outdir)
}

// Load reads the input table and checks the required columns are present.
func (s *Service) Load(ctx context.Context, input string) (*tabular.Table, error) {
	source, err := tabular.Open(ctx, input, s.sheets, s.logger.Named("source"))
	if err != nil {
		return nil, fmt.Errorf("open input %s: %w", input, err)
	}

	table, err := source.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("load input: %w", err)
	}

	if err := table.Require(models.RequiredColumns...); err != nil {
		return nil, fmt.Errorf("load input %s: %w", input, err)
	}

	s.logger.Info("input loaded", zap.String("input", input), zap.Int("rows", table.Len()), zap.Int("columns", len(table.Columns)))
	return table, nil
}
