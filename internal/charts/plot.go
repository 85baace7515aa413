package charts

import (
	"fmt"

	"go.uber.org/zap"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/mamadbah2/farmsales/internal/domain/models"
)

// YieldBins is the number of histogram bins of the yield distribution.
const YieldBins = 8

// PlotRenderer draws PNG charts with gonum/plot.
type PlotRenderer struct {
	width  vg.Length
	height vg.Length
	logger *zap.Logger
}

// NewPlotRenderer builds a renderer producing 6.4x4.8 inch images.
func NewPlotRenderer(logger *zap.Logger) *PlotRenderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PlotRenderer{
		width:  6.4 * vg.Inch,
		height: 4.8 * vg.Inch,
		logger: logger,
	}
}

// ProfitByCrop draws one bar per crop in the given order.
func (r *PlotRenderer) ProfitByCrop(crops []models.CropSummary, path string) error {
	p := newPlot("Profit by Crop (TZS)", "Crop", "Profit (TZS)")

	if len(crops) > 0 {
		values := make(plotter.Values, len(crops))
		names := make([]string, len(crops))
		for i, c := range crops {
			values[i] = c.ProfitTZS
			names[i] = c.Crop
		}

		barWidth := r.width * 0.6 / vg.Length(len(crops))
		if barWidth > vg.Points(40) {
			barWidth = vg.Points(40)
		}

		bars, err := plotter.NewBarChart(values, barWidth)
		if err != nil {
			return fmt.Errorf("build bar chart: %w", err)
		}
		bars.Color = plotutil.Color(0)
		bars.LineStyle.Width = vg.Length(0)

		p.Add(plotter.NewGrid(), bars)
		p.NominalX(names...)
	}

	return r.save(p, path)
}

// MonthlyRevenueProfit draws revenue and profit lines over the months in order.
func (r *PlotRenderer) MonthlyRevenueProfit(months []models.MonthSummary, path string) error {
	p := newPlot("Monthly Revenue & Profit (TZS)", "Month", "TZS")

	if len(months) > 0 {
		revenue := make(plotter.XYs, len(months))
		profit := make(plotter.XYs, len(months))
		labels := make([]string, len(months))
		for i, m := range months {
			revenue[i] = plotter.XY{X: float64(i), Y: m.RevenueTZS}
			profit[i] = plotter.XY{X: float64(i), Y: m.ProfitTZS}
			labels[i] = m.Month
		}

		p.Add(plotter.NewGrid())
		if err := plotutil.AddLinePoints(p, models.ColumnRevenueTZS, revenue, models.ColumnProfitTZS, profit); err != nil {
			return fmt.Errorf("build line chart: %w", err)
		}
		p.NominalX(labels...)
		p.Legend.Top = true
	}

	return r.save(p, path)
}

// YieldDistribution draws a histogram of per-record yield.
func (r *PlotRenderer) YieldDistribution(records []models.SalesRecord, path string) error {
	p := newPlot("Yield Distribution (kg)", "Yield (kg)", "Frequency")

	if len(records) > 0 {
		values := make(plotter.Values, len(records))
		for i, rec := range records {
			values[i] = rec.YieldKg
		}

		hist, err := plotter.NewHist(values, YieldBins)
		if err != nil {
			return fmt.Errorf("build histogram: %w", err)
		}
		hist.FillColor = plotutil.Color(0)

		p.Add(hist)
	}

	return r.save(p, path)
}

func (r *PlotRenderer) save(p *plot.Plot, path string) error {
	if err := p.Save(r.width, r.height, path); err != nil {
		return fmt.Errorf("save chart %s: %w", path, err)
	}
	r.logger.Debug("chart saved", zap.String("path", path), zap.String("title", p.Title.Text))
	return nil
}

func newPlot(title, xLabel, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	return p
}
