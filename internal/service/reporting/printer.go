package reporting

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"

	"github.com/mamadbah2/farmsales/internal/domain/models"
)

var cropTableHeaders = []string{
	models.ColumnCrop,
	models.ColumnProfitTZS,
	models.ColumnRevenueTZS,
	models.ColumnInputCostTZS,
	models.ColumnYieldKg,
}

// Printer renders the human readable run report.
type Printer struct {
	out io.Writer
}

// NewPrinter builds a Printer writing to out.
func NewPrinter(out io.Writer) *Printer {
	if out == nil {
		out = io.Discard
	}
	return &Printer{out: out}
}

// PrintSummary writes the data summary, overall totals and the per-crop table.
func (p *Printer) PrintSummary(columns []string, stats models.OverallStats, crops []models.CropSummary) error {
	var b strings.Builder

	b.WriteString("\n=== DATA SUMMARY ===\n")
	fmt.Fprintf(&b, "Rows: %d\n", stats.Rows)
	b.WriteString("\nColumns:\n")
	b.WriteString(strings.Join(columns, ", "))
	b.WriteString("\n")

	b.WriteString("\n=== OVERALL STATS (TZS) ===\n")
	fmt.Fprintf(&b, "Total input cost: %s\n", FormatTotal(stats.InputCostTZS))
	fmt.Fprintf(&b, "Total revenue   : %s\n", FormatTotal(stats.RevenueTZS))
	fmt.Fprintf(&b, "Total profit    : %s\n", FormatTotal(stats.ProfitTZS))

	b.WriteString("\n=== PROFIT BY CROP (TZS) ===\n")
	b.WriteString(CropTable(crops))
	b.WriteString("\n")

	_, err := io.WriteString(p.out, b.String())
	return err
}

// PrintArtifacts lists the files the run saved.
func (p *Printer) PrintArtifacts(a models.Artifacts) error {
	var b strings.Builder

	b.WriteString("\nSaved outputs:\n")
	fmt.Fprintf(&b, "- Cleaned data: %s\n", a.CleanedCSV)
	for _, chart := range a.Charts() {
		fmt.Fprintf(&b, "- Chart: %s\n", chart)
	}

	_, err := io.WriteString(p.out, b.String())
	return err
}

// CropTable renders the per-crop sums as a bordered text table.
func CropTable(crops []models.CropSummary) string {
	rows := make([][]string, 0, len(crops))
	for _, c := range crops {
		rows = append(rows, []string{
			c.Crop,
			humanize.Commaf(c.ProfitTZS),
			humanize.Commaf(c.RevenueTZS),
			humanize.Commaf(c.InputCostTZS),
			humanize.Commaf(c.YieldKg),
		})
	}

	cell := lipgloss.NewStyle().Padding(0, 1)
	numeric := cell.Align(lipgloss.Right)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			if col == 0 {
				return cell
			}
			return numeric
		}).
		Headers(cropTableHeaders...).
		Rows(rows...)

	return t.String()
}

// FormatTotal rounds half to even and groups thousands, e.g. 1234567.5 -> "1,234,568".
// Non-finite totals print as inf, -inf or nan.
func FormatTotal(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}

	rounded := math.RoundToEven(v)
	if rounded < math.MinInt64 || rounded >= math.MaxInt64 {
		return humanize.Commaf(rounded)
	}
	return humanize.Comma(int64(rounded))
}
