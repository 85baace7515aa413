package models

// OverallStats holds the totals across every cleaned record.
type OverallStats struct {
	Rows         int
	InputCostTZS float64
	RevenueTZS   float64
	ProfitTZS    float64
}

// CropSummary aggregates the records of one crop.
type CropSummary struct {
	Crop         string
	ProfitTZS    float64
	RevenueTZS   float64
	InputCostTZS float64
	YieldKg      float64
}

// MonthSummary aggregates the records of one "YYYY-MM" month.
type MonthSummary struct {
	Month      string
	RevenueTZS float64
	ProfitTZS  float64
}

// Artifacts lists the files written by a run.
type Artifacts struct {
	CleanedCSV     string
	ProfitByCrop   string
	MonthlyTrend   string
	YieldHistogram string
}

// Charts returns the chart paths in the order they are produced.
func (a Artifacts) Charts() []string {
	return []string{a.ProfitByCrop, a.MonthlyTrend, a.YieldHistogram}
}
