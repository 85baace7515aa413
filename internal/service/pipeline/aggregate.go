package pipeline

import (
	"cmp"
	"slices"

	"github.com/mamadbah2/farmsales/internal/domain/models"
)

// Summarize totals cost, revenue and profit over all records.
func Summarize(records []models.SalesRecord) models.OverallStats {
	stats := models.OverallStats{Rows: len(records)}
	for _, r := range records {
		stats.InputCostTZS += r.InputCostTZS
		stats.RevenueTZS += r.RevenueTZS
		stats.ProfitTZS += r.ProfitTZS
	}
	return stats
}

// GroupByCrop sums the records of each crop, most profitable crop first.
// Crops with equal profit keep the order in which they first appear.
func GroupByCrop(records []models.SalesRecord) []models.CropSummary {
	index := make(map[string]int)
	var groups []models.CropSummary

	for _, r := range records {
		i, ok := index[r.Crop]
		if !ok {
			i = len(groups)
			index[r.Crop] = i
			groups = append(groups, models.CropSummary{Crop: r.Crop})
		}
		g := &groups[i]
		g.ProfitTZS += r.ProfitTZS
		g.RevenueTZS += r.RevenueTZS
		g.InputCostTZS += r.InputCostTZS
		g.YieldKg += r.YieldKg
	}

	slices.SortStableFunc(groups, func(a, b models.CropSummary) int {
		return cmp.Compare(b.ProfitTZS, a.ProfitTZS)
	})
	return groups
}

// GroupByMonth sums revenue and profit per "YYYY-MM" month in calendar order.
func GroupByMonth(records []models.SalesRecord) []models.MonthSummary {
	index := make(map[string]int)
	var groups []models.MonthSummary

	for _, r := range records {
		i, ok := index[r.Month]
		if !ok {
			i = len(groups)
			index[r.Month] = i
			groups = append(groups, models.MonthSummary{Month: r.Month})
		}
		groups[i].RevenueTZS += r.RevenueTZS
		groups[i].ProfitTZS += r.ProfitTZS
	}

	slices.SortFunc(groups, func(a, b models.MonthSummary) int {
		return cmp.Compare(a.Month, b.Month)
	})
	return groups
}
