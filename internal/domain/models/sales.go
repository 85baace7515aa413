package models

import "time"

// Column names of the farm sales table.
const (
	ColumnDate          = "date"
	ColumnCrop          = "crop"
	ColumnAreaHa        = "area_ha"
	ColumnInputCostTZS  = "input_cost_tzs"
	ColumnYieldKg       = "yield_kg"
	ColumnPricePerKgTZS = "price_per_kg_tzs"
	ColumnRevenueTZS    = "revenue_tzs"
	ColumnProfitTZS     = "profit_tzs"
	ColumnMonth         = "month"
)

// MonthLayout formats the calendar month label of a record.
const MonthLayout = "2006-01"

// RequiredColumns lists the input columns every retained record must have a value for.
var RequiredColumns = []string{
	ColumnDate,
	ColumnCrop,
	ColumnAreaHa,
	ColumnInputCostTZS,
	ColumnYieldKg,
	ColumnPricePerKgTZS,
}

// DerivedColumns lists the columns appended to the cleaned table.
var DerivedColumns = []string{ColumnRevenueTZS, ColumnProfitTZS, ColumnMonth}

// SalesRecord captures one cleaned harvest sale. Amounts are in TZS.
type SalesRecord struct {
	Date          time.Time
	Crop          string
	AreaHa        float64
	InputCostTZS  float64
	YieldKg       float64
	PricePerKgTZS float64

	RevenueTZS float64
	ProfitTZS  float64
	Month      string

	// Extra holds the raw text of non-required input columns, keyed by column name.
	Extra map[string]string
}

// NewSalesRecord builds a record and computes its derived fields.
func NewSalesRecord(date time.Time, crop string, areaHa, inputCost, yieldKg, pricePerKg float64) SalesRecord {
	revenue := yieldKg * pricePerKg
	return SalesRecord{
		Date:          date,
		Crop:          crop,
		AreaHa:        areaHa,
		InputCostTZS:  inputCost,
		YieldKg:       yieldKg,
		PricePerKgTZS: pricePerKg,
		RevenueTZS:    revenue,
		ProfitTZS:     revenue - inputCost,
		Month:         date.Format(MonthLayout),
	}
}

// DedupKey identifies records that count as the same sale.
type DedupKey struct {
	Date    time.Time
	Crop    string
	YieldKg float64
}

// Key returns the deduplication key of the record.
func (r SalesRecord) Key() DedupKey {
	return DedupKey{Date: r.Date.UTC(), Crop: r.Crop, YieldKg: r.YieldKg}
}
