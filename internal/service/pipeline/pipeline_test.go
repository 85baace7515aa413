package pipeline

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/farmsales/internal/config"
	"github.com/mamadbah2/farmsales/internal/domain/models"
	"github.com/mamadbah2/farmsales/internal/repository/tabular"
)

const header = "date,crop,area_ha,input_cost_tzs,yield_kg,price_per_kg_tzs\n"

// recordingRenderer writes placeholder files and remembers what it was given.
type recordingRenderer struct {
	crops   []models.CropSummary
	months  []models.MonthSummary
	records []models.SalesRecord
	failOn  string
}

func (r *recordingRenderer) ProfitByCrop(crops []models.CropSummary, path string) error {
	r.crops = crops
	return r.write("crop", path)
}

func (r *recordingRenderer) MonthlyRevenueProfit(months []models.MonthSummary, path string) error {
	r.months = months
	return r.write("month", path)
}

func (r *recordingRenderer) YieldDistribution(records []models.SalesRecord, path string) error {
	r.records = records
	return r.write("yield", path)
}

func (r *recordingRenderer) write(chart, path string) error {
	if r.failOn == chart {
		return errors.New("renderer down")
	}
	return os.WriteFile(path, []byte(chart), 0o644)
}

func newTestService(renderer ChartRenderer, out *bytes.Buffer) *Service {
	if out == nil {
		return NewService(config.SheetsConfig{}, renderer, io.Discard, nil)
	}
	return NewService(config.SheetsConfig{}, renderer, out, nil)
}

func mustTable(t *testing.T, csv string) *tabular.Table {
	t.Helper()
	table, err := tabular.ReadCSV(bytes.NewBufferString(csv))
	require.NoError(t, err)
	return table
}

func writeInput(t *testing.T, csv string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "farm_sales.csv")
	require.NoError(t, os.WriteFile(path, []byte(csv), 0o644))
	return path
}

func TestClean_DropsDuplicateSale(t *testing.T) {
	svc := newTestService(nil, nil)
	table := mustTable(t, header+
		"2024-01-05,maize,1.0,100000,500,800\n"+
		"2024-01-05,maize,1.0,100000,500,800\n"+
		"2024-02-10,beans,1.0,50000,300,1000\n")

	records, err := svc.Clean(table)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "maize", records[0].Crop)
	assert.Equal(t, 400000.0, records[0].RevenueTZS)
	assert.Equal(t, 300000.0, records[0].ProfitTZS)
	assert.Equal(t, "2024-01", records[0].Month)

	assert.Equal(t, "beans", records[1].Crop)
	assert.Equal(t, 300000.0, records[1].RevenueTZS)
	assert.Equal(t, 250000.0, records[1].ProfitTZS)
	assert.Equal(t, "2024-02", records[1].Month)

	assert.Equal(t, 550000.0, Summarize(records).ProfitTZS)
}

func TestClean_DropsInvalidAndIncompleteRows(t *testing.T) {
	svc := newTestService(nil, nil)
	table := mustTable(t, header+
		"not-a-date,maize,1.0,100000,500,800\n"+
		",maize,1.0,100000,501,800\n"+
		"2024-01-06,,1.0,100000,502,800\n"+
		"2024-01-07,maize,,100000,503,800\n"+
		"2024-01-08,maize,1.0,NA,504,800\n"+
		"2024-01-09,maize,1.0,100000,,800\n"+
		"2024-01-10,maize,1.0,100000,505,\n"+
		"2024-01-11,rice,2.0,200000,600,900\n")

	records, err := svc.Clean(table)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "rice", records[0].Crop)
	assert.Equal(t, time.Date(2024, time.January, 11, 0, 0, 0, 0, time.UTC), records[0].Date)
}

func TestClean_DuplicatesKeepFirstOccurrence(t *testing.T) {
	svc := newTestService(nil, nil)
	table := mustTable(t, header+
		"2024-03-01,maize,1.0,100000,500,800\n"+
		"2024-03-01,maize,2.0,999999,500,950\n"+
		"2024-03-01,maize,1.0,100000,501,800\n"+
		"2024-03-01,beans,1.0,100000,500,800\n"+
		"2024/03/01,maize,3.0,1,500,1\n")

	records, err := svc.Clean(table)
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, 100000.0, records[0].InputCostTZS, "first occurrence wins")
	assert.Equal(t, 501.0, records[1].YieldKg)
	assert.Equal(t, "beans", records[2].Crop)

	seen := map[models.DedupKey]bool{}
	for _, r := range records {
		assert.False(t, seen[r.Key()], "duplicate key %v", r.Key())
		seen[r.Key()] = true
	}
}

func TestClean_DerivedFieldsConsistent(t *testing.T) {
	svc := newTestService(nil, nil)
	table := mustTable(t, header+
		"2024-01-05,maize,1.5,120000.5,432.25,812.75\n"+
		"2024-02-29 14:30:00,cassava,0.25,5000,12.5,0.1\n"+
		"2024-03-03T08:00:00Z,beans,1,0,0,1000\n"+
		"2024-1-7,sorghum,1,1000,10,50\n"+
		"2024-4-9 6:05:00,millet,1,1000,20,50\n")

	records, err := svc.Clean(table)
	require.NoError(t, err)
	require.Len(t, records, 5)

	assert.Equal(t, time.Date(2024, time.January, 7, 0, 0, 0, 0, time.UTC), records[3].Date)
	assert.Equal(t, "2024-01", records[3].Month)
	assert.Equal(t, time.Date(2024, time.April, 9, 6, 5, 0, 0, time.UTC), records[4].Date)

	for _, r := range records {
		assert.Equal(t, r.YieldKg*r.PricePerKgTZS, r.RevenueTZS)
		assert.Equal(t, r.RevenueTZS-r.InputCostTZS, r.ProfitTZS)
		assert.Equal(t, r.Date.Format("2006-01"), r.Month)
	}
}

func TestClean_CropLabelsKeepSpaces(t *testing.T) {
	svc := newTestService(nil, nil)
	table := mustTable(t, header+
		"2024-01-05,maize,1,100000,500,800\n"+
		"2024-01-05, maize,1,100000,500,800\n"+
		"2024-01-05,maize ,1,100000,500,800\n"+
		"2024-01-05,   ,1,100000,500,800\n")

	records, err := svc.Clean(table)
	require.NoError(t, err)
	require.Len(t, records, 3)

	groups := GroupByCrop(records)
	require.Len(t, groups, 3)
	assert.Equal(t, "maize", groups[0].Crop)
	assert.Equal(t, " maize", groups[1].Crop)
	assert.Equal(t, "maize ", groups[2].Crop)
}

func TestClean_ExtraColumnsCarried(t *testing.T) {
	svc := newTestService(nil, nil)
	table := mustTable(t, "region,date,crop,area_ha,input_cost_tzs,yield_kg,price_per_kg_tzs,notes\n"+
		"Arusha,2024-01-05,maize,1,100000,500,800,\n"+
		"Mbeya,2024-01-06,beans,1,50000,300,1000,late rains\n")

	records, err := svc.Clean(table)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "Arusha", records[0].Extra["region"])
	assert.Equal(t, "", records[0].Extra["notes"])
	assert.Equal(t, "late rains", records[1].Extra["notes"])
}

func TestClean_StructuralErrors(t *testing.T) {
	svc := newTestService(nil, nil)

	_, err := svc.Clean(mustTable(t, "date,crop,yield_kg\n2024-01-05,maize,500\n"))
	assert.True(t, errors.Is(err, tabular.ErrMissingColumns))

	_, err = svc.Clean(mustTable(t, header+"2024-01-05,maize,1,100000,five hundred,800\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNonNumericColumn))
	assert.Contains(t, err.Error(), "yield_kg inferred as string")
}

func TestClean_Empty(t *testing.T) {
	svc := newTestService(nil, nil)
	records, err := svc.Clean(mustTable(t, header))
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestRun_WritesArtifacts(t *testing.T) {
	input := writeInput(t, header+
		"2024-01-05,maize,1.0,100000,500,800\n"+
		"2024-01-05,maize,1.0,100000,500,800\n"+
		"2024-02-10,beans,1.0,50000,300,1000\n"+
		"not-a-date,rice,1.0,1,1,1\n")
	outdir := filepath.Join(t.TempDir(), "nested", "outputs")

	var out bytes.Buffer
	renderer := &recordingRenderer{}
	svc := newTestService(renderer, &out)

	artifacts, err := svc.Run(context.Background(), input, outdir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(outdir, CleanedFileName), artifacts.CleanedCSV)
	for _, path := range append(artifacts.Charts(), artifacts.CleanedCSV) {
		assert.FileExists(t, path)
	}

	content, err := os.ReadFile(artifacts.CleanedCSV)
	require.NoError(t, err)
	assert.Equal(t,
		"date,crop,area_ha,input_cost_tzs,yield_kg,price_per_kg_tzs,revenue_tzs,profit_tzs,month\n"+
			"2024-01-05,maize,1,100000,500,800,400000,300000,2024-01\n"+
			"2024-02-10,beans,1,50000,300,1000,300000,250000,2024-02\n",
		string(content))

	require.Len(t, renderer.crops, 2)
	assert.Equal(t, "maize", renderer.crops[0].Crop)
	require.Len(t, renderer.months, 2)
	assert.Equal(t, "2024-01", renderer.months[0].Month)
	assert.Len(t, renderer.records, 2)
	assert.NotContains(t, string(content), "rice")

	report := out.String()
	assert.Contains(t, report, "Rows: 2")
	assert.Contains(t, report, "Total profit    : 550,000")
	assert.Contains(t, report, "- Cleaned data: "+artifacts.CleanedCSV)
}

func TestRun_Deterministic(t *testing.T) {
	input := writeInput(t, header+
		"2024-03-01,maize,1.0,100000,500,800\n"+
		"2024-01-05,beans,1.0,50000,300,1000\n"+
		"2024-02-10,rice,2.0,80000,250,1200\n")
	outdir := t.TempDir()
	svc := newTestService(&recordingRenderer{}, nil)

	first, err := svc.Run(context.Background(), input, outdir)
	require.NoError(t, err)
	firstContent, err := os.ReadFile(first.CleanedCSV)
	require.NoError(t, err)

	second, err := svc.Run(context.Background(), input, outdir)
	require.NoError(t, err)
	secondContent, err := os.ReadFile(second.CleanedCSV)
	require.NoError(t, err)

	assert.Equal(t, firstContent, secondContent)
}

func TestRun_FatalErrors(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(&recordingRenderer{}, nil)

	_, err := svc.Run(ctx, filepath.Join(t.TempDir(), "missing.csv"), t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	_, err = svc.Run(ctx, writeInput(t, "date,crop\n2024-01-01,maize\n"), t.TempDir())
	assert.True(t, errors.Is(err, tabular.ErrMissingColumns))

	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))
	_, err = svc.Run(ctx, writeInput(t, header), filepath.Join(blocker, "out"))
	assert.Error(t, err)
}

func TestRun_ChartFailureKeepsEarlierOutputs(t *testing.T) {
	input := writeInput(t, header+"2024-01-05,maize,1.0,100000,500,800\n")
	outdir := t.TempDir()
	svc := newTestService(&recordingRenderer{failOn: "month"}, nil)

	_, err := svc.Run(context.Background(), input, outdir)
	require.Error(t, err)

	assert.FileExists(t, filepath.Join(outdir, CleanedFileName))
	assert.FileExists(t, filepath.Join(outdir, ProfitByCropFileName))
	assert.NoFileExists(t, filepath.Join(outdir, YieldHistogramFileName))
}

func TestCleanedRows_DateTimeLayout(t *testing.T) {
	withTime := models.NewSalesRecord(time.Date(2024, 1, 5, 9, 30, 0, 0, time.UTC), "maize", 1, 1, 1, 1)
	dateOnly := models.NewSalesRecord(time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC), "beans", 1, 1, 1, 1)

	header := CleanedColumns([]string{"date", "crop"})
	rows := CleanedRows(header, []models.SalesRecord{withTime, dateOnly})

	assert.Equal(t, "2024-01-05 09:30:00", rows[0][0])
	assert.Equal(t, "2024-01-06 00:00:00", rows[1][0])
}

func TestCleanedColumns_KeepsExistingDerivedPosition(t *testing.T) {
	got := CleanedColumns([]string{"month", "date", "crop"})
	assert.Equal(t, []string{"month", "date", "crop", "revenue_tzs", "profit_tzs"}, got)
}
