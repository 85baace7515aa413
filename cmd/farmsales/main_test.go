package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/farmsales/internal/repository/tabular"
)

const salesCSV = "date,crop,area_ha,input_cost_tzs,yield_kg,price_per_kg_tzs\n" +
	"2024-01-05,maize,1.0,100000,500,800\n" +
	"2024-01-05,maize,1.0,100000,500,800\n" +
	"2024-02-10,beans,1.0,50000,300,1000\n" +
	"not-a-date,rice,1.0,20000,100,900\n" +
	"2024-02-18,rice,0.5,20000,,900\n" +
	"2024-03-02,rice,0.5,20000,150,900\n"

func quietEnv(t *testing.T) {
	t.Helper()
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("FARM_SALES_INPUT", "")
	t.Setenv("FARM_SALES_OUTDIR", "")
}

func TestRootCmd_EndToEnd(t *testing.T) {
	quietEnv(t)

	dir := t.TempDir()
	input := filepath.Join(dir, "farm_sales.csv")
	require.NoError(t, os.WriteFile(input, []byte(salesCSV), 0o644))
	outdir := filepath.Join(dir, "outputs")

	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetArgs([]string{"--input", input, "--outdir", outdir, "--env-file", filepath.Join(dir, "none.env")})
	require.NoError(t, cmd.Execute())

	for _, name := range []string{"cleaned_farm_sales.csv", "profit_by_crop.png", "monthly_revenue_profit.png", "yield_distribution.png"} {
		assert.FileExists(t, filepath.Join(outdir, name))
	}

	cleaned, err := os.ReadFile(filepath.Join(outdir, "cleaned_farm_sales.csv"))
	require.NoError(t, err)
	assert.Equal(t,
		"date,crop,area_ha,input_cost_tzs,yield_kg,price_per_kg_tzs,revenue_tzs,profit_tzs,month\n"+
			"2024-01-05,maize,1,100000,500,800,400000,300000,2024-01\n"+
			"2024-02-10,beans,1,50000,300,1000,300000,250000,2024-02\n"+
			"2024-03-02,rice,0.5,20000,150,900,135000,115000,2024-03\n",
		string(cleaned))

	report := out.String()
	assert.Contains(t, report, "Rows: 3")
	assert.Contains(t, report, "Total input cost: 170,000")
	assert.Contains(t, report, "Total revenue   : 835,000")
	assert.Contains(t, report, "Total profit    : 665,000")
	assert.Contains(t, report, "- Chart: "+filepath.Join(outdir, "yield_distribution.png"))
}

func TestRootCmd_MissingInput(t *testing.T) {
	quietEnv(t)

	dir := t.TempDir()
	cmd := newRootCmd(&bytes.Buffer{})
	cmd.SetArgs([]string{"--input", filepath.Join(dir, "missing.csv"), "--outdir", filepath.Join(dir, "out")})

	err := cmd.Execute()
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestRootCmd_MissingColumns(t *testing.T) {
	quietEnv(t)

	dir := t.TempDir()
	input := filepath.Join(dir, "farm_sales.csv")
	require.NoError(t, os.WriteFile(input, []byte("date,crop\n2024-01-01,maize\n"), 0o644))

	cmd := newRootCmd(&bytes.Buffer{})
	cmd.SetArgs([]string{"--input", input, "--outdir", filepath.Join(dir, "out")})

	err := cmd.Execute()
	assert.True(t, errors.Is(err, tabular.ErrMissingColumns))
}

func TestRootCmd_RejectsArgs(t *testing.T) {
	quietEnv(t)

	cmd := newRootCmd(&bytes.Buffer{})
	cmd.SetArgs([]string{"extra"})
	assert.Error(t, cmd.Execute())
}
