package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mamadbah2/farmsales/internal/charts"
	"github.com/mamadbah2/farmsales/internal/config"
	"github.com/mamadbah2/farmsales/internal/service/pipeline"
	"github.com/mamadbah2/farmsales/pkg/logger"
)

type options struct {
	input   string
	outdir  string
	envFile string
	verbose bool
}

func main() {
	if err := newRootCmd(os.Stdout).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "farmsales",
		Short: "Farm sales data analysis (cleaning + stats + charts)",
		Long: `farmsales loads a table of farm sales, drops incomplete and duplicate rows,
derives revenue, profit and month, then writes the cleaned CSV, a console
summary and three charts into the output directory.

Inputs may be a local .csv or .xlsx file, an http(s) URL serving CSV, or a
Google Sheets range written as sheets://<spreadsheetID>/<range>.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts, out)
		},
	}

	cmd.Flags().StringVar(&opts.input, "input", "", "path to input CSV (default $FARM_SALES_INPUT or data/farm_sales.csv)")
	cmd.Flags().StringVar(&opts.outdir, "outdir", "", "output folder for cleaned data and charts (default $FARM_SALES_OUTDIR or outputs)")
	cmd.Flags().StringVar(&opts.envFile, "env-file", "", "optional .env file to load before reading the environment")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	return cmd
}

func run(ctx context.Context, opts *options, out io.Writer) error {
	cfg, err := config.Load(opts.envFile)
	if err != nil {
		return err
	}

	if opts.input != "" {
		cfg.Pipeline.Input = opts.input
	}
	if opts.outdir != "" {
		cfg.Pipeline.OutDir = opts.outdir
	}
	if opts.verbose {
		cfg.Log.Level = "debug"
	}

	// config.Validate already rejected unknown levels.
	baseLogger := logger.Must(logger.New(cfg.Log.Level))
	defer func() { _ = baseLogger.Sync() }()

	undo := zap.ReplaceGlobals(baseLogger)
	defer undo()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	svc := pipeline.NewService(
		cfg.Sheets,
		charts.NewPlotRenderer(logger.Named(baseLogger, "charts")),
		out,
		logger.Named(baseLogger, "svc.pipeline"),
	)

	baseLogger.Info("run starting", zap.String("input", cfg.Pipeline.Input), zap.String("outdir", cfg.Pipeline.OutDir))

	artifacts, err := svc.Run(ctx, cfg.Pipeline.Input, cfg.Pipeline.OutDir)
	if err != nil {
		baseLogger.Error("run failed", zap.Error(err))
		return err
	}

	baseLogger.Info("run completed", zap.String("cleaned", artifacts.CleanedCSV), zap.Strings("charts", artifacts.Charts()))
	return nil
}
