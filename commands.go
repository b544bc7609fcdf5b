package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/gocarina/gocsv"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/xtc-codecheck/lohnfee-abrechnung-deutschland-sub001/internal/engine"
	"github.com/xtc-codecheck/lohnfee-abrechnung-deutschland-sub001/internal/handler"
	"github.com/xtc-codecheck/lohnfee-abrechnung-deutschland-sub001/internal/model"
)

func (a *app) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			svc := handler.NewService(handler.Deps{
				Port:    a.cfg.API.Port,
				Rates:   a.rates,
				Cache:   newCache(ctx, a.cfg.Cache),
				Workers: a.cfg.Batch.Workers,
			})
			if err := svc.Start(ctx); err != nil {
				return err
			}
			log.Info().Msg("HTTP API stopped")
			return nil
		},
	}
}

func (a *app) calcCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Calculate one payroll request given as JSON",
		RunE: func(_ *cobra.Command, _ []string) error {
			raw, err := readInput(file)
			if err != nil {
				return err
			}
			var req model.CalculationRequest
			if err := json.Unmarshal(raw, &req); err != nil {
				return fmt.Errorf("decode %s: %w", file, err)
			}

			resp, err := engine.Process(a.rates, &req)
			if err != nil {
				return err
			}
			return writeJSON(a.out, resp)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "request JSON file, - for stdin")
	return cmd
}

type batchFlags struct {
	csv      string
	year     int
	month    int
	workers  int
	failFast bool
	format   string
}

func (a *app) batchCmd() *cobra.Command {
	var f batchFlags
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Calculate a payroll period for all employees of a CSV file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runBatch(cmd.Context(), f)
		},
	}
	cmd.Flags().StringVar(&f.csv, "csv", "", "employee CSV file")
	cmd.Flags().IntVar(&f.year, "year", 0, "payroll year")
	cmd.Flags().IntVar(&f.month, "month", 0, "payroll month (1-12)")
	cmd.Flags().IntVar(&f.workers, "workers", 0, "concurrent calculations (default from config)")
	cmd.Flags().BoolVar(&f.failFast, "fail-fast", false, "stop at the first failing employee")
	cmd.Flags().StringVar(&f.format, "format", "json", "output format: json or csv")
	_ = cmd.MarkFlagRequired("csv")
	_ = cmd.MarkFlagRequired("year")
	_ = cmd.MarkFlagRequired("month")
	return cmd
}

func (a *app) runBatch(ctx context.Context, f batchFlags) error {
	if f.format != "json" && f.format != "csv" {
		return fmt.Errorf("unknown format %q", f.format)
	}
	employees, err := readEmployees(f.csv)
	if err != nil {
		return err
	}
	workers := f.workers
	if workers <= 0 {
		workers = a.cfg.Batch.Workers
	}

	report, runErr := engine.RunBatch(ctx, a.rates, employees, model.Period{Year: f.year, Month: f.month}, engine.BatchOptions{
		Workers:  workers,
		FailFast: f.failFast,
		Logger:   log.Logger,
	})
	resp := report.Response()

	var writeErr error
	if f.format == "csv" {
		writeErr = writeSummaryCSV(a.out, resp)
	} else {
		writeErr = writeJSON(a.out, resp)
	}
	return errors.Join(runErr, writeErr)
}

func readInput(file string) ([]byte, error) {
	if file == "" || file == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(file)
}

func readEmployees(path string) ([]model.Employee, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var employees []model.Employee
	if err := gocsv.UnmarshalFile(f, &employees); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return employees, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
