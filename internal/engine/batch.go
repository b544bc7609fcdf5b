package engine

import (
	"context"
	"runtime"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/xtc-codecheck/lohnfee-abrechnung-deutschland-sub001/internal/model"
	"github.com/xtc-codecheck/lohnfee-abrechnung-deutschland-sub001/internal/money"
)

type BatchOptions struct {
	// Workers bounds the number of concurrent calculations. Zero means
	// GOMAXPROCS.
	Workers int
	// FailFast stops the run at the first failing employee. By default
	// failures are collected and the run continues.
	FailFast bool
	// Overrides are applied per employee id.
	Overrides map[string]model.Overrides
	Logger    zerolog.Logger
}

// BatchReport keeps results in input order; a failed employee leaves a nil
// entry and a Failures record.
type BatchReport struct {
	RunID    uuid.UUID
	Period   model.Period
	Results  []*model.SalaryCalculationResult
	Failures []model.BatchFailure
}

// RunBatch calculates all employees on a bounded worker pool. It returns an
// error only when the context is cancelled or FailFast hits a failure; the
// report is returned in both cases.
func RunBatch(ctx context.Context, rates RateSource, employees []model.Employee, period model.Period, opts BatchOptions) (*BatchReport, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	report := &BatchReport{
		RunID:   uuid.New(),
		Period:  period,
		Results: make([]*model.SalaryCalculationResult, len(employees)),
	}
	log := opts.Logger.With().Str("run_id", report.RunID.String()).Logger()

	var mu sync.Mutex
	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(workers)

	for i := range employees {
		if gctx.Err() != nil {
			break
		}
		group.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			e := employees[i]
			res, err := Calculate(rates, e, period, opts.Overrides[e.ID])
			if err != nil {
				log.Warn().Err(err).Str("employee_id", e.ID).Int("index", i).Msg("employee calculation failed")
				mu.Lock()
				report.Failures = append(report.Failures, model.BatchFailure{EmployeeID: e.ID, Index: i, Error: err.Error()})
				mu.Unlock()
				if opts.FailFast {
					return err
				}
				return nil
			}
			report.Results[i] = res
			return nil
		})
	}

	err := group.Wait()
	if err == nil {
		err = ctx.Err()
	}
	sort.Slice(report.Failures, func(a, b int) bool { return report.Failures[a].Index < report.Failures[b].Index })

	log.Info().
		Int("employees", len(employees)).
		Int("failures", len(report.Failures)).
		Int("workers", workers).
		Msg("payroll batch finished")
	return report, err
}

// Response flattens the report for JSON output.
func (r *BatchReport) Response() model.BatchResponse {
	out := model.BatchResponse{
		RunID:    r.RunID.String(),
		Period:   r.Period,
		Results:  make([]model.SalaryCalculationResult, 0, len(r.Results)),
		Failures: r.Failures,
	}
	if out.Failures == nil {
		out.Failures = []model.BatchFailure{}
	}
	var gross, net, cost []float64
	for _, res := range r.Results {
		if res == nil {
			continue
		}
		out.Results = append(out.Results, *res)
		gross = append(gross, res.Gross)
		net = append(net, res.Net)
		cost = append(cost, res.EmployerCost)
	}
	out.TotalsGross = money.Sum(gross...)
	out.TotalsNet = money.Sum(net...)
	out.TotalsEmployerCost = money.Sum(cost...)

	switch {
	case len(r.Failures) == 0 && len(out.Results) == len(r.Results):
		out.Outcome = model.OutcomeSuccess
	case len(out.Results) > 0:
		out.Outcome = model.OutcomePartial
	default:
		out.Outcome = model.OutcomeFailure
	}
	return out
}
