package handler

import (
	"errors"
	"strconv"

	"github.com/rs/zerolog/log"
	"github.com/valyala/fasthttp"

	"github.com/xtc-codecheck/lohnfee-abrechnung-deutschland-sub001/internal/engine"
	"github.com/xtc-codecheck/lohnfee-abrechnung-deutschland-sub001/internal/model"
	"github.com/xtc-codecheck/lohnfee-abrechnung-deutschland-sub001/internal/multiemployment"
	"github.com/xtc-codecheck/lohnfee-abrechnung-deutschland-sub001/internal/overtime"
)

var errNoEmployees = errors.New("at least one employee is required")

func (s *Service) calculate(ctx *fasthttp.RequestCtx) {
	var req model.CalculationRequest
	if !decode(ctx, &req) {
		return
	}

	var hit bool
	resp, err := engine.Track(func() (*model.SalaryCalculationResult, error) {
		res, fromCache, err := cached(ctx, s.cache, s.cacheNamespace("calculate"), &req, func() (*model.SalaryCalculationResult, error) {
			return engine.Calculate(s.rates, req.Employee, req.Period, req.Overrides)
		})
		hit = fromCache
		return res, err
	})
	if err != nil {
		writeCoreError(ctx, err)
		return
	}

	markCache(ctx, hit)
	writeJSON(ctx, fasthttp.StatusOK, resp)
}

func (s *Service) compare(ctx *fasthttp.RequestCtx) {
	var req model.CompareRequest
	if !decode(ctx, &req) {
		return
	}

	resp, hit, err := cached(ctx, s.cache, s.cacheNamespace("compare"), &req, func() (*model.CompareResponse, error) {
		return engine.Compare(s.rates, &req)
	})
	if err != nil {
		writeCoreError(ctx, err)
		return
	}

	markCache(ctx, hit)
	writeJSON(ctx, fasthttp.StatusOK, resp)
}

// batch runs a whole period. With fail_fast the report up to the first
// failure is returned with that failure's status.
func (s *Service) batch(ctx *fasthttp.RequestCtx) {
	var req model.BatchRequest
	if !decode(ctx, &req) {
		return
	}
	if len(req.Employees) == 0 {
		writeError(ctx, fasthttp.StatusBadRequest, codeInvalidInput, errNoEmployees)
		return
	}

	report, err := engine.RunBatch(ctx, s.rates, req.Employees, req.Period, engine.BatchOptions{
		Workers:  s.workers,
		FailFast: req.FailFast,
		Logger:   log.Logger,
	})
	status := fasthttp.StatusOK
	if err != nil {
		status, _ = errorStatus(err)
	}
	writeJSON(ctx, status, report.Response())
}

func (s *Service) multiEmployment(ctx *fasthttp.RequestCtx) {
	var req model.MultiEmploymentRequest
	if !decode(ctx, &req) {
		return
	}

	res, hit, err := cached(ctx, s.cache, s.cacheNamespace("multi-employment"), &req, func() (*model.MultiEmploymentResult, error) {
		if len(req.Employee.Employments) == 0 {
			return nil, multiemployment.ErrNoEmployment
		}
		if err := req.Employee.Validate(); err != nil {
			return nil, err
		}
		t, err := s.rates.Rates(req.Year)
		if err != nil {
			return nil, err
		}
		estimator, err := multiemployment.EstimatorByName(req.Estimator)
		if err != nil {
			return nil, err
		}
		p := multiemployment.ParamsFor(&req.Employee)
		p.Estimator = estimator
		return multiemployment.Distribute(t, req.Employee.Employments, p)
	})
	if err != nil {
		writeCoreError(ctx, err)
		return
	}

	markCache(ctx, hit)
	writeJSON(ctx, fasthttp.StatusOK, res)
}

func (s *Service) overtime(ctx *fasthttp.RequestCtx) {
	var req model.OvertimeRequest
	if !decode(ctx, &req) {
		return
	}

	res, hit, err := cached(ctx, s.cache, s.cacheNamespace("overtime"), &req, func() (*model.OvertimeCalculation, error) {
		if req.Year == 0 {
			return nil, model.Invalidf("year", "required")
		}
		t, err := s.rates.Rates(req.Year)
		if err != nil {
			return nil, err
		}
		scheme, err := overtime.Resolve(req.SchemeName, req.Scheme)
		if err != nil {
			return nil, err
		}
		calc, err := overtime.Calculate(req.MonthlyGross, req.Hours, scheme, t.TaxFreeSurcharges)
		if err != nil {
			return nil, err
		}
		return &calc, nil
	})
	if err != nil {
		writeCoreError(ctx, err)
		return
	}

	markCache(ctx, hit)
	writeJSON(ctx, fasthttp.StatusOK, res)
}

func (s *Service) listRateYears(ctx *fasthttp.RequestCtx) {
	writeJSON(ctx, fasthttp.StatusOK, s.rates.Years())
}

func (s *Service) getRates(ctx *fasthttp.RequestCtx) {
	raw, _ := ctx.UserValue("year").(string)
	year, err := strconv.Atoi(raw)
	if err != nil {
		writeError(ctx, fasthttp.StatusBadRequest, codeInvalidInput, model.Invalidf("year", "not a number: %q", raw))
		return
	}

	t, err := s.rates.Rates(year)
	if err != nil {
		writeCoreError(ctx, err)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, t)
}

type schemesResponse struct {
	Default string                  `json:"default"`
	Schemes []model.SurchargeScheme `json:"schemes"`
}

func (s *Service) listSchemes(ctx *fasthttp.RequestCtx) {
	out := schemesResponse{Default: overtime.DefaultScheme}
	for _, name := range overtime.Names() {
		scheme, _ := overtime.Get(name)
		out.Schemes = append(out.Schemes, scheme)
	}
	writeJSON(ctx, fasthttp.StatusOK, out)
}

func (s *Service) health(ctx *fasthttp.RequestCtx) {
	ok(ctx, "OK")
}
