package handler

import (
	"net"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"

	"github.com/xtc-codecheck/lohnfee-abrechnung-deutschland-sub001/internal/cache"
	"github.com/xtc-codecheck/lohnfee-abrechnung-deutschland-sub001/internal/model"
	"github.com/xtc-codecheck/lohnfee-abrechnung-deutschland-sub001/internal/ratetable"
)

func init() {
	log.Logger = zerolog.Nop()
}

type reply struct {
	status int
	body   []byte
	cache  string
}

func newClient(t *testing.T) *fasthttp.Client {
	t.Helper()
	c, _ := newClientWithRates(t)
	return c
}

func newClientWithRates(t *testing.T) (*fasthttp.Client, *ratetable.Provider) {
	t.Helper()
	tables, err := ratetable.LoadEmbedded()
	require.NoError(t, err)
	rates, err := ratetable.NewProvider(tables...)
	require.NoError(t, err)

	s := NewService(Deps{Rates: rates, Cache: cache.NewMemory(0), Workers: 4})
	ln := fasthttputil.NewInmemoryListener()
	srv := &fasthttp.Server{Handler: s.Handler()}
	go func() { _ = srv.Serve(ln) }()
	t.Cleanup(func() { _ = srv.Shutdown() })

	return &fasthttp.Client{Dial: func(string) (net.Conn, error) { return ln.Dial() }}, rates
}

func do(t *testing.T, c *fasthttp.Client, method, path string, body any) reply {
	t.Helper()
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI("http://payroll.test" + path)
	req.Header.SetMethod(method)
	switch b := body.(type) {
	case nil:
	case string:
		req.SetBodyString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		req.SetBody(raw)
	}
	require.NoError(t, c.Do(req, resp))

	return reply{
		status: resp.StatusCode(),
		body:   append([]byte(nil), resp.Body()...),
		cache:  string(resp.Header.Peek(cacheHeader)),
	}
}

func employee(gross float64) model.Employee {
	return model.Employee{
		ID:                            "e-1",
		GrossSalary:                   gross,
		TaxClass:                      model.TaxClassI,
		HealthInsuranceAdditionalRate: 0.017,
		Age:                           30,
	}
}

func errorCode(t *testing.T, r reply) string {
	t.Helper()
	var e model.ErrorResponse
	require.NoError(t, json.Unmarshal(r.body, &e))
	assert.Equal(t, r.status, e.Status)
	return e.Code
}

func TestHealth(t *testing.T) {
	c := newClient(t)
	r := do(t, c, fasthttp.MethodGet, "/health", nil)
	assert.Equal(t, fasthttp.StatusOK, r.status)
	assert.JSONEq(t, `{"status":"ok","msg":"OK"}`, string(r.body))
}

func TestCalculateIsCached(t *testing.T) {
	c := newClient(t)
	req := model.CalculationRequest{Employee: employee(4000), Period: model.Period{Year: 2024, Month: 3}}

	first := do(t, c, fasthttp.MethodPost, "/v1/payroll/calculate", req)
	require.Equal(t, fasthttp.StatusOK, first.status, string(first.body))
	assert.Equal(t, "MISS", first.cache)

	var resp model.CalculationResponse
	require.NoError(t, json.Unmarshal(first.body, &resp))
	require.NotNil(t, resp.Result)
	assert.Equal(t, model.OutcomeSuccess, resp.CalculationMetadata.CalculationOutcome)
	assert.Equal(t, 2625.5, resp.Result.Net)
	assert.Equal(t, 4818.0, resp.Result.EmployerCost)

	second := do(t, c, fasthttp.MethodPost, "/v1/payroll/calculate", req)
	require.Equal(t, fasthttp.StatusOK, second.status)
	assert.Equal(t, "HIT", second.cache)

	var again model.CalculationResponse
	require.NoError(t, json.Unmarshal(second.body, &again))
	assert.Equal(t, resp.Result, again.Result)
	assert.NotEqual(t, resp.CalculationMetadata.CalculationID, again.CalculationMetadata.CalculationID)
}

func TestReplacedRateTableBypassesCache(t *testing.T) {
	c, rates := newClientWithRates(t)
	req := model.CalculationRequest{Employee: employee(4000), Period: model.Period{Year: 2024, Month: 3}}

	assert.Equal(t, "MISS", do(t, c, fasthttp.MethodPost, "/v1/payroll/calculate", req).cache)
	assert.Equal(t, "HIT", do(t, c, fasthttp.MethodPost, "/v1/payroll/calculate", req).cache)

	t24, err := rates.Rates(2024)
	require.NoError(t, err)
	raised := *t24
	raised.SocialInsurance.Pension = 0.2
	require.NoError(t, rates.Register(&raised))

	r := do(t, c, fasthttp.MethodPost, "/v1/payroll/calculate", req)
	require.Equal(t, fasthttp.StatusOK, r.status, string(r.body))
	assert.Equal(t, "MISS", r.cache)

	var resp model.CalculationResponse
	require.NoError(t, json.Unmarshal(r.body, &resp))
	assert.Equal(t, 400.0, resp.Result.SocialInsurance.Pension.Employee)
}

func TestCalculateErrors(t *testing.T) {
	c := newClient(t)

	r := do(t, c, fasthttp.MethodPost, "/v1/payroll/calculate", `{"employee":`)
	assert.Equal(t, fasthttp.StatusBadRequest, r.status)
	assert.Equal(t, codeInvalidJSON, errorCode(t, r))

	r = do(t, c, fasthttp.MethodPost, "/v1/payroll/calculate",
		model.CalculationRequest{Employee: employee(-1), Period: model.Period{Year: 2024, Month: 1}})
	assert.Equal(t, fasthttp.StatusBadRequest, r.status)
	assert.Equal(t, codeInvalidInput, errorCode(t, r))

	r = do(t, c, fasthttp.MethodPost, "/v1/payroll/calculate",
		model.CalculationRequest{Employee: employee(4000), Period: model.Period{Year: 1999, Month: 1}})
	assert.Equal(t, fasthttp.StatusNotFound, r.status)
	assert.Equal(t, codeUnknownYear, errorCode(t, r))
}

func TestCompare(t *testing.T) {
	c := newClient(t)
	req := model.CompareRequest{
		Previous: model.CalculationRequest{Employee: employee(4000), Period: model.Period{Year: 2024, Month: 12}},
		Current:  model.CalculationRequest{Employee: employee(4000), Period: model.Period{Year: 2025, Month: 1}},
	}

	r := do(t, c, fasthttp.MethodPost, "/v1/payroll/compare", req)
	require.Equal(t, fasthttp.StatusOK, r.status, string(r.body))

	var resp model.CompareResponse
	require.NoError(t, json.Unmarshal(r.body, &resp))
	require.NotEmpty(t, resp.Changes)
	var sawYear bool
	for _, ch := range resp.Changes {
		assert.NotEqual(t, "/gross", ch.Path)
		if ch.Path == "/period/year" {
			sawYear = true
			require.NotNil(t, ch.Delta)
			assert.Equal(t, 1.0, *ch.Delta)
		}
	}
	assert.True(t, sawYear)

	req.Current.Period.Year = 1999
	r = do(t, c, fasthttp.MethodPost, "/v1/payroll/compare", req)
	assert.Equal(t, fasthttp.StatusNotFound, r.status)
}

func TestBatchReportsPartialFailure(t *testing.T) {
	c := newClient(t)
	broken := employee(3000)
	broken.ID = "e-broken"
	broken.TaxClass = 0
	req := model.BatchRequest{
		Period:    model.Period{Year: 2024, Month: 6},
		Employees: []model.Employee{employee(4000), broken, employee(2500)},
	}

	r := do(t, c, fasthttp.MethodPost, "/v1/payroll/batch", req)
	require.Equal(t, fasthttp.StatusOK, r.status, string(r.body))

	var resp model.BatchResponse
	require.NoError(t, json.Unmarshal(r.body, &resp))
	assert.Equal(t, model.OutcomePartial, resp.Outcome)
	assert.Len(t, resp.Results, 2)
	require.Len(t, resp.Failures, 1)
	assert.Equal(t, "e-broken", resp.Failures[0].EmployeeID)
	assert.Equal(t, 1, resp.Failures[0].Index)
	assert.Equal(t, 6500.0, resp.TotalsGross)

	r = do(t, c, fasthttp.MethodPost, "/v1/payroll/batch", model.BatchRequest{Period: req.Period})
	assert.Equal(t, fasthttp.StatusBadRequest, r.status)
}

func TestMultiEmployment(t *testing.T) {
	c := newClient(t)
	e := employee(0)
	e.Employments = []model.Employment{
		{EmployerID: "b", GrossMonthly: 3000, WeeklyHours: 20, TaxClass: model.TaxClassI, StartDate: "2021-01-01"},
		{EmployerID: "a", GrossMonthly: 5000, WeeklyHours: 40, TaxClass: model.TaxClassI, StartDate: "2020-01-01"},
	}

	r := do(t, c, fasthttp.MethodPost, "/v1/multi-employment", model.MultiEmploymentRequest{Employee: e, Year: 2024})
	require.Equal(t, fasthttp.StatusOK, r.status, string(r.body))

	var res model.MultiEmploymentResult
	require.NoError(t, json.Unmarshal(r.body, &res))
	assert.Equal(t, "a", res.MainEmployerID)
	require.Len(t, res.Employments, 2)
	assert.Equal(t, 4718.75, res.Employments[0].PensionBase)
	assert.Equal(t, 2831.25, res.Employments[1].PensionBase)
	assert.Equal(t, model.TaxClassVI, res.Employments[1].TaxClass)

	r = do(t, c, fasthttp.MethodPost, "/v1/multi-employment",
		model.MultiEmploymentRequest{Employee: e, Year: 2024, Estimator: "guess"})
	assert.Equal(t, fasthttp.StatusBadRequest, r.status)

	r = do(t, c, fasthttp.MethodPost, "/v1/multi-employment", model.MultiEmploymentRequest{Employee: employee(0), Year: 2024})
	assert.Equal(t, fasthttp.StatusUnprocessableEntity, r.status)
	assert.Equal(t, codeNoEmployment, errorCode(t, r))
}

func TestOvertime(t *testing.T) {
	c := newClient(t)
	req := model.OvertimeRequest{
		MonthlyGross: 3466.6,
		Hours:        model.HourCounts{Overtime: 10},
		Year:         2024,
	}

	r := do(t, c, fasthttp.MethodPost, "/v1/overtime", req)
	require.Equal(t, fasthttp.StatusOK, r.status, string(r.body))

	var res model.OvertimeCalculation
	require.NoError(t, json.Unmarshal(r.body, &res))
	assert.Equal(t, 20.0, res.HourlyRate)
	assert.Equal(t, 50.0, res.OvertimeSurcharge)
	assert.Equal(t, 250.0, res.OvertimePay)

	req.SchemeName = "mining"
	r = do(t, c, fasthttp.MethodPost, "/v1/overtime", req)
	assert.Equal(t, fasthttp.StatusBadRequest, r.status)

	req.SchemeName, req.Year = "", 0
	r = do(t, c, fasthttp.MethodPost, "/v1/overtime", req)
	assert.Equal(t, fasthttp.StatusBadRequest, r.status)
}

func TestRates(t *testing.T) {
	c := newClient(t)

	r := do(t, c, fasthttp.MethodGet, "/v1/rates", nil)
	require.Equal(t, fasthttp.StatusOK, r.status)
	assert.JSONEq(t, `[2024,2025]`, string(r.body))

	r = do(t, c, fasthttp.MethodGet, "/v1/rates/2025", nil)
	require.Equal(t, fasthttp.StatusOK, r.status)
	var table ratetable.RateTable
	require.NoError(t, json.Unmarshal(r.body, &table))
	assert.Equal(t, 2025, table.Year)
	assert.Equal(t, 12096.0, table.IncomeTax.BasicAllowance)

	assert.Equal(t, fasthttp.StatusNotFound, do(t, c, fasthttp.MethodGet, "/v1/rates/1999", nil).status)
	assert.Equal(t, fasthttp.StatusBadRequest, do(t, c, fasthttp.MethodGet, "/v1/rates/next", nil).status)
}

func TestSchemes(t *testing.T) {
	c := newClient(t)
	r := do(t, c, fasthttp.MethodGet, "/v1/schemes", nil)
	require.Equal(t, fasthttp.StatusOK, r.status)

	var out schemesResponse
	require.NoError(t, json.Unmarshal(r.body, &out))
	assert.Equal(t, "general", out.Default)
	assert.Len(t, out.Schemes, 4)
}

func TestRecoveryMiddleware(t *testing.T) {
	h := RecoveryMiddleware(func(*fasthttp.RequestCtx) { panic("boom") })
	var ctx fasthttp.RequestCtx
	h(&ctx)
	assert.Equal(t, fasthttp.StatusInternalServerError, ctx.Response.StatusCode())
}

func TestRequestIDIsEchoed(t *testing.T) {
	h := LoggingMiddleware(func(ctx *fasthttp.RequestCtx) { ctx.SetStatusCode(fasthttp.StatusNoContent) })

	var ctx fasthttp.RequestCtx
	ctx.Request.Header.Set(requestIDHeader, "req-42")
	h(&ctx)
	assert.Equal(t, "req-42", string(ctx.Response.Header.Peek(requestIDHeader)))

	var fresh fasthttp.RequestCtx
	h(&fresh)
	assert.Len(t, string(fresh.Response.Header.Peek(requestIDHeader)), 36)
}
